package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"dochazka-bot/internal/clock"
	"dochazka-bot/internal/config"
	"dochazka-bot/internal/database"
	"dochazka-bot/internal/logging"
	"dochazka-bot/internal/models"
	"dochazka-bot/internal/repository"

	"github.com/stretchr/testify/require"
)

var prague = mustLocation("Europe/Prague")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []uint
	err  error
}

func (n *stubNotifier) NotifyAbsenceDecision(_ context.Context, _ *models.User, absence *models.AbsenceRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, absence.ID)
	return nil
}

type testEnv struct {
	ctx      context.Context
	svc      *Services
	store    *repository.Store
	clock    *clock.Fixed
	notifier *stubNotifier
	admin    *models.User
}

// newTestEnv starts on Wednesday 2026-10-14 08:00 Prague time.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logging.Discard()
	db, err := database.Open(filepath.Join(t.TempDir(), "dochazka.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store, err := repository.NewStore(db, logger)
	require.NoError(t, err)

	env := &testEnv{
		ctx:      context.Background(),
		store:    store,
		clock:    clock.NewFixed(time.Date(2026, time.October, 14, 8, 0, 0, 0, prague)),
		notifier: &stubNotifier{},
	}
	env.svc = New(store, env.clock, config.DefaultPolicy(), env.notifier, logger)

	env.admin, err = env.svc.Users.EnsureAdmin(env.ctx, "admin", "admin-secret", 0)
	require.NoError(t, err)
	require.NotNil(t, env.admin)
	return env
}

func (e *testEnv) employee(t *testing.T, username string) *models.User {
	t.Helper()
	return e.user(t, username, models.RoleEmployee)
}

func (e *testEnv) user(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	u, err := e.svc.Users.CreateUser(e.ctx, e.admin, NewUser{
		Username:    username,
		Password:    "heslo123",
		DisplayName: username,
		Role:        role,
	})
	require.NoError(t, err)
	return u
}

// at sets the clock to hh:mm on the current test date.
func (e *testEnv) at(hh, mm int) time.Time {
	now := e.clock.Now()
	t := time.Date(now.Year(), now.Month(), now.Day(), hh, mm, 0, 0, prague)
	e.clock.Set(t)
	return t
}

func (e *testEnv) approved(t *testing.T, user *models.User, in AbsenceInput) *models.AbsenceRequest {
	t.Helper()
	a, err := e.svc.Absences.InsertApproved(e.ctx, e.admin, user.ID, in)
	require.NoError(t, err)
	return a
}

func clockAt(day string, hh, mm int) *time.Time {
	d, err := time.ParseInLocation("2006-01-02", day, prague)
	if err != nil {
		panic(err)
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), hh, mm, 0, 0, prague)
	return &t
}

var errDelivery = errors.New("telegram down")
