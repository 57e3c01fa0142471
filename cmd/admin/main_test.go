package main

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"
	"time"

	"dochazka-bot/internal/clock"
	"dochazka-bot/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp points the console at a fresh database, frozen on Wednesday 2026-10-14 08:00.
func newTestApp(t *testing.T) *app {
	t.Helper()

	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "dochazka.db"))
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("POLICY_FILE", "")
	t.Setenv("API_ADDR", "")
	t.Setenv("LOG_LEVEL", "error")

	prague, err := time.LoadLocation("Europe/Prague")
	require.NoError(t, err)

	a := &app{clock: clock.NewFixed(time.Date(2026, time.October, 14, 8, 0, 0, 0, prague))}
	t.Cleanup(func() { _ = a.close() })
	return a
}

func run(a *app, args ...string) (string, error) {
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, a *app, args ...string) string {
	t.Helper()
	out, err := run(a, args...)
	require.NoError(t, err, "%v", args)
	return out
}

func TestUserAddAndList(t *testing.T) {
	a := newTestApp(t)

	out := mustRun(t, a, "user", "add", "Eva", "--name", "Eva Dvořáková", "--password", "heslo123")
	assert.Contains(t, out, "created user eva")

	mustRun(t, a, "user", "link", "eva", "555")

	out = mustRun(t, a, "user", "list")
	assert.Contains(t, out, "Eva Dvořáková")
	assert.Contains(t, out, "555")

	_, err := run(a, "user", "add", "eva", "--name", "Eva", "--password", "heslo123")
	assert.ErrorIs(t, err, service.ErrUserExists)
}

func TestUserAddRequiresPassword(t *testing.T) {
	a := newTestApp(t)

	_, err := run(a, "user", "add", "eva", "--name", "Eva")

	assert.Error(t, err)
}

func TestDeactivatedUserDisappears(t *testing.T) {
	a := newTestApp(t)
	mustRun(t, a, "user", "add", "eva", "--name", "Eva", "--password", "heslo123")

	mustRun(t, a, "user", "deactivate", "eva")

	assert.NotContains(t, mustRun(t, a, "user", "list"), "eva")
}

func TestVacationAgainstFund(t *testing.T) {
	a := newTestApp(t)
	mustRun(t, a, "user", "add", "eva", "--name", "Eva", "--password", "heslo123")

	mustRun(t, a, "fund", "set", "eva", "--year", "2026", "--vacation", "25")
	mustRun(t, a, "absence", "insert", "eva", "vacation", "2026-06-08", "2026-06-12", "--half-day", "2026-06-09")

	out := mustRun(t, a, "report", "leave", "eva", "--year", "2026")
	assert.Contains(t, out, "25.0")
	assert.Contains(t, out, "4.5")
	assert.Contains(t, out, "20.5")
}

func TestInsertedAbsenceCannotBeDecidedAgain(t *testing.T) {
	a := newTestApp(t)
	mustRun(t, a, "user", "add", "eva", "--name", "Eva", "--password", "heslo123")
	mustRun(t, a, "absence", "insert", "eva", "sickday", "2026-10-12")

	_, err := run(a, "absence", "reject", "1")
	assert.ErrorIs(t, err, service.ErrAbsenceAlreadyDecided)

	mustRun(t, a, "absence", "delete", "1")
	_, err = run(a, "absence", "delete", "1")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDayAndPauseCorrections(t *testing.T) {
	a := newTestApp(t)
	mustRun(t, a, "user", "add", "eva", "--name", "Eva", "--password", "heslo123")

	out := mustRun(t, a, "day", "set", "eva", "2026-10-13", "--in", "08:00", "--out", "16:00")
	assert.Contains(t, out, "worked 8h 00m")

	out = mustRun(t, a, "pause", "set", "eva", "2026-10-13", "--from", "12:00", "--to", "12:30")
	assert.Contains(t, out, "worked 7h 30m")

	_, err := run(a, "day", "set", "eva", "2026-10-13", "--in", "16:00", "--out", "08:00")
	assert.ErrorIs(t, err, service.ErrInvalidAttendance)

	mustRun(t, a, "day", "clear", "eva", "2026-10-13")
	assert.Contains(t, mustRun(t, a, "day", "show", "eva", "2026-10-13"), "no attendance")
}

func TestTeamReport(t *testing.T) {
	a := newTestApp(t)
	mustRun(t, a, "user", "add", "eva", "--name", "Eva", "--password", "heslo123")
	mustRun(t, a, "user", "add", "karel", "--name", "Karel", "--password", "heslo123", "--role", "temp-worker")

	out := mustRun(t, a, "report", "team", "2026-09")

	assert.Contains(t, out, "Eva")
	assert.Contains(t, out, "Karel")
	assert.Contains(t, out, "2026-09")
	assert.Contains(t, out, "-168h 00m")
}
