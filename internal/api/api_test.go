package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"dochazka-bot/internal/clock"
	"dochazka-bot/internal/config"
	"dochazka-bot/internal/database"
	"dochazka-bot/internal/logging"
	"dochazka-bot/internal/models"
	"dochazka-bot/internal/repository"
	"dochazka-bot/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "s3cret"

type testApp struct {
	app      *fiber.App
	svc      *service.Services
	admin    *models.User
	employee *models.User
}

// newTestApp starts on Wednesday 2026-10-14 08:00 Prague time with the employee checked in.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := logging.Discard()
	db, err := database.Open(filepath.Join(t.TempDir(), "dochazka.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store, err := repository.NewStore(db, logger)
	require.NoError(t, err)

	prague, err := time.LoadLocation("Europe/Prague")
	require.NoError(t, err)
	clk := clock.NewFixed(time.Date(2026, time.October, 14, 8, 0, 0, 0, prague))
	svc := service.New(store, clk, config.DefaultPolicy(), nil, logger)

	ctx := context.Background()
	admin, err := svc.Users.EnsureAdmin(ctx, "admin", "admin-secret", 0)
	require.NoError(t, err)
	employee, err := svc.Users.CreateUser(ctx, admin, service.NewUser{
		Username:    "petr",
		Password:    "heslo123",
		DisplayName: "Petr Svoboda",
		Role:        models.RoleEmployee,
	})
	require.NoError(t, err)

	_, err = svc.Attendance.CheckIn(ctx, employee)
	require.NoError(t, err)
	clk.Advance(2 * time.Hour)

	return &testApp{
		app:      NewApp(NewHandler(svc, testToken, logger)),
		svc:      svc,
		admin:    admin,
		employee: employee,
	}
}

func (ta *testApp) get(t *testing.T, path string, token string) (*http.Response, []byte) {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		request.Header.Set(tokenHeader, token)
	}
	response, err := ta.app.Test(request, -1)
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response, body
}

func TestHealthNeedsNoToken(t *testing.T) {
	ta := newTestApp(t)

	response, body := ta.get(t, "/api/health", "")

	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestTokenRequired(t *testing.T) {
	ta := newTestApp(t)

	for _, token := range []string{"", "wrong"} {
		response, body := ta.get(t, "/api/status", token)
		assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
		assert.Contains(t, string(body), "unauthorized")
	}
}

func TestStatusOverview(t *testing.T) {
	ta := newTestApp(t)

	response, body := ta.get(t, "/api/status", testToken)
	require.Equal(t, http.StatusOK, response.StatusCode)

	var payload struct {
		Date  string               `json:"date"`
		Users []service.UserStatus `json:"users"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "2026-10-14", payload.Date)

	presence := map[string]service.Presence{}
	for _, u := range payload.Users {
		presence[u.DisplayName] = u.Presence
	}
	assert.Equal(t, service.PresenceWorking, presence["Petr Svoboda"])
	assert.Equal(t, service.PresenceOffline, presence["Administrator"])
}

func TestStatusRejectsBadDate(t *testing.T) {
	ta := newTestApp(t)

	response, _ := ta.get(t, "/api/status?date=2026-02-30", testToken)

	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
}

func TestUserMonth(t *testing.T) {
	ta := newTestApp(t)

	response, body := ta.get(t, fmt.Sprintf("/api/users/%d/months/2026/10", ta.employee.ID), testToken)
	require.Equal(t, http.StatusOK, response.StatusCode)

	var summary service.MonthSummary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, ta.employee.ID, summary.UserID)
	assert.Equal(t, 10, summary.WorkdaysSoFar)
	assert.Equal(t, int64(2*3600), summary.WorkedSeconds)
	assert.Equal(t, int64(10*8*3600), summary.ExpectedSeconds)
}

func TestUserMonthErrors(t *testing.T) {
	ta := newTestApp(t)

	response, _ := ta.get(t, "/api/users/99/months/2026/10", testToken)
	assert.Equal(t, http.StatusNotFound, response.StatusCode)

	response, body := ta.get(t, fmt.Sprintf("/api/users/%d/months/2026/13", ta.employee.ID), testToken)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	assert.Contains(t, string(body), "invalid month")
}

func TestUserLeave(t *testing.T) {
	ta := newTestApp(t)

	response, body := ta.get(t, fmt.Sprintf("/api/users/%d/leave/2026", ta.employee.ID), testToken)
	require.Equal(t, http.StatusOK, response.StatusCode)

	var summary service.LeaveSummary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 20.0, summary.VacationTotal)
	assert.Equal(t, 5, summary.SickRemaining)
}

func TestTeamMonth(t *testing.T) {
	ta := newTestApp(t)

	response, body := ta.get(t, "/api/months/2026/9", testToken)
	require.Equal(t, http.StatusOK, response.StatusCode)

	var summaries []service.MonthSummary
	require.NoError(t, json.Unmarshal(body, &summaries))
	require.Len(t, summaries, 2)
	for _, s := range summaries {
		assert.Equal(t, 21, s.WorkdaysSoFar)
	}
}
