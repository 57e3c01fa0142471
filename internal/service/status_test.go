package service

import (
	"testing"

	"dochazka-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverview(t *testing.T) {
	env := newTestEnv(t)
	working := env.employee(t, "working")
	pausing := env.employee(t, "pausing")
	done := env.employee(t, "done")
	away := env.employee(t, "away")
	waiting := env.employee(t, "waiting")

	env.at(8, 0)
	for _, u := range []*models.User{working, pausing, done} {
		_, err := env.svc.Attendance.CheckIn(env.ctx, u)
		require.NoError(t, err)
	}
	env.at(11, 0)
	_, err := env.svc.Attendance.StartPause(env.ctx, pausing, models.PauseDoctor, true)
	require.NoError(t, err)
	_, err = env.svc.Attendance.CheckOut(env.ctx, done)
	require.NoError(t, err)

	env.approved(t, away, AbsenceInput{Type: models.AbsenceVacation, From: "2026-10-12", To: "2026-10-16"})
	_, err = env.svc.Absences.RequestAbsence(env.ctx, waiting, AbsenceInput{Type: models.AbsenceSickday, From: "2026-10-14"})
	require.NoError(t, err)
	// A pending request does not hide attendance.
	_, err = env.svc.Absences.RequestAbsence(env.ctx, working, AbsenceInput{Type: models.AbsenceSickday, From: "2026-10-14"})
	require.NoError(t, err)

	env.at(12, 0)
	statuses, err := env.svc.Status.Overview(env.ctx, "2026-10-14")
	require.NoError(t, err)

	byID := make(map[uint]UserStatus, len(statuses))
	for _, st := range statuses {
		byID[st.UserID] = st
	}
	require.Len(t, byID, 6)

	assert.Equal(t, PresenceWorking, byID[working.ID].Presence)
	assert.EqualValues(t, 4*3600, byID[working.ID].WorkedSeconds)

	assert.Equal(t, PresencePause, byID[pausing.ID].Presence)
	assert.Equal(t, models.PauseDoctor.Label(), byID[pausing.ID].Detail)
	assert.EqualValues(t, 4*3600, byID[pausing.ID].WorkedSeconds)

	assert.Equal(t, PresenceDone, byID[done.ID].Presence)
	assert.Equal(t, "odchod 11:00", byID[done.ID].Detail)

	assert.Equal(t, PresenceAbsent, byID[away.ID].Presence)
	require.NotNil(t, byID[away.ID].Absence)
	assert.Equal(t, models.AbsenceVacation, byID[away.ID].Absence.Type)

	assert.Equal(t, PresenceAbsent, byID[waiting.ID].Presence)
	assert.Contains(t, byID[waiting.ID].Detail, "čeká na schválení")

	assert.Equal(t, PresenceOffline, byID[env.admin.ID].Presence)

	_, err = env.svc.Status.Overview(env.ctx, "yesterday")
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}
