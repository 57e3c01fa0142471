package service

import (
	"context"
	"testing"

	"dochazka-bot/internal/models"
	"dochazka-bot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureLeaveFundIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	first, err := env.svc.Leave.EnsureLeaveFund(env.ctx, jana.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 20.0, first.VacationDays)
	assert.Equal(t, 0.0, first.CarryOver)
	assert.Equal(t, 5, first.SickDays)

	again, err := env.svc.Leave.EnsureLeaveFund(env.ctx, jana.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestHalfDaysConsumeHalf(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	// Monday to Friday without holidays, two of them half days.
	env.approved(t, jana, AbsenceInput{
		Type:     models.AbsenceVacation,
		From:     "2026-06-08",
		To:       "2026-06-12",
		HalfDays: []string{"2026-06-09", "2026-06-11"},
	})

	used, err := env.svc.Leave.UsedVacationDays(env.ctx, jana.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 4.0, used)
}

func TestVacationRemainingMayGoNegative(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	zero := 0.0
	_, err := env.svc.Leave.UpdateLeaveFund(env.ctx, env.admin, jana.ID, 2026, LeaveFundUpdate{VacationDays: &zero})
	require.NoError(t, err)

	req, err := env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{
		Type: models.AbsenceVacation,
		From: "2026-06-08",
		To:   "2026-06-10",
	})
	require.NoError(t, err)

	summary, err := env.svc.Leave.LeaveSummary(env.ctx, jana.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.VacationUsed, "pending requests do not count")

	_, err = env.svc.Absences.ApproveAbsence(env.ctx, env.admin, req.ID, true)
	require.NoError(t, err)

	summary, err = env.svc.Leave.LeaveSummary(env.ctx, jana.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.VacationTotal)
	assert.Equal(t, 3.0, summary.VacationUsed)
	assert.Equal(t, -3.0, summary.VacationRemaining)
}

func TestIllnessDoesNotTouchLeaveFund(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	env.approved(t, jana, AbsenceInput{Type: models.AbsenceIllness, From: "2026-03-02", To: "2026-03-13"})

	summary, err := env.svc.Leave.LeaveSummary(env.ctx, jana.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.VacationUsed)
	assert.Equal(t, 0, summary.SickUsed)
	assert.Equal(t, 20.0, summary.VacationRemaining)
	assert.Equal(t, 5, summary.SickRemaining)
}

func TestSickDaysAndHalfDayRequests(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	env.approved(t, jana, AbsenceInput{Type: models.AbsenceSickday, From: "2026-02-10"})
	// Saturday and Sunday are not consumed.
	env.approved(t, jana, AbsenceInput{Type: models.AbsenceSickday, From: "2026-02-13", To: "2026-02-16"})
	env.approved(t, jana, AbsenceInput{Type: models.AbsenceVacationHalf, From: "2026-04-15"})

	summary, err := env.svc.Leave.LeaveSummary(env.ctx, jana.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.SickUsed)
	assert.Equal(t, 2, summary.SickRemaining)
	assert.Equal(t, 0.5, summary.VacationUsed)
	assert.Equal(t, 19.5, summary.VacationRemaining)
}

func TestVacationIsSplitAtYearEnd(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	// Jan 1 is a holiday, so 2026 only gets Friday Jan 2.
	env.approved(t, jana, AbsenceInput{Type: models.AbsenceVacation, From: "2025-12-29", To: "2026-01-02"})

	used2025, err := env.svc.Leave.UsedVacationDays(env.ctx, jana.ID, 2025)
	require.NoError(t, err)
	used2026, err := env.svc.Leave.UsedVacationDays(env.ctx, jana.ID, 2026)
	require.NoError(t, err)

	assert.Equal(t, 3.0, used2025)
	assert.Equal(t, 1.0, used2026)
}

func TestUpdateLeaveFundIsPartial(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	carry := 2.5
	fund, err := env.svc.Leave.UpdateLeaveFund(env.ctx, env.admin, jana.ID, 2026, LeaveFundUpdate{CarryOver: &carry})
	require.NoError(t, err)
	assert.Equal(t, 20.0, fund.VacationDays)
	assert.Equal(t, 22.5, fund.VacationTotal())
	assert.Equal(t, 5, fund.SickDays)

	sick := 3
	fund, err = env.svc.Leave.UpdateLeaveFund(env.ctx, env.admin, jana.ID, 2026, LeaveFundUpdate{SickDays: &sick})
	require.NoError(t, err)
	assert.Equal(t, 2.5, fund.CarryOver)
	assert.Equal(t, 3, fund.SickDays)

	_, err = env.svc.Leave.UpdateLeaveFund(env.ctx, jana, jana.ID, 2026, LeaveFundUpdate{SickDays: &sick})
	assert.ErrorIs(t, err, ErrForbidden)

	negative := -1
	_, err = env.svc.Leave.UpdateLeaveFund(env.ctx, env.admin, jana.ID, 2026, LeaveFundUpdate{SickDays: &negative})
	assert.ErrorIs(t, err, ErrInvalidLeaveFund)

	stored, err := env.svc.Leave.EnsureLeaveFund(env.ctx, jana.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.SickDays)
}

// sickDaysWriter changes the sick-day allotment of every fund right after it is
// read, standing in for a second admin saving the same fund.
type sickDaysWriter struct {
	repository.LeaveFundRepository
	sickDays int
}

func (r *sickDaysWriter) Get(ctx context.Context, userID uint, year int) (*models.LeaveFund, error) {
	fund, err := r.LeaveFundRepository.Get(ctx, userID, year)
	if err != nil || fund == nil {
		return fund, err
	}
	if err := r.LeaveFundRepository.Update(ctx, fund.ID, map[string]interface{}{"sick_days": r.sickDays}); err != nil {
		return nil, err
	}
	return fund, nil
}

func TestUpdateLeaveFundKeepsConcurrentChanges(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	_, err := env.svc.Leave.EnsureLeaveFund(env.ctx, jana.ID, 2026)
	require.NoError(t, err)

	direct := env.store.LeaveFunds
	env.store.LeaveFunds = &sickDaysWriter{LeaveFundRepository: direct, sickDays: 2}

	vacation := 25.0
	_, err = env.svc.Leave.UpdateLeaveFund(env.ctx, env.admin, jana.ID, 2026, LeaveFundUpdate{VacationDays: &vacation})
	require.NoError(t, err)

	stored, err := direct.Get(env.ctx, jana.ID, 2026)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 25.0, stored.VacationDays)
	assert.Equal(t, 2, stored.SickDays)
}

func TestEnsureLeaveFundRejectsYearOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	_, err := env.svc.Leave.EnsureLeaveFund(env.ctx, jana.ID, 1999)
	assert.ErrorIs(t, err, ErrInvalidLeaveFund)
}
