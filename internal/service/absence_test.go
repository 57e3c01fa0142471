package service

import (
	"context"
	"testing"
	"time"

	"dochazka-bot/internal/models"
	"dochazka-bot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestAbsenceValidation(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	_, err := env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{Type: "holiday", From: "2026-06-08"})
	assert.ErrorIs(t, err, ErrInvalidAbsenceType)

	_, err = env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{Type: models.AbsenceVacation, From: "2026-06-10", To: "2026-06-08"})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{Type: models.AbsenceVacation, From: "10.6.2026"})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{
		Type: models.AbsenceVacation, From: "2026-06-08", To: "2026-06-10", HalfDays: []string{"2026-06-11"},
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	sick, err := env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{
		Type: models.AbsenceSickday, From: "2026-06-08", HalfDays: []string{"2026-06-08"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-06-08", sick.DateTo)
	assert.Empty(t, sick.HalfDays)
	assert.True(t, sick.IsPending())

	illness, err := env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{Type: models.AbsenceIllness, From: "2026-06-15"})
	require.NoError(t, err)
	assert.True(t, illness.IsOpenIllness())
}

func TestApproveAbsenceNotifiesOnce(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")
	_, err := env.svc.Users.LinkChat(env.ctx, jana.ID, 777)
	require.NoError(t, err)

	req, err := env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{Type: models.AbsenceVacation, From: "2026-06-08"})
	require.NoError(t, err)

	_, err = env.svc.Absences.ApproveAbsence(env.ctx, jana, req.ID, true)
	assert.ErrorIs(t, err, ErrForbidden)

	approved, err := env.svc.Absences.ApproveAbsence(env.ctx, env.admin, req.ID, true)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved())
	assert.True(t, approved.Notified)
	assert.NotNil(t, approved.DecidedAt)
	assert.Equal(t, []uint{req.ID}, env.notifier.sent)

	_, err = env.svc.Absences.ApproveAbsence(env.ctx, env.admin, req.ID, false)
	assert.ErrorIs(t, err, ErrAbsenceAlreadyDecided)

	_, err = env.svc.Absences.ApproveAbsence(env.ctx, env.admin, 9999, true)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := env.svc.Absences.ListForUser(env.ctx, jana.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Notified)
	assert.Equal(t, models.ApprovalApproved, stored[0].Approval)
}

func TestNotificationFailureKeepsApproval(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errDelivery
	jana := env.employee(t, "jana")
	_, err := env.svc.Users.LinkChat(env.ctx, jana.ID, 777)
	require.NoError(t, err)

	req, err := env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{Type: models.AbsenceSickday, From: "2026-06-08"})
	require.NoError(t, err)

	approved, err := env.svc.Absences.ApproveAbsence(env.ctx, env.admin, req.ID, true)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved())
	assert.False(t, approved.Notified)

	ok, err := env.svc.Absences.HasApprovedAbsenceOn(env.ctx, jana.ID, "2026-06-08")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRejectionWithoutChatIsSilent(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	req, err := env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{Type: models.AbsenceVacation, From: "2026-06-08"})
	require.NoError(t, err)

	rejected, err := env.svc.Absences.ApproveAbsence(env.ctx, env.admin, req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, rejected.Approval)
	assert.Empty(t, env.notifier.sent)
	assert.False(t, rejected.Notified)
}

func TestCloseIllness(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	illness := env.approved(t, jana, AbsenceInput{Type: models.AbsenceIllness, From: "2026-09-28"})
	assert.ErrorIs(t, env.svc.Absences.CloseIllness(env.ctx, env.admin, illness.ID, "2026-09-01"), ErrInvalidDateRange)
	assert.ErrorIs(t, env.svc.Absences.CloseIllness(env.ctx, env.admin, illness.ID, "2026-09-28"), ErrInvalidDateRange)

	current, err := env.svc.Absences.AbsenceOn(env.ctx, jana.ID, "2026-10-14")
	require.NoError(t, err)
	require.NotNil(t, current, "illness is still open after a rejected close")
	assert.Equal(t, illness.ID, current.ID)

	require.NoError(t, env.svc.Absences.CloseIllness(env.ctx, env.admin, illness.ID, "2026-10-09"))

	list, err := env.svc.Absences.ListForUser(env.ctx, jana.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2026-10-09", list[0].DateTo)

	// Already closed: nothing changes.
	require.NoError(t, env.svc.Absences.CloseIllness(env.ctx, env.admin, illness.ID, "2026-10-20"))

	sick := env.approved(t, jana, AbsenceInput{Type: models.AbsenceSickday, From: "2026-10-12"})
	require.NoError(t, env.svc.Absences.CloseIllness(env.ctx, env.admin, sick.ID, "2026-10-15"))

	pending, err := env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{Type: models.AbsenceIllness, From: "2026-10-13"})
	require.NoError(t, err)
	require.NoError(t, env.svc.Absences.CloseIllness(env.ctx, jana, pending.ID, "2026-10-15"))

	list, err = env.svc.Absences.ListForUser(env.ctx, jana.ID)
	require.NoError(t, err)
	for _, a := range list {
		switch a.ID {
		case illness.ID:
			assert.Equal(t, "2026-10-09", a.DateTo)
		case sick.ID:
			assert.Equal(t, "2026-10-12", a.DateTo)
		case pending.ID:
			assert.Equal(t, "2026-10-13", a.DateTo)
		}
	}

	assert.ErrorIs(t, env.svc.Absences.CloseIllness(env.ctx, env.admin, 9999, "2026-10-15"), ErrNotFound)
}

func TestDeleteAbsencePermissions(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")
	petr := env.employee(t, "petr")

	pending, err := env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{Type: models.AbsenceVacation, From: "2026-06-08"})
	require.NoError(t, err)
	approved := env.approved(t, jana, AbsenceInput{Type: models.AbsenceVacation, From: "2026-06-15"})

	assert.ErrorIs(t, env.svc.Absences.DeleteAbsence(env.ctx, petr, pending.ID), ErrForbidden)
	assert.ErrorIs(t, env.svc.Absences.DeleteAbsence(env.ctx, jana, approved.ID), ErrForbidden)

	require.NoError(t, env.svc.Absences.DeleteAbsence(env.ctx, jana, pending.ID))
	require.NoError(t, env.svc.Absences.DeleteAbsence(env.ctx, env.admin, approved.ID))
	assert.ErrorIs(t, env.svc.Absences.DeleteAbsence(env.ctx, env.admin, approved.ID), ErrNotFound)

	list, err := env.svc.Absences.ListForUser(env.ctx, jana.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// approvingAbsences decides every request as approved right after it is read,
// the way an admin clicking the button between read and write would.
type approvingAbsences struct {
	repository.AbsenceRepository
	at time.Time
}

func (r *approvingAbsences) GetByID(ctx context.Context, id uint) (*models.AbsenceRequest, error) {
	absence, err := r.AbsenceRepository.GetByID(ctx, id)
	if err != nil || absence == nil {
		return absence, err
	}
	if _, err := r.AbsenceRepository.Decide(ctx, id, models.ApprovalApproved, r.at); err != nil {
		return nil, err
	}
	return absence, nil
}

func TestWithdrawLosesToConcurrentApproval(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	pending, err := env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{Type: models.AbsenceVacation, From: "2026-11-02"})
	require.NoError(t, err)

	env.store.Absences = &approvingAbsences{AbsenceRepository: env.store.Absences, at: env.clock.Now()}

	err = env.svc.Absences.DeleteAbsence(env.ctx, jana, pending.ID)
	assert.ErrorIs(t, err, ErrAbsenceAlreadyDecided)

	list, err := env.svc.Absences.ListForUser(env.ctx, jana.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsApproved())
}

func TestVisibleAbsencePrefersApproved(t *testing.T) {
	env := newTestEnv(t)
	jana := env.employee(t, "jana")

	_, err := env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{Type: models.AbsenceVacation, From: "2026-06-08", To: "2026-06-12"})
	require.NoError(t, err)

	shown, err := env.svc.Absences.AbsenceOn(env.ctx, jana.ID, "2026-06-10")
	require.NoError(t, err)
	require.NotNil(t, shown)
	assert.True(t, shown.IsPending())

	sick := env.approved(t, jana, AbsenceInput{Type: models.AbsenceSickday, From: "2026-06-10"})
	shown, err = env.svc.Absences.AbsenceOn(env.ctx, jana.ID, "2026-06-10")
	require.NoError(t, err)
	require.NotNil(t, shown)
	assert.Equal(t, sick.ID, shown.ID)

	rejected, err := env.svc.Absences.RequestAbsence(env.ctx, jana, AbsenceInput{Type: models.AbsenceVacation, From: "2026-06-20"})
	require.NoError(t, err)
	_, err = env.svc.Absences.ApproveAbsence(env.ctx, env.admin, rejected.ID, false)
	require.NoError(t, err)

	shown, err = env.svc.Absences.AbsenceOn(env.ctx, jana.ID, "2026-06-20")
	require.NoError(t, err)
	assert.Nil(t, shown)

	pending, err := env.svc.Absences.ListPending(env.ctx, env.admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "jana", pending[0].User.Username)

	_, err = env.svc.Absences.ListPending(env.ctx, jana)
	assert.ErrorIs(t, err, ErrForbidden)
}
