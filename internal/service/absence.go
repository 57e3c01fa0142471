package service

import (
	"context"
	"errors"
	"fmt"

	"dochazka-bot/internal/clock"
	"dochazka-bot/internal/models"
	"dochazka-bot/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notifier delivers an absence decision to the employee.
type Notifier interface {
	NotifyAbsenceDecision(ctx context.Context, user *models.User, absence *models.AbsenceRequest) error
}

type AbsenceService struct {
	store    *repository.Store
	clock    clock.Clock
	notifier Notifier
	logger   *logrus.Logger
}

// NewAbsenceService builds the ledger. notifier may be nil when nobody is to be told.
func NewAbsenceService(store *repository.Store, clk clock.Clock, notifier Notifier, logger *logrus.Logger) *AbsenceService {
	return &AbsenceService{
		store:    store,
		clock:    clk,
		notifier: notifier,
		logger:   logger,
	}
}

// AbsenceInput is a new absence request. An empty To means a single day; for an
// illness it marks the end as not yet known.
type AbsenceInput struct {
	Type     models.AbsenceType
	From     string
	To       string
	Note     string
	HalfDays []string
}

// RequestAbsence files a pending request for user.
func (s *AbsenceService) RequestAbsence(ctx context.Context, user *models.User, in AbsenceInput) (*models.AbsenceRequest, error) {
	absence, err := s.build(user.ID, in)
	if err != nil {
		s.logger.WithField("user_id", user.ID).WithError(err).Warn("Absence request rejected")
		return nil, err
	}
	absence.Approval = models.ApprovalPending

	if err := s.store.Absences.Create(ctx, absence); err != nil {
		return nil, err
	}
	return absence, nil
}

// InsertApproved records an absence for userID that needs no approval. Admin only.
func (s *AbsenceService) InsertApproved(ctx context.Context, actor *models.User, userID uint, in AbsenceInput) (*models.AbsenceRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	absence, err := s.build(userID, in)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	absence.Approval = models.ApprovalApproved
	absence.DecidedAt = &now

	if err := s.store.Absences.Create(ctx, absence); err != nil {
		return nil, err
	}
	return absence, nil
}

func (s *AbsenceService) build(userID uint, in AbsenceInput) (*models.AbsenceRequest, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAbsenceType, in.Type)
	}

	loc := s.clock.Location()
	if _, err := parseDate(loc, in.From); err != nil {
		return nil, err
	}
	if in.To == "" {
		in.To = in.From
	}
	if _, err := parseDate(loc, in.To); err != nil {
		return nil, err
	}
	if in.To < in.From {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidDateRange, in.To, in.From)
	}

	absence := &models.AbsenceRequest{
		UserID:   userID,
		Type:     in.Type,
		DateFrom: in.From,
		DateTo:   in.To,
		Note:     in.Note,
		HalfDays: models.DateSet{},
	}

	if in.Type == models.AbsenceVacation && len(in.HalfDays) > 0 {
		for _, d := range in.HalfDays {
			if _, err := parseDate(loc, d); err != nil {
				return nil, err
			}
			if d < in.From || d > in.To {
				return nil, fmt.Errorf("%w: half-day %s is outside %s..%s", ErrInvalidDateRange, d, in.From, in.To)
			}
		}
		absence.HalfDays = models.NewDateSet(in.HalfDays...)
	}
	return absence, nil
}

// ApproveAbsence decides a pending request once. When the employee has a linked chat
// they are notified; delivery failures are logged and never undo the decision.
func (s *AbsenceService) ApproveAbsence(ctx context.Context, actor *models.User, id uint, approve bool) (*models.AbsenceRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	state := models.ApprovalRejected
	if approve {
		state = models.ApprovalApproved
	}

	decided, err := s.store.Absences.Decide(ctx, id, state, s.clock.Now())
	if err != nil {
		return nil, err
	}

	absence, err := s.store.Absences.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if absence == nil {
		return nil, ErrNotFound
	}
	if !decided {
		return nil, ErrAbsenceAlreadyDecided
	}

	s.logger.WithFields(logrus.Fields{
		"admin_id":   actor.ID,
		"absence_id": id,
		"user_id":    absence.UserID,
		"approval":   state.String(),
	}).Info("Absence request decided")

	s.notify(ctx, absence)
	return absence, nil
}

func (s *AbsenceService) notify(ctx context.Context, absence *models.AbsenceRequest) {
	if s.notifier == nil || absence.User.ChatID == nil {
		return
	}

	entry := s.logger.WithFields(logrus.Fields{
		"absence_id": absence.ID,
		"user_id":    absence.UserID,
	})
	if err := s.notifier.NotifyAbsenceDecision(ctx, &absence.User, absence); err != nil {
		entry.WithError(err).Warn("Absence notification failed")
		return
	}
	if err := s.store.Absences.SetNotified(ctx, absence.ID, true); err != nil {
		entry.WithError(err).Warn("Failed to record absence notification")
		return
	}
	absence.Notified = true
	entry.Info("Absence notification sent")
}

// CloseIllness back-fills the end of an approved open illness. The end must be
// after the first day; a single day off sick is a sick day, not an illness.
// Requests that are not an approved open illness are left untouched and no error is returned.
func (s *AbsenceService) CloseIllness(ctx context.Context, actor *models.User, id uint, endDate string) error {
	absence, err := s.store.Absences.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if absence == nil {
		return ErrNotFound
	}
	if !actor.IsAdmin() && actor.ID != absence.UserID {
		return ErrForbidden
	}
	if _, err := parseDate(s.clock.Location(), endDate); err != nil {
		return err
	}

	if !absence.IsOpenIllness() || !absence.IsApproved() {
		s.logger.WithField("absence_id", id).Debug("Close illness ignored")
		return nil
	}
	// to == from marks the illness as open, so the end must be a later day
	if endDate <= absence.DateFrom {
		return fmt.Errorf("%w: %s is not after %s", ErrInvalidDateRange, endDate, absence.DateFrom)
	}

	absence.DateTo = endDate
	if err := s.store.Absences.Save(ctx, absence); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"absence_id": id,
		"user_id":    absence.UserID,
		"to":         endDate,
	}).Info("Illness closed")
	return nil
}

// DeleteAbsence removes a request. Admins may delete anything; employees only
// their own pending requests.
func (s *AbsenceService) DeleteAbsence(ctx context.Context, actor *models.User, id uint) error {
	absence, err := s.store.Absences.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if absence == nil {
		return ErrNotFound
	}
	if !actor.IsAdmin() {
		if absence.UserID != actor.ID || !absence.IsPending() {
			return ErrForbidden
		}
		deleted, err := s.store.Absences.DeletePending(ctx, id, actor.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrAbsenceAlreadyDecided
		}
		return nil
	}

	if err := s.store.Absences.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *AbsenceService) ListForUser(ctx context.Context, userID uint) ([]models.AbsenceRequest, error) {
	return s.store.Absences.ListByUser(ctx, userID)
}

// ListPending returns the requests awaiting a decision, oldest first. Admin only.
func (s *AbsenceService) ListPending(ctx context.Context, actor *models.User) ([]models.AbsenceRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.Absences.ListPending(ctx)
}

// AbsenceOn returns the absence shown for userID on day, or nil.
func (s *AbsenceService) AbsenceOn(ctx context.Context, userID uint, day string) (*models.AbsenceRequest, error) {
	if _, err := parseDate(s.clock.Location(), day); err != nil {
		return nil, err
	}
	absences, err := s.store.Absences.ListOn(ctx, day)
	if err != nil {
		return nil, err
	}
	return visibleAbsences(absences)[userID], nil
}

// HasApprovedAbsenceOn is the gate the front-ends check before attendance actions.
func (s *AbsenceService) HasApprovedAbsenceOn(ctx context.Context, userID uint, day string) (bool, error) {
	absence, err := s.AbsenceOn(ctx, userID, day)
	if err != nil {
		return false, err
	}
	return absence != nil && absence.IsApproved(), nil
}

// visibleAbsences picks at most one absence per user: approved before pending,
// then the oldest request. Rejected requests are never shown.
func visibleAbsences(absences []models.AbsenceRequest) map[uint]*models.AbsenceRequest {
	visible := make(map[uint]*models.AbsenceRequest)
	for i := range absences {
		a := &absences[i]
		if a.Approval == models.ApprovalRejected {
			continue
		}
		current, ok := visible[a.UserID]
		if !ok || (a.IsApproved() && !current.IsApproved()) {
			visible[a.UserID] = a
		}
	}
	return visible
}
