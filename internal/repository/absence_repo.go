package repository

import (
	"context"
	"errors"
	"time"

	"dochazka-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AbsenceRepository interface {
	Create(ctx context.Context, absence *models.AbsenceRequest) error
	Save(ctx context.Context, absence *models.AbsenceRequest) error
	GetByID(ctx context.Context, id uint) (*models.AbsenceRequest, error)
	Decide(ctx context.Context, id uint, state models.ApprovalState, at time.Time) (bool, error)
	SetNotified(ctx context.Context, id uint, notified bool) error
	Delete(ctx context.Context, id uint) error
	DeletePending(ctx context.Context, id, userID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]models.AbsenceRequest, error)
	ListPending(ctx context.Context) ([]models.AbsenceRequest, error)
	ListOverlapping(ctx context.Context, userID uint, from, to string) ([]models.AbsenceRequest, error)
	ListOn(ctx context.Context, day string) ([]models.AbsenceRequest, error)
}

type GormAbsenceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAbsenceRepository(db *gorm.DB, logger *logrus.Logger) (*GormAbsenceRepository, error) {
	if err := db.AutoMigrate(&models.AbsenceRequest{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate absence_requests table")
		return nil, err
	}
	return &GormAbsenceRepository{db: db, logger: logger}, nil
}

func (r *GormAbsenceRepository) Create(ctx context.Context, absence *models.AbsenceRequest) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(absence).Error; err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"absence_id": absence.ID,
		"user_id":    absence.UserID,
		"type":       absence.Type,
		"from":       absence.DateFrom,
		"to":         absence.DateTo,
		"approval":   absence.Approval.String(),
	}).Info("Absence request created")
	return nil
}

func (r *GormAbsenceRepository) Save(ctx context.Context, absence *models.AbsenceRequest) error {
	return r.db.WithContext(ctx).Omit("User").Save(absence).Error
}

func (r *GormAbsenceRepository) GetByID(ctx context.Context, id uint) (*models.AbsenceRequest, error) {
	var absence models.AbsenceRequest
	result := r.db.WithContext(ctx).Preload("User").First(&absence, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &absence, nil
}

// Decide moves a pending request to state. It reports false when the request
// was already decided, so a decision happens at most once.
func (r *GormAbsenceRepository) Decide(ctx context.Context, id uint, state models.ApprovalState, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.AbsenceRequest{}).
		Where("id = ? AND approval = ?", id, models.ApprovalPending).
		Updates(map[string]interface{}{
			"approval":   state,
			"decided_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormAbsenceRepository) SetNotified(ctx context.Context, id uint, notified bool) error {
	return r.db.WithContext(ctx).Model(&models.AbsenceRequest{}).
		Where("id = ?", id).
		Update("notified", notified).Error
}

func (r *GormAbsenceRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.AbsenceRequest{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.logger.WithField("absence_id", id).Info("Absence request deleted")
	return nil
}

// DeletePending removes the request only while it belongs to userID and is still
// pending. It reports false when a decision or another delete got there first.
func (r *GormAbsenceRepository) DeletePending(ctx context.Context, id, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND approval = ?", id, userID, models.ApprovalPending).
		Delete(&models.AbsenceRequest{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	r.logger.WithFields(logrus.Fields{
		"absence_id": id,
		"user_id":    userID,
	}).Info("Pending absence request withdrawn")
	return true, nil
}

func (r *GormAbsenceRepository) ListByUser(ctx context.Context, userID uint) ([]models.AbsenceRequest, error) {
	var absences []models.AbsenceRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_from DESC, id DESC").
		Find(&absences).Error
	return absences, err
}

func (r *GormAbsenceRepository) ListPending(ctx context.Context) ([]models.AbsenceRequest, error) {
	var absences []models.AbsenceRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("approval = ?", models.ApprovalPending).
		Order("created_at ASC, id ASC").
		Find(&absences).Error
	return absences, err
}

// ListOverlapping returns the user's approved absences touching [from, to].
// Open illnesses started on or before to are included because their end is unknown.
func (r *GormAbsenceRepository) ListOverlapping(ctx context.Context, userID uint, from, to string) ([]models.AbsenceRequest, error) {
	var absences []models.AbsenceRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND approval = ?", userID, models.ApprovalApproved).
		Where(r.db.
			Where("date_from <= ? AND date_to >= ?", to, from).
			Or("type = ? AND date_to = date_from AND date_from <= ?", models.AbsenceIllness, to)).
		Order("date_from ASC, id ASC").
		Find(&absences).Error
	return absences, err
}

// ListOn returns pending and approved absences of all users visible on day.
func (r *GormAbsenceRepository) ListOn(ctx context.Context, day string) ([]models.AbsenceRequest, error) {
	var absences []models.AbsenceRequest
	err := r.db.WithContext(ctx).
		Where("approval <> ?", models.ApprovalRejected).
		Where(r.db.
			Where("date_from <= ? AND date_to >= ?", day, day).
			Or("type = ? AND date_to = date_from AND date_from <= ? AND approval = ?",
				models.AbsenceIllness, day, models.ApprovalApproved)).
		Order("approval DESC, id ASC").
		Find(&absences).Error
	return absences, err
}
