package repository

import (
	"context"
	"errors"

	"dochazka-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type LeaveFundRepository interface {
	Get(ctx context.Context, userID uint, year int) (*models.LeaveFund, error)
	Create(ctx context.Context, fund *models.LeaveFund) error
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
}

type GormLeaveFundRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormLeaveFundRepository(db *gorm.DB, logger *logrus.Logger) (*GormLeaveFundRepository, error) {
	if err := db.AutoMigrate(&models.LeaveFund{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate leave_funds table")
		return nil, err
	}
	return &GormLeaveFundRepository{db: db, logger: logger}, nil
}

func (r *GormLeaveFundRepository) Get(ctx context.Context, userID uint, year int) (*models.LeaveFund, error) {
	var fund models.LeaveFund
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND year = ?", userID, year).
		First(&fund)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &fund, nil
}

func (r *GormLeaveFundRepository) Create(ctx context.Context, fund *models.LeaveFund) error {
	if err := r.db.WithContext(ctx).Create(fund).Error; err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"user_id":       fund.UserID,
		"year":          fund.Year,
		"vacation_days": fund.VacationDays,
		"sick_days":     fund.SickDays,
	}).Info("Leave fund created")
	return nil
}

// Update writes only the given columns, so concurrent updates of other fields survive.
func (r *GormLeaveFundRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.LeaveFund{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
