package repository

import (
	"context"
	"errors"
	"time"

	"dochazka-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// At most one open pause per attendance day; sqlite supports partial indexes.
const openPauseIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_pauses_one_open
	ON pauses(attendance_day_id) WHERE ended_at IS NULL`

type AttendanceRepository interface {
	CreateDay(ctx context.Context, day *models.AttendanceDay) error
	SaveDay(ctx context.Context, day *models.AttendanceDay) error
	GetDay(ctx context.Context, userID uint, day string) (*models.AttendanceDay, error)
	GetDayByID(ctx context.Context, id uint) (*models.AttendanceDay, error)
	ListDays(ctx context.Context, userID uint, from, to string) ([]models.AttendanceDay, error)
	ListDaysOn(ctx context.Context, day string) ([]models.AttendanceDay, error)
	DeleteDay(ctx context.Context, id uint) error

	CreatePause(ctx context.Context, pause *models.Pause) error
	SavePause(ctx context.Context, pause *models.Pause) error
	GetPause(ctx context.Context, id uint) (*models.Pause, error)
	ListPauses(ctx context.Context, dayID uint) ([]models.Pause, error)
	DeletePause(ctx context.Context, id uint) error
	CloseOpenPauses(ctx context.Context, dayID uint, at time.Time) (int64, error)
}

type GormAttendanceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAttendanceRepository(db *gorm.DB, logger *logrus.Logger) (*GormAttendanceRepository, error) {
	if err := db.AutoMigrate(&models.AttendanceDay{}, &models.Pause{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate attendance tables")
		return nil, err
	}
	if err := db.Exec(openPauseIndex).Error; err != nil {
		logger.WithError(err).Error("Failed to create open pause index")
		return nil, err
	}
	return &GormAttendanceRepository{db: db, logger: logger}, nil
}

func (r *GormAttendanceRepository) CreateDay(ctx context.Context, day *models.AttendanceDay) error {
	return r.db.WithContext(ctx).Omit("Pauses").Create(day).Error
}

func (r *GormAttendanceRepository) SaveDay(ctx context.Context, day *models.AttendanceDay) error {
	return r.db.WithContext(ctx).Omit("Pauses").Save(day).Error
}

func (r *GormAttendanceRepository) GetDay(ctx context.Context, userID uint, day string) (*models.AttendanceDay, error) {
	var record models.AttendanceDay
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, day).
		First(&record)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &record, nil
}

func (r *GormAttendanceRepository) GetDayByID(ctx context.Context, id uint) (*models.AttendanceDay, error) {
	var record models.AttendanceDay
	result := r.db.WithContext(ctx).First(&record, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &record, nil
}

// ListDays returns the user's rows in [from, to] with their pauses, oldest first.
func (r *GormAttendanceRepository) ListDays(ctx context.Context, userID uint, from, to string) ([]models.AttendanceDay, error) {
	var days []models.AttendanceDay
	err := r.db.WithContext(ctx).
		Preload("Pauses", func(db *gorm.DB) *gorm.DB {
			return db.Order("started_at ASC")
		}).
		Where("user_id = ? AND day >= ? AND day <= ?", userID, from, to).
		Order("day ASC").
		Find(&days).Error
	return days, err
}

func (r *GormAttendanceRepository) ListDaysOn(ctx context.Context, day string) ([]models.AttendanceDay, error) {
	var days []models.AttendanceDay
	err := r.db.WithContext(ctx).
		Preload("Pauses", func(db *gorm.DB) *gorm.DB {
			return db.Order("started_at ASC")
		}).
		Where("day = ?", day).
		Find(&days).Error
	return days, err
}

// DeleteDay removes the row and its pauses.
func (r *GormAttendanceRepository) DeleteDay(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("attendance_day_id = ?", id).Delete(&models.Pause{}).Error; err != nil {
		return err
	}
	if err := db.Delete(&models.AttendanceDay{}, id).Error; err != nil {
		return err
	}

	r.logger.WithField("attendance_id", id).Info("Attendance day deleted")
	return nil
}

func (r *GormAttendanceRepository) CreatePause(ctx context.Context, pause *models.Pause) error {
	return r.db.WithContext(ctx).Create(pause).Error
}

func (r *GormAttendanceRepository) SavePause(ctx context.Context, pause *models.Pause) error {
	return r.db.WithContext(ctx).Save(pause).Error
}

func (r *GormAttendanceRepository) GetPause(ctx context.Context, id uint) (*models.Pause, error) {
	var pause models.Pause
	result := r.db.WithContext(ctx).First(&pause, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &pause, nil
}

func (r *GormAttendanceRepository) ListPauses(ctx context.Context, dayID uint) ([]models.Pause, error) {
	var pauses []models.Pause
	err := r.db.WithContext(ctx).
		Where("attendance_day_id = ?", dayID).
		Order("started_at ASC").
		Find(&pauses).Error
	return pauses, err
}

func (r *GormAttendanceRepository) DeletePause(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Pause{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CloseOpenPauses stamps at as the end of every open pause of the day.
func (r *GormAttendanceRepository) CloseOpenPauses(ctx context.Context, dayID uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Pause{}).
		Where("attendance_day_id = ? AND ended_at IS NULL", dayID).
		Update("ended_at", at)
	return result.RowsAffected, result.Error
}
