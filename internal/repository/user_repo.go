package repository

import (
	"context"
	"errors"

	"dochazka-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByChatID(ctx context.Context, chatID int64) (*models.User, error)
	ListActive(ctx context.Context) ([]models.User, error)
	SetActive(ctx context.Context, id uint, active bool) error
	CountAdmins(ctx context.Context) (int64, error)
}

type GormUserRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormUserRepository(db *gorm.DB, logger *logrus.Logger) (*GormUserRepository, error) {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate users table")
		return nil, err
	}
	return &GormUserRepository{db: db, logger: logger}, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	}).Info("User created")
	return nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *GormUserRepository) GetByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	return r.first(ctx, "chat_id = ?", chatID)
}

func (r *GormUserRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where(query, args...).First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (r *GormUserRepository) ListActive(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("display_name ASC").
		Find(&users).Error
	return users, err
}

func (r *GormUserRepository) SetActive(ctx context.Context, id uint, active bool) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormUserRepository) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND active = ?", models.RoleAdmin, true).
		Count(&count).Error
	return count, err
}
