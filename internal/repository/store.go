package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store groups the repositories over one connection or transaction.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger

	Users      UserRepository
	Attendance AttendanceRepository
	Absences   AbsenceRepository
	LeaveFunds LeaveFundRepository
}

// NewStore migrates the schema and returns repositories bound to db.
func NewStore(db *gorm.DB, logger *logrus.Logger) (*Store, error) {
	if _, err := NewGormUserRepository(db, logger); err != nil {
		return nil, fmt.Errorf("migrate users: %w", err)
	}
	if _, err := NewGormAttendanceRepository(db, logger); err != nil {
		return nil, fmt.Errorf("migrate attendance: %w", err)
	}
	if _, err := NewGormAbsenceRepository(db, logger); err != nil {
		return nil, fmt.Errorf("migrate absences: %w", err)
	}
	if _, err := NewGormLeaveFundRepository(db, logger); err != nil {
		return nil, fmt.Errorf("migrate leave funds: %w", err)
	}

	logger.Info("Store initialized")
	return bind(db, logger), nil
}

func bind(db *gorm.DB, logger *logrus.Logger) *Store {
	return &Store{
		db:         db,
		logger:     logger,
		Users:      &GormUserRepository{db: db, logger: logger},
		Attendance: &GormAttendanceRepository{db: db, logger: logger},
		Absences:   &GormAbsenceRepository{db: db, logger: logger},
		LeaveFunds: &GormLeaveFundRepository{db: db, logger: logger},
	}
}

// Transaction runs fn with repositories bound to a single database transaction.
// Returning an error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bind(tx, s.logger))
	})
}
