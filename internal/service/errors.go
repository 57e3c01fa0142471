package service

import (
	"errors"

	"dochazka-bot/internal/models"

	"gorm.io/gorm"
)

var (
	ErrAlreadyCheckedIn  = errors.New("already checked in")
	ErrAlreadyCheckedOut = errors.New("already checked out")
	ErrNotCheckedIn      = errors.New("not checked in")
	ErrPauseAlreadyOpen  = errors.New("a pause is already open")
	ErrNoOpenPause       = errors.New("no open pause")
	ErrInvalidPause      = errors.New("invalid pause")
	ErrInvalidAttendance = errors.New("invalid attendance record")

	ErrInvalidDateRange      = errors.New("invalid date range")
	ErrInvalidAbsenceType    = errors.New("invalid absence type")
	ErrAbsenceAlreadyDecided = errors.New("absence request already decided")
	ErrInvalidLeaveFund      = errors.New("invalid leave fund")

	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already taken")
	ErrUserInactive       = errors.New("user is deactivated")
	ErrInvalidUser        = errors.New("invalid user")
)

// translateDuplicate maps a unique-constraint violation onto the precondition
// error it stands for. Other errors pass through.
func translateDuplicate(err, precondition error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return precondition
	}
	return err
}

func requireAdmin(actor *models.User) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

var preconditions = []error{
	ErrAlreadyCheckedIn, ErrAlreadyCheckedOut, ErrNotCheckedIn,
	ErrPauseAlreadyOpen, ErrNoOpenPause, ErrInvalidPause, ErrInvalidAttendance,
	ErrInvalidDateRange, ErrInvalidAbsenceType, ErrAbsenceAlreadyDecided, ErrInvalidLeaveFund,
	ErrForbidden, ErrNotFound, ErrInvalidCredentials, ErrUserExists, ErrUserInactive, ErrInvalidUser,
}

// isPrecondition reports whether err is a user-correctable rejection rather than a storage failure.
func isPrecondition(err error) bool {
	for _, target := range preconditions {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsUserError is isPrecondition for the front-ends, which show these errors to the user
// and report anything else as a generic failure.
func IsUserError(err error) bool {
	return isPrecondition(err)
}
