package models

import (
	"time"
)

// AttendanceDay is the single attendance row of a user for one calendar date.
type AttendanceDay struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_attendance_user_day" json:"user_id"`
	Day       string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_attendance_user_day;index" json:"day"`
	CheckIn   *time.Time `json:"check_in"`
	CheckOut  *time.Time `json:"check_out"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Pauses []Pause `gorm:"foreignKey:AttendanceDayID" json:"pauses,omitempty"`
}

func (AttendanceDay) TableName() string {
	return "attendance_days"
}

type DayState string

const (
	DayNotStarted DayState = "not_started"
	DayCheckedIn  DayState = "checked_in"
	DayOnPause    DayState = "on_pause"
	DayCheckedOut DayState = "checked_out"
)

// State derives the state machine position from the row and its pauses.
func (d *AttendanceDay) State(pauses []Pause) DayState {
	switch {
	case d == nil || d.CheckIn == nil:
		return DayNotStarted
	case d.CheckOut != nil:
		return DayCheckedOut
	case OpenPause(pauses) != nil:
		return DayOnPause
	default:
		return DayCheckedIn
	}
}

// IsValid rejects a check-out without a check-in and a check-out before the check-in.
func (d *AttendanceDay) IsValid() bool {
	if d.UserID == 0 || d.Day == "" {
		return false
	}
	if d.CheckOut != nil {
		if d.CheckIn == nil || d.CheckOut.Before(*d.CheckIn) {
			return false
		}
	}
	return true
}
