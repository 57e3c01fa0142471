package models

import (
	"time"
)

type PauseCategory string

const (
	PauseLunch  PauseCategory = "lunch"
	PauseDoctor PauseCategory = "doctor"
	PauseBreak  PauseCategory = "break"
	PauseOther  PauseCategory = "other"
	// PauseReentry covers the gap between a check-out and a second check-in on the same day.
	PauseReentry PauseCategory = "reentry"
)

func (c PauseCategory) Valid() bool {
	switch c {
	case PauseLunch, PauseDoctor, PauseBreak, PauseOther, PauseReentry:
		return true
	}
	return false
}

func (c PauseCategory) Label() string {
	switch c {
	case PauseLunch:
		return "🍽 Oběd"
	case PauseDoctor:
		return "🏥 Doktor"
	case PauseBreak:
		return "☕ Přestávka"
	case PauseOther:
		return "📦 Jiné"
	case PauseReentry:
		return "🚪 Mimo pracoviště"
	}
	return string(c)
}

// Pause is a break inside an attendance day. Paid pauses count as worked time.
type Pause struct {
	ID              uint          `gorm:"primarykey" json:"id"`
	AttendanceDayID uint          `gorm:"not null;index" json:"attendance_day_id"`
	Category        PauseCategory `gorm:"type:varchar(20);not null" json:"category"`
	StartedAt       time.Time     `gorm:"not null" json:"started_at"`
	EndedAt         *time.Time    `json:"ended_at"`
	Paid            bool          `gorm:"not null;default:false" json:"paid"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Pause) TableName() string {
	return "pauses"
}

func (p *Pause) IsOpen() bool {
	return p.EndedAt == nil
}

// OpenPause returns the pause without an end, or nil.
func OpenPause(pauses []Pause) *Pause {
	for i := range pauses {
		if pauses[i].IsOpen() {
			return &pauses[i]
		}
	}
	return nil
}
