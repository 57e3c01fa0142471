package models

import (
	"time"
)

type AbsenceType string

const (
	AbsenceVacation     AbsenceType = "vacation"
	AbsenceVacationHalf AbsenceType = "vacation_half"
	AbsenceSickday      AbsenceType = "sickday"
	AbsenceIllness      AbsenceType = "illness" // nemoc, unbudgeted
)

func (t AbsenceType) Valid() bool {
	switch t {
	case AbsenceVacation, AbsenceVacationHalf, AbsenceSickday, AbsenceIllness:
		return true
	}
	return false
}

func (t AbsenceType) Label() string {
	switch t {
	case AbsenceVacation:
		return "🏖 Dovolená"
	case AbsenceVacationHalf:
		return "🌗 Půlden dovolené"
	case AbsenceSickday:
		return "🤒 Sickday"
	case AbsenceIllness:
		return "🏥 Nemoc"
	}
	return string(t)
}

// ApprovalState is stored as 0 (pending), 1 (approved) or -1 (rejected).
type ApprovalState int

const (
	ApprovalPending  ApprovalState = 0
	ApprovalApproved ApprovalState = 1
	ApprovalRejected ApprovalState = -1
)

func (s ApprovalState) String() string {
	switch s {
	case ApprovalPending:
		return "pending"
	case ApprovalApproved:
		return "approved"
	case ApprovalRejected:
		return "rejected"
	}
	return "unknown"
}

type AbsenceRequest struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	UserID    uint          `gorm:"not null;index" json:"user_id"`
	Type      AbsenceType   `gorm:"type:varchar(20);not null" json:"type"`
	DateFrom  string        `gorm:"type:varchar(10);not null;index" json:"date_from"`
	DateTo    string        `gorm:"type:varchar(10);not null;index" json:"date_to"`
	Note      string        `json:"note"`
	Approval  ApprovalState `gorm:"not null;default:0;index" json:"approval"`
	HalfDays  DateSet       `gorm:"type:text" json:"half_days"`
	Notified  bool          `gorm:"not null;default:false" json:"notified"`
	DecidedAt *time.Time    `json:"decided_at"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (AbsenceRequest) TableName() string {
	return "absence_requests"
}

func (a *AbsenceRequest) IsPending() bool  { return a.Approval == ApprovalPending }
func (a *AbsenceRequest) IsApproved() bool { return a.Approval == ApprovalApproved }

// IsOpenIllness reports an illness whose end is not known yet (DateTo == DateFrom).
func (a *AbsenceRequest) IsOpenIllness() bool {
	return a.Type == AbsenceIllness && a.DateTo == a.DateFrom
}

// Covers reports whether day (YYYY-MM-DD) is inside the stored range.
func (a *AbsenceRequest) Covers(day string) bool {
	return a.DateFrom <= day && day <= a.DateTo
}
