package models

import (
	"time"
)

// LeaveFund is the yearly vacation and sick-day allotment of a user.
type LeaveFund struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_leave_fund_user_year" json:"user_id"`
	Year         int       `gorm:"not null;uniqueIndex:idx_leave_fund_user_year" json:"year"`
	VacationDays float64   `gorm:"not null" json:"vacation_days"`
	CarryOver    float64   `gorm:"not null" json:"carry_over"`
	SickDays     int       `gorm:"not null" json:"sick_days"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LeaveFund) TableName() string {
	return "leave_funds"
}

func (f *LeaveFund) VacationTotal() float64 {
	return f.VacationDays + f.CarryOver
}

func (f *LeaveFund) IsValid() bool {
	return f.UserID != 0 && f.Year >= 2000 && f.Year <= 2100 && f.SickDays >= 0
}
