package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleAdmin      Role = "admin"
	RoleTempWorker Role = "temp-worker" // brigádník, paid by the hour
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleAdmin, RoleTempWorker:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	DisplayName  string    `gorm:"not null" json:"display_name"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	Color        string    `gorm:"type:varchar(9);default:'#3b82f6'" json:"color"`
	Active       bool      `gorm:"not null;default:true;index" json:"active"`
	ChatID       *int64    `gorm:"uniqueIndex" json:"chat_id,omitempty"` // Telegram chat, used for notifications
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasWorkFund reports whether the user is measured against a monthly fund of hours.
// Temporary workers only accumulate worked time.
func (u *User) HasWorkFund() bool {
	return u.Role != RoleTempWorker
}

// Initials returns up to two capital letters of the display name.
func (u *User) Initials() string {
	var initials []rune
	for _, word := range strings.Fields(u.DisplayName) {
		initials = append(initials, []rune(strings.ToUpper(word))[0])
		if len(initials) == 2 {
			break
		}
	}
	return string(initials)
}
