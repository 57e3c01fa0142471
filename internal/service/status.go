package service

import (
	"context"
	"time"

	"dochazka-bot/internal/models"
	"dochazka-bot/internal/repository"
	"dochazka-bot/pkg/timefmt"
)

type Presence string

const (
	PresenceWorking Presence = "working"
	PresencePause   Presence = "pause"
	PresenceDone    Presence = "done"
	PresenceOffline Presence = "offline"
	PresenceAbsent  Presence = "absent"
)

// UserStatus is one row of the team overview.
type UserStatus struct {
	UserID        uint                   `json:"user_id"`
	DisplayName   string                 `json:"display_name"`
	Initials      string                 `json:"initials"`
	Color         string                 `json:"color"`
	Presence      Presence               `json:"presence"`
	Detail        string                 `json:"detail"`
	CheckIn       *time.Time             `json:"check_in"`
	WorkedSeconds int64                  `json:"worked_seconds"`
	Absence       *models.AbsenceRequest `json:"absence,omitempty"`
}

type StatusService struct {
	store      *repository.Store
	attendance *AttendanceService
}

func NewStatusService(store *repository.Store, attendance *AttendanceService) *StatusService {
	return &StatusService{store: store, attendance: attendance}
}

// Overview reports every active user on date. An approved absence wins over
// attendance; a pending one is shown only when the user has not checked in.
func (s *StatusService) Overview(ctx context.Context, date string) ([]UserStatus, error) {
	loc := s.attendance.clock.Location()
	if _, err := parseDate(loc, date); err != nil {
		return nil, err
	}

	users, err := s.store.Users.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	days, err := s.store.Attendance.ListDaysOn(ctx, date)
	if err != nil {
		return nil, err
	}
	absences, err := s.store.Absences.ListOn(ctx, date)
	if err != nil {
		return nil, err
	}

	byUser := make(map[uint]*models.AttendanceDay, len(days))
	for i := range days {
		byUser[days[i].UserID] = &days[i]
	}
	visible := visibleAbsences(absences)

	statuses := make([]UserStatus, 0, len(users))
	for i := range users {
		u := &users[i]
		st := UserStatus{
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			Initials:    u.Initials(),
			Color:       u.Color,
			Presence:    PresenceOffline,
		}

		var pauses []models.Pause
		day := byUser[u.ID]
		if day != nil {
			pauses = day.Pauses
			st.CheckIn = day.CheckIn
			st.WorkedSeconds = WorkedSeconds(day, pauses, s.attendance.nowFor(date))
		}

		absence := visible[u.ID]
		state := day.State(pauses)
		switch {
		case absence != nil && (absence.IsApproved() || state == models.DayNotStarted):
			st.Presence = PresenceAbsent
			st.Absence = absence
			st.Detail = absence.Type.Label()
			if absence.IsPending() {
				st.Detail += " (čeká na schválení)"
			}
		case state == models.DayCheckedIn:
			st.Presence = PresenceWorking
		case state == models.DayOnPause:
			st.Presence = PresencePause
			st.Detail = models.OpenPause(pauses).Category.Label()
		case state == models.DayCheckedOut:
			st.Presence = PresenceDone
			st.Detail = "odchod " + timefmt.Clock(day.CheckOut, loc)[:5]
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}
