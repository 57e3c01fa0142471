package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dochazka-bot/internal/config"
	"dochazka-bot/internal/models"
	"dochazka-bot/internal/repository"
	"dochazka-bot/pkg/holidays"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type LeaveService struct {
	store    *repository.Store
	calendar holidays.Calendar
	defaults config.LeaveDefaults
	logger   *logrus.Logger
}

func NewLeaveService(store *repository.Store, calendar holidays.Calendar, defaults config.LeaveDefaults, logger *logrus.Logger) *LeaveService {
	return &LeaveService{
		store:    store,
		calendar: calendar,
		defaults: defaults,
		logger:   logger,
	}
}

// LeaveSummary is the yearly balance of a user. Remaining figures go negative when overdrawn.
type LeaveSummary struct {
	UserID            uint    `json:"user_id"`
	Year              int     `json:"year"`
	VacationTotal     float64 `json:"vacation_total"`
	VacationUsed      float64 `json:"vacation_used"`
	VacationRemaining float64 `json:"vacation_remaining"`
	SickTotal         int     `json:"sick_total"`
	SickUsed          int     `json:"sick_used"`
	SickRemaining     int     `json:"sick_remaining"`
}

// LeaveFundUpdate is a partial update; nil fields keep their stored value.
type LeaveFundUpdate struct {
	VacationDays *float64
	CarryOver    *float64
	SickDays     *int
}

// EnsureLeaveFund returns the fund of userID for year, creating it with the
// policy defaults on first access.
func (s *LeaveService) EnsureLeaveFund(ctx context.Context, userID uint, year int) (*models.LeaveFund, error) {
	fund, err := s.store.LeaveFunds.Get(ctx, userID, year)
	if err != nil || fund != nil {
		return fund, err
	}

	fund = &models.LeaveFund{
		UserID:       userID,
		Year:         year,
		VacationDays: s.defaults.VacationDays,
		CarryOver:    s.defaults.CarryOver,
		SickDays:     s.defaults.SickDays,
	}
	if !fund.IsValid() {
		return nil, fmt.Errorf("%w: user %d, year %d", ErrInvalidLeaveFund, userID, year)
	}
	if err := s.store.LeaveFunds.Create(ctx, fund); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// created concurrently
			return s.store.LeaveFunds.Get(ctx, userID, year)
		}
		return nil, err
	}
	return fund, nil
}

// UsedVacationDays sums approved vacation inside year. A half-day request counts 0.5,
// a full request counts its workdays minus 0.5 for every half-day workday in it.
func (s *LeaveService) UsedVacationDays(ctx context.Context, userID uint, year int) (float64, error) {
	p := yearPeriod(year)
	absences, err := s.store.Absences.ListOverlapping(ctx, userID, p.from, p.to)
	if err != nil {
		return 0, err
	}
	return usedVacation(absences, p, s.calendar), nil
}

// UsedSickDays counts the workdays of approved sickday requests inside year.
// Illness is never counted.
func (s *LeaveService) UsedSickDays(ctx context.Context, userID uint, year int) (int, error) {
	p := yearPeriod(year)
	absences, err := s.store.Absences.ListOverlapping(ctx, userID, p.from, p.to)
	if err != nil {
		return 0, err
	}
	return usedSick(absences, p, s.calendar), nil
}

func (s *LeaveService) LeaveSummary(ctx context.Context, userID uint, year int) (*LeaveSummary, error) {
	fund, err := s.EnsureLeaveFund(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	p := yearPeriod(year)
	absences, err := s.store.Absences.ListOverlapping(ctx, userID, p.from, p.to)
	if err != nil {
		return nil, err
	}

	vacationUsed := usedVacation(absences, p, s.calendar)
	sickUsed := usedSick(absences, p, s.calendar)

	return &LeaveSummary{
		UserID:            userID,
		Year:              year,
		VacationTotal:     fund.VacationTotal(),
		VacationUsed:      vacationUsed,
		VacationRemaining: fund.VacationTotal() - vacationUsed,
		SickTotal:         fund.SickDays,
		SickUsed:          sickUsed,
		SickRemaining:     fund.SickDays - sickUsed,
	}, nil
}

// UpdateLeaveFund applies a partial update to the fund. Admin only.
func (s *LeaveService) UpdateLeaveFund(ctx context.Context, actor *models.User, userID uint, year int, upd LeaveFundUpdate) (*models.LeaveFund, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	if (upd.VacationDays != nil && *upd.VacationDays < 0) || (upd.SickDays != nil && *upd.SickDays < 0) {
		return nil, fmt.Errorf("%w: allotments must not be negative", ErrInvalidLeaveFund)
	}

	fund, err := s.EnsureLeaveFund(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if upd.VacationDays != nil {
		fields["vacation_days"] = *upd.VacationDays
	}
	if upd.CarryOver != nil {
		fields["carry_over"] = *upd.CarryOver
	}
	if upd.SickDays != nil {
		fields["sick_days"] = *upd.SickDays
	}
	if len(fields) > 0 {
		if err := s.store.LeaveFunds.Update(ctx, fund.ID, fields); err != nil {
			return nil, err
		}
	}

	fund, err = s.store.LeaveFunds.Get(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	if fund == nil {
		return nil, ErrNotFound
	}

	s.logger.WithFields(logrus.Fields{
		"admin_id":      actor.ID,
		"user_id":       userID,
		"year":          year,
		"vacation_days": fund.VacationDays,
		"carry_over":    fund.CarryOver,
		"sick_days":     fund.SickDays,
	}).Info("Leave fund updated")
	return fund, nil
}

func usedVacation(absences []models.AbsenceRequest, p period, cal holidays.Calendar) float64 {
	var used float64
	for i := range absences {
		a := &absences[i]
		if !a.IsApproved() {
			continue
		}
		switch a.Type {
		case models.AbsenceVacationHalf:
			if p.contains(a.DateFrom) {
				used += 0.5
			}
		case models.AbsenceVacation:
			span, ok := p.clip(a.DateFrom, a.DateTo)
			if !ok {
				continue
			}
			from, to := span.bounds()
			used += float64(cal.CountWorkdaysInRange(from, to))
			used -= 0.5 * float64(halfWorkdays(a, span, cal))
		case models.AbsenceSickday, models.AbsenceIllness:
		}
	}
	return used
}

func usedSick(absences []models.AbsenceRequest, p period, cal holidays.Calendar) int {
	used := 0
	for i := range absences {
		a := &absences[i]
		if !a.IsApproved() || a.Type != models.AbsenceSickday {
			continue
		}
		span, ok := p.clip(a.DateFrom, a.DateTo)
		if !ok {
			continue
		}
		from, to := span.bounds()
		used += cal.CountWorkdaysInRange(from, to)
	}
	return used
}

// halfWorkdays counts the half-day dates of a vacation request that are workdays inside span.
func halfWorkdays(a *models.AbsenceRequest, span period, cal holidays.Calendar) int {
	n := 0
	for _, d := range a.HalfDays.Within(span.from, span.to) {
		day, err := parseDate(time.UTC, d)
		if err == nil && cal.IsWorkday(day) {
			n++
		}
	}
	return n
}
