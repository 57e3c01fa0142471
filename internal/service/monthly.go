package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"dochazka-bot/internal/clock"
	"dochazka-bot/internal/models"
	"dochazka-bot/internal/repository"
	"dochazka-bot/pkg/holidays"
	"dochazka-bot/pkg/timefmt"

	"github.com/sirupsen/logrus"
)

type MonthlyService struct {
	store          *repository.Store
	attendance     *AttendanceService
	clock          clock.Clock
	calendar       holidays.Calendar
	workdaySeconds int64
	logger         *logrus.Logger
}

func NewMonthlyService(
	store *repository.Store,
	attendance *AttendanceService,
	clk clock.Clock,
	calendar holidays.Calendar,
	workdaySeconds int64,
	logger *logrus.Logger,
) *MonthlyService {
	return &MonthlyService{
		store:          store,
		attendance:     attendance,
		clock:          clk,
		calendar:       calendar,
		workdaySeconds: workdaySeconds,
		logger:         logger,
	}
}

// DayStat is one existing attendance row of a month.
type DayStat struct {
	Date          string     `json:"date"`
	CheckIn       *time.Time `json:"check_in"`
	CheckOut      *time.Time `json:"check_out"`
	WorkedSeconds int64      `json:"worked_seconds"`
	IsWeekend     bool       `json:"is_weekend"`
	IsHoliday     bool       `json:"is_holiday"`
}

// MonthSummary combines attendance, absences and the workday fund of one user.
// WorkedSeconds covers Monday to Friday only and is what the surplus is computed from.
type MonthSummary struct {
	UserID            uint      `json:"user_id"`
	DisplayName       string    `json:"display_name"`
	Role              string    `json:"role"`
	Year              int       `json:"year"`
	Month             int       `json:"month"`
	Days              []DayStat `json:"days"`
	WorkdaysSoFar     int       `json:"workdays_so_far"`
	AbsenceDays       float64   `json:"absence_days"`
	EffectiveWorkdays float64   `json:"effective_workdays"`
	WorkedSeconds     int64     `json:"worked_seconds"`
	WeekendSeconds    int64     `json:"weekend_seconds"`
	ExpectedSeconds   int64     `json:"expected_seconds"`
	SurplusSeconds    int64     `json:"surplus_seconds"`
}

func (m *MonthSummary) TotalSeconds() int64 {
	return m.WorkedSeconds + m.WeekendSeconds
}

// MonthStats lists the user's attendance rows of the month. Days without a row are absent.
func (s *MonthlyService) MonthStats(ctx context.Context, userID uint, year int, month time.Month) ([]DayStat, error) {
	if err := validMonth(year, month); err != nil {
		return nil, err
	}
	p := monthPeriod(year, month)

	days, err := s.store.Attendance.ListDays(ctx, userID, p.from, p.to)
	if err != nil {
		return nil, err
	}

	stats := make([]DayStat, 0, len(days))
	for i := range days {
		day := &days[i]
		date, err := time.Parse(timefmt.DateLayout, day.Day)
		if err != nil {
			return nil, fmt.Errorf("stored day %q: %w", day.Day, err)
		}
		stats = append(stats, DayStat{
			Date:          day.Day,
			CheckIn:       day.CheckIn,
			CheckOut:      day.CheckOut,
			WorkedSeconds: WorkedSeconds(day, day.Pauses, s.attendance.nowFor(day.Day)),
			IsWeekend:     holidays.IsWeekend(date),
			IsHoliday:     s.calendar.IsHoliday(date),
		})
	}
	return stats, nil
}

// EffectiveWorkdays is the workdays of the month so far minus the workdays covered by
// approved absences, never below zero. For the current month "so far" ends today.
func (s *MonthlyService) EffectiveWorkdays(ctx context.Context, userID uint, year int, month time.Month) (float64, error) {
	if err := validMonth(year, month); err != nil {
		return 0, err
	}
	soFar, absent, err := s.fund(ctx, userID, year, month)
	if err != nil {
		return 0, err
	}
	return math.Max(0, float64(soFar)-absent), nil
}

func (s *MonthlyService) fund(ctx context.Context, userID uint, year int, month time.Month) (int, float64, error) {
	window, today := s.window(year, month)

	absences, err := s.store.Absences.ListOverlapping(ctx, userID, window.from, window.to)
	if err != nil {
		return 0, 0, err
	}

	from, to := window.bounds()
	return s.calendar.CountWorkdaysInRange(from, to), absenceWorkdays(absences, window, today, s.calendar), nil
}

// window is the month cut at today when the month is the current one.
func (s *MonthlyService) window(year int, month time.Month) (period, string) {
	p := monthPeriod(year, month)
	today := clock.Today(s.clock)
	if p.contains(today) {
		p.to = today
	}
	return p, today
}

// MonthSummary reports the month of user. Temporary workers have no expected fund.
func (s *MonthlyService) MonthSummary(ctx context.Context, user *models.User, year int, month time.Month) (*MonthSummary, error) {
	stats, err := s.MonthStats(ctx, user.ID, year, month)
	if err != nil {
		return nil, err
	}
	soFar, absent, err := s.fund(ctx, user.ID, year, month)
	if err != nil {
		return nil, err
	}

	summary := &MonthSummary{
		UserID:            user.ID,
		DisplayName:       user.DisplayName,
		Role:              string(user.Role),
		Year:              year,
		Month:             int(month),
		Days:              stats,
		WorkdaysSoFar:     soFar,
		AbsenceDays:       absent,
		EffectiveWorkdays: math.Max(0, float64(soFar)-absent),
	}

	for _, d := range stats {
		if d.IsWeekend {
			summary.WeekendSeconds += d.WorkedSeconds
		} else {
			summary.WorkedSeconds += d.WorkedSeconds
		}
	}

	if user.HasWorkFund() {
		summary.ExpectedSeconds = int64(math.Round(summary.EffectiveWorkdays * float64(s.workdaySeconds)))
		summary.SurplusSeconds = summary.WorkedSeconds - summary.ExpectedSeconds
	}
	return summary, nil
}

// TeamMonth reports the month of every active user.
func (s *MonthlyService) TeamMonth(ctx context.Context, year int, month time.Month) ([]MonthSummary, error) {
	users, err := s.store.Users.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]MonthSummary, 0, len(users))
	for i := range users {
		summary, err := s.MonthSummary(ctx, &users[i], year, month)
		if err != nil {
			s.logger.WithField("user_id", users[i].ID).WithError(err).Error("Failed to build month summary")
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// absenceWorkdays weighs every workday of window covered by an approved absence:
// 1 for a full day, 0.5 for a half day. Overlapping requests count once, at the larger weight.
// An open illness runs through today.
func absenceWorkdays(absences []models.AbsenceRequest, window period, today string, cal holidays.Calendar) float64 {
	weights := make(map[string]float64)
	mark := func(day string, w float64) {
		if w > weights[day] {
			weights[day] = w
		}
	}

	for i := range absences {
		a := &absences[i]
		if !a.IsApproved() {
			continue
		}

		to := a.DateTo
		if a.IsOpenIllness() && today > to {
			to = today
		}
		span, ok := window.clip(a.DateFrom, to)
		if !ok {
			continue
		}

		switch a.Type {
		case models.AbsenceVacationHalf:
			if span.contains(a.DateFrom) && isWorkdayString(cal, a.DateFrom) {
				mark(a.DateFrom, 0.5)
			}
		case models.AbsenceVacation:
			eachWorkday(cal, span, func(day string) {
				if a.HalfDays.Contains(day) {
					mark(day, 0.5)
					return
				}
				mark(day, 1)
			})
		case models.AbsenceSickday, models.AbsenceIllness:
			eachWorkday(cal, span, func(day string) { mark(day, 1) })
		}
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	return total
}

func eachWorkday(cal holidays.Calendar, p period, fn func(day string)) {
	from, to := p.bounds()
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if cal.IsWorkday(d) {
			fn(d.Format(timefmt.DateLayout))
		}
	}
}

func isWorkdayString(cal holidays.Calendar, day string) bool {
	d, err := time.Parse(timefmt.DateLayout, day)
	return err == nil && cal.IsWorkday(d)
}

func validMonth(year int, month time.Month) error {
	if year < 2000 || year > 2100 || month < time.January || month > time.December {
		return fmt.Errorf("%w: no such month %d-%02d", ErrInvalidDateRange, year, month)
	}
	return nil
}
