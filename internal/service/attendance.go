package service

import (
	"context"
	"fmt"
	"time"

	"dochazka-bot/internal/clock"
	"dochazka-bot/internal/models"
	"dochazka-bot/internal/repository"
	"dochazka-bot/pkg/timefmt"

	"github.com/sirupsen/logrus"
)

type AttendanceService struct {
	store  *repository.Store
	clock  clock.Clock
	logger *logrus.Logger
}

func NewAttendanceService(store *repository.Store, clk clock.Clock, logger *logrus.Logger) *AttendanceService {
	return &AttendanceService{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// CheckInResult tells a first check-in apart from a re-entry after a check-out.
type CheckInResult struct {
	Day     *models.AttendanceDay
	Reentry bool
}

// DayReport is one attendance day with its pauses and derived figures.
type DayReport struct {
	UserID        uint                  `json:"user_id"`
	Date          string                `json:"date"`
	Record        *models.AttendanceDay `json:"record,omitempty"`
	Pauses        []models.Pause        `json:"pauses"`
	State         models.DayState       `json:"state"`
	WorkedSeconds int64                 `json:"worked_seconds"`
}

// OpenPause returns the pause currently running, or nil.
func (r *DayReport) OpenPause() *models.Pause {
	return models.OpenPause(r.Pauses)
}

// WorkedSeconds is (check-out or now) minus check-in, minus every unpaid pause
// (end or now minus start). It is 0 without a check-in and never negative.
func WorkedSeconds(day *models.AttendanceDay, pauses []models.Pause, now time.Time) int64 {
	if day == nil || day.CheckIn == nil {
		return 0
	}

	end := now
	if day.CheckOut != nil {
		end = *day.CheckOut
	}
	worked := end.Sub(*day.CheckIn)

	for _, p := range pauses {
		if p.Paid {
			continue
		}
		pauseEnd := now
		if p.EndedAt != nil {
			pauseEnd = *p.EndedAt
		}
		if d := pauseEnd.Sub(p.StartedAt); d > 0 {
			worked -= d
		}
	}

	seconds := int64(worked / time.Second)
	if seconds < 0 {
		return 0
	}
	return seconds
}

// CheckIn stamps the start of today's work. A check-in after a check-out reopens the
// day and records the gap as an unpaid re-entry pause.
func (s *AttendanceService) CheckIn(ctx context.Context, user *models.User) (*CheckInResult, error) {
	now := s.clock.Now()
	today := now.Format(timefmt.DateLayout)
	result := &CheckInResult{}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		day, err := tx.Attendance.GetDay(ctx, user.ID, today)
		if err != nil {
			return err
		}

		switch {
		case day == nil:
			day = &models.AttendanceDay{UserID: user.ID, Day: today, CheckIn: &now}
			if err := tx.Attendance.CreateDay(ctx, day); err != nil {
				return translateDuplicate(err, ErrAlreadyCheckedIn)
			}
		case day.CheckIn == nil:
			day.CheckIn = &now
			if err := tx.Attendance.SaveDay(ctx, day); err != nil {
				return err
			}
		case day.CheckOut == nil:
			return ErrAlreadyCheckedIn
		default:
			gap := &models.Pause{
				AttendanceDayID: day.ID,
				Category:        models.PauseReentry,
				StartedAt:       *day.CheckOut,
				EndedAt:         &now,
				Paid:            false,
			}
			if err := tx.Attendance.CreatePause(ctx, gap); err != nil {
				return err
			}
			day.CheckOut = nil
			if err := tx.Attendance.SaveDay(ctx, day); err != nil {
				return err
			}
			result.Reentry = true
		}

		result.Day = day
		return nil
	})
	if err != nil {
		s.logRejection(err, user.ID, today, "Check-in rejected")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"day":     today,
		"reentry": result.Reentry,
	}).Info("User checked in")
	return result, nil
}

// CheckOut stamps the end of today's work, closing any pause still open.
func (s *AttendanceService) CheckOut(ctx context.Context, user *models.User) (*models.AttendanceDay, error) {
	now := s.clock.Now()
	today := now.Format(timefmt.DateLayout)

	var day *models.AttendanceDay
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		day, err = tx.Attendance.GetDay(ctx, user.ID, today)
		if err != nil {
			return err
		}
		if day == nil || day.CheckIn == nil {
			return ErrNotCheckedIn
		}
		if day.CheckOut != nil {
			return ErrAlreadyCheckedOut
		}

		closed, err := tx.Attendance.CloseOpenPauses(ctx, day.ID, now)
		if err != nil {
			return err
		}
		if closed > 0 {
			s.logger.WithFields(logrus.Fields{
				"user_id":       user.ID,
				"attendance_id": day.ID,
			}).Info("Open pause closed by check-out")
		}

		day.CheckOut = &now
		return tx.Attendance.SaveDay(ctx, day)
	})
	if err != nil {
		s.logRejection(err, user.ID, today, "Check-out rejected")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"day":     today,
	}).Info("User checked out")
	return day, nil
}

// OpenPause starts a pause on the attendance day at now, or at start when given.
func (s *AttendanceService) OpenPause(ctx context.Context, attendanceID uint, category models.PauseCategory, paid bool, start *time.Time) (*models.Pause, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidPause, category)
	}

	startedAt := s.clock.Now()
	if start != nil {
		startedAt = *start
	}

	pause := &models.Pause{
		AttendanceDayID: attendanceID,
		Category:        category,
		StartedAt:       startedAt,
		Paid:            paid,
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		day, err := tx.Attendance.GetDayByID(ctx, attendanceID)
		if err != nil {
			return err
		}
		if day == nil || day.CheckIn == nil {
			return ErrNotCheckedIn
		}
		if day.CheckOut != nil {
			return ErrAlreadyCheckedOut
		}

		pauses, err := tx.Attendance.ListPauses(ctx, attendanceID)
		if err != nil {
			return err
		}
		if models.OpenPause(pauses) != nil {
			return ErrPauseAlreadyOpen
		}

		return translateDuplicate(tx.Attendance.CreatePause(ctx, pause), ErrPauseAlreadyOpen)
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"attendance_id": attendanceID,
			"category":      category,
		}).WithError(err).Warn("Pause not opened")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"attendance_id": attendanceID,
		"pause_id":      pause.ID,
		"category":      category,
		"paid":          paid,
	}).Info("Pause opened")
	return pause, nil
}

// EndPause closes the single open pause of the attendance day.
func (s *AttendanceService) EndPause(ctx context.Context, attendanceID uint) (*models.Pause, error) {
	now := s.clock.Now()

	var open *models.Pause
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		pauses, err := tx.Attendance.ListPauses(ctx, attendanceID)
		if err != nil {
			return err
		}
		open = models.OpenPause(pauses)
		if open == nil {
			return ErrNoOpenPause
		}
		open.EndedAt = &now
		return tx.Attendance.SavePause(ctx, open)
	})
	if err != nil {
		s.logger.WithField("attendance_id", attendanceID).WithError(err).Warn("Pause not ended")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"attendance_id": attendanceID,
		"pause_id":      open.ID,
	}).Info("Pause ended")
	return open, nil
}

// StartPause opens a pause on the user's attendance of today.
func (s *AttendanceService) StartPause(ctx context.Context, user *models.User, category models.PauseCategory, paid bool) (*models.Pause, error) {
	if category == models.PauseReentry {
		return nil, fmt.Errorf("%w: %q is reserved", ErrInvalidPause, category)
	}
	day, err := s.store.Attendance.GetDay(ctx, user.ID, clock.Today(s.clock))
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, ErrNotCheckedIn
	}
	return s.OpenPause(ctx, day.ID, category, paid, nil)
}

// ResumeWork ends the open pause on the user's attendance of today.
func (s *AttendanceService) ResumeWork(ctx context.Context, user *models.User) (*models.Pause, error) {
	day, err := s.store.Attendance.GetDay(ctx, user.ID, clock.Today(s.clock))
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, ErrNoOpenPause
	}
	return s.EndPause(ctx, day.ID)
}

// Today reports the user's current day.
func (s *AttendanceService) Today(ctx context.Context, userID uint) (*DayReport, error) {
	return s.Day(ctx, userID, clock.Today(s.clock))
}

// Day reports the attendance of userID on date. A missing row gives a NotStarted report.
func (s *AttendanceService) Day(ctx context.Context, userID uint, date string) (*DayReport, error) {
	if _, err := parseDate(s.clock.Location(), date); err != nil {
		return nil, err
	}

	day, err := s.store.Attendance.GetDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	var pauses []models.Pause
	if day != nil {
		pauses, err = s.store.Attendance.ListPauses(ctx, day.ID)
		if err != nil {
			return nil, err
		}
	}
	return s.report(userID, date, day, pauses), nil
}

func (s *AttendanceService) report(userID uint, date string, day *models.AttendanceDay, pauses []models.Pause) *DayReport {
	if pauses == nil {
		pauses = []models.Pause{}
	}
	return &DayReport{
		UserID:        userID,
		Date:          date,
		Record:        day,
		Pauses:        pauses,
		State:         day.State(pauses),
		WorkedSeconds: WorkedSeconds(day, pauses, s.nowFor(date)),
	}
}

// nowFor is the clock's now, capped at the end of date so an unclosed past day
// does not keep growing.
func (s *AttendanceService) nowFor(date string) time.Time {
	now := s.clock.Now()
	loc := s.clock.Location()
	d, err := time.ParseInLocation(timefmt.DateLayout, date, loc)
	if err != nil {
		return now
	}
	if end := clock.EndOfDay(d, loc); now.After(end) {
		return end
	}
	return now
}

// SetAttendance overwrites the check-in and check-out of userID on date, creating
// the row when missing. Admin only; the state machine guards do not apply.
func (s *AttendanceService) SetAttendance(ctx context.Context, actor *models.User, userID uint, date string, checkIn, checkOut *time.Time) (*models.AttendanceDay, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := parseDate(s.clock.Location(), date); err != nil {
		return nil, err
	}

	var day *models.AttendanceDay
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		day, err = s.ensureDay(ctx, tx, userID, date)
		if err != nil {
			return err
		}
		day.CheckIn = checkIn
		day.CheckOut = checkOut
		if !day.IsValid() {
			return ErrInvalidAttendance
		}
		return tx.Attendance.SaveDay(ctx, day)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"admin_id":  actor.ID,
		"user_id":   userID,
		"day":       date,
		"check_in":  timefmt.Clock(checkIn, s.clock.Location()),
		"check_out": timefmt.Clock(checkOut, s.clock.Location()),
	}).Info("Attendance set by admin")
	return day, nil
}

// PauseInput describes an admin pause edit. A zero ID creates a new pause on
// the user's day, otherwise the existing pause is overwritten.
type PauseInput struct {
	ID        uint
	UserID    uint
	Date      string
	Category  models.PauseCategory
	StartedAt time.Time
	EndedAt   *time.Time
	Paid      bool
}

// SetPause creates or overwrites a pause. Admin only.
func (s *AttendanceService) SetPause(ctx context.Context, actor *models.User, in PauseInput) (*models.Pause, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !in.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidPause, in.Category)
	}
	if in.StartedAt.IsZero() || (in.EndedAt != nil && in.EndedAt.Before(in.StartedAt)) {
		return nil, fmt.Errorf("%w: pause ends before it starts", ErrInvalidPause)
	}

	var pause *models.Pause
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if in.ID != 0 {
			var err error
			pause, err = tx.Attendance.GetPause(ctx, in.ID)
			if err != nil {
				return err
			}
			if pause == nil {
				return ErrNotFound
			}
		} else {
			if _, err := parseDate(s.clock.Location(), in.Date); err != nil {
				return err
			}
			day, err := s.ensureDay(ctx, tx, in.UserID, in.Date)
			if err != nil {
				return err
			}
			pause = &models.Pause{AttendanceDayID: day.ID}
		}

		pause.Category = in.Category
		pause.StartedAt = in.StartedAt
		pause.EndedAt = in.EndedAt
		pause.Paid = in.Paid

		if pause.ID == 0 {
			return translateDuplicate(tx.Attendance.CreatePause(ctx, pause), ErrPauseAlreadyOpen)
		}
		return translateDuplicate(tx.Attendance.SavePause(ctx, pause), ErrPauseAlreadyOpen)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"admin_id":      actor.ID,
		"pause_id":      pause.ID,
		"attendance_id": pause.AttendanceDayID,
	}).Info("Pause set by admin")
	return pause, nil
}

// DeletePause removes a pause. Admin only.
func (s *AttendanceService) DeletePause(ctx context.Context, actor *models.User, pauseID uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	pause, err := s.store.Attendance.GetPause(ctx, pauseID)
	if err != nil {
		return err
	}
	if pause == nil {
		return ErrNotFound
	}
	if err := s.store.Attendance.DeletePause(ctx, pauseID); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"admin_id": actor.ID,
		"pause_id": pauseID,
	}).Info("Pause deleted by admin")
	return nil
}

// ClearAttendanceDay removes the user's row for date with its pauses. Clearing a
// day without a row is not an error. Admin only.
func (s *AttendanceService) ClearAttendanceDay(ctx context.Context, actor *models.User, userID uint, date string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		day, err := tx.Attendance.GetDay(ctx, userID, date)
		if err != nil || day == nil {
			return err
		}
		if err := tx.Attendance.DeleteDay(ctx, day.ID); err != nil {
			return err
		}

		s.logger.WithFields(logrus.Fields{
			"admin_id": actor.ID,
			"user_id":  userID,
			"day":      date,
		}).Info("Attendance day cleared by admin")
		return nil
	})
}

func (s *AttendanceService) ensureDay(ctx context.Context, tx *repository.Store, userID uint, date string) (*models.AttendanceDay, error) {
	day, err := tx.Attendance.GetDay(ctx, userID, date)
	if err != nil || day != nil {
		return day, err
	}
	day = &models.AttendanceDay{UserID: userID, Day: date}
	if err := tx.Attendance.CreateDay(ctx, day); err != nil {
		return nil, err
	}
	return day, nil
}

func (s *AttendanceService) logRejection(err error, userID uint, day, msg string) {
	entry := s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"day":     day,
	}).WithError(err)
	if isPrecondition(err) {
		entry.Warn(msg)
		return
	}
	entry.Error(msg)
}
