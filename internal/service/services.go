package service

import (
	"dochazka-bot/internal/clock"
	"dochazka-bot/internal/config"
	"dochazka-bot/internal/repository"
	"dochazka-bot/pkg/holidays"

	"github.com/sirupsen/logrus"
)

// Services is the engine as the front-ends see it.
type Services struct {
	Users      *UserService
	Attendance *AttendanceService
	Absences   *AbsenceService
	Leave      *LeaveService
	Monthly    *MonthlyService
	Status     *StatusService

	Clock    clock.Clock
	Calendar holidays.Calendar
}

func New(store *repository.Store, clk clock.Clock, policy config.Policy, notifier Notifier, logger *logrus.Logger) *Services {
	calendar := holidays.New(policy.Calendar.GoodFriday)
	attendance := NewAttendanceService(store, clk, logger)

	return &Services{
		Users:      NewUserService(store, logger),
		Attendance: attendance,
		Absences:   NewAbsenceService(store, clk, notifier, logger),
		Leave:      NewLeaveService(store, calendar, policy.Leave, logger),
		Monthly:    NewMonthlyService(store, attendance, clk, calendar, policy.WorkdaySeconds(), logger),
		Status:     NewStatusService(store, attendance),
		Clock:      clk,
		Calendar:   calendar,
	}
}
