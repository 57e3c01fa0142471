package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"dochazka-bot/internal/clock"
	"dochazka-bot/internal/config"
	"dochazka-bot/internal/database"
	"dochazka-bot/internal/handler"
	"dochazka-bot/internal/logging"
	"dochazka-bot/internal/models"
	"dochazka-bot/internal/repository"
	"dochazka-bot/internal/service"
	"dochazka-bot/pkg/telegram"
	"dochazka-bot/pkg/timefmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// console is the actor for every change made from the command line.
var console = &models.User{
	Username:    "console",
	DisplayName: "Admin console",
	Role:        models.RoleAdmin,
}

type app struct {
	clock    clock.Clock // nil means the real clock in the policy timezone
	logger   *logrus.Logger
	db       *gorm.DB
	services *service.Services
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "dochazka-admin",
		Short:             "Administration console for the attendance database",
		SilenceUsage:      true,
		PersistentPreRunE: a.open,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	root.AddCommand(
		newUserCmd(a),
		newFundCmd(a),
		newAbsenceCmd(a),
		newDayCmd(a),
		newPauseCmd(a),
		newReportCmd(a),
	)
	return root
}

// open loads the configuration and wires the engine. Decisions are pushed to
// Telegram when a bot token is configured.
func (a *app) open(cmd *cobra.Command, _ []string) error {
	if err := a.close(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a.logger = logging.New(cfg.LogLevel)
	a.logger.SetOutput(cmd.ErrOrStderr())

	if a.clock == nil {
		loc, err := cfg.Policy.Location()
		if err != nil {
			return err
		}
		a.clock = clock.New(loc)
	}

	a.db, err = database.Open(cfg.DatabaseURL, a.logger)
	if err != nil {
		return err
	}
	store, err := repository.NewStore(a.db, a.logger)
	if err != nil {
		return err
	}

	var notifier service.Notifier
	if cfg.TelegramToken != "" {
		client, err := telegram.NewClient(cfg.TelegramToken, false)
		if err != nil {
			a.logger.WithError(err).Warn("Telegram unavailable, absence decisions will not be notified")
		} else {
			notifier = handler.NewNotifier(client.Bot)
		}
	}

	a.services = service.New(store, a.clock, cfg.Policy, notifier, a.logger)
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := database.Close(a.db)
	a.db = nil
	return err
}

func (a *app) user(cmd *cobra.Command, username string) (*models.User, error) {
	user, err := a.services.Users.GetByUsername(cmd.Context(), username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	return user, nil
}

// date validates a YYYY-MM-DD argument.
func (a *app) date(s string) (time.Time, error) {
	t, err := clock.ParseDate(a.clock, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", service.ErrInvalidDateRange, s)
	}
	return t, nil
}

// clockOn turns an HH:MM flag into an instant on day. An empty value gives nil.
func (a *app) clockOn(day time.Time, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := timefmt.AtClock(day, value, a.clock.Location())
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// yearMonth reads an optional YYYY-MM argument, the current month by default.
func (a *app) yearMonth(args []string) (int, time.Month, error) {
	if len(args) == 0 {
		now := a.clock.Now()
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q is not YYYY-MM", service.ErrInvalidDateRange, args[0])
	}
	return t.Year(), t.Month(), nil
}

func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
}
