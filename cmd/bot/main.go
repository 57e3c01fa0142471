package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"dochazka-bot/internal/api"
	"dochazka-bot/internal/clock"
	"dochazka-bot/internal/config"
	"dochazka-bot/internal/database"
	"dochazka-bot/internal/handler"
	"dochazka-bot/internal/logging"
	"dochazka-bot/internal/repository"
	"dochazka-bot/internal/service"
	"dochazka-bot/pkg/telegram"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetConfig()
	logger := logging.New(cfg.LogLevel)
	logger.Info("Config initialized")

	if cfg.TelegramToken == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	loc, err := cfg.Policy.Location()
	if err != nil {
		logger.WithError(err).Fatal("Invalid timezone")
	}
	clk := clock.New(loc)

	db, err := database.Open(cfg.DatabaseURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.WithError(err).Warn("Error closing database")
		}
	}()

	store, err := repository.NewStore(db, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create repositories")
	}

	client, err := telegram.NewClient(cfg.TelegramToken, logger.IsLevelEnabled(logrus.DebugLevel))
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Telegram client")
	}
	logger.Infof("Authorized on account %s", client.Username())

	services := service.New(store, clk, cfg.Policy, handler.NewNotifier(client.Bot), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AdminPassword != "" {
		admin, err := services.Users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminChatID)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize admin")
		} else if admin != nil {
			logger.WithField("username", admin.Username).Info("Admin initialized")
		}
	}

	if cfg.APIAddr != "" {
		app := api.NewApp(api.NewHandler(services, cfg.APIToken, logger))
		go func() {
			logger.WithField("addr", cfg.APIAddr).Info("Reporting API listening")
			if err := app.Listen(cfg.APIAddr); err != nil {
				logger.WithError(err).Error("Reporting API stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				logger.WithError(err).Warn("Reporting API shutdown failed")
			}
		}()
	}

	botHandler := handler.NewHandler(client.Bot, services, logger)
	updates := client.Updates()

	logger.Info("Bot started. Press Ctrl+C to stop.")
	botHandler.HandleUpdates(ctx, updates)

	client.Stop()
	logger.Info("Bot stopped gracefully")
}
