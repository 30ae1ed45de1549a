package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"debiti/internal/config"
	"debiti/internal/email"
	"debiti/internal/log"
	"debiti/internal/services"
	"debiti/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentReminder})
	log.SetDefault(logger)

	logger.Info("Starting reminder-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.ReminderTo == "" {
		logger.Error("REMINDER_TO is required for the reminder worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// The reminder reads the ledger directly; nothing is published from here.
	debts := services.NewDebtService(repo, nil)
	mailer := email.NewSender(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		Sender:   cfg.SenderEmail,
	})
	reminder := services.NewReminderService(debts, mailer, cfg.ReminderTo, cfg.ReminderWindowDays)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.ReminderCron, func() {
		runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		if err := reminder.RunOnce(runCtx); err != nil {
			logger.Error("Reminder run failed", "error", err)
		}
	})
	if err != nil {
		logger.Error("Invalid reminder cron expression", "cron", cfg.ReminderCron, "error", err)
		os.Exit(1)
	}

	scheduler.Start()
	logger.Info("Reminder scheduled", "cron", cfg.ReminderCron, "recipient", cfg.ReminderTo, "window_days", cfg.ReminderWindowDays)

	<-ctx.Done()

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached while waiting for running job")
	}
	logger.Info("Reminder-worker shutdown complete")
}
