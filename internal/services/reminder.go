package services

import (
	"context"
	"fmt"
	"log/slog"

	"debiti/internal/ledger"
)

// ReminderMailer sends the assembled due-date summary.
type ReminderMailer interface {
	SendDueDateSummary(ctx context.Context, to string, upcoming, overdue []ledger.DueDateRow) error
}

// ReminderService composes the due-date report into a daily reminder email.
type ReminderService struct {
	debts      *DebtService
	mailer     ReminderMailer
	recipient  string
	windowDays int
}

func NewReminderService(debts *DebtService, mailer ReminderMailer, recipient string, windowDays int) *ReminderService {
	if windowDays <= 0 {
		windowDays = ledger.DefaultUpcomingWindow
	}
	return &ReminderService{
		debts:      debts,
		mailer:     mailer,
		recipient:  recipient,
		windowDays: windowDays,
	}
}

// RunOnce gathers upcoming and overdue banks and mails the summary.
func (s *ReminderService) RunOnce(ctx context.Context) error {
	upcoming, err := s.debts.UpcomingDueDates(ctx, s.windowDays)
	if err != nil {
		return fmt.Errorf("collect upcoming due dates: %w", err)
	}
	overdue, err := s.debts.OverdueDueDates(ctx)
	if err != nil {
		return fmt.Errorf("collect overdue due dates: %w", err)
	}

	slog.InfoContext(ctx, "Due date scan completed",
		"upcoming", len(upcoming),
		"overdue", len(overdue),
		"window_days", s.windowDays)

	return s.mailer.SendDueDateSummary(ctx, s.recipient, upcoming, overdue)
}
