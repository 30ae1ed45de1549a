// Package email sends due-date reminder mail over SMTP.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"debiti/internal/ledger"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// Sender delivers reminder mail through a plain-auth SMTP server.
type Sender struct {
	cfg SMTPConfig
}

func NewSender(cfg SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

// SendDueDateSummary mails one message listing upcoming and overdue banks.
// Nothing is sent when both lists are empty.
func (s *Sender) SendDueDateSummary(ctx context.Context, to string, upcoming, overdue []ledger.DueDateRow) error {
	if len(upcoming) == 0 && len(overdue) == 0 {
		slog.InfoContext(ctx, "No due dates to report, skipping reminder email")
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.Sender
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Debt payment reminder: %d upcoming, %d overdue", len(upcoming), len(overdue))
	e.Text = []byte(buildSummaryBody(upcoming, overdue))

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := e.Send(addr, auth); err != nil {
		slog.ErrorContext(ctx, "Failed to send reminder email", "to", to, "error", err)
		return fmt.Errorf("send reminder email: %w", err)
	}

	slog.InfoContext(ctx, "Reminder email sent",
		"to", to,
		"upcoming", len(upcoming),
		"overdue", len(overdue))
	return nil
}

func buildSummaryBody(upcoming, overdue []ledger.DueDateRow) string {
	var b strings.Builder

	if len(overdue) > 0 {
		b.WriteString("Overdue payments:\n")
		for _, r := range overdue {
			fmt.Fprintf(&b, "  - %s (%s): %.2f outstanding, due day %d passed %d days ago\n",
				r.BankName, r.Category, float64(r.Outstanding.Cents)/100.0, r.DueDay, -r.DaysUntilDue)
		}
		b.WriteString("\n")
	}

	if len(upcoming) > 0 {
		b.WriteString("Upcoming payments:\n")
		for _, r := range upcoming {
			switch r.DaysUntilDue {
			case 0:
				fmt.Fprintf(&b, "  - %s (%s): %.2f outstanding, due today\n",
					r.BankName, r.Category, float64(r.Outstanding.Cents)/100.0)
			default:
				fmt.Fprintf(&b, "  - %s (%s): %.2f outstanding, due in %d days\n",
					r.BankName, r.Category, float64(r.Outstanding.Cents)/100.0, r.DaysUntilDue)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("Sent by debiti.")
	return b.String()
}
