package ledger

import (
	"context"
	"fmt"
	"time"

	"debiti/internal/core"
)

// DefaultUpcomingWindow is the due-date lookahead used when the caller does
// not supply one.
const DefaultUpcomingWindow = 7

// MonthlyReport summarizes activity inside one calendar month. Rows are
// selected by their transaction/payment date; creation timestamps are
// irrelevant.
type MonthlyReport struct {
	Year             int
	Month            int
	TotalLoans       core.Money
	TotalPayments    core.Money
	NetDebt          core.Money
	TransactionCount int64
	PaymentCount     int64
}

// Monthly assembles the report for the given year and month.
func Monthly(ctx context.Context, store Reader, year, month int) (MonthlyReport, error) {
	from, to := MonthWindow(year, month)
	loans, err := store.SumTransactionsInRange(ctx, from, to)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("sum transactions %d-%02d: %w", year, month, err)
	}
	pays, err := store.SumPaymentsInRange(ctx, from, to)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("sum payments %d-%02d: %w", year, month, err)
	}
	return MonthlyReport{
		Year:             year,
		Month:            month,
		TotalLoans:       core.Money{Cents: loans.Cents},
		TotalPayments:    core.Money{Cents: pays.Cents},
		NetDebt:          core.Money{Cents: loans.Cents - pays.Cents},
		TransactionCount: loans.Count,
		PaymentCount:     pays.Count,
	}, nil
}

// CategoryReport summarizes all-time activity for one loan category across
// every bank of that category.
type CategoryReport struct {
	Category         core.LoanCategory
	TotalLoans       core.Money
	TotalPayments    core.Money
	Outstanding      core.Money
	TransactionCount int64
	PaymentCount     int64
}

// ByCategory assembles the all-time report for a single category. A category
// with no banks or activity yields a zero-filled report, never an error.
func ByCategory(ctx context.Context, store Reader, cat core.LoanCategory) (CategoryReport, error) {
	loans, err := store.SumTransactionsByCategory(ctx, cat)
	if err != nil {
		return CategoryReport{}, fmt.Errorf("sum transactions for category %s: %w", cat, err)
	}
	pays, err := store.SumPaymentsByCategory(ctx, cat)
	if err != nil {
		return CategoryReport{}, fmt.Errorf("sum payments for category %s: %w", cat, err)
	}
	return CategoryReport{
		Category:         cat,
		TotalLoans:       core.Money{Cents: loans.Cents},
		TotalPayments:    core.Money{Cents: pays.Cents},
		Outstanding:      core.Money{Cents: loans.Cents - pays.Cents},
		TransactionCount: loans.Count,
		PaymentCount:     pays.Count,
	}, nil
}

// AllCategories runs the category report once per enumerated category, in
// declaration order, always returning one entry per category.
func AllCategories(ctx context.Context, store Reader) ([]CategoryReport, error) {
	reports := make([]CategoryReport, 0, len(core.Categories))
	for _, cat := range core.Categories {
		r, err := ByCategory(ctx, store, cat)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// DueDateRow is one bank's entry in the due-date report.
type DueDateRow struct {
	BankID       int64
	BankName     string
	Category     core.LoanCategory
	DueDay       int
	DaysUntilDue int
	Outstanding  core.Money
}

// DueDates returns one row per bank regardless of activity, computed against
// the supplied reference instant.
func DueDates(ctx context.Context, store Reader, now time.Time) ([]DueDateRow, error) {
	banks, err := store.ListBanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	rows := make([]DueDateRow, 0, len(banks))
	for _, b := range banks {
		outstanding, err := Outstanding(ctx, store, b.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, DueDateRow{
			BankID:       b.ID,
			BankName:     b.Name,
			Category:     b.Category,
			DueDay:       b.DueDay,
			DaysUntilDue: DaysUntilDue(b.DueDay, now),
			Outstanding:  outstanding,
		})
	}
	return rows, nil
}

// Upcoming filters due-date rows to those due within windowDays from now
// (inclusive, today counts) that still carry a positive outstanding balance.
func Upcoming(rows []DueDateRow, windowDays int) []DueDateRow {
	out := make([]DueDateRow, 0)
	for _, r := range rows {
		if r.DaysUntilDue >= 0 && r.DaysUntilDue <= windowDays && r.Outstanding.Cents > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Overdue filters due-date rows to those whose due day has already passed
// this month and that still carry a positive outstanding balance.
func Overdue(rows []DueDateRow) []DueDateRow {
	out := make([]DueDateRow, 0)
	for _, r := range rows {
		if r.DaysUntilDue < 0 && r.Outstanding.Cents > 0 {
			out = append(out, r)
		}
	}
	return out
}
