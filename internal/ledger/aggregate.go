package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"debiti/internal/core"
)

// MonthWindow returns the inclusive bounds of a calendar month in UTC, the
// zone all entity dates are normalized to: the first instant of day 1
// through 23:59:59.999 of the last day.
func MonthWindow(year, month int) (from, to time.Time) {
	from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, 0).Add(-time.Millisecond)
	return from, to
}

// Outstanding returns the bank's loan total minus its payment total. The
// result may be negative when payments exceed recorded loans; that is
// accepted and represents overpayment.
func Outstanding(ctx context.Context, store Reader, bankID int64) (core.Money, error) {
	loans, err := store.SumTransactionsByBank(ctx, bankID)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum transactions for bank %d: %w", bankID, err)
	}
	pays, err := store.SumPaymentsByBank(ctx, bankID)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum payments for bank %d: %w", bankID, err)
	}
	return core.Money{Cents: loans.Cents - pays.Cents}, nil
}

// DaysUntilDue returns the number of calendar days between now and the due
// day placed in the current month, rounded by ceiling: 0 on the due day,
// positive while the due date is still ahead this month, negative once it
// has passed. The value does not roll forward to next month; an elapsed due
// day keeps referencing the current month's date. A due day beyond the end
// of the month is clamped to the month's last day.
func DaysUntilDue(dueDay int, now time.Time) int {
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	day := dueDay
	if day > lastDay {
		day = lastDay
	}
	due := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
	diff := due.Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}
