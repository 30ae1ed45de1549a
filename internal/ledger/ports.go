// Package ledger implements the validation rules, aggregation engine, and
// report assembly for the debt ledger. All functions are pure over an
// injected store reader; the reference instant for date arithmetic is always
// caller-supplied.
package ledger

import (
	"context"
	"time"

	"debiti/internal/core"
)

// Totals is the sum/count pair returned by aggregate queries. Both fields are
// zero for an empty result set, never absent.
type Totals struct {
	Cents int64
	Count int64
}

// Reader is the read surface of the store that rules and reports consume.
type Reader interface {
	GetBank(ctx context.Context, id int64) (core.Bank, error)
	GetTransaction(ctx context.Context, id int64) (core.LoanTransaction, error)
	ListBanks(ctx context.Context) ([]core.Bank, error)

	// Per-bank aggregates, all-time.
	SumTransactionsByBank(ctx context.Context, bankID int64) (Totals, error)
	SumPaymentsByBank(ctx context.Context, bankID int64) (Totals, error)

	// Windowed aggregates over the entity date, bounds inclusive.
	SumTransactionsInRange(ctx context.Context, from, to time.Time) (Totals, error)
	SumPaymentsInRange(ctx context.Context, from, to time.Time) (Totals, error)

	// Category aggregates joined through the owning bank, all-time.
	SumTransactionsByCategory(ctx context.Context, cat core.LoanCategory) (Totals, error)
	SumPaymentsByCategory(ctx context.Context, cat core.LoanCategory) (Totals, error)
}
