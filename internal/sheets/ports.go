package sheets

import (
	"context"

	"debiti/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerAppender mirrors ledger rows to an external spreadsheet. The
	// owning bank travels with each row so the sheet can show names and
	// categories without another lookup.
	LedgerAppender interface {
		AppendTransaction(ctx context.Context, bank core.Bank, t core.LoanTransaction) error
		AppendPayment(ctx context.Context, bank core.Bank, p core.Payment) error
	}
)
