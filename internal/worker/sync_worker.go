package worker

import (
	"context"
	"fmt"
	"log/slog"

	"debiti/internal/amqp"
	"debiti/internal/core"
	"debiti/internal/sheets"
)

// Store is the slice of the repository the sync worker needs.
type Store interface {
	GetBank(ctx context.Context, id int64) (core.Bank, error)
	GetTransaction(ctx context.Context, id int64) (core.LoanTransaction, error)
	GetPayment(ctx context.Context, id int64) (core.Payment, error)
	PendingSyncTransactions(ctx context.Context, limit int) ([]int64, error)
	PendingSyncPayments(ctx context.Context, limit int) ([]int64, error)
	MarkTransactionSynced(ctx context.Context, id int64) error
	MarkTransactionSyncError(ctx context.Context, id int64) error
	MarkPaymentSynced(ctx context.Context, id int64) error
	MarkPaymentSyncError(ctx context.Context, id int64) error
}

// SyncWorker mirrors ledger rows from SQLite to the spreadsheet.
type SyncWorker struct {
	store     Store
	appender  sheets.LedgerAppender
	batchSize int
}

func NewSyncWorker(store Store, appender sheets.LedgerAppender, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single ledger sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.LedgerSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"kind", msg.Kind,
		"id", msg.ID)

	switch msg.Kind {
	case amqp.EntityTransaction:
		return w.syncTransaction(ctx, msg.ID)
	case amqp.EntityPayment:
		return w.syncPayment(ctx, msg.ID)
	default:
		return fmt.Errorf("unknown entity kind %q", msg.Kind)
	}
}

func (w *SyncWorker) syncTransaction(ctx context.Context, id int64) error {
	t, err := w.store.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}
	bank, err := w.store.GetBank(ctx, t.BankID)
	if err != nil {
		return fmt.Errorf("get bank from storage: %w", err)
	}

	if err := w.appender.AppendTransaction(ctx, bank, t); err != nil {
		if markErr := w.store.MarkTransactionSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "transaction_id", id, "error", markErr)
		}
		return fmt.Errorf("append transaction to sheet: %w", err)
	}

	return w.store.MarkTransactionSynced(ctx, id)
}

func (w *SyncWorker) syncPayment(ctx context.Context, id int64) error {
	p, err := w.store.GetPayment(ctx, id)
	if err != nil {
		return fmt.Errorf("get payment from storage: %w", err)
	}
	bank, err := w.store.GetBank(ctx, p.BankID)
	if err != nil {
		return fmt.Errorf("get bank from storage: %w", err)
	}

	if err := w.appender.AppendPayment(ctx, bank, p); err != nil {
		if markErr := w.store.MarkPaymentSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "payment_id", id, "error", markErr)
		}
		return fmt.Errorf("append payment to sheet: %w", err)
	}

	return w.store.MarkPaymentSynced(ctx, id)
}

// ProcessPending mirrors rows whose sync messages were lost. This is the
// backup to AMQP delivery, run on a timer.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	return w.processPendingBatch(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger pending backlog once at worker startup to
// recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPendingBatch(ctx, w.batchSize*5)
}

func (w *SyncWorker) processPendingBatch(ctx context.Context, batch int) error {
	txnIDs, err := w.store.PendingSyncTransactions(ctx, batch)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	payIDs, err := w.store.PendingSyncPayments(ctx, batch)
	if err != nil {
		return fmt.Errorf("get pending payments: %w", err)
	}

	if len(txnIDs) == 0 && len(payIDs) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending ledger rows",
		"transactions", len(txnIDs),
		"payments", len(payIDs))

	synced := 0
	failed := 0
	for _, id := range txnIDs {
		if err := w.syncTransaction(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "transaction_id", id, "error", err)
			failed++
			continue
		}
		synced++
	}
	for _, id := range payIDs {
		if err := w.syncPayment(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync payment", "payment_id", id, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending sync completed",
		"synced", synced,
		"errors", failed)

	return nil
}
