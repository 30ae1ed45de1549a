package worker_test

import (
	"context"
	"errors"
	"testing"

	"debiti/internal/amqp"
	"debiti/internal/core"
	sheetmem "debiti/internal/sheets/memory"
	"debiti/internal/storage/memory"
	"debiti/internal/worker"
)

func intPtr(v int) *int { return &v }

func seedLedger(t *testing.T, store *memory.Store) (core.Bank, core.LoanTransaction, core.Payment) {
	t.Helper()
	ctx := context.Background()
	bank, err := store.CreateBank(ctx, core.Bank{
		Name:        "Fineco",
		CreditLimit: core.Money{Cents: 1_000_000},
		Category:    core.CreditCard,
		BillingDay:  intPtr(20),
		DueDay:      5,
	})
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}
	txn, err := store.CreateTransaction(ctx, core.LoanTransaction{
		BankID:      bank.ID,
		Date:        core.NewDate(2024, 4, 2),
		Description: "laptop",
		Amount:      core.Money{Cents: 120_000},
		Installment: true,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	pay, err := store.CreatePayment(ctx, core.Payment{
		BankID:        bank.ID,
		TransactionID: txn.ID,
		Date:          core.NewDate(2024, 4, 20),
		Amount:        core.Money{Cents: 30_000},
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	return bank, txn, pay
}

func TestHandleSyncMessage(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	appender := sheetmem.New()
	w := worker.NewSyncWorker(store, appender, 10)
	bank, txn, pay := seedLedger(t, store)

	t.Run("transaction", func(t *testing.T) {
		msg := amqp.NewLedgerSyncMessage(amqp.EntityTransaction, txn.ID)
		if err := w.HandleSyncMessage(ctx, msg); err != nil {
			t.Fatalf("HandleSyncMessage() error = %v", err)
		}
		rows := appender.Transactions()
		if len(rows) != 1 {
			t.Fatalf("got %d mirrored transactions, want 1", len(rows))
		}
		if rows[0].Bank.Name != bank.Name || rows[0].Transaction.ID != txn.ID {
			t.Errorf("mirrored row = %+v", rows[0])
		}
	})

	t.Run("payment", func(t *testing.T) {
		msg := amqp.NewLedgerSyncMessage(amqp.EntityPayment, pay.ID)
		if err := w.HandleSyncMessage(ctx, msg); err != nil {
			t.Fatalf("HandleSyncMessage() error = %v", err)
		}
		rows := appender.Payments()
		if len(rows) != 1 {
			t.Fatalf("got %d mirrored payments, want 1", len(rows))
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		msg := amqp.NewLedgerSyncMessage(amqp.EntityTransaction, 999)
		if err := w.HandleSyncMessage(ctx, msg); err == nil {
			t.Error("expected error for missing transaction")
		}
	})
}

func TestProcessPending(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	appender := sheetmem.New()
	w := worker.NewSyncWorker(store, appender, 10)
	seedLedger(t, store)

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if len(appender.Transactions()) != 1 || len(appender.Payments()) != 1 {
		t.Fatalf("mirrored rows = %d/%d, want 1/1",
			len(appender.Transactions()), len(appender.Payments()))
	}

	// Synced rows stay out of later batches.
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("second ProcessPending() error = %v", err)
	}
	if len(appender.Transactions()) != 1 || len(appender.Payments()) != 1 {
		t.Error("already synced rows were mirrored again")
	}

	pending, err := store.PendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending transactions: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending transaction ids = %v, want none", pending)
	}
}

func TestProcessPendingAppendFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	appender := sheetmem.New()
	w := worker.NewSyncWorker(store, appender, 10)
	_, txn, _ := seedLedger(t, store)

	appender.FailWith(errors.New("quota exceeded"))
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}

	pending, err := store.PendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending transactions: %v", err)
	}
	found := false
	for _, id := range pending {
		if id == txn.ID {
			found = true
		}
	}
	if !found {
		t.Error("failed transaction should stay pending")
	}

	// Recovery after the sheet accepts writes again.
	appender.FailWith(nil)
	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}
	if len(appender.Transactions()) != 1 {
		t.Errorf("mirrored transactions = %d, want 1", len(appender.Transactions()))
	}
}
