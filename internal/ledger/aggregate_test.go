package ledger_test

import (
	"context"
	"testing"
	"time"

	"debiti/internal/core"
	"debiti/internal/ledger"
	"debiti/internal/storage/memory"
)

func TestMonthWindow(t *testing.T) {
	from, to := ledger.MonthWindow(2024, 2)
	if got := from.Format("2006-01-02 15:04:05"); got != "2024-02-01 00:00:00" {
		t.Errorf("from = %s", got)
	}
	// 2024 is a leap year.
	if got := to.Format("2006-01-02 15:04:05.000"); got != "2024-02-29 23:59:59.999" {
		t.Errorf("to = %s", got)
	}

	from, to = ledger.MonthWindow(2023, 12)
	if from.Month() != time.December || to.Month() != time.December || to.Day() != 31 {
		t.Errorf("december window = %s .. %s", from, to)
	}
}

func TestOutstanding(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	bank := mustCreateBank(t, store, core.Bank{
		Name:        "Revolut",
		CreditLimit: core.Money{Cents: 1_000_000},
		Category:    core.CreditCard,
		BillingDay:  intPtr(25),
		DueDay:      10,
	})
	txn, err := store.CreateTransaction(ctx, core.LoanTransaction{
		BankID: bank.ID,
		Date:   core.NewDate(2024, 1, 5),
		Amount: core.Money{Cents: 40_000},
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	got, err := ledger.Outstanding(ctx, store, bank.ID)
	if err != nil {
		t.Fatalf("Outstanding() error = %v", err)
	}
	if got.Cents != 40_000 {
		t.Errorf("outstanding = %d, want 40000", got.Cents)
	}

	if _, err := store.CreatePayment(ctx, core.Payment{
		BankID:        bank.ID,
		TransactionID: txn.ID,
		Date:          core.NewDate(2024, 1, 20),
		Amount:        core.Money{Cents: 50_000},
	}); err != nil {
		t.Fatalf("create payment: %v", err)
	}

	got, err = ledger.Outstanding(ctx, store, bank.ID)
	if err != nil {
		t.Fatalf("Outstanding() error = %v", err)
	}
	if got.Cents != -10_000 {
		t.Errorf("overpaid outstanding = %d, want -10000", got.Cents)
	}
}

func TestDaysUntilDue(t *testing.T) {
	tests := []struct {
		name   string
		dueDay int
		now    time.Time
		want   int
	}{
		{
			name:   "due today",
			dueDay: 15,
			now:    time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			want:   0,
		},
		{
			name:   "due in two days",
			dueDay: 17,
			now:    time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			want:   2,
		},
		{
			name:   "due tomorrow late in the day",
			dueDay: 16,
			now:    time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC),
			want:   1,
		},
		{
			name:   "already passed stays negative",
			dueDay: 1,
			now:    time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
			want:   -15,
		},
		{
			name:   "due day 31 clamps in february",
			dueDay: 31,
			now:    time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC),
			want:   2,
		},
		{
			name:   "due day 30 clamps in non leap february",
			dueDay: 30,
			now:    time.Date(2023, 2, 28, 6, 0, 0, 0, time.UTC),
			want:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ledger.DaysUntilDue(tt.dueDay, tt.now); got != tt.want {
				t.Errorf("DaysUntilDue(%d, %s) = %d, want %d", tt.dueDay, tt.now, got, tt.want)
			}
		})
	}
}
