package ledger_test

import (
	"context"
	"errors"
	"testing"

	"debiti/internal/core"
	"debiti/internal/ledger"
	"debiti/internal/storage/memory"
)

func intPtr(v int) *int { return &v }

func mustCreateBank(t *testing.T, store *memory.Store, b core.Bank) core.Bank {
	t.Helper()
	created, err := store.CreateBank(context.Background(), b)
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}
	return created
}

func TestValidateBankConfig(t *testing.T) {
	tests := []struct {
		name       string
		category   core.LoanCategory
		billingDay *int
		wantErr    bool
	}{
		{"credit card with billing day", core.CreditCard, intPtr(15), false},
		{"credit card missing billing day", core.CreditCard, nil, true},
		{"credit card billing day too low", core.CreditCard, intPtr(0), true},
		{"credit card billing day too high", core.CreditCard, intPtr(32), true},
		{"pay later without billing day", core.PayLater, nil, false},
		{"pay later with billing day", core.PayLater, intPtr(10), true},
		{"personal loan with billing day", core.PersonalLoan, intPtr(5), true},
		{"micro loan without billing day", core.MicroLoan, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ledger.ValidateBankConfig(tt.category, tt.billingDay)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBankConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var cfgErr *ledger.InvalidBillingConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("expected InvalidBillingConfigError, got %T", err)
				}
			}
		})
	}
}

func TestCheckLoanLimit(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	bank := mustCreateBank(t, store, core.Bank{
		Name:        "Intesa",
		CreditLimit: core.Money{Cents: 500_000},
		Category:    core.CreditCard,
		BillingDay:  intPtr(20),
		DueDay:      5,
	})
	if _, err := store.CreateTransaction(ctx, core.LoanTransaction{
		BankID: bank.ID,
		Date:   core.NewDate(2024, 1, 10),
		Amount: core.Money{Cents: 300_000},
	}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	t.Run("within limit", func(t *testing.T) {
		check, err := ledger.CheckLoanLimit(ctx, store, bank.ID, core.Money{Cents: 200_000})
		if err != nil {
			t.Fatalf("CheckLoanLimit() error = %v", err)
		}
		if check.Attempted.Cents != 500_000 {
			t.Errorf("attempted = %d, want 500000", check.Attempted.Cents)
		}
	})

	t.Run("exactly at limit passes", func(t *testing.T) {
		if _, err := ledger.CheckLoanLimit(ctx, store, bank.ID, core.Money{Cents: 200_000}); err != nil {
			t.Errorf("CheckLoanLimit() at limit error = %v", err)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		_, err := ledger.CheckLoanLimit(ctx, store, bank.ID, core.Money{Cents: 200_001})
		var limErr *ledger.LimitExceededError
		if !errors.As(err, &limErr) {
			t.Fatalf("expected LimitExceededError, got %v", err)
		}
		if limErr.Current.Cents != 300_000 || limErr.Attempted.Cents != 500_001 {
			t.Errorf("limit error totals = %d/%d, want 300000/500001", limErr.Current.Cents, limErr.Attempted.Cents)
		}
	})

	t.Run("unknown bank", func(t *testing.T) {
		_, err := ledger.CheckLoanLimit(ctx, store, 99, core.Money{Cents: 100})
		var nfErr *ledger.NotFoundError
		if !errors.As(err, &nfErr) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})
}

func TestCheckBillingCycle(t *testing.T) {
	ccBank := core.Bank{
		ID:         1,
		Category:   core.CreditCard,
		BillingDay: intPtr(20),
		DueDay:     10,
	}
	tests := []struct {
		name        string
		bank        core.Bank
		day         int
		installment bool
		wantErr     bool
	}{
		{"after billing day", ccBank, 25, true, false},
		{"on billing day still past due day", ccBank, 20, true, false},
		{"between due and billing passes", ccBank, 15, true, false},
		{"just after due day", ccBank, 11, true, false},
		{"on due day rejected", ccBank, 10, true, true},
		{"before due day rejected", ccBank, 5, true, true},
		{"not installment skips check", ccBank, 5, false, false},
		{"non credit card skips check", core.Bank{ID: 2, Category: core.PayLater, DueDay: 10}, 5, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ledger.CheckBillingCycle(tt.bank, core.NewDate(2024, 3, tt.day), tt.installment)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckBillingCycle(day=%d) error = %v, wantErr %v", tt.day, err, tt.wantErr)
			}
			if tt.wantErr {
				var cycleErr *ledger.BeforeBillingDateError
				if !errors.As(err, &cycleErr) {
					t.Errorf("expected BeforeBillingDateError, got %T", err)
				}
			}
		})
	}

	t.Run("billing before due", func(t *testing.T) {
		bank := core.Bank{ID: 3, Category: core.CreditCard, BillingDay: intPtr(5), DueDay: 20}
		if err := ledger.CheckBillingCycle(bank, core.NewDate(2024, 3, 10), true); err != nil {
			t.Errorf("day past billing day should pass, got %v", err)
		}
		err := ledger.CheckBillingCycle(bank, core.NewDate(2024, 3, 3), true)
		var cycleErr *ledger.BeforeBillingDateError
		if !errors.As(err, &cycleErr) {
			t.Errorf("day before billing and due should fail, got %v", err)
		}
	})
}

func TestCheckBankDeletable(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	bank := mustCreateBank(t, store, core.Bank{
		Name:        "Findomestic",
		CreditLimit: core.Money{Cents: 100_000},
		Category:    core.PersonalLoan,
		DueDay:      15,
	})

	t.Run("empty bank deletable", func(t *testing.T) {
		if err := ledger.CheckBankDeletable(ctx, store, bank.ID); err != nil {
			t.Errorf("CheckBankDeletable() error = %v", err)
		}
	})

	txn, err := store.CreateTransaction(ctx, core.LoanTransaction{
		BankID: bank.ID,
		Date:   core.NewDate(2024, 2, 1),
		Amount: core.Money{Cents: 5_000},
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if _, err := store.CreatePayment(ctx, core.Payment{
		BankID:        bank.ID,
		TransactionID: txn.ID,
		Date:          core.NewDate(2024, 2, 10),
		Amount:        core.Money{Cents: 1_000},
	}); err != nil {
		t.Fatalf("create payment: %v", err)
	}

	t.Run("transactions block deletion first", func(t *testing.T) {
		err := ledger.CheckBankDeletable(ctx, store, bank.ID)
		var depErr *ledger.HasDependentsError
		if !errors.As(err, &depErr) {
			t.Fatalf("expected HasDependentsError, got %v", err)
		}
		if depErr.Kind != "transactions" {
			t.Errorf("kind = %q, want transactions", depErr.Kind)
		}
	})

	t.Run("payments block deletion after transactions removed", func(t *testing.T) {
		// Remove the transaction without cascading by recording a payment
		// on a second transaction first.
		second := mustCreateBank(t, store, core.Bank{
			Name:        "Second",
			CreditLimit: core.Money{Cents: 100_000},
			Category:    core.MicroLoan,
			DueDay:      1,
		})
		txn2, err := store.CreateTransaction(ctx, core.LoanTransaction{
			BankID: second.ID,
			Date:   core.NewDate(2024, 2, 5),
			Amount: core.Money{Cents: 2_000},
		})
		if err != nil {
			t.Fatalf("create transaction: %v", err)
		}
		if _, err := store.CreatePayment(ctx, core.Payment{
			BankID:        bank.ID,
			TransactionID: txn2.ID,
			Date:          core.NewDate(2024, 2, 20),
			Amount:        core.Money{Cents: 500},
		}); err != nil {
			t.Fatalf("create payment: %v", err)
		}
		if err := store.DeleteTransaction(ctx, txn.ID); err != nil {
			t.Fatalf("delete transaction: %v", err)
		}

		err = ledger.CheckBankDeletable(ctx, store, bank.ID)
		var depErr *ledger.HasDependentsError
		if !errors.As(err, &depErr) {
			t.Fatalf("expected HasDependentsError, got %v", err)
		}
		if depErr.Kind != "payments" {
			t.Errorf("kind = %q, want payments", depErr.Kind)
		}
	})
}

func TestCheckPaymentOwnership(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	bankA := mustCreateBank(t, store, core.Bank{
		Name:        "A",
		CreditLimit: core.Money{Cents: 100_000},
		Category:    core.PayLater,
		DueDay:      10,
	})
	bankB := mustCreateBank(t, store, core.Bank{
		Name:        "B",
		CreditLimit: core.Money{Cents: 100_000},
		Category:    core.PayLater,
		DueDay:      20,
	})
	txn, err := store.CreateTransaction(ctx, core.LoanTransaction{
		BankID: bankA.ID,
		Date:   core.NewDate(2024, 3, 1),
		Amount: core.Money{Cents: 7_500},
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	t.Run("matching owner", func(t *testing.T) {
		if err := ledger.CheckPaymentOwnership(ctx, store, bankA.ID, txn.ID); err != nil {
			t.Errorf("CheckPaymentOwnership() error = %v", err)
		}
	})

	t.Run("mismatched owner", func(t *testing.T) {
		err := ledger.CheckPaymentOwnership(ctx, store, bankB.ID, txn.ID)
		var ownErr *ledger.MismatchedOwnerError
		if !errors.As(err, &ownErr) {
			t.Fatalf("expected MismatchedOwnerError, got %v", err)
		}
		if ownErr.OwnerBankID != bankA.ID {
			t.Errorf("owner bank = %d, want %d", ownErr.OwnerBankID, bankA.ID)
		}
	})

	t.Run("unknown transaction", func(t *testing.T) {
		err := ledger.CheckPaymentOwnership(ctx, store, bankA.ID, 404)
		var nfErr *ledger.NotFoundError
		if !errors.As(err, &nfErr) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
		if nfErr.Entity != "transaction" {
			t.Errorf("entity = %q, want transaction", nfErr.Entity)
		}
	})
}
