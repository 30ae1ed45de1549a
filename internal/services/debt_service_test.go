package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"debiti/internal/amqp"
	"debiti/internal/core"
	"debiti/internal/ledger"
	"debiti/internal/services"
	"debiti/internal/storage/memory"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func catPtr(c core.LoanCategory) *core.LoanCategory { return &c }

type fakePublisher struct {
	mu        sync.Mutex
	published []amqp.LedgerSyncMessage
}

func (p *fakePublisher) PublishLedgerSync(_ context.Context, kind amqp.EntityKind, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, amqp.LedgerSyncMessage{Kind: kind, ID: id})
	return nil
}

func (p *fakePublisher) messages() []amqp.LedgerSyncMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]amqp.LedgerSyncMessage(nil), p.published...)
}

func newService(t *testing.T) (*services.DebtService, *memory.Store, *fakePublisher) {
	t.Helper()
	store := memory.New()
	pub := &fakePublisher{}
	return services.NewDebtService(store, pub), store, pub
}

func creditCardBank() core.Bank {
	return core.Bank{
		Name:        "Intesa",
		CreditLimit: core.Money{Cents: 100_000},
		Category:    core.CreditCard,
		BillingDay:  intPtr(20),
		DueDay:      10,
	}
}

func TestCreateBank(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	t.Run("valid credit card", func(t *testing.T) {
		created, err := svc.CreateBank(ctx, creditCardBank())
		if err != nil {
			t.Fatalf("CreateBank() error = %v", err)
		}
		if created.ID == 0 {
			t.Error("created bank should have an id")
		}
		if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
			t.Error("timestamps should be set")
		}
	})

	t.Run("billing day on non credit card", func(t *testing.T) {
		bank := core.Bank{
			Name:        "Klarna",
			CreditLimit: core.Money{Cents: 50_000},
			Category:    core.PayLater,
			BillingDay:  intPtr(15),
			DueDay:      10,
		}
		_, err := svc.CreateBank(ctx, bank)
		var cfgErr *ledger.InvalidBillingConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected InvalidBillingConfigError, got %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		bank := creditCardBank()
		bank.Name = ""
		if _, err := svc.CreateBank(ctx, bank); err == nil {
			t.Error("expected validation error for missing name")
		}
	})
}

func TestUpdateBank(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	bank, err := svc.CreateBank(ctx, creditCardBank())
	if err != nil {
		t.Fatalf("CreateBank() error = %v", err)
	}

	t.Run("rename keeps other fields", func(t *testing.T) {
		updated, err := svc.UpdateBank(ctx, bank.ID, core.BankPatch{Name: strPtr("Intesa Sanpaolo")})
		if err != nil {
			t.Fatalf("UpdateBank() error = %v", err)
		}
		if updated.Name != "Intesa Sanpaolo" {
			t.Errorf("name = %q", updated.Name)
		}
		if updated.BillingDay == nil || *updated.BillingDay != 20 {
			t.Error("billing day should be untouched")
		}
	})

	t.Run("category change clears billing day", func(t *testing.T) {
		updated, err := svc.UpdateBank(ctx, bank.ID, core.BankPatch{Category: catPtr(core.PersonalLoan)})
		if err != nil {
			t.Fatalf("UpdateBank() error = %v", err)
		}
		if updated.BillingDay != nil {
			t.Errorf("billing day = %v, want cleared", *updated.BillingDay)
		}
	})

	t.Run("category change with explicit billing day fails", func(t *testing.T) {
		_, err := svc.UpdateBank(ctx, bank.ID, core.BankPatch{
			Category:   catPtr(core.MicroLoan),
			BillingDay: intPtr(12),
		})
		var cfgErr *ledger.InvalidBillingConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected InvalidBillingConfigError, got %v", err)
		}
	})

	t.Run("unknown bank", func(t *testing.T) {
		_, err := svc.UpdateBank(ctx, 999, core.BankPatch{Name: strPtr("x")})
		var nfErr *ledger.NotFoundError
		if !errors.As(err, &nfErr) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})
}

func TestDeleteBankWithDependents(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	bank, err := svc.CreateBank(ctx, creditCardBank())
	if err != nil {
		t.Fatalf("CreateBank() error = %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, core.LoanTransaction{
		BankID:      bank.ID,
		Date:        core.NewDate(2024, 5, 25),
		Description: "groceries",
		Amount:      core.Money{Cents: 4_000},
	}); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	err = svc.DeleteBank(ctx, bank.ID)
	var depErr *ledger.HasDependentsError
	if !errors.As(err, &depErr) {
		t.Fatalf("expected HasDependentsError, got %v", err)
	}

	empty, err := svc.CreateBank(ctx, core.Bank{
		Name:        "Empty",
		CreditLimit: core.Money{Cents: 1_000},
		Category:    core.MicroLoan,
		DueDay:      1,
	})
	if err != nil {
		t.Fatalf("CreateBank() error = %v", err)
	}
	if err := svc.DeleteBank(ctx, empty.ID); err != nil {
		t.Errorf("DeleteBank() on empty bank error = %v", err)
	}
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newService(t)
	bank, err := svc.CreateBank(ctx, creditCardBank())
	if err != nil {
		t.Fatalf("CreateBank() error = %v", err)
	}

	t.Run("valid transaction publishes sync", func(t *testing.T) {
		created, err := svc.CreateTransaction(ctx, core.LoanTransaction{
			BankID:      bank.ID,
			Date:        core.NewDate(2024, 5, 25),
			Description: "groceries",
			Amount:      core.Money{Cents: 40_000},
		})
		if err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
		msgs := pub.messages()
		if len(msgs) != 1 || msgs[0].Kind != amqp.EntityTransaction || msgs[0].ID != created.ID {
			t.Errorf("published = %+v", msgs)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		_, err := svc.CreateTransaction(ctx, core.LoanTransaction{
			BankID:      bank.ID,
			Date:        core.NewDate(2024, 5, 25),
			Description: "tv",
			Amount:      core.Money{Cents: 70_000},
		})
		var limErr *ledger.LimitExceededError
		if !errors.As(err, &limErr) {
			t.Fatalf("expected LimitExceededError, got %v", err)
		}
	})

	t.Run("installment inside billing window", func(t *testing.T) {
		_, err := svc.CreateTransaction(ctx, core.LoanTransaction{
			BankID:      bank.ID,
			Date:        core.NewDate(2024, 5, 8),
			Description: "phone installment",
			Amount:      core.Money{Cents: 10_000},
			Installment: true,
		})
		var cycleErr *ledger.BeforeBillingDateError
		if !errors.As(err, &cycleErr) {
			t.Fatalf("expected BeforeBillingDateError, got %v", err)
		}
	})

	t.Run("unknown bank", func(t *testing.T) {
		_, err := svc.CreateTransaction(ctx, core.LoanTransaction{
			BankID:      999,
			Date:        core.NewDate(2024, 5, 25),
			Description: "x",
			Amount:      core.Money{Cents: 100},
		})
		var nfErr *ledger.NotFoundError
		if !errors.As(err, &nfErr) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})
}

func TestUpdateTransactionSkipsLimitCheck(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	bank, err := svc.CreateBank(ctx, creditCardBank())
	if err != nil {
		t.Fatalf("CreateBank() error = %v", err)
	}
	txn, err := svc.CreateTransaction(ctx, core.LoanTransaction{
		BankID:      bank.ID,
		Date:        core.NewDate(2024, 5, 25),
		Description: "groceries",
		Amount:      core.Money{Cents: 90_000},
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	// Raising the amount past the limit is allowed on update; the limit is
	// enforced at creation only.
	bigger := core.Money{Cents: 150_000}
	updated, err := svc.UpdateTransaction(ctx, txn.ID, core.TransactionPatch{Amount: &bigger})
	if err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	if updated.Amount.Cents != 150_000 {
		t.Errorf("amount = %d, want 150000", updated.Amount.Cents)
	}
}

func TestDeleteTransactionCascadesPayments(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	bank, err := svc.CreateBank(ctx, creditCardBank())
	if err != nil {
		t.Fatalf("CreateBank() error = %v", err)
	}
	txn, err := svc.CreateTransaction(ctx, core.LoanTransaction{
		BankID:      bank.ID,
		Date:        core.NewDate(2024, 5, 25),
		Description: "groceries",
		Amount:      core.Money{Cents: 40_000},
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	pay, err := svc.CreatePayment(ctx, core.Payment{
		BankID:        bank.ID,
		TransactionID: txn.ID,
		Date:          core.NewDate(2024, 6, 1),
		Amount:        core.Money{Cents: 10_000},
	})
	if err != nil {
		t.Fatalf("CreatePayment() error = %v", err)
	}

	if err := svc.DeleteTransaction(ctx, txn.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	_, err = svc.GetPayment(ctx, pay.ID)
	var nfErr *ledger.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("payment should be gone, got %v", err)
	}
}

func TestCreatePayment(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newService(t)
	bankA, err := svc.CreateBank(ctx, creditCardBank())
	if err != nil {
		t.Fatalf("CreateBank() error = %v", err)
	}
	bankB, err := svc.CreateBank(ctx, core.Bank{
		Name:        "Klarna",
		CreditLimit: core.Money{Cents: 100_000},
		Category:    core.PayLater,
		DueDay:      15,
	})
	if err != nil {
		t.Fatalf("CreateBank() error = %v", err)
	}
	txn, err := svc.CreateTransaction(ctx, core.LoanTransaction{
		BankID:      bankA.ID,
		Date:        core.NewDate(2024, 5, 25),
		Description: "groceries",
		Amount:      core.Money{Cents: 40_000},
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	t.Run("valid payment publishes sync", func(t *testing.T) {
		created, err := svc.CreatePayment(ctx, core.Payment{
			BankID:        bankA.ID,
			TransactionID: txn.ID,
			Date:          core.NewDate(2024, 6, 1),
			Amount:        core.Money{Cents: 10_000},
		})
		if err != nil {
			t.Fatalf("CreatePayment() error = %v", err)
		}
		last := pub.messages()[len(pub.messages())-1]
		if last.Kind != amqp.EntityPayment || last.ID != created.ID {
			t.Errorf("published = %+v", last)
		}
	})

	t.Run("overpayment allowed", func(t *testing.T) {
		if _, err := svc.CreatePayment(ctx, core.Payment{
			BankID:        bankA.ID,
			TransactionID: txn.ID,
			Date:          core.NewDate(2024, 6, 2),
			Amount:        core.Money{Cents: 100_000},
		}); err != nil {
			t.Errorf("overpayment should pass, got %v", err)
		}
	})

	t.Run("mismatched bank", func(t *testing.T) {
		_, err := svc.CreatePayment(ctx, core.Payment{
			BankID:        bankB.ID,
			TransactionID: txn.ID,
			Date:          core.NewDate(2024, 6, 1),
			Amount:        core.Money{Cents: 1_000},
		})
		var ownErr *ledger.MismatchedOwnerError
		if !errors.As(err, &ownErr) {
			t.Fatalf("expected MismatchedOwnerError, got %v", err)
		}
	})
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	svc.SetClock(func() time.Time {
		return time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	})
	bank, err := svc.CreateBank(ctx, core.Bank{
		Name:        "Intesa",
		CreditLimit: core.Money{Cents: 1_000_000},
		Category:    core.CreditCard,
		BillingDay:  intPtr(27),
		DueDay:      22,
	})
	if err != nil {
		t.Fatalf("CreateBank() error = %v", err)
	}
	for _, c := range []struct {
		date  core.Date
		cents int64
	}{
		{core.NewDate(2024, 1, 5), 1_500},
		{core.NewDate(2024, 1, 28), 2_500},
		{core.NewDate(2024, 2, 3), 9_900},
	} {
		if _, err := svc.CreateTransaction(ctx, core.LoanTransaction{
			BankID:      bank.ID,
			Date:        c.date,
			Description: "spesa",
			Amount:      core.Money{Cents: c.cents},
		}); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	t.Run("monthly", func(t *testing.T) {
		report, err := svc.MonthlyReport(ctx, 2024, 1)
		if err != nil {
			t.Fatalf("MonthlyReport() error = %v", err)
		}
		if report.TotalLoans.Cents != 4_000 || report.TransactionCount != 2 {
			t.Errorf("january = %+v", report)
		}
	})

	t.Run("all categories zero filled", func(t *testing.T) {
		reports, err := svc.AllCategoryReports(ctx)
		if err != nil {
			t.Fatalf("AllCategoryReports() error = %v", err)
		}
		if len(reports) != 4 {
			t.Fatalf("got %d category reports, want 4", len(reports))
		}
	})

	t.Run("upcoming within window", func(t *testing.T) {
		rows, err := svc.UpcomingDueDates(ctx, 7)
		if err != nil {
			t.Fatalf("UpcomingDueDates() error = %v", err)
		}
		if len(rows) != 1 || rows[0].BankID != bank.ID {
			t.Fatalf("upcoming = %+v", rows)
		}
		if rows[0].DaysUntilDue != 2 {
			t.Errorf("days until due = %d, want 2", rows[0].DaysUntilDue)
		}
	})

	t.Run("no overdue yet", func(t *testing.T) {
		rows, err := svc.OverdueDueDates(ctx)
		if err != nil {
			t.Fatalf("OverdueDueDates() error = %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("overdue = %+v, want empty", rows)
		}
	})
}
