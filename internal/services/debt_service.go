package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"debiti/internal/amqp"
	"debiti/internal/core"
	"debiti/internal/ledger"
)

// Store is the full persistence surface the service needs: the ledger read
// side plus entity writes.
type Store interface {
	ledger.Reader

	CreateBank(ctx context.Context, b core.Bank) (core.Bank, error)
	UpdateBank(ctx context.Context, b core.Bank) (core.Bank, error)
	DeleteBank(ctx context.Context, id int64) error

	ListTransactions(ctx context.Context, bankID int64) ([]core.LoanTransaction, error)
	CreateTransaction(ctx context.Context, t core.LoanTransaction) (core.LoanTransaction, error)
	UpdateTransaction(ctx context.Context, t core.LoanTransaction) (core.LoanTransaction, error)
	DeleteTransaction(ctx context.Context, id int64) error

	GetPayment(ctx context.Context, id int64) (core.Payment, error)
	ListPayments(ctx context.Context, bankID, transactionID int64) ([]core.Payment, error)
	CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error)
	UpdatePayment(ctx context.Context, p core.Payment) (core.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
}

// Publisher pushes sync requests for newly recorded ledger rows. Satisfied
// by the AMQP client.
type Publisher interface {
	PublishLedgerSync(ctx context.Context, kind amqp.EntityKind, id int64) error
}

// DebtService orchestrates bank, transaction and payment operations and
// assembles reports.
type DebtService struct {
	store     Store
	publisher Publisher
	now       func() time.Time
}

func NewDebtService(store Store, publisher Publisher) *DebtService {
	return &DebtService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// SetClock overrides the reference clock, for deterministic tests.
func (s *DebtService) SetClock(now func() time.Time) { s.now = now }

func (s *DebtService) CreateBank(ctx context.Context, b core.Bank) (core.Bank, error) {
	if err := b.Validate(); err != nil {
		return core.Bank{}, err
	}
	if err := ledger.ValidateBankConfig(b.Category, b.BillingDay); err != nil {
		return core.Bank{}, err
	}
	return s.store.CreateBank(ctx, b)
}

func (s *DebtService) GetBank(ctx context.Context, id int64) (core.Bank, error) {
	return s.store.GetBank(ctx, id)
}

func (s *DebtService) ListBanks(ctx context.Context) ([]core.Bank, error) {
	return s.store.ListBanks(ctx)
}

// UpdateBank applies a partial update. Moving the category away from
// credit-card drops the billing day unless the patch supplies one, in which
// case validation rejects the combination.
func (s *DebtService) UpdateBank(ctx context.Context, id int64, patch core.BankPatch) (core.Bank, error) {
	existing, err := s.store.GetBank(ctx, id)
	if err != nil {
		return core.Bank{}, err
	}
	updated := patch.Apply(existing)
	if err := updated.Validate(); err != nil {
		return core.Bank{}, err
	}
	if err := ledger.ValidateBankConfig(updated.Category, updated.BillingDay); err != nil {
		return core.Bank{}, err
	}
	return s.store.UpdateBank(ctx, updated)
}

// DeleteBank refuses when the bank still owns transactions or payments.
func (s *DebtService) DeleteBank(ctx context.Context, id int64) error {
	if err := ledger.CheckBankDeletable(ctx, s.store, id); err != nil {
		return err
	}
	return s.store.DeleteBank(ctx, id)
}

// CreateTransaction records a new loan after the credit-limit and
// billing-cycle checks pass, then publishes a sheet sync request. The limit
// is enforced at creation only.
func (s *DebtService) CreateTransaction(ctx context.Context, t core.LoanTransaction) (core.LoanTransaction, error) {
	if err := t.Validate(); err != nil {
		return core.LoanTransaction{}, err
	}
	bank, err := s.store.GetBank(ctx, t.BankID)
	if err != nil {
		return core.LoanTransaction{}, err
	}
	if _, err := ledger.CheckLoanLimit(ctx, s.store, t.BankID, t.Amount); err != nil {
		return core.LoanTransaction{}, err
	}
	if err := ledger.CheckBillingCycle(bank, t.Date, t.Installment); err != nil {
		return core.LoanTransaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.LoanTransaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.publishSync(ctx, amqp.EntityTransaction, created.ID)
	return created, nil
}

func (s *DebtService) GetTransaction(ctx context.Context, id int64) (core.LoanTransaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// ListTransactions returns transactions, restricted to one bank when bankID
// is non-zero.
func (s *DebtService) ListTransactions(ctx context.Context, bankID int64) ([]core.LoanTransaction, error) {
	return s.store.ListTransactions(ctx, bankID)
}

// UpdateTransaction applies a partial update. Amount changes are not
// re-checked against the credit limit.
func (s *DebtService) UpdateTransaction(ctx context.Context, id int64, patch core.TransactionPatch) (core.LoanTransaction, error) {
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.LoanTransaction{}, err
	}
	updated := patch.Apply(existing)
	if err := updated.Validate(); err != nil {
		return core.LoanTransaction{}, err
	}
	return s.store.UpdateTransaction(ctx, updated)
}

// DeleteTransaction removes the transaction together with its payments.
func (s *DebtService) DeleteTransaction(ctx context.Context, id int64) error {
	return s.store.DeleteTransaction(ctx, id)
}

// CreatePayment records a repayment against a transaction owned by the same
// bank, then publishes a sheet sync request. Overpayment is allowed.
func (s *DebtService) CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	if err := ledger.CheckPaymentOwnership(ctx, s.store, p.BankID, p.TransactionID); err != nil {
		return core.Payment{}, err
	}

	created, err := s.store.CreatePayment(ctx, p)
	if err != nil {
		return core.Payment{}, fmt.Errorf("save payment: %w", err)
	}
	s.publishSync(ctx, amqp.EntityPayment, created.ID)
	return created, nil
}

func (s *DebtService) GetPayment(ctx context.Context, id int64) (core.Payment, error) {
	return s.store.GetPayment(ctx, id)
}

// ListPayments filters by bank and/or transaction; zero means any.
func (s *DebtService) ListPayments(ctx context.Context, bankID, transactionID int64) ([]core.Payment, error) {
	return s.store.ListPayments(ctx, bankID, transactionID)
}

// UpdatePayment applies a partial update and re-verifies ownership with the
// final bank and transaction references.
func (s *DebtService) UpdatePayment(ctx context.Context, id int64, patch core.PaymentPatch) (core.Payment, error) {
	existing, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return core.Payment{}, err
	}
	updated := patch.Apply(existing)
	if err := updated.Validate(); err != nil {
		return core.Payment{}, err
	}
	if err := ledger.CheckPaymentOwnership(ctx, s.store, updated.BankID, updated.TransactionID); err != nil {
		return core.Payment{}, err
	}
	return s.store.UpdatePayment(ctx, updated)
}

func (s *DebtService) DeletePayment(ctx context.Context, id int64) error {
	return s.store.DeletePayment(ctx, id)
}

func (s *DebtService) MonthlyReport(ctx context.Context, year, month int) (ledger.MonthlyReport, error) {
	return ledger.Monthly(ctx, s.store, year, month)
}

func (s *DebtService) CategoryReport(ctx context.Context, cat core.LoanCategory) (ledger.CategoryReport, error) {
	return ledger.ByCategory(ctx, s.store, cat)
}

func (s *DebtService) AllCategoryReports(ctx context.Context) ([]ledger.CategoryReport, error) {
	return ledger.AllCategories(ctx, s.store)
}

func (s *DebtService) DueDateReport(ctx context.Context) ([]ledger.DueDateRow, error) {
	return ledger.DueDates(ctx, s.store, s.now())
}

// UpcomingDueDates returns banks due within windowDays that still carry
// outstanding debt. windowDays <= 0 falls back to the default lookahead.
func (s *DebtService) UpcomingDueDates(ctx context.Context, windowDays int) ([]ledger.DueDateRow, error) {
	if windowDays <= 0 {
		windowDays = ledger.DefaultUpcomingWindow
	}
	rows, err := ledger.DueDates(ctx, s.store, s.now())
	if err != nil {
		return nil, err
	}
	return ledger.Upcoming(rows, windowDays), nil
}

func (s *DebtService) OverdueDueDates(ctx context.Context) ([]ledger.DueDateRow, error) {
	rows, err := ledger.DueDates(ctx, s.store, s.now())
	if err != nil {
		return nil, err
	}
	return ledger.Overdue(rows), nil
}

// publishSync is best-effort: the row is saved locally and the periodic
// pending scan recovers lost messages.
func (s *DebtService) publishSync(ctx context.Context, kind amqp.EntityKind, id int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping sync message",
			"kind", kind, "id", id)
		return
	}
	if err := s.publisher.PublishLedgerSync(ctx, kind, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"kind", kind, "id", id, "error", err)
	}
}
