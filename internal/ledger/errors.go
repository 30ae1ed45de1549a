package ledger

import (
	"fmt"

	"debiti/internal/core"
)

// Validation failures carry enough context (ids, computed totals) for the
// caller to build a human-readable message. None are retried internally.

type NotFoundError struct {
	Entity string // "bank", "transaction", "payment"
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

type InvalidBillingConfigError struct {
	Category   core.LoanCategory
	BillingDay *int
}

func (e *InvalidBillingConfigError) Error() string {
	if e.Category == core.CreditCard {
		if e.BillingDay == nil {
			return "credit-card bank requires a billing day"
		}
		return fmt.Sprintf("credit-card bank requires a billing day in [1,31], got %d", *e.BillingDay)
	}
	if e.BillingDay != nil {
		return fmt.Sprintf("bank of category %s must not carry a billing day (got %d)", e.Category, *e.BillingDay)
	}
	return fmt.Sprintf("invalid billing configuration for category %s", e.Category)
}

type LimitExceededError struct {
	BankID    int64
	Current   core.Money
	Attempted core.Money
	Limit     core.Money
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("bank %d loan limit exceeded: current %s + new amount = %s over limit %s",
		e.BankID, e.Current, e.Attempted, e.Limit)
}

type BeforeBillingDateError struct {
	BankID         int64
	TransactionDay int
	BillingDay     int
	DueDay         int
}

func (e *BeforeBillingDateError) Error() string {
	return fmt.Sprintf("installment charge on day %d precedes billing day %d of bank %d (due day %d)",
		e.TransactionDay, e.BillingDay, e.BankID, e.DueDay)
}

type HasDependentsError struct {
	BankID int64
	Kind   string // "transactions" or "payments"
	Count  int64
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("bank %d still owns %d %s", e.BankID, e.Count, e.Kind)
}

type MismatchedOwnerError struct {
	BankID        int64
	TransactionID int64
	OwnerBankID   int64
}

func (e *MismatchedOwnerError) Error() string {
	return fmt.Sprintf("transaction %d belongs to bank %d, not bank %d",
		e.TransactionID, e.OwnerBankID, e.BankID)
}
