package ledger

import (
	"context"
	"fmt"

	"debiti/internal/core"
)

// ValidateBankConfig checks the category/billing-day consistency rule: a
// credit-card bank carries a billing day in [1,31], every other category
// carries none.
func ValidateBankConfig(category core.LoanCategory, billingDay *int) error {
	if category == core.CreditCard {
		if billingDay == nil || *billingDay < 1 || *billingDay > 31 {
			return &InvalidBillingConfigError{Category: category, BillingDay: billingDay}
		}
		return nil
	}
	if billingDay != nil {
		return &InvalidBillingConfigError{Category: category, BillingDay: billingDay}
	}
	return nil
}

// LimitCheck reports the totals computed during a loan-limit check. It is
// returned on success as well so callers can surface the adjusted figures.
type LimitCheck struct {
	Current   core.Money
	Attempted core.Money
	Limit     core.Money
}

// CheckLoanLimit verifies that the bank's existing loan total plus the new
// amount stays within its credit limit. The check runs against the sum at
// call time; it is not re-validated retroactively if the limit is later
// lowered.
func CheckLoanLimit(ctx context.Context, store Reader, bankID int64, amount core.Money) (LimitCheck, error) {
	bank, err := store.GetBank(ctx, bankID)
	if err != nil {
		return LimitCheck{}, err
	}
	sum, err := store.SumTransactionsByBank(ctx, bankID)
	if err != nil {
		return LimitCheck{}, fmt.Errorf("sum transactions for bank %d: %w", bankID, err)
	}
	check := LimitCheck{
		Current:   core.Money{Cents: sum.Cents},
		Attempted: core.Money{Cents: sum.Cents + amount.Cents},
		Limit:     bank.CreditLimit,
	}
	if check.Attempted.Cents > bank.CreditLimit.Cents {
		return check, &LimitExceededError{
			BankID:    bankID,
			Current:   check.Current,
			Attempted: check.Attempted,
			Limit:     check.Limit,
		}
	}
	return check, nil
}

// CheckBillingCycle rejects installment charges dated before the current
// billing cycle of a credit-card bank. Non-installment transactions and
// banks of any other category skip the check entirely.
//
// The comparison is day-of-month only: a charge after the billing print day
// is in the post-billing window, and a charge on or before it is still
// allowed once the due day has passed (it falls into the next cycle).
func CheckBillingCycle(bank core.Bank, txnDate core.Date, installment bool) error {
	if !installment || bank.Category != core.CreditCard || bank.BillingDay == nil {
		return nil
	}
	txnDay := txnDate.Day()
	if txnDay > *bank.BillingDay {
		return nil
	}
	if txnDay > bank.DueDay {
		return nil
	}
	return &BeforeBillingDateError{
		BankID:         bank.ID,
		TransactionDay: txnDay,
		BillingDay:     *bank.BillingDay,
		DueDay:         bank.DueDay,
	}
}

// CheckBankDeletable verifies the bank owns no transactions and no payments.
// Transactions are checked before payments.
func CheckBankDeletable(ctx context.Context, store Reader, bankID int64) error {
	if _, err := store.GetBank(ctx, bankID); err != nil {
		return err
	}
	txns, err := store.SumTransactionsByBank(ctx, bankID)
	if err != nil {
		return fmt.Errorf("count transactions for bank %d: %w", bankID, err)
	}
	if txns.Count > 0 {
		return &HasDependentsError{BankID: bankID, Kind: "transactions", Count: txns.Count}
	}
	pays, err := store.SumPaymentsByBank(ctx, bankID)
	if err != nil {
		return fmt.Errorf("count payments for bank %d: %w", bankID, err)
	}
	if pays.Count > 0 {
		return &HasDependentsError{BankID: bankID, Kind: "payments", Count: pays.Count}
	}
	return nil
}

// CheckPaymentOwnership verifies the referenced transaction exists and is
// owned by the same bank the payment targets.
func CheckPaymentOwnership(ctx context.Context, store Reader, bankID, transactionID int64) error {
	if _, err := store.GetBank(ctx, bankID); err != nil {
		return err
	}
	txn, err := store.GetTransaction(ctx, transactionID)
	if err != nil {
		return err
	}
	if txn.BankID != bankID {
		return &MismatchedOwnerError{
			BankID:        bankID,
			TransactionID: transactionID,
			OwnerBankID:   txn.BankID,
		}
	}
	return nil
}
