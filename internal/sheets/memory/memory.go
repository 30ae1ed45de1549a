// Package memory is an in-process LedgerAppender used by tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"sync"

	"debiti/internal/core"

	ports "debiti/internal/sheets"
)

type TransactionRow struct {
	Bank        core.Bank
	Transaction core.LoanTransaction
}

type PaymentRow struct {
	Bank    core.Bank
	Payment core.Payment
}

type Appender struct {
	mu           sync.Mutex
	transactions []TransactionRow
	payments     []PaymentRow
	failWith     error
}

var _ ports.LedgerAppender = (*Appender)(nil)

func New() *Appender {
	return &Appender{}
}

// FailWith makes every append return err until called again with nil.
func (a *Appender) FailWith(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failWith = err
}

func (a *Appender) AppendTransaction(_ context.Context, bank core.Bank, t core.LoanTransaction) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failWith != nil {
		return a.failWith
	}
	a.transactions = append(a.transactions, TransactionRow{Bank: bank, Transaction: t})
	return nil
}

func (a *Appender) AppendPayment(_ context.Context, bank core.Bank, p core.Payment) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failWith != nil {
		return a.failWith
	}
	a.payments = append(a.payments, PaymentRow{Bank: bank, Payment: p})
	return nil
}

func (a *Appender) Transactions() []TransactionRow {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]TransactionRow(nil), a.transactions...)
}

func (a *Appender) Payments() []PaymentRow {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]PaymentRow(nil), a.payments...)
}
