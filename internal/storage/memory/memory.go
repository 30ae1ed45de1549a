// Package memory provides an in-memory store used by tests and the memory
// data backend. It implements the same port surface as the SQLite
// repository.
package memory

import (
	"context"
	"sync"
	"time"

	"debiti/internal/core"
	"debiti/internal/ledger"
)

type Store struct {
	mu           sync.Mutex
	banks        map[int64]core.Bank
	transactions map[int64]core.LoanTransaction
	payments     map[int64]core.Payment

	// sync bookkeeping for the sheet mirror worker
	txnSynced     map[int64]bool
	txnSyncError  map[int64]bool
	paySynced     map[int64]bool
	paySyncError  map[int64]bool

	nextBankID int64
	nextTxnID  int64
	nextPayID  int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		banks:        make(map[int64]core.Bank),
		transactions: make(map[int64]core.LoanTransaction),
		payments:     make(map[int64]core.Payment),
		txnSynced:    make(map[int64]bool),
		txnSyncError: make(map[int64]bool),
		paySynced:    make(map[int64]bool),
		paySyncError: make(map[int64]bool),
		now:          time.Now,
	}
}

// SetClock overrides the timestamp source, for deterministic tests.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) GetBank(_ context.Context, id int64) (core.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.banks[id]
	if !ok {
		return core.Bank{}, &ledger.NotFoundError{Entity: "bank", ID: id}
	}
	return b, nil
}

func (s *Store) ListBanks(_ context.Context) ([]core.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Bank, 0, len(s.banks))
	for id := int64(1); id <= s.nextBankID; id++ {
		if b, ok := s.banks[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) CreateBank(_ context.Context, b core.Bank) (core.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBankID++
	b.ID = s.nextBankID
	b.CreatedAt = s.now()
	b.UpdatedAt = b.CreatedAt
	s.banks[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBank(_ context.Context, b core.Bank) (core.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.banks[b.ID]
	if !ok {
		return core.Bank{}, &ledger.NotFoundError{Entity: "bank", ID: b.ID}
	}
	b.CreatedAt = old.CreatedAt
	b.UpdatedAt = s.now()
	s.banks[b.ID] = b
	return b, nil
}

func (s *Store) DeleteBank(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banks[id]; !ok {
		return &ledger.NotFoundError{Entity: "bank", ID: id}
	}
	delete(s.banks, id)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.LoanTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.LoanTransaction{}, &ledger.NotFoundError{Entity: "transaction", ID: id}
	}
	return t, nil
}

// ListTransactions returns transactions, optionally filtered by bank
// (bankID 0 means all), in insertion order.
func (s *Store) ListTransactions(_ context.Context, bankID int64) ([]core.LoanTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.LoanTransaction, 0)
	for id := int64(1); id <= s.nextTxnID; id++ {
		t, ok := s.transactions[id]
		if !ok {
			continue
		}
		if bankID != 0 && t.BankID != bankID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.LoanTransaction) (core.LoanTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTxnID++
	t.ID = s.nextTxnID
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.LoanTransaction) (core.LoanTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.transactions[t.ID]
	if !ok {
		return core.LoanTransaction{}, &ledger.NotFoundError{Entity: "transaction", ID: t.ID}
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = s.now()
	s.transactions[t.ID] = t
	return t, nil
}

// DeleteTransaction removes the transaction and cascades to its payments.
func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return &ledger.NotFoundError{Entity: "transaction", ID: id}
	}
	delete(s.transactions, id)
	for pid, p := range s.payments {
		if p.TransactionID == id {
			delete(s.payments, pid)
		}
	}
	return nil
}

func (s *Store) GetPayment(_ context.Context, id int64) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return core.Payment{}, &ledger.NotFoundError{Entity: "payment", ID: id}
	}
	return p, nil
}

// ListPayments returns payments filtered by bank and/or transaction; zero
// values mean no filter.
func (s *Store) ListPayments(_ context.Context, bankID, transactionID int64) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Payment, 0)
	for id := int64(1); id <= s.nextPayID; id++ {
		p, ok := s.payments[id]
		if !ok {
			continue
		}
		if bankID != 0 && p.BankID != bankID {
			continue
		}
		if transactionID != 0 && p.TransactionID != transactionID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) CreatePayment(_ context.Context, p core.Payment) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPayID++
	p.ID = s.nextPayID
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.payments[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePayment(_ context.Context, p core.Payment) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.payments[p.ID]
	if !ok {
		return core.Payment{}, &ledger.NotFoundError{Entity: "payment", ID: p.ID}
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = s.now()
	s.payments[p.ID] = p
	return p, nil
}

func (s *Store) DeletePayment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[id]; !ok {
		return &ledger.NotFoundError{Entity: "payment", ID: id}
	}
	delete(s.payments, id)
	return nil
}

func (s *Store) SumTransactionsByBank(_ context.Context, bankID int64) (ledger.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t ledger.Totals
	for _, txn := range s.transactions {
		if txn.BankID == bankID {
			t.Cents += txn.Amount.Cents
			t.Count++
		}
	}
	return t, nil
}

func (s *Store) SumPaymentsByBank(_ context.Context, bankID int64) (ledger.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t ledger.Totals
	for _, p := range s.payments {
		if p.BankID == bankID {
			t.Cents += p.Amount.Cents
			t.Count++
		}
	}
	return t, nil
}

func (s *Store) SumTransactionsInRange(_ context.Context, from, to time.Time) (ledger.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t ledger.Totals
	for _, txn := range s.transactions {
		if inRange(txn.Date.Time, from, to) {
			t.Cents += txn.Amount.Cents
			t.Count++
		}
	}
	return t, nil
}

func (s *Store) SumPaymentsInRange(_ context.Context, from, to time.Time) (ledger.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t ledger.Totals
	for _, p := range s.payments {
		if inRange(p.Date.Time, from, to) {
			t.Cents += p.Amount.Cents
			t.Count++
		}
	}
	return t, nil
}

func (s *Store) SumTransactionsByCategory(_ context.Context, cat core.LoanCategory) (ledger.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t ledger.Totals
	for _, txn := range s.transactions {
		if b, ok := s.banks[txn.BankID]; ok && b.Category == cat {
			t.Cents += txn.Amount.Cents
			t.Count++
		}
	}
	return t, nil
}

func (s *Store) SumPaymentsByCategory(_ context.Context, cat core.LoanCategory) (ledger.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t ledger.Totals
	for _, p := range s.payments {
		if b, ok := s.banks[p.BankID]; ok && b.Category == cat {
			t.Cents += p.Amount.Cents
			t.Count++
		}
	}
	return t, nil
}

// PendingSyncTransactions lists ids of transactions not yet mirrored, oldest
// first, up to limit.
func (s *Store) PendingSyncTransactions(_ context.Context, limit int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0)
	for id := int64(1); id <= s.nextTxnID && len(out) < limit; id++ {
		if _, ok := s.transactions[id]; ok && !s.txnSynced[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Store) PendingSyncPayments(_ context.Context, limit int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0)
	for id := int64(1); id <= s.nextPayID && len(out) < limit; id++ {
		if _, ok := s.payments[id]; ok && !s.paySynced[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Store) MarkTransactionSynced(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txnSynced[id] = true
	delete(s.txnSyncError, id)
	return nil
}

func (s *Store) MarkTransactionSyncError(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txnSyncError[id] = true
	return nil
}

func (s *Store) MarkPaymentSynced(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paySynced[id] = true
	delete(s.paySyncError, id)
	return nil
}

func (s *Store) MarkPaymentSyncError(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paySyncError[id] = true
	return nil
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}
