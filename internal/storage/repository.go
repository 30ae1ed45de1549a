package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"debiti/internal/core"
	"debiti/internal/ledger"

	_ "modernc.org/sqlite"
)

// timeLayout is the canonical column encoding for every timestamp and entity
// date. Fixed width in UTC so string comparison matches time order.
const timeLayout = "2006-01-02 15:04:05.000"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// foreign_keys is per-connection, so it goes in the DSN rather than a
	// one-off PRAGMA exec.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t.UTC(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBank(row rowScanner) (core.Bank, error) {
	var (
		b          core.Bank
		billingDay sql.NullInt64
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(&b.ID, &b.Name, &b.CreditLimit.Cents, &b.Category, &billingDay, &b.DueDay, &createdAt, &updatedAt)
	if err != nil {
		return core.Bank{}, err
	}
	if billingDay.Valid {
		day := int(billingDay.Int64)
		b.BillingDay = &day
	}
	if b.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Bank{}, err
	}
	if b.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return core.Bank{}, err
	}
	return b, nil
}

func scanTransaction(row rowScanner) (core.LoanTransaction, error) {
	var (
		t         core.LoanTransaction
		date      string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&t.ID, &t.BankID, &date, &t.Description, &t.Amount.Cents, &t.Installment, &createdAt, &updatedAt)
	if err != nil {
		return core.LoanTransaction{}, err
	}
	d, err := decodeTime(date)
	if err != nil {
		return core.LoanTransaction{}, err
	}
	t.Date = core.Date{Time: d}
	if t.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.LoanTransaction{}, err
	}
	if t.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return core.LoanTransaction{}, err
	}
	return t, nil
}

func scanPayment(row rowScanner) (core.Payment, error) {
	var (
		p         core.Payment
		date      string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&p.ID, &p.BankID, &p.TransactionID, &date, &p.Amount.Cents, &createdAt, &updatedAt)
	if err != nil {
		return core.Payment{}, err
	}
	d, err := decodeTime(date)
	if err != nil {
		return core.Payment{}, err
	}
	p.Date = core.Date{Time: d}
	if p.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Payment{}, err
	}
	if p.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return core.Payment{}, err
	}
	return p, nil
}

const bankColumns = "id, name, credit_limit_cents, category, billing_day, due_day, created_at, updated_at"

func (r *SQLiteRepository) GetBank(ctx context.Context, id int64) (core.Bank, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+bankColumns+" FROM banks WHERE id = ?", id)
	b, err := scanBank(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bank{}, &ledger.NotFoundError{Entity: "bank", ID: id}
	}
	if err != nil {
		return core.Bank{}, fmt.Errorf("get bank %d: %w", id, err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBanks(ctx context.Context) ([]core.Bank, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bankColumns+" FROM banks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	defer rows.Close()

	banks := make([]core.Bank, 0)
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		banks = append(banks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banks: %w", err)
	}
	return banks, nil
}

func (r *SQLiteRepository) CreateBank(ctx context.Context, b core.Bank) (core.Bank, error) {
	now := time.Now().UTC()
	var billingDay any
	if b.BillingDay != nil {
		billingDay = *b.BillingDay
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO banks (name, credit_limit_cents, category, billing_day, due_day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		b.Name, b.CreditLimit.Cents, b.Category, billingDay, b.DueDay, encodeTime(now), encodeTime(now),
	).Scan(&b.ID)
	if err != nil {
		return core.Bank{}, fmt.Errorf("insert bank: %w", err)
	}
	b.CreatedAt = now
	b.UpdatedAt = now

	slog.InfoContext(ctx, "Bank saved",
		"bank_id", b.ID,
		"name", b.Name,
		"category", b.Category)
	return b, nil
}

func (r *SQLiteRepository) UpdateBank(ctx context.Context, b core.Bank) (core.Bank, error) {
	now := time.Now().UTC()
	var billingDay any
	if b.BillingDay != nil {
		billingDay = *b.BillingDay
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE banks
		SET name = ?, credit_limit_cents = ?, category = ?, billing_day = ?, due_day = ?, updated_at = ?
		WHERE id = ?`,
		b.Name, b.CreditLimit.Cents, b.Category, billingDay, b.DueDay, encodeTime(now), b.ID,
	)
	if err != nil {
		return core.Bank{}, fmt.Errorf("update bank %d: %w", b.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.Bank{}, &ledger.NotFoundError{Entity: "bank", ID: b.ID}
	}
	return r.GetBank(ctx, b.ID)
}

func (r *SQLiteRepository) DeleteBank(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM banks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete bank %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return &ledger.NotFoundError{Entity: "bank", ID: id}
	}
	slog.InfoContext(ctx, "Bank deleted", "bank_id", id)
	return nil
}

const transactionColumns = "id, bank_id, date, description, amount_cents, installment, created_at, updated_at"

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.LoanTransaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM loan_transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.LoanTransaction{}, &ledger.NotFoundError{Entity: "transaction", ID: id}
	}
	if err != nil {
		return core.LoanTransaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// ListTransactions returns transactions ordered by id, filtered by bank when
// bankID is non-zero.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, bankID int64) ([]core.LoanTransaction, error) {
	query := "SELECT " + transactionColumns + " FROM loan_transactions"
	args := []any{}
	if bankID != 0 {
		query += " WHERE bank_id = ?"
		args = append(args, bankID)
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]core.LoanTransaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.LoanTransaction) (core.LoanTransaction, error) {
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO loan_transactions (bank_id, date, description, amount_cents, installment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		t.BankID, encodeTime(t.Date.Time), t.Description, t.Amount.Cents, t.Installment, encodeTime(now), encodeTime(now),
	).Scan(&t.ID)
	if err != nil {
		return core.LoanTransaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	t.CreatedAt = now
	t.UpdatedAt = now

	slog.InfoContext(ctx, "Loan transaction saved",
		"transaction_id", t.ID,
		"bank_id", t.BankID,
		"amount_cents", t.Amount.Cents,
		"installment", t.Installment)
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.LoanTransaction) (core.LoanTransaction, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE loan_transactions
		SET bank_id = ?, date = ?, description = ?, amount_cents = ?, installment = ?, updated_at = ?
		WHERE id = ?`,
		t.BankID, encodeTime(t.Date.Time), t.Description, t.Amount.Cents, t.Installment, encodeTime(now), t.ID,
	)
	if err != nil {
		return core.LoanTransaction{}, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.LoanTransaction{}, &ledger.NotFoundError{Entity: "transaction", ID: t.ID}
	}
	return r.GetTransaction(ctx, t.ID)
}

// DeleteTransaction removes the transaction; its payments go with it through
// the ON DELETE CASCADE constraint.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM loan_transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return &ledger.NotFoundError{Entity: "transaction", ID: id}
	}
	slog.InfoContext(ctx, "Loan transaction deleted", "transaction_id", id)
	return nil
}

const paymentColumns = "id, bank_id, transaction_id, date, amount_cents, created_at, updated_at"

func (r *SQLiteRepository) GetPayment(ctx context.Context, id int64) (core.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE id = ?", id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payment{}, &ledger.NotFoundError{Entity: "payment", ID: id}
	}
	if err != nil {
		return core.Payment{}, fmt.Errorf("get payment %d: %w", id, err)
	}
	return p, nil
}

// ListPayments returns payments ordered by id; bankID and transactionID are
// optional filters, zero means any.
func (r *SQLiteRepository) ListPayments(ctx context.Context, bankID, transactionID int64) ([]core.Payment, error) {
	query := "SELECT " + paymentColumns + " FROM payments"
	conds := []string{}
	args := []any{}
	if bankID != 0 {
		conds = append(conds, "bank_id = ?")
		args = append(args, bankID)
	}
	if transactionID != 0 {
		conds = append(conds, "transaction_id = ?")
		args = append(args, transactionID)
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]core.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}

func (r *SQLiteRepository) CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO payments (bank_id, transaction_id, date, amount_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		p.BankID, p.TransactionID, encodeTime(p.Date.Time), p.Amount.Cents, encodeTime(now), encodeTime(now),
	).Scan(&p.ID)
	if err != nil {
		return core.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	slog.InfoContext(ctx, "Payment saved",
		"payment_id", p.ID,
		"bank_id", p.BankID,
		"transaction_id", p.TransactionID,
		"amount_cents", p.Amount.Cents)
	return p, nil
}

func (r *SQLiteRepository) UpdatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET bank_id = ?, transaction_id = ?, date = ?, amount_cents = ?, updated_at = ?
		WHERE id = ?`,
		p.BankID, p.TransactionID, encodeTime(p.Date.Time), p.Amount.Cents, encodeTime(now), p.ID,
	)
	if err != nil {
		return core.Payment{}, fmt.Errorf("update payment %d: %w", p.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.Payment{}, &ledger.NotFoundError{Entity: "payment", ID: p.ID}
	}
	return r.GetPayment(ctx, p.ID)
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete payment %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return &ledger.NotFoundError{Entity: "payment", ID: id}
	}
	slog.InfoContext(ctx, "Payment deleted", "payment_id", id)
	return nil
}

func (r *SQLiteRepository) sumQuery(ctx context.Context, query string, args ...any) (ledger.Totals, error) {
	var t ledger.Totals
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&t.Cents, &t.Count); err != nil {
		return ledger.Totals{}, err
	}
	return t, nil
}

func (r *SQLiteRepository) SumTransactionsByBank(ctx context.Context, bankID int64) (ledger.Totals, error) {
	t, err := r.sumQuery(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0), COUNT(*) FROM loan_transactions WHERE bank_id = ?", bankID)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("sum transactions for bank %d: %w", bankID, err)
	}
	return t, nil
}

func (r *SQLiteRepository) SumPaymentsByBank(ctx context.Context, bankID int64) (ledger.Totals, error) {
	t, err := r.sumQuery(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0), COUNT(*) FROM payments WHERE bank_id = ?", bankID)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("sum payments for bank %d: %w", bankID, err)
	}
	return t, nil
}

func (r *SQLiteRepository) SumTransactionsInRange(ctx context.Context, from, to time.Time) (ledger.Totals, error) {
	t, err := r.sumQuery(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0), COUNT(*) FROM loan_transactions WHERE date >= ? AND date <= ?",
		encodeTime(from), encodeTime(to))
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("sum transactions in range: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) SumPaymentsInRange(ctx context.Context, from, to time.Time) (ledger.Totals, error) {
	t, err := r.sumQuery(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0), COUNT(*) FROM payments WHERE date >= ? AND date <= ?",
		encodeTime(from), encodeTime(to))
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("sum payments in range: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) SumTransactionsByCategory(ctx context.Context, cat core.LoanCategory) (ledger.Totals, error) {
	t, err := r.sumQuery(ctx, `
		SELECT COALESCE(SUM(t.amount_cents), 0), COUNT(t.id)
		FROM loan_transactions t
		JOIN banks b ON b.id = t.bank_id
		WHERE b.category = ?`, cat)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("sum transactions for category %s: %w", cat, err)
	}
	return t, nil
}

func (r *SQLiteRepository) SumPaymentsByCategory(ctx context.Context, cat core.LoanCategory) (ledger.Totals, error) {
	t, err := r.sumQuery(ctx, `
		SELECT COALESCE(SUM(p.amount_cents), 0), COUNT(p.id)
		FROM payments p
		JOIN banks b ON b.id = p.bank_id
		WHERE b.category = ?`, cat)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("sum payments for category %s: %w", cat, err)
	}
	return t, nil
}

func (r *SQLiteRepository) pendingIDs(ctx context.Context, query string, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PendingSyncTransactions lists ids of transactions not yet mirrored to the
// spreadsheet, oldest first.
func (r *SQLiteRepository) PendingSyncTransactions(ctx context.Context, limit int) ([]int64, error) {
	ids, err := r.pendingIDs(ctx,
		"SELECT id FROM loan_transactions WHERE synced = 0 ORDER BY id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	return ids, nil
}

func (r *SQLiteRepository) PendingSyncPayments(ctx context.Context, limit int) ([]int64, error) {
	ids, err := r.pendingIDs(ctx,
		"SELECT id FROM payments WHERE synced = 0 ORDER BY id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync payments: %w", err)
	}
	return ids, nil
}

func (r *SQLiteRepository) MarkTransactionSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE loan_transactions SET synced = 1, sync_error = 0 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "transaction_id", id)
	return nil
}

func (r *SQLiteRepository) MarkTransactionSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE loan_transactions SET sync_error = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "transaction_id", id)
	return nil
}

func (r *SQLiteRepository) MarkPaymentSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE payments SET synced = 1, sync_error = 0 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark payment synced: %w", err)
	}
	slog.InfoContext(ctx, "Payment marked as synced", "payment_id", id)
	return nil
}

func (r *SQLiteRepository) MarkPaymentSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE payments SET sync_error = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark payment sync error: %w", err)
	}
	slog.WarnContext(ctx, "Payment marked with sync error", "payment_id", id)
	return nil
}
