package http

import (
	"time"

	"debiti/internal/core"
	"debiti/internal/ledger"
)

// Wire types. Amounts travel as decimal strings on the way in and as both a
// formatted string and integer cents on the way out.

type createBankRequest struct {
	Name        string `json:"name"`
	CreditLimit string `json:"credit_limit"`
	Category    string `json:"category"`
	BillingDay  *int   `json:"billing_day"`
	DueDay      int    `json:"due_day"`
}

type updateBankRequest struct {
	Name        *string `json:"name"`
	CreditLimit *string `json:"credit_limit"`
	Category    *string `json:"category"`
	BillingDay  *int    `json:"billing_day"`
	DueDay      *int    `json:"due_day"`
}

type createTransactionRequest struct {
	BankID      int64  `json:"bank_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Installment bool   `json:"installment"`
}

type updateTransactionRequest struct {
	Date        *string `json:"date"`
	Description *string `json:"description"`
	Amount      *string `json:"amount"`
	Installment *bool   `json:"installment"`
}

type createPaymentRequest struct {
	BankID        int64  `json:"bank_id"`
	TransactionID int64  `json:"transaction_id"`
	Date          string `json:"date"`
	Amount        string `json:"amount"`
}

type updatePaymentRequest struct {
	BankID        *int64  `json:"bank_id"`
	TransactionID *int64  `json:"transaction_id"`
	Date          *string `json:"date"`
	Amount        *string `json:"amount"`
}

type bankResponse struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	CreditLimit      string `json:"credit_limit"`
	CreditLimitCents int64  `json:"credit_limit_cents"`
	Category         string `json:"category"`
	BillingDay       *int   `json:"billing_day"`
	DueDay           int    `json:"due_day"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	BankID      int64  `json:"bank_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Installment bool   `json:"installment"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type paymentResponse struct {
	ID            int64  `json:"id"`
	BankID        int64  `json:"bank_id"`
	TransactionID int64  `json:"transaction_id"`
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	AmountCents   int64  `json:"amount_cents"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type monthlyReportResponse struct {
	Year             int    `json:"year"`
	Month            int    `json:"month"`
	TotalLoans       string `json:"total_loans"`
	TotalLoansCents  int64  `json:"total_loans_cents"`
	TotalPayments    string `json:"total_payments"`
	TotalPayCents    int64  `json:"total_payments_cents"`
	NetDebt          string `json:"net_debt"`
	NetDebtCents     int64  `json:"net_debt_cents"`
	TransactionCount int64  `json:"transaction_count"`
	PaymentCount     int64  `json:"payment_count"`
}

type categoryReportResponse struct {
	Category         string `json:"category"`
	TotalLoans       string `json:"total_loans"`
	TotalLoansCents  int64  `json:"total_loans_cents"`
	TotalPayments    string `json:"total_payments"`
	TotalPayCents    int64  `json:"total_payments_cents"`
	Outstanding      string `json:"outstanding"`
	OutstandingCents int64  `json:"outstanding_cents"`
	TransactionCount int64  `json:"transaction_count"`
	PaymentCount     int64  `json:"payment_count"`
}

type dueDateRowResponse struct {
	BankID           int64  `json:"bank_id"`
	BankName         string `json:"bank_name"`
	Category         string `json:"category"`
	DueDay           int    `json:"due_day"`
	DaysUntilDue     int    `json:"days_until_due"`
	Outstanding      string `json:"outstanding"`
	OutstandingCents int64  `json:"outstanding_cents"`
}

const wireDateLayout = "2006-01-02"

func encodeTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toBankResponse(b core.Bank) bankResponse {
	return bankResponse{
		ID:               b.ID,
		Name:             b.Name,
		CreditLimit:      b.CreditLimit.String(),
		CreditLimitCents: b.CreditLimit.Cents,
		Category:         string(b.Category),
		BillingDay:       b.BillingDay,
		DueDay:           b.DueDay,
		CreatedAt:        encodeTimestamp(b.CreatedAt),
		UpdatedAt:        encodeTimestamp(b.UpdatedAt),
	}
}

func toTransactionResponse(t core.LoanTransaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		BankID:      t.BankID,
		Date:        t.Date.Format(wireDateLayout),
		Description: t.Description,
		Amount:      t.Amount.String(),
		AmountCents: t.Amount.Cents,
		Installment: t.Installment,
		CreatedAt:   encodeTimestamp(t.CreatedAt),
		UpdatedAt:   encodeTimestamp(t.UpdatedAt),
	}
}

func toPaymentResponse(p core.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		BankID:        p.BankID,
		TransactionID: p.TransactionID,
		Date:          p.Date.Format(wireDateLayout),
		Amount:        p.Amount.String(),
		AmountCents:   p.Amount.Cents,
		CreatedAt:     encodeTimestamp(p.CreatedAt),
		UpdatedAt:     encodeTimestamp(p.UpdatedAt),
	}
}

func toMonthlyReportResponse(r ledger.MonthlyReport) monthlyReportResponse {
	return monthlyReportResponse{
		Year:             r.Year,
		Month:            r.Month,
		TotalLoans:       r.TotalLoans.String(),
		TotalLoansCents:  r.TotalLoans.Cents,
		TotalPayments:    r.TotalPayments.String(),
		TotalPayCents:    r.TotalPayments.Cents,
		NetDebt:          r.NetDebt.String(),
		NetDebtCents:     r.NetDebt.Cents,
		TransactionCount: r.TransactionCount,
		PaymentCount:     r.PaymentCount,
	}
}

func toCategoryReportResponse(r ledger.CategoryReport) categoryReportResponse {
	return categoryReportResponse{
		Category:         string(r.Category),
		TotalLoans:       r.TotalLoans.String(),
		TotalLoansCents:  r.TotalLoans.Cents,
		TotalPayments:    r.TotalPayments.String(),
		TotalPayCents:    r.TotalPayments.Cents,
		Outstanding:      r.Outstanding.String(),
		OutstandingCents: r.Outstanding.Cents,
		TransactionCount: r.TransactionCount,
		PaymentCount:     r.PaymentCount,
	}
}

func toDueDateRowResponses(rows []ledger.DueDateRow) []dueDateRowResponse {
	out := make([]dueDateRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dueDateRowResponse{
			BankID:           r.BankID,
			BankName:         r.BankName,
			Category:         string(r.Category),
			DueDay:           r.DueDay,
			DaysUntilDue:     r.DaysUntilDue,
			Outstanding:      r.Outstanding.String(),
			OutstandingCents: r.Outstanding.Cents,
		})
	}
	return out
}
