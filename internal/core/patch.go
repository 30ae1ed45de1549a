package core

// Patch structs carry partial updates. A nil field leaves the existing value
// untouched.

type BankPatch struct {
	Name        *string
	CreditLimit *Money
	Category    *LoanCategory
	BillingDay  *int
	DueDay      *int
}

// Apply merges the patch onto an existing bank and returns the result. When
// the category moves away from credit-card and no billing day was supplied,
// the billing day is cleared rather than rejected.
func (p BankPatch) Apply(b Bank) Bank {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.CreditLimit != nil {
		b.CreditLimit = *p.CreditLimit
	}
	if p.Category != nil {
		if *p.Category != CreditCard && p.BillingDay == nil {
			b.BillingDay = nil
		}
		b.Category = *p.Category
	}
	if p.BillingDay != nil {
		day := *p.BillingDay
		b.BillingDay = &day
	}
	if p.DueDay != nil {
		b.DueDay = *p.DueDay
	}
	return b
}

type TransactionPatch struct {
	Date        *Date
	Description *string
	Amount      *Money
	Installment *bool
}

func (p TransactionPatch) Apply(t LoanTransaction) LoanTransaction {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Installment != nil {
		t.Installment = *p.Installment
	}
	return t
}

type PaymentPatch struct {
	BankID        *int64
	TransactionID *int64
	Date          *Date
	Amount        *Money
}

func (p PaymentPatch) Apply(pay Payment) Payment {
	if p.BankID != nil {
		pay.BankID = *p.BankID
	}
	if p.TransactionID != nil {
		pay.TransactionID = *p.TransactionID
	}
	if p.Date != nil {
		pay.Date = *p.Date
	}
	if p.Amount != nil {
		pay.Amount = *p.Amount
	}
	return pay
}
