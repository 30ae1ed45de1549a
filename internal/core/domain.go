package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	CreditCard   LoanCategory = "credit_card"
	PayLater     LoanCategory = "pay_later"
	PersonalLoan LoanCategory = "personal_loan"
	MicroLoan    LoanCategory = "micro_loan"
)

// Categories lists every loan category in report order.
var Categories = []LoanCategory{CreditCard, PayLater, PersonalLoan, MicroLoan}

type (
	LoanCategory string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Bank struct {
		ID          int64
		Name        string
		CreditLimit Money
		Category    LoanCategory
		// BillingDay is the statement print day. Set only for credit-card banks.
		BillingDay *int
		DueDay     int
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	LoanTransaction struct {
		ID          int64
		BankID      int64
		Date        Date
		Description string
		Amount      Money
		Installment bool
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Payment struct {
		ID            int64
		BankID        int64
		TransactionID int64
		Date          Date
		Amount        Money
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}
)

var (
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyName          = errors.New("empty bank name")
	ErrNameTooLong        = errors.New("bank name too long (max 100 characters)")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrUnknownCategory    = errors.New("unknown loan category")
	ErrMissingDate        = errors.New("missing date")
	ErrMissingReference   = errors.New("missing reference")
)

// ParseCategory maps a wire string to a LoanCategory.
func ParseCategory(s string) (LoanCategory, error) {
	c := LoanCategory(strings.TrimSpace(s))
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

func (c LoanCategory) Valid() bool {
	switch c {
	case CreditCard, PayLater, PersonalLoan, MicroLoan:
		return true
	}
	return false
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b Bank) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if len(b.Name) > 100 {
		return ErrNameTooLong
	}
	if err := b.CreditLimit.Validate(); err != nil {
		return fmt.Errorf("invalid credit limit: %w", err)
	}
	if !b.Category.Valid() {
		return ErrUnknownCategory
	}
	if b.DueDay < 1 || b.DueDay > 31 {
		return ErrInvalidDay
	}
	if b.BillingDay != nil && (*b.BillingDay < 1 || *b.BillingDay > 31) {
		return ErrInvalidDay
	}
	return nil
}

func (t LoanTransaction) Validate() error {
	if t.BankID <= 0 {
		return fmt.Errorf("%w: bank", ErrMissingReference)
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return t.Amount.Validate()
}

func (p Payment) Validate() error {
	if p.BankID <= 0 {
		return fmt.Errorf("%w: bank", ErrMissingReference)
	}
	if p.TransactionID <= 0 {
		return fmt.Errorf("%w: transaction", ErrMissingReference)
	}
	if err := p.Date.Validate(); err != nil {
		return err
	}
	return p.Amount.Validate()
}
