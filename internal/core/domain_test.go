package core

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want LoanCategory
		ok   bool
	}{
		{"credit_card", CreditCard, true},
		{"pay_later", PayLater, true},
		{"personal_loan", PersonalLoan, true},
		{"micro_loan", MicroLoan, true},
		{" credit_card ", CreditCard, true},
		{"mortgage", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d: got (%q, %v), want %q", i, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d: expected error for %q", i, tc.in)
		}
	}
}

func TestBankValidate(t *testing.T) {
	good := Bank{
		Name:        "Visa Card",
		CreditLimit: Money{Cents: 500_000},
		Category:    CreditCard,
		BillingDay:  intPtr(15),
		DueDay:      25,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Bank{
		{Name: "", CreditLimit: Money{Cents: 1}, Category: PayLater, DueDay: 5},
		{Name: "a", CreditLimit: Money{Cents: 0}, Category: PayLater, DueDay: 5},
		{Name: "a", CreditLimit: Money{Cents: 1}, Category: "savings", DueDay: 5},
		{Name: "a", CreditLimit: Money{Cents: 1}, Category: PayLater, DueDay: 0},
		{Name: "a", CreditLimit: Money{Cents: 1}, Category: PayLater, DueDay: 32},
		{Name: "a", CreditLimit: Money{Cents: 1}, Category: CreditCard, BillingDay: intPtr(0), DueDay: 5},
		{Name: "a", CreditLimit: Money{Cents: 1}, Category: CreditCard, BillingDay: intPtr(40), DueDay: 5},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestLoanTransactionValidate(t *testing.T) {
	good := LoanTransaction{
		BankID:      1,
		Date:        NewDate(2024, 1, 10),
		Description: "groceries",
		Amount:      Money{Cents: 150_000},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []LoanTransaction{
		{BankID: 0, Date: NewDate(2024, 1, 10), Description: "a", Amount: Money{Cents: 1}},
		{BankID: 1, Date: Date{Time: time.Time{}}, Description: "a", Amount: Money{Cents: 1}},
		{BankID: 1, Date: NewDate(2024, 1, 10), Description: "", Amount: Money{Cents: 1}},
		{BankID: 1, Date: NewDate(2024, 1, 10), Description: "a", Amount: Money{Cents: 0}},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestPaymentValidate(t *testing.T) {
	good := Payment{BankID: 1, TransactionID: 2, Date: NewDate(2024, 2, 5), Amount: Money{Cents: 50_000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Payment{
		{BankID: 0, TransactionID: 2, Date: NewDate(2024, 2, 5), Amount: Money{Cents: 1}},
		{BankID: 1, TransactionID: 0, Date: NewDate(2024, 2, 5), Amount: Money{Cents: 1}},
		{BankID: 1, TransactionID: 2, Date: Date{}, Amount: Money{Cents: 1}},
		{BankID: 1, TransactionID: 2, Date: NewDate(2024, 2, 5), Amount: Money{Cents: -5}},
	}
	for i, p := range bads {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBankPatchApply(t *testing.T) {
	base := Bank{
		Name:        "Visa",
		CreditLimit: Money{Cents: 100_000},
		Category:    CreditCard,
		BillingDay:  intPtr(15),
		DueDay:      25,
	}

	t.Run("untouched fields survive", func(t *testing.T) {
		got := BankPatch{Name: strPtr("Visa Gold")}.Apply(base)
		if got.Name != "Visa Gold" || got.CreditLimit.Cents != 100_000 || got.BillingDay == nil || *got.BillingDay != 15 {
			t.Fatalf("unexpected merge result: %+v", got)
		}
	})

	t.Run("category change away from credit card clears billing day", func(t *testing.T) {
		cat := PayLater
		got := BankPatch{Category: &cat}.Apply(base)
		if got.Category != PayLater {
			t.Fatalf("category not applied: %+v", got)
		}
		if got.BillingDay != nil {
			t.Fatalf("billing day should be cleared, got %d", *got.BillingDay)
		}
	})

	t.Run("explicit billing day with category change is preserved for validation", func(t *testing.T) {
		cat := PayLater
		got := BankPatch{Category: &cat, BillingDay: intPtr(10)}.Apply(base)
		if got.BillingDay == nil || *got.BillingDay != 10 {
			t.Fatalf("explicit billing day lost: %+v", got)
		}
	})
}

func strPtr(s string) *string { return &s }
