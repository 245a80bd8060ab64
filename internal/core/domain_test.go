package core

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-03-01" {
		t.Fatalf("String() = %q, want %q", d.String(), "2024-03-01")
	}

	for _, bad := range []string{"", "01/03/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestDateOf(t *testing.T) {
	instant := time.Date(2024, 3, 1, 23, 45, 12, 0, time.UTC)
	d := DateOf(instant)
	if d.Hour() != 0 || d.Minute() != 0 || d.Second() != 0 {
		t.Fatalf("DateOf should truncate to midnight, got %v", d.Time)
	}
	if d.String() != "2024-03-01" {
		t.Fatalf("DateOf() = %q, want %q", d.String(), "2024-03-01")
	}
}

func TestFrequencyValid(t *testing.T) {
	for _, f := range []Frequency{Daily, Weekly, Biweekly, Monthly, Quarterly, Yearly} {
		if !f.Valid() {
			t.Fatalf("%q should be valid", f)
		}
	}
	for _, f := range []Frequency{"", "hourly", "MONTHLY"} {
		if f.Valid() {
			t.Fatalf("%q should be invalid", f)
		}
	}
}

func TestRecurringExpenseValidate(t *testing.T) {
	day := 15
	good := RecurringExpense{
		Name:      "Aluguel",
		Amount:    Money{Cents: 150000},
		Frequency: Monthly,
		DueDay:    &day,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := 0
	high := 32
	cases := []struct {
		name string
		re   RecurringExpense
		want error
	}{
		{"empty name", RecurringExpense{Name: "  ", Amount: Money{Cents: 1}, Frequency: Monthly}, ErrEmptyName},
		{"negative amount", RecurringExpense{Name: "a", Amount: Money{Cents: -1}, Frequency: Monthly}, ErrInvalidAmount},
		{"bad frequency", RecurringExpense{Name: "a", Amount: Money{Cents: 1}, Frequency: "sometimes"}, ErrInvalidFrequency},
		{"due day zero", RecurringExpense{Name: "a", Amount: Money{Cents: 1}, Frequency: Monthly, DueDay: &zero}, ErrInvalidDueDay},
		{"due day 32", RecurringExpense{Name: "a", Amount: Money{Cents: 1}, Frequency: Monthly, DueDay: &high}, ErrInvalidDueDay},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.re.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}

	// due day 31 is accepted even though some months are shorter
	d31 := 31
	good.DueDay = &d31
	if err := good.Validate(); err != nil {
		t.Fatalf("due day 31 expected ok, got %v", err)
	}
}

func TestLedgerEntryValidate(t *testing.T) {
	good := LedgerEntry{
		Type:        Expense,
		Status:      StatusPending,
		Description: "Conta de luz",
		Amount:      Money{Cents: 9900},
		DueDate:     NewDate(2024, 3, 10),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	paidDate := NewDate(2024, 3, 9)
	paidAmount := Money{Cents: 9900}

	cases := []struct {
		name string
		e    LedgerEntry
		want error
	}{
		{"bad type", LedgerEntry{Type: "transfer", Status: StatusPending, Description: "a", Amount: Money{Cents: 1}, DueDate: NewDate(2024, 1, 1)}, ErrInvalidType},
		{"bad status", LedgerEntry{Type: Expense, Status: "done", Description: "a", Amount: Money{Cents: 1}, DueDate: NewDate(2024, 1, 1)}, ErrInvalidStatus},
		{"empty description", LedgerEntry{Type: Expense, Status: StatusPending, Description: "", Amount: Money{Cents: 1}, DueDate: NewDate(2024, 1, 1)}, ErrEmptyDescription},
		{"zero due date", LedgerEntry{Type: Expense, Status: StatusPending, Description: "a", Amount: Money{Cents: 1}}, ErrInvalidDueDate},
		{"paid fields without paid status", LedgerEntry{Type: Expense, Status: StatusPending, Description: "a", Amount: Money{Cents: 1}, DueDate: NewDate(2024, 1, 1), PaidDate: &paidDate, PaidAmount: &paidAmount}, ErrPaidFields},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.e.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}

	// paid fields with paid status are fine
	good.Status = StatusPaid
	good.PaidDate = &paidDate
	good.PaidAmount = &paidAmount
	if err := good.Validate(); err != nil {
		t.Fatalf("paid entry expected ok, got %v", err)
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"direct", NewError(KindNotFound, errors.New("x")), KindNotFound},
		{"wrapped", fmt.Errorf("create: %w", NewError(KindValidation, ErrInvalidAmount)), KindValidation},
		{"plain error defaults to storage", errors.New("boom"), KindStorage},
		{"nil defaults to storage", nil, KindStorage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("KindOf() = %v, want %v", got, tc.want)
			}
		})
	}
}
