package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

const (
	StatusPending   EntryStatus = "pending"
	StatusPaid      EntryStatus = "paid"
	StatusCancelled EntryStatus = "cancelled"
)

type (
	Frequency   string
	EntryType   string
	EntryStatus string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// RecurringExpense is a template for a periodically incurred cost.
	// NextDueDate is a cached projection computed by the scheduler, never
	// supplied by callers.
	RecurringExpense struct {
		ID          int64
		Name        string
		Description string
		Amount      Money
		Frequency   Frequency
		DueDay      *int // anchor day-of-month, meaningful only for Monthly
		Category    string
		NextDueDate Date
		Active      bool
	}

	// LedgerEntry is a standalone income or expense record with its own
	// due date and payment status, independent of any recurring template.
	LedgerEntry struct {
		ID          int64
		Type        EntryType
		Status      EntryStatus
		Description string
		Category    string
		Notes       string
		Amount      Money
		DueDate     Date
		PaidDate    *Date
		PaidAmount  *Money
	}

	// EntryFilter restricts ledger listings; nil fields mean no
	// restriction on that field, both given means AND.
	EntryFilter struct {
		Type   *EntryType
		Status *EntryStatus
	}

	// Summary holds aggregate totals over a period window.
	Summary struct {
		Year         int // 0 means all time
		Month        int // 0 means whole year
		TotalIncome  Money
		TotalExpense Money
		Balance      Money
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidDueDay    = errors.New("due day out of range")
	ErrInvalidDueDate   = errors.New("invalid due date")
	ErrInvalidType      = errors.New("invalid entry type")
	ErrInvalidStatus    = errors.New("invalid entry status")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
	ErrPaidFields       = errors.New("paid date and amount require paid status")
)

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// IsEmpty reports whether the date is unset (optional dates).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

func (t EntryType) Valid() bool {
	return t == Income || t == Expense
}

func (s EntryStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (re RecurringExpense) Validate() error {
	if len(strings.TrimSpace(re.Name)) == 0 {
		return ErrEmptyName
	}
	if len(re.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := re.Amount.Validate(); err != nil {
		return err
	}
	if !re.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if re.DueDay != nil && (*re.DueDay < 1 || *re.DueDay > 31) {
		return ErrInvalidDueDay
	}
	return nil
}

func (e LedgerEntry) Validate() error {
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	if !e.Status.Valid() {
		return ErrInvalidStatus
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.DueDate.IsZero() {
		return ErrInvalidDueDate
	}
	if (e.PaidDate != nil || e.PaidAmount != nil) && e.Status != StatusPaid {
		return ErrPaidFields
	}
	return nil
}
