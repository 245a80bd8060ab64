package schedule

import (
	"testing"
	"time"

	"financeiro/internal/core"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 12, 0, 0, 0, time.UTC)
}

func TestNextDueFixedSteps(t *testing.T) {
	now := day(2024, 3, 1)

	tests := []struct {
		name string
		freq core.Frequency
		want string
	}{
		{"daily", core.Daily, "2024-03-02"},
		{"weekly", core.Weekly, "2024-03-08"},
		{"biweekly", core.Biweekly, "2024-03-15"},
		{"quarterly", core.Quarterly, "2024-06-01"},
		{"yearly", core.Yearly, "2025-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDue(tt.freq, nil, now)
			if got.String() != tt.want {
				t.Errorf("NextDue(%s) = %s, want %s", tt.freq, got, tt.want)
			}
		})
	}
}

func TestNextDueMonthlyAnchor(t *testing.T) {
	d15 := 15
	d31 := 31
	d20 := 20

	tests := []struct {
		name   string
		now    time.Time
		dueDay *int
		want   string
	}{
		{"anchor ahead stays in month", day(2024, 1, 10), &d15, "2024-01-15"},
		{"anchor passed rolls to next month", day(2024, 1, 20), &d15, "2024-02-15"},
		{"anchor today rolls to next month", day(2024, 1, 15), &d15, "2024-02-15"},
		{"no anchor advances one month", day(2024, 1, 20), nil, "2024-02-20"},
		// day 31 applied to a 30-day month overflows into the next one
		{"day 31 in april overflows to may 1", day(2024, 4, 1), &d31, "2024-05-01"},
		// day 31 applied to February 2024 (29 days) lands on March 2
		{"day 31 in february overflows to march", day(2024, 2, 1), &d31, "2024-03-02"},
		{"anchor passed at end of year wraps", day(2024, 12, 25), &d20, "2025-01-20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDue(core.Monthly, tt.dueDay, tt.now)
			if got.String() != tt.want {
				t.Errorf("NextDue(monthly, %v) = %s, want %s", tt.dueDay, got, tt.want)
			}
		})
	}
}

func TestNextDueIgnoresDueDayForNonMonthly(t *testing.T) {
	now := day(2024, 3, 1)
	d15 := 15

	for _, freq := range []core.Frequency{core.Daily, core.Weekly, core.Biweekly, core.Quarterly, core.Yearly} {
		with := NextDue(freq, &d15, now)
		without := NextDue(freq, nil, now)
		if with.String() != without.String() {
			t.Errorf("NextDue(%s) with dueDay = %s, without = %s; should be equal", freq, with, without)
		}
	}
}

func TestNextDueUnknownFrequency(t *testing.T) {
	now := day(2024, 3, 1)
	got := NextDue("sometimes", nil, now)
	if got.String() != "2024-03-01" {
		t.Errorf("NextDue(unknown) = %s, want today unchanged", got)
	}
}

func TestNextDueDeterministic(t *testing.T) {
	now := day(2024, 7, 14)
	d10 := 10
	first := NextDue(core.Monthly, &d10, now)
	for i := 0; i < 5; i++ {
		if got := NextDue(core.Monthly, &d10, now); got.String() != first.String() {
			t.Fatalf("NextDue not deterministic: %s vs %s", got, first)
		}
	}
}

func TestNextDueNormalizesToMidnightUTC(t *testing.T) {
	now := time.Date(2024, 3, 1, 23, 59, 59, 0, time.FixedZone("X", -3*3600))
	got := NextDue(core.Daily, nil, now)
	if got.Hour() != 0 || got.Minute() != 0 {
		t.Errorf("NextDue should return midnight, got %v", got.Time)
	}
}
