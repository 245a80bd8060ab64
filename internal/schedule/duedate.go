// Package schedule computes when a recurring expense is next due.
//
// Each frequency has its own rule registered in a package-level map, the
// same way dueness checking is organized elsewhere in the codebase: one
// small type per frequency, O(1) lookup, extensible without modification.
//
// Everything here is pure. The reference instant is always an explicit
// argument; no rule reads the wall clock.
package schedule

import (
	"time"

	"financeiro/internal/core"
)

// Rule computes the next due date for one frequency. today is the calendar
// date of the reference instant, already normalized to midnight UTC.
type Rule interface {
	NextDue(today core.Date, dueDay *int) core.Date
}

type fixedStep struct {
	days   int
	months int
	years  int
}

func (r fixedStep) NextDue(today core.Date, _ *int) core.Date {
	return core.Date{Time: today.AddDate(r.years, r.months, r.days)}
}

type monthlyRule struct{}

// NextDue anchors to dueDay in the current month, rolling to the same day
// next month when the anchor has already passed or is today. Without an
// anchor the date simply advances one month.
//
// When dueDay exceeds the days in the target month, time.Date normalizes
// the overflow into the following month (31 applied to February lands in
// early March). The original system's date utility behaves the same way,
// so the overflow is kept rather than clamped.
func (monthlyRule) NextDue(today core.Date, dueDay *int) core.Date {
	if dueDay == nil {
		return core.Date{Time: today.AddDate(0, 1, 0)}
	}
	candidate := core.NewDate(today.Year(), int(today.Month()), *dueDay)
	if !candidate.After(today.Time) {
		candidate = core.NewDate(today.Year(), int(today.Month())+1, *dueDay)
	}
	return candidate
}

var rules = map[core.Frequency]Rule{
	core.Daily:     fixedStep{days: 1},
	core.Weekly:    fixedStep{days: 7},
	core.Biweekly:  fixedStep{days: 14},
	core.Monthly:   monthlyRule{},
	core.Quarterly: fixedStep{months: 3},
	core.Yearly:    fixedStep{years: 1},
}

// Register adds or replaces the rule for a frequency.
func Register(freq core.Frequency, rule Rule) {
	rules[freq] = rule
}

// NextDue returns the next due date for the given frequency and optional
// day-of-month anchor, relative to now. An unrecognized frequency returns
// now's date unchanged, a no-advance fallback the callers rely on.
func NextDue(freq core.Frequency, dueDay *int, now time.Time) core.Date {
	today := core.DateOf(now)
	rule, ok := rules[freq]
	if !ok {
		return today
	}
	return rule.NextDue(today, dueDay)
}
