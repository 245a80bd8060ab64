// Package services holds the business operations on recurring expense
// templates and ledger entries.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"financeiro/internal/core"
	"financeiro/internal/schedule"
)

// Registry owns the set of recurring expense definitions. It stamps the
// next-due projection on creation and refreshes it on the one update shape
// that the original system refreshed it for (see Update).
type Registry struct {
	store RecurringStore
	now   func() time.Time
}

func NewRegistry(store RecurringStore, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{store: store, now: now}
}

type CreateExpenseParams struct {
	Name        string
	Description string
	Amount      core.Money
	Frequency   core.Frequency
	DueDay      *int
	Category    string
}

func (r *Registry) Create(ctx context.Context, p CreateExpenseParams) (core.RecurringExpense, error) {
	re := core.RecurringExpense{
		Name:        p.Name,
		Description: p.Description,
		Amount:      p.Amount,
		Frequency:   p.Frequency,
		DueDay:      p.DueDay,
		Category:    p.Category,
		Active:      true,
	}
	if err := re.Validate(); err != nil {
		return core.RecurringExpense{}, core.NewError(core.KindValidation, err)
	}

	re.NextDueDate = schedule.NextDue(re.Frequency, re.DueDay, r.now())

	id, err := r.store.CreateRecurringExpense(ctx, re)
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("create recurring expense: %w", err)
	}
	re.ID = id
	return re, nil
}

// UpdateExpenseParams applies partial updates; nil fields are untouched.
type UpdateExpenseParams struct {
	Name        *string
	Description *string
	Amount      *core.Money
	Frequency   *core.Frequency
	DueDay      *int
	Category    *string
	Active      *bool
}

// Update merges the given fields into the stored expense.
//
// Compatibility contract: next_due_date is recomputed only when the
// resulting frequency is monthly AND the payload carries a due day. Any
// other combination, including a frequency change on its own, leaves the
// stored projection untouched. Counterintuitive, but changing it would
// change observable behavior for existing callers.
func (r *Registry) Update(ctx context.Context, id int64, p UpdateExpenseParams) (core.RecurringExpense, error) {
	re, err := r.store.GetRecurringExpense(ctx, id)
	if err != nil {
		return core.RecurringExpense{}, err
	}

	if p.Name != nil {
		re.Name = *p.Name
	}
	if p.Description != nil {
		re.Description = *p.Description
	}
	if p.Amount != nil {
		re.Amount = *p.Amount
	}
	if p.Frequency != nil {
		re.Frequency = *p.Frequency
	}
	if p.DueDay != nil {
		re.DueDay = p.DueDay
	}
	if p.Category != nil {
		re.Category = *p.Category
	}
	if p.Active != nil {
		re.Active = *p.Active
	}

	if err := re.Validate(); err != nil {
		return core.RecurringExpense{}, core.NewError(core.KindValidation, err)
	}

	if re.Frequency == core.Monthly && p.DueDay != nil {
		re.NextDueDate = schedule.NextDue(re.Frequency, re.DueDay, r.now())
		slog.InfoContext(ctx, "Recomputed next due date on update",
			"id", id, "next_due_date", re.NextDueDate.String())
	}

	if err := r.store.UpdateRecurringExpense(ctx, re); err != nil {
		return core.RecurringExpense{}, fmt.Errorf("update recurring expense: %w", err)
	}
	return re, nil
}

// Deactivate flips the template off without removing it.
func (r *Registry) Deactivate(ctx context.Context, id int64) error {
	inactive := false
	_, err := r.Update(ctx, id, UpdateExpenseParams{Active: &inactive})
	return err
}

// Delete removes the template outright. No dependent records exist to
// protect; entries never reference the template that produced them.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	return r.store.DeleteRecurringExpense(ctx, id)
}

func (r *Registry) Get(ctx context.Context, id int64) (core.RecurringExpense, error) {
	return r.store.GetRecurringExpense(ctx, id)
}

// List returns all templates. Order is unspecified.
func (r *Registry) List(ctx context.Context) ([]core.RecurringExpense, error) {
	return r.store.ListRecurringExpenses(ctx)
}
