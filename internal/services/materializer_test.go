package services

import (
	"context"
	"testing"
	"time"

	"financeiro/internal/core"
)

func TestMaterializerProcessDue(t *testing.T) {
	recurring := newFakeRecurringStore()
	entries := newFakeEntryStore()
	ledger := NewLedger(entries, nil)
	reg := NewRegistry(recurring, fixedClock(2024, 1, 1))

	day := 15
	due, err := reg.Create(context.Background(), CreateExpenseParams{
		Name:        "Aluguel",
		Description: "Sala comercial",
		Amount:      core.Money{Cents: 150000},
		Frequency:   core.Monthly,
		DueDay:      &day,
		Category:    "Moradia",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	notDue, err := reg.Create(context.Background(), CreateExpenseParams{
		Name:      "Seguro",
		Amount:    core.Money{Cents: 30000},
		Frequency: core.Yearly,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	m := NewMaterializer(recurring, ledger)

	// sweep as of Jan 20: Aluguel (due Jan 15) fires, Seguro (due 2025) doesn't
	now := time.Date(2024, 1, 20, 3, 0, 0, 0, time.UTC)
	count, err := m.ProcessDue(context.Background(), now)
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("ProcessDue() = %d, want 1", count)
	}

	got, _ := ledger.List(context.Background(), core.EntryFilter{})
	if len(got) != 1 {
		t.Fatalf("materialized %d entries, want 1", len(got))
	}
	e := got[0]
	if e.Type != core.Expense {
		t.Errorf("Type = %v, want expense", e.Type)
	}
	if e.Status != core.StatusPending {
		t.Errorf("Status = %v, want pending", e.Status)
	}
	if e.Description != "Aluguel" || e.Category != "Moradia" || e.Notes != "Sala comercial" {
		t.Errorf("entry fields not copied from template: %+v", e)
	}
	// entry keeps the template's due date, not the sweep date
	if e.DueDate.String() != "2024-01-15" {
		t.Errorf("DueDate = %s, want 2024-01-15", e.DueDate)
	}

	// the template's schedule advanced past the sweep date
	advanced, _ := recurring.GetRecurringExpense(context.Background(), due.ID)
	if advanced.NextDueDate.String() != "2024-02-15" {
		t.Errorf("NextDueDate = %s, want 2024-02-15", advanced.NextDueDate)
	}

	// the yearly template is untouched
	untouched, _ := recurring.GetRecurringExpense(context.Background(), notDue.ID)
	if untouched.NextDueDate.String() != "2025-01-01" {
		t.Errorf("yearly NextDueDate = %s, want 2025-01-01", untouched.NextDueDate)
	}

	// a second sweep at the same instant creates nothing new
	count, err = m.ProcessDue(context.Background(), now)
	if err != nil {
		t.Fatalf("ProcessDue() second sweep error = %v", err)
	}
	if count != 0 {
		t.Errorf("second sweep = %d, want 0", count)
	}
}

func TestMaterializerSkipsInactive(t *testing.T) {
	recurring := newFakeRecurringStore()
	ledger := NewLedger(newFakeEntryStore(), nil)
	reg := NewRegistry(recurring, fixedClock(2024, 1, 1))

	re, err := reg.Create(context.Background(), CreateExpenseParams{
		Name:      "Assinatura",
		Amount:    core.Money{Cents: 4990},
		Frequency: core.Monthly,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := reg.Deactivate(context.Background(), re.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	m := NewMaterializer(recurring, ledger)
	count, err := m.ProcessDue(context.Background(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	if count != 0 {
		t.Errorf("ProcessDue() = %d, want 0 for inactive template", count)
	}
}

func TestMaterializerNotInitialized(t *testing.T) {
	m := NewMaterializer(nil, nil)
	if _, err := m.ProcessDue(context.Background(), time.Now()); err == nil {
		t.Error("ProcessDue() expected error when not initialized")
	}
}
