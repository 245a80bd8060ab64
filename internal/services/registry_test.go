package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"financeiro/internal/core"
)

// fakeRecurringStore is an in-memory RecurringStore for tests.
type fakeRecurringStore struct {
	expenses map[int64]core.RecurringExpense
	nextID   int64

	createErr error
	updateErr error
}

func newFakeRecurringStore() *fakeRecurringStore {
	return &fakeRecurringStore{expenses: make(map[int64]core.RecurringExpense)}
}

func (s *fakeRecurringStore) CreateRecurringExpense(_ context.Context, re core.RecurringExpense) (int64, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	s.nextID++
	re.ID = s.nextID
	s.expenses[re.ID] = re
	return re.ID, nil
}

func (s *fakeRecurringStore) GetRecurringExpense(_ context.Context, id int64) (core.RecurringExpense, error) {
	re, ok := s.expenses[id]
	if !ok {
		return core.RecurringExpense{}, core.NewError(core.KindNotFound, errors.New("recurring expense not found"))
	}
	return re, nil
}

func (s *fakeRecurringStore) UpdateRecurringExpense(_ context.Context, re core.RecurringExpense) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.expenses[re.ID]; !ok {
		return core.NewError(core.KindNotFound, errors.New("recurring expense not found"))
	}
	s.expenses[re.ID] = re
	return nil
}

func (s *fakeRecurringStore) DeleteRecurringExpense(_ context.Context, id int64) error {
	if _, ok := s.expenses[id]; !ok {
		return core.NewError(core.KindNotFound, errors.New("recurring expense not found"))
	}
	delete(s.expenses, id)
	return nil
}

func (s *fakeRecurringStore) ListRecurringExpenses(_ context.Context) ([]core.RecurringExpense, error) {
	out := make([]core.RecurringExpense, 0, len(s.expenses))
	for _, re := range s.expenses {
		out = append(out, re)
	}
	return out, nil
}

func (s *fakeRecurringStore) ListDueRecurringExpenses(_ context.Context, asOf core.Date) ([]core.RecurringExpense, error) {
	var out []core.RecurringExpense
	for _, re := range s.expenses {
		if re.Active && !re.NextDueDate.After(asOf.Time) {
			out = append(out, re)
		}
	}
	return out, nil
}

func fixedClock(y, m, d int) func() time.Time {
	return func() time.Time {
		return time.Date(y, time.Month(m), d, 10, 0, 0, 0, time.UTC)
	}
}

func TestRegistryCreateStampsNextDueDate(t *testing.T) {
	store := newFakeRecurringStore()
	reg := NewRegistry(store, fixedClock(2024, 1, 20))

	day := 15
	re, err := reg.Create(context.Background(), CreateExpenseParams{
		Name:      "Aluguel",
		Amount:    core.Money{Cents: 150000},
		Frequency: core.Monthly,
		DueDay:    &day,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if re.ID == 0 {
		t.Error("Create() should assign an id")
	}
	if !re.Active {
		t.Error("Create() should mark the template active")
	}
	// anchor day 15 already passed on Jan 20, so it rolls to February
	if got := re.NextDueDate.String(); got != "2024-02-15" {
		t.Errorf("NextDueDate = %s, want 2024-02-15", got)
	}
}

func TestRegistryCreateValidation(t *testing.T) {
	store := newFakeRecurringStore()
	reg := NewRegistry(store, fixedClock(2024, 1, 20))

	_, err := reg.Create(context.Background(), CreateExpenseParams{
		Name:      "",
		Amount:    core.Money{Cents: 100},
		Frequency: core.Monthly,
	})
	if err == nil {
		t.Fatal("Create() expected validation error")
	}
	if kind := core.KindOf(err); kind != core.KindValidation {
		t.Errorf("KindOf() = %v, want %v", kind, core.KindValidation)
	}
	if len(store.expenses) != 0 {
		t.Error("invalid template should not be stored")
	}
}

func TestRegistryUpdateRecomputesOnlyWithDueDay(t *testing.T) {
	store := newFakeRecurringStore()
	reg := NewRegistry(store, fixedClock(2024, 1, 20))

	day := 15
	re, err := reg.Create(context.Background(), CreateExpenseParams{
		Name:      "Internet",
		Amount:    core.Money{Cents: 9900},
		Frequency: core.Monthly,
		DueDay:    &day,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	stamped := re.NextDueDate.String()

	// amount-only update leaves the projection untouched
	amount := core.Money{Cents: 12900}
	re2, err := reg.Update(context.Background(), re.ID, UpdateExpenseParams{Amount: &amount})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if re2.NextDueDate.String() != stamped {
		t.Errorf("amount update changed NextDueDate to %s, want %s untouched", re2.NextDueDate, stamped)
	}

	// frequency-only change also leaves it untouched
	weekly := core.Weekly
	re3, err := reg.Update(context.Background(), re.ID, UpdateExpenseParams{Frequency: &weekly})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if re3.NextDueDate.String() != stamped {
		t.Errorf("frequency update changed NextDueDate to %s, want %s untouched", re3.NextDueDate, stamped)
	}

	// monthly + due day in the payload recomputes
	monthly := core.Monthly
	newDay := 25
	re4, err := reg.Update(context.Background(), re.ID, UpdateExpenseParams{Frequency: &monthly, DueDay: &newDay})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got := re4.NextDueDate.String(); got != "2024-01-25" {
		t.Errorf("NextDueDate = %s, want 2024-01-25", got)
	}
}

func TestRegistryUpdateNotFound(t *testing.T) {
	store := newFakeRecurringStore()
	reg := NewRegistry(store, nil)

	name := "x"
	_, err := reg.Update(context.Background(), 42, UpdateExpenseParams{Name: &name})
	if err == nil {
		t.Fatal("Update() expected error for missing id")
	}
	if kind := core.KindOf(err); kind != core.KindNotFound {
		t.Errorf("KindOf() = %v, want %v", kind, core.KindNotFound)
	}
}

func TestRegistryDeactivate(t *testing.T) {
	store := newFakeRecurringStore()
	reg := NewRegistry(store, fixedClock(2024, 1, 20))

	re, err := reg.Create(context.Background(), CreateExpenseParams{
		Name:      "Academia",
		Amount:    core.Money{Cents: 8000},
		Frequency: core.Monthly,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := reg.Deactivate(context.Background(), re.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	got, err := reg.Get(context.Background(), re.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Active {
		t.Error("Deactivate() should leave the template inactive")
	}
}

func TestRegistryDelete(t *testing.T) {
	store := newFakeRecurringStore()
	reg := NewRegistry(store, fixedClock(2024, 1, 20))

	re, err := reg.Create(context.Background(), CreateExpenseParams{
		Name:      "Seguro",
		Amount:    core.Money{Cents: 30000},
		Frequency: core.Yearly,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := reg.Delete(context.Background(), re.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := reg.Get(context.Background(), re.ID); core.KindOf(err) != core.KindNotFound {
		t.Errorf("Get() after delete = %v, want not found", err)
	}
}
