package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"financeiro/internal/core"
	"financeiro/internal/schedule"
)

// Materializer turns due recurring expense templates into concrete pending
// ledger entries and advances their schedule. The API server never runs
// this; it lives in its own worker process so the request path keeps the
// original system's scheduling-metadata-only behavior.
type Materializer struct {
	recurring RecurringStore
	ledger    *Ledger
}

func NewMaterializer(recurring RecurringStore, ledger *Ledger) *Materializer {
	return &Materializer{recurring: recurring, ledger: ledger}
}

// ProcessDue materializes every active template whose next due date has
// arrived as of now. A failure on one template logs and moves on; the
// sweep is idempotent per template because the due date only advances
// after the entry is created.
func (m *Materializer) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if m.recurring == nil || m.ledger == nil {
		return 0, fmt.Errorf("materializer not properly initialized")
	}

	today := core.DateOf(now)
	due, err := m.recurring.ListDueRecurringExpenses(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list due recurring expenses: %w", err)
	}

	slog.InfoContext(ctx, "Materializing due recurring expenses",
		"due", len(due),
		"as_of", today.String())

	processed := 0
	for _, re := range due {
		entry, err := m.ledger.Create(ctx, CreateEntryParams{
			Type:        core.Expense,
			Description: re.Name,
			Category:    re.Category,
			Notes:       re.Description,
			Amount:      re.Amount,
			DueDate:     re.NextDueDate,
		})
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create entry from recurring template",
				"recurring_id", re.ID,
				"name", re.Name,
				"error", err)
			continue
		}

		re.NextDueDate = schedule.NextDue(re.Frequency, re.DueDay, now)
		if err := m.recurring.UpdateRecurringExpense(ctx, re); err != nil {
			// Entry exists but the schedule did not advance; the next
			// sweep will re-materialize. Surfaced loudly for that reason.
			slog.ErrorContext(ctx, "Failed to advance next due date after materializing",
				"recurring_id", re.ID,
				"entry_id", entry.ID,
				"error", err)
			continue
		}

		processed++
		slog.InfoContext(ctx, "Materialized recurring expense",
			"recurring_id", re.ID,
			"entry_id", entry.ID,
			"amount_cents", re.Amount.Cents,
			"frequency", re.Frequency,
			"next_due_date", re.NextDueDate.String())
	}

	slog.InfoContext(ctx, "Materialization sweep complete",
		"processed", processed,
		"total_due", len(due))

	return processed, nil
}
