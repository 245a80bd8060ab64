package services

import (
	"context"

	"financeiro/internal/core"
)

// Ports consumed by the services. The SQLite repository satisfies the store
// interfaces; the AMQP client satisfies EntryPublisher.
type (
	RecurringStore interface {
		CreateRecurringExpense(ctx context.Context, re core.RecurringExpense) (int64, error)
		GetRecurringExpense(ctx context.Context, id int64) (core.RecurringExpense, error)
		UpdateRecurringExpense(ctx context.Context, re core.RecurringExpense) error
		DeleteRecurringExpense(ctx context.Context, id int64) error
		ListRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error)
		ListDueRecurringExpenses(ctx context.Context, asOf core.Date) ([]core.RecurringExpense, error)
	}

	EntryStore interface {
		CreateLedgerEntry(ctx context.Context, e core.LedgerEntry) (int64, error)
		GetLedgerEntry(ctx context.Context, id int64) (core.LedgerEntry, error)
		ListLedgerEntries(ctx context.Context, f core.EntryFilter) ([]core.LedgerEntry, error)
		SettleLedgerEntry(ctx context.Context, e core.LedgerEntry) error
	}

	// EntryPublisher notifies the export pipeline about new entries.
	EntryPublisher interface {
		PublishEntrySync(ctx context.Context, id int64) error
	}
)
