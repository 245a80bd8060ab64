package services

import (
	"context"
	"fmt"
	"log/slog"

	"financeiro/internal/core"
)

// Ledger manages ad hoc financial entries independent of the recurring
// schedule. It saves entries locally first and publishes export messages
// best effort, never failing a request over a publish error.
type Ledger struct {
	store     EntryStore
	publisher EntryPublisher
}

func NewLedger(store EntryStore, publisher EntryPublisher) *Ledger {
	return &Ledger{store: store, publisher: publisher}
}

type CreateEntryParams struct {
	Type        core.EntryType
	Status      core.EntryStatus // defaults to pending when empty
	Description string
	Category    string
	Notes       string
	Amount      core.Money
	DueDate     core.Date
	PaidDate    *core.Date
	PaidAmount  *core.Money
}

func (l *Ledger) Create(ctx context.Context, p CreateEntryParams) (core.LedgerEntry, error) {
	status := p.Status
	if status == "" {
		status = core.StatusPending
	}
	e := core.LedgerEntry{
		Type:        p.Type,
		Status:      status,
		Description: p.Description,
		Category:    p.Category,
		Notes:       p.Notes,
		Amount:      p.Amount,
		DueDate:     p.DueDate,
		PaidDate:    p.PaidDate,
		PaidAmount:  p.PaidAmount,
	}
	if err := e.Validate(); err != nil {
		return core.LedgerEntry{}, core.NewError(core.KindValidation, err)
	}

	id, err := l.store.CreateLedgerEntry(ctx, e)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("create ledger entry: %w", err)
	}
	e.ID = id

	l.publishSync(ctx, id)
	return e, nil
}

// List returns entries matching the filter. Filters combine with AND; a
// nil field means no restriction.
func (l *Ledger) List(ctx context.Context, f core.EntryFilter) ([]core.LedgerEntry, error) {
	return l.store.ListLedgerEntries(ctx, f)
}

func (l *Ledger) Get(ctx context.Context, id int64) (core.LedgerEntry, error) {
	return l.store.GetLedgerEntry(ctx, id)
}

type SettleEntryParams struct {
	Status     core.EntryStatus
	PaidDate   *core.Date
	PaidAmount *core.Money
}

// Settle transitions the payment state of an entry. Paid date and amount
// are accepted only together with the paid status.
func (l *Ledger) Settle(ctx context.Context, id int64, p SettleEntryParams) (core.LedgerEntry, error) {
	e, err := l.store.GetLedgerEntry(ctx, id)
	if err != nil {
		return core.LedgerEntry{}, err
	}

	e.Status = p.Status
	e.PaidDate = p.PaidDate
	e.PaidAmount = p.PaidAmount
	if e.Status == core.StatusPaid && e.PaidAmount == nil {
		e.PaidAmount = &e.Amount
	}
	if err := e.Validate(); err != nil {
		return core.LedgerEntry{}, core.NewError(core.KindValidation, err)
	}

	if err := l.store.SettleLedgerEntry(ctx, e); err != nil {
		return core.LedgerEntry{}, fmt.Errorf("settle ledger entry: %w", err)
	}

	slog.InfoContext(ctx, "Ledger entry settled", "id", id, "status", e.Status)
	return e, nil
}

func (l *Ledger) publishSync(ctx context.Context, id int64) {
	if l.publisher == nil {
		slog.WarnContext(ctx, "Entry publisher not available, skipping sync message", "id", id)
		return
	}
	if err := l.publisher.PublishEntrySync(ctx, id); err != nil {
		// Entry is saved locally; export falls back to the periodic poll
		slog.ErrorContext(ctx, "Failed to publish entry sync message", "id", id, "error", err)
	}
}
