package worker

import (
	"context"
	"fmt"
	"log/slog"

	"financeiro/internal/amqp"
	"financeiro/internal/export"
	"financeiro/internal/storage"
)

// ExportWorker pushes ledger entries from SQLite to the bookkeeping sheet.
// It consumes AMQP sync messages and also polls for entries whose message
// never arrived.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	writer    export.EntryWriter
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, writer export.EntryWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single entry sync message from AMQP
func (w *ExportWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing entry sync message", "id", msg.ID)

	if err := w.exportEntry(ctx, msg.ID); err != nil {
		return fmt.Errorf("export entry %d: %w", msg.ID, err)
	}
	return nil
}

// ProcessPendingEntries exports any entries that haven't been exported yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPendingEntries(ctx context.Context) error {
	ids, err := w.storage.ListUnexportedEntryIDs(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unexported entries: %w", err)
	}

	if len(ids) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(ids))

	for _, id := range ids {
		if err := w.exportEntry(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to export entry", "id", id, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck exports a larger backlog of pending entries at worker startup.
// Useful to recover from missed AMQP messages or worker downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	ids, err := w.storage.ListUnexportedEntryIDs(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list unexported entries for startup check: %w", err)
	}

	if len(ids) == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending entries on startup, processing...",
		"count", len(ids))

	successCount := 0
	errorCount := 0

	for _, id := range ids {
		if err := w.exportEntry(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to export entry during startup",
				"id", id, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(ids),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

func (w *ExportWorker) exportEntry(ctx context.Context, id int64) error {
	entry, err := w.storage.GetLedgerEntry(ctx, id)
	if err != nil {
		if markErr := w.storage.MarkEntryExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("get entry from storage: %w", err)
	}

	ref, err := w.writer.Append(ctx, entry)
	if err != nil {
		if markErr := w.storage.MarkEntryExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append entry to sheet: %w", err)
	}

	if err := w.storage.MarkEntryExported(ctx, id); err != nil {
		return fmt.Errorf("mark entry exported: %w", err)
	}

	slog.InfoContext(ctx, "Entry exported to bookkeeping sheet",
		"id", id, "sheets_ref", ref)

	return nil
}
