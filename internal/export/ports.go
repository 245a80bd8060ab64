package export

import (
	"context"

	"financeiro/internal/core"
)

// Ports for outbound bookkeeping adapters.
type (
	// EntryWriter appends a settled or pending ledger entry to the
	// external bookkeeping sheet and returns a reference to the row.
	EntryWriter interface {
		Append(ctx context.Context, e core.LedgerEntry) (rowRef string, err error)
	}
)
