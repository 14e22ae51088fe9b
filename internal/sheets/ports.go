package sheets

import (
	"context"

	"custos/internal/core"
)

// Ports for outbound adapters.
type (
	// EntryWriter mirrors a cost entry to the backup sheet. Writing the same
	// ID twice replaces the earlier row, so re-syncs are idempotent.
	EntryWriter interface {
		Append(ctx context.Context, e core.CostEntry) (rowRef string, err error)
	}

	// EntryDeleter removes a mirrored entry. Deleting an ID that was never
	// mirrored is not an error.
	EntryDeleter interface {
		DeleteEntry(ctx context.Context, id int64) error
	}
)
