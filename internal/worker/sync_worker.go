package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"custos/internal/amqp"
	"custos/internal/core"
	"custos/internal/sheets"
)

// EntrySource is the storage surface the worker needs: entry lookup plus the
// sync bookkeeping columns.
type EntrySource interface {
	GetEntry(ctx context.Context, id int64) (core.CostEntry, error)
	GetPendingSyncEntries(ctx context.Context, limit int) ([]core.CostEntry, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64, message string) error
}

// SyncWorker mirrors cost entries from SQLite to the backup sheet. Queue
// messages drive the normal path; the pending scan is the backup mechanism
// for messages lost while the worker was down.
type SyncWorker struct {
	storage   EntrySource
	writer    sheets.EntryWriter
	deleter   sheets.EntryDeleter
	batchSize int
}

func NewSyncWorker(storage EntrySource, writer sheets.EntryWriter, deleter sheets.EntryDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleMessage processes one queue message.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	switch msg.Kind {
	case amqp.KindEntryDelete:
		return w.handleDelete(ctx, msg.ID)
	default:
		return w.handleSync(ctx, msg.ID)
	}
}

func (w *SyncWorker) handleSync(ctx context.Context, id int64) error {
	entry, err := w.storage.GetEntry(ctx, id)
	if err != nil {
		var nferr *core.NotFoundError
		if errors.As(err, &nferr) {
			// Deleted between publish and delivery; the delete message follows
			slog.InfoContext(ctx, "Entry gone before sync, skipping", "id", id)
			return nil
		}
		return fmt.Errorf("get entry from storage: %w", err)
	}

	return w.syncEntryToSheets(ctx, entry)
}

func (w *SyncWorker) handleDelete(ctx context.Context, id int64) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "No entry deleter configured, skipping backup deletion", "id", id)
		return nil
	}

	if err := w.deleter.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("delete entry from backup sheet: %w", err)
	}

	slog.InfoContext(ctx, "Entry removed from backup sheet", "id", id)
	return nil
}

// ProcessPending mirrors entries that never made it to the sheet. Failures
// are marked and skipped so one bad entry cannot wedge the scan.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	return w.processPendingBatch(ctx, w.batchSize)
}

// StartupSyncCheck runs a larger catch-up pass at worker startup to recover
// from missed messages or downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPendingBatch(ctx, w.batchSize*5)
}

func (w *SyncWorker) processPendingBatch(ctx context.Context, limit int) error {
	pending, err := w.storage.GetPendingSyncEntries(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	synced := 0
	for _, entry := range pending {
		if err := w.syncEntryToSheets(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending entry", "id", entry.ID, "error", err)
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending scan completed",
		"total", len(pending),
		"synced", synced,
		"errors", len(pending)-synced)

	return nil
}

func (w *SyncWorker) syncEntryToSheets(ctx context.Context, entry core.CostEntry) error {
	ref, err := w.writer.Append(ctx, entry)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, entry.ID, err.Error()); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", entry.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, entry.ID); err != nil {
		// The sheet write went through; only the bookkeeping failed
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", entry.ID, "error", err)
	}

	slog.InfoContext(ctx, "Entry synced to backup sheet",
		"id", entry.ID,
		"sheets_ref", ref,
		"description", entry.Description,
		"amount_cents", entry.Amount.Cents)

	return nil
}
