package services

import (
	"context"
	"fmt"
	"log/slog"

	"custos/internal/core"
	"custos/internal/ledger"
)

// Publisher sends entry change notifications to the sync queue.
type Publisher interface {
	PublishEntrySync(ctx context.Context, id int64, revision uint64) error
	PublishEntryDelete(ctx context.Context, id int64, revision uint64) error
}

// LedgerService orchestrates store mutations with sync-queue publishing. The
// store (and its SQLite snapshot) is the source of truth; publishing failures
// are logged and never fail the request, the worker's pending scan catches up
// later.
type LedgerService struct {
	store     *ledger.Store
	publisher Publisher
}

func NewLedgerService(store *ledger.Store, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// Store exposes the underlying store for the read side.
func (s *LedgerService) Store() *ledger.Store {
	return s.store
}

// CreateEntry validates and stores a new entry, then notifies the sync queue.
func (s *LedgerService) CreateEntry(ctx context.Context, draft core.CostEntry) (core.CostEntry, error) {
	created, err := s.store.Create(ctx, draft)
	if err != nil {
		return core.CostEntry{}, err
	}

	s.publishSync(ctx, created.ID)
	return created, nil
}

// UpdateEntry replaces an entry and notifies the sync queue.
func (s *LedgerService) UpdateEntry(ctx context.Context, id int64, draft core.CostEntry) (core.CostEntry, error) {
	updated, err := s.store.Update(ctx, id, draft)
	if err != nil {
		return core.CostEntry{}, err
	}

	s.publishSync(ctx, updated.ID)
	return updated, nil
}

// DeleteEntry removes an entry and notifies the sync queue.
func (s *LedgerService) DeleteEntry(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.publishDelete(ctx, id)
	return nil
}

// DeleteEntries removes a batch of entries, skipping unknown IDs, and
// notifies the sync queue for each removed one.
func (s *LedgerService) DeleteEntries(ctx context.Context, ids []int64) (int, error) {
	existing := make(map[int64]bool, len(ids))
	for _, e := range s.store.All() {
		existing[e.ID] = true
	}

	removed, err := s.store.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if existing[id] {
			s.publishDelete(ctx, id)
		}
	}
	return removed, nil
}

// ClearEntries removes every entry and notifies the sync queue per entry.
func (s *LedgerService) ClearEntries(ctx context.Context) error {
	entries := s.store.All()
	if err := s.store.Clear(ctx); err != nil {
		return err
	}

	for _, e := range entries {
		s.publishDelete(ctx, e.ID)
	}
	return nil
}

func (s *LedgerService) publishSync(ctx context.Context, id int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping sync message", "id", id)
		return
	}
	if err := s.publisher.PublishEntrySync(ctx, id, s.store.Revision()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
}

func (s *LedgerService) publishDelete(ctx context.Context, id int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping delete message", "id", id)
		return
	}
	if err := s.publisher.PublishEntryDelete(ctx, id, s.store.Revision()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
	}
}

// Close releases the publisher connection when one is attached.
func (s *LedgerService) Close() error {
	if closer, ok := s.publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
