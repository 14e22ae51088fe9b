package memory

import (
	"context"
	"fmt"
	"sync"

	"custos/internal/core"
)

// Store is an in-memory stand-in for the Sheets backup, used when no
// spreadsheet is configured so the worker can still drain the queue.
type Store struct {
	mu    sync.Mutex
	items map[int64]core.CostEntry
}

func New() *Store {
	return &Store{items: make(map[int64]core.CostEntry)}
}

// Append stores the entry and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.CostEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[e.ID] = e
	return fmt.Sprintf("mem:%d", e.ID), nil
}

// DeleteEntry removes the entry; unknown IDs are a no-op.
func (s *Store) DeleteEntry(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Len reports how many entries are mirrored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
