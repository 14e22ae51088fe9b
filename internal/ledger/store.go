package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"custos/internal/core"
)

// Persister is the storage collaborator behind the store. Entry writes are
// full-snapshot: SaveEntries replaces whatever was persisted before, so a
// successful call always leaves storage equal to the in-memory collection.
type Persister interface {
	LoadEntries(ctx context.Context) ([]core.CostEntry, error)
	SaveEntries(ctx context.Context, entries []core.CostEntry) error
	LoadProfile(ctx context.Context) (core.FarmProfile, error)
	SaveProfile(ctx context.Context, profile core.FarmProfile) error
}

// Store is the in-memory source of truth for cost entries and the farm
// profile. Every mutation validates first, applies in memory, and persists the
// full snapshot before returning; a persistence failure rolls the mutation
// back so memory and storage never diverge.
type Store struct {
	mu        sync.RWMutex
	persister Persister
	entries   []core.CostEntry
	profile   core.FarmProfile
	nextID    int64
	revision  uint64
	now       func() time.Time
}

// NewStore loads the persisted collection and profile and seeds the ID
// counter past the highest loaded ID.
func NewStore(ctx context.Context, p Persister) (*Store, error) {
	entries, err := p.LoadEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading cost entries: %w", err)
	}
	profile, err := p.LoadProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading farm profile: %w", err)
	}

	var maxID int64
	for _, e := range entries {
		if e.ID > maxID {
			maxID = e.ID
		}
	}

	return &Store{
		persister: p,
		entries:   entries,
		profile:   profile,
		nextID:    maxID + 1,
		now:       time.Now,
	}, nil
}

// Create validates the draft, assigns an ID and creation time, appends and
// persists. The draft's ID and CreatedAt are ignored.
func (s *Store) Create(ctx context.Context, draft core.CostEntry) (core.CostEntry, error) {
	if err := draft.Validate(); err != nil {
		return core.CostEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft.ID = s.nextID
	draft.CreatedAt = s.now().UTC()
	s.entries = append(s.entries, draft)

	if err := s.persister.SaveEntries(ctx, s.entries); err != nil {
		s.entries = s.entries[:len(s.entries)-1]
		return core.CostEntry{}, fmt.Errorf("persisting cost entries: %w", err)
	}

	s.nextID++
	s.revision++
	return draft, nil
}

// Update replaces the entry with the given ID in one step, keeping its
// original ID and creation time.
func (s *Store) Update(ctx context.Context, id int64, draft core.CostEntry) (core.CostEntry, error) {
	if err := draft.Validate(); err != nil {
		return core.CostEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return core.CostEntry{}, &core.NotFoundError{ID: id}
	}

	previous := s.entries[idx]
	draft.ID = previous.ID
	draft.CreatedAt = previous.CreatedAt
	s.entries[idx] = draft

	if err := s.persister.SaveEntries(ctx, s.entries); err != nil {
		s.entries[idx] = previous
		return core.CostEntry{}, fmt.Errorf("persisting cost entries: %w", err)
	}

	s.revision++
	return draft, nil
}

// Delete removes the entry with the given ID.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return &core.NotFoundError{ID: id}
	}

	previous := s.entries
	s.entries = append(append([]core.CostEntry{}, previous[:idx]...), previous[idx+1:]...)

	if err := s.persister.SaveEntries(ctx, s.entries); err != nil {
		s.entries = previous
		return fmt.Errorf("persisting cost entries: %w", err)
	}

	s.revision++
	return nil
}

// DeleteMany removes every listed entry that exists, skipping unknown IDs,
// and reports how many were actually removed.
func (s *Store) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := make([]core.CostEntry, 0, len(s.entries))
	removed := 0
	for _, e := range s.entries {
		if drop[e.ID] {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0, nil
	}

	previous := s.entries
	s.entries = kept
	if err := s.persister.SaveEntries(ctx, s.entries); err != nil {
		s.entries = previous
		return 0, fmt.Errorf("persisting cost entries: %w", err)
	}

	s.revision++
	return removed, nil
}

// Clear removes every entry. Confirmation is the caller's responsibility.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return nil
	}

	previous := s.entries
	s.entries = nil
	if err := s.persister.SaveEntries(ctx, s.entries); err != nil {
		s.entries = previous
		return fmt.Errorf("persisting cost entries: %w", err)
	}

	s.revision++
	return nil
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []core.CostEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.CostEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Get returns the entry with the given ID.
func (s *Store) Get(id int64) (core.CostEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.entries[idx], nil
	}
	return core.CostEntry{}, &core.NotFoundError{ID: id}
}

// Seasons lists the distinct season labels present, newest first.
func (s *Store) Seasons() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, e := range s.entries {
		if e.Season != "" && !seen[e.Season] {
			seen[e.Season] = true
			out = append(out, e.Season)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Count reports the number of entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Revision is a counter bumped on every successful mutation. Derived views
// cached under a revision stay valid until the next mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Profile returns the farm profile.
func (s *Store) Profile() core.FarmProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SetProfile replaces the farm profile and persists it.
func (s *Store) SetProfile(ctx context.Context, p core.FarmProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.profile
	s.profile = p
	if err := s.persister.SaveProfile(ctx, p); err != nil {
		s.profile = previous
		return fmt.Errorf("persisting farm profile: %w", err)
	}

	s.revision++
	return nil
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id int64) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
