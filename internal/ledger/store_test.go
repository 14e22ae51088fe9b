package ledger

import (
	"context"
	"errors"
	"testing"

	"custos/internal/core"
)

type fakePersister struct {
	entries  []core.CostEntry
	profile  core.FarmProfile
	saves    int
	failSave bool
}

func (f *fakePersister) LoadEntries(context.Context) ([]core.CostEntry, error) {
	return f.entries, nil
}

func (f *fakePersister) SaveEntries(_ context.Context, entries []core.CostEntry) error {
	if f.failSave {
		return errors.New("disk full")
	}
	f.entries = append([]core.CostEntry{}, entries...)
	f.saves++
	return nil
}

func (f *fakePersister) LoadProfile(context.Context) (core.FarmProfile, error) {
	return f.profile, nil
}

func (f *fakePersister) SaveProfile(_ context.Context, p core.FarmProfile) error {
	if f.failSave {
		return errors.New("disk full")
	}
	f.profile = p
	return nil
}

func draft() core.CostEntry {
	return core.CostEntry{
		Description:  "Sementes de milho",
		Category:     core.CategorySeeds,
		Amount:       core.Money{Cents: 50000},
		Date:         core.NewDate(2025, 3, 12),
		Season:       "2024/2025",
		AreaHectares: 10,
		Culture:      "milho",
	}
}

func newTestStore(t *testing.T, p *fakePersister) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), p)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	p := &fakePersister{entries: []core.CostEntry{{ID: 7, Description: "antigo"}}}
	s := newTestStore(t, p)

	first, err := s.Create(context.Background(), draft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID != 8 {
		t.Fatalf("first ID = %d, want 8", first.ID)
	}
	if first.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not set")
	}

	second, err := s.Create(context.Background(), draft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if second.ID != 9 {
		t.Fatalf("second ID = %d, want 9", second.ID)
	}
	if len(p.entries) != 3 {
		t.Fatalf("persisted %d entries, want 3", len(p.entries))
	}
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)

	bad := draft()
	bad.Amount = core.Money{}
	_, err := s.Create(context.Background(), bad)

	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if s.Count() != 0 || p.saves != 0 {
		t.Fatalf("invalid draft must not touch the store or storage")
	}
}

func TestCreateRollsBackOnPersistFailure(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)

	p.failSave = true
	if _, err := s.Create(context.Background(), draft()); err == nil {
		t.Fatalf("expected persistence error")
	}
	if s.Count() != 0 {
		t.Fatalf("failed create left %d entries in memory", s.Count())
	}

	p.failSave = false
	created, err := s.Create(context.Background(), draft())
	if err != nil {
		t.Fatalf("create after recovery: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("ID after rollback = %d, want 1", created.ID)
	}
}

func TestUpdateReplacesInPlace(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)

	created, _ := s.Create(context.Background(), draft())

	changed := draft()
	changed.Description = "Sementes certificadas"
	changed.Amount = core.Money{Cents: 75000}

	updated, err := s.Update(context.Background(), created.ID, changed)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("update changed the ID: %d -> %d", created.ID, updated.ID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("update changed CreatedAt")
	}

	got, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "Sementes certificadas" || got.Amount.Cents != 75000 {
		t.Fatalf("entry not replaced: %+v", got)
	}
	if s.Count() != 1 {
		t.Fatalf("update changed the entry count: %d", s.Count())
	}
}

func TestUpdateUnknownID(t *testing.T) {
	s := newTestStore(t, &fakePersister{})
	_, err := s.Update(context.Background(), 99, draft())
	var nferr *core.NotFoundError
	if !errors.As(err, &nferr) || nferr.ID != 99 {
		t.Fatalf("expected NotFoundError for 99, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t, &fakePersister{})
	created, _ := s.Create(context.Background(), draft())

	if err := s.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(created.ID); err == nil {
		t.Fatalf("entry still present after delete")
	}

	var nferr *core.NotFoundError
	if err := s.Delete(context.Background(), created.ID); !errors.As(err, &nferr) {
		t.Fatalf("second delete should be NotFoundError, got %v", err)
	}
}

func TestDeleteMany(t *testing.T) {
	s := newTestStore(t, &fakePersister{})
	for i := 0; i < 4; i++ {
		if _, err := s.Create(context.Background(), draft()); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	removed, err := s.DeleteMany(context.Background(), []int64{1, 3, 99})
	if err != nil {
		t.Fatalf("delete many: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if s.Count() != 2 {
		t.Fatalf("count = %d, want 2", s.Count())
	}

	removed, err = s.DeleteMany(context.Background(), []int64{99})
	if err != nil || removed != 0 {
		t.Fatalf("all-missing batch: removed=%d err=%v", removed, err)
	}
}

func TestClear(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	for i := 0; i < 3; i++ {
		s.Create(context.Background(), draft())
	}

	if err := s.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s.Count() != 0 || len(p.entries) != 0 {
		t.Fatalf("clear left entries behind")
	}
}

func TestSeasonsNewestFirst(t *testing.T) {
	s := newTestStore(t, &fakePersister{})
	for _, season := range []string{"2023/2024", "2024/2025", "2023/2024"} {
		d := draft()
		d.Season = season
		if _, err := s.Create(context.Background(), d); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got := s.Seasons()
	if len(got) != 2 || got[0] != "2024/2025" || got[1] != "2023/2024" {
		t.Fatalf("seasons = %v", got)
	}
}

func TestRevisionAdvancesOnMutation(t *testing.T) {
	s := newTestStore(t, &fakePersister{})
	if s.Revision() != 0 {
		t.Fatalf("fresh store revision = %d", s.Revision())
	}

	created, _ := s.Create(context.Background(), draft())
	after := s.Revision()
	if after == 0 {
		t.Fatalf("create did not advance the revision")
	}

	s.All()
	s.Get(created.ID)
	if s.Revision() != after {
		t.Fatalf("reads must not advance the revision")
	}
}

func TestSetProfile(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)

	profile := core.FarmProfile{Name: "Fazenda Boa Vista", Owner: "Helena", SizeHectares: 320}
	if err := s.SetProfile(context.Background(), profile); err != nil {
		t.Fatalf("set profile: %v", err)
	}
	if s.Profile() != profile || p.profile != profile {
		t.Fatalf("profile not applied and persisted")
	}

	p.failSave = true
	if err := s.SetProfile(context.Background(), core.FarmProfile{Name: "Outra"}); err == nil {
		t.Fatalf("expected persistence error")
	}
	if s.Profile() != profile {
		t.Fatalf("failed save must roll the profile back")
	}
}
