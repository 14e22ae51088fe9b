package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"custos/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists the cost ledger. Entry writes are snapshot-style:
// SaveEntries replaces the whole table inside one transaction, carrying the
// sheet-sync bookkeeping over for entries that survive the rewrite.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const entryColumns = `id, description, category, amount_cents, entry_date, season,
	area_hectares, culture, supplier, payment_method, notes, created_at`

// LoadEntries implements ledger.Persister.
func (r *SQLiteRepository) LoadEntries(ctx context.Context) ([]core.CostEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM cost_entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query cost entries: %w", err)
	}
	defer rows.Close()

	var entries []core.CostEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cost entries: %w", err)
	}
	return entries, nil
}

// SaveEntries implements ledger.Persister. The table is rewritten in one
// transaction; synced_at and sync_error are preserved for IDs that still
// exist so the worker does not re-sync untouched entries.
func (r *SQLiteRepository) SaveEntries(ctx context.Context, entries []core.CostEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	syncState, err := loadSyncState(ctx, tx)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cost_entries`); err != nil {
		return fmt.Errorf("clear cost entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cost_entries (`+entryColumns+`, synced_at, sync_error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		state := syncState[e.ID]
		_, err := stmt.ExecContext(ctx,
			e.ID, e.Description, string(e.Category), e.Amount.Cents,
			e.Date.ISO(), e.Season, e.AreaHectares, e.Culture,
			e.Supplier, e.PaymentMethod, e.Notes,
			e.CreatedAt.UTC().Format(time.RFC3339),
			state.syncedAt, state.syncError)
		if err != nil {
			return fmt.Errorf("insert cost entry %d: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Cost entries snapshot saved", "count", len(entries))
	return nil
}

// GetEntry returns a single entry by ID, for the sync worker.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (core.CostEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM cost_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return core.CostEntry{}, &core.NotFoundError{ID: id}
	}
	if err != nil {
		return core.CostEntry{}, err
	}
	return e, nil
}

// GetPendingSyncEntries returns entries not yet mirrored to the backup sheet.
func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]core.CostEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM cost_entries
		 WHERE synced_at IS NULL AND sync_error IS NULL ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}
	defer rows.Close()

	var entries []core.CostEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending sync entries: %w", err)
	}
	return entries, nil
}

// MarkSynced records a successful mirror to the backup sheet.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE cost_entries SET synced_at = ?, sync_error = NULL WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}

	slog.InfoContext(ctx, "Cost entry marked as synced", "id", id)
	return nil
}

// MarkSyncError records a failed mirror attempt.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64, message string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE cost_entries SET sync_error = ? WHERE id = ?`, message, id)
	if err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}

	slog.WarnContext(ctx, "Cost entry marked with sync error", "id", id, "error", message)
	return nil
}

// LoadProfile implements ledger.Persister.
func (r *SQLiteRepository) LoadProfile(ctx context.Context) (core.FarmProfile, error) {
	var p core.FarmProfile
	err := r.db.QueryRowContext(ctx,
		`SELECT name, owner, location, size_hectares FROM farm_profile WHERE id = 1`).
		Scan(&p.Name, &p.Owner, &p.Location, &p.SizeHectares)
	if err == sql.ErrNoRows {
		return core.FarmProfile{}, nil
	}
	if err != nil {
		return core.FarmProfile{}, fmt.Errorf("load farm profile: %w", err)
	}
	return p, nil
}

// SaveProfile implements ledger.Persister.
func (r *SQLiteRepository) SaveProfile(ctx context.Context, p core.FarmProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO farm_profile (id, name, owner, location, size_hectares)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   owner = excluded.owner,
		   location = excluded.location,
		   size_hectares = excluded.size_hectares`,
		p.Name, p.Owner, p.Location, p.SizeHectares)
	if err != nil {
		return fmt.Errorf("save farm profile: %w", err)
	}

	slog.InfoContext(ctx, "Farm profile saved", "name", p.Name)
	return nil
}

type syncColumns struct {
	syncedAt  sql.NullString
	syncError sql.NullString
}

func loadSyncState(ctx context.Context, tx *sql.Tx) (map[int64]syncColumns, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, synced_at, sync_error FROM cost_entries`)
	if err != nil {
		return nil, fmt.Errorf("read sync state: %w", err)
	}
	defer rows.Close()

	state := make(map[int64]syncColumns)
	for rows.Next() {
		var id int64
		var cols syncColumns
		if err := rows.Scan(&id, &cols.syncedAt, &cols.syncError); err != nil {
			return nil, fmt.Errorf("scan sync state: %w", err)
		}
		state[id] = cols
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync state: %w", err)
	}
	return state, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (core.CostEntry, error) {
	var (
		e         core.CostEntry
		category  string
		entryDate string
		createdAt string
	)
	err := row.Scan(&e.ID, &e.Description, &category, &e.Amount.Cents,
		&entryDate, &e.Season, &e.AreaHectares, &e.Culture,
		&e.Supplier, &e.PaymentMethod, &e.Notes, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.CostEntry{}, err
		}
		return core.CostEntry{}, fmt.Errorf("scan cost entry: %w", err)
	}

	e.Category = core.Category(category)
	if e.Date, err = core.ParseDate(entryDate); err != nil {
		return core.CostEntry{}, fmt.Errorf("parse entry date %q: %w", entryDate, err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return core.CostEntry{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	return e, nil
}
