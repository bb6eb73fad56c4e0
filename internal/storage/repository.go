package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"housesplit/internal/core"
	"housesplit/internal/slots"

	_ "modernc.org/sqlite"
)

const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
	SyncStatusError   = "error"
)

// RefPrefix marks save references produced by this repository.
const RefPrefix = "sqlite:"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

var _ slots.Store = (*SQLiteRepository)(nil)

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

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SaveSnapshot stores a new version of the blocks with pending sync status.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, b core.Blocks) (Snapshot, error) {
	s, err := r.queries.CreateSnapshot(ctx, CreateSnapshotParams{
		Families:  b.Families,
		Stays:     b.Stays,
		Expenses:  b.Expenses,
		CreatedAt: r.now().UTC().Unix(),
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("create snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved to SQLite",
		"id", s.ID,
		"families_bytes", len(s.Families),
		"stays_bytes", len(s.Stays),
		"expenses_bytes", len(s.Expenses))

	return s, nil
}

// Latest returns the most recent snapshot, or slots.ErrNoSavedData.
func (r *SQLiteRepository) Latest(ctx context.Context) (Snapshot, error) {
	s, err := r.queries.GetLatestSnapshot(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, slots.ErrNoSavedData
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get latest snapshot: %w", err)
	}
	return s, nil
}

// GetSnapshot retrieves a single snapshot by ID.
func (r *SQLiteRepository) GetSnapshot(ctx context.Context, id int64) (Snapshot, error) {
	s, err := r.queries.GetSnapshot(ctx, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot %d: %w", id, err)
	}
	return s, nil
}

// PendingSync returns snapshots not yet written to Google Sheets, oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]Snapshot, error) {
	items, err := r.queries.GetPendingSyncSnapshots(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync snapshots: %w", err)
	}
	return items, nil
}

// MarkSynced marks a snapshot as successfully synced
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkSnapshotSynced(ctx, r.now().UTC().Unix(), id); err != nil {
		return fmt.Errorf("mark snapshot synced: %w", err)
	}
	slog.InfoContext(ctx, "Snapshot marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a snapshot as having sync errors
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkSnapshotSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark snapshot sync error: %w", err)
	}
	slog.WarnContext(ctx, "Snapshot marked with sync error", "id", id)
	return nil
}

// Count returns the number of stored snapshots.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountSnapshots(ctx)
	if err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}

// Load implements slots.BlockReader
func (r *SQLiteRepository) Load(ctx context.Context) (core.Blocks, error) {
	s, err := r.Latest(ctx)
	if err != nil {
		return core.Blocks{}, err
	}
	return s.Blocks(), nil
}

// Save implements slots.BlockWriter
func (r *SQLiteRepository) Save(ctx context.Context, b core.Blocks) (string, error) {
	s, err := r.SaveSnapshot(ctx, b)
	if err != nil {
		return "", err
	}
	return FormatRef(s.ID), nil
}

// Blocks returns the snapshot content.
func (s Snapshot) Blocks() core.Blocks {
	return core.Blocks{Families: s.Families, Stays: s.Stays, Expenses: s.Expenses}
}

// FormatRef builds the save reference for a snapshot id.
func FormatRef(id int64) string {
	return RefPrefix + strconv.FormatInt(id, 10)
}

// ParseRef extracts the snapshot id from a save reference.
func ParseRef(ref string) (int64, bool) {
	rest, ok := strings.CutPrefix(ref, RefPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
