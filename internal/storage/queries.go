package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Snapshot is one saved version of the three input blocks.
type Snapshot struct {
	ID         int64
	Families   string
	Stays      string
	Expenses   string
	CreatedAt  int64
	SyncStatus string
	SyncedAt   sql.NullInt64
}

const snapshotColumns = `id, families, stays, expenses, created_at, sync_status, synced_at`

func scanSnapshot(row interface{ Scan(...interface{}) error }) (Snapshot, error) {
	var s Snapshot
	err := row.Scan(&s.ID, &s.Families, &s.Stays, &s.Expenses, &s.CreatedAt, &s.SyncStatus, &s.SyncedAt)
	return s, err
}

type CreateSnapshotParams struct {
	Families  string
	Stays     string
	Expenses  string
	CreatedAt int64
}

const createSnapshot = `INSERT INTO snapshots (families, stays, expenses, created_at)
VALUES (?, ?, ?, ?)
RETURNING ` + snapshotColumns

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (Snapshot, error) {
	row := q.db.QueryRowContext(ctx, createSnapshot, arg.Families, arg.Stays, arg.Expenses, arg.CreatedAt)
	return scanSnapshot(row)
}

const getSnapshot = `SELECT ` + snapshotColumns + ` FROM snapshots WHERE id = ?`

func (q *Queries) GetSnapshot(ctx context.Context, id int64) (Snapshot, error) {
	return scanSnapshot(q.db.QueryRowContext(ctx, getSnapshot, id))
}

const getLatestSnapshot = `SELECT ` + snapshotColumns + ` FROM snapshots ORDER BY id DESC LIMIT 1`

func (q *Queries) GetLatestSnapshot(ctx context.Context) (Snapshot, error) {
	return scanSnapshot(q.db.QueryRowContext(ctx, getLatestSnapshot))
}

const getPendingSyncSnapshots = `SELECT ` + snapshotColumns + ` FROM snapshots
WHERE sync_status IN ('pending', 'error')
ORDER BY id ASC
LIMIT ?`

func (q *Queries) GetPendingSyncSnapshots(ctx context.Context, limit int64) ([]Snapshot, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncSnapshots, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markSnapshotSynced = `UPDATE snapshots SET sync_status = 'synced', synced_at = ? WHERE id = ?`

func (q *Queries) MarkSnapshotSynced(ctx context.Context, syncedAt, id int64) error {
	_, err := q.db.ExecContext(ctx, markSnapshotSynced, syncedAt, id)
	return err
}

const markSnapshotSyncError = `UPDATE snapshots SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkSnapshotSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markSnapshotSyncError, id)
	return err
}

const countSnapshots = `SELECT COUNT(*) FROM snapshots`

func (q *Queries) CountSnapshots(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countSnapshots).Scan(&n)
	return n, err
}
