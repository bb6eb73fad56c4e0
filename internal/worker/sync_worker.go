package worker

import (
	"context"
	"fmt"
	"log/slog"

	"housesplit/internal/amqp"
	"housesplit/internal/metrics"
	"housesplit/internal/slots"
	"housesplit/internal/storage"
)

// SnapshotStore is the part of the SQLite repository the worker needs.
type SnapshotStore interface {
	GetSnapshot(ctx context.Context, id int64) (storage.Snapshot, error)
	Latest(ctx context.Context) (storage.Snapshot, error)
	PendingSync(ctx context.Context, limit int) ([]storage.Snapshot, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker copies stored snapshots to Google Sheets. The sheet only holds
// one version, so a snapshot older than the latest one is marked synced
// without being written.
type SyncWorker struct {
	storage   SnapshotStore
	sheets    slots.BlockWriter
	metrics   *metrics.Metrics
	batchSize int
}

func NewSyncWorker(storage SnapshotStore, sheets slots.BlockWriter, m *metrics.Metrics, batchSize int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		metrics:   m,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single snapshot sync message from AMQP
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SnapshotSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"snapshot_id", msg.SnapshotID,
		"message_id", msg.MessageID)

	snapshot, err := w.storage.GetSnapshot(ctx, msg.SnapshotID)
	if err != nil {
		return fmt.Errorf("get snapshot from storage: %w", err)
	}
	if snapshot.SyncStatus == storage.SyncStatusSynced {
		slog.InfoContext(ctx, "Snapshot already synced, skipping", "snapshot_id", snapshot.ID)
		return nil
	}

	return w.syncSnapshot(ctx, snapshot)
}

// ProcessPendingSnapshots syncs snapshots whose message was lost or failed.
func (w *SyncWorker) ProcessPendingSnapshots(ctx context.Context) error {
	_, _, err := w.processPending(ctx, w.batchSize)
	return err
}

// StartupSyncCheck runs a larger pending sweep when the worker starts.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, failed, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced, "errors", failed)
	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (synced, failed int, err error) {
	pending, err := w.storage.PendingSync(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending snapshots: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	slog.InfoContext(ctx, "Processing pending snapshots", "count", len(pending))

	for _, s := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}
		if err := w.syncSnapshot(ctx, s); err != nil {
			slog.ErrorContext(ctx, "Failed to sync snapshot", "snapshot_id", s.ID, "error", err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

func (w *SyncWorker) syncSnapshot(ctx context.Context, s storage.Snapshot) error {
	latest, err := w.storage.Latest(ctx)
	if err != nil {
		return fmt.Errorf("get latest snapshot: %w", err)
	}

	if s.ID < latest.ID {
		if err := w.storage.MarkSynced(ctx, s.ID); err != nil {
			return fmt.Errorf("mark superseded snapshot: %w", err)
		}
		slog.InfoContext(ctx, "Snapshot superseded, not written", "snapshot_id", s.ID, "latest_id", latest.ID)
		return nil
	}

	ref, err := w.sheets.Save(ctx, s.Blocks())
	w.metrics.ObserveSync(err)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, s.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "snapshot_id", s.ID, "error", markErr)
		}
		return fmt.Errorf("write snapshot to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, s.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "snapshot_id", s.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced snapshot", "snapshot_id", s.ID, "sheets_ref", ref)
	return nil
}
