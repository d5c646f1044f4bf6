// Package worker copies ledger records from the primary SQLite store
// into the Google Sheets archive.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"kopilka/internal/amqp"
	"kopilka/internal/core"
)

type (
	// RecordSource is the primary-store surface the worker reads from.
	RecordSource interface {
		GetRecord(ctx context.Context, id int64) (core.Record, error)
		PendingMirror(ctx context.Context, limit int) ([]int64, error)
		MarkMirrored(ctx context.Context, id int64) error
		MarkMirrorError(ctx context.Context, id int64) error
	}

	// Archive is the Sheets surface the worker writes to. Archive row
	// ids equal the source record ids.
	Archive interface {
		AppendRow(ctx context.Context, id int64, rec core.Record) error
		Delete(ctx context.Context, rowID string) (found bool, err error)
	}
)

// MirrorWorker applies mirror messages and periodically sweeps records
// the queue missed.
type MirrorWorker struct {
	source    RecordSource
	archive   Archive
	batchSize int
}

func NewMirrorWorker(source RecordSource, archive Archive, batchSize int) *MirrorWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &MirrorWorker{source: source, archive: archive, batchSize: batchSize}
}

// HandleMessage processes one mirror message. Returned errors cause a
// requeue at the AMQP layer.
func (w *MirrorWorker) HandleMessage(ctx context.Context, msg *amqp.MirrorMessage) error {
	switch msg.Op {
	case amqp.OpSync:
		return w.mirrorRecord(ctx, msg.ID)
	case amqp.OpDelete:
		found, err := w.archive.Delete(ctx, strconv.FormatInt(msg.ID, 10))
		if err != nil {
			return fmt.Errorf("delete record %d from archive: %w", msg.ID, err)
		}
		if !found {
			// Never mirrored or already removed; nothing left to do.
			slog.InfoContext(ctx, "Record absent from archive on delete", "id", msg.ID)
		}
		return nil
	default:
		return fmt.Errorf("unknown mirror op %q", msg.Op)
	}
}

// Reconcile sweeps one batch of never-mirrored records. It complements
// the queue: records whose publish was lost still reach the archive.
func (w *MirrorWorker) Reconcile(ctx context.Context) error {
	ids, err := w.source.PendingMirror(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending records: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	slog.InfoContext(ctx, "Reconciling unmirrored records", "count", len(ids))
	for _, id := range ids {
		if err := w.mirrorRecord(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror record", "id", id, "error", err)
			if markErr := w.source.MarkMirrorError(ctx, id); markErr != nil {
				slog.ErrorContext(ctx, "Failed to record mirror error", "id", id, "error", markErr)
			}
		}
	}
	return nil
}

// Run reconciles on a fixed interval until ctx is cancelled.
func (w *MirrorWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Reconcile(ctx); err != nil {
				slog.ErrorContext(ctx, "Reconciliation pass failed", "error", err)
			}
		}
	}
}

func (w *MirrorWorker) mirrorRecord(ctx context.Context, id int64) error {
	rec, err := w.source.GetRecord(ctx, id)
	if err != nil {
		return fmt.Errorf("load record %d: %w", id, err)
	}
	if err := w.archive.AppendRow(ctx, id, rec); err != nil {
		return fmt.Errorf("append record %d to archive: %w", id, err)
	}
	if err := w.source.MarkMirrored(ctx, id); err != nil {
		return fmt.Errorf("mark record %d mirrored: %w", id, err)
	}
	return nil
}
