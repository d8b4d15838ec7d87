// Package worker keeps spreadsheet mirrors in step with the persisted records.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"paybook/internal/amqp"
	"paybook/internal/core"
	"paybook/internal/log"
	ports "paybook/internal/sheets"
)

// SnapshotLoader reads the persisted state shared with the CLI.
type SnapshotLoader interface {
	Load(ctx context.Context) (core.Snapshot, bool, error)
}

// MirrorWorker re-exports the whole record list to every target whenever
// the records change.
type MirrorWorker struct {
	source  SnapshotLoader
	targets []ports.RecordExporter
	logger  *log.Logger
	now     func() time.Time

	mu           sync.Mutex
	lastMirrored time.Time
}

func NewMirrorWorker(source SnapshotLoader, logger *log.Logger, targets ...ports.RecordExporter) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{
		source:  source,
		targets: targets,
		logger:  logger.WithComponent(log.ComponentWorker),
		now:     time.Now,
	}
}

// HandleRecordEvent mirrors the records unless the event cannot have
// changed them or an earlier mirror already read a newer state.
func (w *MirrorWorker) HandleRecordEvent(ctx context.Context, msg *amqp.RecordEventMessage) error {
	if msg.Type == string(core.EventRatesUpdated) {
		w.logger.DebugContext(ctx, "Rates change does not affect saved records, skipping", "type", msg.Type)
		return nil
	}

	w.mu.Lock()
	last := w.lastMirrored
	w.mu.Unlock()
	if !msg.Timestamp.IsZero() && msg.Timestamp.Before(last) {
		w.logger.DebugContext(ctx, "Event already covered by a later mirror",
			"type", msg.Type,
			"event_time", msg.Timestamp,
			"mirrored_at", last)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing record event",
		"type", msg.Type,
		"count", msg.Count)
	return w.Mirror(ctx)
}

// Mirror exports the current records to every target. A failing target
// does not stop the others; all failures are returned together.
func (w *MirrorWorker) Mirror(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	started := w.now()
	snap, found, err := w.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	records := snap.Records
	if !found || records == nil {
		records = []core.SalaryRecord{}
	}

	var errs []error
	for _, t := range w.targets {
		ref, err := t.ExportRecords(ctx, records)
		if err != nil {
			w.logger.ErrorContext(ctx, "Mirror export failed", log.FieldError, err)
			errs = append(errs, err)
			continue
		}
		w.logger.InfoContext(ctx, "Records mirrored", "target", ref, "records", len(records))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("mirror records: %w", err)
	}
	w.lastMirrored = started
	return nil
}

// StartupMirror brings the targets up to date with changes made while the
// worker was not running.
func (w *MirrorWorker) StartupMirror(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Performing startup mirror", "targets", len(w.targets))
	return w.Mirror(ctx)
}

// LastMirrored returns when the last successful mirror read the records.
func (w *MirrorWorker) LastMirrored() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastMirrored
}
