package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"paybook/internal/amqp"
	"paybook/internal/core"
	"paybook/internal/storage"
)

type recordingExporter struct {
	calls   int
	last    []core.SalaryRecord
	failErr error
}

func (e *recordingExporter) ExportRecords(_ context.Context, records []core.SalaryRecord) (string, error) {
	e.calls++
	if e.failErr != nil {
		return "", e.failErr
	}
	e.last = records
	return "memory://mirror", nil
}

func seededRepo(t *testing.T, n int) *storage.MemoryRepository {
	t.Helper()
	repo := storage.NewMemoryRepository()
	snap := core.Snapshot{OvertimeRates: core.DefaultRates()}
	for i := 0; i < n; i++ {
		snap.Records = append(snap.Records, core.SalaryRecord{
			ID:          "rec",
			Date:        core.RecordDate(2025, i+1),
			Year:        2025,
			Month:       i + 1,
			TotalSalary: decimal.NewFromInt(100),
		})
	}
	if err := repo.Save(context.Background(), snap); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return repo
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestMirror_ExportsToEveryTarget(t *testing.T) {
	a, b := &recordingExporter{}, &recordingExporter{}
	w := NewMirrorWorker(seededRepo(t, 2), nil, a, b)

	if err := w.StartupMirror(context.Background()); err != nil {
		t.Fatalf("StartupMirror: %v", err)
	}
	if len(a.last) != 2 || len(b.last) != 2 {
		t.Fatalf("targets got %d and %d records, want 2", len(a.last), len(b.last))
	}
	if w.LastMirrored().IsZero() {
		t.Errorf("LastMirrored not set")
	}
}

func TestMirror_EmptyStorage(t *testing.T) {
	target := &recordingExporter{}
	w := NewMirrorWorker(storage.NewMemoryRepository(), nil, target)
	if err := w.Mirror(context.Background()); err != nil {
		t.Fatal(err)
	}
	if target.last == nil || len(target.last) != 0 {
		t.Errorf("expected an empty, non-nil record list, got %#v", target.last)
	}
}

func TestMirror_PartialFailure(t *testing.T) {
	bad := &recordingExporter{failErr: errors.New("quota exceeded")}
	good := &recordingExporter{}
	w := NewMirrorWorker(seededRepo(t, 1), nil, bad, good)

	err := w.Mirror(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if good.calls != 1 || len(good.last) != 1 {
		t.Errorf("healthy target not exported after a failure")
	}
	if !w.LastMirrored().IsZero() {
		t.Errorf("failed mirror must not advance LastMirrored")
	}
}

func TestHandleRecordEvent(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		msg       amqp.RecordEventMessage
		wantCalls int
	}{
		{
			name:      "save after last mirror",
			msg:       amqp.RecordEventMessage{Type: string(core.EventRecordSaved), Count: 1, Timestamp: base.Add(time.Minute)},
			wantCalls: 2,
		},
		{
			name:      "event older than last mirror",
			msg:       amqp.RecordEventMessage{Type: string(core.EventRecordDeleted), Count: 1, Timestamp: base.Add(-time.Minute)},
			wantCalls: 1,
		},
		{
			name:      "event without timestamp",
			msg:       amqp.RecordEventMessage{Type: string(core.EventRecordsCleared), Count: 3},
			wantCalls: 2,
		},
		{
			name:      "rates update",
			msg:       amqp.RecordEventMessage{Type: string(core.EventRatesUpdated), Timestamp: base.Add(time.Hour)},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &recordingExporter{}
			w := NewMirrorWorker(seededRepo(t, 1), nil, target)
			w.now = fixedClock(base)
			if err := w.Mirror(context.Background()); err != nil {
				t.Fatal(err)
			}

			if err := w.HandleRecordEvent(context.Background(), &tt.msg); err != nil {
				t.Fatalf("HandleRecordEvent: %v", err)
			}
			if target.calls != tt.wantCalls {
				t.Errorf("exports = %d, want %d", target.calls, tt.wantCalls)
			}
		})
	}
}

func TestHandleRecordEvent_PropagatesFailure(t *testing.T) {
	target := &recordingExporter{failErr: errors.New("offline")}
	w := NewMirrorWorker(seededRepo(t, 1), nil, target)
	msg := &amqp.RecordEventMessage{Type: string(core.EventRecordSaved), Timestamp: time.Now()}
	if err := w.HandleRecordEvent(context.Background(), msg); err == nil {
		t.Fatal("expected the export error so the message is requeued")
	}
}
