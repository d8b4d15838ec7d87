package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentStore, Format: "json", Output: &buf})
	l.Info("record saved", FieldRecordID, "abc")
	l.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, `"component":"store"`) || !strings.Contains(out, `"record_id":"abc"`) {
		t.Fatalf("unexpected output: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry should be filtered: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentCSV).Warn("row skipped")
	if !strings.Contains(buf.String(), `"component":"csv"`) {
		t.Fatalf("WithComponent not applied: %s", buf.String())
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithOperation(OpSave).WithError(errors.New("boom")).WithRecord("id", 2025, 3, "5410")
	if f[FieldOperation] != OpSave || f[FieldError] != "boom" || f[FieldYear] != 2025 {
		t.Fatalf("unexpected fields: %v", f)
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatalf("ToSlice length mismatch")
	}
	if _, ok := NewFields().WithError(nil)[FieldError]; ok {
		t.Fatalf("nil error should not be recorded")
	}
}
