package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"paybook/internal/core"
	"paybook/internal/csvcodec"
	"paybook/internal/log"
	"paybook/internal/storage"
	"paybook/internal/store"
)

type fakeSheets struct {
	pushed []core.SalaryRecord
	csv    string
	err    error
}

func (f *fakeSheets) ExportRecords(_ context.Context, records []core.SalaryRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.pushed = records
	return "sheet://test", nil
}

func (f *fakeSheets) ReadCSV(context.Context) (string, error) {
	return f.csv, f.err
}

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	n := 0
	s, err := store.Open(context.Background(), storage.NewMemoryRepository(),
		store.WithLogger(log.Discard()),
		store.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("rec-%d", n)
		}))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	out := &bytes.Buffer{}
	return &App{Store: s, Out: out, In: strings.NewReader(""), Logger: log.Discard()}, out
}

func run(t *testing.T, a *App, args ...string) error {
	t.Helper()
	return a.Run(context.Background(), args)
}

func TestRun_UnknownCommand(t *testing.T) {
	a, out := newTestApp(t)
	err := run(t, a, "payroll")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
	if !strings.Contains(out.String(), "usage: paybook") {
		t.Errorf("usage not printed: %q", out.String())
	}
	if err := run(t, a); !errors.Is(err, ErrUsage) {
		t.Errorf("no command: expected ErrUsage, got %v", err)
	}
}

func TestCalc(t *testing.T) {
	a, out := newTestApp(t)
	err := run(t, a, "calc", "-base", "5000", "-meal", "200", "-ot1", "10", "-item", "Bonus:100", "-item", "Gift:abc")
	if err != nil {
		t.Fatalf("calc: %v", err)
	}
	got := out.String()
	for _, want := range []string{"5200.00", "210.00", "100.00", "5510.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %s:\n%s", want, got)
		}
	}
	if len(a.Store.Records()) != 0 {
		t.Errorf("calc must not save")
	}
	draft := a.Store.Draft()
	if len(draft.Base.CustomItems) != 2 || !draft.Base.CustomItems[1].Amount.IsZero() {
		t.Errorf("invalid item amount should be coerced to zero: %+v", draft.Base.CustomItems)
	}
}

func TestCalc_Errors(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"malformed item", []string{"calc", "-item", "Bonus"}},
		{"unknown flag", []string{"calc", "-bogus", "1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, _ := newTestApp(t)
			if err := run(t, a, tc.args...); !errors.Is(err, ErrUsage) {
				t.Fatalf("expected ErrUsage, got %v", err)
			}
		})
	}

	a, _ := newTestApp(t)
	if err := run(t, a, "calc", "-item", "a;b:1"); !errors.Is(err, core.ErrInvalidItemName) {
		t.Fatalf("expected ErrInvalidItemName, got %v", err)
	}
}

func TestSaveListDelete(t *testing.T) {
	a, out := newTestApp(t)
	if err := run(t, a, "save", "-year", "2025", "-month", "3", "-base", "5000", "-note", "march"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.Contains(out.String(), "saved rec-1 2025-03 total 5000.00") {
		t.Errorf("unexpected save output %q", out.String())
	}

	out.Reset()
	if err := run(t, a, "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "rec-1") || !strings.Contains(out.String(), "march") {
		t.Errorf("record missing from list: %q", out.String())
	}

	out.Reset()
	if err := run(t, a, "list", "-json"); err != nil {
		t.Fatalf("list -json: %v", err)
	}
	if !strings.Contains(out.String(), `"id": "rec-1"`) {
		t.Errorf("unexpected JSON: %q", out.String())
	}

	if err := run(t, a, "delete", "missing"); !errors.Is(err, store.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
	if err := run(t, a, "delete"); !errors.Is(err, ErrUsage) {
		t.Errorf("expected ErrUsage, got %v", err)
	}
	if err := run(t, a, "delete", "rec-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out.Reset()
	if err := run(t, a, "list"); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != "no records" {
		t.Errorf("expected empty list, got %q", out.String())
	}
}

func TestSave_Refusals(t *testing.T) {
	a, _ := newTestApp(t)
	if err := run(t, a, "save", "-year", "2025", "-month", "3"); !errors.Is(err, store.ErrNothingToSave) {
		t.Errorf("zero total: expected ErrNothingToSave, got %v", err)
	}
	if err := run(t, a, "save", "-year", "2025", "-month", "13", "-base", "1"); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Errorf("bad month: expected ErrInvalidPeriod, got %v", err)
	}
	if len(a.Store.Records()) != 0 {
		t.Errorf("refused saves must not add records")
	}
}

func TestClear(t *testing.T) {
	a, out := newTestApp(t)
	for m := 1; m <= 2; m++ {
		if err := run(t, a, "save", "-year", "2025", "-month", fmt.Sprint(m), "-base", "100"); err != nil {
			t.Fatal(err)
		}
	}
	if err := run(t, a, "clear"); !errors.Is(err, ErrUsage) {
		t.Fatalf("clear without -yes: expected ErrUsage, got %v", err)
	}
	if len(a.Store.Records()) != 2 {
		t.Fatalf("records removed without confirmation")
	}
	out.Reset()
	if err := run(t, a, "clear", "-yes"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !strings.Contains(out.String(), "cleared 2 records") {
		t.Errorf("unexpected output %q", out.String())
	}
	if err := run(t, a, "clear", "-yes"); !errors.Is(err, store.ErrNoRecords) {
		t.Errorf("expected ErrNoRecords, got %v", err)
	}
}

func TestRates(t *testing.T) {
	a, out := newTestApp(t)
	if err := run(t, a, "rates"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "overtime1 21") {
		t.Errorf("default rates not shown: %q", out.String())
	}

	if err := run(t, a, "rates", "-set", "25,30.5,50"); err != nil {
		t.Fatalf("rates -set: %v", err)
	}
	if got := a.Store.Rates().Overtime2.String(); got != "30.5" {
		t.Errorf("Overtime2 = %s, want 30.5", got)
	}

	if err := run(t, a, "rates", "-set", "25,0,50"); !errors.Is(err, core.ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}
	if err := run(t, a, "rates", "-set", "25,30"); !errors.Is(err, ErrUsage) {
		t.Errorf("expected ErrUsage, got %v", err)
	}
	if got := a.Store.Rates().Overtime1.String(); got != "25" {
		t.Errorf("rejected update changed rates: %s", got)
	}
}

func TestExportImport(t *testing.T) {
	a, out := newTestApp(t)
	if err := run(t, a, "save", "-year", "2024", "-month", "12", "-base", "4000", "-item", "Bonus:50"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "records.csv")
	if err := run(t, a, "export", "-o", path); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), csvcodec.BOM) {
		t.Errorf("exported file has no BOM")
	}

	b, _ := newTestApp(t)
	if err := run(t, b, "import", path); err != nil {
		t.Fatalf("import: %v", err)
	}
	recs := b.Store.Records()
	if len(recs) != 1 || !recs[0].TotalSalary.Equal(a.Store.Records()[0].TotalSalary) {
		t.Fatalf("imported records mismatch: %+v", recs)
	}

	c, cout := newTestApp(t)
	c.In = strings.NewReader(string(data))
	if err := run(t, c, "import", "-"); err != nil {
		t.Fatalf("import from stdin: %v", err)
	}
	if !strings.Contains(cout.String(), "1") || len(c.Store.Records()) != 1 {
		t.Errorf("stdin import failed: %q", cout.String())
	}

	out.Reset()
	if err := run(t, a, "export"); err != nil {
		t.Fatal(err)
	}
	if out.String() != string(data) {
		t.Errorf("stdout export differs from file export")
	}
}

func TestImport_Failure(t *testing.T) {
	a, out := newTestApp(t)
	a.In = strings.NewReader("Date,Year\n")
	if err := run(t, a, "import", "-"); err == nil {
		t.Fatal("expected an error for an invalid CSV")
	}
	if out.Len() == 0 {
		t.Errorf("failure message not printed")
	}
	if err := run(t, a, "import", filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestXLSX(t *testing.T) {
	a, out := newTestApp(t)
	if err := run(t, a, "save", "-year", "2025", "-month", "1", "-base", "100"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := run(t, a, "xlsx", "-o", path); err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("workbook not written: %v", err)
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestSheets(t *testing.T) {
	a, out := newTestApp(t)
	if err := run(t, a, "sheets", "push"); err == nil {
		t.Fatal("expected an error when sheets are not configured")
	}

	fake := &fakeSheets{}
	a.Sheets = func(context.Context) (SheetsClient, error) { return fake, nil }
	if err := run(t, a, "sheets", "sync"); !errors.Is(err, ErrUsage) {
		t.Errorf("expected ErrUsage, got %v", err)
	}

	if err := run(t, a, "save", "-year", "2025", "-month", "2", "-base", "300"); err != nil {
		t.Fatal(err)
	}
	if err := run(t, a, "sheets", "push"); err != nil {
		t.Fatalf("push: %v", err)
	}
	if len(fake.pushed) != 1 || !strings.Contains(out.String(), "sheet://test") {
		t.Errorf("push did not reach the client: %q", out.String())
	}

	text, err := a.Store.ExportCSV()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := newTestApp(t)
	b.Sheets = func(context.Context) (SheetsClient, error) { return &fakeSheets{csv: text}, nil }
	if err := run(t, b, "sheets", "pull"); err != nil {
		t.Fatalf("pull: %v", err)
	}
	if len(b.Store.Records()) != 1 {
		t.Errorf("pull imported %d records, want 1", len(b.Store.Records()))
	}

	b.Sheets = func(context.Context) (SheetsClient, error) { return &fakeSheets{err: errors.New("quota")}, nil }
	if err := run(t, b, "sheets", "pull"); err == nil {
		t.Errorf("expected client error to surface")
	}
}

func TestStatsMonthsChart(t *testing.T) {
	a, out := newTestApp(t)
	saves := [][]string{
		{"-year", "2025", "-month", "1", "-base", "1000"},
		{"-year", "2025", "-month", "1", "-base", "500", "-ot1", "2"},
		{"-year", "2025", "-month", "3", "-base", "700"},
	}
	for _, args := range saves {
		if err := run(t, a, append([]string{"save"}, args...)...); err != nil {
			t.Fatal(err)
		}
	}

	out.Reset()
	if err := run(t, a, "months"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "2025-03\n2025-01\n" {
		t.Errorf("months = %q", out.String())
	}

	out.Reset()
	if err := run(t, a, "stats", "-to", "2025-02"); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "2025-01") || strings.Contains(got, "2025-03") {
		t.Errorf("stats range not applied: %q", got)
	}
	if !strings.Contains(got, "1542.00") {
		t.Errorf("stats total missing: %q", got)
	}

	out.Reset()
	if err := run(t, a, "chart", "-month", "2025-01"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Base Salary") || !strings.Contains(out.String(), "Overtime 1") {
		t.Errorf("monthly chart: %q", out.String())
	}

	out.Reset()
	if err := run(t, a, "chart", "-record", "missing"); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != "nothing to chart" {
		t.Errorf("unknown record chart: %q", out.String())
	}

	out.Reset()
	if err := run(t, a, "chart", "-meal", "40"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Meal Allowance") {
		t.Errorf("draft chart: %q", out.String())
	}

	if err := run(t, a, "chart", "-record", "rec-1", "-month", "2025-01"); !errors.Is(err, ErrUsage) {
		t.Errorf("expected ErrUsage, got %v", err)
	}
}
