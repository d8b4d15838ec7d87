package xlsx

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"paybook/internal/core"
)

func sample() []core.SalaryRecord {
	r := core.SalaryRecord{
		ID:    "a",
		Date:  "2025-03-01",
		Year:  2025,
		Month: 3,
		BaseSalary: core.BaseSalary{
			BaseSalary:  decimal.RequireFromString("5000.5"),
			CustomItems: []core.CustomItem{{ID: "c", Name: "Bonus", Amount: decimal.NewFromInt(10)}},
		},
		OvertimeRates: core.DefaultRates(),
		Note:          "march",
	}
	r.TotalSalary = core.CalculateRecord(r).TotalSalary
	return []core.SalaryRecord{r}
}

func TestExportRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "paybook.xlsx")
	ref, err := NewExporter(path).ExportRecords(context.Background(), sample())
	if err != nil {
		t.Fatalf("ExportRecords: %v", err)
	}
	if ref != path {
		t.Fatalf("ref = %q, want %q", ref, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != RecordsSheet || got[1] != MonthlySheet {
		t.Fatalf("sheets = %v", got)
	}

	cases := []struct {
		sheet, cell, want string
	}{
		{RecordsSheet, "A1", "Date"},
		{RecordsSheet, "A2", "2025-03-01"},
		{RecordsSheet, "D2", "5000.5"},
		{RecordsSheet, "I2", "Bonus:10"},
		{RecordsSheet, "P2", "5010.5"},
		{RecordsSheet, "Q2", "march"},
		{MonthlySheet, "A2", "2025-03"},
		{MonthlySheet, "B2", "1"},
		{MonthlySheet, "F2", "5010.5"},
	}
	for _, tc := range cases {
		got, err := f.GetCellValue(tc.sheet, tc.cell)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("%s!%s = %q, want %q", tc.sheet, tc.cell, got, tc.want)
		}
	}

	typ, err := f.GetCellType(RecordsSheet, "P2")
	if err != nil {
		t.Fatal(err)
	}
	if typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
		t.Errorf("total should be numeric, got type %v", typ)
	}
}

func TestExportRecordsRequiresPath(t *testing.T) {
	if _, err := (&Exporter{}).ExportRecords(context.Background(), nil); err == nil {
		t.Fatal("expected error without a path")
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(RecordsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
