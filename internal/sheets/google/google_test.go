package google

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"paybook/internal/core"
	"paybook/internal/csvcodec"
	ports "paybook/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{ServiceAccountJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{
		SpreadsheetID:      "sheet",
		ServiceAccountFile: filepath.Join(t.TempDir(), "missing.json"),
	})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected file error, got %v", err)
	}
}

func TestClient_RequiresService(t *testing.T) {
	c := &Client{spreadsheetID: "test", recordsSheet: "Salary"}
	if _, err := c.ExportRecords(context.Background(), nil); err == nil {
		t.Fatal("expected error without service")
	}
	if _, err := c.ReadCSV(context.Background()); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "A"},
		{17, "Q"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
	}
	for _, tt := range tests {
		if got := columnName(tt.n); got != tt.want {
			t.Errorf("columnName(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestToStrings(t *testing.T) {
	got := toStrings([]interface{}{"  a ", 5000.5, float64(21), 3})
	want := []string{"a", "5000.5", "21", "3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("toStrings[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// Values written by ExportRecords and read back as the API returns them
// (trailing empty cells trimmed) must import as the same records.
func TestValuesRoundTripThroughImporter(t *testing.T) {
	rec := core.SalaryRecord{
		ID:            "r1",
		Date:          "2025-04-01",
		Year:          2025,
		Month:         4,
		BaseSalary:    core.BaseSalary{BaseSalary: decimal.RequireFromString("4200.25")},
		OvertimeHours: core.OvertimeHours{Overtime2: decimal.NewFromInt(3)},
		OvertimeRates: core.DefaultRates(),
	}
	rec.TotalSalary = core.CalculateRecord(rec).TotalSalary

	values := toValues(ports.RecordRows([]core.SalaryRecord{rec}))
	values[1] = values[1][:len(values[1])-1] // empty note trimmed by the API
	values = append(values, []interface{}{"", ""})

	text, err := valuesToCSV(values)
	if err != nil {
		t.Fatal(err)
	}
	res := csvcodec.Importer{Rates: core.DefaultRates(), NewID: func() string { return "new" }}.Import(text)
	if !res.Success || res.ImportedCount != 1 {
		t.Fatalf("import failed: %+v", res)
	}
	if got := res.Records[0]; !got.TotalSalary.Equal(rec.TotalSalary) || got.Date != rec.Date {
		t.Fatalf("record mismatch: %+v", got)
	}
}
