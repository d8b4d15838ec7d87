// Package xlsx writes salary records to an Excel workbook.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"paybook/internal/core"
	ports "paybook/internal/sheets"
)

const (
	RecordsSheet = "Records"
	MonthlySheet = "Monthly"
)

var _ ports.RecordExporter = (*Exporter)(nil)

// Exporter writes a workbook with a records sheet and a monthly statistics sheet.
type Exporter struct {
	Path string
}

func NewExporter(path string) *Exporter {
	return &Exporter{Path: path}
}

// ExportRecords writes the workbook to Path, replacing any existing file.
func (e *Exporter) ExportRecords(ctx context.Context, records []core.SalaryRecord) (string, error) {
	if e.Path == "" {
		return "", errors.New("xlsx exporter requires a path")
	}
	f, err := Build(records)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if dir := filepath.Dir(e.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := f.SaveAs(e.Path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	slog.InfoContext(ctx, "Workbook exported", "path", e.Path, "records", len(records))
	return e.Path, nil
}

// Write streams the workbook to w.
func Write(w io.Writer, records []core.SalaryRecord) error {
	f, err := Build(records)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Build lays out the workbook in memory. Numeric columns are written as
// numbers so spreadsheet formulas work on them.
func Build(records []core.SalaryRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(RecordsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create records sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	if _, err := f.NewSheet(MonthlySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create monthly sheet: %w", err)
	}

	if err := writeRows(f, RecordsSheet, ports.RecordRows(records), textRecordColumns); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRows(f, MonthlySheet, ports.MonthlyRows(records), map[int]bool{0: true}); err != nil {
		f.Close()
		return nil, err
	}

	f.SetColWidth(RecordsSheet, "A", "A", 12)
	f.SetColWidth(RecordsSheet, "D", "H", 14)
	f.SetColWidth(RecordsSheet, "I", "I", 30)
	f.SetColWidth(RecordsSheet, "Q", "Q", 30)
	f.SetColWidth(MonthlySheet, "A", "F", 16)
	return f, nil
}

// Date, custom items and note stay text; every other record column is numeric.
var textRecordColumns = map[int]bool{0: true, 8: true, 16: true}

func writeRows(f *excelize.File, sheet string, rows [][]string, text map[int]bool) error {
	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = cellValue(v, i == 0 || text[j])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func cellValue(s string, text bool) interface{} {
	if text || s == "" {
		return s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	if d.IsInteger() {
		return d.IntPart()
	}
	f, _ := d.Float64()
	return f
}
