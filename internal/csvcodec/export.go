// Package csvcodec reads and writes salary records as CSV text.
//
// The format is UTF-8 with a leading BOM, comma separated, RFC 4180 quoting,
// a fixed 17 column header and exactly one record per line.
package csvcodec

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"paybook/internal/core"
)

// BOM lets spreadsheet tools detect the encoding.
const BOM = "\uFEFF"

// Column positions of the fixed header.
const (
	colDate = iota
	colYear
	colMonth
	colBaseSalary
	colProfessionalAllowance
	colMealAllowance
	colNightShiftAllowance
	colCleanRoomAllowance
	colCustomItems
	colOvertime1Hours
	colOvertime1Rate
	colOvertime2Hours
	colOvertime2Rate
	colOvertime3Hours
	colOvertime3Rate
	colTotalSalary
	colNote
	columnCount
)

// MinColumns is the fewest columns a header or data row may carry.
const MinColumns = 14

var header = []string{
	"Date",
	"Year",
	"Month",
	"Base Salary",
	"Professional Allowance",
	"Meal Allowance",
	"Night Shift Allowance",
	"Clean Room Allowance",
	"Custom Items",
	"Overtime 1 Hours",
	"Overtime 1 Rate",
	"Overtime 2 Hours",
	"Overtime 2 Rate",
	"Overtime 3 Hours",
	"Overtime 3 Rate",
	"Total Salary",
	"Note",
}

// Header returns a copy of the column names in export order.
func Header() []string {
	return append([]string(nil), header...)
}

// Row renders one record as the 17 export cells.
func Row(r core.SalaryRecord) []string {
	row := make([]string, columnCount)
	row[colDate] = r.Date
	row[colYear] = strconv.Itoa(r.Year)
	row[colMonth] = strconv.Itoa(r.Month)
	row[colBaseSalary] = r.BaseSalary.BaseSalary.String()
	row[colProfessionalAllowance] = r.BaseSalary.ProfessionalAllowance.String()
	row[colMealAllowance] = r.BaseSalary.MealAllowance.String()
	row[colNightShiftAllowance] = r.BaseSalary.NightShiftAllowance.String()
	row[colCleanRoomAllowance] = r.BaseSalary.CleanRoomAllowance.String()
	row[colCustomItems] = FormatCustomItems(r.BaseSalary.CustomItems)
	row[colOvertime1Hours] = r.OvertimeHours.Overtime1.String()
	row[colOvertime1Rate] = r.OvertimeRates.Overtime1.String()
	row[colOvertime2Hours] = r.OvertimeHours.Overtime2.String()
	row[colOvertime2Rate] = r.OvertimeRates.Overtime2.String()
	row[colOvertime3Hours] = r.OvertimeHours.Overtime3.String()
	row[colOvertime3Rate] = r.OvertimeRates.Overtime3.String()
	row[colTotalSalary] = r.TotalSalary.String()
	row[colNote] = flattenLines(r.Note)
	return row
}

// FormatCustomItems joins items as name:amount pairs separated by ';'.
func FormatCustomItems(items []core.CustomItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Name+":"+item.Amount.String())
	}
	return strings.Join(parts, ";")
}

// Export renders the header and one line per record, in the given order.
func Export(records []core.SalaryRecord) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, r := range records {
		if err := w.Write(Row(r)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// flattenLines keeps free text on a single CSV line.
func flattenLines(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
