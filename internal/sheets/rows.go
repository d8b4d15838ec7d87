// Package sheets holds the spreadsheet ports and the row layout shared by
// every spreadsheet adapter.
package sheets

import (
	"strconv"

	"paybook/internal/core"
	"paybook/internal/csvcodec"
	"paybook/internal/stats"
)

// RecordRows returns the record header followed by one row per record,
// using the same columns as the CSV export.
func RecordRows(records []core.SalaryRecord) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, csvcodec.Header())
	for _, r := range records {
		rows = append(rows, csvcodec.Row(r))
	}
	return rows
}

var monthlyHeader = []string{
	"Month",
	"Records",
	"Base Salary Total",
	"Overtime Total",
	"Custom Items Total",
	"Total Salary",
}

// MonthlyRows returns the monthly statistics of records, oldest month first.
func MonthlyRows(records []core.SalaryRecord) [][]string {
	ms := stats.MonthlyStats(records, "", "", nil)
	rows := make([][]string, 0, len(ms)+1)
	rows = append(rows, append([]string(nil), monthlyHeader...))
	for _, m := range ms {
		rows = append(rows, []string{
			m.Month,
			strconv.Itoa(m.Records),
			m.BaseSalaryTotal.String(),
			m.OvertimeTotal.String(),
			m.CustomItemsTotal.String(),
			m.TotalSalary.String(),
		})
	}
	return rows
}
