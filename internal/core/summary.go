package core

import "github.com/shopspring/decimal"

// ChartEntry is one named slice of a salary chart.
type ChartEntry struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
	Color string          `json:"color,omitempty"`
}

// MonthlyStats aggregates every record of one YYYY-MM bucket.
type MonthlyStats struct {
	Month            string          `json:"month"`
	TotalSalary      decimal.Decimal `json:"totalSalary"`
	BaseSalaryTotal  decimal.Decimal `json:"baseSalaryTotal"`
	OvertimeTotal    decimal.Decimal `json:"overtimeTotal"`
	CustomItemsTotal decimal.Decimal `json:"customItemsTotal"`
	Records          int             `json:"records"`
}
