// Package stats derives chart series and month buckets from saved records.
// Every function is stateless; callers pass the records and, optionally,
// a function that resolves a record to its calculation.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"paybook/internal/core"
)

// CalcFunc resolves a record to its calculation.
type CalcFunc func(core.SalaryRecord) core.Calculation

type series struct {
	name  string
	color string
	value func(core.Breakdown) decimal.Decimal
}

var chartSeries = []series{
	{"Base Salary", "#8b5cf6", func(b core.Breakdown) decimal.Decimal { return b.BaseSalary }},
	{"Professional Allowance", "#a78bfa", func(b core.Breakdown) decimal.Decimal { return b.ProfessionalAllowance }},
	{"Meal Allowance", "#c4b5fd", func(b core.Breakdown) decimal.Decimal { return b.MealAllowance }},
	{"Night Shift Allowance", "#ddd6fe", func(b core.Breakdown) decimal.Decimal { return b.NightShiftAllowance }},
	{"Clean Room Allowance", "#ede9fe", func(b core.Breakdown) decimal.Decimal { return b.CleanRoomAllowance }},
	{"Other Items", "#f3e8ff", func(b core.Breakdown) decimal.Decimal { return b.CustomItems }},
	{"Overtime 1", "#10b981", func(b core.Breakdown) decimal.Decimal { return b.Overtime1 }},
	{"Overtime 2", "#34d399", func(b core.Breakdown) decimal.Decimal { return b.Overtime2 }},
	{"Overtime 3", "#6ee7b7", func(b core.Breakdown) decimal.Decimal { return b.Overtime3 }},
}

func calcOrDefault(calc CalcFunc) CalcFunc {
	if calc == nil {
		return core.CalculateRecord
	}
	return calc
}

// ChartData turns a breakdown into one entry per positive component.
func ChartData(b core.Breakdown) []core.ChartEntry {
	out := make([]core.ChartEntry, 0, len(chartSeries))
	for _, s := range chartSeries {
		v := s.value(b)
		if !v.IsPositive() {
			continue
		}
		out = append(out, core.ChartEntry{Name: s.name, Value: v, Color: s.color})
	}
	return out
}

// MonthlyStats buckets records by YYYY-MM and sums their calculations.
// Empty bounds are open; non-empty bounds are inclusive string comparisons
// on the bucket key. The result is sorted ascending by month.
func MonthlyStats(records []core.SalaryRecord, startMonth, endMonth string, calc CalcFunc) []core.MonthlyStats {
	calc = calcOrDefault(calc)
	buckets := make(map[string]*core.MonthlyStats)

	for _, r := range records {
		key := r.MonthKey()
		if startMonth != "" && key < startMonth {
			continue
		}
		if endMonth != "" && key > endMonth {
			continue
		}
		c := calc(r)
		b, ok := buckets[key]
		if !ok {
			b = &core.MonthlyStats{Month: key}
			buckets[key] = b
		}
		b.TotalSalary = b.TotalSalary.Add(c.TotalSalary)
		b.BaseSalaryTotal = b.BaseSalaryTotal.Add(c.BaseSalaryTotal)
		b.OvertimeTotal = b.OvertimeTotal.Add(c.TotalOvertimeAmount)
		b.CustomItemsTotal = b.CustomItemsTotal.Add(c.CustomItemsTotal)
		b.Records++
	}

	out := make([]core.MonthlyStats, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// AvailableMonths returns the distinct bucket keys, most recent first.
func AvailableMonths(records []core.SalaryRecord) []string {
	seen := make(map[string]struct{}, len(records))
	months := make([]string, 0, len(records))
	for _, r := range records {
		key := r.MonthKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		months = append(months, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// MonthlyChartData aggregates every record of a bucket into one chart.
// A month without records yields an empty series.
func MonthlyChartData(records []core.SalaryRecord, month string, calc CalcFunc) []core.ChartEntry {
	calc = calcOrDefault(calc)
	var (
		agg   core.Breakdown
		found bool
	)
	for _, r := range records {
		if r.MonthKey() != month {
			continue
		}
		agg = agg.Add(calc(r).Breakdown)
		found = true
	}
	if !found {
		return []core.ChartEntry{}
	}
	return ChartData(agg)
}
