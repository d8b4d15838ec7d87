package csvcodec

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"paybook/internal/core"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// RowError describes why a single data row was skipped.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Reason)
}

// ImportResult reports the outcome of Import. Row failures never abort the
// whole import; Success is false only when nothing could be parsed.
type ImportResult struct {
	Success       bool                `json:"success"`
	Message       string              `json:"message"`
	ImportedCount int                 `json:"importedCount,omitempty"`
	Errors        []RowError          `json:"errors,omitempty"`
	Records       []core.SalaryRecord `json:"-"`
}

// Importer turns CSV text into fresh records.
type Importer struct {
	// Rates fill in rate cells that are empty or missing.
	Rates core.OvertimeRates
	// NewID generates ids for records and custom items; imported ids are never reused.
	NewID func() string
}

// Import parses text with the importer's fallback rates and id generator.
// Every accepted record has its total recomputed from its own fields.
func (im Importer) Import(text string) ImportResult {
	if strings.TrimSpace(text) == "" {
		return ImportResult{Message: "CSV content is empty"}
	}

	text = strings.TrimPrefix(text, BOM)
	lines := splitLines(text)
	if len(lines) < 2 {
		return ImportResult{Message: "invalid CSV: a header row and at least one data row are required"}
	}

	head, err := parseLine(lines[0].text)
	if err != nil {
		return ImportResult{Message: fmt.Sprintf("invalid CSV header: %v", err)}
	}
	if len(head) < MinColumns {
		return ImportResult{Message: fmt.Sprintf("invalid CSV: header has %d columns, at least %d required", len(head), MinColumns)}
	}

	var (
		records []core.SalaryRecord
		errs    []RowError
	)
	for _, l := range lines[1:] {
		rec, err := im.parseRow(l.text)
		if err != nil {
			errs = append(errs, RowError{Line: l.number, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return ImportResult{
			Message: "import failed: " + joinErrors(errs),
			Errors:  errs,
		}
	}

	msg := fmt.Sprintf("imported %d records", len(records))
	if len(errs) > 0 {
		msg = fmt.Sprintf("imported %d records, %d rows skipped: %s", len(records), len(errs), joinErrors(errs))
	}
	return ImportResult{
		Success:       true,
		Message:       msg,
		ImportedCount: len(records),
		Errors:        errs,
		Records:       records,
	}
}

type line struct {
	number int
	text   string
}

// splitLines drops blank lines but keeps the original 1-based line numbers.
func splitLines(text string) []line {
	raw := strings.Split(text, "\n")
	out := make([]line, 0, len(raw))
	for i, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, line{number: i + 1, text: l})
	}
	return out
}

func parseLine(s string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(s))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.Read()
}

func (im Importer) parseRow(text string) (core.SalaryRecord, error) {
	fields, err := parseLine(text)
	if err != nil {
		return core.SalaryRecord{}, fmt.Errorf("malformed CSV line: %v", err)
	}
	if len(fields) < MinColumns {
		return core.SalaryRecord{}, fmt.Errorf("expected at least %d columns, got %d", MinColumns, len(fields))
	}
	cell := func(i int) string {
		if i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	date := cell(colDate)
	if !datePattern.MatchString(date) {
		return core.SalaryRecord{}, fmt.Errorf("date %q must be formatted as YYYY-MM-DD", date)
	}
	year, err := strconv.Atoi(cell(colYear))
	if err != nil || year < 1900 || year > 2100 {
		return core.SalaryRecord{}, fmt.Errorf("year %q must be between 1900 and 2100", cell(colYear))
	}
	month, err := strconv.Atoi(cell(colMonth))
	if err != nil || month < 1 || month > 12 {
		return core.SalaryRecord{}, fmt.Errorf("month %q must be between 1 and 12", cell(colMonth))
	}

	p := &cellParser{cell: cell}
	base := core.BaseSalary{
		BaseSalary:            p.amount(colBaseSalary),
		ProfessionalAllowance: p.amount(colProfessionalAllowance),
		MealAllowance:         p.amount(colMealAllowance),
		NightShiftAllowance:   p.amount(colNightShiftAllowance),
		CleanRoomAllowance:    p.amount(colCleanRoomAllowance),
	}
	hours := core.OvertimeHours{
		Overtime1: p.amount(colOvertime1Hours),
		Overtime2: p.amount(colOvertime2Hours),
		Overtime3: p.amount(colOvertime3Hours),
	}
	rates := core.OvertimeRates{
		Overtime1: p.rate(colOvertime1Rate, im.Rates.Overtime1),
		Overtime2: p.rate(colOvertime2Rate, im.Rates.Overtime2),
		Overtime3: p.rate(colOvertime3Rate, im.Rates.Overtime3),
	}
	// The imported total is checked but never trusted.
	p.amount(colTotalSalary)
	if p.err != nil {
		return core.SalaryRecord{}, p.err
	}

	items, err := im.parseCustomItems(cell(colCustomItems))
	if err != nil {
		return core.SalaryRecord{}, err
	}
	base.CustomItems = items

	note := ""
	if colNote < len(fields) {
		note = fields[colNote]
	}

	rec := core.SalaryRecord{
		ID:            im.NewID(),
		Date:          core.RecordDate(year, month),
		Year:          year,
		Month:         month,
		BaseSalary:    base,
		OvertimeHours: hours,
		OvertimeRates: rates,
		Note:          note,
	}
	if err := rec.Validate(); err != nil {
		return core.SalaryRecord{}, err
	}
	rec.TotalSalary = core.CalculateRecord(rec).TotalSalary
	return rec, nil
}

// parseCustomItems reads "name:amount;name:amount".
func (im Importer) parseCustomItems(s string) ([]core.CustomItem, error) {
	if s == "" {
		return nil, nil
	}
	const want = `custom items must look like "name:amount;name:amount"`
	pairs := strings.Split(s, ";")
	items := make([]core.CustomItem, 0, len(pairs))
	for _, pair := range pairs {
		parts := strings.Split(pair, ":")
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("%s, got %q", want, pair)
		}
		amount, err := core.ParseAmount(parts[1])
		if err != nil {
			return nil, fmt.Errorf("custom item %q: amount must be a non-negative number", strings.TrimSpace(parts[0]))
		}
		item, err := core.NewCustomItem(im.NewID(), parts[0], amount)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", want, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// cellParser keeps the first numeric failure of a row.
type cellParser struct {
	cell func(int) string
	err  error
}

func (p *cellParser) amount(col int) decimal.Decimal {
	return p.parse(col, decimal.Zero)
}

// rate falls back to the current rate for empty and zero cells.
func (p *cellParser) rate(col int, fallback decimal.Decimal) decimal.Decimal {
	v := p.parse(col, fallback)
	if p.err == nil && v.IsZero() {
		return fallback
	}
	return v
}

func (p *cellParser) parse(col int, empty decimal.Decimal) decimal.Decimal {
	if p.err != nil {
		return decimal.Zero
	}
	s := p.cell(col)
	if s == "" {
		return empty
	}
	v, err := core.ParseAmount(s)
	if err != nil {
		p.err = fmt.Errorf("%s must be a non-negative number, got %q", header[col], s)
		return decimal.Zero
	}
	return v
}

func joinErrors(errs []RowError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
