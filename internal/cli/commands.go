package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"paybook/internal/core"
	"paybook/internal/log"
	ports "paybook/internal/sheets"
	"paybook/internal/sheets/xlsx"
	"paybook/internal/store"
)

// ErrUsage is returned for unknown commands and malformed arguments.
var ErrUsage = errors.New("usage error")

// SheetsClient is what the sheets command needs from a spreadsheet mirror.
type SheetsClient interface {
	ports.RecordExporter
	ports.RecordSource
}

// App runs subcommands against an open store.
type App struct {
	Store  *store.Store
	Out    io.Writer
	In     io.Reader
	Logger *log.Logger
	// Sheets opens the spreadsheet mirror on demand; nil disables the sheets command.
	Sheets func(ctx context.Context) (SheetsClient, error)
}

type command struct {
	name    string
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = []command{
	{"calc", "calculate a salary from draft flags without saving", (*App).calc},
	{"save", "calculate and save a salary record", (*App).save},
	{"list", "list saved records, most recent first", (*App).list},
	{"delete", "delete a record by id", (*App).delete},
	{"clear", "delete every record (requires -yes)", (*App).clear},
	{"rates", "show or set the overtime rates", (*App).rates},
	{"export", "export records as CSV", (*App).exportCSV},
	{"import", "import records from a CSV file ('-' for stdin)", (*App).importCSV},
	{"xlsx", "write records and monthly statistics to an Excel workbook", (*App).xlsx},
	{"sheets", "push records to or pull records from Google Sheets", (*App).sheets},
	{"stats", "show monthly statistics", (*App).stats},
	{"months", "list months that have records", (*App).months},
	{"chart", "show the chart series of a record, a month or a draft", (*App).chart},
}

// Usage prints the command list.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: paybook <command> [flags]")
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range commands {
		fmt.Fprintf(tw, "  %s\t%s\n", c.name, c.summary)
	}
	tw.Flush()
}

// Run dispatches args[0] to its command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		Usage(a.Out)
		return ErrUsage
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(a, ctx, args[1:])
		}
	}
	Usage(a.Out)
	return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// itemsFlag collects repeated -item name:amount values.
type itemsFlag []string

func (f *itemsFlag) String() string { return strings.Join(*f, ";") }

func (f *itemsFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

// draftFlags are the raw draft inputs; amounts are coerced, so anything
// that is not a non-negative number counts as zero.
type draftFlags struct {
	base  map[core.BaseField]*string
	hours map[core.Tier]*string
	items itemsFlag
}

func addDraftFlags(fs *flag.FlagSet) *draftFlags {
	d := &draftFlags{
		base: map[core.BaseField]*string{
			core.FieldBaseSalary:            fs.String("base", "", "base salary"),
			core.FieldProfessionalAllowance: fs.String("professional", "", "professional allowance"),
			core.FieldMealAllowance:         fs.String("meal", "", "meal allowance"),
			core.FieldNightShiftAllowance:   fs.String("night", "", "night shift allowance"),
			core.FieldCleanRoomAllowance:    fs.String("cleanroom", "", "clean room allowance"),
		},
		hours: map[core.Tier]*string{
			core.Overtime1: fs.String("ot1", "", "overtime 1 hours"),
			core.Overtime2: fs.String("ot2", "", "overtime 2 hours"),
			core.Overtime3: fs.String("ot3", "", "overtime 3 hours"),
		},
	}
	fs.Var(&d.items, "item", "custom item as name:amount (repeatable)")
	return d
}

func (d *draftFlags) apply(s *store.Store) error {
	s.ResetCurrentData()
	for _, field := range core.BaseFields() {
		if err := s.UpdateBaseField(field, core.CoerceAmount(*d.base[field])); err != nil {
			return err
		}
	}
	for _, tier := range []core.Tier{core.Overtime1, core.Overtime2, core.Overtime3} {
		if err := s.UpdateOvertimeField(tier, core.CoerceAmount(*d.hours[tier])); err != nil {
			return err
		}
	}
	for _, raw := range d.items {
		name, amount, ok := strings.Cut(raw, ":")
		if !ok {
			return fmt.Errorf("%w: custom item %q must look like name:amount", ErrUsage, raw)
		}
		if _, err := s.AddCustomItem(name, core.CoerceAmount(amount)); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) calc(ctx context.Context, args []string) error {
	fs := a.flagSet("calc")
	draft := addDraftFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := draft.apply(a.Store); err != nil {
		return err
	}
	c, _ := a.Store.Calculation()
	a.printCalculation(c)
	return nil
}

func (a *App) save(ctx context.Context, args []string) error {
	fs := a.flagSet("save")
	draft := addDraftFlags(fs)
	year := fs.Int("year", 0, "year of the record (1900-2100)")
	month := fs.Int("month", 0, "month of the record (1-12)")
	note := fs.String("note", "", "optional note")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := draft.apply(a.Store); err != nil {
		return err
	}
	rec, err := a.Store.SaveRecord(ctx, *year, *month, *note)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "saved %s %s total %s\n", rec.ID, rec.MonthKey(), core.FormatAmount(rec.TotalSalary))
	return nil
}

func (a *App) printCalculation(c core.Calculation) {
	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', tabwriter.AlignRight)
	rows := []struct {
		label string
		value string
	}{
		{"Base salary total", core.FormatAmount(c.BaseSalaryTotal)},
		{"Overtime 1", core.FormatAmount(c.Overtime1Amount)},
		{"Overtime 2", core.FormatAmount(c.Overtime2Amount)},
		{"Overtime 3", core.FormatAmount(c.Overtime3Amount)},
		{"Overtime total", core.FormatAmount(c.TotalOvertimeAmount)},
		{"Custom items total", core.FormatAmount(c.CustomItemsTotal)},
		{"Total salary", core.FormatAmount(c.TotalSalary)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t\n", r.label, r.value)
	}
	tw.Flush()
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	asJSON := fs.Bool("json", false, "print records as JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	records := a.Store.Records()
	if *asJSON {
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(a.Out, "no records")
		return nil
	}
	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMONTH\tTOTAL\tNOTE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.MonthKey(), core.FormatAmount(r.TotalSalary), r.Note)
	}
	return tw.Flush()
}

func (a *App) delete(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: delete takes exactly one record id", ErrUsage)
	}
	if err := a.Store.DeleteRecord(ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "deleted %s\n", fs.Arg(0))
	return nil
}

func (a *App) clear(ctx context.Context, args []string) error {
	fs := a.flagSet("clear")
	yes := fs.Bool("yes", false, "confirm deleting every record")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !*yes {
		return fmt.Errorf("%w: pass -yes to delete all %d records", ErrUsage, len(a.Store.Records()))
	}
	n := len(a.Store.Records())
	if err := a.Store.ClearAllRecords(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "cleared %d records\n", n)
	return nil
}

func (a *App) rates(ctx context.Context, args []string) error {
	fs := a.flagSet("rates")
	set := fs.String("set", "", "new rates as o1,o2,o3")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *set != "" {
		parts := strings.Split(*set, ",")
		if len(parts) != 3 {
			return fmt.Errorf("%w: -set wants three comma separated rates", ErrUsage)
		}
		r := core.OvertimeRates{
			Overtime1: core.CoerceAmount(parts[0]),
			Overtime2: core.CoerceAmount(parts[1]),
			Overtime3: core.CoerceAmount(parts[2]),
		}
		if err := a.Store.UpdateOvertimeRates(ctx, r); err != nil {
			return err
		}
	}
	r := a.Store.Rates()
	fmt.Fprintf(a.Out, "overtime1 %s\novertime2 %s\novertime3 %s\n", r.Overtime1, r.Overtime2, r.Overtime3)
	return nil
}

func (a *App) exportCSV(ctx context.Context, args []string) error {
	fs := a.flagSet("export")
	out := fs.String("o", "", "output file (default stdout)")
	if err := parse(fs, args); err != nil {
		return err
	}
	text, err := a.Store.ExportCSV()
	if err != nil {
		return err
	}
	if *out == "" {
		_, err := io.WriteString(a.Out, text)
		return err
	}
	if err := os.WriteFile(*out, []byte(text), 0644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Fprintf(a.Out, "exported %d records to %s\n", len(a.Store.Records()), *out)
	return nil
}

func (a *App) importCSV(ctx context.Context, args []string) error {
	fs := a.flagSet("import")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: import takes one file name or '-'", ErrUsage)
	}
	var (
		data []byte
		err  error
	)
	if fs.Arg(0) == "-" {
		data, err = io.ReadAll(a.In)
	} else {
		data, err = os.ReadFile(fs.Arg(0))
	}
	if err != nil {
		return fmt.Errorf("read CSV: %w", err)
	}
	return a.runImport(ctx, string(data))
}

func (a *App) runImport(ctx context.Context, text string) error {
	res, err := a.Store.ImportCSV(ctx, text)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, res.Message)
	if !res.Success {
		return errors.New("import failed")
	}
	return nil
}

func (a *App) xlsx(ctx context.Context, args []string) error {
	fs := a.flagSet("xlsx")
	out := fs.String("o", "paybook.xlsx", "output workbook")
	if err := parse(fs, args); err != nil {
		return err
	}
	ref, err := xlsx.NewExporter(*out).ExportRecords(ctx, a.Store.Records())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "wrote %s\n", ref)
	return nil
}

func (a *App) sheets(ctx context.Context, args []string) error {
	fs := a.flagSet("sheets")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 || (fs.Arg(0) != "push" && fs.Arg(0) != "pull") {
		return fmt.Errorf("%w: sheets takes push or pull", ErrUsage)
	}
	if a.Sheets == nil {
		return errors.New("Google Sheets is not configured (set GOOGLE_SPREADSHEET_ID)")
	}
	client, err := a.Sheets(ctx)
	if err != nil {
		return err
	}

	if fs.Arg(0) == "push" {
		ref, err := client.ExportRecords(ctx, a.Store.Records())
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "pushed %d records to %s\n", len(a.Store.Records()), ref)
		return nil
	}
	text, err := client.ReadCSV(ctx)
	if err != nil {
		return err
	}
	return a.runImport(ctx, text)
}

func (a *App) stats(ctx context.Context, args []string) error {
	fs := a.flagSet("stats")
	from := fs.String("from", "", "first month, YYYY-MM")
	to := fs.String("to", "", "last month, YYYY-MM")
	if err := parse(fs, args); err != nil {
		return err
	}
	ms := a.Store.MonthlyStats(*from, *to)
	if len(ms) == 0 {
		fmt.Fprintln(a.Out, "no records")
		return nil
	}
	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tRECORDS\tBASE\tOVERTIME\tITEMS\tTOTAL")
	for _, m := range ms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			m.Month,
			strconv.Itoa(m.Records),
			core.FormatAmount(m.BaseSalaryTotal),
			core.FormatAmount(m.OvertimeTotal),
			core.FormatAmount(m.CustomItemsTotal),
			core.FormatAmount(m.TotalSalary))
	}
	return tw.Flush()
}

func (a *App) months(ctx context.Context, args []string) error {
	fs := a.flagSet("months")
	if err := parse(fs, args); err != nil {
		return err
	}
	for _, m := range a.Store.AvailableMonths() {
		fmt.Fprintln(a.Out, m)
	}
	return nil
}

func (a *App) chart(ctx context.Context, args []string) error {
	fs := a.flagSet("chart")
	recordID := fs.String("record", "", "chart a saved record")
	month := fs.String("month", "", "chart every record of a month, YYYY-MM")
	draft := addDraftFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	var entries []core.ChartEntry
	switch {
	case *recordID != "" && *month != "":
		return fmt.Errorf("%w: use either -record or -month", ErrUsage)
	case *recordID != "":
		entries = a.Store.ChartData(*recordID)
	case *month != "":
		entries = a.Store.MonthlyChartData(*month)
	default:
		if err := draft.apply(a.Store); err != nil {
			return err
		}
		entries = a.Store.ChartData("")
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.Out, "nothing to chart")
		return nil
	}
	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, core.FormatAmount(e.Value), e.Color)
	}
	return tw.Flush()
}
