// Package store owns the saved salary records, the overtime rate
// configuration and the draft being edited.
//
// A Store is a single owned instance: open it once with Open and pass it to
// whatever needs it. Every mutation of records or rates writes the whole
// snapshot through the Persister before it becomes visible, so a failed write
// leaves the previous state intact. Draft edits are never persisted.
//
// The store is meant to be driven by one caller at a time and does no locking.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paybook/internal/cache"
	"paybook/internal/core"
	"paybook/internal/csvcodec"
	"paybook/internal/log"
	"paybook/internal/stats"
)

var (
	ErrNilPersister   = errors.New("store requires a persister")
	ErrNothingToSave  = errors.New("nothing to save: total salary must be greater than zero")
	ErrRecordNotFound = errors.New("record not found")
	ErrNoRecords      = errors.New("there are no records")
	ErrItemNotFound   = errors.New("custom item not found")
)

// Persister stores the snapshot of records and rates.
type Persister interface {
	// Load returns the stored snapshot; found is false when nothing was stored yet.
	Load(ctx context.Context) (snap core.Snapshot, found bool, err error)
	// Save replaces the stored snapshot as a whole.
	Save(ctx context.Context, snap core.Snapshot) error
}

// Notifier receives record events after they are persisted. Failures are
// logged and never undo the change.
type Notifier interface {
	Notify(ctx context.Context, ev core.RecordEvent) error
}

const defaultMemoSize = 512

type Store struct {
	persister Persister
	notifier  Notifier
	logger    *log.Logger
	newID     func() string
	now       func() time.Time
	memo      *cache.LRU[core.Calculation]
	defaults  core.OvertimeRates

	records []core.SalaryRecord
	rates   core.OvertimeRates
	draft   core.Draft
	calc    *core.Calculation
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentStore)
		}
	}
}

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) {
		if f != nil {
			s.newID = f
		}
	}
}

// WithDefaultRates sets the rates used when nothing has been persisted yet.
func WithDefaultRates(r core.OvertimeRates) Option {
	return func(s *Store) { s.defaults = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMemoSize bounds the number of memoized record calculations.
func WithMemoSize(n int) Option {
	return func(s *Store) { s.memo = cache.NewLRU[core.Calculation](n) }
}

// Open loads the persisted snapshot, or starts from defaults when there is none.
// The draft always starts empty and no calculation is present.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	if p == nil {
		return nil, ErrNilPersister
	}
	s := &Store{
		persister: p,
		logger:    log.Discard(),
		newID:     uuid.NewString,
		now:       time.Now,
		memo:      cache.NewLRU[core.Calculation](defaultMemoSize),
		defaults:  core.DefaultRates(),
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, found, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	s.rates = s.defaults
	if found {
		s.records = validRecords(ctx, s.logger, snap.Records)
		if err := snap.OvertimeRates.Validate(); err != nil {
			s.logger.WarnContext(ctx, "Persisted overtime rates are invalid, using defaults",
				log.FieldOperation, log.OpLoad, log.FieldError, err)
		} else {
			s.rates = snap.OvertimeRates
		}
	}
	s.draft = emptyDraft()

	s.logger.InfoContext(ctx, "Store opened",
		log.FieldOperation, log.OpLoad,
		log.FieldRecords, len(s.records),
		"found", found)
	return s, nil
}

// validRecords drops persisted records that fail validation.
func validRecords(ctx context.Context, logger *log.Logger, records []core.SalaryRecord) []core.SalaryRecord {
	out := make([]core.SalaryRecord, 0, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			logger.WarnContext(ctx, "Skipping invalid persisted record",
				log.FieldOperation, log.OpLoad,
				log.FieldRecordID, r.ID,
				log.FieldErrorType, log.ErrorTypeValidation,
				log.FieldError, err)
			continue
		}
		out = append(out, r)
	}
	return out
}

func emptyDraft() core.Draft {
	return core.Draft{Base: core.BaseSalary{CustomItems: []core.CustomItem{}}}
}

// Draft returns a copy of the current draft input.
func (s *Store) Draft() core.Draft {
	return core.Draft{Base: s.draft.Base.Clone(), Hours: s.draft.Hours}
}

// Calculation returns the last calculation; ok is false when none is present.
func (s *Store) Calculation() (calc core.Calculation, ok bool) {
	if s.calc == nil {
		return core.Calculation{}, false
	}
	return *s.calc, true
}

// Records returns the saved records, most recent first.
func (s *Store) Records() []core.SalaryRecord {
	out := make([]core.SalaryRecord, len(s.records))
	for i, r := range s.records {
		r.BaseSalary = r.BaseSalary.Clone()
		out[i] = r
	}
	return out
}

// Record looks up a saved record by id.
func (s *Store) Record(id string) (core.SalaryRecord, bool) {
	for _, r := range s.records {
		if r.ID == id {
			r.BaseSalary = r.BaseSalary.Clone()
			return r, true
		}
	}
	return core.SalaryRecord{}, false
}

func (s *Store) Rates() core.OvertimeRates {
	return s.rates
}

// Recompute runs the calculation engine on the draft and current rates.
func (s *Store) Recompute() core.Calculation {
	c := core.Calculate(s.draft.Base, s.draft.Hours, s.rates)
	s.calc = &c
	return c
}

// UpdateBaseField sets one fixed base-salary field of the draft.
// The value must already be a non-negative number.
func (s *Store) UpdateBaseField(field core.BaseField, value decimal.Decimal) error {
	if value.IsNegative() {
		return s.refuse(log.OpUpdate, fmt.Errorf("%w: %s", core.ErrNegativeAmount, field))
	}
	base := s.draft.Base.Clone()
	if err := base.Set(field, value); err != nil {
		return s.refuse(log.OpUpdate, err)
	}
	s.draft.Base = base
	s.Recompute()
	return nil
}

// UpdateOvertimeField sets the hours of one overtime tier of the draft.
func (s *Store) UpdateOvertimeField(tier core.Tier, hours decimal.Decimal) error {
	if hours.IsNegative() {
		return s.refuse(log.OpUpdate, fmt.Errorf("%w: %s", core.ErrNegativeAmount, tier))
	}
	h := s.draft.Hours
	if err := h.Set(tier, hours); err != nil {
		return s.refuse(log.OpUpdate, err)
	}
	s.draft.Hours = h
	s.Recompute()
	return nil
}

// UpdateOvertimeRates replaces the rate configuration as a whole. Any rate
// that is not strictly positive rejects the update and leaves state unchanged.
func (s *Store) UpdateOvertimeRates(ctx context.Context, rates core.OvertimeRates) error {
	if err := rates.Validate(); err != nil {
		return s.refuse(log.OpRates, err)
	}
	if err := s.commit(ctx, log.OpRates, s.records, rates); err != nil {
		return err
	}
	s.Recompute()
	s.logger.InfoContext(ctx, "Overtime rates updated",
		log.FieldOperation, log.OpRates,
		"overtime1", rates.Overtime1.String(),
		"overtime2", rates.Overtime2.String(),
		"overtime3", rates.Overtime3.String())
	s.notify(ctx, core.EventRatesUpdated, nil, 0)
	return nil
}

// AddCustomItem appends an item with a fresh id to the draft.
func (s *Store) AddCustomItem(name string, amount decimal.Decimal) (core.CustomItem, error) {
	item, err := core.NewCustomItem(s.newID(), name, amount)
	if err != nil {
		return core.CustomItem{}, s.refuse(log.OpUpdate, err)
	}
	base := s.draft.Base.Clone()
	base.CustomItems = append(base.CustomItems, item)
	s.draft.Base = base
	s.Recompute()
	return item, nil
}

// UpdateCustomItem renames and re-prices an existing draft item.
func (s *Store) UpdateCustomItem(id, name string, amount decimal.Decimal) error {
	idx := s.itemIndex(id)
	if idx < 0 {
		return s.refuse(log.OpUpdate, fmt.Errorf("%w: %s", ErrItemNotFound, id))
	}
	item, err := core.NewCustomItem(id, name, amount)
	if err != nil {
		return s.refuse(log.OpUpdate, err)
	}
	base := s.draft.Base.Clone()
	base.CustomItems[idx] = item
	s.draft.Base = base
	s.Recompute()
	return nil
}

func (s *Store) RemoveCustomItem(id string) error {
	idx := s.itemIndex(id)
	if idx < 0 {
		return s.refuse(log.OpUpdate, fmt.Errorf("%w: %s", ErrItemNotFound, id))
	}
	base := s.draft.Base.Clone()
	base.CustomItems = append(base.CustomItems[:idx], base.CustomItems[idx+1:]...)
	s.draft.Base = base
	s.Recompute()
	return nil
}

func (s *Store) itemIndex(id string) int {
	for i, item := range s.draft.Base.CustomItems {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// SaveRecord snapshots the draft, rates and calculation as a new record at
// the front of the list. The draft is left as it is.
func (s *Store) SaveRecord(ctx context.Context, year, month int, note string) (core.SalaryRecord, error) {
	if s.calc == nil || !s.calc.TotalSalary.IsPositive() {
		return core.SalaryRecord{}, s.refuse(log.OpSave, ErrNothingToSave)
	}
	if err := core.ValidatePeriod(year, month); err != nil {
		return core.SalaryRecord{}, s.refuse(log.OpSave, err)
	}

	rec := core.SalaryRecord{
		ID:            s.newID(),
		Date:          core.RecordDate(year, month),
		Year:          year,
		Month:         month,
		BaseSalary:    s.draft.Base.Clone(),
		OvertimeHours: s.draft.Hours,
		OvertimeRates: s.rates,
		TotalSalary:   s.calc.TotalSalary,
		Note:          note,
	}

	records := make([]core.SalaryRecord, 0, len(s.records)+1)
	records = append(records, rec)
	records = append(records, s.records...)
	if err := s.commit(ctx, log.OpSave, records, s.rates); err != nil {
		return core.SalaryRecord{}, err
	}

	s.logger.InfoContext(ctx, "Salary record saved",
		log.NewFields().WithOperation(log.OpSave).
			WithRecord(rec.ID, rec.Year, rec.Month, rec.TotalSalary.String()).ToSlice()...)
	s.notify(ctx, core.EventRecordSaved, []string{rec.ID}, 1)
	return rec, nil
}

func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	idx := -1
	for i, r := range s.records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s.refuse(log.OpDelete, fmt.Errorf("%w: %s", ErrRecordNotFound, id))
	}

	records := make([]core.SalaryRecord, 0, len(s.records)-1)
	records = append(records, s.records[:idx]...)
	records = append(records, s.records[idx+1:]...)
	if err := s.commit(ctx, log.OpDelete, records, s.rates); err != nil {
		return err
	}
	s.memo.Delete(id)

	s.logger.InfoContext(ctx, "Salary record deleted",
		log.FieldOperation, log.OpDelete, log.FieldRecordID, id)
	s.notify(ctx, core.EventRecordDeleted, []string{id}, 1)
	return nil
}

// ClearAllRecords removes every record. Confirmation is the caller's job.
func (s *Store) ClearAllRecords(ctx context.Context) error {
	if len(s.records) == 0 {
		return s.refuse(log.OpClear, ErrNoRecords)
	}
	removed := len(s.records)
	if err := s.commit(ctx, log.OpClear, []core.SalaryRecord{}, s.rates); err != nil {
		return err
	}
	s.memo.Purge()

	s.logger.InfoContext(ctx, "All salary records cleared",
		log.FieldOperation, log.OpClear, log.FieldRecords, removed)
	s.notify(ctx, core.EventRecordsCleared, nil, removed)
	return nil
}

// ResetCurrentData empties the draft and drops the calculation.
// Records and rates are untouched.
func (s *Store) ResetCurrentData() {
	s.draft = emptyDraft()
	s.calc = nil
	s.logger.Debug("Draft reset", log.FieldOperation, log.OpReset)
}

// ExportCSV renders all records, most recent first.
func (s *Store) ExportCSV() (string, error) {
	return csvcodec.Export(s.records)
}

// ImportCSV parses text and prepends every valid row to the records.
// Data problems are reported through the result; the error is only set when
// the parsed records could not be persisted, in which case nothing is added.
func (s *Store) ImportCSV(ctx context.Context, text string) (csvcodec.ImportResult, error) {
	im := csvcodec.Importer{Rates: s.rates, NewID: s.newID}
	res := im.Import(text)
	for _, rowErr := range res.Errors {
		s.logger.WarnContext(ctx, "CSV row skipped",
			log.FieldOperation, log.OpImport,
			"line", rowErr.Line,
			log.FieldError, rowErr.Reason)
	}
	if !res.Success {
		s.logger.WarnContext(ctx, "CSV import rejected",
			log.FieldOperation, log.OpImport,
			log.FieldErrorType, log.ErrorTypeValidation,
			log.FieldError, res.Message)
		return res, nil
	}

	records := make([]core.SalaryRecord, 0, len(res.Records)+len(s.records))
	records = append(records, res.Records...)
	records = append(records, s.records...)
	if err := s.commit(ctx, log.OpImport, records, s.rates); err != nil {
		return csvcodec.ImportResult{
			Message: "import failed: records could not be saved",
			Errors:  res.Errors,
		}, err
	}

	ids := make([]string, len(res.Records))
	for i, r := range res.Records {
		ids[i] = r.ID
	}
	s.logger.InfoContext(ctx, "CSV import completed",
		log.FieldOperation, log.OpImport,
		log.FieldImported, res.ImportedCount,
		log.FieldSkipped, len(res.Errors))
	s.notify(ctx, core.EventRecordsImport, ids, len(ids))
	return res, nil
}

// ChartData charts one saved record, or the live calculation when recordID
// is empty. Unknown ids and an absent calculation yield an empty series.
func (s *Store) ChartData(recordID string) []core.ChartEntry {
	if recordID == "" {
		if s.calc == nil {
			return []core.ChartEntry{}
		}
		return stats.ChartData(s.calc.Breakdown)
	}
	for _, r := range s.records {
		if r.ID == recordID {
			return stats.ChartData(s.calculate(r).Breakdown)
		}
	}
	return []core.ChartEntry{}
}

// MonthlyStats buckets records by month within the optional inclusive range.
func (s *Store) MonthlyStats(startMonth, endMonth string) []core.MonthlyStats {
	return stats.MonthlyStats(s.records, startMonth, endMonth, s.calculate)
}

func (s *Store) AvailableMonths() []string {
	return stats.AvailableMonths(s.records)
}

func (s *Store) MonthlyChartData(month string) []core.ChartEntry {
	return stats.MonthlyChartData(s.records, month, s.calculate)
}

// calculate memoizes per record; records never change after they are saved.
func (s *Store) calculate(r core.SalaryRecord) core.Calculation {
	return cache.Memoize[core.Calculation](s.memo, r.ID, func() core.Calculation {
		return core.CalculateRecord(r)
	})
}

func (s *Store) commit(ctx context.Context, op string, records []core.SalaryRecord, rates core.OvertimeRates) error {
	snap := core.Snapshot{Records: records, OvertimeRates: rates}
	if err := s.persister.Save(ctx, snap); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist snapshot",
			log.FieldOperation, op,
			log.FieldErrorType, log.ErrorTypeStorage,
			log.FieldError, err)
		return fmt.Errorf("persist snapshot: %w", err)
	}
	s.records = records
	s.rates = rates
	return nil
}

func (s *Store) refuse(op string, err error) error {
	kind := log.ErrorTypeValidation
	switch {
	case errors.Is(err, ErrRecordNotFound), errors.Is(err, ErrItemNotFound):
		kind = log.ErrorTypeNotFound
	case errors.Is(err, ErrNothingToSave), errors.Is(err, ErrNoRecords):
		kind = log.ErrorTypePrecondition
	}
	s.logger.Warn("Operation refused",
		log.FieldOperation, op,
		log.FieldErrorType, kind,
		log.FieldError, err)
	return err
}

func (s *Store) notify(ctx context.Context, typ core.EventType, ids []string, count int) {
	if s.notifier == nil {
		return
	}
	ev := core.RecordEvent{Type: typ, RecordIDs: ids, Count: count, Timestamp: s.now()}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish record event",
			log.FieldOperation, log.OpNotify,
			log.FieldErrorType, log.ErrorTypeNetwork,
			"event", string(typ),
			log.FieldError, err)
	}
}
