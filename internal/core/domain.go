package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Tier identifies one of the three configurable overtime categories.
type Tier int

const (
	Overtime1 Tier = iota + 1
	Overtime2
	Overtime3
)

// BaseField names one of the fixed base-salary amounts of a draft.
type BaseField string

const (
	FieldBaseSalary            BaseField = "baseSalary"
	FieldProfessionalAllowance BaseField = "professionalAllowance"
	FieldMealAllowance         BaseField = "mealAllowance"
	FieldNightShiftAllowance   BaseField = "nightShiftAllowance"
	FieldCleanRoomAllowance    BaseField = "cleanRoomAllowance"
)

type (
	CustomItem struct {
		ID     string          `json:"id"`
		Name   string          `json:"name" validate:"required,excludesall=:;"`
		Amount decimal.Decimal `json:"amount" validate:"gte=0"`
	}

	BaseSalary struct {
		BaseSalary            decimal.Decimal `json:"baseSalary" validate:"gte=0"`
		ProfessionalAllowance decimal.Decimal `json:"professionalAllowance" validate:"gte=0"`
		MealAllowance         decimal.Decimal `json:"mealAllowance" validate:"gte=0"`
		NightShiftAllowance   decimal.Decimal `json:"nightShiftAllowance" validate:"gte=0"`
		CleanRoomAllowance    decimal.Decimal `json:"cleanRoomAllowance" validate:"gte=0"`
		CustomItems           []CustomItem    `json:"customItems" validate:"dive"`
	}

	OvertimeHours struct {
		Overtime1 decimal.Decimal `json:"overtime1" validate:"gte=0"`
		Overtime2 decimal.Decimal `json:"overtime2" validate:"gte=0"`
		Overtime3 decimal.Decimal `json:"overtime3" validate:"gte=0"`
	}

	// OvertimeRates are hourly pay rates per tier.
	OvertimeRates struct {
		Overtime1 decimal.Decimal `json:"overtime1" validate:"gt=0"`
		Overtime2 decimal.Decimal `json:"overtime2" validate:"gt=0"`
		Overtime3 decimal.Decimal `json:"overtime3" validate:"gt=0"`
	}

	// Draft is the unsaved input currently being edited.
	Draft struct {
		Base  BaseSalary
		Hours OvertimeHours
	}

	// SalaryRecord is an immutable snapshot of a saved month.
	SalaryRecord struct {
		ID            string          `json:"id"`
		Date          string          `json:"date"`
		Year          int             `json:"year"`
		Month         int             `json:"month"`
		BaseSalary    BaseSalary      `json:"baseSalary"`
		OvertimeHours OvertimeHours   `json:"overtimeHours"`
		OvertimeRates OvertimeRates   `json:"overtimeRates"`
		TotalSalary   decimal.Decimal `json:"totalSalary"`
		Note          string          `json:"note,omitempty"`
	}

	// Snapshot is the persisted part of the store state.
	Snapshot struct {
		Records       []SalaryRecord `json:"records"`
		OvertimeRates OvertimeRates  `json:"overtimeRates"`
	}
)

var (
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrInvalidRate     = errors.New("overtime rates must be greater than zero")
	ErrInvalidItemName = errors.New("invalid custom item name")
	ErrInvalidPeriod   = errors.New("invalid year or month")
	ErrUnknownField    = errors.New("unknown salary field")
	ErrUnknownTier     = errors.New("unknown overtime tier")
)

// DefaultRates returns the built-in overtime rates (21, 28 and 42 per hour).
func DefaultRates() OvertimeRates {
	return OvertimeRates{
		Overtime1: decimal.NewFromInt(21),
		Overtime2: decimal.NewFromInt(28),
		Overtime3: decimal.NewFromInt(42),
	}
}

// IsValid reports whether the tier is one of the three known tiers.
func (t Tier) IsValid() bool {
	return t >= Overtime1 && t <= Overtime3
}

func (t Tier) String() string {
	return fmt.Sprintf("overtime%d", int(t))
}

// BaseFields lists the fixed base-salary fields in display order.
func BaseFields() []BaseField {
	return []BaseField{
		FieldBaseSalary,
		FieldProfessionalAllowance,
		FieldMealAllowance,
		FieldNightShiftAllowance,
		FieldCleanRoomAllowance,
	}
}

// Set assigns one fixed field. Custom items are not addressable here.
func (b *BaseSalary) Set(field BaseField, value decimal.Decimal) error {
	switch field {
	case FieldBaseSalary:
		b.BaseSalary = value
	case FieldProfessionalAllowance:
		b.ProfessionalAllowance = value
	case FieldMealAllowance:
		b.MealAllowance = value
	case FieldNightShiftAllowance:
		b.NightShiftAllowance = value
	case FieldCleanRoomAllowance:
		b.CleanRoomAllowance = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Clone returns a copy that shares no slice storage with b.
func (b BaseSalary) Clone() BaseSalary {
	out := b
	out.CustomItems = append([]CustomItem(nil), b.CustomItems...)
	return out
}

func (b BaseSalary) Validate() error {
	if err := validate.Struct(b); err != nil {
		return classify(err)
	}
	return nil
}

// Get returns the hours of a tier.
func (h OvertimeHours) Get(t Tier) decimal.Decimal {
	switch t {
	case Overtime1:
		return h.Overtime1
	case Overtime2:
		return h.Overtime2
	case Overtime3:
		return h.Overtime3
	}
	return decimal.Zero
}

func (h *OvertimeHours) Set(t Tier, value decimal.Decimal) error {
	switch t {
	case Overtime1:
		h.Overtime1 = value
	case Overtime2:
		h.Overtime2 = value
	case Overtime3:
		h.Overtime3 = value
	default:
		return fmt.Errorf("%w: %d", ErrUnknownTier, int(t))
	}
	return nil
}

func (h OvertimeHours) Validate() error {
	if err := validate.Struct(h); err != nil {
		return classify(err)
	}
	return nil
}

// Get returns the rate of a tier.
func (r OvertimeRates) Get(t Tier) decimal.Decimal {
	switch t {
	case Overtime1:
		return r.Overtime1
	case Overtime2:
		return r.Overtime2
	case Overtime3:
		return r.Overtime3
	}
	return decimal.Zero
}

func (r OvertimeRates) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRate, describe(err))
	}
	return nil
}

// NewCustomItem trims the name and validates both name and amount.
func NewCustomItem(id, name string, amount decimal.Decimal) (CustomItem, error) {
	item := CustomItem{ID: id, Name: strings.TrimSpace(name), Amount: amount}
	if err := validate.Struct(item); err != nil {
		return CustomItem{}, classify(err)
	}
	return item, nil
}

// ValidatePeriod checks the year and month bounds shared by save and import.
func ValidatePeriod(year, month int) error {
	if year < 1900 || year > 2100 {
		return fmt.Errorf("%w: year %d must be between 1900 and 2100", ErrInvalidPeriod, year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d must be between 1 and 12", ErrInvalidPeriod, month)
	}
	return nil
}

// RecordDate formats the first day of a month as YYYY-MM-01.
func RecordDate(year, month int) string {
	return fmt.Sprintf("%04d-%02d-01", year, month)
}

// MonthKey formats a bucket key as YYYY-MM.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// MonthKey returns the bucket key of the record, derived from Year and Month.
func (r SalaryRecord) MonthKey() string {
	return MonthKey(r.Year, r.Month)
}

// Validate checks the period and every amount, hour count and rate of the record.
func (r SalaryRecord) Validate() error {
	if err := ValidatePeriod(r.Year, r.Month); err != nil {
		return err
	}
	if err := r.BaseSalary.Validate(); err != nil {
		return err
	}
	if err := r.OvertimeHours.Validate(); err != nil {
		return err
	}
	return r.OvertimeRates.Validate()
}
