package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldRecordID    = "record_id"
	FieldItemID      = "item_id"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldTotalSalary = "total_salary"
	FieldRecords     = "records"
	FieldImported    = "imported"
	FieldSkipped     = "skipped"
	FieldBackend     = "backend"
	FieldPath        = "path"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentCSV     = "csv"
	ComponentAMQP    = "amqp"
	ComponentSheets  = "sheets"
	ComponentXLSX    = "xlsx"
	ComponentBackend = "backend"
	ComponentWorker  = "worker"
)

// Operations defines standard operation names
const (
	OpUpdate = "update"
	OpSave   = "save"
	OpDelete = "delete"
	OpClear  = "clear"
	OpReset  = "reset"
	OpRates  = "rates"
	OpImport = "import"
	OpExport = "export"
	OpLoad   = "load"
	OpNotify = "notify"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypePrecondition = "precondition_error"
	ErrorTypeNotFound     = "not_found_error"
	ErrorTypeStorage      = "storage_error"
	ErrorTypeNetwork      = "network_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

// WithRecord adds the identifying fields of a salary record
func (f LogFields) WithRecord(id string, year, month int, total string) LogFields {
	f[FieldRecordID] = id
	f[FieldYear] = year
	f[FieldMonth] = month
	f[FieldTotalSalary] = total
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
