package log

import "github.com/shopspring/decimal"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRunID       = "run_id"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldPropertyID  = "property_id"
	FieldRecordID    = "record_id"
	FieldEntryID     = "entry_id"
	FieldType        = "type"
	FieldStatus      = "status"
	FieldFromStatus  = "from_status"
	FieldScore       = "score"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldTaxYear     = "tax_year"
	FieldQuarter     = "quarter"
	FieldDate        = "date"
	FieldCount       = "count"
	FieldSheetsRef   = "sheets_ref"
	FieldMessageID   = "message_id"
	FieldDurationMs  = "duration_ms"
	FieldRetryCount  = "retry_count"
	FieldBackendType = "backend_type"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentCompliance = "compliance"
	ComponentMoney      = "money"
	ComponentReport     = "report"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentSheets     = "sheets"
	ComponentBackend    = "backend"
	ComponentCLI        = "cli"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpList     = "list"
	OpUpdate   = "update"
	OpRefresh  = "refresh"
	OpScore    = "score"
	OpReport   = "report"
	OpExport   = "export"
	OpAppend   = "append"
	OpSync     = "sync"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Fields is a builder for structured log attributes.
type Fields map[string]any

func NewFields() Fields {
	return make(Fields)
}

func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

// WithError adds the error text; nil errors are skipped.
func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f Fields) WithProperty(id string) Fields {
	f[FieldPropertyID] = id
	return f
}

// WithEntry adds money entry fields. Amounts are logged as fixed two-place
// strings.
func (f Fields) WithEntry(id, category string, amount decimal.Decimal, taxYear string, quarter int) Fields {
	f[FieldEntryID] = id
	f[FieldCategory] = category
	f[FieldAmount] = amount.StringFixed(2)
	f[FieldTaxYear] = taxYear
	f[FieldQuarter] = quarter
	return f
}

func (f Fields) WithTransition(recordID, from, to string) Fields {
	f[FieldRecordID] = recordID
	f[FieldFromStatus] = from
	f[FieldStatus] = to
	return f
}

// ToSlice converts Fields to alternating key/value pairs for slog.
func (f Fields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
