package sheets

import (
	"context"

	"paybook/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// RecordExporter mirrors the full record list into a spreadsheet,
	// replacing whatever an earlier export wrote.
	RecordExporter interface {
		ExportRecords(ctx context.Context, records []core.SalaryRecord) (ref string, err error)
	}

	// RecordSource reads records back as CSV text accepted by the importer.
	RecordSource interface {
		ReadCSV(ctx context.Context) (string, error)
	}
)
