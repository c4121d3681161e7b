package sheets

import (
	"context"

	"saldo/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportWriter renders a year's series and metrics somewhere a human reads them.
	ReportWriter interface {
		WriteYearReport(ctx context.Context, report core.YearReport) error
	}
)
