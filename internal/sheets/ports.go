package sheets

import (
	"context"

	"salesreport/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportWriter replaces the contents of a report destination with rows.
	ReportWriter interface {
		WriteReport(ctx context.Context, rows []core.CategorySummary) error
	}
)
