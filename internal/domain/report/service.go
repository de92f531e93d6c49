package report

import (
	"context"
	"io"
)

// ReportService renders monthly attendance reports into downloadable documents
type ReportService interface {
	// ExportMonthly validates req, builds every requested report and writes one document to w.
	// Nothing is written when an error is returned before rendering starts.
	ExportMonthly(ctx context.Context, req ExportRequest, w io.Writer) (Export, error)
}
