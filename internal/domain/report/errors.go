package report

import "errors"

var (
	ErrNoEmployees            = errors.New("no employees to export")
	ErrTooManyEmployees       = errors.New("too many employees requested for a single export")
	ErrReportGenerationFailed = errors.New("failed to generate report")
)
