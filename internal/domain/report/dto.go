package report

import (
	"fmt"
	"strings"

	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/export"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/validator"
)

// MaxExportEmployees bounds a single export request
const MaxExportEmployees = 500

// ========================================
// MONTHLY EXPORT
// ========================================

// ExportRequest selects the month, format and employees of an export.
// An empty EmployeeIDs list means every active employee.
type ExportRequest struct {
	Month       string   `json:"month"`
	Format      string   `json:"format"`
	EmployeeIDs []string `json:"employee_ids"`
}

func (r *ExportRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, err := attendance.ParseYearMonth(r.Month); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		})
	}

	if _, err := export.ParseFormat(r.Format); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "format",
			Message: export.ErrUnsupportedFormat.Error(),
		})
	}

	if len(r.EmployeeIDs) > MaxExportEmployees {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_ids",
			Message: fmt.Sprintf("at most %d employees can be exported at once", MaxExportEmployees),
		})
	}
	for i, id := range r.EmployeeIDs {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("employee_ids[%d]", i),
				Message: "employee id must not be empty",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Export is a validated request with its employees resolved.
type Export struct {
	Month       attendance.YearMonth
	Format      export.Format
	EmployeeIDs []string
}

func (e Export) Filename() string {
	return e.Format.Filename(e.Month)
}

func (e Export) ContentType() string {
	return e.Format.ContentType()
}
