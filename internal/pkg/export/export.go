package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
)

var ErrUnsupportedFormat = errors.New("format must be one of: pdf, xlsx")

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPDF, "":
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// Filename builds the download name for a month, e.g. "attendance-2024-02.xlsx".
func (f Format) Filename(month attendance.YearMonth) string {
	return fmt.Sprintf("attendance-%s.%s", month, f)
}

// EmployeeReport is one employee's month, the unit every exporter renders.
type EmployeeReport struct {
	Employee attendance.EmployeeSummary
	Report   attendance.MonthlyReport
}

// Write renders reports in format f.
func Write(w io.Writer, f Format, reports []EmployeeReport) error {
	switch f {
	case FormatPDF:
		return WritePDF(w, reports)
	case FormatXLSX:
		return WriteXLSX(w, reports)
	}
	return ErrUnsupportedFormat
}

var reportColumns = []string{"Date", "Weekday", "Morning In", "Morning Out", "Afternoon In", "Afternoon Out", "Worked"}

// reportRow returns the table cells of one day in column order.
func reportRow(d attendance.ReportDay) []string {
	return []string{
		d.Date.Format("02/01/2006"),
		d.Weekday.String(),
		d.Display(attendance.PunchMorningIn),
		d.Display(attendance.PunchMorningOut),
		d.Display(attendance.PunchAfternoonIn),
		d.Display(attendance.PunchAfternoonOut),
		attendance.FormatWorked(d.WorkedSeconds),
	}
}
