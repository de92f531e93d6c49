package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

var pdfColumnWidths = []float64{26, 26, 26, 26, 27, 27, 32}

// WritePDF renders one A4 page per employee report.
func WritePDF(w io.Writer, reports []EmployeeReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Monthly attendance report", true)
	pdf.SetAuthor("HourSync", true)
	pdf.SetCreationDate(time.Now())
	pdf.AliasNbPages("")
	// Core fonts are cp1252, names like "João" need translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	if len(reports) == 0 {
		pdf.AddPage()
		pdf.SetFont("Arial", "", 12)
		pdf.Cell(0, 10, "No employees selected")
	}

	for _, r := range reports {
		pdf.AddPage()

		pdf.SetFont("Arial", "B", 16)
		pdf.Cell(0, 10, "Monthly Attendance Report")
		pdf.Ln(12)

		pdf.SetFont("Arial", "", 11)
		header := []string{
			"Employee: " + r.Employee.Name,
			"Email: " + r.Employee.Email,
			"CPF: " + r.Employee.CPF,
			fmt.Sprintf("Role: %s    Sector: %s", r.Employee.Role, r.Employee.Sector),
			"Month: " + r.Report.Month.String(),
		}
		for _, line := range header {
			pdf.Cell(0, 6, tr(line))
			pdf.Ln(6)
		}
		pdf.Ln(4)

		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(220, 220, 220)
		for i, col := range reportColumns {
			pdf.CellFormat(pdfColumnWidths[i], 7, col, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		pdf.SetFillColor(242, 242, 242)
		for _, day := range r.Report.Days {
			for i, cell := range reportRow(day) {
				pdf.CellFormat(pdfColumnWidths[i], 6, cell, "1", 0, "C", day.IsWeekend, 0, "")
			}
			pdf.Ln(-1)
		}

		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 8, fmt.Sprintf("Total worked: %s (%s h)", r.Report.TotalDisplay(), r.Report.TotalHours().StringFixed(2)))
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}
