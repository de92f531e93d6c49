package export

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

// WriteXLSX renders a summary sheet plus one sheet per employee report.
func WriteXLSX(w io.Writer, reports []EmployeeReport) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DCDCDC"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	weekendStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F2F2F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	summaryHeader := []interface{}{"Employee", "Email", "CPF", "Role", "Sector", "Month", "Total", "Total Hours"}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "H1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "H", 18); err != nil {
		return err
	}

	used := map[string]int{summarySheet: 1}
	for i, r := range reports {
		row := []interface{}{
			r.Employee.Name,
			r.Employee.Email,
			r.Employee.CPF,
			r.Employee.Role,
			r.Employee.Sector,
			r.Report.Month.String(),
			r.Report.TotalDisplay(),
			r.Report.TotalHours().InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}

		sheet := sheetName(r.Employee.Name, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeEmployeeSheet(f, sheet, r, headerStyle, weekendStyle); err != nil {
			return fmt.Errorf("failed to write sheet for employee %s: %w", r.Employee.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeEmployeeSheet(f *excelize.File, sheet string, r EmployeeReport, headerStyle, weekendStyle int) error {
	if err := f.SetCellValue(sheet, "A1", r.Employee.Name); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A2", r.Report.Month.String()); err != nil {
		return err
	}

	header := make([]interface{}, len(reportColumns))
	for i, col := range reportColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A4", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A4", "G4", headerStyle); err != nil {
		return err
	}

	row := 5
	for _, day := range r.Report.Days {
		cells := reportRow(day)
		values := make([]interface{}, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return err
		}
		if day.IsWeekend {
			end, _ := excelize.CoordinatesToCellName(len(cells), row)
			if err := f.SetCellStyle(sheet, start, end, weekendStyle); err != nil {
				return err
			}
		}
		row++
	}

	totalLabel, _ := excelize.CoordinatesToCellName(1, row+1)
	totalValue, _ := excelize.CoordinatesToCellName(len(reportColumns), row+1)
	if err := f.SetCellValue(sheet, totalLabel, "Total"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, totalValue, r.Report.TotalDisplay()); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "G", 15)
}

// sheetName derives a unique worksheet name within excel's 31 character limit.
func sheetName(name string, used map[string]int) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "Employee"
	}
	if runes := []rune(name); len(runes) > 28 {
		name = string(runes[:28])
	}

	base := name
	used[base]++
	if n := used[base]; n > 1 {
		name = fmt.Sprintf("%s %d", base, n)
	}
	return name
}
