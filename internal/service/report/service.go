package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/hoursync/hoursync-backend-go/internal/domain/employee"
	"github.com/hoursync/hoursync-backend-go/internal/domain/report"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/export"
	"golang.org/x/sync/errgroup"
)

// buildConcurrency bounds the reports loaded at once
const buildConcurrency = 4

type ReportServiceImpl struct {
	attendanceService attendance.AttendanceService
	employeeRepo      employee.EmployeeRepository
}

func NewReportService(attendanceService attendance.AttendanceService, employeeRepo employee.EmployeeRepository) report.ReportService {
	return &ReportServiceImpl{
		attendanceService: attendanceService,
		employeeRepo:      employeeRepo,
	}
}

// ExportMonthly implements report.ReportService.
func (s *ReportServiceImpl) ExportMonthly(ctx context.Context, req report.ExportRequest, w io.Writer) (report.Export, error) {
	if err := req.Validate(); err != nil {
		return report.Export{}, err
	}

	month, _ := attendance.ParseYearMonth(req.Month)
	format, _ := export.ParseFormat(req.Format)

	ids, err := s.resolveEmployees(ctx, req.EmployeeIDs)
	if err != nil {
		return report.Export{}, err
	}

	job := report.Export{Month: month, Format: format, EmployeeIDs: ids}
	started := time.Now()

	reports := make([]export.EmployeeReport, len(ids))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			summary, monthly, err := s.attendanceService.BuildReport(gCtx, id, month)
			if err != nil {
				return fmt.Errorf("failed to build report for employee %s: %w", id, err)
			}
			reports[i] = export.EmployeeReport{Employee: summary, Report: monthly}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report.Export{}, err
	}

	if err := export.Write(w, format, reports); err != nil {
		slog.Error("Failed to render report export", "month", month.String(), "format", format, "error", err)
		return report.Export{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
	}

	slog.Info("Report exported",
		"month", month.String(),
		"format", format,
		"employees", len(ids),
		"duration", time.Since(started),
	)
	return job, nil
}

// resolveEmployees deduplicates the requested ids, or returns every active employee when none are given.
func (s *ReportServiceImpl) resolveEmployees(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) == 0 {
		ids, err := s.employeeRepo.ListActiveIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list active employees: %w", err)
		}
		if len(ids) == 0 {
			return nil, report.ErrNoEmployees
		}
		if len(ids) > report.MaxExportEmployees {
			return nil, report.ErrTooManyEmployees
		}
		return ids, nil
	}

	seen := make(map[string]struct{}, len(requested))
	ids := make([]string, 0, len(requested))
	for _, id := range requested {
		id = strings.TrimSpace(id)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
