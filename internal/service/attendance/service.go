package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/hoursync/hoursync-backend-go/internal/domain/employee"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/clock"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/sse"
	"github.com/hoursync/hoursync-backend-go/internal/service/file"
)

type AttendanceServiceImpl struct {
	engine       *attendance.Engine
	clock        clock.Clock
	dayLogRepo   attendance.DayLogRepository
	employeeRepo employee.EmployeeRepository
	fileService  file.FileService
	events       *sse.Hub
}

func NewAttendanceService(
	engine *attendance.Engine,
	clk clock.Clock,
	dayLogRepo attendance.DayLogRepository,
	employeeRepo employee.EmployeeRepository,
	fileService file.FileService,
	events *sse.Hub,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		engine:       engine,
		clock:        clk,
		dayLogRepo:   dayLogRepo,
		employeeRepo: employeeRepo,
		fileService:  fileService,
		events:       events,
	}
}

// calendarDate maps the local calendar date of t to UTC midnight, the form stored in day_logs.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClockIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, employeeID string) (attendance.PunchResponse, error) {
	return s.Punch(ctx, attendance.ClockRequest{EmployeeID: employeeID, Kind: attendance.KindClockIn})
}

// ClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, employeeID string) (attendance.PunchResponse, error) {
	return s.Punch(ctx, attendance.ClockRequest{EmployeeID: employeeID, Kind: attendance.KindClockOut})
}

// Punch implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Punch(ctx context.Context, req attendance.ClockRequest) (attendance.PunchResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.PunchResponse{}, err
	}

	emp, err := s.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.PunchResponse{}, err
	}

	now, err := s.clock.Now(ctx)
	if err != nil {
		return attendance.PunchResponse{}, fmt.Errorf("failed to read current time: %w", err)
	}

	log, err := s.loadDayLog(ctx, emp.ID, calendarDate(now))
	if err != nil {
		return attendance.PunchResponse{}, err
	}

	punchType, err := s.engine.ValidatePunch(now, &log, req.Kind)
	if err != nil {
		return attendance.PunchResponse{}, err
	}

	timeOfDay := attendance.FormatTimeOfDay(now)
	if err := log.Record(punchType, timeOfDay); err != nil {
		return attendance.PunchResponse{}, err
	}

	saved, err := s.dayLogRepo.Save(ctx, log)
	if err != nil {
		return attendance.PunchResponse{}, fmt.Errorf("failed to save punch: %w", err)
	}

	// A concurrent request filled the slot first, the stored value wins.
	if stored := saved.Slot(punchType); stored.Time == nil || *stored.Time != timeOfDay {
		return attendance.PunchResponse{}, attendance.ErrPunchAlreadyRecorded
	}

	slog.Info("Punch recorded", "employee_id", emp.ID, "punch_type", punchType, "time", timeOfDay)
	s.publish(emp, attendance.EventPunchRecorded, attendance.PunchEvent{
		Date:      saved.Date.Format("2006-01-02"),
		PunchType: punchType,
		Time:      timeOfDay,
	})

	return attendance.PunchResponse{
		PunchType: punchType,
		Time:      timeOfDay,
		DayLog:    attendance.NewDayLogResponse(saved),
	}, nil
}

// RecordPunch implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordPunch(ctx context.Context, req attendance.RecordPunchRequest) (attendance.DayLogResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayLogResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.DayLogResponse{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	punchType := attendance.PunchType(req.PunchType)
	timeOfDay, err := attendance.NormalizeTimeOfDay(req.Time)
	if err != nil {
		return attendance.DayLogResponse{}, err
	}

	log, err := s.loadDayLog(ctx, emp.ID, date)
	if err != nil {
		return attendance.DayLogResponse{}, err
	}
	if err := log.Record(punchType, timeOfDay); err != nil {
		return attendance.DayLogResponse{}, err
	}

	saved, err := s.dayLogRepo.Save(ctx, log)
	if err != nil {
		return attendance.DayLogResponse{}, fmt.Errorf("failed to save punch: %w", err)
	}
	if stored := saved.Slot(punchType); stored.Time == nil || *stored.Time != timeOfDay {
		return attendance.DayLogResponse{}, attendance.ErrSlotAlreadyFilled
	}

	s.publish(emp, attendance.EventPunchRecorded, attendance.PunchEvent{
		Date:      req.Date,
		PunchType: punchType,
		Time:      timeOfDay,
	})
	return attendance.NewDayLogResponse(saved), nil
}

// RecordJustification implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordJustification(ctx context.Context, req attendance.JustificationRequest) (attendance.DayLogResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayLogResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.DayLogResponse{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	punchType := attendance.PunchType(req.PunchType)

	log, err := s.loadDayLog(ctx, emp.ID, date)
	if err != nil {
		return attendance.DayLogResponse{}, err
	}
	if log.IsFilled(punchType) {
		return attendance.DayLogResponse{}, attendance.ErrSlotAlreadyFilled
	}

	var uploadedKey string
	url := ""
	if req.File != nil && req.FileHeader != nil {
		uploadedKey, err = s.fileService.UploadJustification(ctx, emp.ID, date, req.PunchType, req.File, req.FileHeader.Filename)
		if err != nil {
			return attendance.DayLogResponse{}, err
		}
		url, err = s.fileService.GetFileURL(ctx, uploadedKey, 0)
		if err != nil {
			s.discardUpload(ctx, uploadedKey)
			return attendance.DayLogResponse{}, err
		}
	} else {
		url = *req.JustificationURL
	}

	if err := log.Justify(punchType, url); err != nil {
		s.discardUpload(ctx, uploadedKey)
		return attendance.DayLogResponse{}, err
	}

	saved, err := s.dayLogRepo.Save(ctx, log)
	if err != nil {
		s.discardUpload(ctx, uploadedKey)
		return attendance.DayLogResponse{}, fmt.Errorf("failed to save justification: %w", err)
	}
	if stored := saved.Slot(punchType); !stored.IsJustified() || *stored.JustificationURL != url {
		s.discardUpload(ctx, uploadedKey)
		return attendance.DayLogResponse{}, attendance.ErrSlotAlreadyFilled
	}

	s.publish(emp, attendance.EventPunchRecorded, attendance.PunchEvent{
		Date:      req.Date,
		PunchType: punchType,
		Justified: true,
	})
	return attendance.NewDayLogResponse(saved), nil
}

// CorrectDayLog implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CorrectDayLog(ctx context.Context, req attendance.CorrectDayLogRequest) (attendance.DayLogResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayLogResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.DayLogResponse{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)

	slots := make(map[attendance.PunchType]*string)
	for p, v := range req.Slots() {
		if *v == "" {
			slots[p] = nil
			continue
		}
		normalized, err := attendance.NormalizeTimeOfDay(*v)
		if err != nil {
			return attendance.DayLogResponse{}, err
		}
		slots[p] = &normalized
	}

	saved, err := s.dayLogRepo.SetSlots(ctx, emp.ID, date, slots)
	if err != nil {
		return attendance.DayLogResponse{}, err
	}

	slog.Info("Day log corrected", "employee_id", emp.ID, "date", req.Date, "slots", len(slots))
	s.publish(emp, attendance.EventDayLogCorrected, attendance.PunchEvent{Date: req.Date})
	return attendance.NewDayLogResponse(saved), nil
}

// GetServerTime implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetServerTime(ctx context.Context) (attendance.ServerTimeResponse, error) {
	now, err := s.clock.Now(ctx)
	if err != nil {
		return attendance.ServerTimeResponse{}, fmt.Errorf("failed to read current time: %w", err)
	}
	return attendance.NewServerTimeResponse(now), nil
}

// GetToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context, employeeID string) (attendance.TodayResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return attendance.TodayResponse{}, err
	}

	now, err := s.clock.Now(ctx)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to read current time: %w", err)
	}

	log, err := s.loadDayLog(ctx, employeeID, calendarDate(now))
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	clockIn, clockInErr := s.engine.ValidatePunch(now, &log, attendance.KindClockIn)
	clockOut, clockOutErr := s.engine.ValidatePunch(now, &log, attendance.KindClockOut)

	return attendance.TodayResponse{
		ServerTimeResponse: attendance.NewServerTimeResponse(now),
		IsWeekend:          attendance.IsWeekend(now),
		DayLog:             attendance.NewDayLogResponse(log),
		ClockIn:            attendance.NewPunchOption(clockIn, clockInErr),
		ClockOut:           attendance.NewPunchOption(clockOut, clockOutErr),
		Windows:            attendance.NewWindowResponses(s.engine.Schedule()),
	}, nil
}

// GetMonthlyReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMonthlyReport(ctx context.Context, employeeID string, month string) (attendance.MonthlyReportResponse, error) {
	ym, err := attendance.ParseYearMonth(month)
	if err != nil {
		return attendance.MonthlyReportResponse{}, err
	}

	summary, report, err := s.BuildReport(ctx, employeeID, ym)
	if err != nil {
		return attendance.MonthlyReportResponse{}, err
	}
	return attendance.NewMonthlyReportResponse(summary, report), nil
}

// BuildReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) BuildReport(ctx context.Context, employeeID string, month attendance.YearMonth) (attendance.EmployeeSummary, attendance.MonthlyReport, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return attendance.EmployeeSummary{}, attendance.MonthlyReport{}, err
	}

	from, to := month.Range(time.UTC)
	logs, err := s.dayLogRepo.ListByRange(ctx, emp.ID, from, to)
	if err != nil {
		return attendance.EmployeeSummary{}, attendance.MonthlyReport{}, fmt.Errorf("failed to load day logs: %w", err)
	}

	summary := attendance.EmployeeSummary{
		ID:     emp.ID,
		Name:   emp.Name,
		Email:  emp.Email,
		CPF:    emp.CPF,
		Role:   emp.Role,
		Sector: emp.Sector,
	}
	return summary, attendance.BuildMonthlyReport(emp.ID, month, logs), nil
}

// ProvisionDailyLogs implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ProvisionDailyLogs(ctx context.Context, date time.Time) (int64, error) {
	if s.engine.Schedule().BlockWeekends && attendance.IsWeekend(date) {
		slog.Debug("Skipping day log provisioning on weekend", "date", date.Format("2006-01-02"))
		return 0, nil
	}

	ids, err := s.employeeRepo.ListActiveIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active employees: %w", err)
	}

	created, err := s.dayLogRepo.CreateEmpty(ctx, ids, calendarDate(date))
	if err != nil {
		return 0, err
	}
	slog.Info("Day logs provisioned", "date", date.Format("2006-01-02"), "employees", len(ids), "created", created)
	return created, nil
}

func (s *AttendanceServiceImpl) activeEmployee(ctx context.Context, id string) (employee.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.Employee{}, err
	}
	if !emp.IsActive() {
		return employee.Employee{}, attendance.ErrEmployeeInactive
	}
	return emp, nil
}

// loadDayLog returns the stored log for the date or a fresh empty one.
func (s *AttendanceServiceImpl) loadDayLog(ctx context.Context, employeeID string, date time.Time) (attendance.DayLog, error) {
	log, err := s.dayLogRepo.Get(ctx, employeeID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrDayLogNotFound) {
			return attendance.NewDayLog(employeeID, date), nil
		}
		return attendance.DayLog{}, err
	}
	return log, nil
}

func (s *AttendanceServiceImpl) discardUpload(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.fileService.DeleteFile(ctx, key); err != nil {
		slog.Error("Failed to delete orphaned justification", "key", key, "error", err)
	}
}

func (s *AttendanceServiceImpl) publish(emp employee.Employee, eventType string, event attendance.PunchEvent) {
	if s.events == nil {
		return
	}
	event.EmployeeID = emp.ID
	event.EmployeeName = emp.Name
	s.events.PublishToMany([]string{sse.AdminsChannel, emp.ID}, eventType, event)
}
