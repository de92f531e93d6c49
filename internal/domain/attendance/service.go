package attendance

import (
	"context"
	"time"
)

// AttendanceService defines business logic for punches and reports
type AttendanceService interface {
	// ClockIn and ClockOut validate the current time against the schedule and record the inferred punch
	ClockIn(ctx context.Context, employeeID string) (PunchResponse, error)
	ClockOut(ctx context.Context, employeeID string) (PunchResponse, error)

	// Punch is the generic form of ClockIn/ClockOut
	Punch(ctx context.Context, req ClockRequest) (PunchResponse, error)

	// RecordPunch stores a time into a slot without window checks (admin)
	RecordPunch(ctx context.Context, req RecordPunchRequest) (DayLogResponse, error)

	// RecordJustification uploads a file and stores its URL into an empty slot
	RecordJustification(ctx context.Context, req JustificationRequest) (DayLogResponse, error)

	// CorrectDayLog overwrites slot times of a day (admin)
	CorrectDayLog(ctx context.Context, req CorrectDayLogRequest) (DayLogResponse, error)

	GetServerTime(ctx context.Context) (ServerTimeResponse, error)
	GetToday(ctx context.Context, employeeID string) (TodayResponse, error)

	// GetMonthlyReport builds the report for month "YYYY-MM"
	GetMonthlyReport(ctx context.Context, employeeID string, month string) (MonthlyReportResponse, error)

	// BuildReport returns the raw report used by exporters
	BuildReport(ctx context.Context, employeeID string, month YearMonth) (EmployeeSummary, MonthlyReport, error)

	// ProvisionDailyLogs creates empty logs for every active employee on weekdays
	ProvisionDailyLogs(ctx context.Context, date time.Time) (int64, error)
}
