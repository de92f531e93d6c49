package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/clock"
)

const ProvisionDailyLogsJob = "provision_daily_logs"

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	clock             clock.Clock
	loc               *time.Location
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, clk clock.Clock, loc *time.Location) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		clock:             clk,
		loc:               loc,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, provisionSpec string) error {
	return scheduler.AddJob(ProvisionDailyLogsJob, provisionSpec, j.ProvisionDailyLogs)
}

// ProvisionDailyLogs creates today's empty day logs for every active employee
func (j *AttendanceJobs) ProvisionDailyLogs(ctx context.Context) error {
	now, err := j.clock.Now(ctx)
	if err != nil {
		return fmt.Errorf("failed to read clock: %w", err)
	}
	today := now.In(j.loc)

	created, err := j.attendanceService.ProvisionDailyLogs(ctx, today)
	if err != nil {
		return err
	}

	slog.Info("Cron: Daily logs provisioned", "date", today.Format("2006-01-02"), "created", created)
	return nil
}
