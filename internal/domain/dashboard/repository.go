package dashboard

import (
	"context"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
)

// RosterStats combines all roster counts in a single query
type RosterStats struct {
	Total    int64
	Active   int64
	Inactive int64
	Admins   int64
}

// DailyPunchStats counts filled slots of active employees on one date
type DailyPunchStats struct {
	MorningIn    int64
	MorningOut   int64
	AfternoonIn  int64
	AfternoonOut int64
	Justified    int64
	Complete     int64
}

// DailyLogItem is an active employee with the day log of a date, if any
type DailyLogItem struct {
	EmployeeID   string
	EmployeeName string
	IsAdmin      bool
	Log          *attendance.DayLog
}

// DashboardRepository defines the interface for dashboard data access
type DashboardRepository interface {
	GetRosterStats(ctx context.Context) (*RosterStats, error)

	GetDailyPunchStats(ctx context.Context, date time.Time) (*DailyPunchStats, error)

	// GetDailyLogs lists every active employee with the day log of date, ordered by name
	GetDailyLogs(ctx context.Context, date time.Time) ([]DailyLogItem, error)
}
