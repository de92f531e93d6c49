package dashboard

import "context"

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetDashboard returns roster counts and today's punches, loaded concurrently
	GetDashboard(ctx context.Context) (*DashboardResponse, error)

	// GetDailyAttendance returns every active employee's punches for a date, default today
	GetDailyAttendance(ctx context.Context, date string) (*DailyAttendanceResponse, error)
}
