package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/hoursync/hoursync-backend-go/internal/domain/dashboard"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// GetRosterStats returns total, active, inactive and admin counts in single query
func (r *dashboardRepositoryImpl) GetRosterStats(ctx context.Context) (*dashboard.RosterStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'active') AS active_count,
			COUNT(*) FILTER (WHERE status = 'inactive') AS inactive_count,
			COUNT(*) FILTER (WHERE is_admin) AS admin_count
		FROM employees
	`

	var stats dashboard.RosterStats
	err := q.QueryRow(ctx, query).Scan(&stats.Total, &stats.Active, &stats.Inactive, &stats.Admins)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster stats: %w", err)
	}
	return &stats, nil
}

// GetDailyPunchStats counts filled slots of active employees on date in single query
func (r *dashboardRepositoryImpl) GetDailyPunchStats(ctx context.Context, date time.Time) (*dashboard.DailyPunchStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE d.morning_in IS NOT NULL OR d.morning_in_justification_url IS NOT NULL),
			COUNT(*) FILTER (WHERE d.morning_out IS NOT NULL OR d.morning_out_justification_url IS NOT NULL),
			COUNT(*) FILTER (WHERE d.afternoon_in IS NOT NULL OR d.afternoon_in_justification_url IS NOT NULL),
			COUNT(*) FILTER (WHERE d.afternoon_out IS NOT NULL OR d.afternoon_out_justification_url IS NOT NULL),
			COUNT(*) FILTER (WHERE d.morning_in_justification_url IS NOT NULL
				OR d.morning_out_justification_url IS NOT NULL
				OR d.afternoon_in_justification_url IS NOT NULL
				OR d.afternoon_out_justification_url IS NOT NULL),
			COUNT(*) FILTER (WHERE (d.morning_in IS NOT NULL OR d.morning_in_justification_url IS NOT NULL)
				AND (d.morning_out IS NOT NULL OR d.morning_out_justification_url IS NOT NULL)
				AND (d.afternoon_in IS NOT NULL OR d.afternoon_in_justification_url IS NOT NULL)
				AND (d.afternoon_out IS NOT NULL OR d.afternoon_out_justification_url IS NOT NULL))
		FROM day_logs d
		JOIN employees e ON e.id = d.employee_id
		WHERE d.date = $1::date AND e.status = 'active'
	`

	var stats dashboard.DailyPunchStats
	err := q.QueryRow(ctx, query, date).Scan(
		&stats.MorningIn, &stats.MorningOut, &stats.AfternoonIn, &stats.AfternoonOut,
		&stats.Justified, &stats.Complete,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily punch stats: %w", err)
	}
	return &stats, nil
}

// GetDailyLogs returns active employees left joined with their day log of date
func (r *dashboardRepositoryImpl) GetDailyLogs(ctx context.Context, date time.Time) ([]dashboard.DailyLogItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			e.id, e.name, e.is_admin,
			d.id, d.date,
			d.morning_in, d.morning_in_justification_url,
			d.morning_out, d.morning_out_justification_url,
			d.afternoon_in, d.afternoon_in_justification_url,
			d.afternoon_out, d.afternoon_out_justification_url
		FROM employees e
		LEFT JOIN day_logs d ON d.employee_id = e.id AND d.date = $1::date
		WHERE e.status = 'active'
		ORDER BY e.name ASC
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily logs: %w", err)
	}
	defer rows.Close()

	var items []dashboard.DailyLogItem
	for rows.Next() {
		var (
			item    dashboard.DailyLogItem
			logID   *string
			logDate *time.Time
			log     attendance.DayLog
		)
		if err := rows.Scan(
			&item.EmployeeID, &item.EmployeeName, &item.IsAdmin,
			&logID, &logDate,
			&log.MorningIn.Time, &log.MorningIn.JustificationURL,
			&log.MorningOut.Time, &log.MorningOut.JustificationURL,
			&log.AfternoonIn.Time, &log.AfternoonIn.JustificationURL,
			&log.AfternoonOut.Time, &log.AfternoonOut.JustificationURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily log: %w", err)
		}
		if logID != nil {
			log.ID = *logID
			log.EmployeeID = item.EmployeeID
			log.Date = *logDate
			item.Log = &log
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily logs: %w", err)
	}
	return items, nil
}
