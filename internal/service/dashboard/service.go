package dashboard

import (
	"context"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/hoursync/hoursync-backend-go/internal/domain/dashboard"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/clock"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	clock         clock.Clock
	blockWeekends bool
}

func NewDashboardService(repo dashboard.DashboardRepository, clk clock.Clock, schedule attendance.Schedule) dashboard.DashboardService {
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		clock:               clk,
		blockWeekends:       schedule.BlockWeekends,
	}
}

// today returns the trusted local date as UTC midnight.
func (s *DashboardServiceImpl) today(ctx context.Context) (time.Time, error) {
	now, err := s.clock.Now(ctx)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// parseDate parses YYYY-MM-DD format, defaults to today
func (s *DashboardServiceImpl) parseDate(ctx context.Context, date string) (time.Time, error) {
	if date == "" {
		return s.today(ctx)
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, validator.ValidationErrors{{Field: "date", Message: "must be in YYYY-MM-DD format"}}
	}
	return parsed, nil
}

// GetDashboard loads roster counts and today's punch counts in parallel
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context) (*dashboard.DashboardResponse, error) {
	date, err := s.today(ctx)
	if err != nil {
		return nil, err
	}

	var (
		roster  *dashboard.RosterStats
		punches *dashboard.DailyPunchStats
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		roster, err = s.DashboardRepository.GetRosterStats(gCtx)
		return err
	})

	g.Go(func() error {
		var err error
		punches, err = s.DashboardRepository.GetDailyPunchStats(gCtx, date)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dashboard.DashboardResponse{
		Roster:     dashboard.NewRosterResponse(*roster),
		Attendance: s.dailyAttendance(date, *roster, *punches, nil),
	}, nil
}

// GetDailyAttendance lists every active employee's punches on date
func (s *DashboardServiceImpl) GetDailyAttendance(ctx context.Context, date string) (*dashboard.DailyAttendanceResponse, error) {
	day, err := s.parseDate(ctx, date)
	if err != nil {
		return nil, err
	}

	var (
		roster  *dashboard.RosterStats
		punches *dashboard.DailyPunchStats
		items   []dashboard.DailyLogItem
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		roster, err = s.DashboardRepository.GetRosterStats(gCtx)
		return err
	})

	g.Go(func() error {
		var err error
		punches, err = s.DashboardRepository.GetDailyPunchStats(gCtx, day)
		return err
	})

	g.Go(func() error {
		var err error
		items, err = s.DashboardRepository.GetDailyLogs(gCtx, day)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	employees := make([]dashboard.DailyLogResponse, 0, len(items))
	for _, item := range items {
		employees = append(employees, dashboard.NewDailyLogResponse(item))
	}

	resp := s.dailyAttendance(day, *roster, *punches, employees)
	return &resp, nil
}

func (s *DashboardServiceImpl) dailyAttendance(
	date time.Time,
	roster dashboard.RosterStats,
	punches dashboard.DailyPunchStats,
	employees []dashboard.DailyLogResponse,
) dashboard.DailyAttendanceResponse {
	weekend := attendance.IsWeekend(date)
	expected := roster.Active
	if weekend && s.blockWeekends {
		expected = 0
	}
	missing := expected - punches.MorningIn
	if missing < 0 {
		missing = 0
	}

	return dashboard.DailyAttendanceResponse{
		Date:      date.Format("2006-01-02"),
		IsWeekend: weekend,
		Expected:  expected,
		Counts: dashboard.PunchCountsResponse{
			MorningIn:    punches.MorningIn,
			MorningOut:   punches.MorningOut,
			AfternoonIn:  punches.AfternoonIn,
			AfternoonOut: punches.AfternoonOut,
			Justified:    punches.Justified,
			Complete:     punches.Complete,
			Missing:      missing,
		},
		Employees: employees,
	}
}
