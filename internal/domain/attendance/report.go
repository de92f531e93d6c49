package attendance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EmptyLabel     = "--:--"
	JustifiedLabel = "Justified"
)

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Days returns the number of days in the month.
func (ym YearMonth) Days() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Range returns the first and last date of the month in loc.
func (ym YearMonth) Range(loc *time.Location) (time.Time, time.Time) {
	first := time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, loc)
	last := time.Date(ym.Year, ym.Month, ym.Days(), 0, 0, 0, 0, loc)
	return first, last
}

// ReportDay is one calendar date of a monthly report.
type ReportDay struct {
	Date          time.Time
	Weekday       time.Weekday
	IsWeekend     bool
	Slots         map[PunchType]string
	Justified     map[PunchType]bool
	WorkedSeconds int
	Log           *DayLog
}

// Display returns the rendered value of a slot.
func (d ReportDay) Display(p PunchType) string {
	if v, ok := d.Slots[p]; ok {
		return v
	}
	return EmptyLabel
}

// MonthlyReport is computed on demand and never persisted.
type MonthlyReport struct {
	EmployeeID   string
	Month        YearMonth
	Days         []ReportDay
	TotalSeconds int
}

func (r MonthlyReport) TotalDisplay() string {
	return FormatWorked(r.TotalSeconds)
}

func (r MonthlyReport) TotalHours() decimal.Decimal {
	return DecimalHours(r.TotalSeconds)
}

// WeekendLabel is the text shown in every slot of a weekend date.
func WeekendLabel(wd time.Weekday) string {
	return wd.String()
}

// BuildMonthlyReport merges stored logs into every calendar date of month.
// Logs outside the month are ignored. Weekend dates contribute nothing even
// when a stored log holds times.
func BuildMonthlyReport(employeeID string, month YearMonth, logs []DayLog) MonthlyReport {
	byDay := make(map[int]*DayLog, len(logs))
	for i := range logs {
		y, m, d := logs[i].Date.Date()
		if y != month.Year || m != month.Month {
			continue
		}
		byDay[d] = &logs[i]
	}

	report := MonthlyReport{
		EmployeeID: employeeID,
		Month:      month,
		Days:       make([]ReportDay, 0, month.Days()),
	}

	for day := 1; day <= month.Days(); day++ {
		date := time.Date(month.Year, month.Month, day, 0, 0, 0, 0, time.UTC)
		entry := ReportDay{
			Date:      date,
			Weekday:   date.Weekday(),
			IsWeekend: IsWeekend(date),
			Slots:     make(map[PunchType]string, len(PunchTypes)),
			Justified: make(map[PunchType]bool, len(PunchTypes)),
			Log:       byDay[day],
		}

		if entry.IsWeekend {
			label := WeekendLabel(entry.Weekday)
			for _, p := range PunchTypes {
				entry.Slots[p] = label
			}
			report.Days = append(report.Days, entry)
			continue
		}

		for _, p := range PunchTypes {
			entry.Slots[p] = EmptyLabel
		}
		if entry.Log != nil {
			for _, p := range PunchTypes {
				entry.Slots[p] = displaySlot(entry.Log.Slot(p))
				entry.Justified[p] = entry.Log.Slot(p).IsJustified()
			}
			entry.WorkedSeconds = CalculateDailyWorkedSeconds(entry.Log)
		}

		report.TotalSeconds += entry.WorkedSeconds
		report.Days = append(report.Days, entry)
	}

	return report
}

func displaySlot(s *Slot) string {
	switch {
	case s.Time != nil:
		secs, err := ParseTimeOfDay(*s.Time)
		if err != nil {
			return EmptyLabel
		}
		return fmt.Sprintf("%02d:%02d", secs/3600, (secs%3600)/60)
	case s.JustificationURL != nil:
		return JustifiedLabel
	}
	return EmptyLabel
}
