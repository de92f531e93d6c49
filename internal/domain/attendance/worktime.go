package attendance

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Anomaly describes stored data that was ignored while computing worked time.
type Anomaly struct {
	In  PunchType
	Out PunchType
	Err error
}

// DailyWork is the worked time of one day with any anomalies that were skipped.
type DailyWork struct {
	Seconds   int
	Anomalies []Anomaly
}

var halfDays = [][2]PunchType{
	{PunchMorningIn, PunchMorningOut},
	{PunchAfternoonIn, PunchAfternoonOut},
}

// ComputeDailyWork sums both half-days. A half-day counts only when both of its
// endpoints are recorded times; malformed or negative half-days contribute 0.
func ComputeDailyWork(log *DayLog) DailyWork {
	var work DailyWork
	if log == nil {
		return work
	}
	for _, hd := range halfDays {
		seconds, err := halfDaySeconds(log.Slot(hd[0]), log.Slot(hd[1]))
		if err != nil {
			work.Anomalies = append(work.Anomalies, Anomaly{In: hd[0], Out: hd[1], Err: err})
			continue
		}
		work.Seconds += seconds
	}
	return work
}

// CalculateDailyWorkedSeconds returns the worked seconds of a day, logging anomalies.
func CalculateDailyWorkedSeconds(log *DayLog) int {
	work := ComputeDailyWork(log)
	for _, a := range work.Anomalies {
		slog.Warn("Ignoring half-day with unexpected stored data",
			"employee_id", log.EmployeeID,
			"date", log.Date.Format("2006-01-02"),
			"in", a.In,
			"out", a.Out,
			"error", a.Err,
		)
	}
	return work.Seconds
}

func halfDaySeconds(in, out *Slot) (int, error) {
	if in == nil || out == nil || in.Time == nil || out.Time == nil {
		return 0, nil
	}
	start, err := ParseTimeOfDay(*in.Time)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedStoredTime, *in.Time)
	}
	end, err := ParseTimeOfDay(*out.Time)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedStoredTime, *out.Time)
	}
	if end < start {
		return 0, fmt.Errorf("%w: %s < %s", ErrNegativeDuration, *out.Time, *in.Time)
	}
	return end - start, nil
}

// FormatWorked renders seconds as "Xh Ym".
func FormatWorked(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}

// DecimalHours converts seconds to hours rounded to two places.
func DecimalHours(seconds int) decimal.Decimal {
	return decimal.NewFromInt(int64(seconds)).Div(decimal.NewFromInt(3600)).Round(2)
}
