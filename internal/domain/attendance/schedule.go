package attendance

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is an inclusive time-of-day interval in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// Contains reports whether the minute of day falls inside the window.
func (w Window) Contains(minute int) bool {
	return minute >= w.Start && minute <= w.End
}

// Distance is the number of minutes between minute and the window, 0 when inside.
func (w Window) Distance(minute int) int {
	switch {
	case minute < w.Start:
		return w.Start - minute
	case minute > w.End:
		return minute - w.End
	}
	return 0
}

func (w Window) String() string {
	return fmt.Sprintf("%s-%s", formatMinute(w.Start), formatMinute(w.End))
}

func formatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseWindow parses "HH:MM-HH:MM".
func ParseWindow(s string) (Window, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("%w: window %q must be HH:MM-HH:MM", ErrInvalidSchedule, s)
	}
	start, err := ParseTimeOfDay(parts[0])
	if err != nil {
		return Window{}, fmt.Errorf("%w: window %q: %v", ErrInvalidSchedule, s, err)
	}
	end, err := ParseTimeOfDay(parts[1])
	if err != nil {
		return Window{}, fmt.Errorf("%w: window %q: %v", ErrInvalidSchedule, s, err)
	}
	w := Window{Start: start / 60, End: end / 60}
	if w.End < w.Start {
		return Window{}, fmt.Errorf("%w: window %q ends before it starts", ErrInvalidSchedule, s)
	}
	return w, nil
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" into seconds since midnight.
func ParseTimeOfDay(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, ErrInvalidTimeOfDay
	}
	limits := []int{23, 59, 59}
	total := 0
	multipliers := []int{3600, 60, 1}
	for i, part := range parts {
		if !isDigits(part) {
			return 0, ErrInvalidTimeOfDay
		}
		n, err := strconv.Atoi(part)
		if err != nil || n > limits[i] {
			return 0, ErrInvalidTimeOfDay
		}
		total += n * multipliers[i]
	}
	return total, nil
}

// isDigits reports whether s is one or two ASCII digits.
func isDigits(s string) bool {
	if len(s) == 0 || len(s) > 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizeTimeOfDay rewrites "HH:MM" or "HH:MM:SS" into the stored "HH:MM:SS" form.
func NormalizeTimeOfDay(s string) (string, error) {
	secs, err := ParseTimeOfDay(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60), nil
}

// FormatTimeOfDay renders t's wall clock as "HH:MM:SS".
func FormatTimeOfDay(t time.Time) string {
	return t.Format("15:04:05")
}

// MinuteOfDay returns the minutes elapsed since midnight in t's location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// Schedule is the process-wide punch window configuration.
type Schedule struct {
	Windows       map[PunchType]Window
	BlockWeekends bool
}

// DefaultSchedule returns the stock windows with weekend blocking enabled.
func DefaultSchedule() Schedule {
	return Schedule{
		Windows: map[PunchType]Window{
			PunchMorningIn:    {Start: 7*60 + 40, End: 8*60 + 5},
			PunchMorningOut:   {Start: 12 * 60, End: 12*60 + 10},
			PunchAfternoonIn:  {Start: 12*60 + 50, End: 13*60 + 5},
			PunchAfternoonOut: {Start: 18 * 60, End: 18*60 + 10},
		},
		BlockWeekends: true,
	}
}

// Validate checks that all four windows exist, in day order, without overlap.
func (s Schedule) Validate() error {
	prevEnd := -1
	for _, p := range PunchTypes {
		w, ok := s.Windows[p]
		if !ok {
			return fmt.Errorf("%w: missing window for %s", ErrInvalidSchedule, p)
		}
		if w.Start < 0 || w.End >= 24*60 || w.End < w.Start {
			return fmt.Errorf("%w: window for %s is out of range", ErrInvalidSchedule, p)
		}
		if w.Start <= prevEnd {
			return fmt.Errorf("%w: window for %s overlaps or precedes the previous window", ErrInvalidSchedule, p)
		}
		prevEnd = w.End
	}
	return nil
}
