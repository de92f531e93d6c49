package attendance

import (
	"time"
)

// Engine decides which punch a clock action records and whether it is allowed.
// It holds no state besides the schedule and never reads a clock itself.
type Engine struct {
	schedule Schedule
}

// NewEngine validates schedule and returns an engine bound to it.
func NewEngine(schedule Schedule) (*Engine, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return &Engine{schedule: schedule}, nil
}

// Schedule returns the engine's window configuration.
func (e *Engine) Schedule() Schedule {
	return e.schedule
}

// Window returns the configured window of p, false for an unknown punch type.
func (e *Engine) Window(p PunchType) (Window, bool) {
	w, ok := e.schedule.Windows[p]
	return w, ok
}

// NextExpectedPunch returns the first unfilled candidate of kind whose window contains now.
// A nil log is treated as empty.
func (e *Engine) NextExpectedPunch(log *DayLog, kind Kind, now time.Time) (PunchType, error) {
	if log.IsComplete() {
		return "", ErrAllPunchesRecorded
	}

	minute := MinuteOfDay(now)
	var (
		nearest     PunchType
		nearestDist = -1
	)
	for _, p := range kind.Candidates() {
		if log.IsFilled(p) {
			continue
		}
		w := e.schedule.Windows[p]
		if w.Contains(minute) {
			return p, nil
		}
		if d := w.Distance(minute); nearestDist < 0 || d < nearestDist {
			nearest, nearestDist = p, d
		}
	}

	if nearestDist < 0 {
		return "", ErrPunchAlreadyRecorded
	}
	return "", &OutsideWindowError{Punch: nearest, Window: e.schedule.Windows[nearest]}
}

// ValidatePunch applies the weekend rule and then infers the punch type for kind at now.
func (e *Engine) ValidatePunch(now time.Time, log *DayLog, kind Kind) (PunchType, error) {
	if e.schedule.BlockWeekends && IsWeekend(now) {
		return "", ErrWeekendNotAllowed
	}
	return e.NextExpectedPunch(log, kind, now)
}
