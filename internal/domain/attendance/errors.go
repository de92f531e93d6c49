package attendance

import (
	"errors"
	"fmt"
)

// Punch rejections. These are expected, user-facing outcomes.
var (
	ErrWeekendNotAllowed    = errors.New("punches are not allowed on weekends")
	ErrAllPunchesRecorded   = errors.New("all punches for today are already recorded")
	ErrPunchAlreadyRecorded = errors.New("this punch is already recorded for today")
	ErrOutsideWindow        = errors.New("current time is outside the allowed window")
)

// Data integrity and input errors
var (
	ErrSlotAlreadyFilled   = errors.New("punch slot already holds a time or justification")
	ErrMalformedStoredTime = errors.New("stored time is malformed")
	ErrNegativeDuration    = errors.New("out time is earlier than in time")
	ErrInvalidPunchType    = errors.New("invalid punch type")
	ErrInvalidKind         = errors.New("invalid punch kind")
	ErrInvalidTimeOfDay    = errors.New("time must be in HH:MM or HH:MM:SS format")
	ErrInvalidMonth        = errors.New("month must be in YYYY-MM format")
	ErrInvalidSchedule     = errors.New("invalid schedule configuration")
)

// General errors
var (
	ErrDayLogNotFound   = errors.New("day log not found")
	ErrEmployeeInactive = errors.New("employee is inactive")
)

// OutsideWindowError carries the window nearest to the rejected punch attempt.
type OutsideWindowError struct {
	Punch  PunchType
	Window Window
}

func (e *OutsideWindowError) Error() string {
	return fmt.Sprintf("%s: %s is allowed between %s", ErrOutsideWindow.Error(), e.Punch, e.Window)
}

func (e *OutsideWindowError) Unwrap() error {
	return ErrOutsideWindow
}

// RejectionReason returns a stable machine-readable code for a punch rejection,
// or an empty string when err is not one.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrWeekendNotAllowed):
		return "weekend_not_allowed"
	case errors.Is(err, ErrAllPunchesRecorded):
		return "all_punches_recorded"
	case errors.Is(err, ErrPunchAlreadyRecorded):
		return "already_recorded"
	case errors.Is(err, ErrOutsideWindow):
		return "outside_window"
	}
	return ""
}
