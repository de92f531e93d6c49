package attendance

import (
	"context"
	"time"
)

// DayLogRepository is the event store for per-employee, per-date punch records.
type DayLogRepository interface {
	// Get returns ErrDayLogNotFound when no log exists for the date.
	Get(ctx context.Context, employeeID string, date time.Time) (DayLog, error)

	// Save inserts the log or fills its empty slots. A slot that is already
	// filled in storage is never overwritten.
	Save(ctx context.Context, log DayLog) (DayLog, error)

	// SetSlots overwrites slot times for a correction. A nil value clears the slot.
	SetSlots(ctx context.Context, employeeID string, date time.Time, slots map[PunchType]*string) (DayLog, error)

	// ListByRange returns the logs with from <= date <= to ordered by date.
	ListByRange(ctx context.Context, employeeID string, from, to time.Time) ([]DayLog, error)

	// CreateEmpty creates empty logs for the employees that have none on date.
	CreateEmpty(ctx context.Context, employeeIDs []string, date time.Time) (int64, error)
}
