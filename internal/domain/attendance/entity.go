package attendance

import (
	"time"
)

// PunchType identifies one of the four daily clock events.
type PunchType string

const (
	PunchMorningIn    PunchType = "morning_in"
	PunchMorningOut   PunchType = "morning_out"
	PunchAfternoonIn  PunchType = "afternoon_in"
	PunchAfternoonOut PunchType = "afternoon_out"
)

// PunchTypes lists the punch types in day order.
var PunchTypes = []PunchType{
	PunchMorningIn,
	PunchMorningOut,
	PunchAfternoonIn,
	PunchAfternoonOut,
}

var PunchTypeValues = []string{
	string(PunchMorningIn),
	string(PunchMorningOut),
	string(PunchAfternoonIn),
	string(PunchAfternoonOut),
}

// IsValid reports whether p is one of the four punch types.
func (p PunchType) IsValid() bool {
	switch p {
	case PunchMorningIn, PunchMorningOut, PunchAfternoonIn, PunchAfternoonOut:
		return true
	}
	return false
}

// Kind is the coarse action chosen by the user. The exact punch type is inferred.
type Kind string

const (
	KindClockIn  Kind = "clock_in"
	KindClockOut Kind = "clock_out"
	KindAny      Kind = "any"
)

// Candidates returns the punch types a kind may resolve to, in priority order.
func (k Kind) Candidates() []PunchType {
	switch k {
	case KindClockIn:
		return []PunchType{PunchMorningIn, PunchAfternoonIn}
	case KindClockOut:
		return []PunchType{PunchMorningOut, PunchAfternoonOut}
	default:
		return PunchTypes
	}
}

// Slot holds either a recorded time of day or a justification reference.
type Slot struct {
	Time             *string
	JustificationURL *string
}

// IsFilled reports whether the slot holds a time or a justification.
func (s Slot) IsFilled() bool {
	return s.Time != nil || s.JustificationURL != nil
}

// IsJustified reports whether the slot holds only a justification.
func (s Slot) IsJustified() bool {
	return s.Time == nil && s.JustificationURL != nil
}

// DayLog is the per-employee, per-date punch record.
type DayLog struct {
	ID           string
	EmployeeID   string
	Date         time.Time
	MorningIn    Slot
	MorningOut   Slot
	AfternoonIn  Slot
	AfternoonOut Slot
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewDayLog returns an empty log for the given employee and calendar date.
func NewDayLog(employeeID string, date time.Time) DayLog {
	return DayLog{
		EmployeeID: employeeID,
		Date:       DateOnly(date),
	}
}

// Slot returns a pointer to the slot for p, or nil for an unknown punch type.
func (d *DayLog) Slot(p PunchType) *Slot {
	switch p {
	case PunchMorningIn:
		return &d.MorningIn
	case PunchMorningOut:
		return &d.MorningOut
	case PunchAfternoonIn:
		return &d.AfternoonIn
	case PunchAfternoonOut:
		return &d.AfternoonOut
	}
	return nil
}

// IsFilled reports whether slot p is filled. A nil log has no filled slots.
func (d *DayLog) IsFilled(p PunchType) bool {
	if d == nil {
		return false
	}
	s := d.Slot(p)
	return s != nil && s.IsFilled()
}

// IsComplete reports whether every slot of the day is filled.
func (d *DayLog) IsComplete() bool {
	for _, p := range PunchTypes {
		if !d.IsFilled(p) {
			return false
		}
	}
	return true
}

// Record stores a time of day into an unfilled slot.
func (d *DayLog) Record(p PunchType, timeOfDay string) error {
	s := d.Slot(p)
	if s == nil {
		return ErrInvalidPunchType
	}
	if _, err := ParseTimeOfDay(timeOfDay); err != nil {
		return err
	}
	if s.IsFilled() {
		return ErrSlotAlreadyFilled
	}
	s.Time = &timeOfDay
	return nil
}

// Justify stores a justification reference into an unfilled slot.
func (d *DayLog) Justify(p PunchType, url string) error {
	s := d.Slot(p)
	if s == nil {
		return ErrInvalidPunchType
	}
	if s.IsFilled() {
		return ErrSlotAlreadyFilled
	}
	s.JustificationURL = &url
	return nil
}

// DateOnly truncates t to midnight of its calendar date, keeping the location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
