package attendance

import (
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// PUNCH DTOs
// ========================================

type ClockRequest struct {
	EmployeeID string `json:"-"`
	Kind       Kind   `json:"-"`
}

func (r *ClockRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Kind != KindClockIn && r.Kind != KindClockOut && r.Kind != KindAny {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be one of: clock_in, clock_out, any",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RecordPunchRequest is an administrative manual entry. No window check applies.
type RecordPunchRequest struct {
	EmployeeID string `json:"-"`
	Date       string `json:"date"`
	PunchType  string `json:"punch_type"`
	Time       string `json:"time"`
}

func (r *RecordPunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	errs = append(errs, validateDate(r.Date)...)
	errs = append(errs, validatePunchType(r.PunchType)...)

	if _, err := ParseTimeOfDay(r.Time); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "time",
			Message: "time must be in HH:MM or HH:MM:SS format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

var justificationExtensions = []string{".jpg", ".jpeg", ".png", ".pdf"}

const maxJustificationSize = 10 << 20

// JustificationRequest fills an empty slot with a justification document.
// Either File or an already stored JustificationURL must be set.
type JustificationRequest struct {
	EmployeeID       string                `json:"-"`
	Date             string                `json:"date"`
	PunchType        string                `json:"punch_type"`
	JustificationURL *string               `json:"-"`
	File             multipart.File        `json:"-"`
	FileHeader       *multipart.FileHeader `json:"-"`
}

func (r *JustificationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	errs = append(errs, validateDate(r.Date)...)
	errs = append(errs, validatePunchType(r.PunchType)...)

	hasURL := r.JustificationURL != nil && !validator.IsEmpty(*r.JustificationURL)
	if r.FileHeader == nil || r.File == nil {
		if !hasURL {
			errs = append(errs, validator.ValidationError{
				Field:   "file",
				Message: "justification file is required",
			})
		}
	} else if ext := strings.ToLower(filepath.Ext(r.FileHeader.Filename)); !validator.IsInSlice(ext, justificationExtensions) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "invalid file type: only jpg, jpeg, png, pdf allowed",
		})
	} else if r.FileHeader.Size > maxJustificationSize {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "justification file size must not exceed 10MB",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CorrectDayLogRequest overwrites the provided slot times of a day. Nil fields are left as they are,
// an empty string clears the slot.
type CorrectDayLogRequest struct {
	EmployeeID   string  `json:"-"`
	Date         string  `json:"-"`
	MorningIn    *string `json:"morning_in"`
	MorningOut   *string `json:"morning_out"`
	AfternoonIn  *string `json:"afternoon_in"`
	AfternoonOut *string `json:"afternoon_out"`
}

// Slots returns the requested changes keyed by punch type.
func (r *CorrectDayLogRequest) Slots() map[PunchType]*string {
	slots := make(map[PunchType]*string, 4)
	for p, v := range map[PunchType]*string{
		PunchMorningIn:    r.MorningIn,
		PunchMorningOut:   r.MorningOut,
		PunchAfternoonIn:  r.AfternoonIn,
		PunchAfternoonOut: r.AfternoonOut,
	} {
		if v != nil {
			slots[p] = v
		}
	}
	return slots
}

func (r *CorrectDayLogRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	errs = append(errs, validateDate(r.Date)...)

	slots := r.Slots()
	if len(slots) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "slots",
			Message: "at least one slot must be provided",
		})
	}
	for _, p := range PunchTypes {
		v, ok := slots[p]
		if !ok || *v == "" {
			continue
		}
		if _, err := ParseTimeOfDay(*v); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   string(p),
				Message: string(p) + " must be in HH:MM or HH:MM:SS format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateDate(date string) validator.ValidationErrors {
	if validator.IsEmpty(date) {
		return validator.ValidationErrors{{Field: "date", Message: "date is required"}}
	}
	if _, ok := validator.IsValidDate(date); !ok {
		return validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}}
	}
	return nil
}

func validatePunchType(p string) validator.ValidationErrors {
	if !PunchType(p).IsValid() {
		return validator.ValidationErrors{{
			Field:   "punch_type",
			Message: "punch_type must be one of: " + strings.Join(PunchTypeValues, ", "),
		}}
	}
	return nil
}

// ========================================
// RESPONSES
// ========================================

type SlotResponse struct {
	Time             *string `json:"time"`
	JustificationURL *string `json:"justification_url"`
	Display          string  `json:"display"`
}

type DayLogResponse struct {
	ID            string       `json:"id,omitempty"`
	EmployeeID    string       `json:"employee_id"`
	Date          string       `json:"date"`
	MorningIn     SlotResponse `json:"morning_in"`
	MorningOut    SlotResponse `json:"morning_out"`
	AfternoonIn   SlotResponse `json:"afternoon_in"`
	AfternoonOut  SlotResponse `json:"afternoon_out"`
	WorkedSeconds int          `json:"worked_seconds"`
	Worked        string       `json:"worked"`
}

func NewSlotResponse(s Slot) SlotResponse {
	return SlotResponse{
		Time:             s.Time,
		JustificationURL: s.JustificationURL,
		Display:          displaySlot(&s),
	}
}

func NewDayLogResponse(log DayLog) DayLogResponse {
	worked := CalculateDailyWorkedSeconds(&log)
	return DayLogResponse{
		ID:            log.ID,
		EmployeeID:    log.EmployeeID,
		Date:          log.Date.Format("2006-01-02"),
		MorningIn:     NewSlotResponse(log.MorningIn),
		MorningOut:    NewSlotResponse(log.MorningOut),
		AfternoonIn:   NewSlotResponse(log.AfternoonIn),
		AfternoonOut:  NewSlotResponse(log.AfternoonOut),
		WorkedSeconds: worked,
		Worked:        FormatWorked(worked),
	}
}

type PunchResponse struct {
	PunchType PunchType      `json:"punch_type"`
	Time      string         `json:"time"`
	DayLog    DayLogResponse `json:"day_log"`
}

type WindowResponse struct {
	PunchType PunchType `json:"punch_type"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
}

func NewWindowResponses(s Schedule) []WindowResponse {
	windows := make([]WindowResponse, 0, len(PunchTypes))
	for _, p := range PunchTypes {
		w := s.Windows[p]
		windows = append(windows, WindowResponse{
			PunchType: p,
			Start:     formatMinute(w.Start),
			End:       formatMinute(w.End),
		})
	}
	return windows
}

// PunchOption tells the client what a button press would do right now.
type PunchOption struct {
	Available bool       `json:"available"`
	PunchType *PunchType `json:"punch_type,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	Message   string     `json:"message,omitempty"`
}

func NewPunchOption(p PunchType, err error) PunchOption {
	if err != nil {
		return PunchOption{Reason: RejectionReason(err), Message: err.Error()}
	}
	return PunchOption{Available: true, PunchType: &p}
}

type ServerTimeResponse struct {
	ServerTime time.Time `json:"server_time"`
	Timezone   string    `json:"timezone"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
}

func NewServerTimeResponse(now time.Time) ServerTimeResponse {
	return ServerTimeResponse{
		ServerTime: now,
		Timezone:   now.Location().String(),
		Date:       now.Format("2006-01-02"),
		Time:       FormatTimeOfDay(now),
	}
}

type TodayResponse struct {
	ServerTimeResponse
	IsWeekend bool             `json:"is_weekend"`
	DayLog    DayLogResponse   `json:"day_log"`
	ClockIn   PunchOption      `json:"clock_in"`
	ClockOut  PunchOption      `json:"clock_out"`
	Windows   []WindowResponse `json:"windows"`
}

// EmployeeSummary is the report header.
type EmployeeSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	CPF    string `json:"cpf,omitempty"`
	Role   string `json:"role,omitempty"`
	Sector string `json:"sector,omitempty"`
}

type ReportDayResponse struct {
	Date          string `json:"date"`
	Weekday       string `json:"weekday"`
	IsWeekend     bool   `json:"is_weekend"`
	MorningIn     string `json:"morning_in"`
	MorningOut    string `json:"morning_out"`
	AfternoonIn   string `json:"afternoon_in"`
	AfternoonOut  string `json:"afternoon_out"`
	WorkedSeconds int    `json:"worked_seconds"`
	Worked        string `json:"worked"`
}

type MonthlyReportResponse struct {
	Employee     EmployeeSummary     `json:"employee"`
	Month        string              `json:"month"`
	Days         []ReportDayResponse `json:"days"`
	TotalSeconds int                 `json:"total_seconds"`
	Total        string              `json:"total"`
	TotalHours   decimal.Decimal     `json:"total_hours"`
}

func NewMonthlyReportResponse(employee EmployeeSummary, r MonthlyReport) MonthlyReportResponse {
	days := make([]ReportDayResponse, 0, len(r.Days))
	for _, d := range r.Days {
		days = append(days, ReportDayResponse{
			Date:          d.Date.Format("2006-01-02"),
			Weekday:       d.Weekday.String(),
			IsWeekend:     d.IsWeekend,
			MorningIn:     d.Display(PunchMorningIn),
			MorningOut:    d.Display(PunchMorningOut),
			AfternoonIn:   d.Display(PunchAfternoonIn),
			AfternoonOut:  d.Display(PunchAfternoonOut),
			WorkedSeconds: d.WorkedSeconds,
			Worked:        FormatWorked(d.WorkedSeconds),
		})
	}
	return MonthlyReportResponse{
		Employee:     employee,
		Month:        r.Month.String(),
		Days:         days,
		TotalSeconds: r.TotalSeconds,
		Total:        r.TotalDisplay(),
		TotalHours:   r.TotalHours(),
	}
}

// PunchEvent is streamed to listeners whenever a day log changes.
type PunchEvent struct {
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Date         string    `json:"date"`
	PunchType    PunchType `json:"punch_type,omitempty"`
	Time         string    `json:"time,omitempty"`
	Justified    bool      `json:"justified,omitempty"`
}

const (
	EventPunchRecorded   = "punch_recorded"
	EventDayLogCorrected = "day_log_corrected"
)
