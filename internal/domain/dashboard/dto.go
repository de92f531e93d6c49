package dashboard

import (
	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
)

// ========== COMBINED DASHBOARD ==========

// DashboardResponse is the combined response for the main dashboard endpoint
type DashboardResponse struct {
	Roster     RosterResponse          `json:"roster"`
	Attendance DailyAttendanceResponse `json:"attendance"`
}

// ========== ROSTER ==========

type RosterResponse struct {
	Total          int64 `json:"total"`
	Active         int64 `json:"active"`
	Inactive       int64 `json:"inactive"`
	Administrators int64 `json:"administrators"`
	Collaborators  int64 `json:"collaborators"`
}

func NewRosterResponse(s RosterStats) RosterResponse {
	return RosterResponse{
		Total:          s.Total,
		Active:         s.Active,
		Inactive:       s.Inactive,
		Administrators: s.Admins,
		Collaborators:  s.Total - s.Admins,
	}
}

// ========== DAILY ATTENDANCE ==========

type PunchCountsResponse struct {
	MorningIn    int64 `json:"morning_in"`
	MorningOut   int64 `json:"morning_out"`
	AfternoonIn  int64 `json:"afternoon_in"`
	AfternoonOut int64 `json:"afternoon_out"`
	Justified    int64 `json:"justified"`
	Complete     int64 `json:"complete"`
	// Missing counts active employees with no morning_in yet
	Missing int64 `json:"missing"`
}

type DailyLogResponse struct {
	EmployeeID    string `json:"employee_id"`
	EmployeeName  string `json:"employee_name"`
	IsAdmin       bool   `json:"is_admin"`
	MorningIn     string `json:"morning_in"`
	MorningOut    string `json:"morning_out"`
	AfternoonIn   string `json:"afternoon_in"`
	AfternoonOut  string `json:"afternoon_out"`
	WorkedSeconds int    `json:"worked_seconds"`
	Worked        string `json:"worked"`
}

func NewDailyLogResponse(item DailyLogItem) DailyLogResponse {
	var log attendance.DayLog
	if item.Log != nil {
		log = *item.Log
	}
	worked := attendance.CalculateDailyWorkedSeconds(&log)
	return DailyLogResponse{
		EmployeeID:    item.EmployeeID,
		EmployeeName:  item.EmployeeName,
		IsAdmin:       item.IsAdmin,
		MorningIn:     attendance.NewSlotResponse(log.MorningIn).Display,
		MorningOut:    attendance.NewSlotResponse(log.MorningOut).Display,
		AfternoonIn:   attendance.NewSlotResponse(log.AfternoonIn).Display,
		AfternoonOut:  attendance.NewSlotResponse(log.AfternoonOut).Display,
		WorkedSeconds: worked,
		Worked:        attendance.FormatWorked(worked),
	}
}

type DailyAttendanceResponse struct {
	Date      string              `json:"date"`
	IsWeekend bool                `json:"is_weekend"`
	Expected  int64               `json:"expected"`
	Counts    PunchCountsResponse `json:"counts"`
	Employees []DailyLogResponse  `json:"employees,omitempty"`
}
