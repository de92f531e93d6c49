package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/hoursync/hoursync-backend-go/internal/handler/http/middleware"
	"github.com/hoursync/hoursync-backend-go/internal/handler/http/response"
)

const maxJustificationForm = 12 << 20

type AttendanceHandler interface {
	// Employee self-service
	ServerTime(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	SubmitJustification(w http.ResponseWriter, r *http.Request)
	MyReport(w http.ResponseWriter, r *http.Request)

	// Admin
	EmployeeReport(w http.ResponseWriter, r *http.Request)
	RecordPunch(w http.ResponseWriter, r *http.Request)
	RecordJustification(w http.ResponseWriter, r *http.Request)
	CorrectDayLog(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// ServerTime implements AttendanceHandler.
func (h *attendanceHandlerImpl) ServerTime(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetServerTime(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetToday(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ClockIn(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Clock in successful", result)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ClockOut(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Clock out successful", result)
}

// SubmitJustification implements AttendanceHandler.
func (h *attendanceHandlerImpl) SubmitJustification(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	h.justify(w, r, employeeID)
}

// RecordJustification implements AttendanceHandler.
func (h *attendanceHandlerImpl) RecordJustification(w http.ResponseWriter, r *http.Request) {
	h.justify(w, r, chi.URLParam(r, "id"))
}

func (h *attendanceHandlerImpl) justify(w http.ResponseWriter, r *http.Request, employeeID string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJustificationForm)
	if err := r.ParseMultipartForm(maxJustificationForm); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	req := attendance.JustificationRequest{
		EmployeeID: employeeID,
		Date:       r.FormValue("date"),
		PunchType:  r.FormValue("punch_type"),
	}

	file, fileHeader, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		req.File = file
		req.FileHeader = fileHeader
	case !errors.Is(err, http.ErrMissingFile):
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}

	result, err := h.attendanceService.RecordJustification(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Justification recorded", result)
}

// MyReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) MyReport(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	h.report(w, r, employeeID)
}

// EmployeeReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) EmployeeReport(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, chi.URLParam(r, "id"))
}

func (h *attendanceHandlerImpl) report(w http.ResponseWriter, r *http.Request, employeeID string) {
	month := r.URL.Query().Get("month")
	if month == "" {
		now, err := h.attendanceService.GetServerTime(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}
		month = now.ServerTime.Format("2006-01")
	}

	result, err := h.attendanceService.GetMonthlyReport(r.Context(), employeeID, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// RecordPunch implements AttendanceHandler.
func (h *attendanceHandlerImpl) RecordPunch(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordPunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "id")

	result, err := h.attendanceService.RecordPunch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Punch recorded", result)
}

// CorrectDayLog implements AttendanceHandler.
func (h *attendanceHandlerImpl) CorrectDayLog(w http.ResponseWriter, r *http.Request) {
	var req attendance.CorrectDayLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "id")
	req.Date = chi.URLParam(r, "date")

	result, err := h.attendanceService.CorrectDayLog(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Day log corrected", result)
}
