package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/hoursync/hoursync-backend-go/internal/domain/auth"
	"github.com/hoursync/hoursync-backend-go/internal/domain/employee"
	"github.com/hoursync/hoursync-backend-go/internal/domain/report"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/export"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Punch rejections carry a machine-readable reason
	if reason := attendance.RejectionReason(err); reason != "" {
		details := map[string]string{"reason": reason}
		var windowErr *attendance.OutsideWindowError
		if errors.As(err, &windowErr) {
			details["punch_type"] = string(windowErr.Punch)
			details["window"] = windowErr.Window.String()
		}
		Error(w, http.StatusUnprocessableEntity, CodePunchRejected, err.Error(), details)
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenRevoked):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAccountDisabled):
		Error(w, http.StatusForbidden, CodeAccountDisabled, "Account is disabled", nil)
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, auth.ErrInvalidResetToken):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrSlotAlreadyFilled):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrEmployeeInactive):
		Error(w, http.StatusForbidden, CodeAccountDisabled, "Employee is inactive", nil)
	case errors.Is(err, attendance.ErrDayLogNotFound):
		NotFound(w, "Day log not found")
	case errors.Is(err, attendance.ErrInvalidMonth):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrInvalidPunchType), errors.Is(err, attendance.ErrInvalidTimeOfDay):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, employee.ErrCPFExists):
		Conflict(w, "CPF already registered")
	case errors.Is(err, employee.ErrEmployeeAlreadyActive), errors.Is(err, employee.ErrEmployeeAlreadyInactive):
		Conflict(w, err.Error())
	case errors.Is(err, employee.ErrCannotDeactivateSelf):
		Forbidden(w, "Cannot deactivate your own account")
	case errors.Is(err, employee.ErrNoFieldsToUpdate), errors.Is(err, employee.ErrInvalidStatus):
		BadRequest(w, err.Error(), nil)

	// Report domain errors
	case errors.Is(err, export.ErrUnsupportedFormat):
		BadRequest(w, export.ErrUnsupportedFormat.Error(), nil)
	case errors.Is(err, report.ErrNoEmployees):
		NotFound(w, "No employees to export")
	case errors.Is(err, report.ErrTooManyEmployees):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		Error(w, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred", nil)
	}
}
