package http

import (
	"net/http"

	"github.com/hoursync/hoursync-backend-go/internal/domain/dashboard"
	"github.com/hoursync/hoursync-backend-go/internal/handler/http/response"
)

type DashboardHandler interface {
	// GetDashboard returns roster counts and today's punch counts
	GetDashboard(w http.ResponseWriter, r *http.Request)
	// GetDailyAttendance returns every active employee's punches for a day
	GetDailyAttendance(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// GetDashboard handles GET /dashboard
func (h *dashboardHandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetDashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetDailyAttendance handles GET /dashboard/attendance
func (h *dashboardHandlerImpl) GetDailyAttendance(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date") // format: YYYY-MM-DD, default: today

	result, err := h.dashboardService.GetDailyAttendance(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
