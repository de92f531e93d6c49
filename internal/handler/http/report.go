package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/hoursync/hoursync-backend-go/internal/domain/report"
	"github.com/hoursync/hoursync-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	// Export handles GET /reports/export?month=&format=&employee_id=
	Export(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// Export implements ReportHandler.
func (h *reportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := report.ExportRequest{
		Month:  query.Get("month"),
		Format: query.Get("format"),
	}
	// employee_id may repeat or hold a comma separated list
	for _, v := range query["employee_id"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.EmployeeIDs = append(req.EmployeeIDs, id)
			}
		}
	}

	// Rendered into memory so failures still get a JSON error
	var buf bytes.Buffer
	job, err := h.reportService.ExportMonthly(r.Context(), req, &buf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", job.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", job.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
