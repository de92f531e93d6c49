package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/config"
	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/hoursync/hoursync-backend-go/internal/domain/auth"
	"github.com/hoursync/hoursync-backend-go/internal/domain/dashboard"
	"github.com/hoursync/hoursync-backend-go/internal/domain/employee"
	"github.com/hoursync/hoursync-backend-go/internal/domain/report"
	"github.com/hoursync/hoursync-backend-go/internal/handler/http/middleware"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/export"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/jwt"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/sse"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

var (
	testAdmin    = employee.Employee{ID: "emp-admin", Name: "Ana Admin", Email: "ana@example.com", Status: employee.StatusActive, IsAdmin: true}
	testWorker   = employee.Employee{ID: "emp-1", Name: "João Silva", Email: "joao@example.com", Status: employee.StatusActive}
	testInactive = employee.Employee{ID: "emp-2", Name: "Rita Lima", Email: "rita@example.com", Status: employee.StatusInactive}

	testNow = time.Date(2024, 1, 2, 7, 50, 0, 0, time.UTC)
)

// ===== FAKES =====

type fakeEmployeeRepo struct {
	employee.EmployeeRepository
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

type fakeAttendanceService struct {
	attendance.AttendanceService

	mu           sync.Mutex
	punchErr     error
	reportMonth  string
	recorded     attendance.RecordPunchRequest
	justified    attendance.JustificationRequest
	justifiedDoc string
}

func (f *fakeAttendanceService) ClockIn(ctx context.Context, employeeID string) (attendance.PunchResponse, error) {
	if f.punchErr != nil {
		return attendance.PunchResponse{}, f.punchErr
	}
	log := attendance.NewDayLog(employeeID, testNow)
	_ = log.Record(attendance.PunchMorningIn, "07:50:00")
	return attendance.PunchResponse{
		PunchType: attendance.PunchMorningIn,
		Time:      "07:50:00",
		DayLog:    attendance.NewDayLogResponse(log),
	}, nil
}

func (f *fakeAttendanceService) GetServerTime(ctx context.Context) (attendance.ServerTimeResponse, error) {
	return attendance.NewServerTimeResponse(testNow), nil
}

func (f *fakeAttendanceService) GetMonthlyReport(ctx context.Context, employeeID string, month string) (attendance.MonthlyReportResponse, error) {
	ym, err := attendance.ParseYearMonth(month)
	if err != nil {
		return attendance.MonthlyReportResponse{}, attendance.ErrInvalidMonth
	}
	f.mu.Lock()
	f.reportMonth = month
	f.mu.Unlock()
	summary := attendance.EmployeeSummary{ID: employeeID}
	return attendance.NewMonthlyReportResponse(summary, attendance.BuildMonthlyReport(employeeID, ym, nil)), nil
}

func (f *fakeAttendanceService) RecordPunch(ctx context.Context, req attendance.RecordPunchRequest) (attendance.DayLogResponse, error) {
	f.recorded = req
	return attendance.DayLogResponse{EmployeeID: req.EmployeeID, Date: req.Date}, nil
}

func (f *fakeAttendanceService) RecordJustification(ctx context.Context, req attendance.JustificationRequest) (attendance.DayLogResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayLogResponse{}, err
	}
	f.justified = req
	body, _ := io.ReadAll(req.File)
	f.justifiedDoc = string(body)
	return attendance.DayLogResponse{EmployeeID: req.EmployeeID, Date: req.Date}, nil
}

type fakeEmployeeService struct {
	employee.EmployeeService
	repo *fakeEmployeeRepo
}

func (f *fakeEmployeeService) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) ([]employee.EmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	var out []employee.EmployeeResponse
	for _, emp := range []employee.Employee{testAdmin, testWorker, testInactive} {
		out = append(out, employee.NewEmployeeResponse(emp))
	}
	return out, nil
}

func (f *fakeEmployeeService) CheckAdmin(ctx context.Context, req employee.CheckAdminRequest) (employee.CheckAdminResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.CheckAdminResponse{}, err
	}
	return employee.CheckAdminResponse{Email: req.Email, IsAdmin: req.Email == testAdmin.Email}, nil
}

type fakeAuthService struct {
	auth.AuthService
	jwt  jwt.Service
	repo *fakeEmployeeRepo

	resetRequests []string
}

func (f *fakeAuthService) RequestPasswordReset(ctx context.Context, req auth.PasswordResetRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	f.resetRequests = append(f.resetRequests, req.Email)
	return nil
}

func (f *fakeAuthService) ResetPassword(ctx context.Context, req auth.ConfirmPasswordResetRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.Token != "valid-reset-token" {
		return auth.ErrInvalidResetToken
	}
	return nil
}

func (f *fakeAuthService) Logout(ctx context.Context, token string, expiresAt int64) error {
	f.jwt.RevokeToken(token, expiresAt)
	return nil
}

func (f *fakeAuthService) Me(ctx context.Context, employeeID string) (auth.MeResponse, error) {
	emp, err := f.repo.GetByID(ctx, employeeID)
	if err != nil {
		return auth.MeResponse{}, err
	}
	return auth.MeResponse{EmployeeResponse: employee.NewEmployeeResponse(emp)}, nil
}

func (f *fakeAuthService) IssueSSEToken(ctx context.Context, employeeID string) (auth.SSETokenResponse, error) {
	emp, err := f.repo.GetByID(ctx, employeeID)
	if err != nil {
		return auth.SSETokenResponse{}, err
	}
	token, expiresIn, err := f.jwt.GenerateSSEToken(emp.ID, emp.IsAdmin)
	return auth.SSETokenResponse{Token: token, ExpiresIn: expiresIn}, err
}

type fakeReportService struct {
	req report.ExportRequest
}

func (f *fakeReportService) ExportMonthly(ctx context.Context, req report.ExportRequest, w io.Writer) (report.Export, error) {
	if err := req.Validate(); err != nil {
		return report.Export{}, err
	}
	f.req = req
	month, _ := attendance.ParseYearMonth(req.Month)
	format, _ := export.ParseFormat(req.Format)
	_, err := io.WriteString(w, "%PDF-fake")
	return report.Export{Month: month, Format: format, EmployeeIDs: req.EmployeeIDs}, err
}

type fakeDashboardService struct {
	date string
}

func (f *fakeDashboardService) GetDashboard(ctx context.Context) (*dashboard.DashboardResponse, error) {
	return &dashboard.DashboardResponse{
		Roster: dashboard.NewRosterResponse(dashboard.RosterStats{Total: 3, Active: 2, Inactive: 1, Admins: 1}),
	}, nil
}

func (f *fakeDashboardService) GetDailyAttendance(ctx context.Context, date string) (*dashboard.DailyAttendanceResponse, error) {
	if date == "yesterday" {
		return nil, validator.ValidationErrors{{Field: "date", Message: "must be in YYYY-MM-DD format"}}
	}
	f.date = date
	return &dashboard.DailyAttendanceResponse{
		Date: date,
		Employees: []dashboard.DailyLogResponse{
			dashboard.NewDailyLogResponse(dashboard.DailyLogItem{EmployeeID: testWorker.ID, EmployeeName: testWorker.Name}),
		},
	}, nil
}

// ===== TEST SERVER =====

type testServer struct {
	handler    http.Handler
	jwt        jwt.Service
	hub        *sse.Hub
	auth       *fakeAuthService
	attendance *fakeAttendanceService
	reports    *fakeReportService
	dashboard  *fakeDashboardService
	uploads    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		testAdmin.ID:    testAdmin,
		testWorker.ID:   testWorker,
		testInactive.ID: testInactive,
	}}
	jwtSvc := jwt.NewJWTService(handlerTestSecret, time.Hour)
	hub := sse.NewHub()
	att := &fakeAttendanceService{}
	reports := &fakeReportService{}
	dash := &fakeDashboardService{}
	authSvc := &fakeAuthService{jwt: jwtSvc, repo: repo}
	empSvc := &fakeEmployeeService{repo: repo}

	cfg := &config.Config{
		App:     config.AppConfig{Name: "hoursync-test", Version: "test", Env: "test"},
		Storage: config.StorageConfig{BasePath: t.TempDir(), BaseURL: "/uploads"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(
		cfg,
		logger,
		jwtSvc,
		middleware.NewActiveEmployeeMiddleware(repo),
		NewAuthHandler(authSvc, empSvc),
		NewAttendanceHandler(att),
		NewEmployeeHandler(empSvc),
		NewReportHandler(reports),
		NewDashboardHandler(dash),
		NewEventsHandler(jwtSvc, authSvc, hub),
	)

	return &testServer{
		handler:    router,
		jwt:        jwtSvc,
		hub:        hub,
		auth:       authSvc,
		attendance: att,
		reports:    reports,
		dashboard:  dash,
		uploads:    cfg.Storage.BasePath,
	}
}

func (s *testServer) token(t *testing.T, emp employee.Employee) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(emp.ID, emp.Email, emp.IsAdmin)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}
