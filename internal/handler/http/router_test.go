package http

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

// ===== AUTH =====

func TestRouter_RequiresToken(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/attendance/today", "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RejectsSSETokenAsAccessToken(t *testing.T) {
	srv := newTestServer(t)
	sseToken, _, err := srv.jwt.GenerateSSEToken(testWorker.ID, false)
	require.NoError(t, err)

	w := srv.do(t, http.MethodGet, "/api/v1/auth/me", sseToken, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_InactiveEmployeeTokenRejected(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/auth/me", srv.token(t, testInactive), "")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/auth/me", srv.token(t, testWorker), "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, testWorker.Email, data["email"])
}

func TestAuthHandler_Logout_RevokesToken(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, testWorker)

	w := srv.do(t, http.MethodPost, "/api/v1/auth/logout", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/auth/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_CheckAdmin(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/auth/check-admin", "", `{"email":"ana@example.com"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["is_admin"])
}

func TestAuthHandler_CheckAdmin_InvalidBody(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/auth/check-admin", "", `{"email":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_PasswordReset_UniformResponse(t *testing.T) {
	// Setup
	srv := newTestServer(t)

	// Act
	registered := srv.do(t, http.MethodPost, "/api/v1/auth/password-reset", "", `{"email":"ana@example.com"}`)
	unknown := srv.do(t, http.MethodPost, "/api/v1/auth/password-reset", "", `{"email":"nobody@example.com"}`)

	// Assert
	assert.Equal(t, http.StatusOK, registered.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, registered.Body.String(), unknown.Body.String())
	assert.Equal(t, "If the email is registered, a reset link has been sent", decodeBody(t, registered)["message"])
	assert.Equal(t, []string{"ana@example.com", "nobody@example.com"}, srv.auth.resetRequests)
}

func TestAuthHandler_PasswordReset_InvalidEmail(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/auth/password-reset", "", `{"email":"not-an-email"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, srv.auth.resetRequests)
}

func TestAuthHandler_ConfirmPasswordReset(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/auth/password-reset/confirm", "", `{"token":"valid-reset-token","password":"n3w-secret"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/password-reset/confirm", "", `{"token":"stale","password":"n3w-secret"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_RejectsPasswordResetTokenAsAccessToken(t *testing.T) {
	srv := newTestServer(t)
	resetToken, _, err := srv.jwt.GeneratePasswordResetToken(testWorker.ID, "fp")
	require.NoError(t, err)

	w := srv.do(t, http.MethodGet, "/api/v1/auth/me", resetToken, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ===== ATTENDANCE =====

func TestAttendanceHandler_ClockIn_Success(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/attendance/clock-in", srv.token(t, testWorker), "")

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody(t, w)
	assert.True(t, resp["success"].(bool))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "morning_in", data["punch_type"])
	assert.Equal(t, "07:50:00", data["time"])
}

func TestAttendanceHandler_ClockIn_Rejected(t *testing.T) {
	srv := newTestServer(t)
	srv.attendance.punchErr = &attendance.OutsideWindowError{
		Punch:  attendance.PunchMorningIn,
		Window: attendance.Window{Start: 7*60 + 40, End: 8*60 + 5},
	}

	w := srv.do(t, http.MethodPost, "/api/v1/attendance/clock-in", srv.token(t, testWorker), "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errBody := decodeBody(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "PUNCH_REJECTED", errBody["code"])
	details := errBody["details"].(map[string]interface{})
	assert.Equal(t, "outside_window", details["reason"])
}

func TestAttendanceHandler_MyReport_DefaultsToCurrentMonth(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/attendance/report", srv.token(t, testWorker), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-01", srv.attendance.reportMonth)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Len(t, data["days"], 31)
}

func TestAttendanceHandler_MyReport_InvalidMonth(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/attendance/report?month=2024-13", srv.token(t, testWorker), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandler_SubmitJustification(t *testing.T) {
	srv := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("date", "2024-01-02"))
	require.NoError(t, mw.WriteField("punch_type", "morning_in"))
	part, err := mw.CreateFormFile("file", "atestado.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 medical note"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/justifications", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+srv.token(t, testWorker))
	w := httptest.NewRecorder()

	srv.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, testWorker.ID, srv.attendance.justified.EmployeeID)
	assert.Equal(t, "morning_in", srv.attendance.justified.PunchType)
	assert.Equal(t, "atestado.pdf", srv.attendance.justified.FileHeader.Filename)
	assert.Equal(t, "%PDF-1.4 medical note", srv.attendance.justifiedDoc)
}

func TestAttendanceHandler_SubmitJustification_MissingFile(t *testing.T) {
	srv := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("date", "2024-01-02"))
	require.NoError(t, mw.WriteField("punch_type", "morning_in"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/justifications", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+srv.token(t, testWorker))
	w := httptest.NewRecorder()

	srv.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ===== ADMIN =====

func TestRouter_AdminOnly(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/employees", srv.token(t, testWorker), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/employees?sort_by=name&is_admin=false", srv.token(t, testAdmin), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["data"], 3)
}

func TestEmployeeHandler_List_InvalidFilter(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/employees?is_admin=maybe", srv.token(t, testAdmin), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/employees?sort_by=salary", srv.token(t, testAdmin), "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAttendanceHandler_RecordPunch_BindsPathEmployee(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/employees/emp-1/punches", srv.token(t, testAdmin),
		`{"date":"2024-01-02","punch_type":"afternoon_out","time":"18:03"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "emp-1", srv.attendance.recorded.EmployeeID)
	assert.Equal(t, "18:03", srv.attendance.recorded.Time)
}

func TestReportHandler_Export(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/reports/export?month=2024-02&format=pdf&employee_id=emp-1,emp-2&employee_id=emp-3",
		srv.token(t, testAdmin), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="attendance-2024-02.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-fake", w.Body.String())
	assert.Equal(t, []string{"emp-1", "emp-2", "emp-3"}, srv.reports.req.EmployeeIDs)
}

func TestReportHandler_Export_InvalidFormat(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/reports/export?month=2024-02&format=csv", srv.token(t, testAdmin), "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

// ===== DASHBOARD =====

func TestDashboardHandler_GetDashboard(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/dashboard", srv.token(t, testAdmin), "")

	require.Equal(t, http.StatusOK, w.Code)
	roster := decodeBody(t, w)["data"].(map[string]interface{})["roster"].(map[string]interface{})
	assert.Equal(t, float64(1), roster["administrators"])
	assert.Equal(t, float64(2), roster["collaborators"])
}

func TestDashboardHandler_GetDailyAttendance(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/dashboard/attendance?date=2024-01-02", srv.token(t, testAdmin), "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-01-02", srv.dashboard.date)
	employees := decodeBody(t, w)["data"].(map[string]interface{})["employees"].([]interface{})
	require.Len(t, employees, 1)
	assert.Equal(t, attendance.EmptyLabel, employees[0].(map[string]interface{})["morning_in"])
}

func TestDashboardHandler_GetDailyAttendance_InvalidDate(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/dashboard/attendance?date=yesterday", srv.token(t, testAdmin), "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/dashboard", srv.token(t, testWorker), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ===== STATIC FILES =====

func TestRouter_ServesUploads(t *testing.T) {
	srv := newTestServer(t)
	dir := filepath.Join(srv.uploads, "justifications", "emp-1")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.pdf"), []byte("%PDF-1.4"), 0o644))

	w := srv.do(t, http.MethodGet, "/uploads/justifications/emp-1/note.pdf", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4", w.Body.String())
}

// ===== EVENTS =====

func TestEventsHandler_Token(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/events/token", srv.token(t, testAdmin), "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	claims, err := srv.jwt.ValidateSSEToken(data["token"].(string))
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestEventsHandler_Stream_RejectsMissingToken(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/events/stream", "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEventsHandler_Stream_DeliversAdminEvents(t *testing.T) {
	srv := newTestServer(t)
	server := httptest.NewServer(srv.handler)
	defer server.Close()

	token, _, err := srv.jwt.GenerateSSEToken(testAdmin.ID, true)
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/v1/events/stream?token=" + token)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)
	_, _ = reader.ReadString('\n') // data
	_, _ = reader.ReadString('\n') // blank

	srv.hub.Publish(sse.AdminsChannel, attendance.EventPunchRecorded, attendance.PunchEvent{
		EmployeeID: testWorker.ID,
		PunchType:  attendance.PunchMorningIn,
		Time:       "07:50:00",
	})

	lines := make(chan string, 2)
	go func() {
		for i := 0; i < 2; i++ {
			l, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			lines <- l
		}
	}()

	select {
	case l := <-lines:
		assert.Equal(t, fmt.Sprintf("event: %s\n", attendance.EventPunchRecorded), l)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	select {
	case l := <-lines:
		assert.True(t, strings.HasPrefix(l, "data: "))
		assert.Contains(t, l, testWorker.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event data received")
	}
}
