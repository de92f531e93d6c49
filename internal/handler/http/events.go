package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/domain/auth"
	"github.com/hoursync/hoursync-backend-go/internal/handler/http/middleware"
	"github.com/hoursync/hoursync-backend-go/internal/handler/http/response"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/jwt"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

type EventsHandler interface {
	// Token issues a short-lived token for the event stream
	Token(w http.ResponseWriter, r *http.Request)
	// Stream handles the SSE connection for live punch updates
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventsHandlerImpl struct {
	jwtService  jwt.Service
	authService auth.AuthService
	hub         *sse.Hub
}

func NewEventsHandler(jwtService jwt.Service, authService auth.AuthService, hub *sse.Hub) EventsHandler {
	return &eventsHandlerImpl{
		jwtService:  jwtService,
		authService: authService,
		hub:         hub,
	}
}

// Token implements EventsHandler.
func (h *eventsHandlerImpl) Token(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.authService.IssueSSEToken(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Stream implements EventsHandler.
func (h *eventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, the token comes in the query
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	channel := claims.EmployeeID
	if claims.IsAdmin {
		channel = sse.AdminsChannel
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(channel)
	defer cleanup()
	slog.Debug("SSE client connected", "employee_id", claims.EmployeeID, "channel", channel)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"channel\":%q}\n\n", channel)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("Failed to encode SSE event", "type", event.Type, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			slog.Debug("SSE client disconnected", "employee_id", claims.EmployeeID)
			return
		}
	}
}
