package http

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/hoursync/hoursync-backend-go/internal/config"
	"github.com/hoursync/hoursync-backend-go/internal/handler/http/middleware"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/jwt"
)

// NewLogger builds the JSON logger shared by the application and the request logger
func NewLogger(app config.AppConfig) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       ParseLevel(app.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app.Name),
		slog.String("version", app.Version),
		slog.String("env", app.Env),
	)
}

// ParseLevel maps LOG_LEVEL to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	JWTService jwt.Service,
	activeEmployee *middleware.ActiveEmployeeMiddleware,
	authHandler AuthHandler,
	attendanceHandler AttendanceHandler,
	employeeHandler EmployeeHandler,
	reportHandler ReportHandler,
	dashboardHandler DashboardHandler,
	eventsHandler EventsHandler,
) *chi.Mux {
	r := chi.NewRouter()

	allowedOrigins := cfg.App.CORSAllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
		// The event stream stays open for the whole session
		Skip: func(req *http.Request, respStatus int) bool {
			return strings.HasSuffix(req.URL.Path, "/events/stream")
		},
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	// Justification files of the local storage backend
	if baseURL := strings.TrimRight(cfg.Storage.BaseURL, "/"); strings.HasPrefix(baseURL, "/") {
		fileServer := http.StripPrefix(baseURL, http.FileServer(http.Dir(cfg.Storage.BasePath)))
		r.Get(baseURL+"/*", fileServer.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/check-admin", authHandler.CheckAdmin)
			r.Post("/password-reset", authHandler.PasswordReset)
			r.Post("/password-reset/confirm", authHandler.ConfirmPasswordReset)
		})

		r.Get("/events/stream", eventsHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))
			r.Use(activeEmployee.RequireActiveEmployee)

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/logout", authHandler.Logout)
			r.Post("/events/token", eventsHandler.Token)

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/time", attendanceHandler.ServerTime)
				r.Get("/today", attendanceHandler.Today)
				r.Post("/clock-in", attendanceHandler.ClockIn)
				r.Post("/clock-out", attendanceHandler.ClockOut)
				r.Post("/justifications", attendanceHandler.SubmitJustification)
				r.Get("/report", attendanceHandler.MyReport)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", employeeHandler.ListEmployees)
					r.Post("/", employeeHandler.CreateEmployee)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", employeeHandler.GetEmployee)
						r.Put("/", employeeHandler.UpdateEmployee)
						r.Patch("/status", employeeHandler.SetStatus)
						r.Get("/report", attendanceHandler.EmployeeReport)
						r.Post("/punches", attendanceHandler.RecordPunch)
						r.Put("/day-logs/{date}", attendanceHandler.CorrectDayLog)
						r.Post("/justifications", attendanceHandler.RecordJustification)
					})
				})

				r.Route("/dashboard", func(r chi.Router) {
					r.Get("/", dashboardHandler.GetDashboard)
					r.Get("/attendance", dashboardHandler.GetDailyAttendance)
				})

				r.Get("/reports/export", reportHandler.Export)
			})
		})
	})
	return r
}
