package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/config"
	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	appHTTP "github.com/hoursync/hoursync-backend-go/internal/handler/http"
	"github.com/hoursync/hoursync-backend-go/internal/handler/http/middleware"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/clock"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/cron"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/database"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/email"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/identity"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/jwt"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/sse"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/storage"
	"github.com/hoursync/hoursync-backend-go/internal/repository/postgresql"
	attendanceService "github.com/hoursync/hoursync-backend-go/internal/service/attendance"
	serviceAuth "github.com/hoursync/hoursync-backend-go/internal/service/auth"
	dashboardService "github.com/hoursync/hoursync-backend-go/internal/service/dashboard"
	employeeService "github.com/hoursync/hoursync-backend-go/internal/service/employee"
	"github.com/hoursync/hoursync-backend-go/internal/service/file"
	reportService "github.com/hoursync/hoursync-backend-go/internal/service/report"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := appHTTP.NewLogger(cfg.App)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	schedule, err := cfg.Schedule()
	if err != nil {
		return err
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	dayLogRepo := postgresql.NewDayLogRepository(db)

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.AccessTokenTTL())

	var identityProvider identity.Provider
	switch cfg.Identity.Provider {
	case config.IdentityFirebase:
		identityProvider, err = identity.NewFirebaseProvider(ctx, identity.FirebaseConfig{
			ProjectID:       cfg.Identity.Firebase.ProjectID,
			APIKey:          cfg.Identity.Firebase.APIKey,
			CredentialsFile: cfg.Identity.Firebase.CredentialsFile,
			BaseURL:         cfg.Identity.Firebase.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize firebase identity provider: %w", err)
		}
	default:
		local := identity.NewLocalProvider(postgresql.NewAccountRepository(db))
		local.EnablePasswordReset(JWTService, emailService, strings.TrimRight(cfg.SMTP.AppURL, "/")+"/reset-password")
		identityProvider = local
	}

	var trustedClock clock.Clock
	switch cfg.Attendance.ClockSource {
	case config.ClockSystem:
		trustedClock = clock.NewSystemClock(loc)
	default:
		trustedClock = clock.NewDatabaseClock(db, loc)
	}

	engine, err := attendance.NewEngine(schedule)
	if err != nil {
		return err
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize local storage: %w", err)
	}
	fileService := file.NewFileService(fileStorage)

	events := sse.NewHub()

	attendanceSvc := attendanceService.NewAttendanceService(engine, trustedClock, dayLogRepo, employeeRepo, fileService, events)
	employeeSvc := employeeService.NewEmployeeService(transactor, employeeRepo, identityProvider, emailService, schedule)
	authSvc := serviceAuth.NewAuthService(identityProvider, employeeRepo, JWTService)
	reportSvc := reportService.NewReportService(attendanceSvc, employeeRepo)
	dashboardSvc := dashboardService.NewDashboardService(postgresql.NewDashboardRepository(db), trustedClock, schedule)

	scheduler := cron.NewScheduler(loc)
	if err := cron.NewAttendanceJobs(attendanceSvc, trustedClock, loc).RegisterJobs(scheduler, cfg.Attendance.ProvisionCron); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		cfg,
		logger,
		JWTService,
		middleware.NewActiveEmployeeMiddleware(employeeRepo),
		appHTTP.NewAuthHandler(authSvc, employeeSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewEmployeeHandler(employeeSvc),
		appHTTP.NewReportHandler(reportSvc),
		appHTTP.NewDashboardHandler(dashboardSvc),
		appHTTP.NewEventsHandler(JWTService, authSvc, events),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		// Streams stay open, so no WriteTimeout
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server started",
			"addr", server.Addr,
			"timezone", loc.String(),
			"identity_provider", cfg.Identity.Provider,
			"clock_source", cfg.Attendance.ClockSource,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}
