package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // ATTENDANCE_TIMEZONE must resolve on minimal images

	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	SMTP       SMTPConfig
	Storage    StorageConfig
	Identity   IdentityConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name               string
	Version            string
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// AppURL is linked from outgoing emails
	AppURL string
}

// StorageConfig points local storage at a directory served under BaseURL
type StorageConfig struct {
	BasePath string
	BaseURL  string
}

const (
	IdentityLocal    = "local"
	IdentityFirebase = "firebase"
)

type IdentityConfig struct {
	Provider string
	Firebase FirebaseConfig
}

type FirebaseConfig struct {
	ProjectID       string
	APIKey          string
	CredentialsFile string
	BaseURL         string
}

const (
	ClockSystem   = "system"
	ClockDatabase = "database"
)

type AttendanceConfig struct {
	Timezone      string
	Windows       map[attendance.PunchType]string
	BlockWeekends bool
	ClockSource   string
	ProvisionCron string
}

// windowEnv maps each punch type to the env var holding its "HH:MM-HH:MM" window.
var windowEnv = map[attendance.PunchType]string{
	attendance.PunchMorningIn:    "WINDOW_MORNING_IN",
	attendance.PunchMorningOut:   "WINDOW_MORNING_OUT",
	attendance.PunchAfternoonIn:  "WINDOW_AFTERNOON_IN",
	attendance.PunchAfternoonOut: "WINDOW_AFTERNOON_OUT",
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded, using process environment", "reason", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hoursync"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:               getEnv("APP_NAME", "hoursync-api"),
		Version:            getEnv("APP_VERSION", "dev"),
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"),
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@hoursync.local"),
		FromName: getEnv("SMTP_FROM_NAME", "HourSync"),
		AppURL:   getEnv("APP_URL", ""),
	}

	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "/uploads"),
	}

	config.Identity = IdentityConfig{
		Provider: strings.ToLower(getEnv("IDENTITY_PROVIDER", IdentityLocal)),
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			APIKey:          getEnv("FIREBASE_API_KEY", ""),
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
			BaseURL:         getEnv("FIREBASE_AUTH_URL", ""),
		},
	}

	// Attendance configuration
	blockWeekends, err := strconv.ParseBool(getEnv("ATTENDANCE_BLOCK_WEEKENDS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_BLOCK_WEEKENDS: %w", err)
	}

	defaults := attendance.DefaultSchedule()
	windows := make(map[attendance.PunchType]string, len(windowEnv))
	for p, key := range windowEnv {
		windows[p] = getEnv(key, defaults.Windows[p].String())
	}

	config.Attendance = AttendanceConfig{
		Timezone:      getEnv("ATTENDANCE_TIMEZONE", "America/Sao_Paulo"),
		Windows:       windows,
		BlockWeekends: blockWeekends,
		ClockSource:   strings.ToLower(getEnv("ATTENDANCE_CLOCK_SOURCE", ClockDatabase)),
		ProvisionCron: getEnv("ATTENDANCE_PROVISION_CRON", "5 0 * * *"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Password == "" {
		errs = append(errs, fmt.Errorf("DB_PASSWORD is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, fmt.Errorf("JWT_SECRET_KEY is required"))
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		errs = append(errs, fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME is invalid: %w", err))
	}

	switch c.Identity.Provider {
	case IdentityLocal:
	case IdentityFirebase:
		if c.Identity.Firebase.APIKey == "" {
			errs = append(errs, fmt.Errorf("FIREBASE_API_KEY is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("IDENTITY_PROVIDER must be one of: %s, %s", IdentityLocal, IdentityFirebase))
	}

	if c.Attendance.ClockSource != ClockSystem && c.Attendance.ClockSource != ClockDatabase {
		errs = append(errs, fmt.Errorf("ATTENDANCE_CLOCK_SOURCE must be one of: %s, %s", ClockSystem, ClockDatabase))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Schedule(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// AccessTokenTTL returns the parsed access token lifetime
func (c *Config) AccessTokenTTL() time.Duration {
	ttl, err := time.ParseDuration(c.JWT.AccessExpiration)
	if err != nil {
		return 12 * time.Hour
	}
	return ttl
}

// Location loads the timezone punches are evaluated in
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		return nil, fmt.Errorf("ATTENDANCE_TIMEZONE is invalid: %w", err)
	}
	return loc, nil
}

// Schedule parses the configured punch windows
func (c *Config) Schedule() (attendance.Schedule, error) {
	schedule := attendance.Schedule{
		Windows:       make(map[attendance.PunchType]attendance.Window, len(attendance.PunchTypes)),
		BlockWeekends: c.Attendance.BlockWeekends,
	}
	for _, p := range attendance.PunchTypes {
		raw, ok := c.Attendance.Windows[p]
		if !ok {
			return attendance.Schedule{}, fmt.Errorf("%s is required", windowEnv[p])
		}
		w, err := attendance.ParseWindow(raw)
		if err != nil {
			return attendance.Schedule{}, fmt.Errorf("%s: %w", windowEnv[p], err)
		}
		schedule.Windows[p] = w
	}
	if err := schedule.Validate(); err != nil {
		return attendance.Schedule{}, err
	}
	return schedule, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
