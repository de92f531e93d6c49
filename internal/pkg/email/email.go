package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService sends account notifications to employees
type EmailService interface {
	SendAccountCreated(to, name string, windows []string) error
	SendAccountStatusChanged(to, name string, active bool) error
	SendPasswordReset(to, resetLink, expiresAt string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendFunc
	backoff   time.Duration
}

func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
		backoff:   time.Second,
	}, nil
}

type accountCreatedData struct {
	Name     string
	Email    string
	LoginURL string
	Windows  []string
}

// SendAccountCreated welcomes a newly registered employee
func (s *emailServiceImpl) SendAccountCreated(to, name string, windows []string) error {
	data := accountCreatedData{
		Name:     name,
		Email:    to,
		LoginURL: s.cfg.AppURL,
		Windows:  windows,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "account_created.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, "Your HourSync account", body.String())
}

type accountStatusData struct {
	Name   string
	Active bool
}

func (s *emailServiceImpl) SendAccountStatusChanged(to, name string, active bool) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "account_status.html", accountStatusData{Name: name, Active: active}); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject := "Your HourSync account was deactivated"
	if active {
		subject = "Your HourSync account was reactivated"
	}
	return s.sendHTML(to, subject, body.String())
}

type passwordResetData struct {
	ResetLink string
	ExpiresAt string
}

// SendPasswordReset mails a one-time reset link
func (s *emailServiceImpl) SendPasswordReset(to, resetLink, expiresAt string) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "password_reset.html", passwordResetData{ResetLink: resetLink, ExpiresAt: expiresAt}); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, "Reset your HourSync password", body.String())
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// 1x, 2x, 4x backoff
		if attempt < maxRetries {
			time.Sleep(s.backoff << (attempt - 1))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
