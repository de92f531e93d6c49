package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hoursync/hoursync-backend-go/internal/domain/auth"
	"github.com/hoursync/hoursync-backend-go/internal/domain/employee"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/identity"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/jwt"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/validator"
)

type AuthServiceImpl struct {
	identity     identity.Provider
	employeeRepo employee.EmployeeRepository
	jwtService   jwt.Service
	// async sends reset emails after the response so timing does not reveal registered addresses
	async func(fn func())
}

func NewAuthService(provider identity.Provider, employeeRepo employee.EmployeeRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		identity:     provider,
		employeeRepo: employeeRepo,
		jwtService:   jwtService,
		async:        func(fn func()) { go fn() },
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	account, err := a.identity.VerifyPassword(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrAccountNotFound):
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		case errors.Is(err, identity.ErrAccountDisabled):
			return auth.TokenResponse{}, auth.ErrAccountDisabled
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to verify credentials: %w", err)
	}

	emp, err := a.employeeRepo.GetByID(ctx, account.ID)
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		// Accounts created before the roster row share the email instead of the ID.
		emp, err = a.employeeRepo.GetByEmail(ctx, account.Email)
	}
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Warn("Identity account without employee record", "account_id", account.ID)
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, err
	}
	if !emp.IsActive() {
		return auth.TokenResponse{}, auth.ErrAccountDisabled
	}

	token, expiresAt, err := a.jwtService.GenerateAccessToken(emp.ID, emp.Email, emp.IsAdmin)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	slog.Info("Employee logged in", "employee_id", emp.ID)
	return auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Employee:    employee.NewEmployeeResponse(emp),
	}, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string, expiresAt int64) error {
	if token == "" {
		return auth.ErrInvalidToken
	}
	a.jwtService.RevokeToken(token, expiresAt)
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, employeeID string) (auth.MeResponse, error) {
	emp, err := a.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return auth.MeResponse{}, err
	}
	return auth.MeResponse{EmployeeResponse: employee.NewEmployeeResponse(emp)}, nil
}

// IssueSSEToken implements auth.AuthService.
func (a *AuthServiceImpl) IssueSSEToken(ctx context.Context, employeeID string) (auth.SSETokenResponse, error) {
	emp, err := a.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return auth.SSETokenResponse{}, err
	}
	if !emp.IsActive() {
		return auth.SSETokenResponse{}, auth.ErrAccountDisabled
	}

	token, expiresIn, err := a.jwtService.GenerateSSEToken(emp.ID, emp.IsAdmin)
	if err != nil {
		return auth.SSETokenResponse{}, fmt.Errorf("failed to generate SSE token: %w", err)
	}
	return auth.SSETokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}

// RequestPasswordReset implements auth.AuthService.
func (a *AuthServiceImpl) RequestPasswordReset(ctx context.Context, req auth.PasswordResetRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	sendCtx := context.WithoutCancel(ctx)
	a.async(func() {
		err := a.identity.SendPasswordResetEmail(sendCtx, req.Email)
		switch {
		case err == nil:
			slog.Info("Password reset email requested")
		case errors.Is(err, identity.ErrAccountNotFound), errors.Is(err, identity.ErrAccountDisabled):
			slog.Info("Password reset skipped", "reason", err.Error())
		default:
			slog.Error("Failed to send password reset email", "error", err)
		}
	})
	return nil
}

// ResetPassword implements auth.AuthService.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, req auth.ConfirmPasswordResetRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	err := a.identity.ConfirmPasswordReset(ctx, req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidResetCode):
			return auth.ErrInvalidResetToken
		case errors.Is(err, identity.ErrWeakPassword):
			return validator.ValidationErrors{{Field: "password", Message: identity.ErrWeakPassword.Error()}}
		case errors.Is(err, identity.ErrAccountDisabled):
			return auth.ErrAccountDisabled
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	slog.Info("Password reset completed")
	return nil
}
