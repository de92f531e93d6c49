package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already in use by another account")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidResetCode   = errors.New("password reset code is invalid or expired")
	ErrResetUnavailable   = errors.New("password reset is not configured")
)

// Account is an identity-provider user. Its ID is also the employee ID.
type Account struct {
	ID          string
	Email       string
	DisplayName string
	Disabled    bool
	CreatedAt   time.Time
}

type CreateAccountParams struct {
	Email       string
	Password    string
	DisplayName string
}

// UpdateAccountParams changes only the non-nil fields.
type UpdateAccountParams struct {
	Email       *string
	DisplayName *string
}

// Provider is the external identity service used by administrative flows and login.
type Provider interface {
	CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error)
	UpdateAccount(ctx context.Context, id string, params UpdateAccountParams) error
	SetDisabled(ctx context.Context, id string, disabled bool) error
	// VerifyPassword returns ErrInvalidCredentials for an unknown email or wrong password.
	VerifyPassword(ctx context.Context, email, password string) (Account, error)
	// SendPasswordResetEmail returns ErrAccountNotFound for an unknown email.
	SendPasswordResetEmail(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error
}
