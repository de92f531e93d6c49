package auth

import (
	"context"
)

type AuthService interface {
	// Login verifies the password with the identity provider and issues an access token
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)

	// Logout revokes the presented access token until it expires
	Logout(ctx context.Context, token string, expiresAt int64) error

	Me(ctx context.Context, employeeID string) (MeResponse, error)

	// IssueSSEToken returns a short-lived token for the event stream
	IssueSSEToken(ctx context.Context, employeeID string) (SSETokenResponse, error)

	// RequestPasswordReset answers the same way whether or not the email is registered
	RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error

	ResetPassword(ctx context.Context, req ConfirmPasswordResetRequest) error
}
