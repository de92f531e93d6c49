package identity

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hoursync/hoursync-backend-go/internal/pkg/jwt"
)

// AccountStore persists local accounts. Implemented by the postgresql repository.
type AccountStore interface {
	Create(ctx context.Context, account Account, passwordHash string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, string, error)
	GetByID(ctx context.Context, id string) (Account, string, error)
	SetPasswordHash(ctx context.Context, id string, passwordHash string) error
	Update(ctx context.Context, id string, params UpdateAccountParams) error
	SetDisabled(ctx context.Context, id string, disabled bool) error
}

// ResetTokens signs and checks password reset tokens. Implemented by jwt.Service.
type ResetTokens interface {
	GeneratePasswordResetToken(accountID string, fingerprint string) (string, time.Time, error)
	ValidatePasswordResetToken(tokenString string) (jwt.PasswordResetClaims, error)
}

// ResetMailer delivers reset links. Implemented by email.EmailService.
type ResetMailer interface {
	SendPasswordReset(to, resetLink, expiresAt string) error
}

// LocalProvider keeps accounts in the service database with bcrypt password hashes.
type LocalProvider struct {
	store    AccountStore
	cost     int
	tokens   ResetTokens
	mailer   ResetMailer
	resetURL string
}

func NewLocalProvider(store AccountStore) *LocalProvider {
	return &LocalProvider{store: store, cost: bcrypt.DefaultCost}
}

// EnablePasswordReset lets the provider mail signed reset links pointing at resetURL.
func (p *LocalProvider) EnablePasswordReset(tokens ResetTokens, mailer ResetMailer, resetURL string) {
	p.tokens = tokens
	p.mailer = mailer
	p.resetURL = resetURL
}

func (p *LocalProvider) CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error) {
	if len(params.Password) < 6 {
		return Account{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), p.cost)
	if err != nil {
		return Account{}, fmt.Errorf("failed to hash password: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Account{}, fmt.Errorf("failed to generate account id: %w", err)
	}
	return p.store.Create(ctx, Account{
		ID:          id.String(),
		Email:       strings.ToLower(params.Email),
		DisplayName: params.DisplayName,
	}, string(hash))
}

func (p *LocalProvider) UpdateAccount(ctx context.Context, id string, params UpdateAccountParams) error {
	if params.Email != nil {
		email := strings.ToLower(*params.Email)
		params.Email = &email
	}
	return p.store.Update(ctx, id, params)
}

func (p *LocalProvider) SetDisabled(ctx context.Context, id string, disabled bool) error {
	return p.store.SetDisabled(ctx, id, disabled)
}

func (p *LocalProvider) VerifyPassword(ctx context.Context, email, password string) (Account, error) {
	account, hash, err := p.store.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if account.Disabled {
		return Account{}, ErrAccountDisabled
	}
	return account, nil
}

func (p *LocalProvider) SendPasswordResetEmail(ctx context.Context, email string) error {
	if p.tokens == nil || p.mailer == nil {
		return ErrResetUnavailable
	}
	account, hash, err := p.store.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	if account.Disabled {
		return ErrAccountDisabled
	}

	token, expiresAt, err := p.tokens.GeneratePasswordResetToken(account.ID, passwordFingerprint(hash))
	if err != nil {
		return fmt.Errorf("failed to sign reset token: %w", err)
	}
	link := p.resetURL + "?token=" + url.QueryEscape(token)
	return p.mailer.SendPasswordReset(account.Email, link, expiresAt.UTC().Format("2006-01-02 15:04 MST"))
}

// ConfirmPasswordReset accepts a token only while the password it was issued for is unchanged,
// so each token works once.
func (p *LocalProvider) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	if p.tokens == nil {
		return ErrResetUnavailable
	}
	if len(newPassword) < 6 {
		return ErrWeakPassword
	}
	claims, err := p.tokens.ValidatePasswordResetToken(code)
	if err != nil {
		return ErrInvalidResetCode
	}
	account, hash, err := p.store.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrInvalidResetCode
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(passwordFingerprint(hash)), []byte(claims.Fingerprint)) != 1 {
		return ErrInvalidResetCode
	}
	if account.Disabled {
		return ErrAccountDisabled
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), p.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return p.store.SetPasswordHash(ctx, account.ID, string(newHash))
}

func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
