package jwt

import (
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE           = "sse"
	TokenTypePasswordReset = "password_reset"

	sseTokenTTL           = 5 * time.Minute
	passwordResetTokenTTL = 30 * time.Minute
)

// SSEClaims identifies the listener of an event stream.
type SSEClaims struct {
	EmployeeID string
	IsAdmin    bool
}

// PasswordResetClaims binds a reset token to an account and to the password
// it is allowed to replace.
type PasswordResetClaims struct {
	AccountID   string
	Fingerprint string
}

type Service interface {
	GenerateAccessToken(employeeID string, email string, isAdmin bool) (token string, expiresAt int64, err error)
	GenerateSSEToken(employeeID string, isAdmin bool) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (SSEClaims, error)
	GeneratePasswordResetToken(accountID string, fingerprint string) (token string, expiresAt time.Time, err error)
	ValidatePasswordResetToken(tokenString string) (PasswordResetClaims, error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string, expiresAt int64)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTokenTTL time.Duration
	tokenAuth      *jwtauth.JWTAuth
	// revokedTokens maps a logged-out token to its expiry, entries are pruned once expired.
	revokedTokens map[string]int64
	mu            sync.RWMutex
	now           func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenTTL time.Duration) Service {
	return &JWTService{
		accessTokenTTL: accessTokenTTL,
		tokenAuth:      jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:  make(map[string]int64),
		now:            time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(employeeID string, email string, isAdmin bool) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenTTL).Unix()

	claims := map[string]interface{}{
		"sub":         employeeID,
		"employee_id": employeeID,
		"email":       email,
		"is_admin":    isAdmin,
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	}
	jwtauth.SetIssuedNow(claims)

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) RevokeToken(token string, expiresAt int64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now().Unix()
	for t, exp := range j.revokedTokens {
		if exp < now {
			delete(j.revokedTokens, t)
		}
	}
	j.revokedTokens[token] = expiresAt
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// GenerateSSEToken generates a short-lived token for EventSource connections,
// which cannot send an Authorization header.
func (j *JWTService) GenerateSSEToken(employeeID string, isAdmin bool) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"is_admin":    isAdmin,
		"type":        TokenTypeSSE,
		"exp":         expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken checks signature, expiry and type of an SSE token
func (j *JWTService) ValidateSSEToken(tokenString string) (SSEClaims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return SSEClaims{}, err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return SSEClaims{}, jwt.ErrInvalidJWT()
	}

	employeeIDVal, ok := token.Get("employee_id")
	if !ok {
		return SSEClaims{}, jwt.ErrInvalidJWT()
	}
	employeeID, ok := employeeIDVal.(string)
	if !ok || employeeID == "" {
		return SSEClaims{}, jwt.ErrInvalidJWT()
	}

	isAdmin, _ := token.Get("is_admin")
	admin, _ := isAdmin.(bool)

	return SSEClaims{EmployeeID: employeeID, IsAdmin: admin}, nil
}

// GeneratePasswordResetToken signs a reset token for accountID. The fingerprint
// is derived from the current password hash so the token stops validating once
// the password changes.
func (j *JWTService) GeneratePasswordResetToken(accountID string, fingerprint string) (token string, expiresAt time.Time, err error) {
	expiresAt = j.now().Add(passwordResetTokenTTL)

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":  accountID,
		"fp":   fingerprint,
		"type": TokenTypePasswordReset,
		"exp":  expiresAt.Unix(),
	})
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

func (j *JWTService) ValidatePasswordResetToken(tokenString string) (PasswordResetClaims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return PasswordResetClaims{}, err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypePasswordReset {
		return PasswordResetClaims{}, jwt.ErrInvalidJWT()
	}

	fpVal, _ := token.Get("fp")
	fingerprint, _ := fpVal.(string)
	if token.Subject() == "" || fingerprint == "" {
		return PasswordResetClaims{}, jwt.ErrInvalidJWT()
	}

	return PasswordResetClaims{AccountID: token.Subject(), Fingerprint: fingerprint}, nil
}
