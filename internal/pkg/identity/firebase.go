package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com"
	identityToolkitScope      = "https://www.googleapis.com/auth/identitytoolkit"
	cloudPlatformScope        = "https://www.googleapis.com/auth/cloud-platform"
)

type FirebaseConfig struct {
	ProjectID       string
	APIKey          string
	CredentialsFile string
	// BaseURL overrides the Identity Toolkit endpoint, used by tests and the emulator.
	BaseURL string
}

// FirebaseProvider talks to the Firebase Auth (Identity Toolkit) REST API.
// Admin calls are authorized with service-account credentials, password checks use the web API key.
type FirebaseProvider struct {
	admin   *http.Client
	public  *http.Client
	cfg     FirebaseConfig
	baseURL string
}

// NewFirebaseProvider loads service-account credentials from cfg.CredentialsFile,
// or from Application Default Credentials when the path is empty.
func NewFirebaseProvider(ctx context.Context, cfg FirebaseConfig) (*FirebaseProvider, error) {
	var (
		creds *google.Credentials
		err   error
	)
	if cfg.CredentialsFile != "" {
		data, readErr := os.ReadFile(cfg.CredentialsFile)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read firebase credentials: %w", readErr)
		}
		creds, err = google.CredentialsFromJSON(ctx, data, identityToolkitScope, cloudPlatformScope)
	} else {
		creds, err = google.FindDefaultCredentials(ctx, identityToolkitScope, cloudPlatformScope)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load firebase credentials: %w", err)
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = creds.ProjectID
	}
	return NewFirebaseProviderWithClient(oauth2.NewClient(ctx, creds.TokenSource), http.DefaultClient, cfg), nil
}

// NewFirebaseProviderWithClient uses admin for privileged calls and public for sign-in.
func NewFirebaseProviderWithClient(admin, public *http.Client, cfg FirebaseConfig) *FirebaseProvider {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultIdentityToolkitURL
	}
	return &FirebaseProvider{admin: admin, public: public, cfg: cfg, baseURL: base}
}

type firebaseUser struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Disabled    bool   `json:"disabled"`
}

type firebaseError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error) {
	body := map[string]any{
		"email":         strings.ToLower(params.Email),
		"password":      params.Password,
		"displayName":   params.DisplayName,
		"emailVerified": false,
	}
	var out firebaseUser
	if err := p.call(ctx, p.admin, p.projectURL("accounts"), body, &out); err != nil {
		return Account{}, fmt.Errorf("failed to create firebase account: %w", err)
	}
	return Account{
		ID:          out.LocalID,
		Email:       strings.ToLower(params.Email),
		DisplayName: params.DisplayName,
	}, nil
}

func (p *FirebaseProvider) UpdateAccount(ctx context.Context, id string, params UpdateAccountParams) error {
	body := map[string]any{"localId": id}
	if params.Email != nil {
		body["email"] = strings.ToLower(*params.Email)
	}
	if params.DisplayName != nil {
		body["displayName"] = *params.DisplayName
	}
	if err := p.call(ctx, p.admin, p.projectURL("accounts:update"), body, nil); err != nil {
		return fmt.Errorf("failed to update firebase account: %w", err)
	}
	return nil
}

func (p *FirebaseProvider) SetDisabled(ctx context.Context, id string, disabled bool) error {
	body := map[string]any{"localId": id, "disableUser": disabled}
	if err := p.call(ctx, p.admin, p.projectURL("accounts:update"), body, nil); err != nil {
		return fmt.Errorf("failed to set firebase account status: %w", err)
	}
	return nil
}

func (p *FirebaseProvider) VerifyPassword(ctx context.Context, email, password string) (Account, error) {
	endpoint := p.publicURL("accounts:signInWithPassword")
	body := map[string]any{
		"email":             strings.ToLower(email),
		"password":          password,
		"returnSecureToken": false,
	}
	var out firebaseUser
	if err := p.call(ctx, p.public, endpoint, body, &out); err != nil {
		return Account{}, err
	}
	return Account{ID: out.LocalID, Email: out.Email, DisplayName: out.DisplayName}, nil
}

// SendPasswordResetEmail lets Firebase mail its own reset link with an out-of-band code.
func (p *FirebaseProvider) SendPasswordResetEmail(ctx context.Context, email string) error {
	body := map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       strings.ToLower(email),
	}
	err := p.call(ctx, p.public, p.publicURL("accounts:sendOobCode"), body, nil)
	if errors.Is(err, ErrInvalidCredentials) {
		return ErrAccountNotFound
	}
	return err
}

func (p *FirebaseProvider) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	body := map[string]any{
		"oobCode":     code,
		"newPassword": newPassword,
	}
	return p.call(ctx, p.public, p.publicURL("accounts:resetPassword"), body, nil)
}

func (p *FirebaseProvider) publicURL(method string) string {
	return p.baseURL + "/v1/" + method + "?key=" + url.QueryEscape(p.cfg.APIKey)
}

func (p *FirebaseProvider) projectURL(method string) string {
	return fmt.Sprintf("%s/v1/projects/%s/%s", p.baseURL, url.PathEscape(p.cfg.ProjectID), method)
}

func (p *FirebaseProvider) call(ctx context.Context, client *http.Client, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var fe firebaseError
		if jsonErr := json.Unmarshal(raw, &fe); jsonErr != nil || fe.Error.Message == "" {
			return fmt.Errorf("identity toolkit returned status %d", resp.StatusCode)
		}
		return mapFirebaseError(fe.Error.Message)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Messages look like "EMAIL_EXISTS" or "WEAK_PASSWORD : Password should be at least 6 characters".
func mapFirebaseError(message string) error {
	code := strings.TrimSpace(strings.SplitN(message, ":", 2)[0])
	switch code {
	case "EMAIL_EXISTS", "DUPLICATE_EMAIL":
		return ErrEmailTaken
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return ErrInvalidCredentials
	case "USER_DISABLED":
		return ErrAccountDisabled
	case "USER_NOT_FOUND":
		return ErrAccountNotFound
	case "WEAK_PASSWORD":
		return ErrWeakPassword
	case "EXPIRED_OOB_CODE", "INVALID_OOB_CODE":
		return ErrInvalidResetCode
	}
	return fmt.Errorf("identity toolkit error: %s", message)
}
