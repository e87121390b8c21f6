// Package client is the typed HTTP client for the SBP backend. It maps
// the fixed endpoint set onto Go methods and normalizes responses into a
// small result vocabulary: decoded payloads on success, *APIError for
// explicit backend refusals, ErrUnreachable-wrapped errors for transport
// failures.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChrozaGaming/sbpappv2/pkg/domain"
)

// requestTimeout is the hard cap on any single request. The health probe
// uses a shorter, caller-enforced context deadline on top of this.
const requestTimeout = 15 * time.Second

// Client is the SBP API client. Auth endpoints take the bearer token per
// call because the token changes mid-flow during first-time activation.
type Client struct {
	baseURL    string
	deviceID   string
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a client for the given backend base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		log: zerolog.Nop(),
	}
}

// SetLogger routes request-failure logging to l. The default discards.
func (c *Client) SetLogger(l zerolog.Logger) { c.log = l }

// SetDeviceID attaches the persisted install identifier to every request
// as an X-Device-Id header.
func (c *Client) SetDeviceID(id string) { c.deviceID = id }

// TokenResponse is the payload returned by login and license verification.
type TokenResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// LoginKind tags the three possible login outcomes.
type LoginKind int

const (
	// LoginAuthenticated means the backend issued a token.
	LoginAuthenticated LoginKind = iota
	// LoginLicenseRequired means the account exists but has not completed
	// first-time activation; the flow must continue with a license key.
	LoginLicenseRequired
	// LoginRejected means the backend refused the credentials.
	LoginRejected
)

// LoginOutcome is the tagged result of a login attempt. Exactly one
// branch is meaningful, selected by Kind.
type LoginOutcome struct {
	Kind    LoginKind
	Token   string      // LoginAuthenticated
	User    domain.User // LoginAuthenticated
	Email   string      // LoginLicenseRequired: carried into verification
	Message string      // LoginRejected
}

// CheckEmail asks whether an account exists for the address.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	params := url.Values{}
	params.Set("email", email)

	var out struct {
		Exists bool `json:"exists"`
	}
	if err := c.get(ctx, "/api/auth/check-email?"+params.Encode(), "", &out); err != nil {
		return false, fmt.Errorf("client.CheckEmail: %w", err)
	}
	return out.Exists, nil
}

// Login attempts authentication. The outcome is discriminated by status
// code plus the license_required body flag, never by message text:
// HTTP 202 with license_required routes to activation, any other 2xx with
// a token is authenticated, everything else is a rejection. An empty
// password is a legal input — the email step uses it to probe for the
// license-required branch.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginOutcome, error) {
	body := map[string]string{"email": email, "password": password}
	resp, raw, err := c.do(ctx, http.MethodPost, "/api/login", "", body)
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}

	var payload struct {
		TokenResponse
		LicenseRequired bool   `json:"license_required"`
		Message         string `json:"message"`
	}
	_ = json.Unmarshal(raw, &payload) // tolerated: absent body handled below

	if resp.StatusCode == http.StatusAccepted && payload.LicenseRequired {
		return &LoginOutcome{Kind: LoginLicenseRequired, Email: email}, nil
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if payload.Token == "" || payload.User.Email == "" {
			return nil, fmt.Errorf("client.Login: unexpected response format")
		}
		return &LoginOutcome{Kind: LoginAuthenticated, Token: payload.Token, User: payload.User}, nil
	}

	msg := payload.Message
	if msg == "" {
		msg = "Login gagal"
	}
	return &LoginOutcome{Kind: LoginRejected, Message: msg}, nil
}

// VerifyLicense exchanges an email + license key for a token during
// first-time activation.
func (c *Client) VerifyLicense(ctx context.Context, email, key string) (*TokenResponse, error) {
	body := map[string]string{"email": strings.TrimSpace(email), "key": strings.TrimSpace(key)}
	var out TokenResponse
	if err := c.post(ctx, "/api/license/verify", "", body, &out); err != nil {
		return nil, fmt.Errorf("client.VerifyLicense: %w", err)
	}
	if out.Token == "" || out.User.Email == "" {
		return nil, fmt.Errorf("client.VerifyLicense: unexpected response format")
	}
	return &out, nil
}

// SetPassword stores the user's chosen password after activation. The
// caller pre-checks the minimum length to save a round-trip, but the
// server remains the authority and may still reject.
func (c *Client) SetPassword(ctx context.Context, token, password string) error {
	if err := c.post(ctx, "/api/auth/set-password", token, map[string]string{"password": password}, nil); err != nil {
		return fmt.Errorf("client.SetPassword: %w", err)
	}
	return nil
}

// Me returns the profile for the bearer token. A stale token surfaces as
// an APIError with status 401.
func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/api/me", token, &u); err != nil {
		return nil, fmt.Errorf("client.Me: %w", err)
	}
	return &u, nil
}

// Register creates a self-service account.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.post(ctx, "/api/register", "", body, nil); err != nil {
		return fmt.Errorf("client.Register: %w", err)
	}
	return nil
}

// SubmitAttendance posts an attendance record. A duplicate same-day
// record surfaces as an APIError with status 409.
func (c *Client) SubmitAttendance(ctx context.Context, token string, req domain.AttendanceRequest) error {
	if err := c.post(ctx, "/api/absensi", token, req, nil); err != nil {
		return fmt.Errorf("client.SubmitAttendance: %w", err)
	}
	return nil
}

// AttendanceToday reports whether an attendance record already exists for
// the email on the given date (wire format 2006-01-02).
func (c *Client) AttendanceToday(ctx context.Context, email, date string) (bool, error) {
	params := url.Values{}
	params.Set("email", email)
	params.Set("tanggal", date)

	var out struct {
		Exists bool `json:"exists"`
	}
	if err := c.get(ctx, "/api/absensi/today?"+params.Encode(), "", &out); err != nil {
		return false, fmt.Errorf("client.AttendanceToday: %w", err)
	}
	return out.Exists, nil
}

// CreatedUser is the response from the user-creation endpoint. LicenseKey
// is set when the backend issued an activation key for the new account.
type CreatedUser struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Roles      string `json:"roles"`
	LicenseKey string `json:"license_key,omitempty"`
}

// CreateUser registers a new account with the given role. A duplicate
// email surfaces as an APIError with status 409.
func (c *Client) CreateUser(ctx context.Context, name, email, role string) (*CreatedUser, error) {
	body := map[string]string{
		"name":  strings.TrimSpace(name),
		"email": strings.TrimSpace(email),
		"roles": role,
	}
	var out CreatedUser
	if err := c.post(ctx, "/api/users", "", body, &out); err != nil {
		return nil, fmt.Errorf("client.CreateUser: %w", err)
	}
	return &out, nil
}

// Health probes the liveness endpoint. The result is advisory: false on
// any non-2xx, transport failure, or context deadline. It never returns
// an error because nothing gates on the reason.
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Msg("health probe failed")
		return false
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10)) //nolint:errcheck
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, token, body, out)
}

func (c *Client) get(ctx context.Context, path, token string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, token, nil, out)
}

// doJSON issues a request and applies the shared error policy: transport
// failures wrap ErrUnreachable, non-2xx responses become *APIError
// carrying the body's message field (empty when the body had none).
func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	resp, raw, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &apiErr) // absent or unparseable body leaves Message empty
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// do performs the request and returns the response with its body fully
// read, so callers that branch on both status and body (login) can do so
// without re-reading.
func (c *Client) do(ctx context.Context, method, path, token string, body any) (*http.Response, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-Id", c.deviceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max body
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}
	return resp, raw, nil
}
