// Package apiclient is the console's typed HTTP client for the party data
// API. Every failure collapses into one of five sentinel errors so callers
// branch on errors.Is instead of status codes.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrAuth marks a rejected or missing credential (HTTP 401).
	ErrAuth = errors.New("authentication failed")
	// ErrNetwork marks a transport failure; the request may never have
	// reached the server.
	ErrNetwork = errors.New("network error")
	// ErrServer marks a 5xx response.
	ErrServer = errors.New("server error")
	// ErrValidation marks a rejected payload (HTTP 400/422).
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing resource (HTTP 404).
	ErrNotFound = errors.New("not found")
)

// User mirrors the API's user shape.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Client talks to the party data API at a fixed base URL. The zero token
// sends unauthenticated requests; WithToken derives an authenticated copy.
type Client struct {
	base  string
	http  *http.Client
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport (tests pass httptest clients).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of the client that sends the bearer token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Register creates an operator account.
func (c *Client) Register(ctx context.Context, name, email, password string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &user)
	return user, err
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": password,
	}, &resp)
	if err != nil {
		return "", time.Time{}, err
	}
	return resp.AccessToken, resp.ExpiresAt, nil
}

// Me fetches the account behind the client's token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.doAuthed(ctx, http.MethodGet, "/users/me", nil, &user)
	return user, err
}

// doAuthed is do for endpoints that require a bearer token. A missing local
// token fails up front; the round trip would only come back 401.
func (c *Client) doAuthed(ctx context.Context, method, path string, body, dst any) error {
	if c.token == "" {
		return fmt.Errorf("%w: no access token", ErrAuth)
	}
	return c.do(ctx, method, path, body, dst)
}

// do runs one JSON round trip and maps the outcome onto the sentinel
// errors.
func (c *Client) do(ctx context.Context, method, path string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrValidation, err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return classifyStatus(resp.StatusCode, readAPIError(resp.Body))
	}
	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrServer, err)
	}
	return nil
}

func classifyStatus(code int, msg string) error {
	if msg == "" {
		msg = http.StatusText(code)
	}
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuth, msg)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity || code == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrValidation, msg)
	case code >= 500:
		return fmt.Errorf("%w: %s", ErrServer, msg)
	default:
		return fmt.Errorf("%w: unexpected status %d: %s", ErrServer, code, msg)
	}
}

func readAPIError(r io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 1<<16)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Error
}
