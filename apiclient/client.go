package apiclient

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

	"github.com/google/uuid"

	"github.com/jonwraymond/gamenetauth/auth"
	"github.com/jonwraymond/gamenetauth/observe"
	"github.com/jonwraymond/gamenetauth/resilience"
)

// Endpoint paths relative to BaseURL.
const (
	PathLogin   = "/auth/login"
	PathRefresh = "/auth/refresh"
	PathProfile = "/profile"
	PathLogout  = "/auth/logout"
)

// maxBodyBytes caps how much of a response body is decoded.
const maxBodyBytes = 1 << 20

// Config configures the Client.
type Config struct {
	// BaseURL is the dashboard API root, e.g. https://api.example.com/v1.
	BaseURL string

	// Timeout bounds each attempt.
	// Default: 30s
	Timeout time.Duration

	// MaxAttempts is the total number of attempts per call.
	// Default: 3
	MaxAttempts int

	// InitialBackoff is the delay before the first retry.
	// Default: 500ms
	InitialBackoff time.Duration

	// MaxBackoff caps the retry delay.
	// Default: 5s
	MaxBackoff time.Duration

	// UserAgent is sent on every request when set.
	UserAgent string

	// HTTPClient overrides the transport. Its own Timeout should be zero
	// so the per-attempt timeout governs.
	HTTPClient *http.Client

	// Middleware instruments every call. Default: no-op.
	Middleware *observe.Middleware

	// Sleep overrides the wait between retries.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Client calls the dashboard auth API.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: every call honors cancellation; each attempt gets its own deadline.
// - Errors: non-2xx responses return *StatusError; transport failures wrap ErrNetwork.
type Client struct {
	config     Config
	base       *url.URL
	httpClient *http.Client
	mw         *observe.Middleware
}

// New creates a Client.
func New(config Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, config.BaseURL)
	}

	if config.Timeout <= 0 {
		config.Timeout = resilience.DefaultTimeout
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = resilience.DefaultMaxAttempts
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = resilience.DefaultInitialDelay
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = resilience.DefaultMaxDelay
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	mw := config.Middleware
	if mw == nil {
		mw = observe.NopMiddleware()
	}

	return &Client{
		config:     config,
		base:       base,
		httpClient: httpClient,
		mw:         mw,
	}, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	err := c.call(ctx, "login", http.MethodPost, PathLogin, "", req, &out)
	if err != nil {
		return nil, err
	}
	if out.Token == "" || out.User == nil {
		return nil, fmt.Errorf("%w: login response missing token or user", ErrInvalidResponse)
	}
	return &out, nil
}

// Refresh exchanges the current token for a new one.
func (c *Client) Refresh(ctx context.Context, token string, rememberMe bool) (*RefreshResponse, error) {
	var out RefreshResponse
	err := c.call(ctx, "refresh", http.MethodPost, PathRefresh, token, refreshRequest{RememberMe: rememberMe}, &out)
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("%w: refresh response missing token", ErrInvalidResponse)
	}
	return &out, nil
}

// Profile fetches the signed-in user. Both {"user": {...}} and a bare
// user object are accepted.
func (c *Client) Profile(ctx context.Context, token string) (*auth.User, error) {
	var raw json.RawMessage
	if err := c.call(ctx, "profile", http.MethodGet, PathProfile, token, nil, &raw); err != nil {
		return nil, err
	}

	var env profileEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.User != nil {
		return env.User, nil
	}
	var user auth.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", ErrInvalidResponse, err)
	}
	if user.ID == "" && user.Email == "" {
		return nil, fmt.Errorf("%w: profile response missing user", ErrInvalidResponse)
	}
	return &user, nil
}

// Logout invalidates token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.call(ctx, "logout", http.MethodPost, PathLogout, token, nil, nil)
}

// Ping checks that the API answers at all. Any response below 500 counts.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode >= 500 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// call runs one logical request through retry, timeout and telemetry.
func (c *Client) call(ctx context.Context, name, method, path, token string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("apiclient: encode %s request: %w", name, err)
		}
	}

	requestID := uuid.NewString()
	op := observe.Operation{Component: "apiclient", Name: name}

	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:  c.config.MaxAttempts,
		InitialDelay: c.config.InitialBackoff,
		MaxDelay:     c.config.MaxBackoff,
		Jitter:       true,
		RetryIf:      IsRetryable,
		Sleep:        c.config.Sleep,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			c.mw.Event(ctx, observe.EventRequestRetry,
				observe.F("operation", op.ID()),
				observe.F("request_id", requestID),
				observe.F("attempt", attempt),
				observe.F("delay_ms", delay.Milliseconds()),
				observe.F("error", err.Error()),
			)
		},
	})
	exec := resilience.NewExecutor(
		resilience.WithRetry(retry),
		resilience.WithTimeout(c.config.Timeout),
	)

	return c.mw.Run(ctx, op, func(ctx context.Context) error {
		return exec.Execute(ctx, func(ctx context.Context) error {
			return c.do(ctx, method, path, token, requestID, body, out)
		})
	})
}

// do performs a single attempt.
func (c *Client) do(ctx context.Context, method, path, token, requestID string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reader)
	if err != nil {
		return resilience.Permanent(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	limited := io.LimitReader(resp.Body, maxBodyBytes)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Message: readMessage(limited)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, limited)
		return nil
	}
	if err := json.NewDecoder(limited).Decode(out); err != nil {
		return resilience.Permanent(fmt.Errorf("%w: decode: %v", ErrInvalidResponse, err))
	}
	return nil
}

// readMessage extracts a short server message from an error body.
func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return ""
}
