// Package apiclient is a Go client for the Selfie API. It keeps the access
// token in memory and the refresh token in a cookie jar, and transparently
// refreshes an expired access token once per request.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"selfie/dto"
	"selfie/model"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrSessionExpired means the refresh token was rejected; the user must log in again.
	ErrSessionExpired = errors.New("session expired, please log in again")
	// ErrTwoFactorRequired is returned by Login when the account needs a TOTP code.
	ErrTwoFactorRequired = errors.New("two-factor code required")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("selfie api: %d %s", e.StatusCode, e.Message)
}

// noRefreshKey marks requests that must not trigger a token refresh: retries
// and the auth endpoints themselves.
type noRefreshKey struct{}

type Client struct {
	baseURL  string
	http     *http.Client
	onLogout func()

	mu    sync.RWMutex
	token string

	refreshes singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. A cookie jar is added when
// it has none, since the refresh token lives in a cookie.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogoutHook registers fn to run when the session can no longer be refreshed.
func WithLogoutHook(fn func()) Option {
	return func(c *Client) { c.onLogout = fn }
}

func WithAccessToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Do sends req with the current access token. On 401 it refreshes the token
// and retries the request once; a retried request is never refreshed again.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.GetBody == nil {
		body, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to buffer request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}

	used := c.AccessToken()
	resp, err := c.send(req, used)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || req.Context().Value(noRefreshKey{}) != nil {
		return resp, nil
	}
	drain(resp)

	if err := c.refresh(req.Context(), used); err != nil {
		return nil, err
	}

	retry := req.Clone(withoutRefresh(req.Context()))
	if req.GetBody != nil {
		if retry.Body, err = req.GetBody(); err != nil {
			return nil, err
		}
	}
	return c.send(retry, c.AccessToken())
}

func (c *Client) send(req *http.Request, token string) (*http.Response, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Del("Authorization")
	}
	return c.http.Do(req)
}

// refresh trades the refresh cookie for a new access token. Concurrent
// callers share one round trip, and a caller whose token was already replaced
// skips it.
func (c *Client) refresh(ctx context.Context, used string) error {
	_, err, _ := c.refreshes.Do("refresh", func() (interface{}, error) {
		if current := c.AccessToken(); current != "" && current != used {
			return nil, nil
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("token refresh failed: %w", err)
		}
		defer drain(resp)

		switch resp.StatusCode {
		case http.StatusOK:
			var auth dto.AuthResponse
			if err := decodeData(resp.Body, &auth); err != nil {
				return nil, err
			}
			c.setToken(auth.AccessToken)
			return nil, nil
		case http.StatusUnauthorized, http.StatusForbidden:
			slog.Info("refresh token rejected, logging out", "status", resp.StatusCode)
			c.expire()
			return nil, ErrSessionExpired
		default:
			return nil, readError(resp)
		}
	})
	return err
}

func (c *Client) expire() {
	c.setToken("")
	if c.onLogout != nil {
		c.onLogout()
	}
}

func withoutRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRefreshKey{}, true)
}

func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (*dto.AuthResponse, error) {
	var auth dto.AuthResponse
	if err := c.call(withoutRefresh(ctx), http.MethodPost, "/auth/signup", req, &auth); err != nil {
		return nil, err
	}
	c.setToken(auth.AccessToken)
	return &auth, nil
}

// Login opens a session. Accounts with 2FA answer ErrTwoFactorRequired until
// a code is supplied.
func (c *Client) Login(ctx context.Context, username, password, twoFactorCode string) (*dto.AuthResponse, error) {
	var raw json.RawMessage
	err := c.call(withoutRefresh(ctx), http.MethodPost, "/auth/login", model.LoginRequest{
		Username:      username,
		Password:      password,
		TwoFactorCode: twoFactorCode,
	}, &raw)
	if err != nil {
		return nil, err
	}

	var auth dto.AuthResponse
	if err := json.Unmarshal(raw, &auth); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if auth.AccessToken == "" {
		var pending struct {
			RequiresTwoFactor bool `json:"requires_2fa"`
		}
		if json.Unmarshal(raw, &pending) == nil && pending.RequiresTwoFactor {
			return nil, ErrTwoFactorRequired
		}
		return nil, errors.New("login response carried no access token")
	}
	c.setToken(auth.AccessToken)
	return &auth, nil
}

// Logout ends the session server side and forgets the access token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.call(withoutRefresh(ctx), http.MethodPost, "/auth/logout", nil, nil)
	c.setToken("")
	return err
}

func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	return c.call(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) PostJSON(ctx context.Context, path string, in, out interface{}) error {
	return c.call(ctx, http.MethodPost, path, in, out)
}

func (c *Client) PatchJSON(ctx context.Context, path string, in, out interface{}) error {
	return c.call(ctx, http.MethodPatch, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}

// call sends a JSON request through Do and unwraps the response envelope into out.
func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return decodeData(resp.Body, out)
}

type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decodeData(r io.Reader, out interface{}) error {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func readError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env); err == nil && env.Error != "" {
		apiErr.Message = env.Error
	}
	return apiErr
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
