// Package client is the Go counterpart of the storefront's browser session
// layer: it keeps the access token in memory only, lets the refresh token
// ride an HTTP-only cookie via the jar, and transparently recovers from
// access-token expiry with a single refresh-and-retry per original call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"storefront-api/internal/domain"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

type authPayload struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

// retryMarkerKey marks a replayed request so a second 401 propagates
// instead of triggering another refresh cycle.
type retryMarkerKey struct{}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryMarkerKey{}, true)
}

func isRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retryMarkerKey{}).(bool)
	return v
}

// Session is an injectable client session. Each instance owns its own
// cookie jar and token state, so tests and concurrent sessions stay
// isolated; nothing lives at package level.
type Session struct {
	baseURL string
	http    *http.Client

	mu          sync.RWMutex
	accessToken string
	user        *domain.User

	// refreshGroup coalesces concurrent 401-triggered refreshes into one
	// in-flight call whose result every waiter shares.
	refreshGroup singleflight.Group
}

func NewSession(baseURL string) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Session{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// AccessToken returns the current in-memory access token, empty when
// logged out.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// User returns the profile snapshot from the last auth response.
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Register(ctx context.Context, email, password, name string) error {
	body := map[string]string{"email": email, "password": password, "name": name}
	var payload authPayload
	if err := s.do(ctx, http.MethodPost, "/api/v1/auth/register", body, &payload); err != nil {
		return err
	}
	s.storeAuth(&payload)
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var payload authPayload
	if err := s.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &payload); err != nil {
		return err
	}
	s.storeAuth(&payload)
	return nil
}

func (s *Session) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := s.do(ctx, http.MethodGet, "/api/v1/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes the server-side session (clearing the refresh cookie) and
// drops local state. Local state is cleared even when the server call
// fails; the session is unusable either way.
func (s *Session) Logout(ctx context.Context) error {
	err := s.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	s.clearAuth()
	return err
}

// Do issues an authenticated request against the API and decodes the data
// portion of the response envelope into out. It is the request pipeline the
// typed helpers above share.
func (s *Session) Do(ctx context.Context, method, path string, body any, out any) error {
	return s.do(ctx, method, path, body, out)
}

func (s *Session) do(ctx context.Context, method, path string, body any, out any) error {
	resp, err := s.roundTrip(ctx, method, path, body)
	if err != nil {
		return err
	}

	if resp.Status == http.StatusUnauthorized && !isRetried(ctx) && !isAuthPath(path) {
		if refreshErr := s.refresh(ctx); refreshErr != nil {
			// irrecoverable: force logout and surface the original failure
			s.forceLogout(ctx)
			return resp.Err()
		}
		resp, err = s.roundTrip(markRetried(ctx), method, path, body)
		if err != nil {
			return err
		}
	}

	if resp.Status >= 400 {
		return resp.Err()
	}
	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

type roundTripResult struct {
	Status int
	Data   json.RawMessage
	APIErr *apiError
}

func (r *roundTripResult) Err() error {
	if r.APIErr != nil {
		return r.APIErr
	}
	return &apiError{Status: r.Status, Code: "UNKNOWN", Message: "request failed"}
}

func (s *Session) roundTrip(ctx context.Context, method, path string, body any) (*roundTripResult, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// bearer attached at request time so a freshly rotated token is used
	if token := s.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	result := &roundTripResult{Status: resp.StatusCode, Data: envelope.Data}
	if envelope.Error != nil {
		envelope.Error.Status = resp.StatusCode
		result.APIErr = envelope.Error
	}
	return result, nil
}

// refresh calls the refresh endpoint once, no matter how many requests hit
// 401 at the same time; the cookie jar supplies the refresh token.
func (s *Session) refresh(ctx context.Context) error {
	_, err, _ := s.refreshGroup.Do("refresh", func() (any, error) {
		resp, err := s.roundTrip(ctx, http.MethodPost, "/api/v1/auth/refresh", nil)
		if err != nil {
			return nil, err
		}
		if resp.Status >= 400 {
			return nil, resp.Err()
		}
		var payload authPayload
		if err := json.Unmarshal(resp.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode refresh payload: %w", err)
		}
		s.storeAuth(&payload)
		return nil, nil
	})
	return err
}

// forceLogout clears local state and asks the server to clear the cookie.
// Best effort: the refresh that got us here already failed, so the server
// call may fail too.
func (s *Session) forceLogout(ctx context.Context) {
	token := s.AccessToken()
	s.clearAuth()
	if token == "" {
		return
	}
	req, err := http.NewRequestWithContext(markRetried(ctx), http.MethodPost, s.baseURL+"/api/v1/auth/logout", nil)
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if resp, err := s.http.Do(req); err == nil {
		resp.Body.Close()
	}
}

func (s *Session) storeAuth(payload *authPayload) {
	s.mu.Lock()
	s.accessToken = payload.AccessToken
	s.user = payload.User
	s.mu.Unlock()
}

func (s *Session) clearAuth() {
	s.mu.Lock()
	s.accessToken = ""
	s.user = nil
	s.mu.Unlock()
}

// State is a serializable snapshot of a session, so one-shot processes
// like a CLI can carry the login across invocations. The refresh token
// leaves cookie custody here; callers own keeping the file private.
type State struct {
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *domain.User `json:"user,omitempty"`
}

func (s *Session) Export() (State, error) {
	u, err := url.Parse(s.baseURL + "/api/v1/auth/refresh")
	if err != nil {
		return State{}, fmt.Errorf("parse base url: %w", err)
	}
	st := State{AccessToken: s.AccessToken(), User: s.User()}
	for _, c := range s.http.Jar.Cookies(u) {
		if c.Name == "refresh_token" {
			st.RefreshToken = c.Value
		}
	}
	return st, nil
}

func (s *Session) Restore(st State) error {
	u, err := url.Parse(s.baseURL + "/api/v1/auth/refresh")
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	if st.RefreshToken != "" {
		s.http.Jar.SetCookies(u, []*http.Cookie{{
			Name:  "refresh_token",
			Value: st.RefreshToken,
			Path:  "/api/v1/auth",
		}})
	}
	s.mu.Lock()
	s.accessToken = st.AccessToken
	s.user = st.User
	s.mu.Unlock()
	return nil
}

// isAuthPath exempts login/register/refresh from the retry cycle; a 401
// from those is a real answer, not an expired access token.
func isAuthPath(path string) bool {
	switch path {
	case "/api/v1/auth/login", "/api/v1/auth/register", "/api/v1/auth/refresh":
		return true
	}
	return false
}
