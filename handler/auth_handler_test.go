package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestAuthHandler_Signup(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	if !alice.Cookie.HttpOnly {
		t.Error("refresh cookie is not HttpOnly")
	}
	if alice.Cookie.Path != RefreshCookiePath {
		t.Errorf("cookie path = %q, want %q", alice.Cookie.Path, RefreshCookiePath)
	}

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"duplicate username", map[string]string{"username": "alice", "password": testPassword, "email": "a2@example.com"}, http.StatusConflict},
		{"duplicate email", map[string]string{"username": "alice2", "password": testPassword, "email": "alice@example.com"}, http.StatusConflict},
		{"weak password", map[string]string{"username": "carol", "password": "abcdef", "email": "carol@example.com"}, http.StatusBadRequest},
		{"bad username", map[string]string{"username": "a!", "password": testPassword, "email": "x@example.com"}, http.StatusBadRequest},
		{"missing email", map[string]string{"username": "dave", "password": testPassword}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, request{method: http.MethodPost, path: "/auth/signup", body: tt.body})
			expectStatus(t, w, tt.want)
			if errorMessage(t, w) == "" {
				t.Error("error body is empty")
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "alice")

	tests := []struct {
		name     string
		username string
		password string
		want     int
	}{
		{"valid", "alice", testPassword, http.StatusOK},
		{"wrong password", "alice", "wrong1!", http.StatusUnauthorized},
		{"unknown user", "nobody", testPassword, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, request{method: http.MethodPost, path: "/auth/login", body: map[string]string{
				"username": tt.username, "password": tt.password,
			}})
			expectStatus(t, w, tt.want)
			if tt.want == http.StatusOK {
				resp := decode[struct {
					AccessToken string `json:"access_token"`
					TokenType   string `json:"token_type"`
				}](t, w)
				if resp.AccessToken == "" || resp.TokenType != "Bearer" {
					t.Errorf("unexpected login response %+v", resp)
				}
				refreshCookie(t, w)
			}
		})
	}
}

func TestAuthHandler_LoginWithTwoFactor(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	w := s.do(t, request{method: http.MethodPost, path: "/api/2fa/setup", token: alice.Token})
	expectStatus(t, w, http.StatusOK)
	setup := decode[struct {
		Secret string `json:"secret"`
		QRCode string `json:"qr_code"`
	}](t, w)
	if setup.Secret == "" || setup.QRCode == "" {
		t.Fatalf("setup response incomplete: %+v", setup)
	}

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	w = s.do(t, request{method: http.MethodPost, path: "/api/2fa/enable", token: alice.Token, body: map[string]string{"code": code}})
	expectStatus(t, w, http.StatusOK)
	enabled := decode[struct {
		RecoveryCodes []string `json:"recovery_codes"`
	}](t, w)
	if len(enabled.RecoveryCodes) != 10 {
		t.Fatalf("got %d recovery codes, want 10", len(enabled.RecoveryCodes))
	}

	w = s.do(t, request{method: http.MethodPost, path: "/auth/login", body: map[string]string{
		"username": "alice", "password": testPassword,
	}})
	expectStatus(t, w, http.StatusOK)
	pending := decode[map[string]bool](t, w)
	if !pending["requires_2fa"] {
		t.Fatalf("login without code did not ask for 2FA: %s", w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh_token" {
			t.Error("refresh cookie issued before the second factor")
		}
	}

	w = s.do(t, request{method: http.MethodPost, path: "/auth/login", body: map[string]string{
		"username": "alice", "password": testPassword, "two_factor_code": "000000x",
	}})
	expectStatus(t, w, http.StatusUnauthorized)

	w = s.do(t, request{method: http.MethodPost, path: "/auth/login", body: map[string]string{
		"username": "alice", "password": testPassword, "two_factor_code": enabled.RecoveryCodes[0],
	}})
	expectStatus(t, w, http.StatusOK)
	refreshCookie(t, w)
}

func TestAuthHandler_Refresh(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	w := s.do(t, request{method: http.MethodPost, path: "/auth/refresh"})
	expectStatus(t, w, http.StatusUnauthorized)

	w = s.do(t, request{method: http.MethodPost, path: "/auth/refresh", cookies: []*http.Cookie{alice.Cookie}})
	expectStatus(t, w, http.StatusOK)
	rotated := refreshCookie(t, w)
	if rotated.Value == alice.Cookie.Value {
		t.Fatal("refresh token was not rotated")
	}
	resp := decode[struct {
		AccessToken string `json:"access_token"`
	}](t, w)

	w = s.do(t, request{method: http.MethodGet, path: "/api/users/me", token: resp.AccessToken})
	expectStatus(t, w, http.StatusOK)

	// Replaying the rotated-out token ends the whole session.
	w = s.do(t, request{method: http.MethodPost, path: "/auth/refresh", cookies: []*http.Cookie{alice.Cookie}})
	expectStatus(t, w, http.StatusForbidden)
	if cleared := refreshCookie(t, w); cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Errorf("cookie not cleared: %+v", cleared)
	}

	w = s.do(t, request{method: http.MethodPost, path: "/auth/refresh", cookies: []*http.Cookie{rotated}})
	expectStatus(t, w, http.StatusForbidden)

	w = s.do(t, request{method: http.MethodPost, path: "/auth/refresh", cookies: []*http.Cookie{
		{Name: "refresh_token", Value: "not-a-jwt"},
	}})
	expectStatus(t, w, http.StatusForbidden)
}

func TestAuthHandler_Logout(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	w := s.do(t, request{method: http.MethodPost, path: "/auth/logout", token: alice.Token, cookies: []*http.Cookie{alice.Cookie}})
	expectStatus(t, w, http.StatusNoContent)
	if len(s.revoker.Tokens) != 1 {
		t.Errorf("revoked %d access tokens, want 1", len(s.revoker.Tokens))
	}

	w = s.do(t, request{method: http.MethodPost, path: "/auth/refresh", cookies: []*http.Cookie{alice.Cookie}})
	expectStatus(t, w, http.StatusForbidden)

	// Logging out again, or without credentials, still succeeds.
	w = s.do(t, request{method: http.MethodPost, path: "/auth/logout", cookies: []*http.Cookie{alice.Cookie}})
	expectStatus(t, w, http.StatusNoContent)
	w = s.do(t, request{method: http.MethodPost, path: "/auth/logout"})
	expectStatus(t, w, http.StatusNoContent)
}

func TestAuthMiddlewareOnAPI(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage", "abc.def.ghi", http.StatusUnauthorized},
		{"refresh token as bearer", alice.Cookie.Value, http.StatusUnauthorized},
		{"access token", alice.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, request{method: http.MethodGet, path: "/api/users/me", token: tt.token})
			expectStatus(t, w, tt.want)
		})
	}
}

func TestAuthHandler_RefreshKeepsCookieOnStorageFailure(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	s.sessions.fail(errors.New("mongo: connection refused"))
	w := s.do(t, request{method: http.MethodPost, path: "/auth/refresh", cookies: []*http.Cookie{alice.Cookie}})
	expectStatus(t, w, http.StatusInternalServerError)
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh_token" {
			t.Fatalf("refresh cookie touched on a storage failure: %+v", c)
		}
	}

	s.sessions.fail(nil)
	w = s.do(t, request{method: http.MethodPost, path: "/auth/refresh", cookies: []*http.Cookie{alice.Cookie}})
	expectStatus(t, w, http.StatusOK)
	if rotated := refreshCookie(t, w); rotated.Value == "" || rotated.Value == alice.Cookie.Value {
		t.Errorf("refresh after recovery did not rotate the cookie: %+v", rotated)
	}
}
