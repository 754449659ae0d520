package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"selfie/dto"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func (s *testServer) upload(t *testing.T, token, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/media", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func TestMediaHandler(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	w := s.upload(t, alice.Token, "avatar.png", pngHeader)
	expectStatus(t, w, http.StatusCreated)
	media := decode[struct {
		ID       string `json:"id"`
		MimeType string `json:"mimetype"`
		Size     int64  `json:"size"`
		URL      string `json:"url"`
	}](t, w)
	if media.MimeType != "image/png" || media.Size != int64(len(pngHeader)) {
		t.Errorf("uploaded media = %+v", media)
	}
	if !strings.HasSuffix(media.URL, "/api/media/"+media.ID) {
		t.Errorf("url = %q", media.URL)
	}

	// Served without credentials.
	w = s.do(t, request{method: http.MethodGet, path: "/api/media/" + media.ID})
	expectStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age=31536000") {
		t.Errorf("Cache-Control = %q", cc)
	}
	if !bytes.Equal(w.Body.Bytes(), pngHeader) {
		t.Error("served bytes differ from the upload")
	}

	w = s.upload(t, alice.Token, "notes.txt", []byte("just some text"))
	expectStatus(t, w, http.StatusUnsupportedMediaType)

	w = s.upload(t, alice.Token, "big.png", append(append([]byte{}, pngHeader...), make([]byte, 2048)...))
	expectStatus(t, w, http.StatusRequestEntityTooLarge)

	w = s.do(t, request{method: http.MethodGet, path: "/api/media", token: bob.Token})
	expectStatus(t, w, http.StatusOK)
	if list := decode[[]idResponse](t, w); len(list) != 0 {
		t.Errorf("bob lists %d uploads", len(list))
	}

	w = s.do(t, request{method: http.MethodDelete, path: "/api/media/" + media.ID, token: bob.Token})
	expectStatus(t, w, http.StatusForbidden)

	w = s.do(t, request{method: http.MethodPatch, path: "/api/users/me", token: alice.Token, body: map[string]string{"avatar_id": media.ID}})
	expectStatus(t, w, http.StatusOK)
	profile := decode[struct {
		AvatarURL string `json:"avatar_url"`
	}](t, w)
	if profile.AvatarURL != media.URL {
		t.Errorf("avatar_url = %q, want %q", profile.AvatarURL, media.URL)
	}

	w = s.do(t, request{method: http.MethodDelete, path: "/api/media/" + media.ID, token: alice.Token})
	expectStatus(t, w, http.StatusNoContent)
	w = s.do(t, request{method: http.MethodGet, path: "/api/media/" + media.ID})
	expectStatus(t, w, http.StatusNotFound)
}

func TestUserHandler(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	s.signup(t, "alicia")
	s.signup(t, "bob")

	w := s.do(t, request{method: http.MethodGet, path: "/api/users/me", token: alice.Token})
	expectStatus(t, w, http.StatusOK)
	profile := decode[struct {
		Username string                  `json:"username"`
		Email    string                  `json:"email"`
		Links    map[string]dto.UserLink `json:"_links"`
	}](t, w)
	if profile.Username != "alice" || profile.Email != "alice@example.com" {
		t.Errorf("profile = %+v", profile)
	}
	if profile.Links["password"].Href != "/api/users/me/password" {
		t.Errorf("links = %+v", profile.Links)
	}

	w = s.do(t, request{method: http.MethodPatch, path: "/api/users/me", token: alice.Token, body: map[string]string{"email": "bob@example.com"}})
	expectStatus(t, w, http.StatusConflict)
	w = s.do(t, request{method: http.MethodPatch, path: "/api/users/me", token: alice.Token, body: map[string]string{"email": "not-an-email"}})
	expectStatus(t, w, http.StatusBadRequest)

	w = s.do(t, request{method: http.MethodGet, path: "/api/users?q=ali", token: alice.Token})
	expectStatus(t, w, http.StatusOK)
	if names := decode[[]string](t, w); len(names) != 2 {
		t.Errorf("search = %v, want alice and alicia", names)
	}

	w = s.do(t, request{method: http.MethodPost, path: "/api/users/me/password", token: alice.Token,
		body: map[string]string{"current_password": "wrong1!", "new_password": "n3w!pass"}})
	expectStatus(t, w, http.StatusBadRequest)
	w = s.do(t, request{method: http.MethodPost, path: "/api/users/me/password", token: alice.Token,
		body: map[string]string{"current_password": testPassword, "new_password": "weak"}})
	expectStatus(t, w, http.StatusBadRequest)
	w = s.do(t, request{method: http.MethodPost, path: "/api/users/me/password", token: alice.Token,
		body: map[string]string{"current_password": testPassword, "new_password": "n3w!pass"}})
	expectStatus(t, w, http.StatusOK)

	w = s.do(t, request{method: http.MethodPost, path: "/auth/login", body: map[string]string{"username": "alice", "password": "n3w!pass"}})
	expectStatus(t, w, http.StatusOK)

	w = s.do(t, request{method: http.MethodDelete, path: "/api/users/me", token: alice.Token})
	expectStatus(t, w, http.StatusNoContent)
	w = s.do(t, request{method: http.MethodPost, path: "/auth/login", body: map[string]string{"username": "alice", "password": "n3w!pass"}})
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestSessionHandler(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	w := s.do(t, request{method: http.MethodPost, path: "/auth/login", body: map[string]string{"username": "alice", "password": testPassword}})
	expectStatus(t, w, http.StatusOK)
	second := decode[struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}](t, w)

	type session struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Current     bool   `json:"current"`
	}
	w = s.do(t, request{method: http.MethodGet, path: "/api/sessions", token: alice.Token})
	expectStatus(t, w, http.StatusOK)
	sessions := decode[[]session](t, w)
	if len(sessions) != 2 {
		t.Fatalf("listed %d sessions, want 2", len(sessions))
	}
	current := 0
	for _, ss := range sessions {
		if ss.Current {
			current++
			if ss.ID == second.Session.ID {
				t.Error("the other login is flagged as current")
			}
		}
		if ss.DisplayName == "" {
			t.Error("session has no display name")
		}
	}
	if current != 1 {
		t.Errorf("%d sessions flagged current, want 1", current)
	}

	w = s.do(t, request{method: http.MethodDelete, path: "/api/sessions/" + second.Session.ID, token: alice.Token})
	expectStatus(t, w, http.StatusNoContent)
	w = s.do(t, request{method: http.MethodDelete, path: "/api/sessions/" + second.Session.ID, token: alice.Token})
	expectStatus(t, w, http.StatusNotFound)

	w = s.do(t, request{method: http.MethodPost, path: "/api/sessions/logout-all", token: alice.Token})
	expectStatus(t, w, http.StatusOK)
	if ended := decode[map[string]int](t, w); ended["ended_sessions"] != 1 {
		t.Errorf("ended = %v, want 1", ended)
	}
	w = s.do(t, request{method: http.MethodPost, path: "/auth/refresh", cookies: []*http.Cookie{alice.Cookie}})
	expectStatus(t, w, http.StatusForbidden)
}

func TestPushHandler(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	w := s.do(t, request{method: http.MethodGet, path: "/api/push/public-key", token: alice.Token})
	expectStatus(t, w, http.StatusOK)
	if key := decode[map[string]string](t, w); key["public_key"] != "test-public-key" {
		t.Errorf("public key = %v", key)
	}

	w = s.do(t, request{method: http.MethodPost, path: "/api/push/test", token: alice.Token})
	expectStatus(t, w, http.StatusBadRequest)

	sub := map[string]interface{}{
		"endpoint": "https://push.example.com/send/abc",
		"keys":     map[string]string{"p256dh": "key", "auth": "secret"},
	}
	w = s.do(t, request{method: http.MethodPost, path: "/api/push/subscriptions", token: alice.Token, body: sub})
	expectStatus(t, w, http.StatusCreated)

	w = s.do(t, request{method: http.MethodPost, path: "/api/push/subscriptions", token: alice.Token, body: map[string]interface{}{
		"endpoint": "http://push.example.com/insecure",
		"keys":     map[string]string{"p256dh": "key", "auth": "secret"},
	}})
	expectStatus(t, w, http.StatusBadRequest)

	w = s.do(t, request{method: http.MethodPost, path: "/api/push/test", token: alice.Token})
	expectStatus(t, w, http.StatusOK)
	if sent := decode[map[string]int](t, w); sent["delivered"] != 1 {
		t.Errorf("delivered = %v, want 1", sent)
	}
	if got := s.push.Deliveries(); len(got) != 1 || got[0].Kind != "test" {
		t.Errorf("deliveries = %+v", got)
	}

	w = s.do(t, request{method: http.MethodDelete, path: "/api/push/subscriptions", token: alice.Token,
		body: map[string]string{"endpoint": "https://push.example.com/send/abc"}})
	expectStatus(t, w, http.StatusNoContent)

	s.push.Disabled = true
	w = s.do(t, request{method: http.MethodGet, path: "/api/push/public-key", token: alice.Token})
	expectStatus(t, w, http.StatusServiceUnavailable)
}

func TestStatsHandler(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	for _, title := range []string{"Bench", "Rows"} {
		w := s.do(t, request{method: http.MethodPost, path: "/api/workouts", token: alice.Token,
			body: map[string]interface{}{"title": title, "reps": 10}})
		expectStatus(t, w, http.StatusCreated)
	}

	w := s.do(t, request{method: http.MethodGet, path: "/api/stats", token: alice.Token})
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `"total_reps":20`) {
		t.Errorf("stats body = %s", w.Body.String())
	}
}
