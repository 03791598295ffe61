package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/nikki/internal/middleware"
	"github.com/hitoshi/nikki/internal/model"
)

// --- モック ---

type mockAuthService struct {
	registerFn func(ctx context.Context, username, password string) (*model.User, error)
	loginFn    func(ctx context.Context, username, password string) (*model.Session, error)
	logoutFn   func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	return m.registerFn(ctx, username, password)
}
func (m *mockAuthService) Login(ctx context.Context, username, password string) (*model.Session, error) {
	return m.loginFn(ctx, username, password)
}
func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

type failureCounter struct {
	failures int
}

func (r *failureCounter) RecordLoginFailure() { r.failures++ }

func newAuthHandler(t *testing.T, service *mockAuthService, recorder LoginFailureRecorder) *AuthHandler {
	t.Helper()
	config := AuthHandlerConfig{SignupEnabled: true}
	return NewAuthHandler(service, config, recorder, newTestRenderer(t))
}

// --- テスト ---

func TestSignupSuccessRedirectsToLogin(t *testing.T) {
	service := &mockAuthService{
		registerFn: func(ctx context.Context, username, password string) (*model.User, error) {
			if username != "hitoshi" {
				t.Errorf("username = %q, want hitoshi", username)
			}
			return &model.User{ID: "u1", Username: username}, nil
		},
	}
	h := newAuthHandler(t, service, nil)

	body := url.Values{"username": {"hitoshi"}, "password": {"correct battery"}}
	w := httptest.NewRecorder()
	h.Signup(w, newRequest(t, http.MethodPost, "/auth/signup/", nil, body))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/auth/login/" {
		t.Errorf("Location = %q, want /auth/login/", got)
	}
}

func TestSignupConflictRerendersForm(t *testing.T) {
	service := &mockAuthService{
		registerFn: func(ctx context.Context, username, password string) (*model.User, error) {
			return nil, model.NewUsernameTakenError(username)
		},
	}
	h := newAuthHandler(t, service, nil)

	body := url.Values{"username": {"hitoshi"}, "password": {"correct battery"}}
	w := httptest.NewRecorder()
	h.Signup(w, newRequest(t, http.MethodPost, "/auth/signup/", nil, body))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render", w.Code)
	}
	page := w.Body.String()
	if !strings.Contains(page, "既に使われています") {
		t.Error("response must contain the conflict message")
	}
	if !strings.Contains(page, `value="hitoshi"`) {
		t.Error("form must keep the submitted username")
	}
}

func TestSignupDisabled(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{SignupEnabled: false}, nil, newTestRenderer(t))

	w := httptest.NewRecorder()
	h.SignupForm(w, newRequest(t, http.MethodGet, "/auth/signup/", nil, nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when signup is disabled", w.Code)
	}
}

func TestLoginSetsSessionCookieAndHonorsNext(t *testing.T) {
	session := &model.Session{
		ID:        "sess-1",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(14 * 24 * time.Hour),
	}
	service := &mockAuthService{
		loginFn: func(ctx context.Context, username, password string) (*model.Session, error) {
			return session, nil
		},
	}
	h := newAuthHandler(t, service, nil)

	body := url.Values{"username": {"hitoshi"}, "password": {"correct battery"}, "next": {"/new/"}}
	w := httptest.NewRecorder()
	h.Login(w, newRequest(t, http.MethodPost, "/auth/login/", nil, body))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/new/" {
		t.Errorf("Location = %q, want /new/", got)
	}

	var sessionCookie *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		t.Fatal("session cookie must be set")
	}
	if sessionCookie.Value != "sess-1" {
		t.Errorf("cookie value = %q, want sess-1", sessionCookie.Value)
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie must be HTTP only")
	}
}

func TestLoginFailureRecordsMetricAndRerenders(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, username, password string) (*model.Session, error) {
			return nil, model.NewLoginFailedError()
		},
	}
	recorder := &failureCounter{}
	h := newAuthHandler(t, service, recorder)

	body := url.Values{"username": {"hitoshi"}, "password": {"wrong"}}
	w := httptest.NewRecorder()
	h.Login(w, newRequest(t, http.MethodPost, "/auth/login/", nil, body))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ユーザー名またはパスワードが正しくありません。") {
		t.Error("response must contain the login failure message")
	}
	if recorder.failures != 1 {
		t.Errorf("RecordLoginFailure called %d times, want 1", recorder.failures)
	}
}

func TestLoginRejectsExternalNext(t *testing.T) {
	session := &model.Session{ID: "sess-1", ExpiresAt: time.Now().Add(time.Hour)}
	service := &mockAuthService{
		loginFn: func(ctx context.Context, username, password string) (*model.Session, error) {
			return session, nil
		},
	}
	h := newAuthHandler(t, service, nil)

	tests := []struct {
		next string
		want string
	}{
		{"https://evil.example/", "/"},
		{"//evil.example/", "/"},
		{"/hitoshi/", "/hitoshi/"},
		{"", "/"},
	}

	for _, tt := range tests {
		body := url.Values{"username": {"hitoshi"}, "password": {"pw"}, "next": {tt.next}}
		w := httptest.NewRecorder()
		h.Login(w, newRequest(t, http.MethodPost, "/auth/login/", nil, body))

		if got := w.Header().Get("Location"); got != tt.want {
			t.Errorf("next=%q: Location = %q, want %q", tt.next, got, tt.want)
		}
	}
}

func TestLogoutClearsCookieAndRedirects(t *testing.T) {
	var loggedOut string
	service := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			loggedOut = sessionID
			return nil
		},
	}
	h := newAuthHandler(t, service, nil)

	r := newRequest(t, http.MethodPost, "/auth/logout/", nil, url.Values{})
	r.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	h.Logout(w, r)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/" {
		t.Errorf("Location = %q, want /", got)
	}
	if loggedOut != "sess-1" {
		t.Errorf("logged out session = %q, want sess-1", loggedOut)
	}

	var cleared *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			cleared = cookie
		}
	}
	if cleared == nil || cleared.MaxAge != -1 {
		t.Error("session cookie must be cleared with MaxAge=-1")
	}
}
