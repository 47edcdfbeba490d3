package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/imob-backoffice/internal/application"
)

type fakeAuthService struct {
	result       application.AuthenticateResult
	authErr      error
	revokeErr    error
	revokedToken string
}

func (f *fakeAuthService) Authenticate(_ context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	if f.authErr != nil {
		return application.AuthenticateResult{}, f.authErr
	}
	return f.result, nil
}

func (f *fakeAuthService) RevokeSession(_ context.Context, token string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revokedToken = token
	return nil
}

func TestCreateSessionSuccess(t *testing.T) {
	service := &fakeAuthService{result: application.AuthenticateResult{
		UserID:      "user-1",
		DisplayName: "Ana Souza",
		Role:        application.RoleCorretor,
		Token:       "token-abc",
		ExpiresAt:   time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC),
	}}
	handler := NewAuthHandler(service, nil)

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"email":"ana@imob.com","senha":"segredo123"}`))
	rec := httptest.NewRecorder()
	handler.CreateSession(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if got := rec.Header().Get("X-Session-Token"); got != "token-abc" {
		t.Errorf("X-Session-Token = %q, want %q", got, "token-abc")
	}

	var sessionCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "session_token" {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		t.Fatal("session_token cookie not set")
	}
	if sessionCookie.Value != "token-abc" || !sessionCookie.HttpOnly {
		t.Errorf("cookie = %+v, want http-only token-abc", sessionCookie)
	}

	body := rec.Body.String()
	for _, fragment := range []string{`"token":"token-abc"`, `"usuario_id":"user-1"`, `"perfil":"corretor"`} {
		if !strings.Contains(body, fragment) {
			t.Errorf("body %s missing %s", body, fragment)
		}
	}
}

func TestCreateSessionInvalidCredentials(t *testing.T) {
	service := &fakeAuthService{authErr: application.ErrInvalidCredentials}
	handler := NewAuthHandler(service, nil)

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"email":"ana@imob.com","senha":"errada"}`))
	rec := httptest.NewRecorder()
	handler.CreateSession(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), "AUTH_INVALID_CREDENTIALS") {
		t.Errorf("body = %s, want AUTH_INVALID_CREDENTIALS code", rec.Body.String())
	}
}

func TestCreateSessionMalformedBody(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{nope`))
	rec := httptest.NewRecorder()
	handler.CreateSession(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestDeleteCurrentSession(t *testing.T) {
	service := &fakeAuthService{}
	handler := NewAuthHandler(service, nil)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/current", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	rec := httptest.NewRecorder()
	handler.DeleteCurrentSession(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if service.revokedToken != "token-abc" {
		t.Errorf("revoked token = %q, want %q", service.revokedToken, "token-abc")
	}

	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "session_token" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie was not cleared")
	}
}

func TestDeleteCurrentSessionWithoutToken(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthService{}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/current", nil)
	rec := httptest.NewRecorder()
	handler.DeleteCurrentSession(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestExtractTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*http.Request)
		expect string
	}{
		{
			name:   "bearer header",
			setup:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") },
			expect: "abc",
		},
		{
			name:   "cookie fallback",
			setup:  func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "session_token", Value: "xyz"}) },
			expect: "xyz",
		},
		{
			name: "header wins over cookie",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer abc")
				r.AddCookie(&http.Cookie{Name: "session_token", Value: "xyz"})
			},
			expect: "abc",
		},
		{
			name:   "no credentials",
			setup:  func(r *http.Request) {},
			expect: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			if got := extractTokenFromRequest(req); got != tc.expect {
				t.Errorf("extractTokenFromRequest() = %q, want %q", got, tc.expect)
			}
		})
	}
}
