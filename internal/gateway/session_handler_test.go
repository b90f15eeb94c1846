package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kodokalabs/tetsuo.26/internal/security"
)

func TestSessionLoginDisabledWithoutSessionsConfigured(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/admin/api/session", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer s3cr3t")
	rec := httptest.NewRecorder()
	s.adminMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", rec.Code)
	}
}

func TestSessionLoginIssuesCookieAndAuthorizesFollowupRequest(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Sessions = security.NewSessionIssuer("s3cr3t", time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/admin/api/session", strings.NewReader(`{"userId":"alice"}`))
	req.Header.Set("Authorization", "Bearer s3cr3t")
	rec := httptest.NewRecorder()
	s.adminMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookieName {
		t.Fatalf("expected a %s cookie, got %+v", sessionCookieName, cookies)
	}

	followup := httptest.NewRequest(http.MethodGet, "/status", nil)
	followup.AddCookie(cookies[0])
	followupRec := httptest.NewRecorder()
	s.adminMux().ServeHTTP(followupRec, followup)
	if followupRec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with valid session cookie", followupRec.Code)
	}
}

func TestSessionLoginDefaultsUserIDWhenOmitted(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Sessions = security.NewSessionIssuer("s3cr3t", time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/admin/api/session", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer s3cr3t")
	rec := httptest.NewRecorder()
	s.adminMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected a cookie to be set")
	}
	userID, err := s.cfg.Sessions.Verify(cookies[0].Value)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != "dashboard" {
		t.Fatalf("expected default userID dashboard, got %q", userID)
	}
}

func TestInvalidSessionCookieDoesNotAuthorize(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Sessions = security.NewSessionIssuer("s3cr3t", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	s.adminMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for invalid session cookie", rec.Code)
	}
}
