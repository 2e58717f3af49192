package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rocketlearn/internal/models"
	"rocketlearn/internal/security"
	"rocketlearn/internal/session"
)

func testMiddleware(t *testing.T) (*Middleware, *session.Store, *security.TokenIssuer) {
	t.Helper()
	store, err := session.NewStore(&fakeUsers{users: []models.User{*freeChild()}}, &fakeState{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	issuer := security.NewTokenIssuer("test-secret", time.Hour)
	return NewMiddleware(store, issuer, security.NewRateLimiter(100, time.Minute)), store, issuer
}

func TestRequireAuthNoCookie(t *testing.T) {
	m, _, _ := testMiddleware(t)

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a cookie")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/api/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	m, store, issuer := testMiddleware(t)
	if err := store.SwitchUser(context.Background(), "user_2"); err != nil {
		t.Fatalf("SwitchUser() error = %v", err)
	}

	token, err := issuer.Issue("user_2")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	var seen *models.User
	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserFromContext(r.Context())
	})

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.ID != "user_2" {
		t.Errorf("context user = %+v, want user_2", seen)
	}
}

func TestRequireAuthStaleToken(t *testing.T) {
	m, store, issuer := testMiddleware(t)
	if err := store.SwitchUser(context.Background(), "user_2"); err != nil {
		t.Fatalf("SwitchUser() error = %v", err)
	}

	// Token for a user who is no longer the active session
	token, err := issuer.Issue("user_999")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a stale token")
	})

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	store, err := session.NewStore(&fakeUsers{}, &fakeState{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	m := NewMiddleware(store, security.NewTokenIssuer("s", time.Hour), security.NewRateLimiter(2, time.Minute))

	handler := m.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest("POST", "/api/auth/login", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/api/auth/login", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}
