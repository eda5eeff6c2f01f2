package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/security"
)

func TestRequireAuth(t *testing.T) {
	issuer := security.NewTokenIssuer("test-secret", time.Hour)
	middleware := NewMiddleware(issuer, security.NewRateLimiter(100, time.Minute))

	var gotUserID string
	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing header", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler(recorder, httptest.NewRequest("GET", "/api/family", nil))
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", recorder.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/family", nil)
		req.Header.Set("Authorization", "Basic abc123")
		handler(recorder, req)
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", recorder.Code)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/family", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		handler(recorder, req)
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", recorder.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := issuer.Issue("user-123")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/family", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		handler(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", recorder.Code)
		}
		if gotUserID != "user-123" {
			t.Errorf("user id in context = %q, want user-123", gotUserID)
		}
	})
}

func TestRateLimit(t *testing.T) {
	issuer := security.NewTokenIssuer("test-secret", time.Hour)
	middleware := NewMiddleware(issuer, security.NewRateLimiter(2, time.Minute))

	handler := middleware.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, recorder.Code)
		}
	}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler(recorder, req)
	if recorder.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 once the bucket is drained", recorder.Code)
	}

	// A different client IP still has tokens
	recorder = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	handler(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Errorf("status = %d for a fresh IP, want 200", recorder.Code)
	}
}
