package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"vidly/auth"
	"vidly/models"

	"github.com/umakantv/go-utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.LoggerConfig{CallerKey: "file", TimeKey: "timestamp", CallerSkip: 1})
	os.Exit(m.Run())
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	valid, err := tokens.Issue(models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen *auth.Claims
	h := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad token", "abc", http.StatusUnauthorized},
		{"valid token", valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/genres", nil)
			if tt.token != "" {
				req.Header.Set(TokenHeader, tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if seen == nil || seen.UserID != "u1" {
		t.Fatalf("claims not attached: %+v", seen)
	}
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		claims *auth.Claims
		want   int
	}{
		{"no claims", nil, http.StatusUnauthorized},
		{"not admin", &auth.Claims{UserID: "u1"}, http.StatusForbidden},
		{"admin", &auth.Claims{UserID: "u1", IsAdmin: true}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/genres/x", nil)
			if tt.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("1.1.1.1") || !limiter.Allow("1.1.1.1") {
		t.Fatal("burst should be allowed")
	}
	if limiter.Allow("1.1.1.1") {
		t.Fatal("third request should be limited")
	}
	if !limiter.Allow("2.2.2.2") {
		t.Fatal("clients are limited independently")
	}

	now = now.Add(time.Second)
	if !limiter.Allow("1.1.1.1") {
		t.Fatal("token should refill after a second")
	}

	now = now.Add(10 * time.Minute)
	limiter.Sweep(3 * time.Minute)
	if limiter.Len() != 0 {
		t.Fatalf("expected idle clients swept, %d left", limiter.Len())
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	h := NewRateLimiter(0.001, 1).Middleware()(http.HandlerFunc(okHandler))

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do(); code != http.StatusOK {
		t.Fatalf("first request = %d", code)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", code)
	}
}
