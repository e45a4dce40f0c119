package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/grocerease/grocerease-backend/pkg/ratelimit"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewSlidingWindow("search", 2, time.Minute, ratelimit.WithClock(func() time.Time { return now }))
	handler := RateLimit(limiter, "search", nil)(okHandler())

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/search?q=apple", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := send("10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, rec.Code)
		}
	}

	rec := send("10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60 got %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected remaining 0 got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
	if msg := decodeErrorMessage(t, rec); msg != "Too many requests, please try again later" {
		t.Fatalf("unexpected message %q", msg)
	}

	if rec := send("10.0.0.2"); rec.Code != http.StatusOK {
		t.Fatalf("other client should not be limited, got %d", rec.Code)
	}
}

func TestAuthRateLimitKeysOnEmail(t *testing.T) {
	policy := AuthRateLimitPolicy{
		Name:  "login",
		Email: ratelimit.NewSlidingWindow("login_email", 1, time.Minute),
	}
	var bodies []string
	handler := AuthRateLimit(policy, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		w.WriteHeader(http.StatusOK)
	}))

	send := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(`{"email":"Ann@Example.com","password":"x"}`); code != http.StatusOK {
		t.Fatalf("expected 200 got %d", code)
	}
	if code := send(`{"email":" ann@example.com ","password":"y"}`); code != http.StatusTooManyRequests {
		t.Fatalf("expected normalised email to be limited, got %d", code)
	}
	if code := send(`{"email":"bob@example.com","password":"x"}`); code != http.StatusOK {
		t.Fatalf("expected other email to pass, got %d", code)
	}
	if len(bodies) != 2 || !strings.Contains(bodies[0], "Ann@Example.com") {
		t.Fatalf("expected body to reach handler intact, got %v", bodies)
	}
}
