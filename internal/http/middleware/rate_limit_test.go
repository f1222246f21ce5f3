package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLocalLimiterAllowAndDeny(t *testing.T) {
	limiter := NewLocalLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "k", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request %d denied within limit", i)
		}
		if d.Remaining != 3-(i+1) {
			t.Fatalf("remaining = %d after request %d", d.Remaining, i)
		}
	}

	d, err := limiter.Allow(ctx, "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if d.Allowed {
		t.Fatal("fourth request must be denied")
	}
	if d.RetryAfter <= 0 {
		t.Fatalf("retry-after = %v", d.RetryAfter)
	}
}

func TestLocalLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewLocalLimiter()
	ctx := context.Background()

	if d, _ := limiter.Allow(ctx, "a", 1, time.Minute); !d.Allowed {
		t.Fatal("first request for a denied")
	}
	if d, _ := limiter.Allow(ctx, "a", 1, time.Minute); d.Allowed {
		t.Fatal("second request for a allowed")
	}
	if d, _ := limiter.Allow(ctx, "b", 1, time.Minute); !d.Allowed {
		t.Fatal("b must not share a's window")
	}
}

func TestLocalLimiterWindowResets(t *testing.T) {
	limiter := NewLocalLimiter()
	ctx := context.Background()

	if d, _ := limiter.Allow(ctx, "k", 1, 10*time.Millisecond); !d.Allowed {
		t.Fatal("first request denied")
	}
	if d, _ := limiter.Allow(ctx, "k", 1, 10*time.Millisecond); d.Allowed {
		t.Fatal("second request allowed within window")
	}
	time.Sleep(15 * time.Millisecond)
	if d, _ := limiter.Allow(ctx, "k", 1, 10*time.Millisecond); !d.Allowed {
		t.Fatal("request after window reset denied")
	}
}

func rateLimitedHandler(limiter Limiter, limit int, mode FailureMode) http.Handler {
	mw := NewRateLimiter(limiter, limit, time.Minute, mode, "test").Middleware()
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimitMiddlewareHeadersAndDenial(t *testing.T) {
	h := rateLimitedHandler(NewLocalLimiter(), 2, FailOpen)

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	first := send()
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}
	if got := first.Header().Get("X-RateLimit-Limit"); got != "2" {
		t.Fatalf("limit header = %q", got)
	}
	if got := first.Header().Get("X-RateLimit-Remaining"); got != "1" {
		t.Fatalf("remaining header = %q", got)
	}

	send()
	third := send()
	if third.Code != http.StatusTooManyRequests {
		t.Fatalf("third status = %d, want 429", third.Code)
	}
	if third.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on denial")
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string, int, time.Duration) (Decision, error) {
	return Decision{}, errors.New("backend down")
}

func TestRateLimitFailureModes(t *testing.T) {
	send := func(h http.Handler) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	if code := send(rateLimitedHandler(brokenLimiter{}, 10, FailOpen)); code != http.StatusOK {
		t.Fatalf("fail-open status = %d, want 200", code)
	}
	if code := send(rateLimitedHandler(brokenLimiter{}, 10, FailClosed)); code != http.StatusTooManyRequests {
		t.Fatalf("fail-closed status = %d, want 429", code)
	}
}
