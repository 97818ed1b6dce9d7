package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ehr/healthassist/internal/platform/auth"
)

func TestRateLimit_RequestsWithinLimit(t *testing.T) {
	cfg := RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         5,
	}

	e := echo.New()
	mw := RateLimit(cfg)
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	// Send 5 requests (within burst size), all should pass
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler(c)
		if err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}

		// Verify X-RateLimit-Limit header is set
		limitHeader := rec.Header().Get("X-RateLimit-Limit")
		if limitHeader != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit '10', got %q", i+1, limitHeader)
		}
	}
}

func TestRateLimit_ExceedsLimit(t *testing.T) {
	cfg := RateLimitConfig{
		RequestsPerSecond: 1,
		BurstSize:         2,
	}

	e := echo.New()
	mw := RateLimit(cfg)
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	// First 2 requests should pass (burst size = 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		err := handler(c)
		if err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
	}

	// Third request should be rate limited
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := handler(c)

	if err == nil {
		t.Fatal("expected error for rate-limited request")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", httpErr.Code)
	}
}

func TestRateLimit_RetryAfterHeader(t *testing.T) {
	cfg := RateLimitConfig{
		RequestsPerSecond: 1,
		BurstSize:         1,
	}

	e := echo.New()
	mw := RateLimit(cfg)
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	// First request passes
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = handler(c)

	// Second request should be rate limited and include Retry-After
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	err := handler(c)

	if err == nil {
		t.Fatal("expected error for rate-limited request")
	}

	retryAfter := rec.Header().Get("Retry-After")
	if retryAfter == "" {
		t.Error("expected Retry-After header to be set")
	}

	retryVal, parseErr := strconv.Atoi(retryAfter)
	if parseErr != nil {
		t.Fatalf("Retry-After header is not a valid integer: %q", retryAfter)
	}
	if retryVal < 1 {
		t.Errorf("expected Retry-After >= 1, got %d", retryVal)
	}

	// Check X-RateLimit-Remaining is "0" for rate-limited requests
	remaining := rec.Header().Get("X-RateLimit-Remaining")
	if remaining != "0" {
		t.Errorf("expected X-RateLimit-Remaining '0', got %q", remaining)
	}
}

func requestAs(e *echo.Echo, userID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if userID != "" {
		req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, userID))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRateLimit_PerKeyIsolation(t *testing.T) {
	cfg := RateLimitConfig{
		RequestsPerSecond: 1,
		BurstSize:         1,
	}

	e := echo.New()
	mw := RateLimit(cfg)
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	c1, _ := requestAs(e, "user-a")
	if err := handler(c1); err != nil {
		t.Fatalf("user-a first request: expected no error, got %v", err)
	}

	c2, _ := requestAs(e, "user-a")
	if err := handler(c2); err == nil {
		t.Fatal("user-a second request: expected rate limit error")
	}

	// Separate limiter for another user behind the same IP.
	c3, _ := requestAs(e, "user-b")
	if err := handler(c3); err != nil {
		t.Fatalf("user-b first request: expected no error, got %v", err)
	}
}

func TestRateLimitKey(t *testing.T) {
	e := echo.New()
	c, _ := requestAs(e, "")
	if got := rateLimitKey(c); got != "ip:"+c.RealIP() {
		t.Errorf("expected ip key, got %q", got)
	}
	c, _ = requestAs(e, "u1")
	if got := rateLimitKey(c); got != "user:u1" {
		t.Errorf("expected user key, got %q", got)
	}
}

func TestRateLimit_DefaultConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond != 50 {
		t.Errorf("expected RequestsPerSecond 50, got %f", cfg.RequestsPerSecond)
	}
	if cfg.BurstSize != 100 {
		t.Errorf("expected BurstSize 100, got %d", cfg.BurstSize)
	}
}

func TestRateLimit_ZeroRateRejectsAfterBurst(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 0, BurstSize: 1})(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	c, _ := requestAs(e, "")
	if err := handler(c); err != nil {
		t.Fatalf("expected burst request to pass, got %v", err)
	}
	c, _ = requestAs(e, "")
	if err := handler(c); err == nil {
		t.Error("expected rejection with zero refill rate")
	}
}

func TestRateLimiterStore_ReusesAndEvicts(t *testing.T) {
	store := newRateLimiterStore(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5, IdleTTL: time.Minute})
	now := time.Now()

	l1 := store.get("key1", now)
	if l1 != store.get("key1", now) {
		t.Error("expected same limiter for same key")
	}
	if l1 == store.get("key2", now) {
		t.Error("expected different limiter for different key")
	}

	later := now.Add(2 * time.Minute)
	store.get("key3", later)
	if _, ok := store.clients["key1"]; ok {
		t.Error("expected idle key1 to be evicted")
	}
	if _, ok := store.clients["key3"]; !ok {
		t.Error("expected key3 to be tracked")
	}
}
