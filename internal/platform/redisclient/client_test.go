package redisclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "http://localhost:6379")
	if err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
	if !strings.Contains(err.Error(), "parse redis url") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewClient(ctx, "redis://127.0.0.1:1/0?max_retries=-1")
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
	if !strings.Contains(err.Error(), "ping redis") {
		t.Errorf("expected ping error, got %v", err)
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/redis", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := HealthHandler(client)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse body: %v", err)
	}
	if body["status"] != "unhealthy" {
		t.Errorf("expected unhealthy, got %v", body["status"])
	}
}
