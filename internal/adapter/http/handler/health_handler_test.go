package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_ReadinessAllHealthy(t *testing.T) {
	h := NewHealthHandler(nil, nil)
	h.AddCheck("postgres", func(ctx context.Context) error { return nil })
	h.AddCheck("redis", func(ctx context.Context) error { return nil })

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var body map[string]string
	decodeBody(t, rec, &body)
	if rec.Code != http.StatusOK || body["postgres"] != "ok" || body["redis"] != "ok" {
		t.Fatalf("unexpected readiness %d %v", rec.Code, body)
	}
}

func TestHealthHandler_ReadinessFailingCheck(t *testing.T) {
	h := NewHealthHandler(nil, nil)
	h.AddCheck("postgres", func(ctx context.Context) error { return nil })
	h.AddCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
