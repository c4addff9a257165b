package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ventahub/ventahub-backend/pkg/config"
)

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(ctx context.Context) error { return s.err }

func healthTestConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthReadyPingsBothStores(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	HealthReady(healthTestConfig(), &stubPinger{}, &stubPinger{})(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("X-VentaHub-Env"); got != "test" {
		t.Fatalf("env header = %q", got)
	}
}

func TestHealthReadyFailsWhenDatabaseDown(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	HealthReady(healthTestConfig(), &stubPinger{err: errors.New("connection refused")}, &stubPinger{})(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestHealthReadyFailsWhenRedisDown(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	HealthReady(healthTestConfig(), &stubPinger{}, &stubPinger{err: errors.New("connection refused")})(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
