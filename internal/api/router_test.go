package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/persistorai/auditlens/internal/api"
	"github.com/persistorai/auditlens/internal/middleware"
	"github.com/persistorai/auditlens/internal/models"
)

func newFullRouter(t *testing.T) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return api.NewRouter(ctx, &api.RouterDeps{
		Log: testLogger(),
		Dashboards: &mockDashboards{
			security: func(context.Context, string) (*models.SecurityDashboard, error) {
				return &models.SecurityDashboard{}, nil
			},
		},
		Logs: &mockLogs{},
		Export: &mockExport{
			export: func(context.Context, models.LogFilterParams, string, models.Actor) (*models.ExportResult, error) {
				return &models.ExportResult{Format: models.ExportJSON, Filename: "x.json", Body: []byte("{}")}, nil
			},
		},
		CORSOrigins: []string{"http://localhost:3000"},
		Version:     "test",
	})
}

func TestRouter_RoutesAndRequestID(t *testing.T) {
	r := newFullRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/dashboards/security", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected X-Request-ID header")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
}

func TestRouter_UnknownRouteIs404Envelope(t *testing.T) {
	w := doRequest(newFullRouter(t), http.MethodGet, "/api/v1/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Success || env.Code != api.ErrCodeNotFound {
		t.Errorf("envelope = %+v", env)
	}
}

func TestRouter_ExportIsRateLimitedPerActor(t *testing.T) {
	r := newFullRouter(t)
	headers := map[string]string{middleware.ActorIDHeader: "u1"}

	var limited bool
	for range 10 {
		w := doRequest(r, http.MethodGet, "/api/v1/logs/export", headers)
		if w.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("expected the export limiter to trip")
	}

	w := doRequest(r, http.MethodGet, "/api/v1/logs/export", map[string]string{middleware.ActorIDHeader: "u2"})
	if w.Code != http.StatusOK {
		t.Errorf("other actor should not be limited, got %d", w.Code)
	}
}
