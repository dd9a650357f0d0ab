package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"noveltycam/internal/config"
	"noveltycam/internal/logger"
	"noveltycam/internal/metrics"
	"noveltycam/internal/model"
	"noveltycam/internal/service/monitor"
	"noveltycam/internal/service/websocket"
)

type emptyRepo struct{}

func (emptyRepo) Append(context.Context, *model.Alert) error { return nil }
func (emptyRepo) GetByID(context.Context, string) (*model.Alert, error) {
	return nil, nil
}
func (emptyRepo) GetAll(context.Context, *model.AlertFilter) ([]model.Alert, error) {
	return nil, nil
}
func (emptyRepo) GetTotalCount(context.Context, *model.AlertFilter) (int, error) { return 0, nil }
func (emptyRepo) GetLabels(context.Context) ([]string, error)                    { return nil, nil }
func (emptyRepo) GetStats(context.Context) (*model.AlertStats, error) {
	return &model.AlertStats{LabelCounts: map[string]int{}}, nil
}

func TestSetupRoutes(t *testing.T) {
	log := logger.NewNop()
	m := metrics.New()
	m.AlertsFired.Inc()

	h := SetupRoutes(Dependencies{
		Config:  &config.Config{ImageDirectory: t.TempDir(), LogDirectory: t.TempDir()},
		Logger:  log,
		Alerts:  emptyRepo{},
		Hub:     websocket.NewHubService(log),
		Metrics: m,
		Status:  func() monitor.Stats { return monitor.Stats{Phase: "warmup"} },
	})

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/api/alerts", http.StatusOK, `"alerts":[]`},
		{http.MethodGet, "/api/alerts/stats", http.StatusOK, `"totalAlerts":0`},
		{http.MethodGet, "/api/alerts/image?id=x", http.StatusNotFound, ""},
		{http.MethodGet, "/api/status", http.StatusOK, `"phase":"warmup"`},
		{http.MethodGet, "/metrics", http.StatusOK, "noveltycam_alerts_fired_total 1"},
		{http.MethodPost, "/api/alerts", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d", tt.status, rec.Code)
			}
			if tt.body != "" && !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("Body should contain %q, got %s", tt.body, rec.Body.String())
			}
		})
	}
}
