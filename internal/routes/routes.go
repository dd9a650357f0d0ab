package routes

import (
	"net/http"

	"noveltycam/internal/config"
	"noveltycam/internal/handler"
	"noveltycam/internal/logger"
	"noveltycam/internal/metrics"
	"noveltycam/internal/middleware"
	"noveltycam/internal/repository"
	"noveltycam/internal/service/monitor"
	"noveltycam/internal/service/websocket"
)

// Dependencies groups what the HTTP API reads from.
type Dependencies struct {
	Config  *config.Config
	Logger  *logger.Logger
	Alerts  repository.AlertRepository
	Hub     *websocket.HubService
	Metrics *metrics.Metrics
	Status  func() monitor.Stats
}

// SetupRoutes registers the alert API, the websocket stream, log views and
// /metrics, and wraps the mux with recovery and access logging.
func SetupRoutes(deps Dependencies) http.Handler {
	mux := http.NewServeMux()
	cfg, logger := deps.Config, deps.Logger

	// Alert history
	mux.HandleFunc("GET /api/alerts", handler.GetAlertsHandler(cfg, logger, deps.Alerts))
	mux.HandleFunc("GET /api/alerts/image", handler.GetAlertImageHandler(logger, deps.Alerts))
	mux.HandleFunc("GET /api/alerts/stats", handler.GetAlertStatsHandler(logger, deps.Alerts))

	// Live state
	mux.HandleFunc("GET /api/status", handler.StatusHandler(logger, deps.Status, deps.Hub.GetClientCount))
	mux.HandleFunc("GET /api/ws", handler.AlertsWebsocketHandler(deps.Hub, logger))

	// Log endpoints
	for _, name := range []string{"info", "warning", "error"} {
		file := name + ".log"
		mux.HandleFunc("GET /logs/"+name, handler.ShowLogsHandler(cfg, file))
		mux.HandleFunc("POST /logs/"+name+"/clear", handler.ClearLogsHandler(logger, file))
	}

	mux.Handle("GET /metrics", deps.Metrics.Handler())

	return middleware.RecoverMiddleware(logger, middleware.LoggingMiddleware(logger, mux))
}
