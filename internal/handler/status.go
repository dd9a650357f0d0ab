package handler

import (
	"net/http"

	"noveltycam/internal/logger"
	"noveltycam/internal/service/monitor"
)

// StatusHandler reports the live state of the monitoring loop.
func StatusHandler(logger *logger.Logger, status func() monitor.Stats, viewers func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, struct {
			monitor.Stats
			Viewers int `json:"viewers"`
		}{Stats: status(), Viewers: viewers()})
	}
}
