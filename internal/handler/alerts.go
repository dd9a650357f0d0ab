package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"noveltycam/internal/config"
	"noveltycam/internal/dto"
	"noveltycam/internal/logger"
	"noveltycam/internal/model"
	"noveltycam/internal/repository"
)

const (
	defaultPageSize = 24
	maxPageSize     = 500
)

// GetAlertsHandler returns the filtered alert history, newest first.
// Query: label, since, until (RFC3339 or 2006-01-02), page or offset, limit.
func GetAlertsHandler(cfg *config.Config, logger *logger.Logger, alertRepo repository.AlertRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit := atoiDefault(q.Get("limit"), defaultPageSize)
		if limit > maxPageSize {
			limit = maxPageSize
		}
		page := atoiDefault(q.Get("page"), 1)
		offset := (page - 1) * limit
		if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
			offset = v
			page = offset/limit + 1
		}

		filter := &model.AlertFilter{
			Label:  q.Get("label"),
			Since:  parseDate(q.Get("since")),
			Until:  parseDate(q.Get("until")),
			Limit:  limit,
			Offset: offset,
		}

		alerts, err := alertRepo.GetAll(r.Context(), filter)
		if err != nil {
			logger.Error("Error querying alerts from database: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		totalCount, err := alertRepo.GetTotalCount(r.Context(), filter)
		if err != nil {
			logger.Error("Error counting alerts: %v", err)
			totalCount = len(alerts)
		}

		events := make([]dto.AlertEvent, 0, len(alerts))
		for i := range alerts {
			events = append(events, dto.NewAlertEvent(&alerts[i]))
		}

		writeJSON(w, logger, http.StatusOK, dto.AlertsData{
			Alerts:      events,
			ImagesDir:   cfg.ImageDirectory,
			Length:      totalCount,
			TotalPages:  (totalCount + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
			Offset:      offset,
		})
	}
}

// GetAlertImageHandler serves the saved frame of the alert given by the "id" query parameter.
func GetAlertImageHandler(logger *logger.Logger, alertRepo repository.AlertRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id parameter is required", http.StatusBadRequest)
			return
		}

		alert, err := alertRepo.GetByID(r.Context(), id)
		if err != nil {
			logger.Error("Error loading alert %s: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if alert == nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		http.ServeFile(w, r, alert.ImagePath)
	}
}

// GetAlertStatsHandler returns alert totals and per-label counts.
func GetAlertStatsHandler(logger *logger.Logger, alertRepo repository.AlertRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := alertRepo.GetStats(r.Context())
		if err != nil {
			logger.Error("Error getting alert stats: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		labels, err := alertRepo.GetLabels(r.Context())
		if err != nil {
			logger.Error("Error getting alert labels: %v", err)
			labels = []string{}
		}

		data := dto.AlertStatsData{
			TotalAlerts: stats.TotalAlerts,
			LabelCounts: stats.LabelCounts,
			Labels:      labels,
		}
		if stats.LastAlertAt != nil {
			data.LastAlertAt = stats.LastAlertAt.Format(time.RFC3339)
		}
		writeJSON(w, logger, http.StatusOK, data)
	}
}

func writeJSON(w http.ResponseWriter, logger *logger.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

// atoiDefault converts string to int or returns a default when conversion fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

// parseDate accepts RFC3339 timestamps and plain "2006-01-02" dates.
func parseDate(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(time.DateOnly, v, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
