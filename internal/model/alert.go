package model

import "time"

// Alert is one fired novelty alert. It is never modified after creation.
type Alert struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Labels    []string  `json:"labels"`
	ImagePath string    `json:"image_path"`
	FrameSeq  int       `json:"frame_seq"`
}

// AlertFilter contains filtering options for querying alerts.
type AlertFilter struct {
	Label  string
	Since  time.Time
	Until  time.Time
	Limit  int
	Offset int
}

// AlertStats contains statistics about logged alerts.
type AlertStats struct {
	TotalAlerts int            `json:"total_alerts"`
	LabelCounts map[string]int `json:"label_counts"`
	LastAlertAt *time.Time     `json:"last_alert_at,omitempty"`
}
