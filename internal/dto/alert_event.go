package dto

import (
	"strings"
	"time"

	"github.com/goccy/go-json"

	"noveltycam/internal/model"
)

// AlertEvent is the wire form of an alert pushed to viewers and message subscribers.
type AlertEvent struct {
	Type      string   `json:"type"`
	ID        string   `json:"id"`
	Timestamp string   `json:"timestamp"`
	Labels    []string `json:"labels"`
	Summary   string   `json:"summary"`
	ImagePath string   `json:"image_path"`
	ImageURL  string   `json:"image_url,omitempty"`
	FrameSeq  int      `json:"frame_seq"`
}

// NewAlertEvent converts an alert into its wire form.
func NewAlertEvent(alert *model.Alert) AlertEvent {
	return AlertEvent{
		Type:      "alert",
		ID:        alert.ID,
		Timestamp: alert.Timestamp.Format(time.RFC3339),
		Labels:    alert.Labels,
		Summary:   strings.Join(alert.Labels, ", "),
		ImagePath: alert.ImagePath,
		ImageURL:  "/api/alerts/image?id=" + alert.ID,
		FrameSeq:  alert.FrameSeq,
	}
}

// Marshal encodes the event as JSON.
func (e AlertEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
