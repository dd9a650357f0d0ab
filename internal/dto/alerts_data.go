// AlertsData is a paginated response payload for the alert history.
package dto

type AlertsData struct {
	Alerts      []AlertEvent `json:"alerts"`
	ImagesDir   string       `json:"imagesDir"`
	Length      int          `json:"length"`
	TotalPages  int          `json:"totalPages"`
	CurrentPage int          `json:"currentPage"`
	Limit       int          `json:"pageSize"`
	Offset      int          `json:"offset"`
}

// AlertStatsData is the payload of the alert statistics endpoint.
type AlertStatsData struct {
	TotalAlerts int            `json:"totalAlerts"`
	LabelCounts map[string]int `json:"labelCounts"`
	Labels      []string       `json:"labels"`
	LastAlertAt string         `json:"lastAlertAt,omitempty"`
}
