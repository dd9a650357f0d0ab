package repository

import (
	"context"

	"noveltycam/internal/model"
)

// AlertRepository defines the interface for the durable alert log.
type AlertRepository interface {
	// Create operations
	Append(ctx context.Context, alert *model.Alert) error

	// Read operations
	GetByID(ctx context.Context, id string) (*model.Alert, error)
	GetAll(ctx context.Context, filter *model.AlertFilter) ([]model.Alert, error)
	GetTotalCount(ctx context.Context, filter *model.AlertFilter) (int, error)
	GetLabels(ctx context.Context) ([]string, error)
	GetStats(ctx context.Context) (*model.AlertStats, error)
}
