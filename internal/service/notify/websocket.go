package notify

import (
	"context"
	"fmt"

	"noveltycam/internal/dto"
	"noveltycam/internal/model"
	"noveltycam/internal/service/websocket"
)

// HubNotifier pushes alerts to connected websocket viewers.
type HubNotifier struct {
	hub *websocket.HubService
}

func NewHubNotifier(hub *websocket.HubService) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) Notify(ctx context.Context, a *model.Alert) error {
	payload, err := dto.NewAlertEvent(a).Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode alert event: %w", err)
	}
	if !n.hub.Broadcast(payload) {
		return fmt.Errorf("viewer queue full")
	}
	return nil
}
