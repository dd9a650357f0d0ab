package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"noveltycam/internal/dto"
	"noveltycam/internal/logger"
	"noveltycam/internal/model"
)

// NATSNotifier publishes alert events on a NATS subject.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier connects to url. The client reconnects on its own after the initial connection.
func NewNATSNotifier(url, subject string, logger *logger.Logger) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("noveltycam"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warning("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS %s: %w", url, err)
	}

	logger.Info("📡 Publishing alerts to NATS subject %s", subject)
	return &NATSNotifier{conn: conn, subject: subject}, nil
}

func (n *NATSNotifier) Notify(ctx context.Context, a *model.Alert) error {
	payload, err := dto.NewAlertEvent(a).Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode alert event: %w", err)
	}
	if err := n.conn.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (n *NATSNotifier) Close() error {
	return n.conn.Drain()
}
