// Package notify delivers fired alerts to operators: email, websocket
// viewers and NATS subscribers.
package notify

import (
	"context"
	"errors"
	"fmt"

	"noveltycam/internal/model"
	"noveltycam/internal/service/alert"
)

// Multi sends every alert to all notifiers and reports every failure.
type Multi []alert.Notifier

func (m Multi) Notify(ctx context.Context, a *model.Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Named prefixes errors of a notifier with its channel name.
type Named struct {
	Name     string
	Notifier alert.Notifier
}

func (n Named) Notify(ctx context.Context, a *model.Alert) error {
	if err := n.Notifier.Notify(ctx, a); err != nil {
		return fmt.Errorf("%s: %w", n.Name, err)
	}
	return nil
}
