package notify

import (
	"context"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"noveltycam/internal/logger"
	"noveltycam/internal/model"
	"noveltycam/internal/service/alert"
)

// BreakerNotifier stops calling a failing notifier for a while after
// consecutive failures, so a dead mail server does not slow every alert.
type BreakerNotifier struct {
	next alert.Notifier
	cb   *gobreaker.CircuitBreaker[struct{}]
}

type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

func NewBreakerNotifier(next alert.Notifier, settings BreakerSettings, logger *logger.Logger) *BreakerNotifier {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 3
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = time.Minute
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warning("Notifier %s circuit %s -> %s", name, from, to)
		},
	})

	return &BreakerNotifier{next: next, cb: cb}
}

func (b *BreakerNotifier) Notify(ctx context.Context, a *model.Alert) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Notify(ctx, a)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", b.cb.Name(), err)
	}
	return nil
}

// State reports the current breaker state.
func (b *BreakerNotifier) State() gobreaker.State {
	return b.cb.State()
}
