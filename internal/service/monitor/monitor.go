// Package monitor drives the frame loop: detection, warm-up baseline,
// novelty check, throttle and alert dispatch, one frame at a time.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"noveltycam/internal/logger"
	"noveltycam/internal/metrics"
	"noveltycam/internal/model"
	"noveltycam/internal/service/alert"
	"noveltycam/internal/service/novelty"
)

// ErrFrameSource wraps any non-EOF failure of the frame source. It ends the run.
var ErrFrameSource = errors.New("frame source failed")

// Phase is the state of the monitor.
type Phase int

const (
	PhaseWarmup Phase = iota
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseWarmup:
		return "warmup"
	case PhaseActive:
		return "active"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Source produces frames in stream order and returns io.EOF once exhausted.
type Source[F any] interface {
	Next(ctx context.Context) (F, error)
}

// Detector returns the labels of the objects present in a frame.
type Detector[F any] interface {
	Detect(frame F) (novelty.LabelSet, error)
}

// Dispatcher persists and announces an approved alert.
type Dispatcher[F any] interface {
	Dispatch(ctx context.Context, frame F, seq int, novel novelty.LabelSet, now time.Time) (*model.Alert, error)
}

// Options configures the state machine.
type Options struct {
	WarmupFrames int
	Cooldown     time.Duration
	// Now supplies alert timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Stats summarizes a run.
type Stats struct {
	Phase             string   `json:"phase"`
	FramesRead        int      `json:"frames_read"`
	FramesSkipped     int      `json:"frames_skipped"`
	WarmupFramesSeen  int      `json:"warmup_frames_seen"`
	WarmupFrames      int      `json:"warmup_frames"`
	Baseline          []string `json:"baseline"`
	AlertsFired       int      `json:"alerts_fired"`
	AlertsSuppressed  int      `json:"alerts_suppressed"`
	PersistenceErrors int      `json:"persistence_errors"`
	DeliveryErrors    int      `json:"delivery_errors"`
}

// Monitor owns the baseline and throttle state for a single run.
type Monitor[F any] struct {
	source     Source[F]
	detector   Detector[F]
	dispatcher Dispatcher[F]
	logger     *logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time

	tracker  *novelty.BaselineTracker
	throttle *novelty.Throttle
	baseline novelty.LabelSet
	phase    Phase

	mu    sync.RWMutex
	stats Stats
}

// New creates a monitor in the warm-up phase.
func New[F any](source Source[F], detector Detector[F], dispatcher Dispatcher[F], opts Options, logger *logger.Logger, m *metrics.Metrics) *Monitor[F] {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	mon := &Monitor[F]{
		source:     source,
		detector:   detector,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    m,
		now:        now,
		tracker:    novelty.NewBaselineTracker(opts.WarmupFrames),
		throttle:   novelty.NewThrottle(opts.Cooldown),
		phase:      PhaseWarmup,
	}
	mon.stats.WarmupFrames = mon.tracker.WarmupLength()

	if mon.tracker.Frozen() {
		mon.activate()
	}
	return mon
}

// Run consumes the source until it is exhausted, the context is cancelled
// or the source fails. Only a source failure is returned as an error.
func (m *Monitor[F]) Run(ctx context.Context) error {
	m.logger.Info("🎬 Monitor started - warm-up %d frame(s), cooldown %v",
		m.tracker.WarmupLength(), m.throttle.Cooldown())
	defer m.logSummary()

	for {
		if ctx.Err() != nil {
			m.logger.Info("Monitor stopped by signal")
			return nil
		}

		frame, err := m.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			m.logger.Info("End of stream reached")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				m.logger.Info("Monitor stopped by signal")
				return nil
			}
			return fmt.Errorf("%w: %v", ErrFrameSource, err)
		}

		m.ProcessFrame(ctx, frame)
	}
}

// ProcessFrame runs one frame through the state machine. It returns the
// alert that was fired for this frame, if any.
func (m *Monitor[F]) ProcessFrame(ctx context.Context, frame F) *model.Alert {
	m.mu.Lock()
	m.stats.FramesRead++
	seq := m.stats.FramesRead
	m.mu.Unlock()

	start := time.Now()
	labels, err := m.detector.Detect(frame)
	m.metrics.ObserveDetection(time.Since(start))
	if err != nil {
		m.mu.Lock()
		m.stats.FramesSkipped++
		m.mu.Unlock()
		m.metrics.DetectionErrors.Inc()
		m.logger.Warning("Skipping frame %d: %v", seq, err)
		return nil
	}

	m.metrics.FramesTotal.WithLabelValues(m.phase.String()).Inc()

	switch m.phase {
	case PhaseWarmup:
		m.observe(seq, labels)
		return nil
	default:
		return m.evaluate(ctx, frame, seq, labels)
	}
}

func (m *Monitor[F]) observe(seq int, labels novelty.LabelSet) {
	if err := m.tracker.Observe(labels); err != nil {
		m.logger.Error("Frame %d routed to a frozen baseline: %v", seq, err)
		return
	}

	m.mu.Lock()
	m.stats.WarmupFramesSeen = m.tracker.FramesSeen()
	m.mu.Unlock()
	m.metrics.BaselineLabels.Set(float64(m.tracker.Baseline().Len()))

	if m.tracker.Frozen() {
		m.activate()
	}
}

// activate freezes the baseline snapshot. It happens exactly once.
func (m *Monitor[F]) activate() {
	m.mu.Lock()
	m.baseline = m.tracker.Baseline()
	m.phase = PhaseActive
	m.stats.Baseline = m.baseline.Sorted()
	m.mu.Unlock()

	m.metrics.BaselineLabels.Set(float64(m.baseline.Len()))
	m.metrics.Active.Set(1)
	m.logger.Info("Baseline established after %d frame(s): [%s]", m.tracker.FramesSeen(), m.baseline)
}

func (m *Monitor[F]) evaluate(ctx context.Context, frame F, seq int, labels novelty.LabelSet) *model.Alert {
	novel := novelty.Novel(labels, m.baseline)
	if novel.IsEmpty() {
		return nil
	}

	now := m.now()
	if !m.throttle.ShouldFire(now, novel) {
		m.mu.Lock()
		m.stats.AlertsSuppressed++
		m.mu.Unlock()
		m.metrics.AlertsSuppressed.Inc()
		m.logger.Debug("Frame %d: novel [%s] suppressed by cooldown", seq, novel)
		return nil
	}

	m.logger.Warning("🚨 Alert: New object(s) detected: %s", novel)

	// A started dispatch runs to completion even if the run is being stopped.
	fired, err := m.dispatcher.Dispatch(context.WithoutCancel(ctx), frame, seq, novel, now)
	m.throttle.Record(now)

	m.mu.Lock()
	m.stats.AlertsFired++
	m.mu.Unlock()
	m.metrics.AlertsFired.Inc()

	switch {
	case err == nil:
	case errors.Is(err, alert.ErrDelivery):
		m.mu.Lock()
		m.stats.DeliveryErrors++
		m.mu.Unlock()
		m.metrics.DeliveryErrors.Inc()
		m.logger.Error("Alert %s logged but notification failed: %v", fired.ID, err)
	default:
		m.mu.Lock()
		m.stats.PersistenceErrors++
		m.mu.Unlock()
		m.metrics.PersistenceErrors.Inc()
		m.logger.Error("Alert for [%s] lost: %v", novel, err)
	}
	return fired
}

// Phase returns the current phase.
func (m *Monitor[F]) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// Baseline returns a copy of the frozen baseline, or nil during warm-up.
func (m *Monitor[F]) Baseline() novelty.LabelSet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.phase != PhaseActive {
		return nil
	}
	return m.baseline.Clone()
}

// Stats returns a snapshot of the run counters. Safe to call from other goroutines.
func (m *Monitor[F]) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.stats
	s.Phase = m.phase.String()
	s.Baseline = append([]string(nil), m.stats.Baseline...)
	return s
}

func (m *Monitor[F]) logSummary() {
	s := m.Stats()
	m.logger.Info("Run summary: phase=%s frames=%d skipped=%d warmup=%d/%d baseline=%v alerts=%d suppressed=%d persistence_errors=%d delivery_errors=%d",
		s.Phase, s.FramesRead, s.FramesSkipped, s.WarmupFramesSeen, s.WarmupFrames, s.Baseline,
		s.AlertsFired, s.AlertsSuppressed, s.PersistenceErrors, s.DeliveryErrors)
}
