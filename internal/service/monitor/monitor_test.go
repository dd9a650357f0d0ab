package monitor

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"noveltycam/internal/logger"
	"noveltycam/internal/metrics"
	"noveltycam/internal/model"
	"noveltycam/internal/service/alert"
	"noveltycam/internal/service/novelty"
)

type testFrame struct {
	labels []string
	at     time.Time
	err    error
}

type sliceSource struct {
	frames  []testFrame
	pos     int
	failAt  int
	current *time.Time
}

func (s *sliceSource) Next(ctx context.Context) (testFrame, error) {
	if s.failAt > 0 && s.pos == s.failAt {
		return testFrame{}, errors.New("capture device lost")
	}
	if s.pos >= len(s.frames) {
		return testFrame{}, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	if s.current != nil {
		*s.current = f.at
	}
	return f, nil
}

type labelDetector struct{}

func (labelDetector) Detect(frame testFrame) (novelty.LabelSet, error) {
	if frame.err != nil {
		return nil, frame.err
	}
	return novelty.NewLabelSet(frame.labels...), nil
}

type dispatchCall struct {
	seq   int
	novel novelty.LabelSet
	at    time.Time
}

type fakeDispatcher struct {
	calls []dispatchCall
	err   error
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, frame testFrame, seq int, novel novelty.LabelSet, now time.Time) (*model.Alert, error) {
	d.calls = append(d.calls, dispatchCall{seq: seq, novel: novel, at: now})
	if d.err != nil && !errors.Is(d.err, alert.ErrDelivery) {
		return nil, d.err
	}
	return &model.Alert{ID: "a", Timestamp: now, Labels: novel.Sorted()}, d.err
}

func newTestMonitor(src *sliceSource, d Dispatcher[testFrame], warmup int, cooldown time.Duration) (*Monitor[testFrame], *metrics.Metrics) {
	var current time.Time
	src.current = &current
	m := metrics.New()
	opts := Options{
		WarmupFrames: warmup,
		Cooldown:     cooldown,
		Now:          func() time.Time { return current },
	}
	return New[testFrame](src, labelDetector{}, d, opts, logger.NewNop(), m), m
}

func TestMonitor_ConcreteScenario(t *testing.T) {
	t0 := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	alertAt := t0.Add(2 * time.Second)
	src := &sliceSource{frames: []testFrame{
		{labels: []string{"car"}, at: t0},
		{labels: []string{"car", "tree"}, at: t0.Add(time.Second)},
		{labels: []string{"car", "tree", "dog"}, at: alertAt},
		{labels: []string{"dog", "cat"}, at: alertAt.Add(time.Second)},
		{labels: []string{"cat"}, at: alertAt.Add(11 * time.Second)},
	}}
	d := &fakeDispatcher{}
	mon, m := newTestMonitor(src, d, 2, 10*time.Second)

	if err := mon.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !mon.Baseline().Equal(novelty.NewLabelSet("car", "tree")) {
		t.Errorf("Expected baseline {car, tree}, got %v", mon.Baseline())
	}
	if len(d.calls) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(d.calls))
	}
	if !d.calls[0].novel.Equal(novelty.NewLabelSet("dog")) || d.calls[0].seq != 3 || !d.calls[0].at.Equal(alertAt) {
		t.Errorf("Unexpected first alert %+v", d.calls[0])
	}
	if !d.calls[1].novel.Equal(novelty.NewLabelSet("cat")) || d.calls[1].seq != 5 {
		t.Errorf("Unexpected second alert %+v", d.calls[1])
	}

	stats := mon.Stats()
	if stats.AlertsSuppressed != 1 || stats.AlertsFired != 2 || stats.FramesRead != 5 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if got := testutil.ToFloat64(m.AlertsSuppressed); got != 1 {
		t.Errorf("Expected suppressed metric 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.FramesTotal.WithLabelValues("warmup")); got != 2 {
		t.Errorf("Expected 2 warm-up frames in metrics, got %v", got)
	}
}

func TestMonitor_ShortStreamNeverLeavesWarmup(t *testing.T) {
	src := &sliceSource{frames: []testFrame{{labels: []string{"dog"}, at: time.Unix(1, 0)}}}
	d := &fakeDispatcher{}
	mon, _ := newTestMonitor(src, d, 30, 10*time.Second)

	if err := mon.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if mon.Phase() != PhaseWarmup {
		t.Errorf("Expected warmup phase, got %s", mon.Phase())
	}
	if mon.Baseline() != nil {
		t.Error("Baseline should not be exposed before warm-up completes")
	}
	if len(d.calls) != 0 {
		t.Errorf("Expected no alerts, got %d", len(d.calls))
	}
}

func TestMonitor_DetectionErrorSkipsFrame(t *testing.T) {
	t0 := time.Unix(1000, 0)
	src := &sliceSource{frames: []testFrame{
		{labels: []string{"car"}, at: t0},
		{labels: []string{"dog"}, err: errors.New("inference failed"), at: t0.Add(time.Second)},
		{labels: []string{"tree"}, at: t0.Add(2 * time.Second)},
		{labels: []string{"car", "tree"}, at: t0.Add(3 * time.Second)},
	}}
	d := &fakeDispatcher{}
	mon, m := newTestMonitor(src, d, 2, 10*time.Second)

	if err := mon.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !mon.Baseline().Equal(novelty.NewLabelSet("car", "tree")) {
		t.Errorf("Failed frame must not contribute to baseline, got %v", mon.Baseline())
	}
	if len(d.calls) != 0 {
		t.Errorf("Expected no alerts, got %d", len(d.calls))
	}
	if s := mon.Stats(); s.FramesSkipped != 1 || s.FramesRead != 4 {
		t.Errorf("Unexpected stats %+v", s)
	}
	if got := testutil.ToFloat64(m.DetectionErrors); got != 1 {
		t.Errorf("Expected 1 detection error, got %v", got)
	}
}

func TestMonitor_WarmupAndActiveAreExclusive(t *testing.T) {
	t0 := time.Unix(0, 0)
	src := &sliceSource{frames: []testFrame{
		{labels: []string{"car"}, at: t0},
		{labels: []string{"dog"}, at: t0.Add(time.Second)},
	}}
	d := &fakeDispatcher{}
	mon, _ := newTestMonitor(src, d, 1, 0)

	if err := mon.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if mon.Baseline().Contains("dog") {
		t.Error("Active frames must not extend the baseline")
	}
	if len(d.calls) != 1 || !d.calls[0].novel.Equal(novelty.NewLabelSet("dog")) {
		t.Errorf("Expected one alert for dog, got %+v", d.calls)
	}
}

func TestMonitor_ZeroWarmupIsActiveImmediately(t *testing.T) {
	src := &sliceSource{frames: []testFrame{{labels: []string{"person"}, at: time.Unix(5, 0)}}}
	d := &fakeDispatcher{}
	mon, _ := newTestMonitor(src, d, 0, 10*time.Second)

	if mon.Phase() != PhaseActive {
		t.Fatalf("Expected active phase, got %s", mon.Phase())
	}
	if err := mon.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(d.calls) != 1 {
		t.Errorf("Expected 1 alert, got %d", len(d.calls))
	}
}

func TestMonitor_PersistenceFailureStillRecordsThrottle(t *testing.T) {
	t0 := time.Unix(100, 0)
	src := &sliceSource{frames: []testFrame{
		{labels: []string{}, at: t0},
		{labels: []string{"dog"}, at: t0.Add(time.Second)},
		{labels: []string{"dog"}, at: t0.Add(2 * time.Second)},
	}}
	d := &fakeDispatcher{err: alert.ErrPersistence}
	mon, m := newTestMonitor(src, d, 1, 10*time.Second)

	if err := mon.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(d.calls) != 1 {
		t.Errorf("Failing backend must not cause re-firing, got %d dispatches", len(d.calls))
	}
	if got := testutil.ToFloat64(m.PersistenceErrors); got != 1 {
		t.Errorf("Expected 1 persistence error, got %v", got)
	}
}

func TestMonitor_DeliveryFailureIsNonFatal(t *testing.T) {
	t0 := time.Unix(100, 0)
	src := &sliceSource{frames: []testFrame{
		{labels: []string{"car"}, at: t0},
		{labels: []string{"dog"}, at: t0.Add(time.Second)},
		{labels: []string{"cat"}, at: t0.Add(20 * time.Second)},
	}}
	d := &fakeDispatcher{err: alert.ErrDelivery}
	mon, _ := newTestMonitor(src, d, 1, 10*time.Second)

	if err := mon.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if s := mon.Stats(); s.DeliveryErrors != 2 || s.AlertsFired != 2 {
		t.Errorf("Unexpected stats %+v", s)
	}
}

func TestMonitor_SourceFailureIsFatal(t *testing.T) {
	src := &sliceSource{
		frames: []testFrame{{labels: []string{"car"}}, {labels: []string{"car"}}},
		failAt: 1,
	}
	mon, _ := newTestMonitor(src, &fakeDispatcher{}, 5, 0)

	err := mon.Run(context.Background())
	if !errors.Is(err, ErrFrameSource) {
		t.Fatalf("Expected ErrFrameSource, got %v", err)
	}
	if s := mon.Stats(); s.FramesRead != 1 {
		t.Errorf("Expected 1 frame processed before failure, got %d", s.FramesRead)
	}
}

func TestMonitor_CancelledContextStopsCleanly(t *testing.T) {
	src := &sliceSource{frames: []testFrame{{labels: []string{"car"}}}}
	mon, _ := newTestMonitor(src, &fakeDispatcher{}, 5, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := mon.Run(ctx); err != nil {
		t.Fatalf("Expected nil error on cancellation, got %v", err)
	}
	if s := mon.Stats(); s.FramesRead != 0 {
		t.Errorf("No frame should be read after cancellation, got %d", s.FramesRead)
	}
}

func TestPhase_String(t *testing.T) {
	if PhaseWarmup.String() != "warmup" || PhaseActive.String() != "active" {
		t.Error("Unexpected phase names")
	}
}
