package novelty

import (
	"errors"
	"fmt"
)

// DefaultWarmupFrames is the number of frames used to build the baseline.
const DefaultWarmupFrames = 30

// ErrBaselineFrozen is returned when Observe is called after warm-up ended.
var ErrBaselineFrozen = errors.New("baseline is frozen")

// BaselineTracker accumulates the union of labels seen during warm-up.
// Once warmupLength frames were observed the baseline never changes again.
type BaselineTracker struct {
	baseline     LabelSet
	framesSeen   int
	warmupLength int
}

// NewBaselineTracker creates an empty tracker. A non-positive warmupLength
// yields a tracker that is frozen from the start with an empty baseline.
func NewBaselineTracker(warmupLength int) *BaselineTracker {
	if warmupLength < 0 {
		warmupLength = 0
	}
	return &BaselineTracker{
		baseline:     NewLabelSet(),
		warmupLength: warmupLength,
	}
}

// Observe merges one frame's labels into the baseline.
func (t *BaselineTracker) Observe(labels LabelSet) error {
	if t.Frozen() {
		return fmt.Errorf("observe frame %d: %w", t.framesSeen+1, ErrBaselineFrozen)
	}

	for label := range labels {
		t.baseline.Add(label)
	}
	t.framesSeen++
	return nil
}

// Frozen reports whether warm-up is over.
func (t *BaselineTracker) Frozen() bool {
	return t.framesSeen >= t.warmupLength
}

// FramesSeen returns how many frames contributed to the baseline.
func (t *BaselineTracker) FramesSeen() int {
	return t.framesSeen
}

// WarmupLength returns the configured number of warm-up frames.
func (t *BaselineTracker) WarmupLength() int {
	return t.warmupLength
}

// Baseline returns a copy of the accumulated labels.
func (t *BaselineTracker) Baseline() LabelSet {
	return t.baseline.Clone()
}
