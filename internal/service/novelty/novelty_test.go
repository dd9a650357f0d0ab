package novelty

import (
	"errors"
	"testing"
	"time"
)

// ========================================
// LabelSet Tests
// ========================================

func TestNewLabelSet_CollapsesDuplicates(t *testing.T) {
	s := NewLabelSet("car", "car", "dog")
	if s.Len() != 2 {
		t.Errorf("Expected 2 labels, got %d", s.Len())
	}
	if got := s.String(); got != "car, dog" {
		t.Errorf("Expected 'car, dog', got %q", got)
	}
}

func TestLabelSet_CloneIsIndependent(t *testing.T) {
	s := NewLabelSet("car")
	c := s.Clone()
	c.Add("tree")

	if s.Contains("tree") {
		t.Error("Mutating the clone should not change the original")
	}
}

// ========================================
// Baseline Tracker Tests
// ========================================

func TestBaselineTracker_UnionRegardlessOfOrder(t *testing.T) {
	frames := []LabelSet{
		NewLabelSet("car"),
		NewLabelSet(),
		NewLabelSet("tree", "car"),
		NewLabelSet("person"),
	}
	want := NewLabelSet("car", "tree", "person")

	orders := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}}
	for _, order := range orders {
		tracker := NewBaselineTracker(len(frames))
		for _, i := range order {
			if err := tracker.Observe(frames[i]); err != nil {
				t.Fatalf("Observe failed: %v", err)
			}
		}
		if got := tracker.Baseline(); !got.Equal(want) {
			t.Errorf("Order %v: expected baseline %v, got %v", order, want, got)
		}
	}
}

func TestBaselineTracker_FreezesAtWarmupLength(t *testing.T) {
	tracker := NewBaselineTracker(2)

	if tracker.Frozen() {
		t.Fatal("Tracker should not start frozen")
	}
	_ = tracker.Observe(NewLabelSet("car"))
	if tracker.Frozen() {
		t.Fatal("Tracker should not freeze after 1 of 2 frames")
	}
	_ = tracker.Observe(NewLabelSet("car", "tree"))
	if !tracker.Frozen() {
		t.Fatal("Tracker should freeze after 2 of 2 frames")
	}

	want := NewLabelSet("car", "tree")
	if got := tracker.Baseline(); !got.Equal(want) {
		t.Errorf("Expected baseline %v, got %v", want, got)
	}
}

func TestBaselineTracker_ObserveAfterFreezeIsRejected(t *testing.T) {
	tracker := NewBaselineTracker(1)
	_ = tracker.Observe(NewLabelSet("car"))

	err := tracker.Observe(NewLabelSet("dog"))
	if !errors.Is(err, ErrBaselineFrozen) {
		t.Fatalf("Expected ErrBaselineFrozen, got %v", err)
	}
	if tracker.Baseline().Contains("dog") {
		t.Error("Baseline must not change after warm-up")
	}
	if tracker.FramesSeen() != 1 {
		t.Errorf("Expected 1 frame seen, got %d", tracker.FramesSeen())
	}
}

func TestBaselineTracker_BaselineReturnsCopy(t *testing.T) {
	tracker := NewBaselineTracker(1)
	_ = tracker.Observe(NewLabelSet("car"))

	b := tracker.Baseline()
	b.Add("dog")

	if tracker.Baseline().Contains("dog") {
		t.Error("Callers must not be able to mutate the baseline")
	}
}

func TestBaselineTracker_ZeroWarmupStartsFrozen(t *testing.T) {
	tracker := NewBaselineTracker(0)
	if !tracker.Frozen() {
		t.Error("Tracker with zero warm-up should be frozen")
	}
	if !tracker.Baseline().IsEmpty() {
		t.Error("Baseline should be empty")
	}
}

// ========================================
// Novelty Evaluator Tests
// ========================================

func TestNovel(t *testing.T) {
	tests := []struct {
		name     string
		current  LabelSet
		baseline LabelSet
		want     LabelSet
	}{
		{"nothing new", NewLabelSet("car"), NewLabelSet("car", "tree"), NewLabelSet()},
		{"one new", NewLabelSet("car", "tree", "dog"), NewLabelSet("car", "tree"), NewLabelSet("dog")},
		{"all new", NewLabelSet("dog", "cat"), NewLabelSet("car"), NewLabelSet("dog", "cat")},
		{"empty frame", NewLabelSet(), NewLabelSet("car"), NewLabelSet()},
		{"empty baseline", NewLabelSet("car"), NewLabelSet(), NewLabelSet("car")},
		{"nil baseline", NewLabelSet("car"), nil, NewLabelSet("car")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Novel(tt.current, tt.baseline)
			if !got.Equal(tt.want) {
				t.Errorf("Novel(%v, %v) = %v, expected %v", tt.current, tt.baseline, got, tt.want)
			}
			if got.IsEmpty() != tt.current.SubsetOf(tt.baseline) {
				t.Errorf("Novel result emptiness must match subset relation")
			}
		})
	}
}

// ========================================
// Throttle Tests
// ========================================

func TestThrottle_FirstAlertAlwaysFires(t *testing.T) {
	throttle := NewThrottle(10 * time.Second)
	if !throttle.ShouldFire(time.Unix(0, 0), NewLabelSet("dog")) {
		t.Error("First novelty should fire")
	}
	if _, fired := throttle.LastAlert(); fired {
		t.Error("ShouldFire must not record by itself")
	}
}

func TestThrottle_EmptyNoveltyNeverFires(t *testing.T) {
	throttle := NewThrottle(0)
	if throttle.ShouldFire(time.Now(), NewLabelSet()) {
		t.Error("Empty novelty must not fire")
	}
}

func TestThrottle_Cooldown(t *testing.T) {
	base := time.Unix(100, 0)
	tests := []struct {
		offset time.Duration
		want   bool
	}{
		{5 * time.Second, false},
		{10 * time.Second, false},
		{10*time.Second + time.Millisecond, true},
		{11 * time.Second, true},
	}

	for _, tt := range tests {
		throttle := NewThrottle(10 * time.Second)
		throttle.Record(base)

		got := throttle.ShouldFire(base.Add(tt.offset), NewLabelSet("cat"))
		if got != tt.want {
			t.Errorf("ShouldFire at +%v = %v, expected %v", tt.offset, got, tt.want)
		}
	}
}

func TestThrottle_RecordMovesWindow(t *testing.T) {
	throttle := NewThrottle(10 * time.Second)
	t0 := time.Unix(100, 0)
	throttle.Record(t0)
	throttle.Record(t0.Add(11 * time.Second))

	if throttle.ShouldFire(t0.Add(15*time.Second), NewLabelSet("cat")) {
		t.Error("Cooldown should be measured from the most recent alert")
	}
	last, fired := throttle.LastAlert()
	if !fired || !last.Equal(t0.Add(11*time.Second)) {
		t.Errorf("Unexpected last alert %v (fired=%v)", last, fired)
	}
}
