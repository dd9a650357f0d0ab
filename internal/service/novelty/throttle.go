package novelty

import "time"

// DefaultCooldown is the minimum interval between two fired alerts.
const DefaultCooldown = 10 * time.Second

// Throttle is a single global debounce for alerts. Novel labels that show
// up while it is cooling down are dropped, not queued.
type Throttle struct {
	cooldown  time.Duration
	lastAlert time.Time
	fired     bool
}

// NewThrottle creates a throttle that has never fired.
func NewThrottle(cooldown time.Duration) *Throttle {
	if cooldown < 0 {
		cooldown = 0
	}
	return &Throttle{cooldown: cooldown}
}

// ShouldFire reports whether an alert for novel may be dispatched at now.
// An alert is refused when novel is empty or when no more than the cooldown
// has elapsed since the last recorded alert.
func (t *Throttle) ShouldFire(now time.Time, novel LabelSet) bool {
	if novel.IsEmpty() {
		return false
	}
	if t.fired && now.Sub(t.lastAlert) <= t.cooldown {
		return false
	}
	return true
}

// Record marks now as the time of the most recent alert.
func (t *Throttle) Record(now time.Time) {
	t.lastAlert = now
	t.fired = true
}

// LastAlert returns the time of the last recorded alert and whether one exists.
func (t *Throttle) LastAlert() (time.Time, bool) {
	return t.lastAlert, t.fired
}

// Cooldown returns the configured interval.
func (t *Throttle) Cooldown() time.Duration {
	return t.cooldown
}
