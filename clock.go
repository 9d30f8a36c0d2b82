package intersection

import (
	"sync"
	"time"
)

// TimeSource supplies wall-clock readings to a PhaseClock
type TimeSource interface {
	Now() time.Time
}

// SystemTime reads the process clock. time.Now carries a monotonic reading,
// so deltas are unaffected by wall-clock adjustments.
type SystemTime struct{}

// Now returns time.Now()
func (SystemTime) Now() time.Time { return time.Now() }

// PhaseClock turns time readings into deltas since the previous query, which
// decouples the controller's timing from how often the host loop runs.
type PhaseClock struct {
	mu      sync.Mutex
	source  TimeSource
	last    time.Time
	started bool
}

// NewPhaseClock creates a clock reading from src. A nil source yields a
// clock that always reports a zero delta.
func NewPhaseClock(src TimeSource) *PhaseClock {
	return &PhaseClock{source: src}
}

// NewSystemClock creates a clock backed by SystemTime
func NewSystemClock() *PhaseClock {
	return NewPhaseClock(SystemTime{})
}

// Delta returns the time elapsed since the previous call, or zero on the
// first call. It never fails: when the source is missing or returns the zero
// time the delta is zero, and a source stepping backwards re-anchors the
// clock instead of producing a negative delta.
func (c *PhaseClock) Delta() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source == nil {
		return 0
	}
	now := c.source.Now()
	if now.IsZero() {
		return 0
	}

	if !c.started {
		c.started = true
		c.last = now
		return 0
	}

	delta := now.Sub(c.last)
	c.last = now
	if delta < 0 {
		return 0
	}
	return delta
}
