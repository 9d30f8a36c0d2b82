package intersection

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Controller is the phase state machine of a single intersection. It owns
// the current phase and the time accumulated in it; both change only through
// Advance. Advance and Snapshot may be called from different goroutines.
type Controller struct {
	id        string
	durations PhaseDurations
	clock     *PhaseClock

	phase   Phase
	elapsed time.Duration

	observers *ObserverManager
	mutex     sync.RWMutex
}

// NewController creates a controller in A_GREEN with nothing elapsed. A nil
// clock defaults to the system clock.
func NewController(durations PhaseDurations, clock *PhaseClock) (*Controller, error) {
	return newController(durations, clock, "")
}

func newController(durations PhaseDurations, clock *PhaseClock, id string) (*Controller, error) {
	if err := durations.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	if id == "" {
		id = uuid.NewString()
	}
	return &Controller{
		id:        id,
		durations: durations,
		clock:     clock,
		phase:     AGreen,
		observers: NewObserverManager(),
	}, nil
}

// ID returns the identifier used to tell intersections apart in logs,
// metrics and traces
func (c *Controller) ID() string {
	return c.id
}

// Durations returns the static phase timing
func (c *Controller) Durations() PhaseDurations {
	return c.durations
}

// Phase returns the current phase
func (c *Controller) Phase() Phase {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.phase
}

// Elapsed returns the time accumulated in the current phase
func (c *Controller) Elapsed() time.Duration {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.elapsed
}

// AddObserver registers an observer for phase notifications
func (c *Controller) AddObserver(observer Observer) {
	c.observers.AddObserver(observer)
}

// RemoveObserver unregisters an observer
func (c *Controller) RemoveObserver(observer Observer) {
	c.observers.RemoveObserver(observer)
}

// Advance adds delta to the time spent in the current phase. Once that time
// strictly exceeds the phase duration the controller moves to the next phase
// and restarts its count at zero, dropping the excess. At most one
// transition happens per call.
//
// A negative delta is rejected with an *ArgumentError and leaves the state
// unchanged; a zero delta is a valid no-op tick.
func (c *Controller) Advance(delta time.Duration) (*AdvanceResult, error) {
	if delta < 0 {
		err := NewNegativeDeltaError(delta)
		c.observers.NotifyError(err)
		return nil, err
	}

	c.mutex.Lock()
	result := AdvanceResult{
		Delta:         delta,
		PreviousPhase: c.phase,
		CurrentPhase:  c.phase,
	}

	var exit Snapshot
	limit := c.durations.For(c.phase)
	// elapsed <= limit holds between calls, so limit-elapsed cannot overflow
	if left := limit - c.elapsed; delta > left {
		exit = newSnapshot(c.id, c.phase, limit, c.durations)
		result.Discarded = delta - left
		result.Transitioned = true

		c.phase = c.phase.Next()
		c.elapsed = 0
		result.CurrentPhase = c.phase
	} else {
		c.elapsed += delta
	}
	snap := c.snapshotLocked()
	c.mutex.Unlock()

	if result.Transitioned {
		c.observers.NotifyPhaseExit(result.PreviousPhase, exit)
		c.observers.NotifyTransition(result.PreviousPhase, result.CurrentPhase, snap)
		c.observers.NotifyPhaseEnter(result.CurrentPhase, snap)
	}
	c.observers.NotifyAdvance(result, snap)

	return &result, nil
}

// Tick advances the controller by the delta reported by its clock
func (c *Controller) Tick() (*AdvanceResult, error) {
	return c.Advance(c.clock.Delta())
}

// Snapshot returns both roads' colors and the shared countdown. It does not
// modify the controller.
func (c *Controller) Snapshot() Snapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return newSnapshot(c.id, c.phase, c.elapsed, c.durations)
}
