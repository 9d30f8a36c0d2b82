package intersection

import (
	"sync"
	"testing"
	"time"
)

// TestObserver is a mock observer for testing that captures all observer events
type TestObserver struct {
	mutex       sync.RWMutex
	Transitions []TransitionEvent
	PhaseEnters []PhaseEvent
	PhaseExits  []PhaseEvent
	Advances    []AdvanceEvent
	Errors      []error
}

type TransitionEvent struct {
	From     Phase
	To       Phase
	Snapshot Snapshot
}

type PhaseEvent struct {
	Phase    Phase
	Snapshot Snapshot
}

type AdvanceEvent struct {
	Result   AdvanceResult
	Snapshot Snapshot
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{
		Transitions: make([]TransitionEvent, 0),
		PhaseEnters: make([]PhaseEvent, 0),
		PhaseExits:  make([]PhaseEvent, 0),
		Advances:    make([]AdvanceEvent, 0),
		Errors:      make([]error, 0),
	}
}

func (o *TestObserver) OnTransition(from Phase, to Phase, snap Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = append(o.Transitions, TransitionEvent{From: from, To: to, Snapshot: snap})
}

func (o *TestObserver) OnPhaseEnter(phase Phase, snap Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.PhaseEnters = append(o.PhaseEnters, PhaseEvent{Phase: phase, Snapshot: snap})
}

func (o *TestObserver) OnPhaseExit(phase Phase, snap Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.PhaseExits = append(o.PhaseExits, PhaseEvent{Phase: phase, Snapshot: snap})
}

func (o *TestObserver) OnAdvance(result AdvanceResult, snap Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Advances = append(o.Advances, AdvanceEvent{Result: result, Snapshot: snap})
}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

// TransitionCount returns the number of recorded transitions
func (o *TestObserver) TransitionCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Transitions)
}

// AdvanceCount returns the number of recorded advances
func (o *TestObserver) AdvanceCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Advances)
}

// ErrorCount returns the number of recorded errors
func (o *TestObserver) ErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Errors)
}

// PhaseSequence returns the target phases of all recorded transitions
func (o *TestObserver) PhaseSequence() []Phase {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	seq := make([]Phase, 0, len(o.Transitions))
	for _, tr := range o.Transitions {
		seq = append(seq, tr.To)
	}
	return seq
}

// Reset clears all recorded events
func (o *TestObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = o.Transitions[:0]
	o.PhaseEnters = o.PhaseEnters[:0]
	o.PhaseExits = o.PhaseExits[:0]
	o.Advances = o.Advances[:0]
	o.Errors = o.Errors[:0]
}

// ManualTime is a TimeSource for tests that only moves when told to
type ManualTime struct {
	mutex   sync.Mutex
	current time.Time
}

// NewManualTime creates a manual time source starting at start
func NewManualTime(start time.Time) *ManualTime {
	return &ManualTime{current: start}
}

func (m *ManualTime) Now() time.Time {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.current
}

// Advance moves the time source forward (or backward for negative d)
func (m *ManualTime) Advance(d time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.current = m.current.Add(d)
}

// Set moves the time source to t
func (m *ManualTime) Set(t time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.current = t
}

// CreateDefaultController creates a controller with the default durations
// driven by a manual time source
func CreateDefaultController(t testing.TB) (*Controller, *ManualTime) {
	t.Helper()
	src := NewManualTime(time.Unix(0, 0))
	ctrl, err := NewBuilder().TimeSource(src).Build()
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}
	return ctrl, src
}

// MustAdvance advances the controller and fails the test on error
func MustAdvance(t testing.TB, ctrl *Controller, delta time.Duration) *AdvanceResult {
	t.Helper()
	result, err := ctrl.Advance(delta)
	if err != nil {
		t.Fatalf("Expected no error advancing by %s, got: %v", delta, err)
	}
	return result
}

// AssertPhase checks the controller is in the expected phase
func AssertPhase(t testing.TB, ctrl *Controller, expected Phase) {
	t.Helper()
	if actual := ctrl.Phase(); actual != expected {
		t.Errorf("Expected phase '%s', got '%s'", expected, actual)
	}
}

// AssertRoad checks a road's color and remaining countdown within tolerance
func AssertRoad(t testing.TB, snap Snapshot, road Road, color Color, remaining time.Duration) {
	t.Helper()
	view := snap.Road(road)
	if view.Color != color {
		t.Errorf("Expected road %s to be %s, got %s", road, color, view.Color)
	}
	if diff := view.Remaining - remaining; diff > time.Millisecond || diff < -time.Millisecond {
		t.Errorf("Expected road %s remaining %s, got %s", road, remaining, view.Remaining)
	}
}

// AssertMutualExclusion checks that at most one road shows green, at most
// one shows yellow, and the other road is red
func AssertMutualExclusion(t testing.TB, snap Snapshot) {
	t.Helper()
	a, b := snap.RoadA.Color, snap.RoadB.Color
	if a == Green && b == Green {
		t.Errorf("Both roads green in phase %s", snap.Phase)
	}
	if a == Yellow && b == Yellow {
		t.Errorf("Both roads yellow in phase %s", snap.Phase)
	}
	if a != Red && b != Red {
		t.Errorf("Neither road red in phase %s: A=%s B=%s", snap.Phase, a, b)
	}
	if snap.RoadA.Remaining < 0 || snap.RoadB.Remaining < 0 {
		t.Errorf("Negative countdown in phase %s", snap.Phase)
	}
}
