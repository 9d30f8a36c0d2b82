package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/intersection"
)

// ValidationObserver checks signal safety on every notification: cycle
// order, mutual exclusion between roads, and countdown bounds.
type ValidationObserver struct {
	visitedPhases map[intersection.Phase]bool
	violations    []string
	mutex         sync.RWMutex
}

// NewValidationObserver creates a new validation observer
func NewValidationObserver() *ValidationObserver {
	return &ValidationObserver{
		visitedPhases: make(map[intersection.Phase]bool),
		violations:    make([]string, 0),
	}
}

func (o *ValidationObserver) addViolation(format string, args ...any) {
	o.violations = append(o.violations, fmt.Sprintf(format, args...))
}

// checkSnapshot must be called with the mutex held
func (o *ValidationObserver) checkSnapshot(snap intersection.Snapshot) {
	a, b := snap.RoadA, snap.RoadB
	if a.Color == intersection.Green && b.Color == intersection.Green {
		o.addViolation("both roads green in phase '%s'", snap.Phase)
	}
	if a.Color == intersection.Yellow && b.Color == intersection.Yellow {
		o.addViolation("both roads yellow in phase '%s'", snap.Phase)
	}
	if a.Color != intersection.Red && b.Color != intersection.Red {
		o.addViolation("no road red in phase '%s'", snap.Phase)
	}
	if a.Color != snap.Phase.Color(intersection.RoadA) || b.Color != snap.Phase.Color(intersection.RoadB) {
		o.addViolation("road colors %s/%s do not match phase '%s'", a.Color, b.Color, snap.Phase)
	}
	if a.Remaining < 0 || b.Remaining < 0 {
		o.addViolation("negative countdown in phase '%s'", snap.Phase)
	}
	if a.Remaining != b.Remaining {
		o.addViolation("roads disagree on countdown in phase '%s': %s vs %s", snap.Phase, a.Remaining, b.Remaining)
	}
	if snap.Elapsed < 0 || snap.Elapsed > snap.Duration {
		o.addViolation("elapsed %s outside [0, %s] in phase '%s'", snap.Elapsed, snap.Duration, snap.Phase)
	}
}

// OnPhaseEnter records the visit and validates the entered state
func (o *ValidationObserver) OnPhaseEnter(phase intersection.Phase, snap intersection.Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedPhases[phase] = true
	if snap.Elapsed != 0 {
		o.addViolation("phase '%s' entered with elapsed %s", phase, snap.Elapsed)
	}
	o.checkSnapshot(snap)
}

// OnPhaseExit validates the state at the boundary
func (o *ValidationObserver) OnPhaseExit(phase intersection.Phase, snap intersection.Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.checkSnapshot(snap)
}

// OnTransition validates cycle order
func (o *ValidationObserver) OnTransition(from, to intersection.Phase, snap intersection.Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedPhases[from] = true
	if to != from.Next() {
		o.addViolation("invalid transition from '%s' to '%s'", from, to)
	}
}

// OnAdvance validates the post-advance state
func (o *ValidationObserver) OnAdvance(result intersection.AdvanceResult, snap intersection.Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedPhases[snap.Phase] = true
	if result.CurrentPhase != snap.Phase {
		o.addViolation("advance reported phase '%s' but snapshot is in '%s'", result.CurrentPhase, snap.Phase)
	}
	if result.Discarded < 0 || result.Discarded > result.Delta {
		o.addViolation("discarded %s outside [0, %s]", result.Discarded, result.Delta)
	}
	o.checkSnapshot(snap)
}

// OnError records observer panics; rejected deltas are expected input
// errors and are not violations.
func (o *ValidationObserver) OnError(err error) {
	if intersection.IsArgumentError(err) {
		return
	}
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.addViolation("error occurred: %v", err)
}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// GetUnvisitedPhases returns the phases of the cycle not yet observed
func (o *ValidationObserver) GetUnvisitedPhases() []intersection.Phase {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	var unvisited []intersection.Phase
	for _, p := range intersection.Phases() {
		if !o.visitedPhases[p] {
			unvisited = append(unvisited, p)
		}
	}
	return unvisited
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset resets the validation state
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedPhases = make(map[intersection.Phase]bool)
	o.violations = make([]string, 0)
}
