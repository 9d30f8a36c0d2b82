package intersection

import (
	"fmt"
	"time"
)

// RoadNames are the display names used when rendering labels
type RoadNames struct {
	A string `json:"a" yaml:"a"`
	B string `json:"b" yaml:"b"`
}

// DefaultRoadNames returns the names of the two approaches in the reference scene
func DefaultRoadNames() RoadNames {
	return RoadNames{A: "Academic Ave", B: "Bravado Blvd"}
}

// Name returns the display name of road, falling back to "Road A"/"Road B"
func (n RoadNames) Name(road Road) string {
	name := n.A
	if road == RoadB {
		name = n.B
	}
	if name == "" {
		return "Road " + road.String()
	}
	return name
}

// RoadSignalView is the derived signal of a single road
type RoadSignalView struct {
	Road      Road          `json:"road"`
	Color     Color         `json:"color"`
	Remaining time.Duration `json:"remaining"`
}

// Lamp reports whether the lamp of the given color is lit
func (v RoadSignalView) Lamp(c Color) bool {
	return c != Off && v.Color == c
}

// Lamps returns the signal head top to bottom (green, yellow, red); unlit
// lamps are reported as Off.
func (v RoadSignalView) Lamps() [3]Color {
	var head [3]Color
	for i, c := range [3]Color{Green, Yellow, Red} {
		if v.Lamp(c) {
			head[i] = c
		}
	}
	return head
}

// Label renders "<name>: <Color> (<remaining>s)" with one decimal
func (v RoadSignalView) Label(name string) string {
	return fmt.Sprintf("%s: %s (%.1fs)", name, v.Color.Title(), v.Remaining.Seconds())
}

// Snapshot is an immutable view of both roads computed from the controller
// state at one instant.
type Snapshot struct {
	ControllerID string         `json:"controller_id,omitempty"`
	Phase        Phase          `json:"phase"`
	Elapsed      time.Duration  `json:"elapsed"`
	Duration     time.Duration  `json:"duration"`
	RoadA        RoadSignalView `json:"road_a"`
	RoadB        RoadSignalView `json:"road_b"`
}

func newSnapshot(id string, p Phase, elapsed time.Duration, d PhaseDurations) Snapshot {
	duration := d.For(p)
	remaining := duration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		ControllerID: id,
		Phase:        p,
		Elapsed:      elapsed,
		Duration:     duration,
		RoadA:        RoadSignalView{Road: RoadA, Color: p.Color(RoadA), Remaining: remaining},
		RoadB:        RoadSignalView{Road: RoadB, Color: p.Color(RoadB), Remaining: remaining},
	}
}

// Road returns the view of the given road
func (s Snapshot) Road(road Road) RoadSignalView {
	if road == RoadB {
		return s.RoadB
	}
	return s.RoadA
}

// Active returns the view of the road that is currently green or yellow
func (s Snapshot) Active() RoadSignalView {
	return s.Road(s.Phase.ActiveRoad())
}

// Remaining returns the countdown shared by both roads
func (s Snapshot) Remaining() time.Duration {
	return s.Active().Remaining
}

// Label renders the overlay text for the active road
func (s Snapshot) Label(names RoadNames) string {
	active := s.Active()
	return active.Label(names.Name(active.Road))
}

// AdvanceResult describes what a single Advance call did
type AdvanceResult struct {
	Delta         time.Duration
	Transitioned  bool
	PreviousPhase Phase
	CurrentPhase  Phase
	// Discarded is the time past the phase boundary dropped on transition
	Discarded time.Duration
}

func (r *AdvanceResult) String() string {
	if r.Transitioned {
		return fmt.Sprintf("%s -> %s after %s (discarded %s)", r.PreviousPhase, r.CurrentPhase, r.Delta, r.Discarded)
	}
	return fmt.Sprintf("%s +%s", r.CurrentPhase, r.Delta)
}
