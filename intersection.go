// Package intersection implements a timed two-road traffic signal controller.
//
// A Controller cycles the roads through A_GREEN, A_YELLOW, B_GREEN and
// B_YELLOW. It is driven by elapsed time rather than fixed ticks: the host
// loop feeds it deltas (usually from a PhaseClock) and reads an immutable
// Snapshot to render each road's lamps and countdown.
//
//	ctrl, err := intersection.NewBuilder().
//		Green(2500 * time.Millisecond).
//		Yellow(1500 * time.Millisecond).
//		Build()
//	...
//	for range frames {
//		if _, err := ctrl.Tick(); err != nil { ... }
//		render(ctrl.Snapshot())
//	}
//
// A phase is left on the first advance whose accumulated time strictly
// exceeds its duration. Any excess is discarded and at most one transition
// happens per advance, so deltas longer than the shortest duration skip
// time rather than phases.
package intersection

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultGreen is the green duration used when none is configured
	DefaultGreen = 2500 * time.Millisecond
	// DefaultYellow is the yellow duration used when none is configured
	DefaultYellow = 1500 * time.Millisecond
)

// PhaseDurations holds the static timing shared by both roads
type PhaseDurations struct {
	Green  time.Duration `json:"green" yaml:"green"`
	Yellow time.Duration `json:"yellow" yaml:"yellow"`
}

// DefaultDurations returns the 2.5s green / 1.5s yellow timing
func DefaultDurations() PhaseDurations {
	return PhaseDurations{Green: DefaultGreen, Yellow: DefaultYellow}
}

// NewPhaseDurations creates validated durations
func NewPhaseDurations(green, yellow time.Duration) (PhaseDurations, error) {
	d := PhaseDurations{Green: green, Yellow: yellow}
	if err := d.Validate(); err != nil {
		return PhaseDurations{}, err
	}
	return d, nil
}

// Validate rejects non-positive durations, which would leave a phase that
// can never time out.
func (d PhaseDurations) Validate() error {
	if d.Green <= 0 {
		return NewConfigurationError("PhaseDurations", fmt.Sprintf("green duration must be positive, got %s", d.Green))
	}
	if d.Yellow <= 0 {
		return NewConfigurationError("PhaseDurations", fmt.Sprintf("yellow duration must be positive, got %s", d.Yellow))
	}
	return nil
}

// For returns the configured duration of the given phase
func (d PhaseDurations) For(p Phase) time.Duration {
	if p.IsYellow() {
		return d.Yellow
	}
	return d.Green
}

// Cycle returns the length of one full A_GREEN..B_YELLOW cycle
func (d PhaseDurations) Cycle() time.Duration {
	return 2 * (d.Green + d.Yellow)
}

// Seconds converts fractional seconds to a time.Duration
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
