package intersection

import "time"

// Builder provides a fluent interface for configuring a Controller
type Builder struct {
	durations PhaseDurations
	clock     *PhaseClock
	id        string
	observers []Observer
}

// NewBuilder creates a builder preloaded with the default durations
func NewBuilder() *Builder {
	return &Builder{durations: DefaultDurations()}
}

// Green sets the green phase duration for both roads
func (b *Builder) Green(d time.Duration) *Builder {
	b.durations.Green = d
	return b
}

// Yellow sets the yellow phase duration for both roads
func (b *Builder) Yellow(d time.Duration) *Builder {
	b.durations.Yellow = d
	return b
}

// Durations replaces both durations at once
func (b *Builder) Durations(d PhaseDurations) *Builder {
	b.durations = d
	return b
}

// Clock sets the clock Tick reads deltas from
func (b *Builder) Clock(clock *PhaseClock) *Builder {
	b.clock = clock
	return b
}

// TimeSource wraps src in a PhaseClock
func (b *Builder) TimeSource(src TimeSource) *Builder {
	b.clock = NewPhaseClock(src)
	return b
}

// ID overrides the generated controller identifier
func (b *Builder) ID(id string) *Builder {
	b.id = id
	return b
}

// Observer registers an observer on the built controller
func (b *Builder) Observer(observer Observer) *Builder {
	b.observers = append(b.observers, observer)
	return b
}

// Build validates the configuration and creates the controller
func (b *Builder) Build() (*Controller, error) {
	c, err := newController(b.durations, b.clock, b.id)
	if err != nil {
		return nil, err
	}
	for _, observer := range b.observers {
		c.AddObserver(observer)
	}
	return c, nil
}
