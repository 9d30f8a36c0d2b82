package intersection

import (
	"fmt"
	"strings"
)

// Phase is one of the four signal configurations governing both roads at once
type Phase uint8

const (
	// Road A green, road B red
	AGreen Phase = iota
	// Road A yellow, road B red
	AYellow
	// Road A red, road B green
	BGreen
	// Road A red, road B yellow
	BYellow
)

// Road identifies one of the two approaches of the intersection
type Road uint8

const (
	RoadA Road = iota
	RoadB
)

// Color is the lit lamp of a signal head
type Color uint8

const (
	Off Color = iota
	Green
	Yellow
	Red
)

// phaseSpec is one row of the transition table
type phaseSpec struct {
	name   string
	next   Phase
	yellow bool // timed by the yellow duration instead of the green one
	roadA  Color
	roadB  Color
}

var phaseTable = [...]phaseSpec{
	AGreen:  {name: "A_GREEN", next: AYellow, roadA: Green, roadB: Red},
	AYellow: {name: "A_YELLOW", next: BGreen, yellow: true, roadA: Yellow, roadB: Red},
	BGreen:  {name: "B_GREEN", next: BYellow, roadA: Red, roadB: Green},
	BYellow: {name: "B_YELLOW", next: AGreen, yellow: true, roadA: Red, roadB: Yellow},
}

// Phases returns every phase in cycle order starting from the initial one
func Phases() []Phase {
	return []Phase{AGreen, AYellow, BGreen, BYellow}
}

// Valid reports whether p is one of the four defined phases
func (p Phase) Valid() bool {
	return int(p) < len(phaseTable)
}

func (p Phase) spec() phaseSpec {
	if !p.Valid() {
		panic(NewInvalidPhaseError(p))
	}
	return phaseTable[p]
}

// Next returns the phase that follows p in the cycle
func (p Phase) Next() Phase {
	return p.spec().next
}

// IsYellow reports whether p is a clearance phase
func (p Phase) IsYellow() bool {
	return p.spec().yellow
}

// Color returns the color shown to the given road while p is active
func (p Phase) Color(road Road) Color {
	s := p.spec()
	switch road {
	case RoadA:
		return s.roadA
	case RoadB:
		return s.roadB
	}
	panic(fmt.Sprintf("intersection: unknown road %d", road))
}

// ActiveRoad returns the road whose light is not red during p
func (p Phase) ActiveRoad() Road {
	if p.spec().roadA == Red {
		return RoadB
	}
	return RoadA
}

func (p Phase) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
	return phaseTable[p].name
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, NewInvalidPhaseError(p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name produced by MarshalText
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase parses a phase name such as "A_GREEN" (case-insensitive)
func ParsePhase(s string) (Phase, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, spec := range phaseTable {
		if spec.name == name {
			return Phase(i), nil
		}
	}
	return 0, NewArgumentError("ParsePhase", "phase", fmt.Sprintf("unknown phase %q", s))
}

func (r Road) String() string {
	switch r {
	case RoadA:
		return "A"
	case RoadB:
		return "B"
	default:
		return fmt.Sprintf("Road(%d)", uint8(r))
	}
}

// MarshalText encodes the road as "A" or "B"
func (r Road) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

var colorNames = [...]string{
	Off:    "off",
	Green:  "green",
	Yellow: "yellow",
	Red:    "red",
}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("Color(%d)", uint8(c))
}

// Title returns the color name as shown on the overlay, e.g. "Green"
func (c Color) Title() string {
	s := c.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// MarshalText encodes the color by its lower-case name
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
