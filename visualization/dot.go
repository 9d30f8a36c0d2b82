// Package visualization renders the signal phase cycle as a Graphviz graph
package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/intersection"
)

// DOTGenerator generates Graphviz DOT representations of the phase cycle
type DOTGenerator struct {
	durations intersection.PhaseDurations
	options   DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	RankDirection  string // "TB", "LR", "BT", "RL"
	NodeShape      string
	ShowDurations  bool
	ShowRoadColors bool
	Names          intersection.RoadNames
	// Highlight marks the given phase, typically the current one
	Highlight *intersection.Phase
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		RankDirection:  "LR",
		NodeShape:      "box",
		ShowDurations:  true,
		ShowRoadColors: true,
		Names:          intersection.DefaultRoadNames(),
	}
}

// NewDOTGenerator creates a new DOT generator for a cycle with the given durations
func NewDOTGenerator(durations intersection.PhaseDurations, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		durations: durations,
		options:   opts,
	}
}

// Generate creates a DOT representation of the phase cycle
func (g *DOTGenerator) Generate() (string, error) {
	if err := g.durations.Validate(); err != nil {
		return "", fmt.Errorf("failed to generate phases: %w", err)
	}

	var dot strings.Builder

	dot.WriteString("digraph SignalCycle {\n")
	fmt.Fprintf(&dot, "  rankdir=%s;\n", g.options.RankDirection)
	fmt.Fprintf(&dot, "  node [shape=%s];\n", g.options.NodeShape)
	dot.WriteString("  edge [fontsize=10];\n\n")

	g.generatePhases(&dot)
	g.generateTransitions(&dot)

	dot.WriteString("}\n")

	return dot.String(), nil
}

func (g *DOTGenerator) generatePhases(dot *strings.Builder) {
	dot.WriteString("  // Phases\n")

	for _, phase := range intersection.Phases() {
		label := phase.String()
		fillColor := "lightblue"

		if phase == intersection.AGreen {
			fillColor = "lightgreen"
			label += "\\n(initial)"
		}
		if g.options.ShowDurations {
			label += fmt.Sprintf("\\n%.1fs", g.durations.For(phase).Seconds())
		}
		if g.options.ShowRoadColors {
			for _, road := range []intersection.Road{intersection.RoadA, intersection.RoadB} {
				label += fmt.Sprintf("\\n%s: %s", escape(g.options.Names.Name(road)), phase.Color(road).Title())
			}
		}

		penwidth := 1
		if g.options.Highlight != nil && *g.options.Highlight == phase {
			fillColor = "gold"
			penwidth = 3
		}

		fmt.Fprintf(dot, "  \"%s\" [style=\"filled\" fillcolor=%s penwidth=%d label=\"%s\"];\n",
			phase, fillColor, penwidth, label)
	}
}

func (g *DOTGenerator) generateTransitions(dot *strings.Builder) {
	dot.WriteString("  // Transitions\n")

	for _, phase := range intersection.Phases() {
		limit := g.durations.For(phase)
		fmt.Fprintf(dot, "  \"%s\" -> \"%s\" [label=\"elapsed > %.1fs\"];\n", phase, phase.Next(), limit.Seconds())
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// GenerateSVG renders the graph to SVG by calling Graphviz
func (g *DOTGenerator) GenerateSVG() (string, error) {
	dotContent, err := g.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}
