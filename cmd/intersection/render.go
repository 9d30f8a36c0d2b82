package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/anggasct/intersection"
)

// lampHead draws a signal head top to bottom, e.g. "[G . .]" or "[. . R]"
func lampHead(view intersection.RoadSignalView) string {
	lamps := view.Lamps()
	cells := make([]string, len(lamps))
	for i, c := range lamps {
		if c == intersection.Off {
			cells[i] = "."
			continue
		}
		cells[i] = strings.ToUpper(c.String()[:1])
	}
	return "[" + strings.Join(cells, " ") + "]"
}

// frameLine is the text form of one frame: the overlay label followed by both
// signal heads.
func frameLine(snap intersection.Snapshot, names intersection.RoadNames) string {
	return fmt.Sprintf("%-32s A%s B%s", snap.Label(names), lampHead(snap.RoadA), lampHead(snap.RoadB))
}

// textRenderer writes a line whenever the visible frame changes.
func textRenderer(w io.Writer, names intersection.RoadNames) func(intersection.Snapshot) error {
	var last string
	return func(snap intersection.Snapshot) error {
		line := frameLine(snap, names)
		if line == last {
			return nil
		}
		last = line
		_, err := fmt.Fprintln(w, line)
		return err
	}
}

type jsonFrame struct {
	intersection.Snapshot
	Label string `json:"label"`
}

// jsonRenderer writes every frame as one JSON object per line.
func jsonRenderer(w io.Writer, names intersection.RoadNames) func(intersection.Snapshot) error {
	enc := json.NewEncoder(w)
	return func(snap intersection.Snapshot) error {
		return enc.Encode(jsonFrame{Snapshot: snap, Label: snap.Label(names)})
	}
}
