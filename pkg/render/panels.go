package render

import (
	"github.com/ha1tch/circuitsim/pkg/circuit"
	"github.com/ha1tch/circuitsim/pkg/sim"
)

// PinRow is one line of the pin monitor.
type PinRow struct {
	PinID string
	Name  string
	Kind  circuit.PinKind
	Level sim.Level
	Value int
}

// Panel is the content of the pin and serial monitors.
type Panel struct {
	Status  sim.Status
	Message string
	Pins    []PinRow
	Serial  []string
}

// Panels lists every wired signal pin of the board, in board order, with the
// level the last evaluation reported for it. Pins without a reading show LOW.
func Panels(g *circuit.Graph, res sim.Result) Panel {
	p := Panel{Status: res.Status, Message: res.Message}
	if res.Running() {
		p.Serial = append(p.Serial, res.Serial...)
	}
	board, ok := g.FirstOfType(circuit.TypeController)
	if !ok {
		return p
	}

	readings := make(map[string]sim.PinReading)
	for _, r := range res.Pins {
		if r.ComponentID == board.ID {
			readings[r.PinID] = r
		}
	}
	wired := make(map[string]bool)
	for _, w := range g.WiresTouching(board.ID) {
		if w.FromComponentID == board.ID {
			wired[w.FromPinID] = true
		}
		if w.ToComponentID == board.ID {
			wired[w.ToPinID] = true
		}
	}

	for _, spec := range board.Spec().Pins {
		if spec.Kind != circuit.PinDigital && spec.Kind != circuit.PinAnalog {
			continue
		}
		if !wired[spec.ID] {
			continue
		}
		row := PinRow{PinID: spec.ID, Name: spec.Name, Kind: spec.Kind, Level: sim.LevelLow}
		if r, ok := readings[spec.ID]; ok {
			row.Level = r.Level
			row.Value = r.Value
		}
		p.Pins = append(p.Pins, row)
	}
	return p
}
