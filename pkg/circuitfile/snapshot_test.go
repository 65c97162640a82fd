package circuitfile

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/circuitsim/pkg/circuit"
)

var stamp = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleGraph(t *testing.T) *circuit.Graph {
	t.Helper()
	g := circuit.NewGraph()
	board := g.AddComponent(circuit.TypeArduinoUno, circuit.Point{X: 100, Y: 100})
	led := g.AddComponent(circuit.TypeLED, circuit.Point{X: 400, Y: 120})
	pot := g.AddComponent(circuit.TypePotentiometer, circuit.Point{X: 500, Y: 300})
	g.RotateComponent(led)
	require.NoError(t, g.SetState(pot, circuit.PotentiometerState{Angle: 135, Resistance: 5000}))

	_, err := g.AddWire(board, "pin_13", led, "anode")
	require.NoError(t, err)
	_, err = g.AddWire(led, "cathode", board, "gnd_1")
	require.NoError(t, err)
	_, err = g.AddWire(pot, "wiper", board, "a0")
	require.NoError(t, err)
	return g
}

// projection drops unexported bookkeeping so graphs from different origins
// can be compared.
type projection struct {
	Components []circuit.Component
	Wires      []circuit.Wire
}

func project(g *circuit.Graph) projection {
	var p projection
	for _, c := range g.Components() {
		p.Components = append(p.Components, circuit.Component{
			ID: c.ID, Type: c.Type, X: c.X, Y: c.Y, Rotation: c.Rotation, State: c.State,
		})
	}
	for _, w := range g.Wires() {
		p.Wires = append(p.Wires, circuit.Wire{
			ID: w.ID, FromComponentID: w.FromComponentID, FromPinID: w.FromPinID,
			ToComponentID: w.ToComponentID, ToPinID: w.ToPinID,
		})
	}
	return p
}

func TestJSONRoundTrip(t *testing.T) {
	g := sampleGraph(t)
	data, err := ToJSON(Export(g, "blink", stamp), true)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fromComponentId"`)
	assert.Contains(t, string(data), `"createdAt": "2024-03-01T12:00:00Z"`)

	back, snap, err := ParseJSON(data)
	require.NoError(t, err)
	assert.Equal(t, project(g), project(back))
	assert.Equal(t, FormatVersion, snap.Version)
	assert.Equal(t, "blink", snap.Name)
	assert.True(t, snap.CreatedAt.Equal(stamp))
}

func TestYAMLRoundTrip(t *testing.T) {
	g := sampleGraph(t)
	data, err := ToYAML(Export(g, "", stamp))
	require.NoError(t, err)
	assert.Contains(t, string(data), "fromComponentId:")

	back, _, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, project(g), project(back))
}

func TestParseAcceptsSourceShape(t *testing.T) {
	in := `{
  "components": [
    {"id": "ARDUINO_UNO_1", "type": "ARDUINO_UNO", "x": 100, "y": 100, "rotation": 0},
    {"id": "BUTTON_2", "type": "BUTTON", "x": 350, "y": 80, "rotation": 90, "state": {"isPressed": true}}
  ],
  "wires": [
    {"id": "wire_1", "fromComponentId": "ARDUINO_UNO_1", "fromPinId": "pin_2", "toComponentId": "BUTTON_2", "toPinId": "pin1"}
  ],
  "version": "1.0",
  "createdAt": "2024-01-15T10:30:00.000Z"
}`
	g, snap, err := ParseJSON([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 1, g.WireCount())
	assert.Equal(t, "", snap.Name)

	btn, ok := g.Component("BUTTON_2")
	require.True(t, ok)
	assert.Equal(t, circuit.ButtonState{IsPressed: true}, btn.State)
	assert.Equal(t, 90, btn.Rotation)
}

func TestParseRejects(t *testing.T) {
	const board = `{"id":"b","type":"ARDUINO_UNO","x":0,"y":0,"rotation":0}`
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"components": [`},
		{"not an object", `[]`},
		{"missing components", `{"wires": []}`},
		{"missing wires", `{"components": []}`},
		{"components not array", `{"components": {}, "wires": []}`},
		{"unknown type", `{"components":[{"id":"x","type":"TOASTER","rotation":0}],"wires":[]}`},
		{"missing id", `{"components":[{"type":"LED","rotation":0}],"wires":[]}`},
		{"bad rotation", `{"components":[{"id":"x","type":"LED","rotation":45}],"wires":[]}`},
		{"duplicate id", `{"components":[` + board + `,` + board + `],"wires":[]}`},
		{"state out of range", `{"components":[{"id":"p","type":"POTENTIOMETER","rotation":0,"state":{"angle":900}}],"wires":[]}`},
		{"dangling wire", `{"components":[` + board + `],"wires":[{"id":"w","fromComponentId":"ghost","fromPinId":"anode","toComponentId":"b","toPinId":"gnd_1"}]}`},
		{"unknown pin", `{"components":[` + board + `],"wires":[{"id":"w","fromComponentId":"b","fromPinId":"pin_99","toComponentId":"b","toPinId":"gnd_1"}]}`},
		{"wire missing field", `{"components":[` + board + `],"wires":[{"id":"w","fromComponentId":"b","toComponentId":"b","toPinId":"gnd_1"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, s, err := ParseJSON([]byte(tt.in))
			require.Error(t, err)
			var perr *ParseError
			assert.True(t, errors.As(err, &perr), "want *ParseError, got %T", err)
			assert.Nil(t, g)
			assert.Nil(t, s)
		})
	}
}

func TestFailedImportLeavesGraphUntouched(t *testing.T) {
	live := sampleGraph(t)
	before := project(live)

	bad := `{"components":[{"id":"LED_1","type":"LED","x":0,"y":0,"rotation":0}],
	         "wires":[{"id":"w","fromComponentId":"MISSING","fromPinId":"anode","toComponentId":"LED_1","toPinId":"cathode"}]}`
	imported, _, err := ParseJSON([]byte(bad))
	require.Error(t, err)
	if imported != nil {
		live.Restore(imported)
	}
	assert.Equal(t, before, project(live))
}

func TestParseErrorMessage(t *testing.T) {
	_, _, err := ParseJSON([]byte(`{"components":[{"id":"x","type":"LED","rotation":45}],"wires":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rotation")
	assert.Contains(t, err.Error(), "one of")
}

func TestReadWriteFileByExtension(t *testing.T) {
	g := sampleGraph(t)
	dir := t.TempDir()

	for _, name := range []string{"c.json", "c.yaml", "c.YML"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, g, "demo"))
			back, snap, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, project(g), project(back))
			assert.Equal(t, "demo", snap.Name)
		})
	}

	err := WriteFile(filepath.Join(dir, "c.txt"), g, "")
	assert.Error(t, err)
	_, _, err = ReadFile(filepath.Join(dir, "absent.json"))
	assert.Error(t, err)
}

func TestNameFromPath(t *testing.T) {
	assert.Equal(t, "blink", NameFromPath("/tmp/x/blink.json"))
	assert.Equal(t, "a.b", NameFromPath("a.b.yaml"))
}

func TestExportIsPure(t *testing.T) {
	g := sampleGraph(t)
	before := project(g)
	s := Export(g, "", stamp)
	assert.Len(t, s.Components, 3)
	assert.Len(t, s.Wires, 3)
	assert.Equal(t, before, project(g))

	// Stateless components carry no state object.
	data, err := ToJSON(s, false)
	require.NoError(t, err)
	board := strings.SplitN(string(data), "},{", 2)[0]
	assert.NotContains(t, board, `"state"`)
}
