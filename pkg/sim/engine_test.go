package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ha1tch/circuitsim/pkg/circuit"
)

func wire(t *testing.T, g *circuit.Graph, from, fromPin, to, toPin string) string {
	t.Helper()
	id, err := g.AddWire(from, fromPin, to, toPin)
	require.NoError(t, err)
	return id
}

func TestEmptyGraphAsksForController(t *testing.T) {
	res := Evaluate(circuit.NewGraph())
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "controller")
	assert.Empty(t, res.Hints)
}

func TestControllerOnlyFallsThrough(t *testing.T) {
	g := circuit.NewGraph()
	g.AddComponent(circuit.TypeArduinoUno, circuit.Point{})

	res := Evaluate(g)
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, MsgNoComponents, res.Message)
}

func TestDecorativeBreadboardDoesNotCount(t *testing.T) {
	g := circuit.NewGraph()
	g.AddComponent(circuit.TypeArduinoUno, circuit.Point{})
	g.AddComponent(circuit.TypeBreadboard, circuit.Point{X: 300})
	assert.Equal(t, MsgNoComponents, Evaluate(g).Message)
}

func ledCircuit(t *testing.T) (g *circuit.Graph, board, led string) {
	g = circuit.NewGraph()
	board = g.AddComponent(circuit.TypeArduinoUno, circuit.Point{})
	led = g.AddComponent(circuit.TypeLED, circuit.Point{X: 300})
	wire(t, g, board, "pin_13", led, "anode")
	wire(t, g, led, "cathode", board, "gnd_1")
	return g, board, led
}

func TestLEDWithoutResistor(t *testing.T) {
	g, _, _ := ledCircuit(t)
	res := Evaluate(g)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "resistor")
}

func TestLEDWithWiredResistorRuns(t *testing.T) {
	g, board, led := ledCircuit(t)
	res := g.AddComponent(circuit.TypeResistor, circuit.Point{X: 400})
	wire(t, g, res, "t1", board, "pin_12")

	out := Evaluate(g)
	require.Equal(t, StatusRunning, out.Status, out.Message)
	assert.Equal(t, MsgLEDRunning, out.Message)
	h, ok := out.Hint(led)
	require.True(t, ok)
	assert.True(t, h.Lit)

	require.Len(t, out.Pins, 1)
	assert.Equal(t, PinReading{ComponentID: board, PinID: "pin_13", Name: "13", Level: LevelHigh, Value: 1}, out.Pins[0])
	assert.NotEmpty(t, out.Serial)
}

func TestUnwiredResistorDoesNotCount(t *testing.T) {
	g, _, _ := ledCircuit(t)
	g.AddComponent(circuit.TypeResistor, circuit.Point{X: 400})
	assert.Contains(t, Evaluate(g).Message, "resistor")
}

func TestLEDIncomplete(t *testing.T) {
	tests := []struct {
		name  string
		build func(g *circuit.Graph, board, led string)
	}{
		{"no wires", func(g *circuit.Graph, board, led string) {}},
		{"anode only", func(g *circuit.Graph, board, led string) {
			wire(t, g, board, "pin_9", led, "anode")
		}},
		{"reversed", func(g *circuit.Graph, board, led string) {
			wire(t, g, board, "gnd_2", led, "anode")
			wire(t, g, led, "cathode", board, "pin_8")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := circuit.NewGraph()
			board := g.AddComponent(circuit.TypeArduinoUno, circuit.Point{})
			led := g.AddComponent(circuit.TypeLED, circuit.Point{X: 300})
			tt.build(g, board, led)
			res := Evaluate(g)
			assert.Equal(t, StatusError, res.Status)
			assert.Equal(t, MsgLEDIncomplete, res.Message)
		})
	}
}

func TestButtonNeedsTwoWires(t *testing.T) {
	g := circuit.NewGraph()
	board := g.AddComponent(circuit.TypeArduinoUno, circuit.Point{})
	btn := g.AddComponent(circuit.TypeButton, circuit.Point{X: 300})
	wire(t, g, board, "pin_2", btn, "pin1")

	res := Evaluate(g)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "2 connections")

	wire(t, g, btn, "pin3", board, "gnd_1")
	res = Evaluate(g)
	assert.Equal(t, StatusRunning, res.Status)
	assert.Equal(t, MsgButtonRunning, res.Message)
	require.Len(t, res.Pins, 1)
	assert.Equal(t, LevelLow, res.Pins[0].Level)

	require.NoError(t, g.SetState(btn, circuit.ButtonState{IsPressed: true}))
	res = Evaluate(g)
	assert.Equal(t, LevelHigh, res.Pins[0].Level)
	assert.Contains(t, res.Serial, "Button PRESSED")
}

func TestServoListsMissingConnections(t *testing.T) {
	g := circuit.NewGraph()
	board := g.AddComponent(circuit.TypeArduinoUno, circuit.Point{})
	servo := g.AddComponent(circuit.TypeServo, circuit.Point{X: 300})
	wire(t, g, board, "pin_9", servo, "signal")

	res := Evaluate(g)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "VCC (5V)")
	assert.Contains(t, res.Message, "GND")
	assert.NotContains(t, res.Message, "Signal")

	wire(t, g, servo, "power", board, "5v")
	wire(t, g, servo, "ground", board, "gnd_1")
	require.NoError(t, g.SetState(servo, circuit.ServoState{Angle: 90}))
	res = Evaluate(g)
	assert.Equal(t, StatusRunning, res.Status)
	assert.Equal(t, 90.0, res.Hints[servo].Angle)
}

func TestUltrasonicCountsWires(t *testing.T) {
	g := circuit.NewGraph()
	board := g.AddComponent(circuit.TypeArduinoUno, circuit.Point{})
	us := g.AddComponent(circuit.TypeUltrasonic, circuit.Point{X: 300})
	wire(t, g, us, "vcc", board, "5v")
	wire(t, g, us, "trig", board, "pin_7")
	wire(t, g, us, "echo", board, "pin_6")
	assert.Equal(t, MsgUltrasonicShort, Evaluate(g).Message)

	wire(t, g, us, "gnd", board, "gnd_1")
	assert.Equal(t, MsgUltrasonicOK, Evaluate(g).Message)
}

func TestBuzzerAndRGBHints(t *testing.T) {
	g := circuit.NewGraph()
	board := g.AddComponent(circuit.TypeArduinoUno, circuit.Point{})
	bz := g.AddComponent(circuit.TypeBuzzer, circuit.Point{X: 300})
	rgb := g.AddComponent(circuit.TypeRGBLED, circuit.Point{X: 400})
	wire(t, g, bz, "pos", board, "pin_8")
	wire(t, g, bz, "neg", board, "gnd_1")
	wire(t, g, rgb, "red", board, "pin_11")
	wire(t, g, rgb, "green", board, "pin_10")
	wire(t, g, rgb, "common", board, "gnd_2")

	res := Evaluate(g)
	require.Equal(t, StatusRunning, res.Status, res.Message)
	assert.Equal(t, MsgBuzzerRunning, res.Message)
	assert.True(t, res.Hints[bz].Active)
	require.NotNil(t, res.Hints[rgb].Color)
	assert.Equal(t, DemoColor, *res.Hints[rgb].Color)
}

func TestFirstFailingRuleWins(t *testing.T) {
	g := circuit.NewGraph()
	board := g.AddComponent(circuit.TypeArduinoUno, circuit.Point{})
	bz := g.AddComponent(circuit.TypeBuzzer, circuit.Point{X: 300})
	g.AddComponent(circuit.TypeLCD, circuit.Point{X: 400})
	wire(t, g, bz, "pos", board, "pin_8")
	wire(t, g, bz, "neg", board, "gnd_1")

	res := Evaluate(g)
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, MsgLCDShort, res.Message)
	assert.Empty(t, res.Hints)
}

func TestPotentiometerReading(t *testing.T) {
	tests := []struct {
		resistance float64
		want       int
	}{
		{0, 0},
		{5000, 512},
		{10000, 1023},
		{2500, 256},
	}
	for _, tt := range tests {
		c := circuit.Component{Type: circuit.TypePotentiometer, State: circuit.PotentiometerState{Resistance: tt.resistance}}
		assert.Equal(t, tt.want, AnalogReading(c), "resistance %v", tt.resistance)
	}

	g := circuit.NewGraph()
	board := g.AddComponent(circuit.TypeArduinoUno, circuit.Point{})
	pot := g.AddComponent(circuit.TypePotentiometer, circuit.Point{X: 300})
	require.NoError(t, g.SetState(pot, circuit.PotentiometerState{Angle: 135, Resistance: 5000}))
	wire(t, g, pot, "vcc", board, "5v")
	wire(t, g, pot, "wiper", board, "a0")
	wire(t, g, pot, "gnd", board, "gnd_1")

	res := Evaluate(g)
	require.Equal(t, StatusRunning, res.Status)
	assert.Contains(t, res.Message, "512")
	assert.Equal(t, 512, res.Hints[pot].Reading)
	assert.Contains(t, res.Serial, "analogRead(A0) = 512")
}

func TestEvaluateIsDeterministic(t *testing.T) {
	g, board, _ := ledCircuit(t)
	r := g.AddComponent(circuit.TypeResistor, circuit.Point{X: 400})
	wire(t, g, r, "t2", board, "pin_4")
	before := g.Clone()

	first := Evaluate(g)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(g))
	}
	assert.Equal(t, before.Components(), g.Components())
	assert.Equal(t, before.Wires(), g.Wires())
}

func TestEngineCustomRules(t *testing.T) {
	e := NewEngine(WithLogger(zap.NewNop()), WithRules(controllerRule{}))
	assert.Equal(t, []string{"controller"}, e.Rules())

	g := circuit.NewGraph()
	g.AddComponent(circuit.TypeArduinoUno, circuit.Point{})
	g.AddComponent(circuit.TypeLED, circuit.Point{})
	assert.Equal(t, MsgNoComponents, e.Evaluate(g).Message)
}

func TestEvaluateNeverPanics(t *testing.T) {
	g := circuit.NewGraph()
	for _, typ := range circuit.Types() {
		g.AddComponent(typ, circuit.Point{})
	}
	assert.NotPanics(t, func() { Evaluate(g) })
}
