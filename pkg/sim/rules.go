package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/ha1tch/circuitsim/pkg/circuit"
)

// Rule messages.
const (
	MsgNoController     = "Add a controller (Arduino Uno) to start building circuits."
	MsgLEDNoResistor    = "Add a resistor to protect the LED from burning out!"
	MsgLEDRunning       = "Perfect! Your LED circuit is complete and glowing!"
	MsgLEDIncomplete    = "LED circuit incomplete. Connect LED (+) to a power or digital pin and (-) to GND."
	MsgButtonRunning    = "Button circuit ready! Press to read digital input."
	MsgButtonIncomplete = "Button needs at least 2 connections: a digital pin and GND."
	MsgServoRunning     = "Servo connected! Ready to control angle (0-180°)."
	MsgUltrasonicOK     = "HC-SR04 connected! Ready to measure distance."
	MsgUltrasonicShort  = "HC-SR04 needs 4 connections: VCC, TRIG, ECHO, GND."
	MsgBuzzerRunning    = "Buzzer connected! Ready to play tones."
	MsgBuzzerShort      = "Buzzer needs 2 connections: a signal pin and GND."
	MsgRGBRunning       = "RGB LED connected! Mixing colours."
	MsgRGBShort         = "RGB LED needs at least 3 connections: colour pins and common GND."
	MsgLCDRunning       = "LCD connected! Displaying text."
	MsgLCDShort         = "LCD needs at least 6 connections: VCC, GND, RS, E and data pins."
	MsgPotShort         = "Potentiometer needs 3 connections: VCC, wiper (OUT) and GND."
)

// DemoColor is the colour an RGB LED shows when its circuit passes and no
// colour has been set.
var DemoColor = circuit.RGBLEDState{Red: 168, Green: 85, Blue: 247}

// DefaultRules returns the built-in rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		controllerRule{},
		ledRule{},
		countRule{typ: circuit.TypeButton, min: 2, ok: MsgButtonRunning, short: MsgButtonIncomplete, decorate: buttonDecor},
		servoRule{},
		countRule{typ: circuit.TypeUltrasonic, min: 4, ok: MsgUltrasonicOK, short: MsgUltrasonicShort, decorate: ultrasonicDecor},
		countRule{typ: circuit.TypeBuzzer, min: 2, ok: MsgBuzzerRunning, short: MsgBuzzerShort, decorate: buzzerDecor},
		countRule{typ: circuit.TypeRGBLED, min: 3, ok: MsgRGBRunning, short: MsgRGBShort, decorate: rgbDecor},
		countRule{typ: circuit.TypeLCD, min: 6, ok: MsgLCDRunning, short: MsgLCDShort, decorate: lcdDecor},
		countRule{typ: circuit.TypePotentiometer, min: 3, short: MsgPotShort, decorate: potDecor},
	}
}

// controllerRule applies only when the board is missing.
type controllerRule struct{}

func (controllerRule) Name() string { return "controller" }

func (controllerRule) Check(g *circuit.Graph) (Verdict, bool) {
	if _, ok := g.FirstOfType(circuit.TypeController); ok {
		return Verdict{}, false
	}
	return Verdict{Message: MsgNoController}, true
}

// ledRule checks the first LED: anode to a power or digital pin, cathode to
// ground, and some resistor wired anywhere in the graph.
type ledRule struct{}

func (ledRule) Name() string { return "led" }

func (ledRule) Check(g *circuit.Graph) (Verdict, bool) {
	led, ok := g.FirstOfType(circuit.TypeLED)
	if !ok {
		return Verdict{}, false
	}

	var (
		powered, grounded bool
		source            *PinReading
	)
	for _, w := range g.WiresTouching(led.ID) {
		local, farComp, farPin := w.Far(led.ID)
		kind, err := g.PinKind(farComp, farPin)
		if err != nil {
			continue
		}
		switch local {
		case "anode":
			if kind == circuit.PinPower || kind == circuit.PinDigital {
				powered = true
				if source == nil {
					source = controllerPin(g, farComp, farPin, LevelHigh, 1)
				}
			}
		case "cathode":
			if kind == circuit.PinGround {
				grounded = true
			}
		}
	}

	switch {
	case powered && grounded && !hasWiredResistor(g):
		return Verdict{Message: MsgLEDNoResistor}, true
	case powered && grounded:
		v := Verdict{
			OK:      true,
			Message: MsgLEDRunning,
			Hints:   map[string]Hint{led.ID: {Lit: true}},
		}
		if source != nil {
			v.Pins = []PinReading{*source}
			v.Serial = []string{fmt.Sprintf("Pin %s: HIGH (LED on)", source.Name)}
		}
		return v, true
	}
	return Verdict{Message: MsgLEDIncomplete}, true
}

// hasWiredResistor reports whether any resistor in the graph has at least one
// wire attached. Its position relative to the LED is not checked.
func hasWiredResistor(g *circuit.Graph) bool {
	for _, r := range g.OfType(circuit.TypeResistor) {
		if len(g.WiresTouching(r.ID)) > 0 {
			return true
		}
	}
	return false
}

// servoRule requires signal to a digital pin, power to power and ground to
// ground.
type servoRule struct{}

func (servoRule) Name() string { return "servo" }

func (servoRule) Check(g *circuit.Graph) (Verdict, bool) {
	servo, ok := g.FirstOfType(circuit.TypeServo)
	if !ok {
		return Verdict{}, false
	}

	var hasSignal, hasPower, hasGround bool
	var signal *PinReading
	for _, w := range g.WiresTouching(servo.ID) {
		local, farComp, farPin := w.Far(servo.ID)
		kind, err := g.PinKind(farComp, farPin)
		if err != nil {
			continue
		}
		switch {
		case local == "signal" && kind == circuit.PinDigital:
			hasSignal = true
			if signal == nil {
				signal = controllerPin(g, farComp, farPin, LevelAnalog, int(servoAngle(servo)))
			}
		case local == "power" && kind == circuit.PinPower:
			hasPower = true
		case local == "ground" && kind == circuit.PinGround:
			hasGround = true
		}
	}

	var missing []string
	if !hasSignal {
		missing = append(missing, "Signal (PWM)")
	}
	if !hasPower {
		missing = append(missing, "VCC (5V)")
	}
	if !hasGround {
		missing = append(missing, "GND")
	}
	if len(missing) > 0 {
		return Verdict{Message: "Servo is missing connections: " + strings.Join(missing, ", ") + "."}, true
	}

	angle := servoAngle(servo)
	v := Verdict{
		OK:      true,
		Message: MsgServoRunning,
		Hints:   map[string]Hint{servo.ID: {Active: true, Angle: angle}},
		Serial:  []string{fmt.Sprintf("Servo angle: %.0f°", angle)},
	}
	if signal != nil {
		v.Pins = []PinReading{*signal}
	}
	return v, true
}

func servoAngle(c circuit.Component) float64 {
	if s, ok := c.State.(circuit.ServoState); ok {
		return s.Angle
	}
	return 0
}

// countRule passes when at least min wires touch the first component of typ.
type countRule struct {
	typ      circuit.ComponentType
	min      int
	ok       string
	short    string
	decorate func(g *circuit.Graph, c circuit.Component, v *Verdict)
}

func (r countRule) Name() string { return strings.ToLower(string(r.typ)) }

func (r countRule) Check(g *circuit.Graph) (Verdict, bool) {
	c, ok := g.FirstOfType(r.typ)
	if !ok {
		return Verdict{}, false
	}
	if len(g.WiresTouching(c.ID)) < r.min {
		return Verdict{Message: r.short}, true
	}
	v := Verdict{OK: true, Message: r.ok, Hints: map[string]Hint{}}
	if r.decorate != nil {
		r.decorate(g, c, &v)
	}
	return v, true
}

func buttonDecor(g *circuit.Graph, c circuit.Component, v *Verdict) {
	pressed := false
	if s, ok := c.State.(circuit.ButtonState); ok {
		pressed = s.IsPressed
	}
	level, label := LevelLow, "RELEASED"
	if pressed {
		level, label = LevelHigh, "PRESSED"
	}
	v.Hints[c.ID] = Hint{Active: pressed}
	if pr := firstControllerPin(g, c.ID, circuit.PinDigital, level, boolInt(pressed)); pr != nil {
		v.Pins = append(v.Pins, *pr)
	}
	v.Serial = append(v.Serial, "Button "+label)
}

func ultrasonicDecor(g *circuit.Graph, c circuit.Component, v *Verdict) {
	dist := 0.0
	if s, ok := c.State.(circuit.UltrasonicState); ok {
		dist = s.DistanceCM
	}
	v.Hints[c.ID] = Hint{Active: true, Reading: int(math.Round(dist)), HasReading: true}
	v.Serial = append(v.Serial, fmt.Sprintf("Distance: %.0f cm", dist))
}

func buzzerDecor(g *circuit.Graph, c circuit.Component, v *Verdict) {
	v.Hints[c.ID] = Hint{Active: true}
	if pr := firstControllerPin(g, c.ID, circuit.PinDigital, LevelHigh, 1); pr != nil {
		v.Pins = append(v.Pins, *pr)
	}
	v.Serial = append(v.Serial, "Buzzer ON")
}

func rgbDecor(g *circuit.Graph, c circuit.Component, v *Verdict) {
	col := DemoColor
	if s, ok := c.State.(circuit.RGBLEDState); ok && s != (circuit.RGBLEDState{}) {
		col = s
	}
	v.Hints[c.ID] = Hint{Lit: true, Color: &col}
	v.Serial = append(v.Serial, fmt.Sprintf("RGB(%d, %d, %d)", col.Red, col.Green, col.Blue))
}

func lcdDecor(g *circuit.Graph, c circuit.Component, v *Verdict) {
	lines := []string{"Hello, World!", ""}
	if s, ok := c.State.(circuit.LCDState); ok && (s.Line1 != "" || s.Line2 != "") {
		lines = []string{s.Line1, s.Line2}
	}
	v.Hints[c.ID] = Hint{Active: true, Lines: lines}
}

func potDecor(g *circuit.Graph, c circuit.Component, v *Verdict) {
	reading := AnalogReading(c)
	v.Message = fmt.Sprintf("Potentiometer connected! Analog reading: %d", reading)
	v.Hints[c.ID] = Hint{Reading: reading, HasReading: true}
	if pr := firstControllerPin(g, c.ID, circuit.PinAnalog, LevelAnalog, reading); pr != nil {
		v.Pins = append(v.Pins, *pr)
		v.Serial = append(v.Serial, fmt.Sprintf("analogRead(%s) = %d", pr.Name, reading))
		return
	}
	v.Serial = append(v.Serial, fmt.Sprintf("Analog reading: %d", reading))
}

// AnalogReading converts a potentiometer's resistance to a 10-bit ADC value.
func AnalogReading(c circuit.Component) int {
	s, ok := c.State.(circuit.PotentiometerState)
	if !ok {
		return 0
	}
	r := math.Max(0, math.Min(s.Resistance, 10000))
	return int(math.Round(r / 10000 * 1023))
}

// controllerPin returns a reading for pin on the board, or nil if comp is not
// the board.
func controllerPin(g *circuit.Graph, comp, pin string, level Level, value int) *PinReading {
	c, ok := g.Component(comp)
	if !ok || c.Type != circuit.TypeController {
		return nil
	}
	spec, ok := c.Spec().Pin(pin)
	if !ok {
		return nil
	}
	return &PinReading{ComponentID: comp, PinID: pin, Name: spec.Name, Level: level, Value: value}
}

// firstControllerPin finds the first board pin of the given kind wired to
// the component.
func firstControllerPin(g *circuit.Graph, compID string, kind circuit.PinKind, level Level, value int) *PinReading {
	for _, w := range g.WiresTouching(compID) {
		_, farComp, farPin := w.Far(compID)
		k, err := g.PinKind(farComp, farPin)
		if err != nil || k != kind {
			continue
		}
		if pr := controllerPin(g, farComp, farPin, level, value); pr != nil {
			return pr
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
