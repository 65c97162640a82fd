// Package codegen generates Arduino sketches from circuit graphs.
package codegen

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ha1tch/circuitsim/pkg/circuit"
	"github.com/ha1tch/circuitsim/pkg/sim"
)

// ErrNoController is returned for a graph without a board to program.
var ErrNoController = errors.New("circuit has no controller board")

// binding is one component pin wired to a board signal pin.
type binding struct {
	define   string // constant name in the sketch
	pinID    string // component pin
	boardPin string // board pin as the Arduino core names it: "13", "A0"
	analog   bool
}

type part struct {
	comp     circuit.Component
	name     string // sanitized, upper case, unique
	bindings []binding
}

func (p part) pin(id string) (binding, bool) {
	for _, b := range p.bindings {
		if b.pinID == id {
			return b, true
		}
	}
	return binding{}, false
}

// GenerateSketch returns an Arduino sketch that drives every component wired
// to the board's signal pins. Components with no signal wire are listed in a
// comment only.
func GenerateSketch(g *circuit.Graph, name string) (string, error) {
	board, ok := g.FirstOfType(circuit.TypeController)
	if !ok {
		return "", ErrNoController
	}
	if name == "" {
		name = "circuit"
	}
	parts, unwired := collectParts(g, board)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("// Generated sketch: %s\n", name))
	sb.WriteString(fmt.Sprintf("// Board: %s\n\n", board.Spec().Label))

	// Libraries
	if hasType(parts, circuit.TypeServo) {
		sb.WriteString("#include <Servo.h>\n")
	}
	if hasType(parts, circuit.TypeLCD) {
		sb.WriteString("#include <LiquidCrystal.h>\n")
	}
	if hasType(parts, circuit.TypeServo) || hasType(parts, circuit.TypeLCD) {
		sb.WriteString("\n")
	}

	// Pin constants
	if len(parts) > 0 {
		sb.WriteString("// Pins\n")
		for _, p := range parts {
			for _, b := range p.bindings {
				sb.WriteString(fmt.Sprintf("const int %s = %s;\n", b.define, b.boardPin))
			}
		}
		sb.WriteString("\n")
	}
	if len(unwired) > 0 {
		sb.WriteString("// Not wired to a signal pin: " + strings.Join(unwired, ", ") + "\n\n")
	}

	// Globals
	for _, p := range parts {
		switch p.comp.Type {
		case circuit.TypeServo:
			sb.WriteString(fmt.Sprintf("Servo %s;\n", strings.ToLower(p.name)))
		case circuit.TypeLCD:
			if lcdArgs(p) != "" {
				sb.WriteString(fmt.Sprintf("LiquidCrystal %s(%s);\n", strings.ToLower(p.name), lcdArgs(p)))
			}
		}
	}

	sb.WriteString("\nvoid setup() {\n")
	sb.WriteString("    Serial.begin(9600);\n")
	for _, p := range parts {
		writeSetup(&sb, p)
	}
	sb.WriteString("}\n\n")

	sb.WriteString("void loop() {\n")
	for _, p := range parts {
		writeLoop(&sb, p)
	}
	sb.WriteString("    delay(1000);\n")
	sb.WriteString("}\n")
	return sb.String(), nil
}

// collectParts finds the board wiring of every component, in graph order.
func collectParts(g *circuit.Graph, board circuit.Component) ([]part, []string) {
	var parts []part
	var unwired []string
	seen := make(map[string]int)

	for _, c := range g.Components() {
		spec := c.Spec()
		if c.ID == board.ID || spec.Decorative || spec.Supply {
			continue
		}
		base := strings.ToUpper(sanitizeName(string(c.Type)))
		seen[base]++
		p := part{comp: c, name: fmt.Sprintf("%s_%d", base, seen[base])}

		for _, w := range g.WiresTouching(c.ID) {
			local, far, farPin := w.Far(c.ID)
			if far != board.ID {
				continue
			}
			pinName, analog, ok := signalPin(board, farPin)
			if !ok {
				continue
			}
			if _, dup := p.pin(local); dup {
				continue
			}
			p.bindings = append(p.bindings, binding{
				define:   p.name + "_" + strings.ToUpper(sanitizeName(local)),
				pinID:    local,
				boardPin: pinName,
				analog:   analog,
			})
		}
		if len(p.bindings) == 0 {
			unwired = append(unwired, p.name)
			continue
		}
		parts = append(parts, p)
	}
	return parts, unwired
}

// signalPin maps a board pin id to the name the Arduino core uses for it.
func signalPin(board circuit.Component, pinID string) (string, bool, bool) {
	spec, ok := board.Spec().Pin(pinID)
	if !ok {
		return "", false, false
	}
	switch spec.Kind {
	case circuit.PinDigital:
		return spec.Name, false, true
	case circuit.PinAnalog:
		return spec.Name, true, true
	}
	return "", false, false
}

func hasType(parts []part, t circuit.ComponentType) bool {
	for _, p := range parts {
		if p.comp.Type == t {
			return true
		}
	}
	return false
}

// lcdArgs returns the LiquidCrystal constructor arguments, or "" when the
// display is not wired in four-bit mode.
func lcdArgs(p part) string {
	var args []string
	for _, id := range []string{"rs", "en", "d4", "d5", "d6", "d7"} {
		b, ok := p.pin(id)
		if !ok {
			return ""
		}
		args = append(args, b.define)
	}
	return strings.Join(args, ", ")
}

func writeSetup(sb *strings.Builder, p part) {
	v := strings.ToLower(p.name)
	switch p.comp.Type {
	case circuit.TypeServo:
		if b, ok := p.pin("signal"); ok {
			sb.WriteString(fmt.Sprintf("    %s.attach(%s);\n", v, b.define))
		}
		return
	case circuit.TypeLCD:
		if lcdArgs(p) != "" {
			sb.WriteString(fmt.Sprintf("    %s.begin(16, 2);\n", v))
		}
		return
	case circuit.TypeResistor:
		return
	}
	for _, b := range p.bindings {
		if b.analog && p.comp.Type == circuit.TypePotentiometer {
			continue
		}
		mode := "OUTPUT"
		switch {
		case p.comp.Type == circuit.TypeButton:
			mode = "INPUT_PULLUP"
		case p.comp.Type == circuit.TypeUltrasonic && b.pinID == "echo":
			mode = "INPUT"
		}
		sb.WriteString(fmt.Sprintf("    pinMode(%s, %s);\n", b.define, mode))
	}
}

func writeLoop(sb *strings.Builder, p part) {
	v := strings.ToLower(p.name)
	sb.WriteString(fmt.Sprintf("    // %s\n", p.comp.Spec().Label))

	switch p.comp.Type {
	case circuit.TypeLED:
		if b, ok := p.pin("anode"); ok {
			sb.WriteString(fmt.Sprintf("    digitalWrite(%s, HIGH);\n", b.define))
			sb.WriteString("    Serial.println(\"LED ON\");\n")
		}

	case circuit.TypeButton:
		b := p.bindings[0]
		sb.WriteString(fmt.Sprintf("    if (digitalRead(%s) == LOW) {\n", b.define))
		sb.WriteString("        Serial.println(\"Button pressed\");\n")
		sb.WriteString("    }\n")

	case circuit.TypeServo:
		if _, ok := p.pin("signal"); ok {
			angle := 90.0
			if s, ok := p.comp.State.(circuit.ServoState); ok {
				angle = s.Angle
			}
			sb.WriteString(fmt.Sprintf("    %s.write(%d);\n", v, int(angle)))
		}

	case circuit.TypeUltrasonic:
		trig, ok1 := p.pin("trig")
		echo, ok2 := p.pin("echo")
		if ok1 && ok2 {
			sb.WriteString(fmt.Sprintf("    digitalWrite(%s, LOW);\n", trig.define))
			sb.WriteString("    delayMicroseconds(2);\n")
			sb.WriteString(fmt.Sprintf("    digitalWrite(%s, HIGH);\n", trig.define))
			sb.WriteString("    delayMicroseconds(10);\n")
			sb.WriteString(fmt.Sprintf("    digitalWrite(%s, LOW);\n", trig.define))
			sb.WriteString(fmt.Sprintf("    long %s_cm = pulseIn(%s, HIGH) / 58;\n", v, echo.define))
			sb.WriteString(fmt.Sprintf("    Serial.print(\"Distance: \");\n    Serial.print(%s_cm);\n    Serial.println(\" cm\");\n", v))
		}

	case circuit.TypeBuzzer:
		if b, ok := p.pin("pos"); ok {
			sb.WriteString(fmt.Sprintf("    tone(%s, 1000, 200);\n", b.define))
		}

	case circuit.TypeRGBLED:
		color := sim.DemoColor
		if s, ok := p.comp.State.(circuit.RGBLEDState); ok && (s.Red|s.Green|s.Blue) != 0 {
			color = s
		}
		for _, ch := range []struct {
			pin   string
			value uint8
		}{{"red", color.Red}, {"green", color.Green}, {"blue", color.Blue}} {
			if b, ok := p.pin(ch.pin); ok {
				sb.WriteString(fmt.Sprintf("    analogWrite(%s, %d);\n", b.define, ch.value))
			}
		}

	case circuit.TypeLCD:
		if lcdArgs(p) == "" {
			sb.WriteString("    // LCD needs RS, E and D4-D7 wired to the board\n")
			break
		}
		line1, line2 := "Hello, World!", ""
		if s, ok := p.comp.State.(circuit.LCDState); ok && (s.Line1 != "" || s.Line2 != "") {
			line1, line2 = s.Line1, s.Line2
		}
		sb.WriteString(fmt.Sprintf("    %s.setCursor(0, 0);\n    %s.print(%q);\n", v, v, line1))
		if line2 != "" {
			sb.WriteString(fmt.Sprintf("    %s.setCursor(0, 1);\n    %s.print(%q);\n", v, v, line2))
		}

	case circuit.TypePotentiometer:
		if b, ok := p.pin("wiper"); ok {
			sb.WriteString(fmt.Sprintf("    int %s_value = analogRead(%s);\n", v, b.define))
			sb.WriteString(fmt.Sprintf("    Serial.println(%s_value);\n", v))
		}

	case circuit.TypeResistor:
		sb.WriteString("    // passive\n")
	}
}

// sanitizeName converts a string to a valid C identifier.
func sanitizeName(s string) string {
	if s == "" {
		return "unnamed"
	}
	var result strings.Builder
	for i, r := range s {
		if unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) || r == '_' {
			result.WriteRune(r)
		} else if r == ' ' || r == '-' {
			result.WriteRune('_')
		}
	}
	name := result.String()
	if name == "" {
		return "unnamed"
	}
	// Ensure starts with letter
	if unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	return name
}
