// Package circuit provides the component catalog and the circuit graph store.
package circuit

import (
	"fmt"
	"strings"
)

// ComponentType identifies a kind of placeable component.
type ComponentType string

const (
	TypeArduinoUno    ComponentType = "ARDUINO_UNO"
	TypeLED           ComponentType = "LED"
	TypeResistor      ComponentType = "RESISTOR"
	TypeBattery       ComponentType = "BATTERY"
	TypeButton        ComponentType = "BUTTON"
	TypeUltrasonic    ComponentType = "ULTRASONIC"
	TypeServo         ComponentType = "SERVO"
	TypePotentiometer ComponentType = "POTENTIOMETER"
	TypeLCD           ComponentType = "LCD"
	TypeBreadboard    ComponentType = "BREADBOARD"
	TypeBuzzer        ComponentType = "BUZZER"
	TypeRGBLED        ComponentType = "RGB_LED"
)

// TypeController is the board every circuit must contain.
const TypeController = TypeArduinoUno

// PinKind is the electrical role of a pin.
type PinKind string

const (
	PinPower   PinKind = "power"
	PinGround  PinKind = "ground"
	PinDigital PinKind = "digital"
	PinAnalog  PinKind = "analog"
)

// PinSpec describes one connector of a component type.
// Offsets are relative to the component's top-left corner at rotation 0.
type PinSpec struct {
	ID      string
	Name    string
	OffsetX float64
	OffsetY float64
	Kind    PinKind
}

// ComponentTypeSpec is the immutable catalog entry for a component type.
type ComponentTypeSpec struct {
	Type       ComponentType
	Width      float64
	Height     float64
	Label      string
	Decorative bool // no pins, never part of a circuit
	Supply     bool // its power and ground pins are supply rails
	Pins       []PinSpec
}

// Pin returns the pin with the given id.
func (s ComponentTypeSpec) Pin(id string) (PinSpec, bool) {
	for _, p := range s.Pins {
		if p.ID == id {
			return p, true
		}
	}
	return PinSpec{}, false
}

// Footprint returns width and height after rotation.
func (s ComponentTypeSpec) Footprint(rotation int) (float64, float64) {
	if rotation == 90 || rotation == 270 {
		return s.Height, s.Width
	}
	return s.Width, s.Height
}

// types lists every component type in palette order.
var types = []ComponentType{
	TypeArduinoUno,
	TypeLED,
	TypeResistor,
	TypeBattery,
	TypeButton,
	TypeUltrasonic,
	TypeServo,
	TypePotentiometer,
	TypeLCD,
	TypeBreadboard,
	TypeBuzzer,
	TypeRGBLED,
}

var catalog = map[ComponentType]ComponentTypeSpec{
	TypeArduinoUno: {
		Type:   TypeArduinoUno,
		Width:  200,
		Height: 140,
		Label:  "Arduino Uno",
		Supply: true,
		Pins:   arduinoPins(),
	},
	TypeLED: {
		Type:   TypeLED,
		Width:  40,
		Height: 60,
		Label:  "LED",
		Pins: []PinSpec{
			{ID: "anode", Name: "+", OffsetX: 10, OffsetY: 55, Kind: PinDigital},
			{ID: "cathode", Name: "-", OffsetX: 30, OffsetY: 55, Kind: PinGround},
		},
	},
	TypeResistor: {
		Type:   TypeResistor,
		Width:  80,
		Height: 30,
		Label:  "220Ω",
		Pins: []PinSpec{
			{ID: "t1", Name: "", OffsetX: 5, OffsetY: 15, Kind: PinDigital},
			{ID: "t2", Name: "", OffsetX: 75, OffsetY: 15, Kind: PinDigital},
		},
	},
	TypeBattery: {
		Type:   TypeBattery,
		Width:  60,
		Height: 80,
		Label:  "9V Battery",
		Supply: true,
		Pins: []PinSpec{
			{ID: "pos", Name: "+", OffsetX: 15, OffsetY: 5, Kind: PinPower},
			{ID: "neg", Name: "-", OffsetX: 45, OffsetY: 5, Kind: PinGround},
		},
	},
	TypeButton: {
		Type:   TypeButton,
		Width:  50,
		Height: 50,
		Label:  "Button",
		Pins: []PinSpec{
			{ID: "pin1", Name: "1", OffsetX: 10, OffsetY: 10, Kind: PinDigital},
			{ID: "pin2", Name: "2", OffsetX: 40, OffsetY: 10, Kind: PinDigital},
			{ID: "pin3", Name: "3", OffsetX: 10, OffsetY: 40, Kind: PinDigital},
			{ID: "pin4", Name: "4", OffsetX: 40, OffsetY: 40, Kind: PinDigital},
		},
	},
	TypeUltrasonic: {
		Type:   TypeUltrasonic,
		Width:  80,
		Height: 70,
		Label:  "HC-SR04",
		Pins: []PinSpec{
			{ID: "vcc", Name: "VCC", OffsetX: 15, OffsetY: 60, Kind: PinPower},
			{ID: "trig", Name: "TRIG", OffsetX: 32, OffsetY: 60, Kind: PinDigital},
			{ID: "echo", Name: "ECHO", OffsetX: 48, OffsetY: 60, Kind: PinDigital},
			{ID: "gnd", Name: "GND", OffsetX: 65, OffsetY: 60, Kind: PinGround},
		},
	},
	TypeServo: {
		Type:   TypeServo,
		Width:  90,
		Height: 50,
		Label:  "Servo Motor",
		Pins: []PinSpec{
			{ID: "signal", Name: "SIG", OffsetX: 25, OffsetY: 45, Kind: PinDigital},
			{ID: "power", Name: "VCC", OffsetX: 45, OffsetY: 45, Kind: PinPower},
			{ID: "ground", Name: "GND", OffsetX: 65, OffsetY: 45, Kind: PinGround},
		},
	},
	TypePotentiometer: {
		Type:   TypePotentiometer,
		Width:  60,
		Height: 60,
		Label:  "10kΩ Pot",
		Pins: []PinSpec{
			{ID: "vcc", Name: "VCC", OffsetX: 10, OffsetY: 55, Kind: PinPower},
			{ID: "wiper", Name: "OUT", OffsetX: 30, OffsetY: 55, Kind: PinAnalog},
			{ID: "gnd", Name: "GND", OffsetX: 50, OffsetY: 55, Kind: PinGround},
		},
	},
	TypeLCD: {
		Type:   TypeLCD,
		Width:  160,
		Height: 80,
		Label:  "LCD 16x2",
		Pins: []PinSpec{
			{ID: "gnd", Name: "GND", OffsetX: 15, OffsetY: 75, Kind: PinGround},
			{ID: "vcc", Name: "VCC", OffsetX: 33, OffsetY: 75, Kind: PinPower},
			{ID: "rs", Name: "RS", OffsetX: 51, OffsetY: 75, Kind: PinDigital},
			{ID: "en", Name: "E", OffsetX: 69, OffsetY: 75, Kind: PinDigital},
			{ID: "d4", Name: "D4", OffsetX: 87, OffsetY: 75, Kind: PinDigital},
			{ID: "d5", Name: "D5", OffsetX: 105, OffsetY: 75, Kind: PinDigital},
			{ID: "d6", Name: "D6", OffsetX: 123, OffsetY: 75, Kind: PinDigital},
			{ID: "d7", Name: "D7", OffsetX: 141, OffsetY: 75, Kind: PinDigital},
		},
	},
	TypeBreadboard: {
		Type:       TypeBreadboard,
		Width:      300,
		Height:     100,
		Label:      "Breadboard",
		Decorative: true,
	},
	TypeBuzzer: {
		Type:   TypeBuzzer,
		Width:  40,
		Height: 40,
		Label:  "Buzzer",
		Pins: []PinSpec{
			{ID: "pos", Name: "+", OffsetX: 12, OffsetY: 35, Kind: PinDigital},
			{ID: "neg", Name: "-", OffsetX: 28, OffsetY: 35, Kind: PinGround},
		},
	},
	TypeRGBLED: {
		Type:   TypeRGBLED,
		Width:  50,
		Height: 60,
		Label:  "RGB LED",
		Pins: []PinSpec{
			{ID: "red", Name: "R", OffsetX: 8, OffsetY: 55, Kind: PinDigital},
			{ID: "common", Name: "-", OffsetX: 19, OffsetY: 55, Kind: PinGround},
			{ID: "green", Name: "G", OffsetX: 30, OffsetY: 55, Kind: PinDigital},
			{ID: "blue", Name: "B", OffsetX: 41, OffsetY: 55, Kind: PinDigital},
		},
	},
}

// arduinoPins lays out the power header along the bottom edge and the
// digital header along the top edge.
func arduinoPins() []PinSpec {
	pins := []PinSpec{
		{ID: "gnd_1", Name: "GND", OffsetX: 40, OffsetY: 130, Kind: PinGround},
		{ID: "5v", Name: "5V", OffsetX: 60, OffsetY: 130, Kind: PinPower},
		{ID: "3v3", Name: "3.3V", OffsetX: 80, OffsetY: 130, Kind: PinPower},
		{ID: "gnd_2", Name: "GND", OffsetX: 100, OffsetY: 130, Kind: PinGround},
	}
	for i := 0; i < 4; i++ {
		pins = append(pins, PinSpec{
			ID:      fmt.Sprintf("a%d", i),
			Name:    fmt.Sprintf("A%d", i),
			OffsetX: 130 + float64(i)*16,
			OffsetY: 130,
			Kind:    PinAnalog,
		})
	}
	for n := 13; n >= 2; n-- {
		pins = append(pins, PinSpec{
			ID:      fmt.Sprintf("pin_%d", n),
			Name:    fmt.Sprintf("%d", n),
			OffsetX: 160 - float64(13-n)*11,
			OffsetY: 10,
			Kind:    PinDigital,
		})
	}
	pins = append(pins, PinSpec{ID: "gnd_3", Name: "GND", OffsetX: 180, OffsetY: 10, Kind: PinGround})
	return pins
}

// SpecFor returns the catalog entry for t. An unknown type is a programming
// error and panics.
func SpecFor(t ComponentType) ComponentTypeSpec {
	spec, ok := catalog[t]
	if !ok {
		panic(fmt.Sprintf("circuit: no catalog entry for component type %q", t))
	}
	return spec
}

// Types returns every component type in palette order.
func Types() []ComponentType {
	out := make([]ComponentType, len(types))
	copy(out, types)
	return out
}

// Valid reports whether t is a declared component type.
func (t ComponentType) Valid() bool {
	_, ok := catalog[t]
	return ok
}

// ParseType converts user or file input into a ComponentType.
// Matching is case-insensitive and accepts '-' in place of '_'.
func ParseType(s string) (ComponentType, error) {
	norm := ComponentType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !norm.Valid() {
		return "", fmt.Errorf("unknown component type %q", s)
	}
	return norm, nil
}
