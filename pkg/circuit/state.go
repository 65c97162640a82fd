package circuit

import (
	"encoding/json"
	"fmt"
)

// State is the per-type mutable state of a placed component.
// Each stateful component type has exactly one concrete State type; types
// without state carry a nil State. Values are plain structs so copying the
// interface copies the state.
type State interface {
	StateType() ComponentType
}

// ButtonState is the state of a push button.
type ButtonState struct {
	IsPressed bool `json:"isPressed" yaml:"isPressed"`
}

// PotentiometerState is the knob position of a potentiometer.
type PotentiometerState struct {
	Angle      float64 `json:"angle" yaml:"angle" validate:"min=0,max=270"`
	Resistance float64 `json:"resistance" yaml:"resistance" validate:"min=0,max=10000"`
}

// RGBLEDState is the colour driven into an RGB LED.
type RGBLEDState struct {
	Red   uint8 `json:"red" yaml:"red"`
	Green uint8 `json:"green" yaml:"green"`
	Blue  uint8 `json:"blue" yaml:"blue"`
}

// BuzzerState reports whether a buzzer is sounding.
type BuzzerState struct {
	IsActive bool `json:"isActive" yaml:"isActive"`
}

// LCDState holds the two display lines of a character LCD.
type LCDState struct {
	Line1 string `json:"line1" yaml:"line1" validate:"max=16"`
	Line2 string `json:"line2" yaml:"line2" validate:"max=16"`
}

// LEDState is the brightness of a single LED.
type LEDState struct {
	Brightness uint8 `json:"brightness" yaml:"brightness"`
}

// UltrasonicState is the simulated distance seen by an HC-SR04.
type UltrasonicState struct {
	DistanceCM float64 `json:"distanceCm" yaml:"distanceCm" validate:"min=0,max=400"`
}

// ServoState is the commanded shaft angle of a servo.
type ServoState struct {
	Angle float64 `json:"angle" yaml:"angle" validate:"min=0,max=180"`
}

func (ButtonState) StateType() ComponentType        { return TypeButton }
func (PotentiometerState) StateType() ComponentType { return TypePotentiometer }
func (RGBLEDState) StateType() ComponentType        { return TypeRGBLED }
func (BuzzerState) StateType() ComponentType        { return TypeBuzzer }
func (LCDState) StateType() ComponentType           { return TypeLCD }
func (LEDState) StateType() ComponentType           { return TypeLED }
func (UltrasonicState) StateType() ComponentType    { return TypeUltrasonic }
func (ServoState) StateType() ComponentType         { return TypeServo }

// DefaultState returns the zero state for t, or nil for stateless types.
func DefaultState(t ComponentType) State {
	switch t {
	case TypeButton:
		return ButtonState{}
	case TypePotentiometer:
		return PotentiometerState{}
	case TypeRGBLED:
		return RGBLEDState{}
	case TypeBuzzer:
		return BuzzerState{}
	case TypeLCD:
		return LCDState{}
	case TypeLED:
		return LEDState{}
	case TypeUltrasonic:
		return UltrasonicState{}
	case TypeServo:
		return ServoState{}
	case TypeArduinoUno, TypeResistor, TypeBattery, TypeBreadboard:
		return nil
	}
	panic(fmt.Sprintf("circuit: no state shape for component type %q", t))
}

// DecodeState builds the typed state for t from a JSON object.
// Empty input yields the default state.
func DecodeState(t ComponentType, data []byte) (State, error) {
	if len(data) == 0 || string(data) == "null" {
		return DefaultState(t), nil
	}
	var (
		s   State
		err error
	)
	switch t {
	case TypeButton:
		var v ButtonState
		err = json.Unmarshal(data, &v)
		s = v
	case TypePotentiometer:
		var v PotentiometerState
		err = json.Unmarshal(data, &v)
		s = v
	case TypeRGBLED:
		var v RGBLEDState
		err = json.Unmarshal(data, &v)
		s = v
	case TypeBuzzer:
		var v BuzzerState
		err = json.Unmarshal(data, &v)
		s = v
	case TypeLCD:
		var v LCDState
		err = json.Unmarshal(data, &v)
		s = v
	case TypeLED:
		var v LEDState
		err = json.Unmarshal(data, &v)
		s = v
	case TypeUltrasonic:
		var v UltrasonicState
		err = json.Unmarshal(data, &v)
		s = v
	case TypeServo:
		var v ServoState
		err = json.Unmarshal(data, &v)
		s = v
	default:
		return DefaultState(t), nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s state: %w", t, err)
	}
	return s, nil
}
