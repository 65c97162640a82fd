package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCoversEveryType(t *testing.T) {
	for _, typ := range Types() {
		t.Run(string(typ), func(t *testing.T) {
			spec := SpecFor(typ)
			assert.Equal(t, typ, spec.Type)
			assert.GreaterOrEqual(t, spec.Width, 0.0)
			assert.GreaterOrEqual(t, spec.Height, 0.0)
			assert.NotEmpty(t, spec.Label)
			if spec.Decorative {
				assert.Empty(t, spec.Pins)
				return
			}
			require.NotEmpty(t, spec.Pins)

			seen := make(map[string]bool)
			for _, p := range spec.Pins {
				assert.False(t, seen[p.ID], "duplicate pin id %s", p.ID)
				seen[p.ID] = true
				assert.Contains(t, []PinKind{PinPower, PinGround, PinDigital, PinAnalog}, p.Kind)
				assert.True(t, p.OffsetX >= 0 && p.OffsetX <= spec.Width, "pin %s x outside footprint", p.ID)
				assert.True(t, p.OffsetY >= 0 && p.OffsetY <= spec.Height, "pin %s y outside footprint", p.ID)
			}
		})
	}
}

func TestCatalogStateShapes(t *testing.T) {
	// DefaultState must be exhaustive: it panics on a missing case.
	for _, typ := range Types() {
		s := DefaultState(typ)
		if s != nil {
			assert.Equal(t, typ, s.StateType())
		}
	}
}

func TestSpecForUnknownTypePanics(t *testing.T) {
	assert.Panics(t, func() { SpecFor("FLUX_CAPACITOR") })
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    ComponentType
		wantErr bool
	}{
		{"LED", TypeLED, false},
		{"rgb-led", TypeRGBLED, false},
		{" arduino_uno ", TypeArduinoUno, false},
		{"toaster", "", true},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFootprintRotation(t *testing.T) {
	spec := SpecFor(TypeServo)
	w, h := spec.Footprint(0)
	assert.Equal(t, [2]float64{90, 50}, [2]float64{w, h})
	w, h = spec.Footprint(90)
	assert.Equal(t, [2]float64{50, 90}, [2]float64{w, h})
	w, h = spec.Footprint(180)
	assert.Equal(t, [2]float64{90, 50}, [2]float64{w, h})
}

func TestDecodeState(t *testing.T) {
	s, err := DecodeState(TypePotentiometer, []byte(`{"angle":90,"resistance":2500}`))
	require.NoError(t, err)
	assert.Equal(t, PotentiometerState{Angle: 90, Resistance: 2500}, s)

	s, err = DecodeState(TypeButton, nil)
	require.NoError(t, err)
	assert.Equal(t, ButtonState{}, s)

	s, err = DecodeState(TypeResistor, []byte(`{"ohms":220}`))
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = DecodeState(TypeBuzzer, []byte(`{"isActive":"loud"}`))
	assert.Error(t, err)
}
