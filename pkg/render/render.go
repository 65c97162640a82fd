package render

import (
	"fmt"
	"math"

	"github.com/ha1tch/circuitsim/pkg/circuit"
	"github.com/ha1tch/circuitsim/pkg/sim"
)

// WirePalette is cycled by wire index.
var WirePalette = []string{"#ef4444", "#1f2937", "#22c55e", "#3b82f6", "#eab308", "#f97316"}

// Fixed colours.
const (
	ColorRunningWire = "#22c55e"
	ColorDraft       = "#a855f7"
	ColorSelection   = "#3b82f6"
	ColorHoverWire   = "#ef4444"
	ColorLabel       = "#f8fafc"
	ColorDarkLabel   = "#1f2937"
)

var bodyFill = map[circuit.ComponentType]string{
	circuit.TypeArduinoUno:    "#00878f",
	circuit.TypeLED:           "#fca5a5",
	circuit.TypeResistor:      "#d6b48a",
	circuit.TypeBattery:       "#374151",
	circuit.TypeButton:        "#4b5563",
	circuit.TypeUltrasonic:    "#1d4ed8",
	circuit.TypeServo:         "#1e3a8a",
	circuit.TypePotentiometer: "#6b7280",
	circuit.TypeLCD:           "#065f46",
	circuit.TypeBreadboard:    "#f5f5f4",
	circuit.TypeBuzzer:        "#111827",
	circuit.TypeRGBLED:        "#e5e7eb",
}

var pinFill = map[circuit.PinKind]string{
	circuit.PinPower:   "#ef4444",
	circuit.PinGround:  "#1f2937",
	circuit.PinDigital: "#3b82f6",
	circuit.PinAnalog:  "#22c55e",
}

// WireColor returns the colour of the i-th wire.
func WireColor(i int, running bool) string {
	if running {
		return ColorRunningWire
	}
	return WirePalette[i%len(WirePalette)]
}

// Render projects the graph onto screen-space shapes: component bodies,
// then wires, then pins, then the in-progress wire.
func Render(g *circuit.Graph, res sim.Result, view View, ia Interaction) Scene {
	var sc Scene
	z := view.zoom()

	for _, c := range g.Components() {
		drawComponent(&sc, c, res, view, ia.Selected == c.ID)
	}

	running := res.Running()
	for i, w := range g.Wires() {
		a, okA := g.PinWorldPosition(w.FromComponentID, w.FromPinID)
		b, okB := g.PinWorldPosition(w.ToComponentID, w.ToPinID)
		if !okA || !okB {
			continue
		}
		sa, sb := view.WorldToScreen(a), view.WorldToScreen(b)
		line := Line{
			X1: sa.X, Y1: sa.Y, X2: sb.X, Y2: sb.Y,
			Stroke:      WireColor(i, running),
			StrokeWidth: 3 * z,
			Style:       StyleWire,
			Ref:         w.ID,
		}
		if ia.HoverWire == w.ID {
			line.Stroke = ColorHoverWire
			line.StrokeWidth = 5 * z
			line.Style = StyleWireHover
		}
		sc.add(line)
		if ia.HoverWire == w.ID {
			sc.add(Text{
				X: (sa.X + sb.X) / 2, Y: (sa.Y + sb.Y) / 2,
				Value: "×", Size: 16 * z, Fill: ColorHoverWire,
				Style: StyleDeleteMarker, Ref: w.ID,
			})
		}
	}

	for _, c := range g.Components() {
		for _, p := range c.Spec().Pins {
			pos, ok := g.PinWorldPosition(c.ID, p.ID)
			if !ok {
				continue
			}
			s := view.WorldToScreen(pos)
			ref := PinRef{ComponentID: c.ID, PinID: p.ID}
			circle := Circle{
				CX: s.X, CY: s.Y, R: 4 * z,
				Fill:        pinFill[p.Kind],
				Stroke:      "#ffffff",
				StrokeWidth: 1 * z,
				Style:       StylePin,
				Ref:         c.ID + "/" + p.ID,
			}
			switch {
			case ia.Drawing && ia.Anchor == ref:
				circle.R = 6 * z
				circle.Fill = ColorDraft
				circle.Style = StylePinActive
			case ia.HoverPin == ref:
				circle.R = 6 * z
				circle.Stroke = ColorDraft
				circle.StrokeWidth = 2 * z
				circle.Style = StylePinHover
			}
			sc.add(circle)
		}
	}

	if ia.Drawing {
		if a, ok := g.PinWorldPosition(ia.Anchor.ComponentID, ia.Anchor.PinID); ok {
			sa, sp := view.WorldToScreen(a), view.WorldToScreen(ia.Pointer)
			sc.add(Line{
				X1: sa.X, Y1: sa.Y, X2: sp.X, Y2: sp.Y,
				Stroke:      ColorDraft,
				StrokeWidth: 3 * z,
				Dashed:      true,
				Style:       StyleWireDraft,
			})
		}
	}
	return sc
}

// drawComponent emits the body, label and type-specific detail of c.
func drawComponent(sc *Scene, c circuit.Component, res sim.Result, view View, selected bool) {
	z := view.zoom()
	w, h := c.Footprint()
	tl := view.WorldToScreen(circuit.Point{X: c.X, Y: c.Y})
	sw, sh := w*z, h*z
	cx, cy := tl.X+sw/2, tl.Y+sh/2
	spec := c.Spec()
	hint, _ := res.Hint(c.ID)

	sc.add(Rect{
		X: tl.X, Y: tl.Y, W: sw, H: sh, Radius: 6 * z,
		Fill: bodyFill[c.Type], Stroke: "#0f172a", StrokeWidth: 1.5 * z,
		Style: StyleBody, Ref: c.ID,
	})
	if selected {
		sc.add(Rect{
			X: tl.X - 4*z, Y: tl.Y - 4*z, W: sw + 8*z, H: sh + 8*z, Radius: 8 * z,
			Stroke: ColorSelection, StrokeWidth: 2 * z, Dashed: true,
			Style: StyleSelection, Ref: c.ID,
		})
	}

	labelFill := ColorLabel
	switch c.Type {
	case circuit.TypeLED, circuit.TypeResistor, circuit.TypeBreadboard, circuit.TypeRGBLED:
		labelFill = ColorDarkLabel
	}
	label := Text{X: cx, Y: tl.Y + 12*z, Value: spec.Label, Size: 11 * z, Fill: labelFill, Style: StyleLabel, Ref: c.ID}

	switch c.Type {
	case circuit.TypeLED:
		lens := Circle{CX: cx, CY: tl.Y + sh*0.4, R: math.Min(sw, sh) * 0.3, Fill: "#7f1d1d", Style: StyleIndicator, Ref: c.ID}
		if hint.Lit {
			sc.add(Circle{CX: lens.CX, CY: lens.CY, R: lens.R * 1.8, Fill: "#fecaca", Style: StyleIndicatorOn, Ref: c.ID})
			lens.Fill = "#ef4444"
			lens.Style = StyleIndicatorOn
		}
		sc.add(lens)
		label.Y = tl.Y + sh - 14*z

	case circuit.TypeRGBLED:
		lens := Circle{CX: cx, CY: tl.Y + sh*0.4, R: math.Min(sw, sh) * 0.3, Fill: "#f3f4f6", Stroke: "#9ca3af", StrokeWidth: z, Style: StyleIndicator, Ref: c.ID}
		if hint.Color != nil {
			lens.Fill = fmt.Sprintf("#%02x%02x%02x", hint.Color.Red, hint.Color.Green, hint.Color.Blue)
			lens.Style = StyleIndicatorOn
		}
		sc.add(lens)
		label.Y = tl.Y + sh - 14*z

	case circuit.TypeBuzzer:
		disc := Circle{CX: cx, CY: cy, R: math.Min(sw, sh) * 0.35, Fill: "#374151", Style: StyleIndicator, Ref: c.ID}
		if hint.Active {
			sc.add(Circle{CX: cx, CY: cy, R: disc.R * 1.6, Stroke: "#facc15", StrokeWidth: 2 * z, Style: StyleIndicatorOn, Ref: c.ID})
			disc.Fill = "#facc15"
			disc.Style = StyleIndicatorOn
		}
		sc.add(disc)
		label.Value = "BZ"

	case circuit.TypeButton:
		knob := Circle{CX: cx, CY: cy, R: math.Min(sw, sh) * 0.25, Fill: "#dc2626", Style: StyleIndicator, Ref: c.ID}
		if s, ok := c.State.(circuit.ButtonState); ok && s.IsPressed {
			knob.Fill = "#7f1d1d"
			knob.Style = StyleIndicatorOn
		}
		sc.add(knob)

	case circuit.TypeResistor:
		for i, col := range []string{"#dc2626", "#dc2626", "#92400e", "#eab308"} {
			x := tl.X + sw*(0.3+0.12*float64(i))
			y := tl.Y + sh*(0.3+0.12*float64(i))
			if sw >= sh {
				sc.add(Line{X1: x, Y1: tl.Y + 4*z, X2: x, Y2: tl.Y + sh - 4*z, Stroke: col, StrokeWidth: 3 * z, Style: StyleBodyDetail, Ref: c.ID})
			} else {
				sc.add(Line{X1: tl.X + 4*z, Y1: y, X2: tl.X + sw - 4*z, Y2: y, Stroke: col, StrokeWidth: 3 * z, Style: StyleBodyDetail, Ref: c.ID})
			}
		}
		label.Y = cy

	case circuit.TypeUltrasonic:
		r := math.Min(sw, sh) * 0.18
		if sw >= sh {
			sc.add(
				Circle{CX: tl.X + sw*0.27, CY: cy - 4*z, R: r, Fill: "#d1d5db", Stroke: "#6b7280", StrokeWidth: z, Style: StyleBodyDetail, Ref: c.ID},
				Circle{CX: tl.X + sw*0.73, CY: cy - 4*z, R: r, Fill: "#d1d5db", Stroke: "#6b7280", StrokeWidth: z, Style: StyleBodyDetail, Ref: c.ID},
			)
		} else {
			sc.add(
				Circle{CX: cx, CY: tl.Y + sh*0.27, R: r, Fill: "#d1d5db", Stroke: "#6b7280", StrokeWidth: z, Style: StyleBodyDetail, Ref: c.ID},
				Circle{CX: cx, CY: tl.Y + sh*0.73, R: r, Fill: "#d1d5db", Stroke: "#6b7280", StrokeWidth: z, Style: StyleBodyDetail, Ref: c.ID},
			)
		}
		if hint.HasReading {
			sc.add(Text{X: cx, Y: tl.Y + sh - 18*z, Value: fmt.Sprintf("%d cm", hint.Reading), Size: 10 * z, Fill: ColorLabel, Style: StyleIndicatorOn, Ref: c.ID})
		}

	case circuit.TypeServo:
		angle := 0.0
		if s, ok := c.State.(circuit.ServoState); ok {
			angle = s.Angle
		}
		if hint.Active {
			angle = hint.Angle
		}
		rad := (angle - 90) * math.Pi / 180
		arm := math.Min(sw, sh) * 0.35
		sc.add(
			Circle{CX: cx, CY: cy, R: 6 * z, Fill: "#e5e7eb", Style: StyleBodyDetail, Ref: c.ID},
			Line{X1: cx, Y1: cy, X2: cx + arm*math.Cos(rad), Y2: cy + arm*math.Sin(rad), Stroke: "#f8fafc", StrokeWidth: 4 * z, Style: StyleBodyDetail, Ref: c.ID},
		)

	case circuit.TypePotentiometer:
		s, _ := c.State.(circuit.PotentiometerState)
		rad := (s.Angle - 225) * math.Pi / 180
		r := math.Min(sw, sh) * 0.28
		sc.add(
			Circle{CX: cx, CY: cy, R: r, Fill: "#d1d5db", Stroke: "#374151", StrokeWidth: z, Style: StyleBodyDetail, Ref: c.ID},
			Line{X1: cx, Y1: cy, X2: cx + r*math.Cos(rad), Y2: cy + r*math.Sin(rad), Stroke: "#111827", StrokeWidth: 2 * z, Style: StyleBodyDetail, Ref: c.ID},
		)
		if hint.HasReading {
			sc.add(Text{X: cx, Y: tl.Y + sh - 16*z, Value: fmt.Sprint(hint.Reading), Size: 10 * z, Fill: ColorLabel, Style: StyleIndicatorOn, Ref: c.ID})
		}

	case circuit.TypeLCD:
		screen := Rect{X: tl.X + 10*z, Y: tl.Y + 20*z, W: sw - 20*z, H: sh - 40*z, Radius: 2 * z, Fill: "#3f6212", Style: StyleIndicator, Ref: c.ID}
		if len(hint.Lines) > 0 {
			screen.Fill = "#84cc16"
			screen.Style = StyleIndicatorOn
		}
		sc.add(screen)
		for i, line := range hint.Lines {
			sc.add(Text{X: cx, Y: screen.Y + screen.H*(0.3+0.4*float64(i)), Value: line, Size: 10 * z, Fill: ColorDarkLabel, Style: StyleIndicatorOn, Ref: c.ID})
		}

	case circuit.TypeBattery:
		sc.add(Rect{X: tl.X + sw*0.3, Y: tl.Y - 6*z, W: sw * 0.4, H: 6 * z, Fill: "#9ca3af", Style: StyleBodyDetail, Ref: c.ID})
		label.Y = cy

	case circuit.TypeBreadboard:
		for row := 1; row <= 4; row++ {
			y := tl.Y + sh*float64(row)/5
			sc.add(Line{X1: tl.X + 10*z, Y1: y, X2: tl.X + sw - 10*z, Y2: y, Stroke: "#d6d3d1", StrokeWidth: 2 * z, Dashed: true, Style: StyleBodyDetail, Ref: c.ID})
		}
		label.Y = cy
	}
	sc.add(label)
}
