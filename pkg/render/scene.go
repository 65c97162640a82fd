// Package render projects a circuit graph, its last evaluation and the
// editor's interaction state onto drawable primitives, and writes those
// primitives as SVG or PNG.
package render

import (
	"math"

	"github.com/ha1tch/circuitsim/pkg/circuit"
)

// Style is the semantic role of a primitive. Writers map styles to visual
// attributes; tests and the terminal projection match on them.
type Style string

const (
	StyleBody         Style = "body"
	StyleBodyDetail   Style = "body-detail"
	StyleLabel        Style = "label"
	StyleSelection    Style = "selection"
	StylePin          Style = "pin"
	StylePinHover     Style = "pin-hover"
	StylePinActive    Style = "pin-active"
	StyleWire         Style = "wire"
	StyleWireHover    Style = "wire-hover"
	StyleWireDraft    Style = "wire-draft"
	StyleIndicator    Style = "indicator"
	StyleIndicatorOn  Style = "indicator-on"
	StyleDeleteMarker Style = "delete-marker"
)

// Shape is a drawable primitive in screen coordinates.
type Shape interface {
	StyleOf() Style
	RefOf() string
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H  float64
	Radius      float64
	Fill        string
	Stroke      string
	StrokeWidth float64
	Dashed      bool
	Style       Style
	Ref         string // component id
}

// Circle is a filled or stroked circle.
type Circle struct {
	CX, CY, R   float64
	Fill        string
	Stroke      string
	StrokeWidth float64
	Style       Style
	Ref         string // component id, or "component/pin" for pins
}

// Line is a straight segment.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	StrokeWidth    float64
	Dashed         bool
	Style          Style
	Ref            string // wire id for wires
}

// Text is a single line of text anchored at its centre.
type Text struct {
	X, Y  float64
	Value string
	Size  float64
	Fill  string
	Style Style
	Ref   string
}

func (r Rect) StyleOf() Style   { return r.Style }
func (r Rect) RefOf() string    { return r.Ref }
func (c Circle) StyleOf() Style { return c.Style }
func (c Circle) RefOf() string  { return c.Ref }
func (l Line) StyleOf() Style   { return l.Style }
func (l Line) RefOf() string    { return l.Ref }
func (t Text) StyleOf() Style   { return t.Style }
func (t Text) RefOf() string    { return t.Ref }

// Scene is an ordered list of shapes; later shapes draw on top.
type Scene struct {
	Shapes []Shape
}

func (s *Scene) add(shapes ...Shape) {
	s.Shapes = append(s.Shapes, shapes...)
}

// ByStyle returns the shapes with the given style, in draw order.
func (s Scene) ByStyle(style Style) []Shape {
	var out []Shape
	for _, sh := range s.Shapes {
		if sh.StyleOf() == style {
			out = append(out, sh)
		}
	}
	return out
}

// Zoom limits and steps.
const (
	MinZoom       = 0.5
	MaxZoom       = 3.0
	WheelZoomStep = 0.1
	KeyZoomStep   = 0.2
)

// View is the pan/zoom transform from world to screen coordinates:
// screen = world*Zoom + Pan.
type View struct {
	Zoom       float64
	PanX, PanY float64
}

// DefaultView is the identity transform.
func DefaultView() View { return View{Zoom: 1} }

func (v View) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// WorldToScreen maps a world point to screen coordinates.
func (v View) WorldToScreen(p circuit.Point) circuit.Point {
	z := v.zoom()
	return circuit.Point{X: p.X*z + v.PanX, Y: p.Y*z + v.PanY}
}

// ScreenToWorld maps a screen point to world coordinates.
func (v View) ScreenToWorld(p circuit.Point) circuit.Point {
	z := v.zoom()
	return circuit.Point{X: (p.X - v.PanX) / z, Y: (p.Y - v.PanY) / z}
}

// WithZoom returns the view with its zoom set to z, clamped to
// [MinZoom, MaxZoom] and rounded to one decimal.
func (v View) WithZoom(z float64) View {
	z = math.Round(z*10) / 10
	v.Zoom = math.Max(MinZoom, math.Min(MaxZoom, z))
	return v
}

// Interaction is the editor state the projection needs.
type Interaction struct {
	Selected  string
	HoverPin  PinRef
	HoverWire string
	Drawing   bool
	Anchor    PinRef
	Pointer   circuit.Point // world coordinates
}

// PinRef names a pin on a placed component.
type PinRef struct {
	ComponentID string
	PinID       string
}

// IsZero reports whether the reference is empty.
func (p PinRef) IsZero() bool { return p.ComponentID == "" && p.PinID == "" }

// Bounds returns the world-space bounding box of every component. An empty
// graph yields a zero box.
func Bounds(g *circuit.Graph) (min, max circuit.Point) {
	first := true
	for _, c := range g.Components() {
		w, h := c.Footprint()
		if first {
			min = circuit.Point{X: c.X, Y: c.Y}
			max = circuit.Point{X: c.X + w, Y: c.Y + h}
			first = false
			continue
		}
		min.X = math.Min(min.X, c.X)
		min.Y = math.Min(min.Y, c.Y)
		max.X = math.Max(max.X, c.X+w)
		max.Y = math.Max(max.Y, c.Y+h)
	}
	return min, max
}

// FitView returns a view that centres the graph in a width x height canvas
// with the given padding. Zoom stays within [MinZoom, 1.5]; a graph too large
// to fit at MinZoom is still centred.
func FitView(g *circuit.Graph, width, height, padding float64) View {
	if g.IsEmpty() {
		return DefaultView()
	}
	min, max := Bounds(g)
	cw := math.Max(max.X-min.X, 1)
	ch := math.Max(max.Y-min.Y, 1)
	availW := math.Max(width-2*padding, 1)
	availH := math.Max(height-2*padding, 1)

	// Zoom steps down to a tenth so WithZoom leaves it, and the pan, unchanged.
	z := math.Floor(math.Min(availW/cw, availH/ch)*10) / 10
	z = math.Max(MinZoom, math.Min(1.5, z))
	return View{
		Zoom: z,
		PanX: padding + (availW-cw*z)/2 - min.X*z,
		PanY: padding + (availH-ch*z)/2 - min.Y*z,
	}
}
