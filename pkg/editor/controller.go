// Package editor implements the interactive circuit editor independently of
// any UI toolkit: the pointer/keyboard state machine and the session that
// ties the graph to history, auto-save, evaluation and file import.
package editor

import (
	"math"

	"github.com/ha1tch/circuitsim/pkg/circuit"
	"github.com/ha1tch/circuitsim/pkg/render"
)

// Mode is the controller's interaction state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeDrawingWire
	ModePanning
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDragging:
		return "dragging"
	case ModeDrawingWire:
		return "drawing-wire"
	case ModePanning:
		return "panning"
	}
	return "unknown"
}

// MessageType classifies a user-visible notice.
type MessageType int

const (
	MsgInfo    MessageType = iota // informative, no flash
	MsgError                      // errors, flash
	MsgSuccess                    // state changes, flash
	MsgWarning                    // warnings, flash
)

// Host is what the controller needs from its surroundings.
type Host interface {
	Notify(msg string, kind MessageType)
	Undo()
	Redo()
}

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// Mods is a set of held modifier keys.
type Mods uint8

const (
	ModCtrl Mods = 1 << iota
	ModShift
	ModAlt
)

// Has reports whether m includes all of o.
func (m Mods) Has(o Mods) bool { return m&o == o }

// PointerEvent is a press, move or release at a screen position.
type PointerEvent struct {
	X, Y   float64
	Button Button
	Mods   Mods
}

// WheelEvent is a scroll at a screen position. Positive Delta scrolls up.
type WheelEvent struct {
	X, Y  float64
	Delta float64
	Mods  Mods
}

// Key identifies a non-printing key; printing keys use KeyRune.
type Key int

const (
	KeyRune Key = iota
	KeyEscape
	KeyDelete
	KeyBackspace
)

// KeyEvent is a key press.
type KeyEvent struct {
	Key  Key
	Rune rune
	Mods Mods
}

// Hit tolerances in world units.
const (
	PinHitRadius  = 8.0
	WireTolerance = 5.0
)

// Controller turns pointer, wheel and key events into graph mutations and
// view changes. It holds no circuit data beyond the interaction mode.
type Controller struct {
	graph *circuit.Graph
	host  Host
	view  render.View

	mode    Mode
	dragID  string
	anchor  render.PinRef
	pointer circuit.Point // world

	panStart  circuit.Point // screen
	panOrigin circuit.Point

	hoverPin  render.PinRef
	hoverWire string
}

// NewController creates a controller editing g.
func NewController(g *circuit.Graph, host Host) *Controller {
	return &Controller{
		graph: g,
		host:  host,
		view:  render.DefaultView(),
	}
}

// Mode returns the current interaction mode.
func (c *Controller) Mode() Mode { return c.mode }

// DragTarget returns the component being dragged, or "".
func (c *Controller) DragTarget() string {
	if c.mode != ModeDragging {
		return ""
	}
	return c.dragID
}

// Anchor returns the pin an in-progress wire starts from.
func (c *Controller) Anchor() (render.PinRef, bool) {
	return c.anchor, c.mode == ModeDrawingWire
}

// View returns the pan/zoom transform.
func (c *Controller) View() render.View { return c.view }

// SetView replaces the pan/zoom transform. The zoom is clamped.
func (c *Controller) SetView(v render.View) { c.view = v.WithZoom(v.Zoom) }

// Interaction returns the state the render projection needs.
func (c *Controller) Interaction() render.Interaction {
	return render.Interaction{
		Selected:  c.graph.Selected(),
		HoverPin:  c.hoverPin,
		HoverWire: c.hoverWire,
		Drawing:   c.mode == ModeDrawingWire,
		Anchor:    c.anchor,
		Pointer:   c.pointer,
	}
}

// Reset abandons any gesture in progress. Used after the graph is replaced.
func (c *Controller) Reset() {
	c.mode = ModeIdle
	c.dragID = ""
	c.anchor = render.PinRef{}
	c.hoverPin = render.PinRef{}
	c.hoverWire = ""
}

func (c *Controller) world(x, y float64) circuit.Point {
	return c.view.ScreenToWorld(circuit.Point{X: x, Y: y})
}

// PointerDown handles a button press.
func (c *Controller) PointerDown(ev PointerEvent) {
	p := c.world(ev.X, ev.Y)
	c.pointer = p

	if ev.Button == ButtonMiddle || (ev.Button == ButtonLeft && ev.Mods.Has(ModCtrl)) {
		c.mode = ModePanning
		c.panStart = circuit.Point{X: ev.X, Y: ev.Y}
		c.panOrigin = circuit.Point{X: c.view.PanX, Y: c.view.PanY}
		return
	}

	if ev.Button == ButtonRight {
		if id, ok := c.HitWire(p); ok {
			c.graph.DeleteWire(id)
			c.hoverWire = ""
			c.host.Notify("Wire deleted", MsgInfo)
		}
		return
	}
	if ev.Button != ButtonLeft {
		return
	}

	if pin, ok := c.HitPin(p); ok {
		c.pinClicked(pin)
		return
	}

	if id, ok := c.HitComponent(p); ok {
		c.anchor = render.PinRef{}
		c.graph.Select(id)
		c.mode = ModeDragging
		c.dragID = id
		return
	}

	c.graph.ClearSelection()
	c.anchor = render.PinRef{}
	c.mode = ModeIdle
}

func (c *Controller) pinClicked(pin render.PinRef) {
	if c.mode != ModeDrawingWire {
		c.mode = ModeDrawingWire
		c.anchor = pin
		return
	}

	from := c.anchor
	c.mode = ModeIdle
	c.anchor = render.PinRef{}
	if from == pin {
		return
	}
	if _, err := c.graph.AddWire(from.ComponentID, from.PinID, pin.ComponentID, pin.PinID); err != nil {
		c.host.Notify(err.Error(), MsgError)
	}
}

// PointerMove tracks hover targets and advances drags and pans.
func (c *Controller) PointerMove(ev PointerEvent) {
	p := c.world(ev.X, ev.Y)
	c.pointer = p

	switch c.mode {
	case ModeDragging:
		if comp, ok := c.graph.Component(c.dragID); ok {
			w, h := comp.Footprint()
			c.graph.MoveComponent(c.dragID, p.X-w/2, p.Y-h/2)
		}
		return
	case ModePanning:
		c.view.PanX = c.panOrigin.X + ev.X - c.panStart.X
		c.view.PanY = c.panOrigin.Y + ev.Y - c.panStart.Y
		return
	}

	c.hoverPin = render.PinRef{}
	c.hoverWire = ""
	if pin, ok := c.HitPin(p); ok {
		c.hoverPin = pin
		return
	}
	if id, ok := c.HitWire(p); ok {
		c.hoverWire = id
	}
}

// PointerUp ends a drag or pan. An in-progress wire survives the release.
func (c *Controller) PointerUp(ev PointerEvent) {
	c.pointer = c.world(ev.X, ev.Y)
	switch c.mode {
	case ModeDragging, ModePanning:
		c.mode = ModeIdle
		c.dragID = ""
	}
}

// Wheel zooms when Ctrl is held and reports whether the event was used.
func (c *Controller) Wheel(ev WheelEvent) bool {
	if !ev.Mods.Has(ModCtrl) || ev.Delta == 0 {
		return false
	}
	step := render.WheelZoomStep
	if ev.Delta < 0 {
		step = -step
	}
	c.view = c.view.WithZoom(c.view.Zoom + step)
	return true
}

// ZoomIn raises the zoom by one key step.
func (c *Controller) ZoomIn() { c.view = c.view.WithZoom(c.view.Zoom + render.KeyZoomStep) }

// ZoomOut lowers the zoom by one key step.
func (c *Controller) ZoomOut() { c.view = c.view.WithZoom(c.view.Zoom - render.KeyZoomStep) }

// ResetZoom restores zoom 1 and clears the pan.
func (c *Controller) ResetZoom() { c.view = render.DefaultView() }

// Key handles a key press and reports whether it was used.
func (c *Controller) Key(ev KeyEvent) bool {
	switch ev.Key {
	case KeyEscape:
		if c.mode == ModeDrawingWire {
			c.mode = ModeIdle
			c.anchor = render.PinRef{}
			return true
		}
		return false
	case KeyDelete, KeyBackspace:
		if id := c.graph.Selected(); id != "" {
			c.graph.DeleteComponent(id)
			if c.dragID == id || c.anchor.ComponentID == id || c.hoverPin.ComponentID == id {
				c.Reset()
			}
			if _, ok := c.graph.Wire(c.hoverWire); !ok {
				c.hoverWire = ""
			}
			return true
		}
		return false
	}

	if ev.Mods.Has(ModCtrl) {
		switch ev.Rune {
		case '=', '+':
			c.ZoomIn()
		case '-':
			c.ZoomOut()
		case '0':
			c.ResetZoom()
		case 'z', 'Z':
			c.host.Undo()
		case 'y', 'Y':
			c.host.Redo()
		default:
			return false
		}
		return true
	}

	switch ev.Rune {
	case 'r', 'R':
		if id := c.graph.Selected(); id != "" {
			c.graph.RotateComponent(id)
			return true
		}
	case ' ':
		return c.toggleState()
	case '[':
		return c.nudgeState(-1)
	case ']':
		return c.nudgeState(1)
	}
	return false
}

// toggleState presses or releases the selected button, or switches the
// selected buzzer.
func (c *Controller) toggleState() bool {
	comp, ok := c.graph.Component(c.graph.Selected())
	if !ok {
		return false
	}
	var next circuit.State
	switch s := comp.State.(type) {
	case circuit.ButtonState:
		next = circuit.ButtonState{IsPressed: !s.IsPressed}
	case circuit.BuzzerState:
		next = circuit.BuzzerState{IsActive: !s.IsActive}
	default:
		return false
	}
	return c.graph.SetState(comp.ID, next) == nil
}

// Nudge steps for adjustable components.
const (
	ServoStep      = 15.0
	DistanceStep   = 10.0
	ResistanceStep = 1000.0
)

// nudgeState moves the selected servo, ultrasonic sensor or potentiometer
// one step in direction dir.
func (c *Controller) nudgeState(dir float64) bool {
	comp, ok := c.graph.Component(c.graph.Selected())
	if !ok {
		return false
	}
	var next circuit.State
	switch s := comp.State.(type) {
	case circuit.ServoState:
		next = circuit.ServoState{Angle: clamp(s.Angle+dir*ServoStep, 0, 180)}
	case circuit.UltrasonicState:
		next = circuit.UltrasonicState{DistanceCM: clamp(s.DistanceCM+dir*DistanceStep, 0, 400)}
	case circuit.PotentiometerState:
		res := clamp(s.Resistance+dir*ResistanceStep, 0, 10000)
		next = circuit.PotentiometerState{Resistance: res, Angle: res / 10000 * 270}
	default:
		return false
	}
	return c.graph.SetState(comp.ID, next) == nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// HitPin finds the pin under a world point, topmost component first.
func (c *Controller) HitPin(p circuit.Point) (render.PinRef, bool) {
	comps := c.graph.Components()
	for i := len(comps) - 1; i >= 0; i-- {
		comp := comps[i]
		for _, spec := range comp.Spec().Pins {
			pos, ok := c.graph.PinWorldPosition(comp.ID, spec.ID)
			if !ok {
				continue
			}
			if math.Hypot(p.X-pos.X, p.Y-pos.Y) <= PinHitRadius {
				return render.PinRef{ComponentID: comp.ID, PinID: spec.ID}, true
			}
		}
	}
	return render.PinRef{}, false
}

// HitComponent finds the topmost component whose footprint contains p.
func (c *Controller) HitComponent(p circuit.Point) (string, bool) {
	comps := c.graph.Components()
	for i := len(comps) - 1; i >= 0; i-- {
		if comps[i].Contains(p) {
			return comps[i].ID, true
		}
	}
	return "", false
}

// HitWire finds the newest wire passing within WireTolerance of p.
func (c *Controller) HitWire(p circuit.Point) (string, bool) {
	wires := c.graph.Wires()
	for i := len(wires) - 1; i >= 0; i-- {
		w := wires[i]
		a, okA := c.graph.PinWorldPosition(w.FromComponentID, w.FromPinID)
		b, okB := c.graph.PinWorldPosition(w.ToComponentID, w.ToPinID)
		if !okA || !okB {
			continue
		}
		if segmentDistance(p, a, b) <= WireTolerance {
			return w.ID, true
		}
	}
	return "", false
}

// segmentDistance is the distance from p to the segment ab.
func segmentDistance(p, a, b circuit.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
