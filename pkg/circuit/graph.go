package circuit

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Errors returned by wire creation and insertion.
var (
	ErrSelfLoop         = errors.New("wire endpoints are the same pin")
	ErrPowerToPower     = errors.New("cannot connect power to power")
	ErrGroundToGround   = errors.New("ground-to-ground is redundant")
	ErrUnknownComponent = errors.New("unknown component")
	ErrUnknownPin       = errors.New("unknown pin")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrStateMismatch    = errors.New("state does not match component type")
)

// Placement offset applied per already-placed component so that repeated
// adds at the same point do not overlap exactly.
const (
	placementStep  = 20
	placementCycle = 10
)

// Point is a position in world coordinates.
type Point struct {
	X, Y float64
}

// Component is a placed component instance.
type Component struct {
	ID       string
	Type     ComponentType
	X, Y     float64
	Rotation int
	State    State

	seq uint64
}

// Spec returns the catalog entry for the component's type.
func (c Component) Spec() ComponentTypeSpec {
	return SpecFor(c.Type)
}

// Footprint returns the rotated width and height.
func (c Component) Footprint() (float64, float64) {
	return c.Spec().Footprint(c.Rotation)
}

// Contains reports whether p lies inside the component's rotated footprint.
func (c Component) Contains(p Point) bool {
	w, h := c.Footprint()
	return p.X >= c.X && p.X <= c.X+w && p.Y >= c.Y && p.Y <= c.Y+h
}

// Wire connects two pins. Connectivity is undirected.
type Wire struct {
	ID              string
	FromComponentID string
	FromPinID       string
	ToComponentID   string
	ToPinID         string

	seq uint64
}

// Touches reports whether either endpoint is on the component.
func (w Wire) Touches(componentID string) bool {
	return w.FromComponentID == componentID || w.ToComponentID == componentID
}

// Far returns the endpoint opposite to the given component, and the pin on
// the given component. If both ends are on the component the "to" end is far.
func (w Wire) Far(componentID string) (localPin, farComponent, farPin string) {
	if w.FromComponentID == componentID {
		return w.FromPinID, w.ToComponentID, w.ToPinID
	}
	return w.ToPinID, w.FromComponentID, w.FromPinID
}

// ChangeKind identifies a graph mutation.
type ChangeKind int

const (
	ChangeAdd ChangeKind = iota
	ChangeMove
	ChangeRotate
	ChangeDelete
	ChangeWireAdd
	ChangeWireDelete
	ChangeState
	ChangeRestore
)

// Change describes a completed mutation.
type Change struct {
	Kind ChangeKind
	ID   string
}

// Graph is the in-memory circuit: placed components and the wires between
// their pins. It is not safe for concurrent use.
type Graph struct {
	components map[string]*Component
	wires      map[string]*Wire
	selected   string
	seq        uint64

	listeners []func(Change)
	newID     func(prefix string) string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		components: make(map[string]*Component),
		wires:      make(map[string]*Wire),
		newID:      uuidID,
	}
}

func uuidID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// OnChange registers fn to be called after every mutation.
func (g *Graph) OnChange(fn func(Change)) {
	g.listeners = append(g.listeners, fn)
}

func (g *Graph) emit(kind ChangeKind, id string) {
	for _, fn := range g.listeners {
		fn(Change{Kind: kind, ID: id})
	}
}

func (g *Graph) nextSeq() uint64 {
	g.seq++
	return g.seq
}

func (g *Graph) allocID(prefix string) string {
	for {
		id := g.newID(prefix)
		_, c := g.components[id]
		_, w := g.wires[id]
		if !c && !w {
			return id
		}
	}
}

// AddComponent places a new component of type t near pos and returns its id.
func (g *Graph) AddComponent(t ComponentType, pos Point) string {
	spec := SpecFor(t)
	offset := float64((len(g.components) % placementCycle) * placementStep)
	c := &Component{
		ID:    g.allocID(string(spec.Type)),
		Type:  t,
		X:     clampNonNegative(pos.X + offset),
		Y:     clampNonNegative(pos.Y + offset),
		State: DefaultState(t),
		seq:   g.nextSeq(),
	}
	g.components[c.ID] = c
	g.emit(ChangeAdd, c.ID)
	return c.ID
}

// InsertComponent adds a fully specified component, as read from a file.
func (g *Graph) InsertComponent(c Component) error {
	if !c.Type.Valid() {
		return fmt.Errorf("component %q: unknown type %q", c.ID, c.Type)
	}
	if c.ID == "" {
		return fmt.Errorf("component of type %s: empty id", c.Type)
	}
	if _, ok := g.components[c.ID]; ok {
		return fmt.Errorf("component %q: %w", c.ID, ErrDuplicateID)
	}
	if c.State == nil {
		c.State = DefaultState(c.Type)
	} else if c.State.StateType() != c.Type {
		return fmt.Errorf("component %q: %w", c.ID, ErrStateMismatch)
	}
	c.Rotation = normalizeRotation(c.Rotation)
	c.seq = g.nextSeq()
	g.components[c.ID] = &c
	g.emit(ChangeAdd, c.ID)
	return nil
}

// MoveComponent sets the top-left position, clamped to non-negative
// coordinates. Unknown ids are ignored.
func (g *Graph) MoveComponent(id string, x, y float64) {
	c, ok := g.components[id]
	if !ok {
		return
	}
	x, y = clampNonNegative(x), clampNonNegative(y)
	if c.X == x && c.Y == y {
		return
	}
	c.X, c.Y = x, y
	g.emit(ChangeMove, id)
}

// RotateComponent advances the rotation by 90 degrees.
func (g *Graph) RotateComponent(id string) {
	c, ok := g.components[id]
	if !ok {
		return
	}
	c.Rotation = (c.Rotation + 90) % 360
	g.emit(ChangeRotate, id)
}

// DeleteComponent removes the component and every wire touching it.
func (g *Graph) DeleteComponent(id string) {
	if _, ok := g.components[id]; !ok {
		return
	}
	for wid, w := range g.wires {
		if w.Touches(id) {
			delete(g.wires, wid)
		}
	}
	delete(g.components, id)
	if g.selected == id {
		g.selected = ""
	}
	g.emit(ChangeDelete, id)
}

// SetState replaces a component's state. The state type must match.
func (g *Graph) SetState(id string, s State) error {
	c, ok := g.components[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, id)
	}
	if s != nil && s.StateType() != c.Type {
		return fmt.Errorf("component %q: %w", id, ErrStateMismatch)
	}
	if s == nil {
		s = DefaultState(c.Type)
	}
	c.State = s
	g.emit(ChangeState, id)
	return nil
}

// PinKind returns the kind of a pin on a placed component.
func (g *Graph) PinKind(componentID, pinID string) (PinKind, error) {
	c, ok := g.components[componentID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownComponent, componentID)
	}
	p, ok := c.Spec().Pin(pinID)
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownPin, componentID, pinID)
	}
	return p.Kind, nil
}

// AddWire connects two pins and returns the new wire id. Power-to-power and
// ground-to-ground connections are rejected only when both ends belong to
// supply rails (board or battery), not for every pin pair of the same kind.
// A component's own VCC or GND wired to a rail is how it is powered, so a
// servo's power pin may join the board's 5V. This check runs here and
// nowhere else.
func (g *Graph) AddWire(fromID, fromPin, toID, toPin string) (string, error) {
	if fromID == toID && fromPin == toPin {
		return "", ErrSelfLoop
	}
	if err := g.checkRails(fromID, fromPin, toID, toPin); err != nil {
		return "", err
	}
	w := &Wire{
		ID:              g.allocID("wire"),
		FromComponentID: fromID,
		FromPinID:       fromPin,
		ToComponentID:   toID,
		ToPinID:         toPin,
		seq:             g.nextSeq(),
	}
	g.wires[w.ID] = w
	g.emit(ChangeWireAdd, w.ID)
	return w.ID, nil
}

// checkRails resolves both pins and rejects joining two supply rails of the
// same kind. A component's own power or ground pin may join a rail.
func (g *Graph) checkRails(fromID, fromPin, toID, toPin string) error {
	fromKind, err := g.PinKind(fromID, fromPin)
	if err != nil {
		return err
	}
	toKind, err := g.PinKind(toID, toPin)
	if err != nil {
		return err
	}
	if fromKind != toKind || !g.components[fromID].Spec().Supply || !g.components[toID].Spec().Supply {
		return nil
	}
	switch fromKind {
	case PinPower:
		return ErrPowerToPower
	case PinGround:
		return ErrGroundToGround
	}
	return nil
}

// InsertWire adds a fully specified wire, as read from a file. Endpoints must
// exist; pin kinds are not checked.
func (g *Graph) InsertWire(w Wire) error {
	if w.ID == "" {
		return errors.New("wire with empty id")
	}
	if _, ok := g.wires[w.ID]; ok {
		return fmt.Errorf("wire %q: %w", w.ID, ErrDuplicateID)
	}
	if w.FromComponentID == w.ToComponentID && w.FromPinID == w.ToPinID {
		return fmt.Errorf("wire %q: %w", w.ID, ErrSelfLoop)
	}
	if _, err := g.PinKind(w.FromComponentID, w.FromPinID); err != nil {
		return fmt.Errorf("wire %q: %w", w.ID, err)
	}
	if _, err := g.PinKind(w.ToComponentID, w.ToPinID); err != nil {
		return fmt.Errorf("wire %q: %w", w.ID, err)
	}
	w.seq = g.nextSeq()
	g.wires[w.ID] = &w
	g.emit(ChangeWireAdd, w.ID)
	return nil
}

// DeleteWire removes a wire. Unknown ids are ignored.
func (g *Graph) DeleteWire(id string) {
	if _, ok := g.wires[id]; !ok {
		return
	}
	delete(g.wires, id)
	g.emit(ChangeWireDelete, id)
}

// PinWorldPosition returns the world position of a pin, taking the
// component's rotation into account. The zero point and false are returned
// when the component or pin does not exist.
func (g *Graph) PinWorldPosition(componentID, pinID string) (Point, bool) {
	c, ok := g.components[componentID]
	if !ok {
		return Point{}, false
	}
	spec := c.Spec()
	p, ok := spec.Pin(pinID)
	if !ok {
		return Point{}, false
	}
	ox, oy := rotateOffset(p.OffsetX, p.OffsetY, spec.Width, spec.Height, c.Rotation)
	return Point{X: c.X + ox, Y: c.Y + oy}, true
}

// rotateOffset rotates a pin offset clockwise inside a w x h box so that the
// rotated box keeps its top-left corner at the origin.
func rotateOffset(ox, oy, w, h float64, rotation int) (float64, float64) {
	switch rotation {
	case 90:
		return h - oy, ox
	case 180:
		return w - ox, h - oy
	case 270:
		return oy, w - ox
	}
	return ox, oy
}

// WiresTouching returns every wire with an endpoint on the component, in
// creation order.
func (g *Graph) WiresTouching(componentID string) []Wire {
	var out []Wire
	for _, w := range g.Wires() {
		if w.Touches(componentID) {
			out = append(out, w)
		}
	}
	return out
}

// Component returns a copy of the component with the given id.
func (g *Graph) Component(id string) (Component, bool) {
	c, ok := g.components[id]
	if !ok {
		return Component{}, false
	}
	return *c, true
}

// Wire returns a copy of the wire with the given id.
func (g *Graph) Wire(id string) (Wire, bool) {
	w, ok := g.wires[id]
	if !ok {
		return Wire{}, false
	}
	return *w, true
}

// Components returns copies of all components in creation order.
func (g *Graph) Components() []Component {
	out := make([]Component, 0, len(g.components))
	for _, c := range g.components {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Wires returns copies of all wires in creation order.
func (g *Graph) Wires() []Wire {
	out := make([]Wire, 0, len(g.wires))
	for _, w := range g.wires {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// OfType returns the components of type t in creation order.
func (g *Graph) OfType(t ComponentType) []Component {
	var out []Component
	for _, c := range g.Components() {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// FirstOfType returns the earliest placed component of type t.
func (g *Graph) FirstOfType(t ComponentType) (Component, bool) {
	all := g.OfType(t)
	if len(all) == 0 {
		return Component{}, false
	}
	return all[0], true
}

// Len returns the number of components.
func (g *Graph) Len() int { return len(g.components) }

// WireCount returns the number of wires.
func (g *Graph) WireCount() int { return len(g.wires) }

// IsEmpty reports whether the graph has no components.
func (g *Graph) IsEmpty() bool { return len(g.components) == 0 }

// Select marks a component as selected. Unknown ids clear the selection.
func (g *Graph) Select(id string) {
	if _, ok := g.components[id]; !ok {
		id = ""
	}
	g.selected = id
}

// Selected returns the selected component id, or "".
func (g *Graph) Selected() string { return g.selected }

// ClearSelection deselects everything.
func (g *Graph) ClearSelection() { g.selected = "" }

// Clone returns a deep copy of the graph's components and wires. Listeners
// are not copied.
func (g *Graph) Clone() *Graph {
	out := NewGraph()
	out.newID = g.newID
	out.seq = g.seq
	out.selected = g.selected
	for id, c := range g.components {
		cc := *c
		out.components[id] = &cc
	}
	for id, w := range g.wires {
		ww := *w
		out.wires[id] = &ww
	}
	return out
}

// Restore replaces the graph contents with a deep copy of from. Listeners
// are kept and receive a single ChangeRestore.
func (g *Graph) Restore(from *Graph) {
	cp := from.Clone()
	g.components = cp.components
	g.wires = cp.wires
	if g.seq < cp.seq {
		g.seq = cp.seq
	}
	if _, ok := g.components[g.selected]; !ok {
		g.selected = ""
	}
	g.emit(ChangeRestore, "")
}

// Clear removes every component and wire.
func (g *Graph) Clear() {
	g.Restore(NewGraph())
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func normalizeRotation(r int) int {
	r %= 360
	if r < 0 {
		r += 360
	}
	return r - r%90
}
