// Package circuitfile reads and writes circuit snapshots in JSON and YAML and
// keeps the auto-save slot.
package circuitfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ha1tch/circuitsim/pkg/circuit"
)

// FormatVersion is written into every exported snapshot.
const FormatVersion = "1.0"

// Snapshot is the persisted form of a circuit graph.
type Snapshot struct {
	Components []ComponentRecord `json:"components" yaml:"components" validate:"required,dive"`
	Wires      []WireRecord      `json:"wires" yaml:"wires" validate:"required,dive"`
	Version    string            `json:"version" yaml:"version"`
	CreatedAt  time.Time         `json:"createdAt" yaml:"createdAt"`
	Name       string            `json:"name,omitempty" yaml:"name,omitempty"`
}

// ComponentRecord is one placed component.
type ComponentRecord struct {
	ID       string         `json:"id" yaml:"id" validate:"required"`
	Type     string         `json:"type" yaml:"type" validate:"required"`
	X        float64        `json:"x" yaml:"x"`
	Y        float64        `json:"y" yaml:"y"`
	Rotation int            `json:"rotation" yaml:"rotation" validate:"oneof=0 90 180 270"`
	State    map[string]any `json:"state,omitempty" yaml:"state,omitempty"`
}

// WireRecord is one wire between two pins.
type WireRecord struct {
	ID              string `json:"id" yaml:"id" validate:"required"`
	FromComponentID string `json:"fromComponentId" yaml:"fromComponentId" validate:"required"`
	FromPinID       string `json:"fromPinId" yaml:"fromPinId" validate:"required"`
	ToComponentID   string `json:"toComponentId" yaml:"toComponentId" validate:"required"`
	ToPinID         string `json:"toPinId" yaml:"toPinId" validate:"required"`
}

// ParseError reports why a snapshot could not be loaded. No graph is
// produced when it is returned.
type ParseError struct {
	Field string // offending field path, if known
	Msg   string
	Err   error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid circuit snapshot")
	if e.Field != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Field)
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

var validate = validator.New()

// Export converts the graph to a snapshot stamped with now.
func Export(g *circuit.Graph, name string, now time.Time) *Snapshot {
	s := &Snapshot{
		Components: make([]ComponentRecord, 0, g.Len()),
		Wires:      make([]WireRecord, 0, g.WireCount()),
		Version:    FormatVersion,
		CreatedAt:  now.UTC(),
		Name:       name,
	}
	for _, c := range g.Components() {
		s.Components = append(s.Components, ComponentRecord{
			ID:       c.ID,
			Type:     string(c.Type),
			X:        c.X,
			Y:        c.Y,
			Rotation: c.Rotation,
			State:    stateMap(c.State),
		})
	}
	for _, w := range g.Wires() {
		s.Wires = append(s.Wires, WireRecord{
			ID:              w.ID,
			FromComponentID: w.FromComponentID,
			FromPinID:       w.FromPinID,
			ToComponentID:   w.ToComponentID,
			ToPinID:         w.ToPinID,
		})
	}
	return s
}

func stateMap(s circuit.State) map[string]any {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

// ToJSON encodes a snapshot as JSON.
func ToJSON(s *Snapshot, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(s, "", "  ")
	}
	return json.Marshal(s)
}

// ToYAML encodes a snapshot as YAML.
func ToYAML(s *Snapshot) ([]byte, error) {
	return yaml.Marshal(s)
}

// ParseJSON decodes and validates a JSON snapshot and builds its graph.
func ParseJSON(data []byte) (*circuit.Graph, *Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, nil, &ParseError{Msg: "malformed JSON", Err: err}
	}
	return build(&s)
}

// ParseYAML decodes and validates a YAML snapshot and builds its graph.
func ParseYAML(data []byte) (*circuit.Graph, *Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, nil, &ParseError{Msg: "malformed YAML", Err: err}
	}
	return build(&s)
}

// build validates the snapshot shape and references and produces a fresh
// graph. It never returns a partial graph.
func build(s *Snapshot) (*circuit.Graph, *Snapshot, error) {
	if err := validate.Struct(s); err != nil {
		return nil, nil, fieldError(err)
	}

	g := circuit.NewGraph()
	for i, rec := range s.Components {
		field := fmt.Sprintf("components[%d]", i)
		typ, err := circuit.ParseType(rec.Type)
		if err != nil {
			return nil, nil, &ParseError{Field: field + ".type", Err: err}
		}
		state, err := decodeState(typ, rec.State)
		if err != nil {
			return nil, nil, &ParseError{Field: field + ".state", Err: err}
		}
		c := circuit.Component{
			ID:       rec.ID,
			Type:     typ,
			X:        rec.X,
			Y:        rec.Y,
			Rotation: rec.Rotation,
			State:    state,
		}
		if err := g.InsertComponent(c); err != nil {
			return nil, nil, &ParseError{Field: field, Err: err}
		}
	}
	for i, rec := range s.Wires {
		w := circuit.Wire{
			ID:              rec.ID,
			FromComponentID: rec.FromComponentID,
			FromPinID:       rec.FromPinID,
			ToComponentID:   rec.ToComponentID,
			ToPinID:         rec.ToPinID,
		}
		if err := g.InsertWire(w); err != nil {
			return nil, nil, &ParseError{Field: fmt.Sprintf("wires[%d]", i), Err: err}
		}
	}
	if s.Version == "" {
		s.Version = FormatVersion
	}
	return g, s, nil
}

func decodeState(t circuit.ComponentType, m map[string]any) (circuit.State, error) {
	if len(m) == 0 {
		return circuit.DefaultState(t), nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	state, err := circuit.DecodeState(t, data)
	if err != nil {
		return nil, err
	}
	if state != nil {
		if err := validate.Struct(state); err != nil {
			return nil, fieldError(err)
		}
	}
	return state, nil
}

// fieldError turns validator output into a ParseError naming the first
// failing field.
func fieldError(err error) *ParseError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ParseError{Err: err}
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		msg = fmt.Sprintf("must be at most %s", fe.Param())
	default:
		msg = "is invalid"
	}
	return &ParseError{Field: fe.Namespace(), Msg: msg}
}
