// Package sim validates a circuit graph and derives a simplified running
// state from it.
//
// The engine is a rule-based heuristic, not an electrical solver: each rule
// inspects the first component of one type and the wires touching it. Rules
// run in a fixed priority order and the first failing rule decides the
// result.
package sim

import (
	"go.uber.org/zap"

	"github.com/ha1tch/circuitsim/pkg/circuit"
)

// Status is the outcome of an evaluation.
type Status string

const (
	StatusRunning Status = "running"
	StatusError   Status = "error"
)

// Level is the displayed level of a controller pin.
type Level string

const (
	LevelHigh   Level = "HIGH"
	LevelLow    Level = "LOW"
	LevelAnalog Level = "ANALOG"
)

// Hint is the per-component visual state the render surface consumes.
type Hint struct {
	Lit        bool
	Active     bool
	Color      *circuit.RGBLEDState
	Lines      []string
	Angle      float64
	Reading    int
	HasReading bool
}

// PinReading is one row of the pin monitor.
type PinReading struct {
	ComponentID string
	PinID       string
	Name        string
	Level       Level
	Value       int
}

// Result is the outcome of evaluating a graph.
type Result struct {
	Status  Status
	Message string
	Rule    string
	Hints   map[string]Hint
	Pins    []PinReading
	Serial  []string
}

// Running reports whether the circuit evaluated successfully.
func (r Result) Running() bool { return r.Status == StatusRunning }

// Hint returns the hint for a component, if any.
func (r Result) Hint(id string) (Hint, bool) {
	h, ok := r.Hints[id]
	return h, ok
}

// Verdict is what a single rule reports about the graph.
type Verdict struct {
	OK      bool
	Message string
	Hints   map[string]Hint
	Pins    []PinReading
	Serial  []string
}

// Rule checks one component type. Check returns applies=false when the rule
// has nothing to say about the graph.
type Rule interface {
	Name() string
	Check(g *circuit.Graph) (v Verdict, applies bool)
}

// MsgNoComponents is reported when no rule applies.
const MsgNoComponents = "Add components to your breadboard to start testing!"

// Engine runs an ordered list of rules.
type Engine struct {
	rules  []Rule
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRules replaces the default rule list.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) { e.rules = rules }
}

// NewEngine creates an engine with the default rules.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules:  DefaultRules(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the engine's rule names in evaluation order.
func (e *Engine) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name()
	}
	return names
}

// Evaluate runs every applicable rule in order. The first failing rule
// short-circuits with an error result. If every applicable rule passes the
// result is running, carries the first passing rule's message and merges all
// hints.
func (e *Engine) Evaluate(g *circuit.Graph) Result {
	res := Result{Hints: make(map[string]Hint)}
	for _, rule := range e.rules {
		v, applies := rule.Check(g)
		if !applies {
			continue
		}
		e.logger.Debug("rule evaluated",
			zap.String("rule", rule.Name()),
			zap.Bool("ok", v.OK),
			zap.String("message", v.Message),
		)
		if !v.OK {
			return Result{
				Status:  StatusError,
				Message: v.Message,
				Rule:    rule.Name(),
				Hints:   map[string]Hint{},
			}
		}
		if res.Rule == "" {
			res.Rule = rule.Name()
			res.Message = v.Message
		}
		for id, h := range v.Hints {
			res.Hints[id] = h
		}
		res.Pins = append(res.Pins, v.Pins...)
		res.Serial = append(res.Serial, v.Serial...)
	}
	if res.Rule == "" {
		return Result{Status: StatusError, Message: MsgNoComponents, Hints: map[string]Hint{}}
	}
	res.Status = StatusRunning
	return res
}

// Evaluate runs the default rules against g.
func Evaluate(g *circuit.Graph) Result {
	return defaultEngine.Evaluate(g)
}

var defaultEngine = NewEngine()
