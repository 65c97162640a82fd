package editor

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ha1tch/circuitsim/pkg/circuit"
	"github.com/ha1tch/circuitsim/pkg/circuitfile"
	"github.com/ha1tch/circuitsim/pkg/history"
	"github.com/ha1tch/circuitsim/pkg/render"
	"github.com/ha1tch/circuitsim/pkg/sim"
)

// Notifier shows a one-line message to the user.
type Notifier func(msg string, kind MessageType)

// Options configures a Session. Zero values select the defaults.
type Options struct {
	HistoryDepth     int
	HistoryDelay     time.Duration
	AutosaveInterval time.Duration
	AutosaveKey      string
	Store            circuitfile.Store // nil disables auto-save
	Engine           *sim.Engine
	Logger           *zap.Logger
	Now              func() time.Time
}

type importResult struct {
	ticket uint64
	path   string
	graph  *circuit.Graph
	snap   *circuitfile.Snapshot
	err    error
}

// Session owns the live graph and everything that reacts to it: the
// controller, undo history, auto-save, the last evaluation and pending file
// imports. All methods must be called from the event loop.
type Session struct {
	graph      *circuit.Graph
	controller *Controller
	history    *history.Manager
	debounce   history.Debouncer
	autosave   *circuitfile.AutoSaver
	engine     *sim.Engine
	result     sim.Result
	notify     Notifier
	logger     *zap.Logger
	now        func() time.Time

	path      string
	name      string
	modified  bool
	restoring bool

	imports      chan importResult
	importTicket uint64
	cancelImport context.CancelFunc
}

// NewSession creates a session with an empty graph.
func NewSession(opts Options, notify Notifier) *Session {
	if opts.HistoryDepth <= 0 {
		opts.HistoryDepth = history.DefaultCapacity
	}
	if opts.HistoryDelay <= 0 {
		opts.HistoryDelay = history.DefaultDelay
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Engine == nil {
		opts.Engine = sim.NewEngine(sim.WithLogger(opts.Logger))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if notify == nil {
		notify = func(string, MessageType) {}
	}

	s := &Session{
		graph:    circuit.NewGraph(),
		history:  history.New(opts.HistoryDepth),
		debounce: history.Debouncer{Delay: opts.HistoryDelay},
		engine:   opts.Engine,
		notify:   notify,
		logger:   opts.Logger,
		now:      opts.Now,
		imports:  make(chan importResult, 4),
	}
	if opts.Store != nil {
		s.autosave = circuitfile.NewAutoSaver(opts.Store, opts.Logger)
		if opts.AutosaveKey != "" {
			s.autosave.Key = opts.AutosaveKey
		}
		if opts.AutosaveInterval > 0 {
			s.autosave.Interval = opts.AutosaveInterval
		}
	}
	s.controller = NewController(s.graph, s)
	s.history.Reset(s.graph)
	s.graph.OnChange(s.changed)
	return s
}

// changed runs after every graph mutation.
func (s *Session) changed(ch circuit.Change) {
	s.result = sim.Result{}
	if s.restoring {
		return
	}
	s.modified = true
	s.debounce.Touch(s.now())
}

// Graph returns the live graph.
func (s *Session) Graph() *circuit.Graph { return s.graph }

// Controller returns the interaction controller.
func (s *Session) Controller() *Controller { return s.controller }

// Result returns the last evaluation. Any change to the graph clears it.
func (s *Session) Result() sim.Result { return s.result }

// Path returns the file the session was loaded from or saved to.
func (s *Session) Path() string { return s.path }

// Name returns the circuit name.
func (s *Session) Name() string { return s.name }

// Modified reports whether the graph changed since it was last loaded or
// saved.
func (s *Session) Modified() bool { return s.modified }

// Scene projects the current state for drawing.
func (s *Session) Scene() render.Scene {
	return render.Render(s.graph, s.result, s.controller.View(), s.controller.Interaction())
}

// Panels returns the pin and serial monitor content.
func (s *Session) Panels() render.Panel {
	return render.Panels(s.graph, s.result)
}

// Notify forwards a message to the UI.
func (s *Session) Notify(msg string, kind MessageType) {
	s.notify(msg, kind)
}

// AddComponent places a component of type t at a screen position.
func (s *Session) AddComponent(t circuit.ComponentType, screen circuit.Point) string {
	p := s.controller.View().ScreenToWorld(screen)
	id := s.graph.AddComponent(t, p)
	s.graph.Select(id)
	s.logger.Debug("component added", zap.String("id", id), zap.String("type", string(t)))
	return id
}

// Evaluate runs the engine and reports its message.
func (s *Session) Evaluate() sim.Result {
	s.result = s.engine.Evaluate(s.graph)
	kind := MsgSuccess
	if !s.result.Running() {
		kind = MsgError
	}
	s.notify(s.result.Message, kind)
	s.logger.Info("circuit evaluated",
		zap.String("status", string(s.result.Status)),
		zap.String("rule", s.result.Rule),
	)
	return s.result
}

// StopSimulation clears the last evaluation.
func (s *Session) StopSimulation() {
	s.result = sim.Result{}
}

// commitPending records a debounced change that has not settled yet.
func (s *Session) commitPending() {
	if s.debounce.Pending() {
		s.debounce.Cancel()
		s.history.Push(s.graph)
	}
}

// Undo restores the previous history entry.
func (s *Session) Undo() {
	s.commitPending()
	g, ok := s.history.Undo()
	if !ok {
		s.notify("Nothing to undo", MsgInfo)
		return
	}
	s.replace(g)
	s.modified = true
	s.notify("Undo", MsgInfo)
}

// Redo restores the next history entry.
func (s *Session) Redo() {
	s.commitPending()
	g, ok := s.history.Redo()
	if !ok {
		s.notify("Nothing to redo", MsgInfo)
		return
	}
	s.replace(g)
	s.modified = true
	s.notify("Redo", MsgInfo)
}

// replace swaps the graph contents without touching history.
func (s *Session) replace(g *circuit.Graph) {
	s.restoring = true
	s.graph.Restore(g)
	s.restoring = false
	s.controller.Reset()
}

// Clear empties the board. The previous content stays reachable through
// undo.
func (s *Session) Clear() {
	s.commitPending()
	s.replace(circuit.NewGraph())
	s.history.Push(s.graph)
	s.modified = true
	s.notify("Board cleared", MsgInfo)
}

// Tick is called periodically from the event loop. It settles debounced
// history, runs auto-save and applies a finished import. It reports whether
// the display needs a redraw.
func (s *Session) Tick(now time.Time) bool {
	redraw := false
	if s.debounce.Due(now) {
		s.history.Push(s.graph)
		s.logger.Debug("history entry recorded", zap.Int("entries", s.history.Len()))
	}

	if s.autosave != nil {
		if _, err := s.autosave.Tick(now, s.graph); err != nil {
			s.notify(fmt.Sprintf("Auto-save failed: %v", err), MsgWarning)
			redraw = true
		}
	}

	for {
		select {
		case r := <-s.imports:
			if s.applyImport(r) {
				redraw = true
			}
			continue
		default:
		}
		break
	}
	return redraw
}

// Import reads and parses path off the event loop. The result is applied by
// a later Tick; a newer Import supersedes an older one still in flight.
func (s *Session) Import(path string) {
	if s.cancelImport != nil {
		s.cancelImport()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelImport = cancel
	s.importTicket++
	ticket := s.importTicket

	go func() {
		r := importResult{ticket: ticket, path: path}
		r.graph, r.snap, r.err = readSnapshot(ctx, path)
		select {
		case s.imports <- r:
		case <-ctx.Done():
		}
	}()
}

func readSnapshot(ctx context.Context, path string) (*circuit.Graph, *circuitfile.Snapshot, error) {
	format, err := circuitfile.FormatFor(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return circuitfile.Decode(data, format)
}

// applyImport swaps in a parsed graph if it is the latest request. A failed
// import leaves the graph untouched.
func (s *Session) applyImport(r importResult) bool {
	if r.ticket != s.importTicket {
		s.logger.Debug("stale import dropped", zap.String("path", r.path))
		return false
	}
	if r.err != nil {
		s.logger.Warn("import failed", zap.String("path", r.path), zap.Error(r.err))
		s.notify(fmt.Sprintf("Import failed: %v", r.err), MsgError)
		return true
	}

	s.commitPending()
	s.replace(r.graph)
	s.history.Push(s.graph)
	s.path = r.path
	s.name = r.snap.Name
	if s.name == "" {
		s.name = circuitfile.NameFromPath(r.path)
	}
	s.modified = false
	s.logger.Info("circuit imported",
		zap.String("path", r.path),
		zap.Int("components", s.graph.Len()),
		zap.Int("wires", s.graph.WireCount()),
	)
	s.notify(fmt.Sprintf("Loaded %s (%d components, %d wires)", r.path, s.graph.Len(), s.graph.WireCount()), MsgSuccess)
	return true
}

// LoadGraph replaces the graph synchronously, for startup.
func (s *Session) LoadGraph(g *circuit.Graph, path, name string) {
	s.replace(g)
	s.history.Reset(s.graph)
	s.debounce.Cancel()
	s.path = path
	s.name = name
	s.modified = false
}

// RestoreAutosave loads the auto-save slot if one is configured.
func (s *Session) RestoreAutosave() {
	if s.autosave == nil {
		return
	}
	g, notice := circuitfile.LoadAutosave(s.autosave.Store, s.autosave.Key)
	s.LoadGraph(g, "", "")
	if notice != "" {
		kind := MsgInfo
		if g.IsEmpty() {
			kind = MsgWarning
		}
		s.notify(notice, kind)
	}
}

// Export writes the graph to path in the format its extension names.
func (s *Session) Export(path string) error {
	name := s.name
	if name == "" {
		name = circuitfile.NameFromPath(path)
	}
	if err := circuitfile.WriteFile(path, s.graph, name); err != nil {
		s.logger.Warn("export failed", zap.String("path", path), zap.Error(err))
		return err
	}
	s.path = path
	s.name = name
	s.modified = false
	s.logger.Info("circuit exported", zap.String("path", path))
	return nil
}

// Close cancels a pending import and writes a final auto-save.
func (s *Session) Close() {
	if s.cancelImport != nil {
		s.cancelImport()
		s.cancelImport = nil
	}
	if s.autosave != nil && !s.graph.IsEmpty() {
		if err := s.autosave.Save(s.now(), s.graph); err != nil {
			s.logger.Warn("final auto-save failed", zap.Error(err))
		}
	}
}
