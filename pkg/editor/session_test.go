package editor

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/circuitsim/pkg/circuit"
	"github.com/ha1tch/circuitsim/pkg/circuitfile"
	"github.com/ha1tch/circuitsim/pkg/sim"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) time.Time {
	c.t = c.t.Add(d)
	return c.t
}

type recorder struct{ notices []notice }

func (r *recorder) notify(msg string, kind MessageType) {
	r.notices = append(r.notices, notice{msg, kind})
}

func (r *recorder) last() notice {
	if len(r.notices) == 0 {
		return notice{}
	}
	return r.notices[len(r.notices)-1]
}

type failingStore struct{}

func (failingStore) Get(string) ([]byte, error) { return nil, errors.New("disk on fire") }
func (failingStore) Put(string, []byte) error   { return errors.New("disk on fire") }

func newTestSession(t *testing.T, store circuitfile.Store) (*Session, *clock, *recorder) {
	t.Helper()
	clk := &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	s := NewSession(Options{Store: store, Now: clk.now}, rec.notify)
	return s, clk, rec
}

// waitFor ticks the session until cond holds or the deadline passes.
func waitFor(t *testing.T, s *Session, clk *clock, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.Tick(clk.now())
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}

func writeCircuit(t *testing.T, path string, components int) {
	t.Helper()
	g := circuit.NewGraph()
	for i := 0; i < components; i++ {
		g.AddComponent(circuit.TypeLED, circuit.Point{X: float64(i) * 60})
	}
	require.NoError(t, circuitfile.WriteFile(path, g, ""))
}

func TestSessionDebouncedHistory(t *testing.T) {
	s, clk, rec := newTestSession(t, nil)

	s.Undo()
	assert.Equal(t, notice{"Nothing to undo", MsgInfo}, rec.last())

	s.AddComponent(circuit.TypeLED, circuit.Point{X: 10, Y: 10})
	assert.True(t, s.Modified())

	s.Tick(clk.advance(100 * time.Millisecond))
	s.Tick(clk.advance(600 * time.Millisecond))

	s.Undo()
	assert.True(t, s.Graph().IsEmpty())
	assert.Equal(t, notice{"Undo", MsgInfo}, rec.last())

	s.Redo()
	assert.Equal(t, 1, s.Graph().Len())
	s.Redo()
	assert.Equal(t, notice{"Nothing to redo", MsgInfo}, rec.last())
}

func TestSessionBurstIsOneHistoryStep(t *testing.T) {
	s, clk, _ := newTestSession(t, nil)
	id := s.AddComponent(circuit.TypeLED, circuit.Point{})
	for i := 0; i < 10; i++ {
		clk.advance(50 * time.Millisecond)
		s.Graph().MoveComponent(id, float64(i*10), 0)
		s.Tick(clk.now())
	}
	s.Tick(clk.advance(time.Second))

	s.Undo()
	assert.True(t, s.Graph().IsEmpty(), "the whole burst undoes at once")
}

func TestSessionUndoFlushesPendingChange(t *testing.T) {
	s, _, _ := newTestSession(t, nil)
	s.AddComponent(circuit.TypeLED, circuit.Point{})
	s.AddComponent(circuit.TypeButton, circuit.Point{})

	s.Undo()
	assert.True(t, s.Graph().IsEmpty())
	s.Redo()
	assert.Equal(t, 2, s.Graph().Len())
}

func TestSessionUndoResetsController(t *testing.T) {
	s, clk, _ := newTestSession(t, nil)
	led := s.AddComponent(circuit.TypeLED, circuit.Point{X: 100, Y: 100})
	s.Tick(clk.advance(time.Second))

	p, _ := s.Graph().PinWorldPosition(led, "anode")
	s.Controller().PointerDown(PointerEvent{X: p.X, Y: p.Y, Button: ButtonLeft})
	require.Equal(t, ModeDrawingWire, s.Controller().Mode())

	s.Controller().Key(KeyEvent{Key: KeyRune, Rune: 'z', Mods: ModCtrl})
	assert.Equal(t, ModeIdle, s.Controller().Mode())
	assert.True(t, s.Graph().IsEmpty())
}

func TestSessionEvaluateAndStaleResult(t *testing.T) {
	s, _, rec := newTestSession(t, nil)

	res := s.Evaluate()
	assert.Equal(t, sim.StatusError, res.Status)
	assert.Equal(t, notice{sim.MsgNoController, MsgError}, rec.last())

	g := s.Graph()
	board := g.AddComponent(circuit.TypeArduinoUno, circuit.Point{X: 100, Y: 100})
	led := g.AddComponent(circuit.TypeLED, circuit.Point{X: 400, Y: 100})
	r := g.AddComponent(circuit.TypeResistor, circuit.Point{X: 400, Y: 300})
	_, err := g.AddWire(board, "pin_13", led, "anode")
	require.NoError(t, err)
	_, err = g.AddWire(led, "cathode", board, "gnd_1")
	require.NoError(t, err)
	_, err = g.AddWire(r, "t1", board, "pin_12")
	require.NoError(t, err)

	res = s.Evaluate()
	require.True(t, res.Running())
	assert.Equal(t, MsgSuccess, rec.last().kind)
	hint, ok := s.Result().Hint(led)
	require.True(t, ok)
	assert.True(t, hint.Lit)
	assert.NotEmpty(t, s.Panels().Serial)

	g.MoveComponent(led, 420, 100)
	assert.Equal(t, sim.Status(""), s.Result().Status, "any edit clears the last result")

	s.Evaluate()
	s.StopSimulation()
	assert.False(t, s.Result().Running())
}

func TestSessionImportLatestWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.yaml")
	writeCircuit(t, first, 1)
	writeCircuit(t, second, 3)

	s, clk, rec := newTestSession(t, nil)
	s.Import(first)
	s.Import(second)
	waitFor(t, s, clk, func() bool { return s.Path() == second })

	for i := 0; i < 5; i++ {
		s.Tick(clk.now())
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, second, s.Path())
	assert.Equal(t, 3, s.Graph().Len())
	assert.Equal(t, "second", s.Name())
	assert.False(t, s.Modified())
	assert.Equal(t, MsgSuccess, rec.last().kind)

	// The import is one undoable step.
	s.Undo()
	assert.True(t, s.Graph().IsEmpty())
}

func TestSessionFailedImportKeepsGraph(t *testing.T) {
	dir := t.TempDir()
	s, clk, rec := newTestSession(t, nil)
	s.AddComponent(circuit.TypeBuzzer, circuit.Point{})

	s.Import(filepath.Join(dir, "missing.json"))
	waitFor(t, s, clk, func() bool { return len(rec.notices) > 0 })

	assert.Equal(t, MsgError, rec.last().kind)
	assert.Contains(t, rec.last().msg, "Import failed")
	assert.Equal(t, 1, s.Graph().Len())
	assert.Empty(t, s.Path())
}

func TestSessionExport(t *testing.T) {
	dir := t.TempDir()
	s, _, _ := newTestSession(t, nil)
	s.AddComponent(circuit.TypePotentiometer, circuit.Point{})

	path := filepath.Join(dir, "knob.yaml")
	require.NoError(t, s.Export(path))
	assert.False(t, s.Modified())
	assert.Equal(t, "knob", s.Name())

	g, snap, err := circuitfile.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, "knob", snap.Name)

	assert.Error(t, s.Export(filepath.Join(dir, "knob.txt")))
}

func TestSessionAutosaveAndRestore(t *testing.T) {
	store := circuitfile.NewMemStore()
	s, clk, _ := newTestSession(t, store)

	s.Tick(clk.now())
	s.AddComponent(circuit.TypeServo, circuit.Point{})
	s.Tick(clk.advance(31 * time.Second))

	s2, _, rec := newTestSession(t, store)
	s2.RestoreAutosave()
	assert.Equal(t, 1, s2.Graph().Len())
	assert.Equal(t, MsgInfo, rec.last().kind)
	assert.Contains(t, rec.last().msg, "Restored auto-saved circuit")
	assert.False(t, s2.Modified())

	s2.Undo()
	assert.Equal(t, 1, s2.Graph().Len(), "a restored graph is the oldest history entry")
}

func TestSessionAutosaveFailureWarns(t *testing.T) {
	s, clk, rec := newTestSession(t, failingStore{})
	s.Tick(clk.now())
	s.AddComponent(circuit.TypeLED, circuit.Point{})
	assert.True(t, s.Tick(clk.advance(31*time.Second)))

	assert.Equal(t, MsgWarning, rec.last().kind)
	assert.Contains(t, rec.last().msg, "disk on fire")
	assert.Equal(t, 1, s.Graph().Len())

	s.RestoreAutosave()
	assert.Equal(t, MsgWarning, rec.last().kind)
	assert.Contains(t, rec.last().msg, "Could not read auto-save")
}

func TestSessionCloseSavesNonEmptyGraph(t *testing.T) {
	store := circuitfile.NewMemStore()
	s, _, _ := newTestSession(t, store)
	s.Close()
	_, err := store.Get(circuitfile.DefaultAutosaveKey)
	assert.ErrorIs(t, err, circuitfile.ErrNotFound)

	s.AddComponent(circuit.TypeLED, circuit.Point{})
	s.Close()
	data, err := store.Get(circuitfile.DefaultAutosaveKey)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestSessionClear(t *testing.T) {
	s, _, rec := newTestSession(t, nil)
	s.AddComponent(circuit.TypeLED, circuit.Point{})
	s.Clear()
	assert.True(t, s.Graph().IsEmpty())
	assert.Equal(t, "Board cleared", rec.last().msg)

	s.Undo()
	assert.Equal(t, 1, s.Graph().Len())
}
