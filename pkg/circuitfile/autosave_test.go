package circuitfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ha1tch/circuitsim/pkg/circuit"
)

type failingStore struct{}

func (failingStore) Get(string) ([]byte, error) { return nil, errors.New("disk on fire") }
func (failingStore) Put(string, []byte) error   { return errors.New("disk on fire") }

func TestAutoSaverSkipsEmptyGraph(t *testing.T) {
	store := NewMemStore()
	a := NewAutoSaver(store, zap.NewNop())
	now := time.Unix(0, 0)

	g := circuit.NewGraph()
	for i := 0; i < 5; i++ {
		saved, err := a.Tick(now, g)
		require.NoError(t, err)
		assert.False(t, saved)
		now = now.Add(a.Interval)
	}
	_, err := store.Get(DefaultAutosaveKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAutoSaverInterval(t *testing.T) {
	store := NewMemStore()
	a := NewAutoSaver(store, nil)
	start := time.Unix(100, 0)
	g := sampleGraph(t)

	saved, _ := a.Tick(start, g)
	assert.False(t, saved, "first tick starts the clock")
	saved, _ = a.Tick(start.Add(29*time.Second), g)
	assert.False(t, saved)
	saved, err := a.Tick(start.Add(30*time.Second), g)
	require.NoError(t, err)
	assert.True(t, saved)
	saved, _ = a.Tick(start.Add(31*time.Second), g)
	assert.False(t, saved)

	back, notice := LoadAutosave(store, DefaultAutosaveKey)
	assert.Equal(t, project(g), project(back))
	assert.Contains(t, notice, "Restored")
}

func TestAutoSaverWriteFailureIsReported(t *testing.T) {
	a := NewAutoSaver(failingStore{}, zap.NewNop())
	g := sampleGraph(t)
	before := project(g)

	_, _ = a.Tick(time.Unix(0, 0), g)
	saved, err := a.Tick(time.Unix(60, 0), g)
	assert.False(t, saved)
	assert.Error(t, err)
	assert.Equal(t, before, project(g))
}

func TestLoadAutosave(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		g, notice := LoadAutosave(NewMemStore(), DefaultAutosaveKey)
		assert.True(t, g.IsEmpty())
		assert.Empty(t, notice)
	})
	t.Run("corrupt", func(t *testing.T) {
		store := NewMemStore()
		require.NoError(t, store.Put(DefaultAutosaveKey, []byte(`{"components": [{"id":`)))
		var g *circuit.Graph
		var notice string
		assert.NotPanics(t, func() { g, notice = LoadAutosave(store, DefaultAutosaveKey) })
		assert.True(t, g.IsEmpty())
		assert.NotEmpty(t, notice)
	})
	t.Run("unreadable", func(t *testing.T) {
		g, notice := LoadAutosave(failingStore{}, DefaultAutosaveKey)
		assert.True(t, g.IsEmpty())
		assert.Contains(t, notice, "disk on fire")
	})
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := FileStore{Dir: dir}

	_, err := s.Get("slot")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put("slot", []byte("one")))
	require.NoError(t, s.Put("slot", []byte("two")))
	data, err := s.Get("slot")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")

	for _, key := range []string{"", "../escape", `a\b`, ".."} {
		assert.Error(t, s.Put(key, nil), key)
	}
}

func TestMemStoreCopies(t *testing.T) {
	s := NewMemStore()
	buf := []byte("abc")
	require.NoError(t, s.Put("k", buf))
	buf[0] = 'x'
	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
