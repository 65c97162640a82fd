package circuitfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ha1tch/circuitsim/pkg/circuit"
)

// Auto-save defaults.
const (
	DefaultAutosaveKey      = "circuitsim.autosave"
	DefaultAutosaveInterval = 30 * time.Second
)

// ErrNotFound is returned by a Store when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Store is a keyed slot for serialized snapshots.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
}

// FileStore keeps one file per key under Dir.
type FileStore struct {
	Dir string
}

func (s FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid store key %q", key)
	}
	return filepath.Join(s.Dir, key+".json"), nil
}

// Get reads the slot for key.
func (s FileStore) Get(key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Put replaces the slot for key. The write goes through a temporary file so
// a crash never leaves a truncated slot behind.
func (s FileStore) Put(key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// MemStore is an in-memory Store.
type MemStore struct {
	mu    sync.Mutex
	slots map[string][]byte
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{slots: make(map[string][]byte)}
}

func (s *MemStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemStore) Put(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = append([]byte(nil), data...)
	return nil
}

// AutoSaver writes the graph to a Store at a fixed interval. It is polled
// from the event loop and owns no timer.
type AutoSaver struct {
	Store    Store
	Key      string
	Interval time.Duration
	Logger   *zap.Logger

	last    time.Time
	started bool
}

// NewAutoSaver creates an auto-saver with the default key and interval.
func NewAutoSaver(store Store, logger *zap.Logger) *AutoSaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoSaver{
		Store:    store,
		Key:      DefaultAutosaveKey,
		Interval: DefaultAutosaveInterval,
		Logger:   logger,
	}
}

// Tick saves g when the interval has elapsed since the last save and g is
// not empty. The first call only starts the clock. A write failure is
// returned for the caller to surface as a warning; the graph is untouched.
func (a *AutoSaver) Tick(now time.Time, g *circuit.Graph) (saved bool, err error) {
	if !a.started {
		a.started = true
		a.last = now
		return false, nil
	}
	if now.Sub(a.last) < a.interval() {
		return false, nil
	}
	a.last = now
	if g.IsEmpty() {
		return false, nil
	}
	if err := a.Save(now, g); err != nil {
		return false, err
	}
	return true, nil
}

// Save writes g to the slot immediately.
func (a *AutoSaver) Save(now time.Time, g *circuit.Graph) error {
	data, err := ToJSON(Export(g, "", now), false)
	if err != nil {
		return fmt.Errorf("auto-save: %w", err)
	}
	if err := a.Store.Put(a.key(), data); err != nil {
		a.logger().Warn("auto-save failed", zap.String("key", a.key()), zap.Error(err))
		return fmt.Errorf("auto-save: %w", err)
	}
	a.logger().Debug("auto-saved",
		zap.String("key", a.key()),
		zap.Int("components", g.Len()),
		zap.Int("wires", g.WireCount()),
	)
	return nil
}

func (a *AutoSaver) interval() time.Duration {
	if a.Interval <= 0 {
		return DefaultAutosaveInterval
	}
	return a.Interval
}

func (a *AutoSaver) key() string {
	if a.Key == "" {
		return DefaultAutosaveKey
	}
	return a.Key
}

func (a *AutoSaver) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// LoadAutosave reads the auto-save slot. An absent slot yields an empty graph
// and no notice; an unreadable or corrupt slot yields an empty graph and a
// one-line notice.
func LoadAutosave(store Store, key string) (*circuit.Graph, string) {
	data, err := store.Get(key)
	if errors.Is(err, ErrNotFound) {
		return circuit.NewGraph(), ""
	}
	if err != nil {
		return circuit.NewGraph(), fmt.Sprintf("Could not read auto-save: %v", err)
	}
	g, _, err := ParseJSON(data)
	if err != nil {
		return circuit.NewGraph(), "Auto-save was unreadable and has been ignored"
	}
	if g.IsEmpty() {
		return g, ""
	}
	return g, fmt.Sprintf("Restored auto-saved circuit (%d components, %d wires)", g.Len(), g.WireCount())
}
