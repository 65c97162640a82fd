// Package history keeps a bounded linear undo/redo history of circuit graph
// snapshots.
package history

import (
	"github.com/ha1tch/circuitsim/pkg/circuit"
)

// DefaultCapacity is the number of snapshots kept before the oldest is
// evicted.
const DefaultCapacity = 20

// Manager is a ring of graph snapshots with a cursor. The entry under the
// cursor is the state currently shown; entries after it are the redo future.
// Every stored and returned graph is an independent deep copy.
type Manager struct {
	entries  []*circuit.Graph
	cursor   int
	capacity int
}

// New creates a manager holding at most capacity snapshots. Values below 2
// are raised to 2 so a single undo is always possible.
func New(capacity int) *Manager {
	if capacity < 2 {
		capacity = 2
	}
	return &Manager{capacity: capacity, cursor: -1}
}

// Reset discards the history and records g as the only entry.
func (m *Manager) Reset(g *circuit.Graph) {
	m.entries = []*circuit.Graph{g.Clone()}
	m.cursor = 0
}

// Push records g after a settled change. Any redo future is dropped and the
// oldest entry is evicted once the capacity is exceeded.
func (m *Manager) Push(g *circuit.Graph) {
	m.entries = append(m.entries[:m.cursor+1], g.Clone())
	if over := len(m.entries) - m.capacity; over > 0 {
		for i := 0; i < over; i++ {
			m.entries[i] = nil
		}
		m.entries = m.entries[over:]
	}
	m.cursor = len(m.entries) - 1
}

// Undo moves the cursor back and returns a copy of that snapshot. It returns
// false at the oldest entry.
func (m *Manager) Undo() (*circuit.Graph, bool) {
	if !m.CanUndo() {
		return nil, false
	}
	m.cursor--
	return m.entries[m.cursor].Clone(), true
}

// Redo moves the cursor forward and returns a copy of that snapshot. It
// returns false when there is no future.
func (m *Manager) Redo() (*circuit.Graph, bool) {
	if !m.CanRedo() {
		return nil, false
	}
	m.cursor++
	return m.entries[m.cursor].Clone(), true
}

// CanUndo reports whether Undo would succeed.
func (m *Manager) CanUndo() bool { return m.cursor > 0 }

// CanRedo reports whether Redo would succeed.
func (m *Manager) CanRedo() bool { return m.cursor >= 0 && m.cursor < len(m.entries)-1 }

// Len returns the number of stored snapshots.
func (m *Manager) Len() int { return len(m.entries) }

// Capacity returns the maximum number of stored snapshots.
func (m *Manager) Capacity() int { return m.capacity }
