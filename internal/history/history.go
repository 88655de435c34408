// Package history keeps a linear undo/redo sequence of whole-content
// snapshots for one editing session.
package history

import "time"

// DefaultMaxSize is the number of snapshots kept when no size is given.
const DefaultMaxSize = 50

// State is one content snapshot.
type State struct {
	Content   string
	Timestamp time.Time
}

// Manager is an append-only sequence of snapshots with a cursor.
//
// Manager does not deduplicate consecutive identical snapshots; callers
// compare against Current before calling AddState. It is not safe for
// concurrent use.
type Manager struct {
	states  []State
	index   int // position of the current state, -1 when empty
	maxSize int
	now     func() time.Time
}

// New creates a Manager keeping at most maxSize snapshots.
// A non-positive maxSize selects DefaultMaxSize.
func New(maxSize int) *Manager {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Manager{index: -1, maxSize: maxSize, now: time.Now}
}

// AddState appends content as the newest snapshot. Any states after the
// cursor (the redo branch) are discarded first. When the sequence grows past
// the maximum size the oldest states are dropped.
func (m *Manager) AddState(content string) {
	m.states = append(m.states[:m.index+1], State{Content: content, Timestamp: m.now()})
	m.index = len(m.states) - 1

	if over := len(m.states) - m.maxSize; over > 0 {
		m.states = append([]State(nil), m.states[over:]...)
		m.index -= over
	}
}

// Undo moves the cursor back one state and returns it. ok is false when
// there is nothing to undo; the cursor is then unchanged.
func (m *Manager) Undo() (State, bool) {
	if !m.CanUndo() {
		return State{}, false
	}
	m.index--
	return m.states[m.index], true
}

// Redo moves the cursor forward one state and returns it. ok is false when
// there is nothing to redo.
func (m *Manager) Redo() (State, bool) {
	if !m.CanRedo() {
		return State{}, false
	}
	m.index++
	return m.states[m.index], true
}

func (m *Manager) CanUndo() bool {
	return m.index > 0
}

func (m *Manager) CanRedo() bool {
	return m.index < len(m.states)-1
}

// Current returns the state under the cursor.
func (m *Manager) Current() (State, bool) {
	if m.index < 0 {
		return State{}, false
	}
	return m.states[m.index], true
}

// Len returns the number of retained snapshots.
func (m *Manager) Len() int {
	return len(m.states)
}

// Clear drops every snapshot.
func (m *Manager) Clear() {
	m.states = nil
	m.index = -1
}
