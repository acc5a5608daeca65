// Package history implements a bounded undo/redo stack of immutable snapshots.
package history

import "time"

const (
	// DefaultDepth bounds the undo stack.
	DefaultDepth = 50
	// DefaultWindow is how long consecutive edits with the same key keep
	// collapsing into one entry.
	DefaultWindow = time.Second
)

// Option configures a Manager.
type Option func(*config)

type config struct {
	depth  int
	window time.Duration
	now    func() time.Time
}

// WithDepth bounds the number of undo entries. Values below 1 are ignored.
func WithDepth(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.depth = n
		}
	}
}

// WithWindow sets the coalescing window.
func WithWindow(d time.Duration) Option {
	return func(c *config) {
		c.window = d
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// Manager keeps past, present and future states. States are stored as given;
// callers must hand over snapshots they no longer mutate.
//
// A Manager is not safe for concurrent use.
type Manager[T any] struct {
	cfg     config
	past    []T
	present T
	future  []T

	groupKey string
	groupAt  time.Time
}

// New creates a manager whose present is initial.
func New[T any](initial T, opts ...Option) *Manager[T] {
	cfg := config{depth: DefaultDepth, window: DefaultWindow, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager[T]{cfg: cfg, present: initial}
}

// Commit records state as a new entry: present moves onto the past and the
// future is discarded.
func (m *Manager[T]) Commit(state T) {
	m.push(state)
	m.Seal()
}

// Coalesce records state like Commit, except that it replaces the present
// when the previous call used the same key within the window and no Seal or
// Commit happened in between. Typing into one field thus yields one entry.
func (m *Manager[T]) Coalesce(key string, state T) {
	now := m.cfg.now()
	if key != "" && key == m.groupKey && now.Sub(m.groupAt) <= m.cfg.window && len(m.past) > 0 {
		m.present = state
		m.future = nil
		m.groupAt = now
		return
	}
	m.push(state)
	m.groupKey = key
	m.groupAt = now
}

// Seal closes the current coalescing group.
func (m *Manager[T]) Seal() {
	m.groupKey = ""
	m.groupAt = time.Time{}
}

// Undo steps back one entry. It reports false when there is nothing to undo.
func (m *Manager[T]) Undo() (T, bool) {
	if len(m.past) == 0 {
		return m.present, false
	}
	m.Seal()
	m.future = append(m.future, m.present)
	m.present = m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	return m.present, true
}

// Redo re-applies the last undone entry. It reports false when the future is empty.
func (m *Manager[T]) Redo() (T, bool) {
	if len(m.future) == 0 {
		return m.present, false
	}
	m.Seal()
	m.past = append(m.past, m.present)
	m.present = m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	return m.present, true
}

// CanUndo reports whether Undo would change the present.
func (m *Manager[T]) CanUndo() bool { return len(m.past) > 0 }

// CanRedo reports whether Redo would change the present.
func (m *Manager[T]) CanRedo() bool { return len(m.future) > 0 }

// Present returns the current state.
func (m *Manager[T]) Present() T { return m.present }

// Len returns the number of undo and redo entries.
func (m *Manager[T]) Len() (past, future int) {
	return len(m.past), len(m.future)
}

// Reset drops all entries and makes state the present.
func (m *Manager[T]) Reset(state T) {
	m.past = nil
	m.future = nil
	m.present = state
	m.Seal()
}

func (m *Manager[T]) push(state T) {
	m.past = append(m.past, m.present)
	if over := len(m.past) - m.cfg.depth; over > 0 {
		var zero T
		for i := 0; i < over; i++ {
			m.past[i] = zero
		}
		m.past = append(m.past[:0:0], m.past[over:]...)
	}
	m.present = state
	m.future = nil
}
