package history

import (
	"circuitee/internal/designer/models"
)

// ============================================================
// History Manager
// ============================================================

// DefaultLimit bounds the undo stack.
const DefaultLimit = 50

// Snapshotter is the state the manager captures and restores. Snapshot must
// return a copy that later mutation of live state cannot reach.
type Snapshotter interface {
	Snapshot() models.Snapshot
	Restore(models.Snapshot)
}

// Manager keeps bounded undo and redo stacks of deep snapshots.
type Manager struct {
	target Snapshotter
	undo   []models.Snapshot
	redo   []models.Snapshot
	limit  int
}

func New(target Snapshotter, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{
		target: target,
		limit:  limit,
	}
}

// Record captures the current state before a mutation and drops forward history.
func (m *Manager) Record() {
	m.undo = pushBounded(m.undo, m.target.Snapshot(), m.limit)
	m.redo = nil
}

// Undo restores the most recent snapshot. Returns false on an empty stack.
func (m *Manager) Undo() bool {
	if len(m.undo) == 0 {
		return false
	}
	m.redo = pushBounded(m.redo, m.target.Snapshot(), m.limit)
	prev := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.target.Restore(prev)
	return true
}

// Redo reapplies the most recently undone state. Returns false on an empty stack.
func (m *Manager) Redo() bool {
	if len(m.redo) == 0 {
		return false
	}
	m.undo = pushBounded(m.undo, m.target.Snapshot(), m.limit)
	next := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.target.Restore(next)
	return true
}

func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

func (m *Manager) UndoDepth() int { return len(m.undo) }
func (m *Manager) RedoDepth() int { return len(m.redo) }

func (m *Manager) Limit() int { return m.limit }

// Reset drops both stacks.
func (m *Manager) Reset() {
	m.undo = nil
	m.redo = nil
}

func pushBounded(stack []models.Snapshot, s models.Snapshot, limit int) []models.Snapshot {
	stack = append(stack, s)
	if over := len(stack) - limit; over > 0 {
		stack = append(stack[:0:0], stack[over:]...)
	}
	return stack
}
