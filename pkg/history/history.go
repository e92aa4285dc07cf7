// Package history implements a bounded two-stack undo/redo log over
// value snapshots. Snapshots are opaque to the manager; the owner takes
// a deep copy before every significant mutation and hands it in.
package history

// DefaultCapacity bounds the past stack; the oldest snapshot is dropped
// once the bound is reached.
const DefaultCapacity = 50

// History is a bounded undo/redo manager. The past stack holds states
// preceding each recorded mutation, most recent last; the future stack
// holds states undone in the current session and is cleared whenever a
// new mutation is recorded.
type History[T any] struct {
	past   []T
	future []T
	cap    int
}

// New creates a history manager with the given capacity. Capacities
// below 1 fall back to DefaultCapacity.
func New[T any](capacity int) *History[T] {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &History[T]{
		past:   make([]T, 0, capacity),
		future: make([]T, 0),
		cap:    capacity,
	}
}

// Record pushes the pre-mutation state onto the past stack and clears
// the redo stack. Beyond capacity the oldest entry is dropped.
func (h *History[T]) Record(current T) {
	if len(h.past) >= h.cap {
		h.past = append(h.past[:0], h.past[1:]...)
		h.past = h.past[:h.cap-1]
	}
	h.past = append(h.past, current)
	h.future = h.future[:0]
}

// Undo pops the most recent past snapshot, pushing current onto the
// future stack. Returns ok=false when there is nothing to undo; that is
// a no-op, not an error.
func (h *History[T]) Undo(current T) (T, bool) {
	if len(h.past) == 0 {
		var zero T
		return zero, false
	}
	restored := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, current)
	return restored, true
}

// Redo pops the most recent future snapshot, pushing current onto the
// past stack. Returns ok=false when there is nothing to redo.
func (h *History[T]) Redo(current T) (T, bool) {
	if len(h.future) == 0 {
		var zero T
		return zero, false
	}
	restored := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, current)
	return restored, true
}

// CanUndo reports whether an undo would restore a snapshot.
func (h *History[T]) CanUndo() bool {
	return len(h.past) > 0
}

// CanRedo reports whether a redo would restore a snapshot.
func (h *History[T]) CanRedo() bool {
	return len(h.future) > 0
}

// Depth returns the current sizes of the past and future stacks.
func (h *History[T]) Depth() (past, future int) {
	return len(h.past), len(h.future)
}

// Clear drops both stacks, e.g. after loading a new project.
func (h *History[T]) Clear() {
	h.past = h.past[:0]
	h.future = h.future[:0]
}
