// Package history keeps a linear undo/redo log of document snapshots.
package history

// Log is a linear history of snapshots with a cursor at the current one.
// Snapshots are treated as immutable: callers must not modify a value after
// committing it or after getting it back.
//
// Log is not safe for concurrent use; it belongs to a single owner.
// The zero value is an empty, unbounded log.
type Log[T any] struct {
	entries []T
	cursor  int

	// limit caps the number of entries; 0 means unbounded.
	limit int
}

// New returns an empty log keeping at most limit entries (0 = unbounded).
// When the cap is exceeded the oldest snapshots are dropped.
func New[T any](limit int) *Log[T] {
	if limit < 0 {
		limit = 0
	}
	return &Log[T]{limit: limit}
}

// Commit discards any redo tail, appends snapshot and makes it current.
func (l *Log[T]) Commit(snapshot T) {
	if len(l.entries) > 0 {
		l.entries = l.entries[:l.cursor+1]
	}
	l.entries = append(l.entries, snapshot)
	l.cursor = len(l.entries) - 1

	if l.limit > 0 && len(l.entries) > l.limit {
		excess := len(l.entries) - l.limit
		var zero T
		for i := 0; i < excess; i++ {
			l.entries[i] = zero
		}
		l.entries = l.entries[excess:]
		l.cursor -= excess
	}
}

// Undo steps back one snapshot and returns it. It reports false, leaving
// the log unchanged, at the oldest snapshot or when the log is empty.
func (l *Log[T]) Undo() (T, bool) {
	if !l.CanUndo() {
		var zero T
		return zero, false
	}
	l.cursor--
	return l.entries[l.cursor], true
}

// Redo steps forward one snapshot and returns it. It reports false at the
// newest snapshot.
func (l *Log[T]) Redo() (T, bool) {
	if !l.CanRedo() {
		var zero T
		return zero, false
	}
	l.cursor++
	return l.entries[l.cursor], true
}

// Current returns the snapshot at the cursor, or false for an empty log.
func (l *Log[T]) Current() (T, bool) {
	if len(l.entries) == 0 {
		var zero T
		return zero, false
	}
	return l.entries[l.cursor], true
}

func (l *Log[T]) CanUndo() bool { return len(l.entries) > 0 && l.cursor > 0 }
func (l *Log[T]) CanRedo() bool { return l.cursor < len(l.entries)-1 }

// Len returns the number of snapshots.
func (l *Log[T]) Len() int { return len(l.entries) }

// Cursor returns the index of the current snapshot (0 when empty).
func (l *Log[T]) Cursor() int { return l.cursor }

// Entries returns a copy of the snapshot slice, oldest first.
func (l *Log[T]) Entries() []T {
	return append([]T(nil), l.entries...)
}

// Restore replaces the log contents, e.g. from persisted state.
// The cursor is clamped into range.
func (l *Log[T]) Restore(entries []T, cursor int) {
	l.entries = append([]T(nil), entries...)
	if l.limit > 0 && len(l.entries) > l.limit {
		excess := len(l.entries) - l.limit
		l.entries = l.entries[excess:]
		cursor -= excess
	}
	switch {
	case len(l.entries) == 0:
		cursor = 0
	case cursor < 0:
		cursor = 0
	case cursor >= len(l.entries):
		cursor = len(l.entries) - 1
	}
	l.cursor = cursor
}
