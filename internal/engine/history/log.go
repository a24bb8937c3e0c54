package history

import (
	"time"
)

// DefaultMaxEntries is the log bound used when none is configured.
const DefaultMaxEntries = 1000

// entry wraps a command with metadata.
type entry struct {
	command   Command
	timestamp time.Time
}

// EntryInfo provides read-only info about a log entry.
// Used for displaying undo/redo history to users.
type EntryInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the entry was committed
}

// Log is a linear sequence of committed commands with a cursor.
// Entries before the cursor can be undone, entries at or after it redone.
//
// Log is not safe for concurrent use; UndoList serializes access to it.
type Log struct {
	entries    []*entry
	cursor     int
	maxEntries int
}

// NewLog creates a log bounded to maxEntries committed entries.
func NewLog(maxEntries int) *Log {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Log{maxEntries: maxEntries}
}

// Push appends a command after the cursor.
// Any redoable entries are dropped permanently.
func (l *Log) Push(cmd Command) {
	for i := l.cursor; i < len(l.entries); i++ {
		l.entries[i] = nil
	}
	l.entries = append(l.entries[:l.cursor], &entry{
		command:   cmd,
		timestamp: time.Now(),
	})
	l.cursor++

	if len(l.entries) > l.maxEntries {
		l.trim()
	}
}

// trim brings the log within maxEntries. The redo tail is discarded first,
// then the oldest undoable entries, so the cursor always stays valid.
func (l *Log) trim() {
	if len(l.entries) <= l.maxEntries {
		return
	}
	for i := l.cursor; i < len(l.entries); i++ {
		l.entries[i] = nil
	}
	l.entries = l.entries[:l.cursor]

	excess := len(l.entries) - l.maxEntries
	if excess <= 0 {
		return
	}
	l.entries = append([]*entry(nil), l.entries[excess:]...)
	l.cursor -= excess
}

// Undo undoes the entry before the cursor and moves the cursor back.
// If the command fails the cursor is left unchanged.
func (l *Log) Undo() error {
	if l.cursor == 0 {
		return ErrNothingToUndo
	}
	if err := l.entries[l.cursor-1].command.Undo(); err != nil {
		return err
	}
	l.cursor--
	return nil
}

// Redo redoes the entry at the cursor and advances the cursor.
// If the command fails the cursor is left unchanged.
func (l *Log) Redo() error {
	if l.cursor >= len(l.entries) {
		return ErrNothingToRedo
	}
	if err := l.entries[l.cursor].command.Redo(); err != nil {
		return err
	}
	l.cursor++
	return nil
}

// CanUndo returns true if undo is available.
func (l *Log) CanUndo() bool {
	return l.cursor > 0
}

// CanRedo returns true if redo is available.
func (l *Log) CanRedo() bool {
	return l.cursor < len(l.entries)
}

// Clear discards every entry without undoing it.
func (l *Log) Clear() {
	l.entries = nil
	l.cursor = 0
}

// Len returns the total number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Cursor returns the cursor position.
func (l *Log) Cursor() int {
	return l.cursor
}

// UndoCount returns the number of undoable entries.
func (l *Log) UndoCount() int {
	return l.cursor
}

// RedoCount returns the number of redoable entries.
func (l *Log) RedoCount() int {
	return len(l.entries) - l.cursor
}

// Last returns the command just before the cursor.
func (l *Log) Last() (Command, bool) {
	if l.cursor == 0 {
		return nil, false
	}
	return l.entries[l.cursor-1].command, true
}

// PeekUndo returns info about the next undo entry without applying it.
func (l *Log) PeekUndo() (EntryInfo, bool) {
	if l.cursor == 0 {
		return EntryInfo{}, false
	}
	return l.entries[l.cursor-1].info(), true
}

// PeekRedo returns info about the next redo entry without applying it.
func (l *Log) PeekRedo() (EntryInfo, bool) {
	if l.cursor >= len(l.entries) {
		return EntryInfo{}, false
	}
	return l.entries[l.cursor].info(), true
}

// UndoInfo returns undoable entries, the next one to undo first.
func (l *Log) UndoInfo() []EntryInfo {
	result := make([]EntryInfo, 0, l.cursor)
	for i := l.cursor - 1; i >= 0; i-- {
		result = append(result, l.entries[i].info())
	}
	return result
}

// RedoInfo returns redoable entries, the next one to redo first.
func (l *Log) RedoInfo() []EntryInfo {
	result := make([]EntryInfo, 0, len(l.entries)-l.cursor)
	for i := l.cursor; i < len(l.entries); i++ {
		result = append(result, l.entries[i].info())
	}
	return result
}

// SetMaxEntries changes the maximum number of entries.
// If the log is larger, oldest entries are removed.
func (l *Log) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	l.maxEntries = max
	l.trim()
}

// MaxEntries returns the maximum number of entries.
func (l *Log) MaxEntries() int {
	return l.maxEntries
}

func (e *entry) info() EntryInfo {
	return EntryInfo{
		Description: e.command.Description(),
		Timestamp:   e.timestamp,
	}
}
