// Package history provides grouped undo/redo for the network editor.
//
// The history system uses the Command pattern: every edit is a Command that
// can be undone and redone. Key concepts:
//
// # Log
//
// A Log is a linear list of committed commands with a cursor. Entries before
// the cursor can be undone, entries after it redone. Pushing a new command
// drops everything after the cursor.
//
// # Groups
//
// An UndoList layers nested groups over a Log:
//
//	list := NewUndoList(WithNotifier(view))
//
//	list.BeginGroup("Move junction")
//	list.Add(change)          // applied and recorded in the group
//	list.BeginGroup("Shift lanes")
//	list.Add(other)
//	list.EndGroup()           // committed into "Move junction"
//	list.EndGroup()           // committed to the log, notifier called
//
//	list.Undo()               // reverses other, then change
//
// AbortGroup undoes everything recorded in the innermost group and discards
// it. Undo and Redo are refused with ErrGroupOpen while any group is open,
// and EndGroup or AbortGroup without a matching BeginGroup report
// ErrUnbalancedGroup.
//
// # Changes
//
// A Change is a leaf Command that knows whether it alters anything. Add
// silently drops changes whose TrueChange reports false, keeping no-op edits
// out of the history.
//
// # Action state
//
// UndoActionState and RedoActionState compute the enabled flag and label a
// UI control should show, without touching any widget.
package history
