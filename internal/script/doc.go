// Package script runs Lua edit scripts against an editor.
//
// Scripts run in a sandboxed gopher-lua state with only the base, table,
// string and math libraries. A global table named net exposes the editor:
//
//	net.begin("Move junction")
//	net.set("J1", "x", "10")
//	net.set("J1", "y", "4")
//	net.finish()
//	net.undo()
//
// Functions:
//
//	net.begin(desc)          open a change group
//	net.finish()             commit the innermost group
//	net.abort()              revert and discard the innermost group
//	net.abort_all()          revert and discard every open group
//	net.set(id, key, value)  change an attribute
//	net.get(id, key)         attribute value or nil
//	net.add(kind [, id])     create an element, returns its ID
//	net.remove(id)           delete an element
//	net.undo() / net.redo()  returns false when there is nothing to act on
//	net.can_undo() / net.can_redo()
//	net.in_group()           true while a group is open
//	net.group_size()         commands in the innermost group
//	net.busy(desc)           mark an operation in progress ("" clears it)
//
// If a script fails, every group it opened and left open is aborted. Groups
// opened by the caller before the run are kept. The busy state is restored
// when the run ends.
package script
