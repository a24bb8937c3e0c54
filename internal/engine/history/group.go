package history

import (
	"errors"
)

// Scope provides a convenient way to group commands using defer.
// Usage:
//
//	func moveJunction(u *UndoList) (err error) {
//	    scope := u.GroupScope("Move junction")
//	    defer func() {
//	        if err != nil {
//	            _ = scope.Abort()
//	            return
//	        }
//	        err = scope.End()
//	    }()
//	    // ... multiple changes ...
//	}
type Scope struct {
	list   *UndoList
	active bool
}

// GroupScope begins a group and returns a handle that closes it.
func (u *UndoList) GroupScope(description string) *Scope {
	u.BeginGroup(description)
	return &Scope{
		list:   u,
		active: true,
	}
}

// End commits the scope's group.
// Safe to call multiple times; only the first call of End or Abort has effect.
func (s *Scope) End() error {
	if !s.active {
		return nil
	}
	s.active = false
	return s.list.EndGroup()
}

// Abort undoes and discards the scope's group.
// Safe to call multiple times; only the first call of End or Abort has effect.
func (s *Scope) Abort() error {
	if !s.active {
		return nil
	}
	s.active = false
	return s.list.AbortGroup()
}

// Transaction runs fn inside a group.
// If fn returns an error the group is aborted, otherwise it is committed.
func (u *UndoList) Transaction(description string, fn func() error) error {
	u.BeginGroup(description)

	if err := fn(); err != nil {
		if abortErr := u.AbortGroup(); abortErr != nil {
			return errors.Join(err, abortErr)
		}
		return err
	}

	return u.EndGroup()
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	undoDepth int
}

// CreateCheckpoint creates a checkpoint at the current log position.
func (u *UndoList) CreateCheckpoint() Checkpoint {
	u.mu.Lock()
	defer u.mu.Unlock()
	return Checkpoint{undoDepth: u.log.UndoCount()}
}

// UndoToCheckpoint undoes all entries committed since the checkpoint.
func (u *UndoList) UndoToCheckpoint(cp Checkpoint) error {
	for u.UndoCount() > cp.undoDepth {
		if err := u.Undo(); err != nil {
			return err
		}
	}
	return nil
}

// RedoToCheckpoint redoes entries until the checkpoint depth is reached.
// Note: This only works if the redoable entries are still present.
func (u *UndoList) RedoToCheckpoint(cp Checkpoint) error {
	for u.UndoCount() < cp.undoDepth && u.CanRedo() {
		if err := u.Redo(); err != nil {
			return err
		}
	}
	return nil
}
