package history

import (
	"errors"
	"fmt"
)

// Common errors for history operations.
var (
	// ErrEmptyHistory indicates there is nothing to undo or redo.
	ErrEmptyHistory = errors.New("empty history")

	ErrNothingToUndo = fmt.Errorf("nothing to undo: %w", ErrEmptyHistory)
	ErrNothingToRedo = fmt.Errorf("nothing to redo: %w", ErrEmptyHistory)

	// ErrUnbalancedGroup indicates EndGroup or AbortGroup was called
	// without a matching BeginGroup.
	ErrUnbalancedGroup = errors.New("unbalanced command group")

	// ErrGroupOpen indicates undo or redo was requested while a group is open.
	ErrGroupOpen = errors.New("command group is open")
)
