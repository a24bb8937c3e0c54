package app

import (
	"errors"
	"fmt"
)

// Editor errors.
var (
	// ErrBusy indicates another operation is in progress.
	ErrBusy = errors.New("operation in progress")

	// ErrClosed indicates the editor has been closed.
	ErrClosed = errors.New("editor closed")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "set", "undo", "delete")
	Target string // Target of the operation (e.g., element ID)
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
