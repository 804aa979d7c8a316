// Package persistence provides standardized error types for run storage.
package persistence

import (
	"errors"
	"fmt"
)

// ErrRunNotFound indicates no run summary exists for the given identifier.
var ErrRunNotFound = errors.New("run not found")

// RunError wraps run-storage errors with operation context.
type RunError struct {
	Op    string // Operation being performed (e.g., "SaveRun", "RunByID")
	RunID string
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s operation failed for run %s: %v", e.Op, e.RunID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func (e *RunError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRunError creates a new run-storage error with context.
func NewRunError(op, runID string, err error) *RunError {
	return &RunError{Op: op, RunID: runID, Err: err}
}

// IsRunNotFound checks if an error indicates a run was not found.
func IsRunNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
