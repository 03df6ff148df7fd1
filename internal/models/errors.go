package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation references an id absent from the store.
var ErrNotFound = errors.New("reminder not found")

// ErrNothingToUndo is returned when undo is requested with no dismissal pending.
var ErrNothingToUndo = errors.New("nothing to undo")

// ValidationError reports a record that violates the store's write policy.
// Saves that fail validation never touch the stored collection.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid reminder: %s", e.Reason)
}

// SchedulingError reports a trigger registration that was rejected.
type SchedulingError struct {
	Reason string
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("cannot schedule trigger: %s", e.Reason)
}

// DisplayError reports that a notification could not be shown. It is
// contained inside the lifecycle coordinator and never fails the reminder
// operation itself.
type DisplayError struct {
	Attempts int
	Err      error
}

func (e *DisplayError) Error() string {
	return fmt.Sprintf("notification display failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *DisplayError) Unwrap() error {
	return e.Err
}
