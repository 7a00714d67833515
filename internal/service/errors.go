package service

import (
	"errors"
	"fmt"

	dom "github.com/karimahmed315/task-manager/internal/domain"
)

// ErrNotFound means the task id was absent from the collection the
// operation expected it in.
var ErrNotFound = errors.New("task not found")

// ValidationError is bad input shape or range. It carries enough detail
// for a caller to render a precise message without re-deriving it.
type ValidationError struct {
	Field string
	Value string
	Hint  string
}

func (e *ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid %s %q: expected %s", e.Field, e.Value, e.Hint)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// InvalidStateError means the operation is not legal for the task's
// current location, e.g. snoozing a deleted task.
type InvalidStateError struct {
	ID       int64
	Location dom.Location
	Op       string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s task %d: task is %s", e.Op, e.ID, e.Location)
}

// InvalidDurationError is an unrecognized snooze duration token.
type InvalidDurationError struct {
	Value string
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid snooze duration %q: use 10m, 1h or 1d", e.Value)
}
