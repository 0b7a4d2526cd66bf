package task

import (
	"errors"
	"fmt"
)

// Error variables for task operations.
var (
	ErrValidation = errors.New("invalid task")
	ErrNotFound   = errors.New("task not found")
	ErrPersist    = errors.New("saving tasks failed")
)

// ValidationError reports which field of a task was rejected.
//
// Matches [ErrValidation] with [errors.Is]:
//
//	var vErr *task.ValidationError
//	if errors.As(err, &vErr) {
//	    fmt.Println("bad field:", vErr.Field)
//	}
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Unwrap returns [ErrValidation].
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// PersistError is returned by mutating [Store] methods when the in-memory
// change was applied but writing the list to the backing store failed.
// The change is not rolled back.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	if e == nil {
		return ""
	}

	return fmt.Sprintf("%s (key=%s): %v", ErrPersist, e.Key, e.Err)
}

// Unwrap returns both [ErrPersist] and the underlying cause so either can be
// matched with [errors.Is].
func (e *PersistError) Unwrap() []error {
	if e == nil {
		return nil
	}

	return []error{ErrPersist, e.Err}
}

func notFound(id int64) error {
	return fmt.Errorf("%w: %d", ErrNotFound, id)
}
