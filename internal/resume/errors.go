package resume

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no resume record exists for a lookup.
var ErrNotFound = errors.New("resume not found")

// InvalidInputError is returned when a resume link cannot be used as an application ID.
type InvalidInputError struct {
	Value string
	Cause error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid resume link %q: not an integer application id", e.Value)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Cause
}

// StoreError wraps a database failure in the resume store.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("resume store %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}
