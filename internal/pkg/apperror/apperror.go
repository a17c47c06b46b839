// Package apperror defines the error classes shared by every payroll domain
// package. Concrete sentinel errors are created with New so callers can test
// either the specific error or its class with errors.Is.
package apperror

import "errors"

var (
	// ErrValidation marks input rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown salary, installment, advance or employee id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidStateTransition marks an action not allowed in the current lifecycle state.
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

type classified struct {
	msg   string
	class error
}

func (e *classified) Error() string { return e.msg }
func (e *classified) Unwrap() error { return e.class }

// New returns a sentinel error with the given message that matches class
// under errors.Is.
func New(class error, msg string) error {
	return &classified{msg: msg, class: class}
}
