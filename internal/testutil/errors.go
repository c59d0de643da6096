package testutil

import "errors"

// ErrInjected matches every failure produced by NewError.
var ErrInjected = errors.New("testutil: injected failure")

// Error is a failure a test hands to a fake target, volume or tracker.
type Error struct {
	Message string
}

func (e *Error) Error() string { return "injected: " + e.Message }

func (e *Error) Is(target error) bool { return target == ErrInjected }

func NewError(msg string) *Error {
	return &Error{Message: msg}
}
