package model

import (
	"errors"
	"fmt"
)

// ErrSessionAborted is returned when the subject quits or presses the abort key.
// It propagates unchanged through phase, trial, experiment and session.
var ErrSessionAborted = errors.New("session aborted")

// ValidationError reports a malformed construction parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CapacityError reports a no-repeats grid request that the charset cannot fill.
type CapacityError struct {
	Need int
	Have int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("charset too small: need %d distinct characters, have %d", e.Need, e.Have)
}

// Invalid is shorthand for building a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
