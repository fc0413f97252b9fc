package models

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed caller input. It is returned before any
// state is changed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid is shorthand for building a *ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ErrNoCurrentUser is returned by writes when no user is signed in. Reads
// return empty results instead.
var ErrNoCurrentUser = errors.New("no current user")
