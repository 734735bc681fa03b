package ir

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the sentinel wrapped by every InvalidArgumentError.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError reports a fact or rule built from unusable names.
//
// Duplicate inserts and unknown entities are not errors anywhere in
// prodsys; this is the only failure the core can produce, and it is raised
// at construction time before anything touches a store.
type InvalidArgumentError struct {
	// Field names the offending argument ("type", "subject", "object").
	Field string

	// Value is the rejected input as given by the caller.
	Value string

	// Reason is a short human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidArgument.
func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// IsInvalidArgument returns true if err is or wraps an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var ie *InvalidArgumentError
	return errors.As(err, &ie)
}
