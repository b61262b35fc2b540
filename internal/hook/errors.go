package hook

import (
	"errors"
	"fmt"
)

// Sentinel errors for the hook registry.
var (
	// ErrHandlerKind is returned when a handler does not implement the
	// interface required by the requested kind.
	ErrHandlerKind = errors.New("handler does not match hook kind")

	// ErrValueType is returned by typed filters when a handler in the chain
	// produced a value of the wrong type.
	ErrValueType = errors.New("filter value has unexpected type")
)

// CallbackError wraps an error returned by a handler with the registration
// that produced it.
type CallbackError struct {
	// Kind is the table the handler was registered in.
	Kind Kind

	// Tag is the tag being dispatched.
	Tag string

	// RegistrationID identifies the failing registration.
	RegistrationID string

	// Priority is the priority of the failing registration.
	Priority int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s %q handler %s (priority %d): %v", e.Kind, e.Tag, e.RegistrationID, e.Priority, e.Err)
}

// Unwrap returns the underlying error.
func (e *CallbackError) Unwrap() error {
	return e.Err
}
