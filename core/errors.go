package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry and session misuse. Wrap with %w so callers
// can test with errors.Is.
var (
	// ErrDuplicateAgent is returned when registering an agent whose name is
	// already present in the registry.
	ErrDuplicateAgent = errors.New("duplicate agent")

	// ErrAgentNotFound is returned when looking up an agent name that is not
	// registered.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrInvalidSelection is returned when an external selection function
	// picks a name outside the candidate set. Treated as "no selection".
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrSessionNotFound is returned for operations on an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionTerminated is returned for turns posted to a terminated
	// session, which is read-only history.
	ErrSessionTerminated = errors.New("session terminated")
)

// ValidationError reports a malformed state key or tool argument with
// detailed information. Recoverable: surfaced to the caller, no state change.
type ValidationError struct {
	Field   string `json:"field"`   // Field or key that failed validation
	Value   any    `json:"value"`   // Value that was provided
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}
