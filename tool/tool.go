// Package tool implements the function/tool calling subsystem that lets
// agents invoke structured capabilities (APIs, computations, side-effects)
// with schema validated arguments, consistent error handling and a complete
// per-session audit trail.
package tool

import (
	"fmt"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
)

// Tool defines the interface for extending agent capabilities with external
// functions.
//
// All tools receive a *core.ToolContext giving scoped access to session
// state and identity; no ambient state is reachable. Implementations should:
//   - Provide clear, descriptive names (snake_case) and descriptions
//   - Define proper JSON schema for parameters
//   - Honor toolCtx.Context() cancellation in blocking work
//   - Be safe for concurrent use; the invoker may run calls in parallel
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool
	// does, provided to the reasoning backend for call planning.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with validated arguments.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

// Error codes attached to ToolError by the built-in adapters.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
)

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Unwrap exposes the underlying cause when Details carries one, keeping
// errors.Is/As chains intact through the tool layer.
func (e *ToolError) Unwrap() error {
	if err, ok := e.Details.(error); ok {
		return err
	}
	return nil
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
