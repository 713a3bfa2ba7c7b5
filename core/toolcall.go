package core

import (
	"context"
	"fmt"
	"time"
)

// FailureCode categorizes tool invocation failures. Every failure is captured
// as a structured outcome and handed back to the calling agent's decision
// logic; nothing raises uncontrolled out of a tool call.
type FailureCode string

const (
	// FailureTimeout indicates the tool exceeded its execution deadline.
	FailureTimeout FailureCode = "TIMEOUT"
	// FailureToolNotFound indicates the named tool is not registered.
	FailureToolNotFound FailureCode = "TOOL_NOT_FOUND"
	// FailureArgument indicates the supplied arguments failed schema validation.
	FailureArgument FailureCode = "ARGUMENT_ERROR"
	// FailureRuntime indicates the tool itself returned an error or panicked.
	FailureRuntime FailureCode = "RUNTIME_ERROR"
)

// Failure describes a failed tool invocation.
type Failure struct {
	Code    FailureCode `json:"code"`
	Message string      `json:"message"`
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("tool failure [%s]: %s", f.Code, f.Message)
}

// ToolCall is the immutable audit record of one tool invocation: the request
// (tool name, arguments, session, requesting agent, timestamp) and the
// outcome (success value or failure, plus duration). Created per invocation
// and appended to the owning Session's audit log regardless of outcome.
type ToolCall struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Tool      string         `json:"tool"`
	Agent     string         `json:"agent,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
	Requested time.Time      `json:"requested"`
	Duration  time.Duration  `json:"duration"`
	Value     any            `json:"value,omitempty"`
	Failure   *Failure       `json:"failure,omitempty"`
}

// Failed reports whether the call ended in a failure outcome.
func (c ToolCall) Failed() bool { return c.Failure != nil }

// ToolRunner dispatches named tool calls for one session. The concrete
// implementation lives in the tool package; decision functions receive a
// session-bound runner so tool execution stays scoped and auditable.
type ToolRunner interface {
	// Invoke executes the named tool with the given arguments and returns the
	// completed audit record. Failures are reported in the record, never as a
	// panic or an unrecorded error.
	Invoke(ctx context.Context, name string, args map[string]any) ToolCall
}
