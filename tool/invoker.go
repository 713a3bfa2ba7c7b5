package tool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/logging"
)

const defaultToolTimeout = 15 * time.Second

// InvokerOptions configures an Invoker.
type InvokerOptions struct {
	// Timeout bounds each tool execution. Expiry produces a TIMEOUT failure
	// outcome; the tool goroutine is abandoned with its context cancelled.
	Timeout time.Duration
	// Logger receives structured invocation events.
	Logger logging.Logger
}

// Invoker executes named tool calls against per-call ToolContexts. It holds
// the tool catalog (registered once at startup) and is stateless with
// respect to session data, so one instance is shared across all sessions.
//
// Every invocation — success or failure — produces exactly one core.ToolCall
// audit record appended to the owning session: auditability never depends on
// outcome. Failures are captured as structured results (TIMEOUT,
// TOOL_NOT_FOUND, ARGUMENT_ERROR, RUNTIME_ERROR) and never escape as panics,
// preserving the calling agent's ability to retry or pick another tool.
type Invoker struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	ordered []string
	timeout time.Duration
	logger  logging.Logger
}

// NewInvoker constructs an empty Invoker with optional overrides.
func NewInvoker(optFns ...func(o *InvokerOptions)) *Invoker {
	opts := InvokerOptions{
		Timeout: defaultToolTimeout,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Invoker{
		tools:   make(map[string]Tool),
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
}

// Register adds a tool to the catalog. Names are globally unique; a second
// registration under the same name fails.
func (inv *Invoker) Register(t Tool) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if _, exists := inv.tools[t.Name()]; exists {
		return fmt.Errorf("tool %s already registered", t.Name())
	}
	inv.tools[t.Name()] = t
	inv.ordered = append(inv.ordered, t.Name())
	return nil
}

// RegisterAll registers multiple tools, stopping at the first failure.
func (inv *Invoker) RegisterAll(tools ...Tool) error {
	for _, t := range tools {
		if err := inv.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the registered tool by name.
func (inv *Invoker) Lookup(name string) (Tool, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	t, ok := inv.tools[name]
	return t, ok
}

// Tools returns the catalog in registration order, for building model-facing
// tool definitions.
func (inv *Invoker) Tools() []Tool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]Tool, 0, len(inv.ordered))
	for _, name := range inv.ordered {
		out = append(out, inv.tools[name])
	}
	return out
}

// ForSession returns a runner bound to one session. The runner is safe for
// concurrent use within a turn: an agent may dispatch several tool calls in
// parallel, and SharedState's serialized mutation path guarantees none of
// their updates are lost.
func (inv *Invoker) ForSession(sess *core.Session) *SessionRunner {
	return &SessionRunner{inv: inv, sess: sess}
}

// SessionRunner executes tool calls for a single session and aggregates
// per-turn signals (issued-call count, relinquish requests from tools).
// It implements core.ToolRunner.
type SessionRunner struct {
	inv        *Invoker
	sess       *core.Session
	issued     atomic.Int64
	relinquish atomic.Bool
}

var _ core.ToolRunner = (*SessionRunner)(nil)

// Invoke executes one named tool call to completion and returns the audit
// record, which has already been appended to the session's log.
func (r *SessionRunner) Invoke(ctx context.Context, name string, args map[string]any) core.ToolCall {
	r.issued.Add(1)
	record, signaled := r.inv.run(ctx, r.sess, name, args)
	if signaled {
		r.relinquish.Store(true)
	}
	r.sess.AppendToolCall(record)
	return record
}

// Issued returns the number of tool calls dispatched through this runner.
func (r *SessionRunner) Issued() int { return int(r.issued.Load()) }

// RelinquishSignaled reports whether any completed tool call asked the
// active agent to hand the conversation back.
func (r *SessionRunner) RelinquishSignaled() bool { return r.relinquish.Load() }

func (inv *Invoker) run(ctx context.Context, sess *core.Session, name string, args map[string]any) (core.ToolCall, bool) {
	agentName, _ := sess.State.ActiveAgent()
	record := core.ToolCall{
		ID:        core.NewID(),
		SessionID: sess.ID,
		Tool:      name,
		Agent:     agentName,
		Args:      args,
		Requested: time.Now().UTC(),
	}

	impl, ok := inv.Lookup(name)
	if !ok {
		record.Failure = &core.Failure{Code: core.FailureToolNotFound, Message: fmt.Sprintf("tool %s not found", name)}
		inv.logger.Warn("tool.invoke.not_found", "tool", name, "session_id", sess.ID)
		return record, false
	}

	callCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	toolCtx := core.NewToolContext(callCtx, sess.ID, sess.State, agentName, record.ID, inv.logger)

	type callResult struct {
		value any
		err   error
	}
	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				inv.logger.Error("tool.invoke.panic", "tool", name, "recover", rec, "stack", string(debug.Stack()))
				done <- callResult{err: fmt.Errorf("tool %s panicked: %v", name, rec)}
			}
		}()
		value, err := impl.Call(toolCtx, args)
		done <- callResult{value: value, err: err}
	}()

	select {
	case <-callCtx.Done():
		record.Duration = time.Since(record.Requested)
		record.Failure = timeoutFailure(name, callCtx.Err())
		inv.logger.Warn("tool.invoke.timeout", "tool", name, "session_id", sess.ID, "duration_ms", record.Duration.Milliseconds())
		return record, false
	case res := <-done:
		record.Duration = time.Since(record.Requested)
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				record.Failure = timeoutFailure(name, context.DeadlineExceeded)
			} else {
				record.Failure = classifyFailure(res.err)
			}
			inv.logger.Warn("tool.invoke.failed", "tool", name, "session_id", sess.ID, "code", string(record.Failure.Code), "error", res.err.Error())
			return record, toolCtx.RelinquishSignaled()
		}
		record.Value = res.value
		inv.logger.Info("tool.invoke.success", "tool", name, "session_id", sess.ID, "duration_ms", record.Duration.Milliseconds())
		return record, toolCtx.RelinquishSignaled()
	}
}

func timeoutFailure(name string, err error) *core.Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return &core.Failure{Code: core.FailureTimeout, Message: fmt.Sprintf("tool %s exceeded its deadline", name)}
	}
	return &core.Failure{Code: core.FailureRuntime, Message: fmt.Sprintf("tool %s aborted: %v", name, err)}
}

// classifyFailure maps tool-layer errors onto the audit failure taxonomy.
func classifyFailure(err error) *core.Failure {
	var toolErr *ToolError
	if errors.As(err, &toolErr) && toolErr.Code == CodeValidation {
		return &core.Failure{Code: core.FailureArgument, Message: toolErr.Message}
	}
	var valErr *core.ValidationError
	if errors.As(err, &valErr) {
		return &core.Failure{Code: core.FailureArgument, Message: valErr.Error()}
	}
	return &core.Failure{Code: core.FailureRuntime, Message: err.Error()}
}
