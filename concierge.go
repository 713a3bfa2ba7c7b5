// Package concierge provides a high-level façade over the orchestration
// core (registry, orchestrator, tool invoker and session manager) enabling
// rapid construction of a multi-agent travel assistant. Most applications
// interact with this package by:
//  1. Creating a Concierge via New() (optionally overriding defaults)
//  2. Registering one or more agent descriptors
//  3. Starting sessions and posting user messages
//
// The façade delegates turn handling to session.Manager while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable session store
// and a structured logger.
package concierge

import (
	"context"
	"time"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/logging"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/orchestrator"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/registry"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/session"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/tool"
)

// Options configures the Concierge instance.
type Options struct {
	// Selector decides among multiple eligible agents. Nil falls back to
	// the first-registered eligible agent.
	Selector core.SelectionFunc
	// SelectionTimeout bounds the selector call.
	SelectionTimeout time.Duration
	// DecisionTimeout bounds each agent decision call.
	DecisionTimeout time.Duration
	// ToolTimeout bounds each tool execution.
	ToolTimeout time.Duration
	// SessionStore defaults to an in-memory implementation.
	SessionStore session.Store
	// Logger defaults to a NoOp logger.
	Logger logging.Logger
}

// Concierge is the high-level façade aggregating the orchestration pieces.
type Concierge struct {
	registry *registry.Registry
	invoker  *tool.Invoker
	manager  *session.Manager
}

// New creates a Concierge with optional overrides. Unset services are
// initialized with in-memory implementations.
func New(optFns ...func(o *Options)) *Concierge {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	reg := registry.New()

	orch := orchestrator.New(reg, func(o *orchestrator.Options) {
		o.Selector = opts.Selector
		if opts.SelectionTimeout > 0 {
			o.SelectionTimeout = opts.SelectionTimeout
		}
		if opts.DecisionTimeout > 0 {
			o.DecisionTimeout = opts.DecisionTimeout
		}
		o.Logger = opts.Logger
	})

	inv := tool.NewInvoker(func(o *tool.InvokerOptions) {
		if opts.ToolTimeout > 0 {
			o.Timeout = opts.ToolTimeout
		}
		o.Logger = opts.Logger
	})

	mgr := session.NewManager(reg, orch, inv, func(o *session.ManagerOptions) {
		o.Store = opts.SessionStore
		o.Logger = opts.Logger
	})

	return &Concierge{registry: reg, invoker: inv, manager: mgr}
}

// RegisterAgent adds an agent descriptor to the registry.
func (c *Concierge) RegisterAgent(desc core.AgentDescriptor) error {
	return c.registry.Register(desc)
}

// RegisterTool adds a tool to the shared invoker catalog.
func (c *Concierge) RegisterTool(t tool.Tool) error {
	return c.invoker.Register(t)
}

// Invoker exposes the tool catalog for advanced wiring.
func (c *Concierge) Invoker() *tool.Invoker { return c.invoker }

// StartSession creates a fresh conversation for the user.
func (c *Concierge) StartSession(userID string) (string, error) {
	return c.manager.StartSession(userID)
}

// PostMessage runs one conversational turn and returns the reply.
func (c *Concierge) PostMessage(ctx context.Context, sessionID, text string) (*session.Reply, error) {
	return c.manager.PostMessage(ctx, sessionID, text)
}

// EndSession terminates the conversation; its history stays readable.
func (c *Concierge) EndSession(sessionID string) error {
	return c.manager.EndSession(sessionID)
}

// Session returns the live session for inspection.
func (c *Concierge) Session(sessionID string) (*core.Session, error) {
	return c.manager.Session(sessionID)
}
