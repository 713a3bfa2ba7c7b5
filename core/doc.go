// Package core defines the shared primitives of the travel concierge
// orchestration runtime: the versioned per-session SharedState container,
// the append-only Message history and ToolCall audit log, the Session
// aggregate that ties them together, the scoped ToolContext handed to tool
// implementations, and the contracts (DecisionFunc, SelectionFunc,
// AgentDescriptor) through which external agent reasoning plugs into the
// orchestrator.
//
// Nothing in this package talks to a model provider or a network. Higher
// layers (orchestrator, session, tool, travel, model) build on these types.
package core
