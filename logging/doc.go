// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. The orchestration core logs key/value event-style
// messages ("orchestrator.select", "tool.call.success", ...) through this
// interface only.
package logging
