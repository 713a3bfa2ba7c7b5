// Package session owns conversation lifecycle: creating sessions, running
// strictly sequential turns through the orchestrator, and persisting session
// objects between turns. The Store interface keeps higher layers independent
// of concrete storage; InMemoryStore is the default backend. Add additional
// backends (Redis, Postgres) as implementations of Store without changing
// any calling code.
package session
