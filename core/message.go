package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author category of a Message.
type Role string

// Conversation roles. Ordering of messages in Session history is the sole
// source of truth for conversational context.
const (
	RoleUser   Role = "user"
	RoleAgent  Role = "agent"
	RoleSystem Role = "system"
)

// Message is an ordered, append-only entry in a session's conversation
// history. Agent is the producing agent's name for RoleAgent entries and
// empty otherwise.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Agent     string    `json:"agent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewID generates a unique identifier for messages and tool calls.
func NewID() string { return uuid.NewString() }

// NewUserMessage creates a user-authored message.
func NewUserMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleUser, Content: content, Timestamp: time.Now().UTC()}
}

// NewAgentMessage creates a message produced by the named agent. The
// orchestrator's own fallback replies use its reserved author name.
func NewAgentMessage(agent, content string) Message {
	return Message{ID: NewID(), Role: RoleAgent, Content: content, Agent: agent, Timestamp: time.Now().UTC()}
}

// NewSystemMessage creates a system message (session lifecycle markers etc.).
func NewSystemMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleSystem, Content: content, Timestamp: time.Now().UTC()}
}
