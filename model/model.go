package model

import "context"

// Roles of chat messages exchanged with a provider.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolDefinition declaratively exposes a callable tool to the model.
// Parameters is a JSON Schema object (minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolUse is a tool invocation requested by the model. Unified across
// vendors so downstream logic does not need per-provider branching.
type ToolUse struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolResult carries the outcome of a ToolUse back to the model on the
// following request.
type ToolResult struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	IsError bool   `json:"is_error"`
}

// Message is one chat turn in provider-agnostic form. Assistant messages may
// carry ToolUses; user messages may carry ToolResults answering them.
type Message struct {
	Role        string       `json:"role"`
	Text        string       `json:"text"`
	ToolUses    []ToolUse    `json:"tool_uses,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// Request captures the normalized model input.
type Request struct {
	System   string           `json:"system,omitempty"`
	Messages []Message        `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a completed model turn: free text, requested tool uses, or both.
type Response struct {
	Text       string      `json:"text"`
	ToolUses   []ToolUse   `json:"tool_uses,omitempty"`
	StopReason string      `json:"stop_reason"`
	Usage      *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the agent layer needs to drive reasoning.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}
