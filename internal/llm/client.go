// Package llm defines the language-model client interface used by the
// conversation orchestrator, plus the OpenAI-backed implementation.
//
// The contract mirrors what the orchestrator needs from a hosted completion
// API: system prompt + message history + tool schemas in, a stream of text
// deltas and aggregated tool-call events out.
package llm

import "context"

// Role constants for messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single turn in a conversation.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`  // assistant turns only
	ToolCallID string     `json:"toolCallId,omitempty"` // tool turns only
	Name       string     `json:"name,omitempty"`       // tool name on tool turns
}

// ToolCall is a model request to invoke a tool.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// ToolDefinition describes a tool the model can invoke.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request is the input to a Complete or Stream call.
type Request struct {
	Model       string           `json:"model,omitempty"`
	System      string           `json:"system,omitempty"`
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	MaxTokens   int              `json:"maxTokens,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
}

// Response is the result of a completion. For streaming calls it is the
// final assembled assistant message, tool calls included.
type Response struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// StreamEvent is a chunk from a streaming completion.
type StreamEvent struct {
	Type    string `json:"type"`              // "delta", "done", "error"
	Content string `json:"content,omitempty"` // text delta
	Error   string `json:"error,omitempty"`   // error message (type="error")

	// Final fields (type="done")
	Response *Response `json:"response,omitempty"`
}

// Client is the interface the orchestrator talks to.
type Client interface {
	// Complete sends a request and returns the full response.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Stream sends a request and returns a channel of streaming events.
	// The channel is closed after a terminal "done" or "error" event.
	Stream(ctx context.Context, req Request) (<-chan StreamEvent, error)

	// Name returns the provider name (e.g. "openai").
	Name() string
}
