package models

// ChatMessage is a single entry in a conversation history. Ordering is
// significant; the system prompt is never stored here, it is prepended by the
// LLM service on every request.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a function invocation requested by the model. Arguments is the
// raw JSON string exactly as the service returned it; parsing and validation
// happen in the tool that executes the call.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatRequest accepts either a full message history or, as a shorthand, a
// single message string.
type ChatRequest struct {
	SessionID string        `json:"session_id,omitempty"`
	Messages  []ChatMessage `json:"messages,omitempty"`
	Message   string        `json:"message,omitempty"`
}

type ChatResponse struct {
	SessionID string        `json:"session_id,omitempty"`
	Reply     string        `json:"reply"`
	Messages  []ChatMessage `json:"messages"`
}
