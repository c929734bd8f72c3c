package models

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall describes one tool invocation requested by the assistant.
// Arguments is the JSON-encoded argument object as produced by the model.
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatMessage is one transcript entry. Created is a unix timestamp in seconds,
// assigned by the transcript store at append time when zero.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	Created    int64      `json:"created,omitempty"`
}
