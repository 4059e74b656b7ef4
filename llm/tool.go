package llm

import "github.com/google/uuid"

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	// ID is generated locally; the provider does not assign one.
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolSpec describes a tool the model may call. Parameters is a JSON
// schema sent to the provider as-is.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// NewID returns a fresh random identifier for tool calls and results.
func NewID() string {
	return uuid.NewString()
}
