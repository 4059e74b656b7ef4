package llm

// Role names the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ChatMessage is one of SystemMessage, UserMessage, AssistantMessage or
// ToolResultMessage, passed by value or by pointer. The set is closed:
// only types in this package implement it.
type ChatMessage interface {
	Role() Role
	isChatMessage()
}

// SystemMessage carries instructions for the model.
type SystemMessage struct {
	Text string `json:"text"`
}

func (SystemMessage) Role() Role     { return RoleSystem }
func (SystemMessage) isChatMessage() {}

// UserMessage is a turn written by the user.
type UserMessage struct {
	Text string `json:"text"`
}

func (UserMessage) Role() Role     { return RoleUser }
func (UserMessage) isChatMessage() {}

// AssistantMessage is a model turn, optionally requesting tool invocations.
type AssistantMessage struct {
	Text      string     `json:"text"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

func (AssistantMessage) Role() Role     { return RoleAssistant }
func (AssistantMessage) isChatMessage() {}

// ToolResultMessage returns the output of a tool invocation to the model.
type ToolResultMessage struct {
	ToolName string `json:"tool_name"`
	Content  string `json:"content"`
	// ToolCallID correlates the result with the call that produced it.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

func (ToolResultMessage) Role() Role     { return RoleTool }
func (ToolResultMessage) isChatMessage() {}

// System builds a SystemMessage.
func System(text string) SystemMessage { return SystemMessage{Text: text} }

// User builds a UserMessage.
func User(text string) UserMessage { return UserMessage{Text: text} }

// Assistant builds an AssistantMessage. The calls slice is copied.
func Assistant(text string, calls ...ToolCall) AssistantMessage {
	m := AssistantMessage{Text: text}
	if len(calls) > 0 {
		m.ToolCalls = append([]ToolCall(nil), calls...)
	}
	return m
}

// ToolResult builds a ToolResultMessage.
func ToolResult(toolName, content, toolCallID string) ToolResultMessage {
	return ToolResultMessage{ToolName: toolName, Content: content, ToolCallID: toolCallID}
}

// Text returns the textual content of m, or "" for unknown variants.
func Text(m ChatMessage) string {
	switch v := m.(type) {
	case SystemMessage:
		return v.Text
	case UserMessage:
		return v.Text
	case AssistantMessage:
		return v.Text
	case ToolResultMessage:
		return v.Content
	default:
		return ""
	}
}
