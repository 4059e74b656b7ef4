package foundation

import (
	"fmt"

	"github.com/kbukum/yagpt/errors"
	"github.com/kbukum/yagpt/llm"
)

// Wire roles. The provider has no tool role: tool results travel as
// "assistant" and model turns are sent as "ai".
const (
	wireRoleSystem    = "system"
	wireRoleUser      = "user"
	wireRoleAI        = "ai"
	wireRoleAssistant = "assistant"
)

// ToWire converts a chat message to the provider format. Pointers to the
// message variants are accepted; a nil pointer is unsupported.
func ToWire(m llm.ChatMessage) (WireMessage, error) {
	switch v := byValue(m).(type) {
	case llm.SystemMessage:
		return WireMessage{Role: wireRoleSystem, Text: v.Text}, nil
	case llm.UserMessage:
		return WireMessage{Role: wireRoleUser, Text: v.Text}, nil
	case llm.AssistantMessage:
		w := WireMessage{Role: wireRoleAI, Text: v.Text}
		if len(v.ToolCalls) > 0 {
			calls := make([]WireToolCall, len(v.ToolCalls))
			for i, tc := range v.ToolCalls {
				args := tc.Arguments
				if args == nil {
					args = map[string]any{}
				}
				calls[i] = WireToolCall{FunctionCall: FunctionCall{Name: tc.Name, Argument: args}}
			}
			w.ToolCallList = &ToolCallList{ToolCalls: calls}
		}
		return w, nil
	case llm.ToolResultMessage:
		return WireMessage{
			Role: wireRoleAssistant,
			ToolResultList: &ToolResultList{ToolResults: []WireToolResult{{
				FunctionResult: FunctionResult{Name: v.ToolName, Content: v.Content},
			}}},
		}, nil
	default:
		return WireMessage{}, errors.UnsupportedMessageKind(fmt.Sprintf("%T", m))
	}
}

func byValue(m llm.ChatMessage) llm.ChatMessage {
	switch v := m.(type) {
	case *llm.SystemMessage:
		if v != nil {
			return *v
		}
	case *llm.UserMessage:
		if v != nil {
			return *v
		}
	case *llm.AssistantMessage:
		if v != nil {
			return *v
		}
	case *llm.ToolResultMessage:
		if v != nil {
			return *v
		}
	}
	return m
}

// ToWireMessages converts messages in order, stopping at the first failure.
func ToWireMessages(msgs []llm.ChatMessage) ([]WireMessage, error) {
	out := make([]WireMessage, 0, len(msgs))
	for _, m := range msgs {
		w, err := ToWire(m)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// FromWire converts a provider message back to a chat message. Tool call
// and tool result ids are freshly generated.
func FromWire(w WireMessage) (llm.ChatMessage, error) {
	if w.ToolResultList != nil && len(w.ToolResultList.ToolResults) > 0 {
		r := w.ToolResultList.ToolResults[0].FunctionResult
		return llm.ToolResult(r.Name, r.Content, llm.NewID()), nil
	}
	if w.ToolCallList != nil && len(w.ToolCallList.ToolCalls) > 0 {
		calls := make([]llm.ToolCall, len(w.ToolCallList.ToolCalls))
		for i, c := range w.ToolCallList.ToolCalls {
			calls[i] = llm.ToolCall{
				ID:        llm.NewID(),
				Name:      c.FunctionCall.Name,
				Arguments: c.FunctionCall.Argument,
			}
		}
		return llm.AssistantMessage{Text: w.Text, ToolCalls: calls}, nil
	}

	switch w.Role {
	case wireRoleSystem:
		return llm.System(w.Text), nil
	case wireRoleUser:
		return llm.User(w.Text), nil
	case wireRoleAssistant:
		return llm.Assistant(w.Text), nil
	default:
		return nil, errors.UnknownRole(w.Role, w)
	}
}

// ToWireTool converts a tool definition to the provider format.
func ToWireTool(t llm.ToolSpec) WireTool {
	return WireTool{Function: FunctionSpec{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}}
}

// ToWireTools converts tool definitions in order. It returns nil for none.
func ToWireTools(tools []llm.ToolSpec) []WireTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]WireTool, len(tools))
	for i, t := range tools {
		out[i] = ToWireTool(t)
	}
	return out
}
