package foundation

import (
	"encoding/json"

	"github.com/kbukum/yagpt/llm"
)

// Payload is the request body of both completion endpoints.
type Payload struct {
	ModelURI          string            `json:"modelUri"`
	CompletionOptions CompletionOptions `json:"completionOptions"`
	ReasoningOptions  *ReasoningOptions `json:"reasoningOptions,omitempty"`
	Messages          []WireMessage     `json:"messages"`
	Tools             []WireTool        `json:"tools,omitempty"`
}

// CompletionOptions controls sampling. Temperature and MaxTokens encode as
// null when unset; StopSequences is omitted when empty.
type CompletionOptions struct {
	Stream        bool     `json:"stream"`
	Temperature   *float64 `json:"temperature"`
	MaxTokens     *int     `json:"maxTokens"`
	StopSequences []string `json:"stopSequences,omitempty"`
}

type ReasoningOptions struct {
	Mode string `json:"mode"`
}

// WireMessage is one entry of the provider's messages array.
type WireMessage struct {
	Role           string          `json:"role"`
	Text           string          `json:"text,omitempty"`
	ToolCallList   *ToolCallList   `json:"toolCallList,omitempty"`
	ToolResultList *ToolResultList `json:"toolResultList,omitempty"`
}

type ToolCallList struct {
	ToolCalls []WireToolCall `json:"toolCalls"`
}

type WireToolCall struct {
	FunctionCall FunctionCall `json:"functionCall"`
}

// FunctionCall carries the full argument object under "argument".
type FunctionCall struct {
	Name     string         `json:"name"`
	Argument map[string]any `json:"argument"`
}

// UnmarshalJSON also accepts the plural "arguments" key.
func (f *FunctionCall) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name      string         `json:"name"`
		Argument  map[string]any `json:"argument"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f.Name = aux.Name
	f.Argument = aux.Argument
	if f.Argument == nil {
		f.Argument = aux.Arguments
	}
	return nil
}

type ToolResultList struct {
	ToolResults []WireToolResult `json:"toolResults"`
}

type WireToolResult struct {
	FunctionResult FunctionResult `json:"functionResult"`
}

type FunctionResult struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// WireTool is a tool definition in the provider format.
type WireTool struct {
	Function FunctionSpec `json:"function"`
}

type FunctionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// BuildPayload assembles the request body from already converted messages
// and tools. It does not retain or modify its slice arguments.
func BuildPayload(cfg Config, messages []WireMessage, tools []WireTool, stop []string) Payload {
	p := Payload{
		ModelURI: cfg.ModelURI(),
		CompletionOptions: CompletionOptions{
			Stream:      cfg.Streaming,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
		Messages: append(make([]WireMessage, 0, len(messages)), messages...),
	}
	if cfg.Reasoning {
		p.ReasoningOptions = &ReasoningOptions{Mode: ReasoningModeHidden}
	}
	if len(tools) > 0 {
		p.Tools = append([]WireTool(nil), tools...)
	}
	if len(stop) > 0 {
		p.CompletionOptions.StopSequences = append([]string(nil), stop...)
	}
	return p
}

// EncodeRequest converts req and builds its payload.
func EncodeRequest(cfg Config, req llm.CompletionRequest) (Payload, error) {
	messages, err := ToWireMessages(req.Messages)
	if err != nil {
		return Payload{}, err
	}
	return BuildPayload(cfg, messages, ToWireTools(req.Tools), req.Stop), nil
}
