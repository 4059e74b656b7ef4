package llm

// CompletionRequest is the input to a Model. Models must not mutate it.
type CompletionRequest struct {
	Messages []ChatMessage `json:"messages"`
	Tools    []ToolSpec    `json:"tools,omitempty"`
	// Stop lists stop sequences. Order is irrelevant.
	Stop []string `json:"stop,omitempty"`
}

// UsageMetadata reports token accounting for one generation.
type UsageMetadata struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
	// ReasoningTokens is the share of OutputTokens spent on hidden reasoning.
	ReasoningTokens int `json:"reasoning_tokens"`
}

// GenerationInfo holds provider metadata attached to a generation.
type GenerationInfo struct {
	ModelVersion string `json:"model_version"`
	FinishStatus string `json:"finish_status,omitempty"`
}

// Generation is one alternative produced by the model.
type Generation struct {
	Message ChatMessage `json:"message"`
	// Usage is set only when Message is an AssistantMessage.
	Usage *UsageMetadata `json:"usage,omitempty"`
	Info  GenerationInfo `json:"info"`
}

// CompletionResult holds the generations of one call, in provider ranking order.
type CompletionResult struct {
	Generations  []Generation `json:"generations"`
	ModelVersion string       `json:"model_version"`
}

// Text returns the text of the first generation, or "" when there is none.
func (r *CompletionResult) Text() string {
	if r == nil || len(r.Generations) == 0 {
		return ""
	}
	return Text(r.Generations[0].Message)
}

// Usage sums usage over every generation that reports it.
func (r *CompletionResult) Usage() UsageMetadata {
	var total UsageMetadata
	if r == nil {
		return total
	}
	for _, g := range r.Generations {
		if g.Usage == nil {
			continue
		}
		total.InputTokens += g.Usage.InputTokens
		total.OutputTokens += g.Usage.OutputTokens
		total.TotalTokens += g.Usage.TotalTokens
		total.ReasoningTokens += g.Usage.ReasoningTokens
	}
	return total
}
