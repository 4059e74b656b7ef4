package llm

import "context"

// Model produces completions for a chat conversation.
type Model interface {
	// Name identifies the model, e.g. "yandexgpt-lite".
	Name() string
	Generate(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// ModeReporter is implemented by models that can report which transport
// mode ("sync" or "async") a call will use.
type ModeReporter interface {
	Mode() string
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc struct {
	ModelName string
	Fn        func(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

func (f ModelFunc) Name() string { return f.ModelName }

func (f ModelFunc) Generate(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	return f.Fn(ctx, req)
}

func modeOf(m Model) string {
	if r, ok := m.(ModeReporter); ok {
		return r.Mode()
	}
	return "unknown"
}
