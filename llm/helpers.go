package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Complete sends an optional system prompt plus one user turn and returns
// the text of the first generation.
func Complete(ctx context.Context, m Model, system, user string) (string, error) {
	res, err := m.Generate(ctx, CompletionRequest{Messages: prompt(system, user)})
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

// CompleteJSON asks for a JSON object and unmarshals the first generation into result.
// It appends formatting instructions to the system prompt.
func CompleteJSON(ctx context.Context, m Model, system, user string, result any) error {
	system = strings.TrimSpace(system + "\n\nRespond with ONLY the JSON object. " +
		"No markdown, no code blocks, no explanations. " +
		"Start with { and end with }.")

	res, err := m.Generate(ctx, CompletionRequest{Messages: prompt(system, user)})
	if err != nil {
		return err
	}

	content := extractJSON(res.Text())
	if err := json.Unmarshal([]byte(content), result); err != nil {
		return fmt.Errorf("llm: unmarshal structured response: %w", err)
	}
	return nil
}

func prompt(system, user string) []ChatMessage {
	msgs := make([]ChatMessage, 0, 2)
	if system != "" {
		msgs = append(msgs, System(system))
	}
	return append(msgs, User(user))
}

// extractJSON pulls a JSON object from model output that may contain markdown fences.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s[3:], "\n"); idx >= 0 {
			s = s[3+idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
