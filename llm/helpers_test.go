package llm

import (
	"context"
	"errors"
	"testing"
)

func fixedModel(text string, seen *CompletionRequest) Model {
	return ModelFunc{ModelName: "test", Fn: func(_ context.Context, req CompletionRequest) (*CompletionResult, error) {
		if seen != nil {
			*seen = req
		}
		return &CompletionResult{Generations: []Generation{{Message: Assistant(text)}}}, nil
	}}
}

func TestComplete(t *testing.T) {
	var req CompletionRequest
	got, err := Complete(context.Background(), fixedModel("The answer is 42.", &req), "You are helpful.", "What is the answer?")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got != "The answer is 42." {
		t.Errorf("result = %q, want %q", got, "The answer is 42.")
	}
	if len(req.Messages) != 2 || req.Messages[0].Role() != RoleSystem || req.Messages[1].Role() != RoleUser {
		t.Errorf("unexpected messages: %#v", req.Messages)
	}
}

func TestComplete_NoSystem(t *testing.T) {
	var req CompletionRequest
	if _, err := Complete(context.Background(), fixedModel("ok", &req), "", "hi"); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if len(req.Messages) != 1 {
		t.Errorf("expected only the user message, got %d", len(req.Messages))
	}
}

func TestComplete_Error(t *testing.T) {
	boom := errors.New("boom")
	m := ModelFunc{ModelName: "x", Fn: func(context.Context, CompletionRequest) (*CompletionResult, error) { return nil, boom }}
	if _, err := Complete(context.Background(), m, "", "hi"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestCompleteJSON(t *testing.T) {
	var req CompletionRequest
	var out struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	m := fixedModel("```json\n{\"name\": \"Alice\", \"age\": 30}\n```", &req)
	if err := CompleteJSON(context.Background(), m, "Extract.", "Alice is 30", &out); err != nil {
		t.Fatalf("CompleteJSON() error: %v", err)
	}
	if out.Name != "Alice" || out.Age != 30 {
		t.Errorf("unexpected result: %+v", out)
	}
	if sys, ok := req.Messages[0].(SystemMessage); !ok || sys.Text == "Extract." {
		t.Errorf("expected formatting instructions appended, got %#v", req.Messages[0])
	}
}

func TestCompleteJSON_Invalid(t *testing.T) {
	var out map[string]any
	if err := CompleteJSON(context.Background(), fixedModel("no json here", nil), "", "x", &out); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose", `Sure! {"a":1} hope this helps`, `{"a":1}`},
		{"none", "nothing", "nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
