package foundation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kbukum/yagpt/errors"
	"github.com/kbukum/yagpt/llm"
)

// Response is a terminal completion response. Usage and model version are
// read from inside "result" first, then from the top level.
type Response struct {
	Result       *ResultBody `json:"result"`
	Usage        *WireUsage  `json:"usage,omitempty"`
	ModelVersion string      `json:"modelVersion,omitempty"`
}

type ResultBody struct {
	Alternatives []Alternative `json:"alternatives"`
	Usage        *WireUsage    `json:"usage,omitempty"`
	ModelVersion string        `json:"modelVersion,omitempty"`
}

type Alternative struct {
	Message WireMessage `json:"message"`
	Status  string      `json:"status,omitempty"`
}

// WireUsage reports token counts. The service encodes counts as decimal
// strings; plain numbers are accepted too.
type WireUsage struct {
	InputTextTokens         *TokenCount              `json:"inputTextTokens"`
	CompletionTokens        *TokenCount              `json:"completionTokens"`
	TotalTokens             *TokenCount              `json:"totalTokens"`
	CompletionTokensDetails *CompletionTokensDetails `json:"completionTokensDetails,omitempty"`
}

type CompletionTokensDetails struct {
	ReasoningTokens *TokenCount `json:"reasoningTokens"`
}

// TokenCount decodes from a JSON number or a string holding one.
type TokenCount int

func (t *TokenCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("token count %s: %w", data, err)
	}
	*t = TokenCount(n)
	return nil
}

func (r *Response) usage() *WireUsage {
	if r.Result != nil && r.Result.Usage != nil {
		return r.Result.Usage
	}
	return r.Usage
}

func (r *Response) modelVersion() string {
	if r.Result != nil && r.Result.ModelVersion != "" {
		return r.Result.ModelVersion
	}
	return r.ModelVersion
}

// metadata converts wire usage, failing when a required count is absent.
func (u *WireUsage) metadata() (*llm.UsageMetadata, error) {
	if u == nil {
		return nil, errors.MalformedResponse("usage is missing")
	}
	required := []struct {
		name  string
		value *TokenCount
	}{
		{"usage.inputTextTokens", u.InputTextTokens},
		{"usage.completionTokens", u.CompletionTokens},
		{"usage.totalTokens", u.TotalTokens},
	}
	for _, f := range required {
		if f.value == nil {
			return nil, errors.MalformedResponse(f.name + " is missing")
		}
	}
	md := &llm.UsageMetadata{
		InputTokens:  int(*u.InputTextTokens),
		OutputTokens: int(*u.CompletionTokens),
		TotalTokens:  int(*u.TotalTokens),
	}
	if d := u.CompletionTokensDetails; d != nil && d.ReasoningTokens != nil {
		md.ReasoningTokens = int(*d.ReasoningTokens)
	}
	return md, nil
}

// BuildResult maps a terminal response to a completion result. Generations
// keep the provider's alternatives order; usage is attached to assistant
// generations only.
func BuildResult(resp *Response) (*llm.CompletionResult, error) {
	if resp == nil || resp.Result == nil || len(resp.Result.Alternatives) == 0 {
		return nil, errors.MalformedResponse("result.alternatives is missing or empty")
	}

	version := resp.modelVersion()
	out := &llm.CompletionResult{
		Generations:  make([]llm.Generation, 0, len(resp.Result.Alternatives)),
		ModelVersion: version,
	}
	for _, alt := range resp.Result.Alternatives {
		msg, err := FromWire(alt.Message)
		if err != nil {
			return nil, err
		}
		gen := llm.Generation{
			Message: msg,
			Info:    llm.GenerationInfo{ModelVersion: version, FinishStatus: alt.Status},
		}
		if _, ok := msg.(llm.AssistantMessage); ok {
			usage, err := resp.usage().metadata()
			if err != nil {
				return nil, err
			}
			gen.Usage = usage
		}
		out.Generations = append(out.Generations, gen)
	}
	return out, nil
}

// Operation is a long-running completion handle.
type Operation struct {
	ID   string `json:"id"`
	Done bool   `json:"done"`
	// Response and Result hold the terminal payload; the service uses
	// "response", "result" is accepted as well.
	Response json.RawMessage `json:"response,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    *OperationError `json:"error,omitempty"`
}

// OperationError is the status the service reports for a failed operation.
type OperationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation error %d: %s", e.Code, e.Message)
}

// Completion decodes the terminal payload of a done operation. The payload
// may be a bare result body or one wrapped in {"result": ...}.
func (o *Operation) Completion() (*Response, error) {
	raw := o.Response
	if len(raw) == 0 || string(raw) == "null" {
		raw = o.Result
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.MalformedResponse("operation " + o.ID + " has no response")
	}

	var wrapped Response
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, errors.MalformedResponse("decode operation response: " + err.Error()).WithCause(err)
	}
	if wrapped.Result != nil {
		return &wrapped, nil
	}

	var bare ResultBody
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, errors.MalformedResponse("decode operation response: " + err.Error()).WithCause(err)
	}
	return &Response{Result: &bare}, nil
}
