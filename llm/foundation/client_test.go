package foundation

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/yagpt/errors"
	"github.com/kbukum/yagpt/llm"
	"github.com/kbukum/yagpt/logger"
)

const okBody = `{"result":{"alternatives":[{"message":{"role":"assistant","text":"Hello!"},"status":"ALTERNATIVE_STATUS_FINAL"}],` +
	`"usage":{"inputTextTokens":"12","completionTokens":"3","totalTokens":"15"},"modelVersion":"23.10.2024"}}`

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// fakeAPI records every request before handing it to handler.
type fakeAPI struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newFakeAPI(t *testing.T, handler http.HandlerFunc) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		f.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		handler(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) hits() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeAPI) count(path string) int {
	n := 0
	for _, r := range f.hits() {
		if r.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) client(t *testing.T, mutate func(*Config), opts ...Option) *Client {
	t.Helper()
	cfg := Config{
		FolderID:      "folder",
		APIKey:        "secret",
		BaseURL:       f.srv.URL,
		OperationsURL: f.srv.URL + "/operations",
		PollInterval:  time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func helloRequest() llm.CompletionRequest {
	return llm.CompletionRequest{Messages: []llm.ChatMessage{llm.System("be nice"), llm.User("Hi")}}
}

func TestComplete_Success(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, okBody)
	})
	c := api.client(t, nil)

	res, err := c.Complete(context.Background(), helloRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text() != "Hello!" {
		t.Errorf("Text() = %q, want %q", res.Text(), "Hello!")
	}
	if u := res.Usage(); u.InputTokens != 12 || u.OutputTokens != 3 || u.TotalTokens != 15 {
		t.Errorf("Usage() = %+v", u)
	}

	hits := api.hits()
	if len(hits) != 1 {
		t.Fatalf("requests = %d, want 1", len(hits))
	}
	req := hits[0]
	if req.Method != http.MethodPost || req.Path != "/completion" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if got := req.Header.Get("Authorization"); got != "Api-Key secret" {
		t.Errorf("Authorization = %q", got)
	}
	if got := req.Header.Get("x-folder-id"); got != "folder" {
		t.Errorf("x-folder-id = %q", got)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := req.Header.Get("User-Agent"); !strings.HasPrefix(got, "yagpt/") {
		t.Errorf("User-Agent = %q", got)
	}

	var p Payload
	if err := json.Unmarshal(req.Body, &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if p.ModelURI != "gpt://folder/yandexgpt-lite" || len(p.Messages) != 2 || p.Messages[1].Text != "Hi" {
		t.Errorf("unexpected payload: %s", req.Body)
	}
}

func TestComplete_IAMTokenOnly(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, okBody)
	})
	c := api.client(t, func(cfg *Config) {
		cfg.APIKey = ""
		cfg.IAMToken = "iam"
	})

	if _, err := c.Complete(context.Background(), helloRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := api.hits()[0].Header.Get("Authorization"); got != "Bearer iam" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer iam")
	}
}

func TestComplete_MissingCredential(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, okBody)
	})
	c := api.client(t, func(cfg *Config) { cfg.APIKey = "" })

	_, err := c.Complete(context.Background(), helloRequest())
	if !errors.IsMissingCredential(err) {
		t.Fatalf("expected MISSING_CREDENTIAL, got %v", err)
	}
	if n := len(api.hits()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestComplete_HTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, `{"error":"model not found"}`, errors.IsBadRequest},
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, errors.IsBadRequest},
		{"unavailable", http.StatusServiceUnavailable, `upstream down`, errors.IsCompletionFailure},
		{"created", http.StatusCreated, okBody, errors.IsCompletionFailure},
		{"bad json", http.StatusOK, `not json`, errors.IsMalformedResponse},
		{"missing usage", http.StatusOK, `{"result":{"alternatives":[{"message":{"role":"assistant","text":"x"}}]}}`, errors.IsMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
				respond(w, tt.status, tt.body)
			})
			c := api.client(t, nil)

			_, err := c.Complete(context.Background(), helloRequest())
			if !tt.check(err) {
				t.Fatalf("unexpected error classification: %v", err)
			}
			if tt.status == http.StatusOK {
				return
			}
			appErr, _ := errors.AsAppError(err)
			if appErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", appErr.Status, tt.status)
			}
			if appErr.Body != tt.body {
				t.Errorf("Body = %q, want %q", appErr.Body, tt.body)
			}
		})
	}
}

func TestComplete_NotFoundIsNotCompletionFailure(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusNotFound, `{}`)
	})
	_, err := api.client(t, nil).Complete(context.Background(), helloRequest())
	if errors.IsCompletionFailure(err) {
		t.Fatalf("4xx must be BAD_REQUEST, got %v", err)
	}
}

func TestComplete_TransportFailure(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {})
	c := api.client(t, nil)
	api.srv.Close()

	_, err := c.Complete(context.Background(), helloRequest())
	if !errors.IsTransportFailure(err) {
		t.Fatalf("expected TRANSPORT_FAILED, got %v", err)
	}
}

func TestComplete_Cancelled(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, okBody)
	})
	c := api.client(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Complete(ctx, helloRequest()); !errors.IsCancelled(err) {
		t.Fatalf("expected CANCELLED, got %v", err)
	}
}

func TestComplete_UnsupportedMessage(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, okBody)
	})
	c := api.client(t, nil)

	req := llm.CompletionRequest{Messages: []llm.ChatMessage{otherMessage{}}}
	if _, err := c.Complete(context.Background(), req); !errors.IsUnsupportedMessageKind(err) {
		t.Fatalf("expected UNSUPPORTED_MESSAGE_KIND, got %v", err)
	}
	if n := len(api.hits()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestComplete_VerboseLogsPayload(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, okBody)
	})

	tests := []struct {
		verbose bool
		want    bool
	}{
		{true, true},
		{false, false},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&logger.Config{Level: "info", Format: "json"}, "test", &buf)
		c := api.client(t, func(cfg *Config) { cfg.Verbose = tt.verbose }, WithLogger(log))

		if _, err := c.Complete(context.Background(), helloRequest()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := strings.Contains(buf.String(), `"payload"`) && strings.Contains(buf.String(), "modelUri")
		if got != tt.want {
			t.Errorf("verbose=%v: payload logged = %v, output %s", tt.verbose, got, buf.String())
		}
	}
}

func TestGenerate_ModeSelection(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		iamToken string
		wantPath string
	}{
		{"auto without iam", ModeAuto, "", "/completion"},
		{"auto with iam", ModeAuto, "iam", "/completionAsync"},
		{"forced sync", ModeSync, "iam", "/completion"},
		{"forced async", ModeAsync, "iam", "/completionAsync"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t, operationHandler(t, 0, okOperation))
			c := api.client(t, func(cfg *Config) {
				cfg.Mode = tt.mode
				cfg.IAMToken = tt.iamToken
			})

			res, err := c.Generate(context.Background(), helloRequest())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Text() != "Hello!" {
				t.Errorf("Text() = %q", res.Text())
			}
			if api.count(tt.wantPath) != 1 {
				t.Errorf("expected one request to %s, got %+v", tt.wantPath, api.hits())
			}
			if c.Name() != ModelLite {
				t.Errorf("Name() = %q", c.Name())
			}
		})
	}
}
