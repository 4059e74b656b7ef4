package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/yagpt/logger"
)

func TestAdapter_Do_GET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/operations/op-1" {
			t.Errorf("expected /operations/op-1, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("view"); got != "full" {
			t.Errorf("expected view=full, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"op-1","done":false}`))
	}))
	defer srv.Close()

	a, err := New(Config{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := a.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/operations/op-1",
		Query:  map[string]string{"view": "full"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
	if resp.Headers["Content-Type"] != "application/json" {
		t.Errorf("unexpected headers: %v", resp.Headers)
	}
	if !strings.Contains(string(resp.Body), "op-1") {
		t.Errorf("body should contain op-1, got %s", resp.Body)
	}
}

func TestAdapter_Do_POST_JSONWithHeadersAndAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}
		if got := r.Header.Get("x-folder-id"); got != "folder" {
			t.Errorf("x-folder-id = %q, want folder", got)
		}
		if got := r.Header.Get("X-Default"); got != "yes" {
			t.Errorf("X-Default = %q, want yes", got)
		}
		if got := r.Header.Get("Authorization"); got != "Api-Key k" {
			t.Errorf("Authorization = %q, want %q", got, "Api-Key k")
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["modelUri"] != "gpt://f/m" {
			t.Errorf("unexpected body: %v", body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a, err := New(Config{
		BaseURL: srv.URL,
		Headers: map[string]string{"X-Default": "yes"},
		Auth:    BearerAuth("overridden"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = a.Do(context.Background(), Request{
		Method:  http.MethodPost,
		Path:    "completion",
		Headers: map[string]string{"x-folder-id": "folder"},
		Body:    map[string]string{"modelUri": "gpt://f/m"},
		Auth:    APIKeyAuthorization("Api-Key", "k"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAdapter_Do_FullURLBypassesBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/operations/x" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	a, err := New(Config{BaseURL: "http://unused.invalid"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := a.Do(context.Background(), Request{Method: http.MethodGet, Path: srv.URL + "/operations/x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAdapter_Do_ErrorStatusKeepsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such model"}`))
	}))
	defer srv.Close()

	a, _ := New(Config{BaseURL: srv.URL})
	resp, err := a.Do(context.Background(), Request{Method: http.MethodPost, Path: "/completion", Body: []byte(`{}`)})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsClientError(err) {
		t.Errorf("expected client error, got %v", err)
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected response with 404, got %+v", resp)
	}
	herr, _ := AsError(err)
	if !strings.Contains(string(herr.Body), "no such model") {
		t.Errorf("body not preserved: %q", herr.Body)
	}
}

func TestAdapter_Do_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	a, _ := New(Config{BaseURL: url, Timeout: time.Second})
	_, err := a.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsConnection(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestAdapter_Do_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	a, _ := New(Config{BaseURL: srv.URL})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := a.Do(ctx, Request{Method: http.MethodGet, Path: "/"})
	if !IsCanceled(err) {
		t.Fatalf("expected canceled error, got %v", err)
	}
}

func TestAdapter_Do_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	a, _ := New(Config{BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := a.Do(ctx, Request{Method: http.MethodGet, Path: "/"})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestAdapter_Do_UnencodableBody(t *testing.T) {
	a, _ := New(Config{BaseURL: "http://unused.invalid"})
	_, err := a.Do(context.Background(), Request{Method: http.MethodPost, Path: "/", Body: map[string]any{"f": func() {}}})
	herr, ok := AsError(err)
	if !ok || herr.Code != ErrCodeRequest {
		t.Fatalf("expected request error, got %v", err)
	}
}

func TestAdapter_WithLoggerAndTransport(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	a, err := New(Config{BaseURL: srv.URL, MaxIdleConnsPerHost: 4}, WithLogger(log), WithTransport(srv.Client().Transport))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close(context.Background())

	if _, err := a.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "http request completed") {
		t.Errorf("expected debug log, got %q", buf.String())
	}
	if a.GetConfig().MaxIdleConnsPerHost != 4 {
		t.Error("config not retained")
	}
	if a.Unwrap() == nil {
		t.Error("expected underlying client")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{MaxIdleConnsPerHost: -1}); err == nil {
		t.Fatal("expected error")
	}
}
