package foundation

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/yagpt/errors"
	"github.com/kbukum/yagpt/observability"
)

const okOperation = `{"id":"op-1","done":true,"response":{"alternatives":[{"message":{"role":"assistant","text":"Hello!"},` +
	`"status":"ALTERNATIVE_STATUS_FINAL"}],"usage":{"inputTextTokens":"12","completionTokens":"3","totalTokens":"15"},` +
	`"modelVersion":"23.10.2024"}}`

// operationHandler serves a sync completion, an async submission of op-1,
// and pending polls of op-1 before answering with final.
func operationHandler(t *testing.T, pending int, final string) http.HandlerFunc {
	t.Helper()
	var polls atomic.Int32
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/completion":
			respond(w, http.StatusOK, okBody)
		case r.Method == http.MethodPost && r.URL.Path == "/completionAsync":
			respond(w, http.StatusOK, `{"id":"op-1","done":false}`)
		case r.Method == http.MethodGet && r.URL.Path == "/operations/op-1":
			if int(polls.Add(1)) <= pending {
				respond(w, http.StatusOK, `{"id":"op-1","done":false}`)
				return
			}
			respond(w, http.StatusOK, final)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}
}

func iamOnly(cfg *Config) {
	cfg.APIKey = ""
	cfg.IAMToken = "iam"
}

func TestCompleteAsync_PollsUntilDone(t *testing.T) {
	api := newFakeAPI(t, operationHandler(t, 1, okOperation))
	c := api.client(t, iamOnly)

	res, err := c.CompleteAsync(context.Background(), helloRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text() != "Hello!" || res.ModelVersion != "23.10.2024" {
		t.Errorf("unexpected result: %+v", res)
	}
	if n := api.count("/completionAsync"); n != 1 {
		t.Errorf("submissions = %d, want 1", n)
	}
	if n := api.count("/operations/op-1"); n != 2 {
		t.Errorf("polls = %d, want 2", n)
	}

	for _, r := range api.hits() {
		if got := r.Header.Get("Authorization"); got != "Bearer iam" {
			t.Errorf("%s %s: Authorization = %q", r.Method, r.Path, got)
		}
	}
	if got := api.hits()[0].Header.Get("x-folder-id"); got != "folder" {
		t.Errorf("x-folder-id = %q", got)
	}
}

func TestCompleteAsync_APIKeyOnSubmitBearerOnPoll(t *testing.T) {
	api := newFakeAPI(t, operationHandler(t, 0, okOperation))
	c := api.client(t, func(cfg *Config) { cfg.IAMToken = "iam" })

	if _, err := c.CompleteAsync(context.Background(), helloRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range api.hits() {
		want := "Bearer iam"
		if r.Path == "/completionAsync" {
			want = "Api-Key secret"
		}
		if got := r.Header.Get("Authorization"); got != want {
			t.Errorf("%s: Authorization = %q, want %q", r.Path, got, want)
		}
	}
}

func TestCompleteAsync_RequiresIAMToken(t *testing.T) {
	api := newFakeAPI(t, operationHandler(t, 0, okOperation))
	c := api.client(t, nil)

	_, err := c.CompleteAsync(context.Background(), helloRequest())
	if !errors.IsMissingCredential(err) {
		t.Fatalf("expected MISSING_CREDENTIAL, got %v", err)
	}
	if n := len(api.hits()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestCompleteAsync_OperationError(t *testing.T) {
	final := `{"id":"op-1","done":true,"error":{"code":3,"message":"invalid model"}}`
	api := newFakeAPI(t, operationHandler(t, 0, final))
	c := api.client(t, iamOnly)

	_, err := c.CompleteAsync(context.Background(), helloRequest())
	if !errors.IsOperationFailure(err) {
		t.Fatalf("expected OPERATION_FAILED, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["operation_id"] != "op-1" {
		t.Errorf("operation_id = %v", appErr.Details["operation_id"])
	}
}

func TestCompleteAsync_PollFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"server error", http.StatusInternalServerError, `oops`, http.StatusInternalServerError},
		{"not found", http.StatusNotFound, `{"message":"no such operation"}`, http.StatusNotFound},
		{"id mismatch", http.StatusOK, `{"id":"op-2","done":true}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/completionAsync" {
					respond(w, http.StatusOK, `{"id":"op-1","done":false}`)
					return
				}
				respond(w, tt.status, tt.body)
			})
			c := api.client(t, iamOnly)

			_, err := c.CompleteAsync(context.Background(), helloRequest())
			if !errors.IsOperationFailure(err) {
				t.Fatalf("expected OPERATION_FAILED, got %v", err)
			}
			appErr, _ := errors.AsAppError(err)
			if appErr.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", appErr.Status, tt.wantStatus)
			}
			if n := api.count("/operations/op-1"); n != 1 {
				t.Errorf("polls = %d, want 1", n)
			}
		})
	}
}

func TestCompleteAsync_SubmitFailures(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		code  int
		check func(error) bool
	}{
		{"bad request", `{"error":"bad"}`, http.StatusBadRequest, errors.IsTransportFailure},
		{"unavailable", `down`, http.StatusServiceUnavailable, errors.IsTransportFailure},
		{"server error", `oops`, http.StatusBadGateway, errors.IsTransportFailure},
		{"accepted", `{"id":"op-1","done":false}`, http.StatusAccepted, errors.IsTransportFailure},
		{"missing id", `{"done":false}`, http.StatusOK, errors.IsMalformedResponse},
		{"bad json", `not json`, http.StatusOK, errors.IsMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
				respond(w, tt.code, tt.body)
			})
			c := api.client(t, iamOnly)

			_, err := c.CompleteAsync(context.Background(), helloRequest())
			if !tt.check(err) {
				t.Fatalf("unexpected error classification: %v", err)
			}
			if n := len(api.hits()); n != 1 {
				t.Errorf("requests = %d, want 1", n)
			}
			if tt.code == http.StatusOK {
				return
			}
			appErr, _ := errors.AsAppError(err)
			if appErr.Status != tt.code {
				t.Errorf("Status = %d, want %d", appErr.Status, tt.code)
			}
			if appErr.Body != tt.body {
				t.Errorf("Body = %q, want %q", appErr.Body, tt.body)
			}
		})
	}
}

func TestCompleteAsync_SubmitTransportFailure(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {})
	c := api.client(t, iamOnly)
	api.srv.Close()

	if _, err := c.CompleteAsync(context.Background(), helloRequest()); !errors.IsTransportFailure(err) {
		t.Fatalf("expected TRANSPORT_FAILED, got %v", err)
	}
}

func TestCompleteAsync_SubmitCancelled(t *testing.T) {
	api := newFakeAPI(t, operationHandler(t, 0, okOperation))
	c := api.client(t, iamOnly)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.CompleteAsync(ctx, helloRequest()); !errors.IsCancelled(err) {
		t.Fatalf("expected CANCELLED, got %v", err)
	}
}

func TestCompleteAsync_Deadline(t *testing.T) {
	api := newFakeAPI(t, operationHandler(t, 1<<30, okOperation))
	c := api.client(t, func(cfg *Config) {
		iamOnly(cfg)
		cfg.PollInterval = 5 * time.Millisecond
		cfg.PollDeadline = 50 * time.Millisecond
	})

	start := time.Now()
	_, err := c.CompleteAsync(context.Background(), helloRequest())
	if !errors.IsCancelled(err) {
		t.Fatalf("expected CANCELLED, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("deadline not honored, took %v", elapsed)
	}
}

func TestCompleteAsync_ContextCancel(t *testing.T) {
	api := newFakeAPI(t, operationHandler(t, 1<<30, okOperation))
	c := api.client(t, func(cfg *Config) {
		iamOnly(cfg)
		cfg.PollInterval = 10 * time.Millisecond
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	_, err := c.CompleteAsync(ctx, helloRequest())
	if !errors.IsCancelled(err) {
		t.Fatalf("expected CANCELLED, got %v", err)
	}
	if api.count("/operations/op-1") == 0 {
		t.Error("expected at least one poll before cancellation")
	}
}

func TestCompleteAsync_RecordsPolls(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	api := newFakeAPI(t, operationHandler(t, 2, okOperation))
	c := api.client(t, iamOnly, WithMetrics(metrics))
	if _, err := c.CompleteAsync(context.Background(), helloRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var polls int64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if s, ok := md.Data.(metricdata.Sum[int64]); ok && md.Name == "llm.operation.polls" {
				for _, dp := range s.DataPoints {
					polls += dp.Value
				}
			}
		}
	}
	if polls != 3 {
		t.Errorf("recorded polls = %d, want 3", polls)
	}
}
