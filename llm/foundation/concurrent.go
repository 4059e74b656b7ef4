package foundation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/yagpt/errors"
	"github.com/kbukum/yagpt/llm"
)

// ConcurrentClient runs each call on its own goroutine so callers can
// overlap many completions. It wraps a Client and shares its connection pool.
type ConcurrentClient struct {
	client *Client
	limit  int
}

var _ llm.Model = (*ConcurrentClient)(nil)

// NewConcurrent wraps c. limit caps in-flight calls in Batch; zero or
// negative means unlimited.
func NewConcurrent(c *Client, limit int) *ConcurrentClient {
	return &ConcurrentClient{client: c, limit: limit}
}

// Call is the handle of a completion running in the background.
type Call struct {
	done   chan struct{}
	result *llm.CompletionResult
	err    error
}

// Done is closed when the call has finished.
func (c *Call) Done() <-chan struct{} { return c.done }

// Wait blocks until the call finishes or ctx ends. When ctx ends first it
// returns CANCELLED without waiting for the background goroutine.
func (c *Call) Wait(ctx context.Context) (*llm.CompletionResult, error) {
	select {
	case <-c.done:
		return c.result, c.err
	case <-ctx.Done():
		return nil, errors.Cancelled(ctx.Err())
	}
}

func start(ctx context.Context, fn func(context.Context, llm.CompletionRequest) (*llm.CompletionResult, error), req llm.CompletionRequest) *Call {
	call := &Call{done: make(chan struct{})}
	go func() {
		defer close(call.done)
		call.result, call.err = fn(ctx, req)
	}()
	return call
}

// Go starts a completion in the configured mode and returns its handle.
// Cancelling ctx aborts the in-flight request.
func (cc *ConcurrentClient) Go(ctx context.Context, req llm.CompletionRequest) *Call {
	return start(ctx, cc.client.Generate, req)
}

// Name returns the wrapped model name.
func (cc *ConcurrentClient) Name() string { return cc.client.Name() }

// Mode reports the transport Generate will use.
func (cc *ConcurrentClient) Mode() string { return cc.client.Mode() }

// Generate runs a completion in the background and waits for it.
func (cc *ConcurrentClient) Generate(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	return cc.Go(ctx, req).Wait(ctx)
}

// Complete is the non-blocking counterpart of Client.Complete.
func (cc *ConcurrentClient) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	return start(ctx, cc.client.Complete, req).Wait(ctx)
}

// CompleteAsync is the non-blocking counterpart of Client.CompleteAsync.
func (cc *ConcurrentClient) CompleteAsync(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	return start(ctx, cc.client.CompleteAsync, req).Wait(ctx)
}

// Batch runs reqs concurrently, at most limit at a time, and returns the
// results in request order. The first failure cancels the remaining calls
// and is returned.
func (cc *ConcurrentClient) Batch(ctx context.Context, reqs []llm.CompletionRequest) ([]*llm.CompletionResult, error) {
	results := make([]*llm.CompletionResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	if cc.limit > 0 {
		g.SetLimit(cc.limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			res, err := cc.client.Generate(gctx, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
