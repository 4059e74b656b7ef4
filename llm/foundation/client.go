package foundation

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/kbukum/yagpt/errors"
	"github.com/kbukum/yagpt/httpclient"
	"github.com/kbukum/yagpt/httpclient/rest"
	"github.com/kbukum/yagpt/llm"
	"github.com/kbukum/yagpt/logger"
	"github.com/kbukum/yagpt/observability"
	"github.com/kbukum/yagpt/version"
)

const (
	completionPath      = "/completion"
	completionAsyncPath = "/completionAsync"
)

// Client is a blocking completion client. Each call runs on the caller's
// goroutine; the client holds no per-call state and is safe for
// concurrent use.
type Client struct {
	cfg     Config
	rest    *rest.Client
	log     *logger.Logger
	metrics *observability.Metrics
	httpOpt []httpclient.Option
}

var _ llm.Model = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger. Defaults to a no-op logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics records operation polls on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPOptions passes options through to the underlying HTTP adapter.
func WithHTTPOptions(opts ...httpclient.Option) Option {
	return func(c *Client) { c.httpOpt = append(c.httpOpt, opts...) }
}

// New validates cfg and returns a client. Credentials are checked per call.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}

	r, err := rest.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Headers: map[string]string{"User-Agent": version.UserAgent()},
	}, append([]httpclient.Option{httpclient.WithLogger(c.log)}, c.httpOpt...)...)
	if err != nil {
		return nil, errors.InvalidConfig("", err.Error()).WithCause(err)
	}
	c.rest = r
	return c, nil
}

// Name returns the configured model name.
func (c *Client) Name() string { return c.cfg.Model }

// Mode reports the transport Generate will use.
func (c *Client) Mode() string { return c.cfg.ResolvedMode() }

// Config returns a copy of the client configuration.
func (c *Client) Config() Config { return c.cfg }

// Close releases pooled connections.
func (c *Client) Close(ctx context.Context) error { return c.rest.Close(ctx) }

// Generate runs a completion using the configured mode: async when Mode is
// "async", or "auto" with an IAM token; sync otherwise.
func (c *Client) Generate(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	if c.cfg.ResolvedMode() == ModeAsync {
		return c.CompleteAsync(ctx, req)
	}
	return c.Complete(ctx, req)
}

// Complete performs a synchronous completion.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	auth, err := c.cfg.authorization()
	if err != nil {
		return nil, err
	}
	payload, err := c.encode(req, ModeSync)
	if err != nil {
		return nil, err
	}

	resp, err := rest.Post[Response](ctx, c.rest, completionPath, payload,
		rest.WithHeaders(c.cfg.headers()), rest.WithAuth(auth))
	if err := classify(ctx, resp, err); err != nil {
		c.log.Warn("completion request failed", c.failFields(ModeSync, err))
		return nil, err
	}

	result, err := BuildResult(&resp.Data)
	if err != nil {
		c.log.Warn("completion response rejected", c.failFields(ModeSync, err))
		return nil, err
	}
	c.log.Debug("completion decoded", logger.Fields(
		logger.FieldModel, c.cfg.Model,
		logger.FieldMode, ModeSync,
		logger.FieldGenerations, len(result.Generations),
	))
	return result, nil
}

func (c *Client) encode(req llm.CompletionRequest, mode string) (Payload, error) {
	payload, err := EncodeRequest(c.cfg, req)
	if err != nil {
		return Payload{}, err
	}
	c.log.Debug("submitting completion", logger.Fields(
		logger.FieldModel, c.cfg.Model,
		logger.FieldMode, mode,
		"messages", len(payload.Messages),
		"tools", len(payload.Tools),
	))
	if c.cfg.Verbose {
		if data, err := json.Marshal(payload); err == nil {
			c.log.Info("foundation model request", logger.Fields(logger.FieldPayload, string(data)))
		}
	}
	return payload, nil
}

func (c *Client) failFields(mode string, err error) map[string]interface{} {
	return logger.Fields(
		logger.FieldModel, c.cfg.Model,
		logger.FieldMode, mode,
		logger.FieldStatus, string(errors.CodeOf(err)),
		logger.FieldError, err.Error(),
	)
}

// classify maps a completion-endpoint exchange onto the error taxonomy.
// Only HTTP 200 counts as success.
func classify[T any](ctx context.Context, resp *rest.Response[T], err error) error {
	if err == nil {
		if resp.StatusCode != 200 {
			return errors.CompletionFailure(resp.StatusCode, resp.Body)
		}
		return nil
	}

	if herr, ok := httpclient.AsError(err); ok {
		switch {
		case herr.StatusCode >= 400 && herr.StatusCode < 500:
			return errors.BadRequest(herr.StatusCode, herr.Body).WithCause(err)
		case herr.StatusCode > 0:
			return errors.CompletionFailure(herr.StatusCode, herr.Body).WithCause(err)
		case ctx.Err() != nil:
			return errors.Cancelled(err)
		default:
			return errors.TransportFailure(err)
		}
	}

	var derr *rest.DecodeError
	if stderrors.As(err, &derr) {
		if derr.StatusCode != 200 {
			return errors.CompletionFailure(derr.StatusCode, derr.Body).WithCause(err)
		}
		return errors.MalformedResponse("decode response: " + derr.Err.Error()).WithCause(err)
	}

	if ctx.Err() != nil {
		return errors.Cancelled(err)
	}
	return errors.TransportFailure(err)
}

func elapsedMs(start time.Time) int64 { return time.Since(start).Milliseconds() }
