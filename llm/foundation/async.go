package foundation

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/yagpt/errors"
	"github.com/kbukum/yagpt/httpclient"
	"github.com/kbukum/yagpt/httpclient/rest"
	"github.com/kbukum/yagpt/llm"
	"github.com/kbukum/yagpt/logger"
	"github.com/kbukum/yagpt/observability"
	"github.com/kbukum/yagpt/resilience"
)

// CompleteAsync submits a completion operation and polls it until done.
// It requires an IAM token. Config.PollDeadline, when set, bounds the
// whole call; reaching it or cancelling ctx fails with CANCELLED.
func (c *Client) CompleteAsync(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	bearer, err := c.cfg.bearer()
	if err != nil {
		return nil, err
	}
	auth, err := c.cfg.authorization()
	if err != nil {
		return nil, err
	}
	payload, err := c.encode(req, ModeAsync)
	if err != nil {
		return nil, err
	}

	if c.cfg.PollDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.PollDeadline)
		defer cancel()
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanCompletionAsync)
	defer func() { observability.EndSpan(span, err) }()

	submitted, err := rest.Post[Operation](ctx, c.rest, completionAsyncPath, payload,
		rest.WithHeaders(c.cfg.headers()), rest.WithAuth(auth))
	if err = submitFailure(ctx, submitted, err); err != nil {
		c.log.Warn("async completion submit failed", c.failFields(ModeAsync, err))
		return nil, err
	}
	id := submitted.Data.ID
	if id == "" {
		err = errors.MalformedResponse("operation id is missing")
		return nil, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrOperationID, id)

	var op *Operation
	op, err = c.awaitOperation(ctx, id, bearer)
	if err != nil {
		c.log.Warn("async completion failed", logger.Fields(
			logger.FieldModel, c.cfg.Model,
			logger.FieldOperationID, id,
			logger.FieldStatus, string(errors.CodeOf(err)),
			logger.FieldError, err.Error(),
		))
		return nil, err
	}

	var resp *Response
	if resp, err = op.Completion(); err != nil {
		return nil, err
	}
	var result *llm.CompletionResult
	if result, err = BuildResult(resp); err != nil {
		return nil, err
	}
	c.log.Debug("completion decoded", logger.Fields(
		logger.FieldModel, c.cfg.Model,
		logger.FieldMode, ModeAsync,
		logger.FieldOperationID, id,
		logger.FieldGenerations, len(result.Generations),
	))
	return result, nil
}

// awaitOperation polls the operation until it is done. Polling starts
// immediately and waits Config.PollInterval between polls.
func (c *Client) awaitOperation(ctx context.Context, id string, bearer *httpclient.AuthConfig) (*Operation, error) {
	start := time.Now()
	cfg := resilience.PollConfig{
		Interval: c.cfg.PollInterval,
		OnPoll: func(attempt int, next time.Duration) {
			c.log.Debug("operation not done", logger.Fields(
				logger.FieldOperationID, id,
				logger.FieldPollAttempt, attempt,
				"next_poll_ms", next.Milliseconds(),
			))
		},
	}

	op, err := resilience.Poll(ctx, cfg, func(ctx context.Context, attempt int) (*Operation, bool, error) {
		return c.pollOnce(ctx, id, attempt, bearer)
	})
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return nil, err
		}
		return nil, errors.Cancelled(err).WithDetail("operation_id", id)
	}

	c.log.Debug("operation done", logger.Fields(
		logger.FieldOperationID, id,
		logger.FieldDuration, elapsedMs(start),
	))
	if op.Error != nil && (op.Error.Code != 0 || op.Error.Message != "") {
		return nil, errors.OperationFailure(id, op.Error)
	}
	return op, nil
}

func (c *Client) pollOnce(ctx context.Context, id string, attempt int, bearer *httpclient.AuthConfig) (op *Operation, done bool, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanOperationPoll)
	defer func() { observability.EndSpan(span, err) }()
	observability.SetSpanAttribute(ctx, observability.AttrOperationID, id)
	observability.SetSpanAttribute(ctx, observability.AttrPollAttempt, attempt)

	if c.metrics != nil {
		c.metrics.RecordPoll(ctx, c.cfg.Model)
	}

	resp, err := rest.Get[Operation](ctx, c.rest, c.operationURL(id), rest.WithAuth(bearer))
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, errors.Cancelled(err).WithDetail("operation_id", id)
		}
		return nil, false, operationFailure(id, err)
	}
	if resp.StatusCode != 200 {
		return nil, false, errors.OperationFailure(id, errors.CompletionFailure(resp.StatusCode, resp.Body))
	}
	if resp.Data.ID != "" && resp.Data.ID != id {
		return nil, false, errors.OperationFailure(id, errors.MalformedResponse("operation id mismatch: "+resp.Data.ID))
	}
	return &resp.Data, resp.Data.Done, nil
}

// submitFailure maps the outcome of the async submission. Any non-200
// status or transport error is TRANSPORT_FAILED; a body that is not an
// operation is MALFORMED_RESPONSE.
func submitFailure(ctx context.Context, resp *rest.Response[Operation], err error) error {
	if err == nil {
		if resp.StatusCode != 200 {
			e := errors.TransportFailure(fmt.Errorf("operation submit returned HTTP %d", resp.StatusCode))
			e.Status = resp.StatusCode
			e.Body = string(resp.Body)
			return e
		}
		return nil
	}
	if ctx.Err() != nil {
		return errors.Cancelled(err)
	}

	var derr *rest.DecodeError
	if stderrors.As(err, &derr) && derr.StatusCode == 200 {
		return errors.MalformedResponse("decode operation: " + derr.Err.Error()).WithCause(err)
	}
	e := errors.TransportFailure(err)
	if herr, ok := httpclient.AsError(err); ok && herr.StatusCode > 0 {
		e.Status = herr.StatusCode
		e.Body = string(herr.Body)
	}
	if derr != nil {
		e.Status = derr.StatusCode
		e.Body = string(derr.Body)
	}
	return e
}

func operationFailure(id string, err error) error {
	e := errors.OperationFailure(id, err)
	if herr, ok := httpclient.AsError(err); ok && herr.StatusCode > 0 {
		e.Status = herr.StatusCode
		e.Body = string(herr.Body)
	}
	var derr *rest.DecodeError
	if stderrors.As(err, &derr) {
		e.Status = derr.StatusCode
		e.Body = string(derr.Body)
	}
	return e
}

func (c *Client) operationURL(id string) string {
	return strings.TrimRight(c.cfg.OperationsURL, "/") + "/" + id
}
