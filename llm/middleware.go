package llm

import (
	"context"
	"time"

	"github.com/kbukum/yagpt/errors"
	"github.com/kbukum/yagpt/logger"
	"github.com/kbukum/yagpt/observability"
)

// Middleware wraps a Model with additional behavior.
type Middleware func(Model) Model

// Chain applies middlewares so that the first one is outermost.
func Chain(m Model, mws ...Middleware) Model {
	for i := len(mws) - 1; i >= 0; i-- {
		m = mws[i](m)
	}
	return m
}

// WithLogging logs each Generate call: debug on success, warn on failure.
func WithLogging(log *logger.Logger) Middleware {
	return func(inner Model) Model {
		return &loggingModel{inner: inner, log: log}
	}
}

type loggingModel struct {
	inner Model
	log   *logger.Logger
}

func (l *loggingModel) Name() string { return l.inner.Name() }
func (l *loggingModel) Mode() string { return modeOf(l.inner) }

func (l *loggingModel) Generate(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	start := time.Now()
	res, err := l.inner.Generate(ctx, req)

	fields := logger.Fields(
		logger.FieldModel, l.inner.Name(),
		logger.FieldMode, modeOf(l.inner),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)
	log := l.log.WithContext(ctx)
	if err != nil {
		fields[logger.FieldError] = err.Error()
		fields[logger.FieldStatus] = string(errors.CodeOf(err))
		log.Warn("completion failed", fields)
		return res, err
	}

	usage := res.Usage()
	fields[logger.FieldGenerations] = len(res.Generations)
	fields[logger.FieldInputTokens] = usage.InputTokens
	fields[logger.FieldOutTokens] = usage.OutputTokens
	log.Debug("completion finished", fields)
	return res, nil
}

// WithTracing wraps each Generate call in an OpenTelemetry span.
func WithTracing() Middleware {
	return func(inner Model) Model {
		return &tracingModel{inner: inner}
	}
}

type tracingModel struct {
	inner Model
}

func (t *tracingModel) Name() string { return t.inner.Name() }
func (t *tracingModel) Mode() string { return modeOf(t.inner) }

func (t *tracingModel) Generate(ctx context.Context, req CompletionRequest) (res *CompletionResult, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanCompletion)
	defer func() { observability.EndSpan(span, err) }()

	observability.SetSpanAttribute(ctx, observability.AttrModel, t.inner.Name())
	observability.SetSpanAttribute(ctx, observability.AttrMode, modeOf(t.inner))

	res, err = t.inner.Generate(ctx, req)
	if err != nil {
		observability.SetSpanAttribute(ctx, observability.AttrErrorCode, string(errors.CodeOf(err)))
		return res, err
	}

	usage := res.Usage()
	observability.SetSpanAttribute(ctx, observability.AttrGenerations, len(res.Generations))
	observability.SetSpanAttribute(ctx, observability.AttrInputTokens, usage.InputTokens)
	observability.SetSpanAttribute(ctx, observability.AttrOutputTokens, usage.OutputTokens)
	return res, nil
}

// WithMetrics records call counts, durations, token usage and errors.
func WithMetrics(metrics *observability.Metrics) Middleware {
	return func(inner Model) Model {
		return &metricsModel{inner: inner, metrics: metrics}
	}
}

type metricsModel struct {
	inner   Model
	metrics *observability.Metrics
}

func (m *metricsModel) Name() string { return m.inner.Name() }
func (m *metricsModel) Mode() string { return modeOf(m.inner) }

func (m *metricsModel) Generate(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	name, mode := m.inner.Name(), modeOf(m.inner)
	m.metrics.RecordCompletionStart(ctx, name, mode)

	start := time.Now()
	res, err := m.inner.Generate(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
		m.metrics.RecordError(ctx, name, string(errors.CodeOf(err)))
	} else {
		usage := res.Usage()
		m.metrics.RecordTokens(ctx, name, int64(usage.InputTokens), int64(usage.OutputTokens), int64(usage.ReasoningTokens))
	}
	m.metrics.RecordCompletionEnd(ctx, name, mode, status, time.Since(start))
	return res, err
}
