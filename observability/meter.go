package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/yagpt/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The caller must shut it down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded around completion calls.
type Metrics struct {
	completionTotal    metric.Int64Counter
	completionDuration metric.Float64Histogram
	completionActive   metric.Int64UpDownCounter
	tokenTotal         metric.Int64Counter
	pollTotal          metric.Int64Counter
	errorTotal         metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	completionTotal, err := meter.Int64Counter("llm.completion.total",
		metric.WithDescription("Completion calls by model, mode and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.completion.total counter: %w", err)
	}

	completionDuration, err := meter.Float64Histogram("llm.completion.duration",
		metric.WithDescription("Duration of completion calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.completion.duration histogram: %w", err)
	}

	completionActive, err := meter.Int64UpDownCounter("llm.completion.active",
		metric.WithDescription("Completion calls currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.completion.active gauge: %w", err)
	}

	tokenTotal, err := meter.Int64Counter("llm.tokens.total",
		metric.WithDescription("Tokens reported by the service, by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.tokens.total counter: %w", err)
	}

	pollTotal, err := meter.Int64Counter("llm.operation.polls",
		metric.WithDescription("Operation status polls issued for asynchronous completions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.operation.polls counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("llm.error.total",
		metric.WithDescription("Failed completion calls by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.error.total counter: %w", err)
	}

	return &Metrics{
		completionTotal:    completionTotal,
		completionDuration: completionDuration,
		completionActive:   completionActive,
		tokenTotal:         tokenTotal,
		pollTotal:          pollTotal,
		errorTotal:         errorTotal,
	}, nil
}

// RecordCompletionStart increments the in-flight completion count.
func (m *Metrics) RecordCompletionStart(ctx context.Context, model, mode string) {
	m.completionActive.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("mode", mode),
	))
}

// RecordCompletionEnd decrements the in-flight count and records the finished call.
func (m *Metrics) RecordCompletionEnd(ctx context.Context, model, mode, status string, duration time.Duration) {
	base := []attribute.KeyValue{
		attribute.String("model", model),
		attribute.String("mode", mode),
	}
	m.completionActive.Add(ctx, -1, metric.WithAttributes(base...))
	m.completionTotal.Add(ctx, 1, metric.WithAttributes(append(base, attribute.String("status", status))...))
	m.completionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(base...))
}

// RecordTokens adds the usage of one generation.
func (m *Metrics) RecordTokens(ctx context.Context, model string, input, output, reasoning int64) {
	for kind, n := range map[string]int64{"input": input, "output": output, "reasoning": reasoning} {
		if n <= 0 {
			continue
		}
		m.tokenTotal.Add(ctx, n, metric.WithAttributes(
			attribute.String("model", model),
			attribute.String("kind", kind),
		))
	}
}

// RecordPoll counts one operation status poll.
func (m *Metrics) RecordPoll(ctx context.Context, model string) {
	m.pollTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("model", model)))
}

// RecordError counts a failed call by error code.
func (m *Metrics) RecordError(ctx context.Context, model, code string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("code", code),
	))
}
