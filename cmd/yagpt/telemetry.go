package main

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/yagpt/config"
	"github.com/kbukum/yagpt/logger"
	"github.com/kbukum/yagpt/observability"
	"github.com/kbukum/yagpt/version"
)

const instrumentationName = "github.com/kbukum/yagpt/cmd/yagpt"

// setupTelemetry installs OTLP trace and metric export when enabled and
// returns the completion metrics with a shutdown func. When disabled the
// metrics record to the global no-op meter.
func setupTelemetry(ctx context.Context, cfg config.TelemetryConfig, log *logger.Logger) (*observability.Metrics, func(context.Context) error, error) {
	shutdown := func(context.Context) error { return nil }

	if cfg.Enabled {
		ver := version.Get().Short()
		tp, err := observability.InitTracer(ctx, cfg.TracerConfig(ver))
		if err != nil {
			return nil, nil, err
		}
		mp, err := observability.InitMeter(ctx, cfg.MeterConfig(ver))
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, nil, err
		}
		shutdown = func(ctx context.Context) error {
			return stderrors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
		}
		log.Debug("telemetry enabled", logger.Fields("endpoint", cfg.Endpoint))
	}

	metrics, err := observability.NewMetrics(observability.Meter(instrumentationName))
	if err != nil {
		_ = shutdown(ctx)
		return nil, nil, err
	}
	return metrics, shutdown, nil
}
