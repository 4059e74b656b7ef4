// Package observability provides OpenTelemetry tracing and metrics for
// completion calls.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("yagpt"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanCompletion)
//	defer observability.EndSpan(span, err)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("yagpt"))
//	metrics.RecordCompletionEnd(ctx, "yandexgpt", "sync", "ok", elapsed)
package observability
