package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instruments bundles the access-layer telemetry instruments.
//
// All methods are safe on a nil receiver and do nothing, so callers can hold
// a *Instruments unconditionally.
type Instruments struct {
	tracer trace.Tracer

	requestCount  metric.Int64Counter
	retryCount    metric.Int64Counter
	refreshCount  metric.Int64Counter
	rateLimitWait metric.Float64Histogram
	requestTime   metric.Float64Histogram
}

// NewInstruments creates the instrument bundle on the given meter and tracer.
func NewInstruments(meter metric.Meter, tracer trace.Tracer) (*Instruments, error) {
	requestCount, err := meter.Int64Counter(
		"api.request.total",
		metric.WithDescription("Total number of external API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"api.request.retries",
		metric.WithDescription("Total number of request retries by reason"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	refreshCount, err := meter.Int64Counter(
		"api.token.refreshes",
		metric.WithDescription("Total number of forced bearer token refreshes"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	rateLimitWait, err := meter.Float64Histogram(
		"api.ratelimit.wait_ms",
		metric.WithDescription("Time spent waiting out rate-limit backoff"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	requestTime, err := meter.Float64Histogram(
		"api.request.duration_ms",
		metric.WithDescription("External API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Instruments{
		tracer:        tracer,
		requestCount:  requestCount,
		retryCount:    retryCount,
		refreshCount:  refreshCount,
		rateLimitWait: rateLimitWait,
		requestTime:   requestTime,
	}, nil
}

// StartRequest opens a span for one logical API request. The returned func
// closes the span and records the request counter and duration.
func (i *Instruments) StartRequest(ctx context.Context, service, endpoint string) (context.Context, func(status int, err error)) {
	if i == nil {
		return ctx, func(int, error) {}
	}

	start := time.Now()
	ctx, span := i.tracer.Start(ctx, "api.request",
		trace.WithAttributes(
			attribute.String("api.service", service),
			attribute.String("api.endpoint", endpoint),
		),
	)

	return ctx, func(status int, err error) {
		attrs := metric.WithAttributes(
			attribute.String("api.service", service),
			attribute.Int("http.status", status),
		)
		i.requestCount.Add(ctx, 1, attrs)
		i.requestTime.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)

		if status > 0 {
			span.SetAttributes(attribute.Int("http.status", status))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// RetryObserved counts one retry with its reason ("rate_limit", "auth",
// "network").
func (i *Instruments) RetryObserved(ctx context.Context, service, reason string) {
	if i == nil {
		return
	}
	i.retryCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api.service", service),
		attribute.String("retry.reason", reason),
	))
}

// TokenRefresh counts one forced credential refresh.
func (i *Instruments) TokenRefresh(ctx context.Context, service string) {
	if i == nil {
		return
	}
	i.refreshCount.Add(ctx, 1, metric.WithAttributes(attribute.String("api.service", service)))
}

// RateLimitWait records time spent sleeping on a 429 backoff.
func (i *Instruments) RateLimitWait(ctx context.Context, service string, d time.Duration) {
	if i == nil {
		return
	}
	i.rateLimitWait.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(attribute.String("api.service", service)))
}
