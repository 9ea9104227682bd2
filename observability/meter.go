package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/restkit/logger"
)

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on exit.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(newResource(cfg)),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return mp, nil
}

// RequestMetrics holds the instruments recorded for every outbound request.
type RequestMetrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

// NewRequestMetrics creates request instruments on the given meter.
func NewRequestMetrics(meter metric.Meter) (*RequestMetrics, error) {
	total, err := meter.Int64Counter("restkit.requests",
		metric.WithDescription("Total number of settled requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating restkit.requests counter: %w", err)
	}

	duration, err := meter.Float64Histogram("restkit.request.duration",
		metric.WithDescription("Time from send to settlement"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating restkit.request.duration histogram: %w", err)
	}

	active, err := meter.Int64UpDownCounter("restkit.requests.active",
		metric.WithDescription("Requests sent but not yet settled"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating restkit.requests.active counter: %w", err)
	}

	return &RequestMetrics{total: total, duration: duration, active: active}, nil
}

// Start marks a request as in flight.
func (m *RequestMetrics) Start(ctx context.Context) {
	m.active.Add(ctx, 1)
}

// End records a settled request.
func (m *RequestMetrics) End(ctx context.Context, method, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	)
	m.active.Add(ctx, -1)
	m.total.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

var (
	defaultMetricsOnce sync.Once
	defaultMetrics     *RequestMetrics
)

// DefaultRequestMetrics returns instruments created on the global meter
// provider. The global provider delegates to whatever provider is installed
// later, so instruments created before Setup still export.
func DefaultRequestMetrics() *RequestMetrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewRequestMetrics(otel.Meter(instrumentationName))
		if err != nil {
			logger.Warn("request metrics unavailable", logger.MergeWithError(nil, err))
			return
		}
		defaultMetrics = m
	})
	return defaultMetrics
}
