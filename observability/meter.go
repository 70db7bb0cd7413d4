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

	"github.com/kapeta/sdk-go-redis/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	Environment    string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns defaults for local development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP HTTP.
// The caller owns the returned provider and must shut it down.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("Meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Connection attempt outcomes.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metric names.
const (
	MetricConnectTotal    = "redis.connect.total"
	MetricConnectDuration = "redis.connect.duration"
)

// ConnectMetrics records Redis connection attempts.
type ConnectMetrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewConnectMetrics creates the connection instruments on meter.
func NewConnectMetrics(meter metric.Meter) (*ConnectMetrics, error) {
	total, err := meter.Int64Counter(MetricConnectTotal,
		metric.WithDescription("Total number of Redis connection attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricConnectTotal, err)
	}

	duration, err := meter.Float64Histogram(MetricConnectDuration,
		metric.WithDescription("Duration of Redis connection attempts in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricConnectDuration, err)
	}

	return &ConnectMetrics{total: total, duration: duration}, nil
}

// Record records one connection attempt. A nil receiver is a no-op.
func (m *ConnectMetrics) Record(ctx context.Context, resourceName, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.total.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrResource, resourceName),
		attribute.String(AttrStatus, status),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrResource, resourceName),
	))
}
