package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/kapeta/sdk-go-redis/logger"
)

// TracerName is the instrumentation scope used by this module's spans.
const TracerName = "github.com/kapeta/sdk-go-redis"

// TracerConfig configures the OpenTelemetry tracer.
type TracerConfig struct {
	ServiceName    string  `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string  `yaml:"service_version" mapstructure:"service_version"`
	Environment    string  `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the sampling ratio between 0.0 and 1.0.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// DefaultTracerConfig returns defaults for local development.
func DefaultTracerConfig(serviceName string) TracerConfig {
	return TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		SampleRate:     1.0,
	}
}

// InitTracer installs a global tracer provider exporting over OTLP HTTP.
// The caller owns the returned provider and must shut it down.
func InitTracer(ctx context.Context, cfg TracerConfig) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Tracer initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	))
	return tp, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

func newResource(serviceName, serviceVersion, environment string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String(AttrServiceName, serviceName),
			attribute.String(AttrServiceVersion, serviceVersion),
			attribute.String(AttrEnvironment, environment),
		),
	)
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartSpan starts a span on the module tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer(TracerName).Start(ctx, name, opts...)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Span names.
const (
	SpanRedisConnect  = "redis.connect"
	SpanRedisCommand  = "redis.command"
	SpanRedisPipeline = "redis.pipeline"
)

// Attribute keys.
const (
	AttrServiceName    = "service.name"
	AttrServiceVersion = "service.version"
	AttrEnvironment    = "deployment.environment"
	AttrResource       = "kapeta.resource"
	AttrServerAddress  = "server.address"
	AttrDBSystem       = "db.system"
	AttrDBOperation    = "db.operation"
	AttrPipelineLength = "db.redis.pipeline_length"
	AttrStatus         = "status"
)
