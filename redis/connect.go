package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kapeta/sdk-go-redis/config"
	"github.com/kapeta/sdk-go-redis/errors"
	"github.com/kapeta/sdk-go-redis/logger"
	"github.com/kapeta/sdk-go-redis/observability"
)

type connectConfig struct {
	log          *logger.Logger
	tracing      bool
	metrics      *observability.ConnectMetrics
	resourceName string
}

// ConnectOption configures Connect and CreateClient.
type ConnectOption func(*connectConfig)

// WithLogger sets the logger. Defaults to the global logger tagged "redis".
func WithLogger(log *logger.Logger) ConnectOption {
	return func(c *connectConfig) { c.log = log }
}

// WithTracing enables or disables the connect span and the command hook.
// Tracing is on by default and uses the global tracer provider.
func WithTracing(enabled bool) ConnectOption {
	return func(c *connectConfig) { c.tracing = enabled }
}

// WithMetrics records connection attempts on m.
func WithMetrics(m *observability.ConnectMetrics) ConnectOption {
	return func(c *connectConfig) { c.metrics = m }
}

// WithResourceName names the resource in logs, spans and metrics when
// calling Connect directly. CreateClient sets it.
func WithResourceName(name string) ConnectOption {
	return func(c *connectConfig) { c.resourceName = name }
}

func newConnectConfig(opts []ConnectOption) connectConfig {
	cfg := connectConfig{tracing: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.WithComponent("redis")
	}
	return cfg
}

// CreateClient resolves the named resource and connects to it.
func CreateClient(ctx context.Context, provider config.Provider, resourceName string, options Options, opts ...ConnectOption) (*Client, error) {
	info, err := Resolve(ctx, provider, resourceName)
	if err != nil {
		return nil, err
	}
	return Connect(ctx, info, options, append([]ConnectOption{WithResourceName(resourceName)}, opts...)...)
}

// Connect builds the URL for info, merges options, creates a go-redis client
// and performs a PING handshake. A failed handshake is logged, the client is
// closed and the go-redis error is returned unwrapped. No timeout beyond the
// go-redis defaults and ctx is applied.
func Connect(ctx context.Context, info *config.ResourceInfo, options Options, opts ...ConnectOption) (client *Client, err error) {
	cfg := newConnectConfig(opts)
	if info == nil {
		return nil, errors.MissingField("resource_info")
	}

	url := BuildURL(info)
	settings, unused, err := DecodeSettings(MergeOptions(options, info.Options, url))
	if err != nil {
		return nil, err
	}
	for _, key := range unused {
		cfg.log.Warn("Ignoring unsupported Redis option", logger.Fields(
			logger.FieldResource, cfg.resourceName,
			"option", key,
		))
	}

	redisOpts, err := settings.ClientOptions()
	if err != nil {
		return nil, err
	}

	addr := hostPort(info)
	if cfg.tracing {
		var span trace.Span
		ctx, span = observability.StartSpan(ctx, observability.SpanRedisConnect,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String(observability.AttrResource, cfg.resourceName),
				attribute.String(observability.AttrServerAddress, addr),
				attribute.String(observability.AttrDBSystem, "redis"),
			),
		)
		defer func() { observability.EndSpan(span, err) }()
	}

	rdb := goredis.NewClient(redisOpts)
	if cfg.tracing {
		rdb.AddHook(NewTracingHook(cfg.resourceName))
	}

	cfg.log.Info("Connecting to Redis", logger.Fields(
		logger.FieldResource, cfg.resourceName,
		logger.FieldAddr, addr,
	))

	start := time.Now()
	if err = rdb.Ping(ctx).Err(); err != nil {
		cfg.metrics.Record(ctx, cfg.resourceName, observability.StatusError, time.Since(start))
		cfg.log.Error("Failed to connect to Redis", logger.Fields(
			logger.FieldResource, cfg.resourceName,
			logger.FieldAddr, addr,
			logger.FieldError, err.Error(),
		))
		_ = rdb.Close()
		return nil, err
	}
	elapsed := time.Since(start)
	cfg.metrics.Record(ctx, cfg.resourceName, observability.StatusOK, elapsed)

	cfg.log.Info("Connected to Redis", logger.MergeWithDuration(logger.Fields(
		logger.FieldResource, cfg.resourceName,
		logger.FieldAddr, addr,
	), elapsed))

	return newClient(rdb, cfg.log, cfg.resourceName, addr), nil
}
