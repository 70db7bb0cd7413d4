package redis

import (
	"context"
	"net"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kapeta/sdk-go-redis/observability"
)

// TracingHook is a go-redis hook that records a client span per command and
// per pipeline. Commands are only traced inside an already recording span.
// Command arguments are never recorded.
type TracingHook struct {
	tracer       trace.Tracer
	resourceName string
}

var _ goredis.Hook = (*TracingHook)(nil)

// NewTracingHook creates a hook using the module tracer.
func NewTracingHook(resourceName string) *TracingHook {
	return &TracingHook{
		tracer:       observability.Tracer(observability.TracerName),
		resourceName: resourceName,
	}
}

func (h *TracingHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *TracingHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		if !trace.SpanFromContext(ctx).IsRecording() {
			return next(ctx, cmd)
		}

		ctx, span := h.tracer.Start(ctx, observability.SpanRedisCommand,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String(observability.AttrDBSystem, "redis"),
				attribute.String(observability.AttrDBOperation, cmd.Name()),
				attribute.String(observability.AttrResource, h.resourceName),
			),
		)
		defer span.End()

		err := next(ctx, cmd)
		if err != nil && !IsNil(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}

func (h *TracingHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		if !trace.SpanFromContext(ctx).IsRecording() {
			return next(ctx, cmds)
		}

		ctx, span := h.tracer.Start(ctx, observability.SpanRedisPipeline,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String(observability.AttrDBSystem, "redis"),
				attribute.String(observability.AttrDBOperation, "pipeline"),
				attribute.String(observability.AttrResource, h.resourceName),
				attribute.Int(observability.AttrPipelineLength, len(cmds)),
			),
		)
		defer span.End()

		err := next(ctx, cmds)
		if err != nil && !IsNil(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}
