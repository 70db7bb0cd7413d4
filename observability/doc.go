// Package observability wires OpenTelemetry tracing and metrics.
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("orders"))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("orders"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewConnectMetrics(observability.Meter("orders"))
//
// Redis clients created by the redis package start a "redis.connect" span on
// the global tracer and record their attempts on ConnectMetrics when given one.
package observability
