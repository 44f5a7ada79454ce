// Package observability provides the OpenTelemetry tracing and metrics
// integration used by injector trees.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
//	inj := di.New(di.WithTracer(observability.Tracer("my-service")))
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewResolverMetrics(observability.Meter("my-service"))
//	inj := di.New(di.WithMetrics(metrics))
//
// Health checks:
//
//	health := observability.CheckAll(ctx, "my-service", "1.0.0", inj)
package observability
