// Package observability provides OpenTelemetry tracing and metrics
// integration for the engine.
//
// Bootstrap:
//
//	tel, err := observability.Init(ctx, &cfg.Telemetry)
//	defer tel.Shutdown(ctx)
//
// tel.Metrics is always usable; with telemetry disabled it records into a
// noop meter.
//
// Tracing:
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanRun)
//	defer span.End()
//
// Run tracking ties the run span and run metrics together:
//
//	rc := observability.NewRunContext("executor", runID, tel.Metrics)
//	ctx, span := rc.StartRunSpan(ctx)
//	rc.EndRun(ctx, span, "succeeded", stages, nil)
//
// Health checks:
//
//	health := observability.NewServiceHealth("dagkit", version.Version)
//	health.AddComponent(observability.Up("graph"))
package observability
