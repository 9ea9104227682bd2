// Package observability provides OpenTelemetry tracing and metrics for
// outbound restkit requests.
//
// Every Request.Send opens a client span and records request metrics through
// the global otel providers. Until Setup (or InitTracer / InitMeter) installs
// real providers, those globals are no-ops.
//
//	shutdown, err := observability.Setup(ctx, cfg.Tracing)
//	defer shutdown(ctx)
package observability
