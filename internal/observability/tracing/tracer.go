// Package tracing provides OpenTelemetry tracing for the HTTP surface:
// W3C trace context extraction, a server span per request and trace ID
// propagation back to the caller via the X-Trace-Id header.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "spotify-follower-updates"

var tracer = otel.Tracer(serviceName)

// InitTracer installs a tracer provider and the W3C propagator and returns
// a shutdown function that flushes pending spans. Without this call the
// middleware still works but emits zeroed trace IDs from the no-op provider.
func InitTracer() func(context.Context) error {
	provider := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tracer = otel.Tracer(serviceName)

	return provider.Shutdown
}

// GetTracer returns the tracer used for creating spans.
func GetTracer() trace.Tracer {
	return tracer
}
