// Package otelx wires up the process-wide OpenTelemetry tracer provider
// used by the relay's Controller API Client spans and the HTTP service's
// instrumentation.
package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Init installs a TracerProvider as the global tracer provider and returns
// a shutdown function. serviceName is currently unused: no resource is
// attached, and no exporter is configured, so spans are recorded but not
// shipped anywhere.
func Init(serviceName string) (shutdown func(context.Context) error, err error) {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
