// Package telemetry wires an OpenTelemetry tracer around event-loop
// iterations, using the stdout exporter the way a development build emits
// traces without a collector.
package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Shutdown flushes and releases the tracer provider.
type Shutdown func(context.Context) error

// Setup installs a tracer provider that writes spans as JSON to w, and
// registers it as the global provider so any component can call
// otel.Tracer("lector") without threading a provider through.
func Setup(w io.Writer) (trace.Tracer, Shutdown, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp.Tracer("lector"), tp.Shutdown, nil
}

// IterationSpan starts a span covering one event-loop iteration, named by
// which readiness source fired (e.g. "pty", "tty", "signal", "diff-timer").
func IterationSpan(ctx context.Context, tracer trace.Tracer, source string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "loop.iteration", trace.WithAttributes(attribute.String("source", source)))
}
