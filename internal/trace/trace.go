// Package trace wraps the OpenTelemetry tracer used around external calls. When tracing is
// disabled StartSpan returns a non-recording span, so callers never branch.
package trace

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "stockgenius"

// EnvEnabled is the environment variable that switches tracing on.
const EnvEnabled = "STOCKGENIUS_TRACING_ENABLED"

var (
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	enabled        bool
)

// Options configures Init.
type Options struct {
	Enabled bool
	Version string
	// Writer receives exported spans; stdout when nil.
	Writer io.Writer
}

// EnabledFromEnv reports whether STOCKGENIUS_TRACING_ENABLED is "true".
func EnabledFromEnv() bool {
	return os.Getenv(EnvEnabled) == "true"
}

// Init installs a tracer provider exporting to the configured writer.
func Init(opts Options) error {
	enabled = opts.Enabled
	if !enabled {
		return nil
	}

	exporterOpts := []stdouttrace.Option{}
	if opts.Writer != nil {
		exporterOpts = append(exporterOpts, stdouttrace.WithWriter(opts.Writer))
	}
	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		enabled = false
		return err
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		enabled = false
		return err
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = otel.Tracer(serviceName)
	return nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	if tracerProvider != nil {
		return tracerProvider.Shutdown(ctx)
	}
	return nil
}

// StartSpan starts a span. When tracing is off it returns ctx unchanged with a non-recording
// span; ending that span never touches a span the caller started.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !enabled || tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return tracer.Start(ctx, spanName, opts...)
}

// Enabled reports whether spans are being recorded.
func Enabled() bool {
	return enabled
}

// Fields returns the trace and span ids of the context's span, for log correlation.
func Fields(ctx context.Context) (traceID, spanID string, ok bool) {
	if !enabled {
		return "", "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}
