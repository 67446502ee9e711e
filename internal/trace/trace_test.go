package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanDisabled(t *testing.T) {
	if err := Init(Options{Enabled: false}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	ctx := context.Background()
	got, span := StartSpan(ctx, "noop")
	if got != ctx {
		t.Fatalf("expected unchanged context when disabled")
	}
	span.End()
	if _, _, ok := Fields(got); ok {
		t.Fatalf("expected no trace fields when disabled")
	}
}

func TestStartSpanDisabledLeavesCallerSpanOpen(t *testing.T) {
	if err := Init(Options{Enabled: false}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	ctx, caller := provider.Tracer("host").Start(context.Background(), "caller-op")
	got, span := StartSpan(ctx, "market.FetchFundamentals")
	if got != ctx {
		t.Fatalf("expected unchanged context when disabled")
	}
	if span.IsRecording() {
		t.Fatalf("expected a non-recording span when disabled")
	}
	span.End()

	if ended := recorder.Ended(); len(ended) != 0 {
		t.Fatalf("caller span ended early: %d ended, first %q", len(ended), ended[0].Name())
	}
	if !caller.IsRecording() {
		t.Fatalf("caller span should still be recording")
	}
	caller.End()
	if ended := recorder.Ended(); len(ended) != 1 || ended[0].Name() != "caller-op" {
		t.Fatalf("expected caller-op to end once, got %d", len(ended))
	}
}

func TestStartSpanEnabledExports(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Options{Enabled: true, Version: "test", Writer: &buf}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { enabled = false })

	ctx, span := StartSpan(context.Background(), "market.FetchFundamentals")
	traceID, spanID, ok := Fields(ctx)
	if !ok || traceID == "" || spanID == "" {
		t.Fatalf("expected trace fields, got %q %q %v", traceID, spanID, ok)
	}
	span.End()

	if err := Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "market.FetchFundamentals") {
		t.Fatalf("expected exported span, got %q", buf.String())
	}
}
