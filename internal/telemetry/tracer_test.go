package telemetry

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracer_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	before := otel.GetTracerProvider()

	shutdown, err := InitTracer(Config{Enabled: false, ServiceName: "test"}, logger)
	if err != nil {
		t.Fatalf("InitTracer() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
	if otel.GetTracerProvider() != before {
		t.Error("disabled tracing replaced the global provider")
	}
}

func TestInitTracer_ExportsSpans(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	var buf bytes.Buffer
	shutdown, err := InitTracer(Config{Enabled: true, ServiceName: "lca-test", Writer: &buf}, logger)
	if err != nil {
		t.Fatalf("InitTracer() error = %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "assess")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"Name":"assess"`) {
		t.Errorf("exported spans missing span name: %s", out)
	}
	if !strings.Contains(out, "lca-test") {
		t.Errorf("exported spans missing service name: %s", out)
	}
}
