// Package telemetry sets up OpenTelemetry tracing.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Shutdown flushes and stops the tracer provider.
type Shutdown func(context.Context) error

// Config selects whether and where spans are exported.
type Config struct {
	Enabled     bool
	ServiceName string
	Writer      io.Writer // defaults to stdout
}

// InitTracer installs a global tracer provider exporting spans to cfg.Writer.
// When tracing is disabled the global no-op provider is left in place and the
// returned Shutdown does nothing.
func InitTracer(cfg Config, logger *slog.Logger) (Shutdown, error) {
	if !cfg.Enabled {
		logger.Debug("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)

	logger.Info("OpenTelemetry initialized", slog.String("service", cfg.ServiceName))

	return tp.Shutdown, nil
}
