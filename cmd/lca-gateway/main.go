package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tjfontaine/lca-gateway/internal/config"
	lcafrontdoor "github.com/tjfontaine/lca-gateway/internal/frontdoor/lca"
	"github.com/tjfontaine/lca-gateway/internal/gemini"
	"github.com/tjfontaine/lca-gateway/internal/ratelimit"
	"github.com/tjfontaine/lca-gateway/internal/server"
	"github.com/tjfontaine/lca-gateway/internal/telemetry"
	"github.com/tjfontaine/lca-gateway/internal/tokens"
)

func main() {
	if err := run(context.Background(), os.Stdout); err != nil {
		slog.Error("lca gateway stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run wires the gateway and serves until ctx is canceled, SIGINT or SIGTERM
// arrives, or the listener fails. Deferred cleanup always runs before it
// returns.
func run(ctx context.Context, stdout io.Writer) error {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	shutdownTracer, err := telemetry.InitTracer(telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Writer:      stdout,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	client, err := gemini.New(ctx, gemini.Config{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.Model,
	},
		gemini.WithLogger(logger),
		gemini.WithTokenCounter(tokens.NewCounter()),
	)
	if err != nil {
		return fmt.Errorf("create gemini client: %w", err)
	}

	limiter := ratelimit.New(ratelimit.Config{
		Limit:    cfg.RateLimit.Requests,
		Window:   cfg.RateLimit.Window,
		Capacity: cfg.RateLimit.Capacity,
	})

	srv := server.New(server.Config{
		Port:           cfg.Server.Port,
		Development:    cfg.IsDevelopment(),
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORS: server.CORSConfig{
			Open:           cfg.CORS.Open,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxAge:         cfg.CORS.MaxAge,
		},
	}, logger)

	handler := lcafrontdoor.NewHandler(client,
		lcafrontdoor.WithLogger(logger),
		lcafrontdoor.WithDevelopment(cfg.IsDevelopment()),
	)
	lcafrontdoor.Mount(srv.Router, handler, lcafrontdoor.BasePath, server.RateLimitMiddleware(limiter, logger, time.Now))

	logger.Info("LCA gateway configured",
		slog.String("environment", cfg.Server.Environment),
		slog.String("model", client.Model()),
		slog.Int("rate_limit_requests", limiter.Limit()),
		slog.Duration("rate_limit_window", limiter.Window()),
		slog.Bool("open_cors", cfg.CORS.Open),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping server...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
