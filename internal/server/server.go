// Package server hosts the HTTP surface: router, middleware and lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds the HTTP settings the server is built from.
type Config struct {
	Port           int
	Development    bool          // expose panic detail in error bodies
	MaxBodyBytes   int64         // 0 disables the body limit
	RequestTimeout time.Duration // 0 disables the timeout middleware
	CORS           CORSConfig
	Now            func() time.Time
}

type Server struct {
	Router *chi.Mux
	Port   int

	logger     *slog.Logger
	now        func() time.Time
	httpServer *http.Server
}

func New(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	r := chi.NewRouter()

	// Apply middleware in order
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(RecoverMiddleware(logger, cfg.Development))
	r.Use(CORSMiddleware(cfg.CORS))

	if cfg.RequestTimeout > 0 {
		r.Use(TimeoutMiddleware(cfg.RequestTimeout))
	}
	if cfg.MaxBodyBytes > 0 {
		r.Use(BodyLimitMiddleware(cfg.MaxBodyBytes))
	}

	// Wrap with OpenTelemetry HTTP instrumentation
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "lca-gateway")
	})

	s := &Server{
		Router: r,
		Port:   cfg.Port,
		logger: logger,
		now:    now,
	}

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)
	r.Get("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start listens on the configured port and blocks until the server stops.
// It returns nil after a graceful Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting server", slog.Int("port", s.Port))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"message":   "LCA Backend Server is running",
		"timestamp": Timestamp(s.now()),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, ErrorBody{
		Error:   "Route not found",
		Message: fmt.Sprintf("The requested route %s does not exist", r.URL.RequestURI()),
	})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, ErrorBody{
		Error:   "Method not allowed",
		Message: fmt.Sprintf("Method %s is not allowed for route %s", r.Method, r.URL.RequestURI()),
	})
}
