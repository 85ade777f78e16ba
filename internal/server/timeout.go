package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds each request's context. A non-positive timeout
// leaves requests unbounded.
// The handler is not terminated; it must observe ctx.Done() itself, and the
// model call does so through its context.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
