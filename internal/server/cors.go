package server

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSConfig selects the cross-origin policy.
type CORSConfig struct {
	Open           bool     // reflect any origin
	AllowedOrigins []string // used when Open is false; empty reflects any origin
	MaxAge         int      // preflight cache, seconds
}

// CORSMiddleware allows credentialed cross-origin calls from the configured
// origins and answers preflight requests.
func CORSMiddleware(cfg CORSConfig) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Retry-After", "x-ratelimit-limit-requests", "x-ratelimit-remaining-requests", "x-ratelimit-reset-requests"},
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	}
	if cfg.Open || len(cfg.AllowedOrigins) == 0 {
		opts.AllowOriginFunc = func(r *http.Request, origin string) bool { return true }
	} else {
		opts.AllowedOrigins = cfg.AllowedOrigins
	}
	return cors.Handler(opts)
}

// BodyLimitMiddleware caps request bodies at n bytes. Reads past the limit
// fail with *http.MaxBytesError.
func BodyLimitMiddleware(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
