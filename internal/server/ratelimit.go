package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tjfontaine/lca-gateway/internal/ratelimit"
)

// RateLimitExceededMessage is the deny message sent to clients.
const RateLimitExceededMessage = "Too many requests. Please try again later."

// rateLimitContextKey is the context key for the admission decision.
type rateLimitContextKey struct{}

// GetRateLimit returns the decision RateLimitMiddleware made for this request.
func GetRateLimit(ctx context.Context) (ratelimit.Decision, bool) {
	d, ok := ctx.Value(rateLimitContextKey{}).(ratelimit.Decision)
	return d, ok
}

// RateLimitMiddleware admits requests through limiter, keyed by client IP.
// Every response carries normalized x-ratelimit-* headers; denied requests get
// 429 with Retry-After and never reach next.
func RateLimitMiddleware(limiter *ratelimit.Limiter, logger *slog.Logger, now func() time.Time) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			d := limiter.Admit(ip, now())
			writeRateLimitHeaders(w.Header(), d)

			if !d.Allowed {
				retryAfter := d.RetryAfterSeconds()
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				AddLogField(r.Context(), "rate_limited", "true")
				logger.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("ip", ip),
					slog.Int("retry_after", retryAfter),
				)
				WriteJSON(w, http.StatusTooManyRequests, ErrorBody{
					Error:      "Rate Limit Exceeded",
					Message:    RateLimitExceededMessage,
					RetryAfter: retryAfter,
				})
				return
			}

			ctx := context.WithValue(r.Context(), rateLimitContextKey{}, d)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeRateLimitHeaders writes the standard x-ratelimit-{limit|remaining|reset}-requests set.
func writeRateLimitHeaders(h http.Header, d ratelimit.Decision) {
	if d.Limit <= 0 {
		return
	}
	h.Set("x-ratelimit-limit-requests", strconv.Itoa(d.Limit))
	h.Set("x-ratelimit-remaining-requests", strconv.Itoa(d.Remaining))
	if !d.ResetAt.IsZero() {
		h.Set("x-ratelimit-reset-requests", d.ResetAt.UTC().Format(time.RFC3339))
	}
}

// ClientIP returns the host part of the connection's remote address, or
// ratelimit.UnknownClient when there is none. Forwarding headers are not
// trusted.
func ClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return ratelimit.UnknownClient
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		if host == "" {
			return ratelimit.UnknownClient
		}
		return host
	}
	return addr
}
