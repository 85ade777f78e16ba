package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// GenericErrorMessage replaces internal error detail outside development.
const GenericErrorMessage = "Something went wrong"

// RecoverMiddleware turns handler panics into a JSON 500. The panic value is
// only sent to the client when development is set.
func RecoverMiddleware(logger *slog.Logger, development bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err := fmt.Errorf("panic: %v", rec)
				logger.ErrorContext(r.Context(), "unhandled error",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				AddError(r.Context(), err)

				message := GenericErrorMessage
				if development {
					message = fmt.Sprint(rec)
				}
				WriteJSON(w, http.StatusInternalServerError, ErrorBody{
					Error:   "Internal Server Error",
					Message: message,
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
