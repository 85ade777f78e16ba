package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// TimestampFormat renders UTC instants with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrorBody is the error envelope shared by the server's own responses.
type ErrorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// Timestamp formats t as an RFC 3339 UTC string with milliseconds.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// WriteJSON writes payload with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Debug("failed to write response", slog.String("error", err.Error()))
	}
}
