package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name:     "error with type and message",
			err:      &APIError{Type: ErrorTypeInvalidRequest, Message: "bad request"},
			expected: "invalid_request: bad request",
		},
		{
			name:     "error with type, code, and message",
			err:      &APIError{Type: ErrorTypeRateLimit, Code: ErrorCodeRateLimitExceeded, Message: "rate limited"},
			expected: "rate_limit (rate_limit_exceeded): rate limited",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAPIError_HTTPStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected int
	}{
		{"invalid request", &APIError{Type: ErrorTypeInvalidRequest}, http.StatusBadRequest},
		{"rate limit", &APIError{Type: ErrorTypeRateLimit}, http.StatusTooManyRequests},
		{"upstream", &APIError{Type: ErrorTypeUpstream}, http.StatusServiceUnavailable},
		{"server", &APIError{Type: ErrorTypeServer}, http.StatusInternalServerError},
		{"unknown type", &APIError{Type: "mystery"}, http.StatusInternalServerError},
		{"explicit status wins", &APIError{Type: ErrorTypeUpstream, StatusCode: http.StatusTooManyRequests}, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatusCode(); got != tt.expected {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestAPIError_Builders(t *testing.T) {
	err := ErrInvalidRequest("Material is required").
		WithParam("material").
		WithCode(ErrorCodeMissingField)

	if err.Param != "material" {
		t.Errorf("Param = %q, want material", err.Param)
	}
	if err.Code != ErrorCodeMissingField {
		t.Errorf("Code = %q, want %q", err.Code, ErrorCodeMissingField)
	}

	if got := ErrRateLimit("slow down").Code; got != ErrorCodeRateLimitExceeded {
		t.Errorf("ErrRateLimit code = %q", got)
	}
}

func TestAPIError_ErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("validate: %w", ErrInvalidRequest("bad"))

	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("errors.As did not find *APIError")
	}
	if apiErr.HTTPStatusCode() != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apiErr.HTTPStatusCode())
	}
}
