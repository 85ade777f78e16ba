package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// Kind categorizes a ServiceError.
type Kind string

const (
	// KindAPI means the Gemini API answered with an error status.
	KindAPI Kind = "api"
	// KindTransport means the request never got an answer.
	KindTransport Kind = "transport"
	// KindEmpty means the API answered but produced no text.
	KindEmpty Kind = "empty"
	// KindCanceled means the caller's context ended first.
	KindCanceled Kind = "canceled"
)

// ServiceError reports a failed model call.
type ServiceError struct {
	Op         string
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gemini %s: API error (status %d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini %s: %s", e.Op, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Upstream reports whether the failure lies with the Gemini API or the
// network path to it.
func (e *ServiceError) Upstream() bool {
	return e.Kind == KindAPI || e.Kind == KindTransport
}

// RateLimited reports whether the API rejected the call for quota reasons.
func (e *ServiceError) RateLimited() bool {
	return e.Kind == KindAPI && e.StatusCode == http.StatusTooManyRequests
}

func classify(op string, err error) *ServiceError {
	var serr *ServiceError
	if errors.As(err, &serr) {
		return serr
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Op: op, Kind: KindCanceled, Message: err.Error(), Err: err}
	}

	if apiErr, ok := findAPIError(err); ok {
		return &ServiceError{Op: op, Kind: KindAPI, StatusCode: apiErr.Code, Message: apiMessage(apiErr), Err: err}
	}

	return &ServiceError{Op: op, Kind: KindTransport, Message: err.Error(), Err: err}
}

// findAPIError walks the wrap chain for a genai.APIError, which the SDK
// returns by value.
func findAPIError(err error) (genai.APIError, bool) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch t := any(e).(type) {
		case genai.APIError:
			return t, true
		case *genai.APIError:
			if t != nil {
				return *t, true
			}
		}
	}
	return genai.APIError{}, false
}

func apiMessage(e genai.APIError) string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != "" {
		return e.Status
	}
	return http.StatusText(e.Code)
}
