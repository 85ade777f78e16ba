// Package testutil holds helpers shared by package tests.
package testutil

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"
)

// redactedHeaders never reach a recorded cassette.
var redactedHeaders = []string{"X-Goog-Api-Key", "Authorization"}

// NewVCRRecorder creates a recorder replaying testdata/fixtures/<cassetteName>.yaml.
// Set VCR_MODE=record to capture fresh traffic instead.
func NewVCRRecorder(t *testing.T, cassetteName string) (*recorder.Recorder, func()) {
	t.Helper()

	mode := recorder.ModeReplaying
	if os.Getenv("VCR_MODE") == "record" {
		mode = recorder.ModeRecording
	}

	cassettePath := filepath.Join("testdata", "fixtures", cassetteName)

	r, err := recorder.NewAsMode(cassettePath, mode, nil)
	if err != nil {
		t.Fatalf("Failed to create VCR recorder: %v", err)
	}

	// Match on method and path; bodies carry prompts and query strings may carry keys.
	r.SetMatcher(func(r *http.Request, i cassette.Request) bool {
		u, err := url.Parse(i.URL)
		if err != nil {
			return false
		}
		return r.Method == i.Method && r.URL.Path == u.Path
	})

	r.AddFilter(func(i *cassette.Interaction) error {
		for _, h := range redactedHeaders {
			i.Request.Headers.Del(h)
		}
		return nil
	})

	cleanup := func() {
		if err := r.Stop(); err != nil {
			t.Errorf("Failed to stop VCR recorder: %v", err)
		}
	}

	return r, cleanup
}

// VCRHTTPClient returns an HTTP client configured to use the VCR recorder
func VCRHTTPClient(r *recorder.Recorder) *http.Client {
	return &http.Client{
		Transport: r,
	}
}
