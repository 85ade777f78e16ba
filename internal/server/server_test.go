package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 123_000_000, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Config{
		Port:         0,
		MaxBodyBytes: 1 << 20,
		CORS:         CORSConfig{Open: true, MaxAge: 86400},
		Now:          func() time.Time { return fixedNow },
	}, discardLogger())
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]string{
		"status":    "OK",
		"message":   "LCA Backend Server is running",
		"timestamp": "2024-05-06T07:08:09.123Z",
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s = %q, want %q", k, body[k], v)
		}
	}
}

func TestServer_NotFound(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/unknown?x=1", nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := decodeErrorBody(t, rec)
	if body.Error != "Route not found" {
		t.Errorf("error = %q", body.Error)
	}
	if body.Message != "The requested route /api/unknown?x=1 does not exist" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("DELETE", "/health", nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Error != "Method not allowed" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestServer_PanicIsJSON(t *testing.T) {
	s := newTestServer(t)
	s.Router.Get("/explode", func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	req := httptest.NewRequest("GET", "/explode", nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Message != GenericErrorMessage {
		t.Errorf("message = %q, want generic text outside development", body.Message)
	}
}

func TestServer_Start_And_Shutdown(t *testing.T) {
	s := newTestServer(t)

	done := make(chan error, 1)
	go func() {
		done <- s.Start()
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() = %v, want nil after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}
