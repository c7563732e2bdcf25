package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/furcode/internal/model"
)

func TestRecoveryMiddleware_ReturnsUnifiedInternalError(t *testing.T) {
	var buf bytes.Buffer
	handler := NewRecoveryMiddleware(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pet/1", nil))

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Code != model.ErrCodeInternal {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInternal)
	}

	entry := decodeLogEntry(t, &buf)
	if entry["msg"] != "panic recovered" {
		t.Errorf("msg = %q, want %q", entry["msg"], "panic recovered")
	}
	if entry["panic"] != "boom" {
		t.Errorf("panic = %v, want %q", entry["panic"], "boom")
	}
}

func TestRequestIDMiddleware_GeneratesAndPropagates(t *testing.T) {
	var seen string
	handler := NewRequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if seen == "" {
		t.Fatal("expected generated request id")
	}
	if got := w.Result().Header.Get(RequestIDHeader); got != seen {
		t.Errorf("%s = %q, want %q", RequestIDHeader, got, seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "client-supplied" {
		t.Errorf("request id = %q, want %q", seen, "client-supplied")
	}
}
