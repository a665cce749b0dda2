package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"devspace/internal/httputil"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	h := Recovery(newTestLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/folders", nil))

	assert.Equal(t, w.Code, http.StatusInternalServerError)
	assert.Check(t, is.Contains(w.Body.String(), "internal server error"))
	assert.Check(t, is.Contains(buf.String(), "panic recovered"))
	assert.Check(t, is.Contains(buf.String(), "boom"))
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httputil.GetRequestID(r)
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Assert(t, seen != "")
		assert.Equal(t, w.Header().Get(httputil.RequestIDHeader), seen)
	})

	t.Run("propagated", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(httputil.RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, seen, "req-42")
		assert.Equal(t, w.Header().Get(httputil.RequestIDHeader), "req-42")
	})

	t.Run("oversized id replaced", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(httputil.RequestIDHeader, strings.Repeat("x", 200))
		h.ServeHTTP(httptest.NewRecorder(), r)
		assert.Equal(t, len(seen), 36)
	})
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"ok", http.StatusOK, "INFO"},
		{"not found", http.StatusNotFound, "WARN"},
		{"failure", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := Chain(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
				}),
				RequestID,
				RequestLogger(newTestLogger(&buf)),
			)

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/folders/x", nil))

			var entry map[string]any
			assert.NilError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, entry["level"], tt.wantLevel)
			assert.Equal(t, entry["method"], http.MethodDelete)
			assert.Equal(t, entry["path"], "/api/folders/x")
			assert.Equal(t, entry["status"], float64(tt.status))
			assert.Assert(t, entry["request_id"] != "")
		})
	}
}

func TestRequestLoggerDefaultsToOK(t *testing.T) {
	var buf bytes.Buffer
	h := RequestLogger(newTestLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Check(t, is.Contains(buf.String(), `"status":200`))
}
