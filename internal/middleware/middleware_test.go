package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scriptdesk/internal/httputil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIdentity(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"api with header", "/api/projects", "user-1", http.StatusOK, "user-1"},
		{"api header is trimmed", "/api/projects", "  user-2 ", http.StatusOK, "user-2"},
		{"api without header", "/api/projects", "", http.StatusUnauthorized, ""},
		{"health without header", "/health", "", http.StatusOK, ""},
		{"metrics without header", "/metrics", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = httputil.GetUserID(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(UserIDHeader, tt.header)
			}
			rr := httptest.NewRecorder()
			Identity(inner).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user id: got %q, want %q", gotUser, tt.wantUser)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set(httputil.RequestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	RequestID(Recovery(logger)(inner)).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type: got %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["request_id"] != "req-42" || body["instance"] != "/api/projects" {
		t.Errorf("problem body: %v", body)
	}
	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Errorf("panic log missing request id: %q", buf.String())
	}
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{"reuses caller id", "trace-1", true},
		{"generates when missing", "", false},
		{"replaces oversized id", strings.Repeat("x", maxRequestIDLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = httputil.RequestID(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.incoming != "" {
				req.Header.Set(httputil.RequestIDHeader, tt.incoming)
			}
			rr := httptest.NewRecorder()
			RequestID(inner).ServeHTTP(rr, req)

			echoed := rr.Header().Get(httputil.RequestIDHeader)
			if seen == "" || echoed != seen {
				t.Errorf("context id %q, response header %q", seen, echoed)
			}
			if (seen == tt.incoming) != tt.wantSame {
				t.Errorf("got id %q for incoming %q", seen, tt.incoming)
			}
		})
	}
}

func TestLogging(t *testing.T) {
	t.Run("logs status of the wrapped handler", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/scripts/x", nil)
		rr := httptest.NewRecorder()
		Logging(logger)(inner).ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rr.Code)
		}
		out := buf.String()
		if !strings.Contains(out, "status=404") || !strings.Contains(out, "level=WARN") {
			t.Errorf("log line missing status or level: %q", out)
		}
	})

	t.Run("implicit 200 on write", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()
		Logging(logger)(inner).ServeHTTP(rr, req)

		if !strings.Contains(buf.String(), "status=200") {
			t.Errorf("log line missing status=200: %q", buf.String())
		}
	})
}
