package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matiasleandrokruk/seekassist/internal/api/ctxkeys"
)

func TestAuditMiddleware_NoLogger_PassesThrough(t *testing.T) {
	t.Parallel()

	nextCalled := false
	h := AuditMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))

	if !nextCalled {
		t.Fatal("expected next handler to be called")
	}
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}

func TestAuditMiddleware_MissingClient_PassesWithoutAudit(t *testing.T) {
	t.Parallel()

	logger, buf := bufferLogger()
	nextCalled := false
	h := AuditMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))

	if !nextCalled {
		t.Fatal("expected next handler to be called")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no audit record, got %s", buf.String())
	}
}

func TestAuditMiddleware_LogsActionAndOutcome(t *testing.T) {
	t.Parallel()

	logger, buf := bufferLogger()
	h := AuditMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fix", nil)
	req = req.WithContext(ctxkeys.WithValue(req.Context(), ctxkeys.Client, "panel"))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["client"] != "panel" {
		t.Errorf("client = %v", rec["client"])
	}
	if rec["action"] != "fix" {
		t.Errorf("action = %v", rec["action"])
	}
	if rec["status_code"] != float64(http.StatusBadGateway) {
		t.Errorf("status_code = %v", rec["status_code"])
	}
	if rec["outcome"] != OutcomeError {
		t.Errorf("outcome = %v", rec["outcome"])
	}
	if _, ok := rec["duration_ms"]; !ok {
		t.Error("expected duration_ms")
	}
}

func TestStatusRecorder_WriteHeader(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rr, statusCode: http.StatusOK}
	sr.WriteHeader(http.StatusTeapot)

	if sr.statusCode != http.StatusTeapot {
		t.Fatalf("expected statusCode %d, got %d", http.StatusTeapot, sr.statusCode)
	}
	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected response %d, got %d", http.StatusTeapot, rr.Code)
	}
}

func TestStatusRecorder_Flush(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	var w http.ResponseWriter = &statusRecorder{ResponseWriter: rr, statusCode: http.StatusOK}

	f, ok := w.(http.Flusher)
	if !ok {
		t.Fatal("statusRecorder must implement http.Flusher")
	}
	f.Flush()
	if !rr.Flushed {
		t.Fatal("expected flush to reach the underlying writer")
	}
}

func TestOutcomeFromStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   string
	}{
		{http.StatusOK, OutcomeSuccess},
		{http.StatusNoContent, OutcomeSuccess},
		{http.StatusUnauthorized, OutcomeDenied},
		{http.StatusForbidden, OutcomeDenied},
		{http.StatusBadRequest, OutcomeError},
		{http.StatusGatewayTimeout, OutcomeError},
	}

	for _, tt := range tests {
		if got := outcomeFromStatus(tt.status); got != tt.want {
			t.Fatalf("status=%d got=%q want=%q", tt.status, got, tt.want)
		}
	}
}

func TestActionFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
		want   string
	}{
		{"fallback invalid path", http.MethodGet, "/health", "get_request"},
		{"generate", http.MethodPost, "/api/v1/generate", "generate"},
		{"fix", http.MethodPost, "/api/v1/fix", "fix"},
		{"analyze", http.MethodPost, "/api/v1/analyze", "analyze"},
		{"events", http.MethodGet, "/api/v1/events", "stream_events"},
		{"history", http.MethodGet, "/api/v1/history", "list_history"},
		{"settings get", http.MethodGet, "/api/v1/settings", "get_settings"},
		{"api key put", http.MethodPut, "/api/v1/settings/api-key", "update_api_key"},
		{"api key delete", http.MethodDelete, "/api/v1/settings/api-key", "delete_api_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := actionFromRequest(tt.method, tt.path); got != tt.want {
				t.Fatalf("action got=%q want=%q", got, tt.want)
			}
		})
	}
}

func TestActionForEntity(t *testing.T) {
	t.Parallel()

	if got := actionForEntity(http.MethodPatch, "api_key"); got != "update_api_key" {
		t.Fatalf("unexpected entity patch action: %q", got)
	}
	if got := actionForEntity(http.MethodPost, "api_key"); got != "create_api_key" {
		t.Fatalf("unexpected entity post action: %q", got)
	}
	if got := actionForEntity(http.MethodOptions, "api_key"); got != "options_api_key" {
		t.Fatalf("unexpected entity fallback action: %q", got)
	}
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, nil)), buf
}
