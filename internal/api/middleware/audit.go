// HTTP audit log for protected routes.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/matiasleandrokruk/seekassist/internal/api/ctxkeys"
)

// Audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
)

// AuditMiddleware writes one structured record per protected request.
// Expected order in router: AuthMiddleware -> AuditMiddleware -> handlers.
// A nil logger disables auditing.
func AuditMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger == nil {
				next.ServeHTTP(w, r)
				return
			}

			client := ctxkeys.String(r.Context(), ctxkeys.Client)
			if client == "" {
				next.ServeHTTP(w, r)
				return
			}

			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			logger.LogAttrs(r.Context(), slog.LevelInfo, "api audit",
				slog.String("client", client),
				slog.String("action", actionFromRequest(r.Method, r.URL.Path)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status_code", recorder.statusCode),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("outcome", outcomeFromStatus(recorder.statusCode)),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Flush keeps the event stream working behind the recorder.
func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusRecorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func outcomeFromStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return OutcomeSuccess
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return OutcomeDenied
	default:
		return OutcomeError
	}
}

// actionFromRequest names the operation behind an /api/v1 route:
// "POST /api/v1/fix" → "fix", "DELETE /api/v1/settings/api-key" → "delete_api_key".
func actionFromRequest(method, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 3 || segments[0] != "api" || segments[1] != "v1" {
		return strings.ToLower(method) + "_request"
	}

	resource := segments[2]
	switch resource {
	case "generate", "fix", "analyze":
		return resource
	case "events":
		return "stream_events"
	case "history":
		return "list_history"
	}

	entity := strings.ReplaceAll(segments[len(segments)-1], "-", "_")
	return actionForEntity(method, entity)
}

func actionForEntity(method, entity string) string {
	switch method {
	case http.MethodGet:
		return "get_" + entity
	case http.MethodPut, http.MethodPatch:
		return "update_" + entity
	case http.MethodDelete:
		return "delete_" + entity
	case http.MethodPost:
		return "create_" + entity
	default:
		return strings.ToLower(method) + "_" + entity
	}
}
