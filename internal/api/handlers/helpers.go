// Shared response helpers for the API handlers.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matiasleandrokruk/seekassist/internal/domain/assist"
)

const (
	headerContentType = "Content-Type"
	mimeJSON          = "application/json"
	mimeEventStream   = "text/event-stream"

	errInvalidBody = "invalid request body"
)

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set(headerContentType, mimeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		http.Error(w, `{"error":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}

// writeData writes {"data": v} with the given status.
func writeData(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set(headerContentType, mimeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

// decodeBody decodes a JSON request body into dst. Unknown fields are rejected
// so a misspelled option does not pass silently.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// parseLimit reads ?limit=. Missing or invalid values yield 0 (service default).
func parseLimit(r *http.Request) int {
	lim, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || lim < 0 {
		return 0
	}
	return lim
}

// statusForOutcome maps a classified outcome to the HTTP status of the response.
//
//	success                     → 200
//	NotConfigured               → 412
//	Network (deadline)          → 504
//	Network, InvalidFormat, EmptyResult → 502
func statusForOutcome(out assist.Outcome) int {
	f := out.Failure
	if f == nil {
		return http.StatusOK
	}
	switch f.Kind {
	case assist.NotConfigured:
		return http.StatusPreconditionFailed
	case assist.Network:
		if f.TimedOut() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
