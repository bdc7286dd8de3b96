// HTTP chat-completions executor.
// Speaks the OpenAI-compatible wire format used by DeepSeek:
//   - POST {base}/chat/completions
//   - Content-Type: application/json
//   - Authorization: Bearer <api key>
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	mimeJSON            = "application/json"
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"

	// ChatCompletionsPath is the fixed sub-path appended to the base endpoint.
	ChatCompletionsPath = "/chat/completions"

	// DefaultDeadline bounds one call from issuance to response.
	DefaultDeadline = 30 * time.Second

	// maxBodyBytes caps how much of a response body is read into memory.
	maxBodyBytes = 8 << 20
)

// HTTPExecutor implements Executor against an OpenAI-compatible endpoint using net/http.
type HTTPExecutor struct {
	baseURL    string
	deadline   time.Duration
	httpClient *http.Client
}

// HTTPOption customises an HTTPExecutor.
type HTTPOption func(*HTTPExecutor)

// WithHTTPClient replaces the underlying client (tests, proxies).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(e *HTTPExecutor) { e.httpClient = c }
}

// WithDeadline overrides DefaultDeadline. Non-positive values are ignored.
func WithDeadline(d time.Duration) HTTPOption {
	return func(e *HTTPExecutor) {
		if d > 0 {
			e.deadline = d
		}
	}
}

// NewHTTPExecutor creates an HTTPExecutor for baseURL (e.g. "https://api.deepseek.com/v1").
// The deadline is enforced by the executor itself, not by http.Client.Timeout,
// so that a timeout is distinguishable from other transport failures.
func NewHTTPExecutor(baseURL string, opts ...HTTPOption) *HTTPExecutor {
	e := &HTTPExecutor{
		baseURL:    baseURL,
		deadline:   DefaultDeadline,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements Executor.
func (e *HTTPExecutor) Name() string { return "deepseek" }

// Deadline returns the per-call time budget.
func (e *HTTPExecutor) Deadline() time.Duration { return e.deadline }

// Execute serializes req, attaches the bearer credential and issues exactly one
// POST to baseURL+ChatCompletionsPath under the executor deadline.
func (e *HTTPExecutor) Execute(ctx context.Context, req ChatRequest, apiKey string) Envelope {
	body, err := json.Marshal(req)
	if err != nil {
		return Envelope{Status: StatusNetworkError, Err: fmt.Errorf("llm: encode request: %w", err)}
	}
	return raceDeadline(ctx, e.deadline, func(callCtx context.Context) Envelope {
		return e.doPost(callCtx, ChatCompletionsPath, body, apiKey)
	})
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// doPost sends a POST request to baseURL+path and converts the result into an Envelope.
func (e *HTTPExecutor) doPost(ctx context.Context, path string, body []byte, apiKey string) Envelope {
	url := e.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Envelope{Status: StatusNetworkError, Err: fmt.Errorf("llm post %s: build request: %w", path, err)}
	}
	req.Header.Set(headerContentType, mimeJSON)
	req.Header.Set(headerAuthorization, "Bearer "+apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return Envelope{Status: StatusNetworkError, Err: fmt.Errorf("llm post %s: %w", path, err)}
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Envelope{Status: StatusNetworkError, HTTPStatus: resp.StatusCode, Err: fmt.Errorf("llm post %s: read body: %w", path, err)}
	}
	return envelopeForStatus(resp.StatusCode, respBody)
}

// envelopeForStatus maps an HTTP status to a transport status.
// 401/403 are credential problems; any other non-2xx is a network failure.
func envelopeForStatus(code int, body []byte) Envelope {
	env := Envelope{Status: StatusOK, HTTPStatus: code, Body: body}
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		env.Status = StatusAuthError
		env.Err = &StatusError{Code: code, Body: excerpt(body)}
	case code < 200 || code >= 300:
		env.Status = StatusNetworkError
		env.Err = &StatusError{Code: code, Body: excerpt(body)}
	}
	return env
}

// StatusError reports a non-2xx provider response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	text := http.StatusText(e.Code)
	if e.Body == "" {
		return fmt.Sprintf("status %d %s", e.Code, text)
	}
	return fmt.Sprintf("status %d %s: %s", e.Code, text, e.Body)
}

// IsStatus reports whether err carries the given HTTP status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

const maxExcerpt = 512

func excerpt(body []byte) string {
	b := bytes.TrimSpace(body)
	if len(b) > maxExcerpt {
		b = b[:maxExcerpt]
	}
	return string(b)
}
