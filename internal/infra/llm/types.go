// Package llm defines the chat-completion transport layer: the request
// document sent to the provider, the raw envelope that comes back, and the
// executors that perform exactly one outbound call under a deadline.
// Semantic interpretation of the envelope lives in internal/domain/assist.
package llm

import "errors"

// Message represents a single turn in a conversation (role + content).
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// ChatRequest is the request document for one chat completion.
// Built once per call and never mutated afterwards.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// TransportStatus tags how the outbound call ended.
type TransportStatus int

const (
	StatusOK           TransportStatus = iota // a 2xx response with a body
	StatusNetworkError                        // connection, TLS or non-2xx failure
	StatusAuthError                           // provider rejected the credential (401/403)
	StatusTimeout                             // the deadline fired and the call was aborted
	StatusAborted                             // the caller cancelled before the deadline
)

func (s TransportStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNetworkError:
		return "network_error"
	case StatusAuthError:
		return "auth_error"
	case StatusTimeout:
		return "timeout"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Envelope is the unparsed result of one outbound call.
// It is consumed exactly once by the response classifier.
type Envelope struct {
	Status     TransportStatus
	HTTPStatus int    // 0 when no response arrived
	Body       []byte // response body; may be set on failures for diagnosis
	Err        error  // nil iff Status == StatusOK
}

// OK reports whether the transport delivered a successful response.
func (e Envelope) OK() bool { return e.Status == StatusOK }

var (
	// ErrDeadlineExceeded is the Envelope error when the executor deadline fires first.
	ErrDeadlineExceeded = errors.New("llm: request deadline exceeded")

	// ErrAborted is the Envelope error when the caller cancels the call.
	ErrAborted = errors.New("llm: request aborted")
)
