package llm

import "context"

// Executor performs exactly one outbound chat-completion call.
//
// Contract:
//   - Execute never returns a partial success: exactly one of network failure,
//     timeout/abort, or success-with-body is produced.
//   - When the deadline fires (or ctx is cancelled) the in-flight call is aborted
//     and its resources released before Execute returns.
//   - No retries.
type Executor interface {
	Execute(ctx context.Context, req ChatRequest, apiKey string) Envelope

	// Name identifies the executor in logs and history ("deepseek", "openai").
	Name() string
}
