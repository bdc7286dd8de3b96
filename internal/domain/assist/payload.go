package assist

import "github.com/matiasleandrokruk/seekassist/internal/infra/llm"

// Generation parameters sent with every request.
const (
	DefaultModel = "deepseek-chat"
	Temperature  = 0.7
	MaxTokens    = 2000
)

// FixSystemMessage is prepended to every fix request.
const FixSystemMessage = "You are a code correction assistant. Return only the corrected code, no prose and no explanations."

// BuildPayload builds the request document for prompt under mode using DefaultModel.
func BuildPayload(prompt string, mode Mode) llm.ChatRequest {
	return NewPayload(DefaultModel, prompt, mode)
}

// NewPayload builds the request document for prompt under mode. The prompt is
// passed through verbatim; emptiness is the caller's concern.
func NewPayload(model, prompt string, mode Mode) llm.ChatRequest {
	if model == "" {
		model = DefaultModel
	}

	msgs := make([]llm.Message, 0, 2)
	if mode == ModeFix {
		msgs = append(msgs, llm.Message{Role: "system", Content: FixSystemMessage})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: prompt})

	return llm.ChatRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}
}
