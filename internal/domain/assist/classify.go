package assist

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/matiasleandrokruk/seekassist/internal/infra/llm"
)

// Failure messages produced by Classify.
const (
	MsgInvalidJSON    = "invalid JSON response"
	MsgMissingChoices = "missing choices array"
	MsgNoChoices      = "no choices returned"
	MsgEmptyContent   = "empty content"
	MsgInvalidKey     = "invalid API key, check the assistant settings"
	MsgTimeout        = "request timed out"
	MsgAborted        = "request aborted"
	MsgNotConfigured  = "API key not configured"
)

// choice is decoded loosely: content may be absent or not a string.
type choice struct {
	Message struct {
		Content any `json:"content"`
	} `json:"message"`
}

// Classify turns a transport envelope into an Outcome for mode. It is total:
// any body, including empty or truncated input, yields an Outcome.
func Classify(env llm.Envelope, mode Mode) Outcome {
	if !env.OK() {
		return transportFailure(env, mode)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(env.Body, &obj); err != nil || obj == nil {
		return Fail(mode, InvalidFormat, MsgInvalidJSON)
	}

	raw, ok := obj["choices"]
	if !ok {
		return Fail(mode, InvalidFormat, MsgMissingChoices)
	}
	var choices []json.RawMessage
	if err := json.Unmarshal(raw, &choices); err != nil || choices == nil {
		return Fail(mode, InvalidFormat, MsgMissingChoices)
	}
	if len(choices) == 0 {
		return Fail(mode, EmptyResult, MsgNoChoices)
	}

	var first choice
	// A malformed first element is treated like one without content.
	_ = json.Unmarshal(choices[0], &first) //nolint:errcheck
	text, _ := first.Message.Content.(string)
	content := strings.TrimSpace(text)
	if content == "" {
		return Fail(mode, EmptyResult, MsgEmptyContent)
	}

	switch mode {
	case ModeFix:
		return FixContent(content)
	case ModeAnalyze:
		return StructuredReport(Analyze(content))
	case ModeGenerate:
		return PlainContent(content)
	default:
		return Fail(mode, InvalidFormat, fmt.Sprintf("unsupported mode %s", mode))
	}
}

// Analyze builds a Report from reply text.
func Analyze(content string) *Report {
	sections := ExtractSections(content)
	return &Report{
		Sections: sections,
		Metrics: Metrics{
			Characters: utf8.RuneCountInString(content),
			Lines:      strings.Count(content, "\n") + 1,
			Sections:   len(sections),
		},
		LowConfidence: !sections.HasPairs(),
		Raw:           content,
	}
}

func transportFailure(env llm.Envelope, mode Mode) Outcome {
	out := Fail(mode, Network, networkMessage(env))
	out.Failure.Status = env.Status
	out.Failure.Err = env.Err
	return out
}

func networkMessage(env llm.Envelope) string {
	switch env.Status {
	case llm.StatusAuthError:
		return MsgInvalidKey
	case llm.StatusTimeout:
		return MsgTimeout
	case llm.StatusAborted:
		return MsgAborted
	}
	if env.Err != nil {
		return "network error: " + env.Err.Error()
	}
	return "network error"
}
