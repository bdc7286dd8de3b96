package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// SDKExecutor implements Executor using the official openai-go SDK against any
// OpenAI-compatible base URL. It shares the deadline race with HTTPExecutor and
// returns the provider's raw JSON as the envelope body, so classification is
// identical for both executors.
type SDKExecutor struct {
	baseURL    string
	deadline   time.Duration
	httpClient *http.Client
}

// NewSDKExecutor creates an SDKExecutor. A nil httpClient gets a fresh client.
func NewSDKExecutor(baseURL string, deadline time.Duration, httpClient *http.Client) *SDKExecutor {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &SDKExecutor{baseURL: baseURL, deadline: deadline, httpClient: httpClient}
}

// Name implements Executor.
func (e *SDKExecutor) Name() string { return "openai" }

// Execute implements Executor.
func (e *SDKExecutor) Execute(ctx context.Context, req ChatRequest, apiKey string) Envelope {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(e.baseURL),
		option.WithHTTPClient(e.httpClient),
		option.WithMaxRetries(0),
	)
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    sdkMessages(req.Messages),
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	}

	return raceDeadline(ctx, e.deadline, func(callCtx context.Context) Envelope {
		resp, err := client.Chat.Completions.New(callCtx, params)
		if err != nil {
			return sdkErrorEnvelope(err)
		}
		return Envelope{Status: StatusOK, HTTPStatus: http.StatusOK, Body: []byte(resp.RawJSON())}
	})
}

func sdkMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func sdkErrorEnvelope(err error) Envelope {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		env := envelopeForStatus(apiErr.StatusCode, nil)
		env.Err = fmt.Errorf("llm sdk: %w", &StatusError{Code: apiErr.StatusCode, Body: apiErr.Message})
		return env
	}
	return Envelope{Status: StatusNetworkError, Err: fmt.Errorf("llm sdk: %w", err)}
}
