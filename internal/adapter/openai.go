package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/translate"
)

// openaiCaller implements translate.Caller for OpenAI and compatible servers.
type openaiCaller struct {
	client  *openai.Client
	retries int
}

// NewOpenAI creates an OpenAI caller. If opts.APIKey is empty,
// OPENAI_API_KEY is used.
func NewOpenAI(opts Options) translate.Caller {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg := openai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return &openaiCaller{
		client:  openai.NewClientWithConfig(cfg),
		retries: opts.Retries,
	}
}

func (o *openaiCaller) Call(ctx context.Context, systemPrompt, body, model string) (string, *translate.Usage, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: body},
		},
	}

	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, o.retries, func(ctx context.Context) error {
		var err error
		resp, err = o.client.CreateChatCompletion(ctx, req)
		if err != nil {
			err = fmt.Errorf("chat completion: %w", err)
			if openaiRetryable(err) {
				return retry.RetryableError(err)
			}
		}
		return err
	})
	if err != nil {
		return "", nil, callError(ProviderOpenAI, err)
	}

	choices := make([]choice, len(resp.Choices))
	for i, c := range resp.Choices {
		content := c.Message.Content
		choices[i] = choice{
			text:    &content,
			finish:  string(c.FinishReason),
			natural: c.FinishReason == openai.FinishReasonStop,
		}
	}
	text, err := joinChoices(ProviderOpenAI, choices)
	if err != nil {
		return "", nil, err
	}
	return text, usageOf(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens), nil
}

// openaiRetryable reports whether err is a rate limit, a server error, or a
// transport failure without any HTTP status.
func openaiRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
