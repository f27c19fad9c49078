package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/sethvargo/go-retry"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/translate"
)

// claudeCaller implements translate.Caller for Anthropic Claude.
type claudeCaller struct {
	client  *anthropic.Client
	retries int
}

// NewClaude creates a Claude caller. If opts.APIKey is empty,
// ANTHROPIC_API_KEY is used.
func NewClaude(opts Options) translate.Caller {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	var clientOpts []anthropic.ClientOption
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(opts.BaseURL))
	}
	return &claudeCaller{
		client:  anthropic.NewClient(apiKey, clientOpts...),
		retries: opts.Retries,
	}
}

func (c *claudeCaller) Call(ctx context.Context, systemPrompt, body, model string) (string, *translate.Usage, error) {
	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(model),
		Messages:  []anthropic.Message{anthropic.NewUserTextMessage(body)},
		System:    systemPrompt,
		MaxTokens: defaultMaxTokens,
	}

	var resp anthropic.MessagesResponse
	err := withRetry(ctx, c.retries, func(ctx context.Context) error {
		var err error
		resp, err = c.client.CreateMessages(ctx, req)
		if err != nil {
			err = fmt.Errorf("create messages: %w", err)
			if claudeRetryable(err) {
				return retry.RetryableError(err)
			}
		}
		return err
	})
	if err != nil {
		return "", nil, callError(ProviderClaude, err)
	}

	text, err := joinChoices(ProviderClaude, []choice{claudeChoice(resp)})
	if err != nil {
		return "", nil, err
	}
	in, out := resp.Usage.InputTokens, resp.Usage.OutputTokens
	return text, usageOf(in, out, in+out), nil
}

// claudeChoice folds the text blocks of a message into a single choice.
func claudeChoice(resp anthropic.MessagesResponse) choice {
	c := choice{
		finish:  string(resp.StopReason),
		natural: resp.StopReason == anthropic.MessagesStopReasonEndTurn,
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText {
			parts = append(parts, block.GetText())
		}
	}
	if len(parts) > 0 {
		text := strings.Join(parts, "")
		c.text = &text
	}
	return c
}

func claudeRetryable(err error) bool {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRateLimitErr() || apiErr.IsOverloadedErr() || apiErr.IsApiErr()
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.StatusCode)
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
