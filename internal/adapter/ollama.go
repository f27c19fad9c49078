package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sethvargo/go-retry"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/translate"
)

// DefaultOllamaHost is the address of a local Ollama server.
const DefaultOllamaHost = "http://localhost:11434"

// ollamaCaller implements translate.Caller for an Ollama instance.
type ollamaCaller struct {
	host    string
	client  *http.Client
	retries int
}

// NewOllama creates an Ollama caller. opts.BaseURL is the server host.
func NewOllama(opts Options) translate.Caller {
	host := opts.BaseURL
	if host == "" {
		host = DefaultOllamaHost
	}
	return &ollamaCaller{
		host:    strings.TrimRight(host, "/"),
		client:  &http.Client{},
		retries: opts.Retries,
	}
}

// ollamaChatRequest is the request body for the Ollama chat API.
type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ollamaChatResponse is the non-streamed chat response.
type ollamaChatResponse struct {
	Message         *ollamaChatMessage `json:"message,omitempty"`
	Done            bool               `json:"done"`
	DoneReason      string             `json:"done_reason"`
	PromptEvalCount int                `json:"prompt_eval_count"`
	EvalCount       int                `json:"eval_count"`
}

func (o *ollamaCaller) Call(ctx context.Context, systemPrompt, body, model string) (string, *translate.Usage, error) {
	payload, err := json.Marshal(ollamaChatRequest{
		Model: model,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: body},
		},
	})
	if err != nil {
		return "", nil, callError(ProviderOllama, fmt.Errorf("marshal: %w", err))
	}

	var resp ollamaChatResponse
	err = withRetry(ctx, o.retries, func(ctx context.Context) error {
		var err error
		resp, err = o.doChat(ctx, payload)
		return err
	})
	if err != nil {
		return "", nil, callError(ProviderOllama, err)
	}

	// Older servers omit done_reason on a normal stop.
	c := choice{
		finish:  resp.DoneReason,
		natural: resp.DoneReason == "stop" || (resp.Done && resp.DoneReason == ""),
	}
	if resp.Message != nil {
		c.text = &resp.Message.Content
	}
	text, err := joinChoices(ProviderOllama, []choice{c})
	if err != nil {
		return "", nil, err
	}
	return text, usageOf(resp.PromptEvalCount, resp.EvalCount, 0), nil
}

func (o *ollamaCaller) doChat(ctx context.Context, payload []byte) (ollamaChatResponse, error) {
	var chat ollamaChatResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return chat, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return chat, retry.RetryableError(fmt.Errorf("chat: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("chat: status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
		if retryableStatus(resp.StatusCode) {
			return chat, retry.RetryableError(err)
		}
		return chat, err
	}

	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return chat, fmt.Errorf("decode: %w", err)
	}
	return chat, nil
}
