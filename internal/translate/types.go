// Package translate drives document translation through a chat model,
// one request or many, and merges the results.
package translate

import (
	"context"
	"errors"
	"fmt"
)

// DefaultRequestLimit is the combined prompt+response token ceiling of a
// single chat request.
const DefaultRequestLimit = 4096

// Usage is the token accounting reported by one or more calls.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates o into u field by field.
func (u *Usage) Add(o Usage) {
	u.PromptTokens += o.PromptTokens
	u.CompletionTokens += o.CompletionTokens
	u.TotalTokens += o.TotalTokens
}

// Caller performs one chat exchange: system prompt plus body in, translated
// text and optional usage out.
type Caller interface {
	Call(ctx context.Context, systemPrompt, body, model string) (string, *Usage, error)
}

// CallerFunc adapts a function to Caller.
type CallerFunc func(ctx context.Context, systemPrompt, body, model string) (string, *Usage, error)

// Call calls f.
func (f CallerFunc) Call(ctx context.Context, systemPrompt, body, model string) (string, *Usage, error) {
	return f(ctx, systemPrompt, body, model)
}

var (
	// ErrUnacceptableFinish means the model stopped for any reason other
	// than a natural end of output (length cap, content filter, ...).
	ErrUnacceptableFinish = errors.New("received an unacceptable finish reason")

	// ErrEmptyResponse means a choice carried no text.
	ErrEmptyResponse = errors.New("received an empty response")
)

// CallError is a failed chat exchange.
type CallError struct {
	Provider string
	Reason   string // provider finish indicator, when known
	Err      error
}

func (e *CallError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Provider, e.Err, e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }
