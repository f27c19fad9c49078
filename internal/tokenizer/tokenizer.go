// Package tokenizer counts tokens the way the chat endpoint will see them.
package tokenizer

import (
	"errors"
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Encoding is the BPE encoding used by the GPT-3.5/GPT-4 chat models.
const Encoding = "cl100k_base"

// MessageOverhead is the per-message framing cost the encoder does not see.
const MessageOverhead = 4

// ErrCounting is returned when the encoding cannot be loaded.
var ErrCounting = errors.New("tokenizer: cannot count tokens")

// Counter maps a string to its token count.
type Counter interface {
	Count(s string) int
}

// Tokenizer wraps tiktoken for exact cl100k_base counting.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New creates a Tokenizer for the cl100k_base encoding.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: get encoding %s: %v", ErrCounting, Encoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// Count returns the number of tokens in s. Special tokens are encoded as
// such instead of being rejected.
func (t *Tokenizer) Count(s string) int {
	if s == "" {
		return 0
	}
	return len(t.enc.Encode(s, []string{"all"}, nil))
}

// MessageTokens returns the cost of sending s as one chat message.
func MessageTokens(c Counter, s string) int {
	return c.Count(s) + MessageOverhead
}

// CounterFunc adapts a plain function to Counter.
type CounterFunc func(s string) int

// Count calls f(s).
func (f CounterFunc) Count(s string) int { return f(s) }
