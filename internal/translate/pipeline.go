package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/chunker"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/tokenizer"
)

// Result is the outcome of translating one document.
type Result struct {
	Text string
	// Usage is nil when a single call reported none. On the chunked path it
	// is always set.
	Usage   *Usage
	Chunked bool
	Chunks  int
}

// ChunkEvent describes a chunk about to be sent.
type ChunkEvent struct {
	Index  int // 0-based
	Tokens int // chunk tokens, overhead included
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRequestLimit overrides DefaultRequestLimit.
func WithRequestLimit(limit int) Option {
	return func(p *Pipeline) {
		if limit > 0 {
			p.limit = limit
		}
	}
}

// WithChunkHook registers fn to be called before each chunk is translated.
func WithChunkHook(fn func(ChunkEvent)) Option {
	return func(p *Pipeline) { p.onChunk = fn }
}

// Pipeline translates documents through a Caller. Chunks are sent one at a
// time, in document order.
type Pipeline struct {
	caller  Caller
	counter tokenizer.Counter
	limit   int
	onChunk func(ChunkEvent)
}

// NewPipeline creates a Pipeline.
func NewPipeline(caller Caller, counter tokenizer.Counter, opts ...Option) *Pipeline {
	p := &Pipeline{
		caller:  caller,
		counter: counter,
		limit:   DefaultRequestLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RequestLimit returns the hard per-request token ceiling.
func (p *Pipeline) RequestLimit() int { return p.limit }

// RequestTokens returns the prompt cost of sending document in one request.
func (p *Pipeline) RequestTokens(systemPrompt, document string) int {
	return tokenizer.MessageTokens(p.counter, systemPrompt) + tokenizer.MessageTokens(p.counter, document)
}

// NeedsChunking reports whether document is too big for one request.
func (p *Pipeline) NeedsChunking(systemPrompt, document string) bool {
	return p.RequestTokens(systemPrompt, document) > p.limit
}

// Chunks returns the chunk iterator used for document.
func (p *Pipeline) Chunks(systemPrompt, document string) *chunker.Chunker {
	return chunker.New(document, p.counter,
		tokenizer.MessageTokens(p.counter, systemPrompt), chunker.Budget(p.limit))
}

// TranslateDocument translates document with model. The first failing call
// aborts the run and no partial text is returned.
func (p *Pipeline) TranslateDocument(ctx context.Context, document, systemPrompt, model string) (Result, error) {
	if !p.NeedsChunking(systemPrompt, document) {
		text, usage, err := p.caller.Call(ctx, systemPrompt, document, model)
		if err != nil {
			return Result{}, fmt.Errorf("translate: %w", err)
		}
		return Result{Text: text, Usage: usage, Chunks: 1}, nil
	}

	var out strings.Builder
	total := &Usage{}
	n := 0
	for chunk := range p.Chunks(systemPrompt, document).All() {
		if p.onChunk != nil {
			p.onChunk(ChunkEvent{Index: n, Tokens: tokenizer.MessageTokens(p.counter, chunk)})
		}

		text, usage, err := p.caller.Call(ctx, systemPrompt, chunk, model)
		if err != nil {
			return Result{}, fmt.Errorf("translate: chunk %d: %w", n, err)
		}
		out.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			out.WriteByte('\n')
		}
		if usage != nil {
			total.Add(*usage)
		}
		n++
	}

	return Result{Text: out.String(), Usage: total, Chunked: true, Chunks: n}, nil
}
