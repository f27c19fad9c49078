// Package chunker splits Markdown into request-sized runs of whole
// paragraphs.
package chunker

import (
	"iter"
	"strings"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/tokenizer"
)

// ParagraphDelimiter separates paragraphs: one blank line.
const ParagraphDelimiter = "\n\n"

// Budget returns the chunk sizing threshold for a hard request limit.
// Half of the limit is left for the response.
func Budget(requestLimit int) int {
	return (requestLimit + 1) / 2
}

// Chunker is a pull-based, single-pass iterator over chunks. Each chunk is
// one or more consecutive paragraphs, each followed by the delimiter.
type Chunker struct {
	paragraphs   []string
	next         int
	acc          strings.Builder
	counter      tokenizer.Counter
	promptTokens int
	budget       int
}

// New returns a Chunker over text. promptTokens is the system prompt cost
// (overhead included) that every request carries; budget is the threshold
// a chunk request must stay under.
func New(text string, counter tokenizer.Counter, promptTokens, budget int) *Chunker {
	return &Chunker{
		paragraphs:   strings.Split(text, ParagraphDelimiter),
		counter:      counter,
		promptTokens: promptTokens,
		budget:       budget,
	}
}

// Next returns the next chunk, or false once the paragraphs are exhausted.
// A paragraph that alone exceeds the budget is returned as its own chunk.
func (c *Chunker) Next() (string, bool) {
	for c.next < len(c.paragraphs) {
		peeked := c.paragraphs[c.next]
		if c.acc.Len() > 0 {
			cacheTokens := tokenizer.MessageTokens(c.counter, c.acc.String())
			nextTokens := tokenizer.MessageTokens(c.counter, peeked)
			if c.promptTokens+cacheTokens+nextTokens >= c.budget {
				return c.flush(), true
			}
		}
		c.acc.WriteString(peeked)
		c.acc.WriteString(ParagraphDelimiter)
		c.paragraphs[c.next] = ""
		c.next++
	}

	if c.acc.Len() > 0 {
		return c.flush(), true
	}
	return "", false
}

// All returns the remaining chunks as a range-over-func sequence.
func (c *Chunker) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			chunk, ok := c.Next()
			if !ok || !yield(chunk) {
				return
			}
		}
	}
}

func (c *Chunker) flush() string {
	chunk := c.acc.String()
	c.acc.Reset()
	return chunk
}

// Paragraphs splits a chunk back into the paragraphs it was built from.
func Paragraphs(chunk string) []string {
	return strings.Split(strings.TrimSuffix(chunk, ParagraphDelimiter), ParagraphDelimiter)
}
