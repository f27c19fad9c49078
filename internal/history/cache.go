package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/translate"
)

// CacheKey identifies a translation request.
func CacheKey(provider, model, systemPrompt, body string) string {
	h := sha256.New()
	for _, part := range []string{provider, model, systemPrompt, body} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CachingCaller serves repeated requests from the translation cache.
// A hit reports no usage since no tokens were spent.
type CachingCaller struct {
	next     translate.Caller
	store    *Store
	provider string
	onError  func(error)

	hits atomic.Int64
}

// NewCachingCaller wraps next. onError, if non-nil, receives cache
// read/write failures; they never fail the call.
func NewCachingCaller(next translate.Caller, store *Store, provider string, onError func(error)) *CachingCaller {
	return &CachingCaller{next: next, store: store, provider: provider, onError: onError}
}

// Call implements translate.Caller.
func (c *CachingCaller) Call(ctx context.Context, systemPrompt, body, model string) (string, *translate.Usage, error) {
	key := CacheKey(c.provider, model, systemPrompt, body)

	text, ok, err := c.store.Get(key)
	if err != nil {
		c.report(err)
	} else if ok {
		c.hits.Add(1)
		return text, nil, nil
	}

	text, usage, err := c.next.Call(ctx, systemPrompt, body, model)
	if err != nil {
		return "", nil, err
	}
	if err := c.store.Put(key, c.provider, model, text); err != nil {
		c.report(err)
	}
	return text, usage, nil
}

// Hits returns the number of requests answered from the cache.
func (c *CachingCaller) Hits() int {
	return int(c.hits.Load())
}

// ResetHits zeroes the hit counter, for callers reusing c across documents.
func (c *CachingCaller) ResetHits() {
	c.hits.Store(0)
}

func (c *CachingCaller) report(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}
