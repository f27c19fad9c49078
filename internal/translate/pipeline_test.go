package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/tokenizer"
)

var words = tokenizer.CounterFunc(func(s string) int { return len(strings.Fields(s)) })

// scriptedCaller returns canned replies in order and records every body.
type scriptedCaller struct {
	replies []reply
	bodies  []string
}

type reply struct {
	text  string
	usage *Usage
	err   error
}

func (s *scriptedCaller) Call(_ context.Context, _, body, _ string) (string, *Usage, error) {
	s.bodies = append(s.bodies, body)
	if len(s.bodies) > len(s.replies) {
		return "", nil, errors.New("unexpected call")
	}
	r := s.replies[len(s.bodies)-1]
	return r.text, r.usage, r.err
}

func repeat(word string, n int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

// twoChunkDoc is chunked into exactly two requests under limit 40.
var twoChunkDoc = repeat("uno", 20) + "\n\n" + repeat("due", 20)

func TestTranslateDocument_SingleCall(t *testing.T) {
	usage := &Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}
	caller := &scriptedCaller{replies: []reply{{text: "Ciao\n\nMondo\n", usage: usage}}}
	p := NewPipeline(caller, words)

	res, err := p.TranslateDocument(context.Background(), "Hello\n\nWorld", "translate", "gpt-4")
	if err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}
	if len(caller.bodies) != 1 {
		t.Fatalf("expected exactly 1 call, got %d", len(caller.bodies))
	}
	if caller.bodies[0] != "Hello\n\nWorld" {
		t.Errorf("whole document should be sent unmodified, got %q", caller.bodies[0])
	}
	if res.Text != "Ciao\n\nMondo\n" {
		t.Errorf("text: got %q", res.Text)
	}
	if res.Usage != usage {
		t.Errorf("usage should be passed through unchanged")
	}
	if res.Chunked {
		t.Error("single call should not be marked chunked")
	}
}

func TestTranslateDocument_SingleCallNoUsage(t *testing.T) {
	caller := &scriptedCaller{replies: []reply{{text: "Ciao\n"}}}
	p := NewPipeline(caller, words)

	res, err := p.TranslateDocument(context.Background(), "Hello", "translate", "gpt-4")
	if err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}
	if res.Usage != nil {
		t.Errorf("expected nil usage, got %+v", res.Usage)
	}
}

func TestTranslateDocument_ChunkedAggregatesUsage(t *testing.T) {
	caller := &scriptedCaller{replies: []reply{
		{text: "primo\n", usage: &Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}},
		{text: "secondo\n", usage: &Usage{PromptTokens: 8, CompletionTokens: 4, TotalTokens: 12}},
	}}
	p := NewPipeline(caller, words, WithRequestLimit(40))

	res, err := p.TranslateDocument(context.Background(), twoChunkDoc, "translate", "gpt-4")
	if err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}
	if len(caller.bodies) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(caller.bodies))
	}
	want := Usage{PromptTokens: 18, CompletionTokens: 9, TotalTokens: 27}
	if res.Usage == nil || *res.Usage != want {
		t.Errorf("usage: got %+v, want %+v", res.Usage, want)
	}
	if res.Text != "primo\nsecondo\n" {
		t.Errorf("text: got %q", res.Text)
	}
	if !res.Chunked || res.Chunks != 2 {
		t.Errorf("expected chunked result with 2 chunks, got %+v", res)
	}
}

func TestTranslateDocument_ChunkedWithoutUsage(t *testing.T) {
	caller := &scriptedCaller{replies: []reply{{text: "a\n"}, {text: "b\n"}}}
	p := NewPipeline(caller, words, WithRequestLimit(40))

	res, err := p.TranslateDocument(context.Background(), twoChunkDoc, "translate", "gpt-4")
	if err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}
	if res.Usage == nil {
		t.Fatal("chunked path should always report usage")
	}
	if *res.Usage != (Usage{}) {
		t.Errorf("expected zero usage, got %+v", *res.Usage)
	}
}

func TestTranslateDocument_PreservesOrderAndSeparates(t *testing.T) {
	paras := []string{repeat("a", 15), repeat("b", 15), repeat("c", 15)}
	doc := strings.Join(paras, "\n\n")

	caller := CallerFunc(func(_ context.Context, _, body, _ string) (string, *Usage, error) {
		// No trailing newline: the pipeline must add the separator.
		return strings.ToUpper(strings.TrimSpace(body)), nil, nil
	})
	p := NewPipeline(caller, words, WithRequestLimit(40))

	res, err := p.TranslateDocument(context.Background(), doc, "translate", "gpt-4")
	if err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}
	want := strings.ToUpper(paras[0]) + "\n" + strings.ToUpper(paras[1]) + "\n" + strings.ToUpper(paras[2]) + "\n"
	if res.Text != want {
		t.Errorf("got %q, want %q", res.Text, want)
	}
}

func TestTranslateDocument_AbortsOnCallError(t *testing.T) {
	paras := []string{repeat("a", 15), repeat("b", 15), repeat("c", 15)}
	callErr := &CallError{Provider: "openai", Reason: "length", Err: ErrUnacceptableFinish}
	caller := &scriptedCaller{replies: []reply{
		{text: "ok\n"},
		{err: callErr},
		{text: "never\n"},
	}}
	p := NewPipeline(caller, words, WithRequestLimit(40))

	res, err := p.TranslateDocument(context.Background(), strings.Join(paras, "\n\n"), "translate", "gpt-4")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(caller.bodies) != 2 {
		t.Errorf("expected to stop after the failing call, got %d calls", len(caller.bodies))
	}
	var ce *CallError
	if !errors.As(err, &ce) || ce != callErr {
		t.Errorf("expected the CallError to propagate, got %v", err)
	}
	if !errors.Is(err, ErrUnacceptableFinish) {
		t.Errorf("expected ErrUnacceptableFinish in chain: %v", err)
	}
	if res.Text != "" || res.Usage != nil {
		t.Errorf("expected no partial result, got %+v", res)
	}
}

func TestTranslateDocument_SingleCallError(t *testing.T) {
	caller := &scriptedCaller{replies: []reply{{err: &CallError{Provider: "openai", Err: ErrEmptyResponse}}}}
	p := NewPipeline(caller, words)

	_, err := p.TranslateDocument(context.Background(), "Hello", "translate", "gpt-4")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestTranslateDocument_ChunkHook(t *testing.T) {
	caller := &scriptedCaller{replies: []reply{{text: "a\n"}, {text: "b\n"}}}
	var events []ChunkEvent
	p := NewPipeline(caller, words, WithRequestLimit(40), WithChunkHook(func(e ChunkEvent) {
		events = append(events, e)
	}))

	if _, err := p.TranslateDocument(context.Background(), twoChunkDoc, "translate", "gpt-4"); err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for i, e := range events {
		if e.Index != i {
			t.Errorf("event %d has index %d", i, e.Index)
		}
		if e.Tokens != 20+tokenizer.MessageOverhead {
			t.Errorf("event %d tokens: got %d", i, e.Tokens)
		}
	}
}

func TestNeedsChunking_Boundary(t *testing.T) {
	p := NewPipeline(nil, words, WithRequestLimit(20))

	// 1+4 for the prompt, n+4 for the document.
	if p.NeedsChunking("sys", repeat("w", 11)) {
		t.Error("20 tokens should fit a 20-token limit")
	}
	if !p.NeedsChunking("sys", repeat("w", 12)) {
		t.Error("21 tokens should not fit a 20-token limit")
	}
}

func TestWithRequestLimit_IgnoresNonPositive(t *testing.T) {
	p := NewPipeline(nil, words, WithRequestLimit(0))
	if p.RequestLimit() != DefaultRequestLimit {
		t.Errorf("got %d, want %d", p.RequestLimit(), DefaultRequestLimit)
	}
}
