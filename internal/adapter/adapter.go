// Package adapter implements translate.Caller for the supported chat
// providers.
package adapter

import (
	"fmt"
	"strings"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/translate"
)

// Provider name constants.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Providers lists the valid provider names.
var Providers = []string{ProviderOpenAI, ProviderClaude, ProviderGemini, ProviderOllama}

// defaultMaxTokens caps the response of providers that require a limit.
const defaultMaxTokens = 4096

// Options configures a provider Caller.
type Options struct {
	// APIKey is the provider key. Empty means the provider's usual
	// environment variable.
	APIKey string
	// BaseURL overrides the API endpoint (OpenAI-compatible servers, a
	// remote Ollama host, tests).
	BaseURL string
	// Retries is the number of extra attempts after a transport failure.
	Retries int
}

// New constructs the Caller for the named provider.
func New(provider string, opts Options) (translate.Caller, error) {
	switch provider {
	case ProviderOpenAI, "":
		return NewOpenAI(opts), nil
	case ProviderClaude:
		return NewClaude(opts), nil
	case ProviderGemini:
		return NewGemini(opts), nil
	case ProviderOllama:
		return NewOllama(opts), nil
	default:
		return nil, fmt.Errorf("adapter: unknown provider %q; valid providers: %s",
			provider, strings.Join(Providers, ", "))
	}
}

// choice is one completion alternative in provider-neutral form.
type choice struct {
	text    *string
	finish  string
	natural bool
}

// joinChoices applies the acceptance rules shared by every provider: each
// choice must have stopped naturally and carry text. Accepted texts are
// concatenated, each followed by a newline.
func joinChoices(provider string, choices []choice) (string, error) {
	if len(choices) == 0 {
		return "", &translate.CallError{Provider: provider, Err: translate.ErrEmptyResponse}
	}

	var sb strings.Builder
	for _, c := range choices {
		if !c.natural {
			return "", &translate.CallError{Provider: provider, Reason: c.finish, Err: translate.ErrUnacceptableFinish}
		}
		if c.text == nil || *c.text == "" {
			return "", &translate.CallError{Provider: provider, Reason: c.finish, Err: translate.ErrEmptyResponse}
		}
		sb.WriteString(*c.text)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// usageOf returns nil when the provider reported nothing.
func usageOf(prompt, completion, total int) *translate.Usage {
	if prompt == 0 && completion == 0 && total == 0 {
		return nil
	}
	if total == 0 {
		total = prompt + completion
	}
	return &translate.Usage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: total}
}

func callError(provider string, err error) error {
	return &translate.CallError{Provider: provider, Err: err}
}
