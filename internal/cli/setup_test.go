package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/adapter"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/config"
)

func plainSecret(r *bufio.Reader) string { return strings.TrimSpace(readLineBuf(r)) }

func TestRunSetup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, cfg config.Settings)
	}{
		{
			name:  "openai defaults",
			input: "1\n\nsk-test\n",
			check: func(t *testing.T, cfg config.Settings) {
				if cfg.Provider != adapter.ProviderOpenAI || cfg.GPTModel != "gpt-4" || cfg.OpenAIToken != "sk-test" {
					t.Errorf("got %+v", cfg)
				}
			},
		},
		{
			name:  "claude with model",
			input: "2\nclaude-3-opus-latest\nsk-ant\n",
			check: func(t *testing.T, cfg config.Settings) {
				if cfg.Provider != adapter.ProviderClaude || cfg.GPTModel != "claude-3-opus-latest" || cfg.AnthropicToken != "sk-ant" {
					t.Errorf("got %+v", cfg)
				}
			},
		},
		{
			name:  "ollama host",
			input: "4\n\nhttp://gpu:11434\n",
			check: func(t *testing.T, cfg config.Settings) {
				if cfg.Provider != adapter.ProviderOllama || cfg.GPTModel != "llama3" || cfg.OllamaHost != "http://gpu:11434" {
					t.Errorf("got %+v", cfg)
				}
			},
		},
		{
			name:  "unknown choice",
			input: "9\n\n\n",
			check: func(t *testing.T, cfg config.Settings) {
				if cfg.Provider != adapter.ProviderOpenAI || cfg.OpenAIToken != "" {
					t.Errorf("got %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg, err := runSetup(bufio.NewReader(strings.NewReader(tt.input)), &out, config.Default(), plainSecret)
			if err != nil {
				t.Fatalf("runSetup: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestRunSetup_KeepsExistingModel(t *testing.T) {
	cfg := config.Default()
	cfg.GPTModel = "gpt-4o"

	var out bytes.Buffer
	got, err := runSetup(bufio.NewReader(strings.NewReader("1\n\n\n")), &out, cfg, plainSecret)
	if err != nil {
		t.Fatalf("runSetup: %v", err)
	}
	if got.GPTModel != "gpt-4o" {
		t.Errorf("model: got %q, want gpt-4o", got.GPTModel)
	}
	if !strings.Contains(out.String(), "press Enter for gpt-4o") {
		t.Errorf("prompt should offer the existing model: %q", out.String())
	}
}
