package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/adapter"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/config"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive first-time configuration",
		Long:  "Choose a provider and model and store the API key in the settings file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}

			cfg, err = runSetup(bufio.NewReader(os.Stdin), cmd.OutOrStdout(), cfg, readSecret)
			if err != nil {
				return err
			}

			if err := config.Save(flags.configPath, cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", flags.configPath)
			return nil
		},
	}
}

// runSetup asks for provider, model and key, starting from cfg.
func runSetup(r *bufio.Reader, w io.Writer, cfg config.Settings, secret func(*bufio.Reader) string) (config.Settings, error) {
	fmt.Fprintln(w, "Which provider do you want to translate with?")
	fmt.Fprintln(w, "  [1] OpenAI")
	fmt.Fprintln(w, "  [2] Claude (Anthropic)")
	fmt.Fprintln(w, "  [3] Gemini (Google)")
	fmt.Fprintln(w, "  [4] Ollama (local)")
	fmt.Fprint(w, "> ")

	var defaultModel string
	switch strings.TrimSpace(readLineBuf(r)) {
	case "2":
		cfg.Provider, defaultModel = adapter.ProviderClaude, "claude-3-5-sonnet-latest"
	case "3":
		cfg.Provider, defaultModel = adapter.ProviderGemini, "gemini-1.5-flash"
	case "4":
		cfg.Provider, defaultModel = adapter.ProviderOllama, "llama3"
	case "1", "":
		cfg.Provider, defaultModel = adapter.ProviderOpenAI, "gpt-4"
	default:
		fmt.Fprintln(w, "Unrecognized choice; defaulting to openai.")
		cfg.Provider, defaultModel = adapter.ProviderOpenAI, "gpt-4"
	}

	if cfg.GPTModel != "" {
		defaultModel = cfg.GPTModel
	}
	fmt.Fprintf(w, "Model (press Enter for %s): ", defaultModel)
	cfg.GPTModel = defaultModel
	if m := strings.TrimSpace(readLineBuf(r)); m != "" {
		cfg.GPTModel = m
	}

	switch cfg.Provider {
	case adapter.ProviderOpenAI:
		fmt.Fprint(w, "OpenAI API key (or press Enter to set OPENAI_API_KEY later): ")
		if key := secret(r); key != "" {
			cfg.OpenAIToken = key
		}
	case adapter.ProviderClaude:
		fmt.Fprint(w, "Anthropic API key (or press Enter to set ANTHROPIC_API_KEY later): ")
		if key := secret(r); key != "" {
			cfg.AnthropicToken = key
		}
	case adapter.ProviderGemini:
		fmt.Fprint(w, "Gemini API key (or press Enter to set GEMINI_API_KEY later): ")
		if key := secret(r); key != "" {
			cfg.GeminiToken = key
		}
	case adapter.ProviderOllama:
		fmt.Fprintf(w, "Ollama host (press Enter for %s): ", adapter.DefaultOllamaHost)
		if host := strings.TrimSpace(readLineBuf(r)); host != "" {
			cfg.OllamaHost = host
		}
	}
	fmt.Fprintln(w)

	return cfg, cfg.Validate()
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret(r *bufio.Reader) string {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	return strings.TrimSpace(readLineBuf(r))
}

// readLineBuf reads a trimmed line from a bufio.Reader.
func readLineBuf(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
