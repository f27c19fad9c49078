// Package cli defines the Cobra command tree for the gpt-md-translator CLI.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/config"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/scanner"
)

var (
	// version, commit, date are set via -ldflags at build time.
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// DefaultInput is translated when no --input is given.
const DefaultInput = "./input.md"

var (
	inputPath  string
	outputPath string
)

// rootCmd translates a single document when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gpt-md-translator",
	Short: "Translate Markdown documents with a chat model",
	Long: `gpt-md-translator translates a Markdown document through a chat model,
preserving its formatting.

Documents that do not fit in one request are split on blank-line paragraph
breaks and translated chunk by chunk, in order.

Settings are read from Settings.toml (gptmodel, openaitoken, sysprompt,
ignorelist, ...) and may be overridden by GPTMDT_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(os.Stderr, "=== Welcome to GPT MD Translator! ===")

		a, err := openApp(flags, online)
		if err != nil {
			return err
		}
		defer a.Close()

		out := outputPath
		if out == "" {
			out = scanner.OutputPath(inputPath)
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		if _, err := a.translateFile(ctx, inputPath, out, true); err != nil {
			return err
		}
		a.log.Info("operation succeeded! Have a nice day.")
		return nil
	},
}

// Execute runs the root command.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", config.DefaultPath, "settings file")
	pf.StringVar(&flags.provider, "provider", "", "model provider: openai, claude, gemini or ollama (overrides settings)")
	pf.StringVar(&flags.model, "model", "", "model name (overrides gptmodel)")
	pf.BoolVar(&flags.noCache, "no-cache", false, "do not read or write the translation cache")
	pf.BoolVar(&flags.noHistory, "no-history", false, "do not record the run in the history database")
	pf.BoolVar(&flags.check, "check", false, "compare the Markdown structure of input and output")

	rootCmd.Flags().StringVarP(&inputPath, "input", "i", DefaultInput, "Markdown file to translate")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default <input>.translated<ext>)")

	rootCmd.AddCommand(
		newPlanCmd(),
		newBatchCmd(),
		newWatchCmd(),
		newHistoryCmd(),
		newServeMCPCmd(),
		newSetupCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gpt-md-translator %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// signalContext cancels on Ctrl-C or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
