package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/chunker"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/tokenizer"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/translate"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [file]",
		Short: "Show how a document would be split, without calling the model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := DefaultInput
			if len(args) == 1 {
				in = args[0]
			}

			a, err := openApp(flags, offline)
			if err != nil {
				return err
			}
			defer a.Close()

			src, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return printPlan(cmd.OutOrStdout(), a.pipeline(), a.counter, a.systemPrompt, string(src))
		},
	}
}

// printPlan writes the request cost of document and, when it needs
// chunking, one line per chunk.
func printPlan(w io.Writer, p *translate.Pipeline, counter tokenizer.Counter, sys, document string) error {
	sysTokens := tokenizer.MessageTokens(counter, sys)
	docTokens := tokenizer.MessageTokens(counter, document)
	fmt.Fprintf(w, "Prompt tokens: %d + %d = %d (limit %d)\n",
		sysTokens, docTokens, sysTokens+docTokens, p.RequestLimit())

	if !p.NeedsChunking(sys, document) {
		fmt.Fprintln(w, "Fits in a single request.")
		return nil
	}

	fmt.Fprintf(w, "Chunk budget: %d tokens\n", chunker.Budget(p.RequestLimit()))
	n := 0
	for chunk := range p.Chunks(sys, document).All() {
		n++
		tokens := tokenizer.MessageTokens(counter, chunk)
		marker := ""
		if sysTokens+tokens > p.RequestLimit() {
			marker = "  (exceeds request limit)"
		}
		fmt.Fprintf(w, "  #%-3d %5d tokens  %3d paragraphs  %s%s\n",
			n, tokens, len(chunker.Paragraphs(chunk)), preview(chunk, 40), marker)
	}
	fmt.Fprintf(w, "%d chunks\n", n)
	return nil
}

// preview returns the first non-blank line of s, truncated to n runes.
func preview(s string, n int) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r := []rune(line)
		if len(r) > n {
			return string(r[:n]) + "..."
		}
		return line
	}
	return ""
}
