package export

import (
	"fmt"
	"strings"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/history"
)

// MarkdownExporter renders runs as a Markdown report.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(runs []history.Run) (string, error) {
	var b strings.Builder
	b.WriteString("# Translation History\n\n")

	if len(runs) == 0 {
		b.WriteString("No runs recorded yet.\n")
		return b.String(), nil
	}

	b.WriteString("| When | Input | Output | Provider | Model | Chunks | Cached | Tokens |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, r := range runs {
		tokens := "n/a"
		if r.Usage != nil {
			tokens = fmt.Sprintf("%d", r.Usage.TotalTokens)
		}
		fmt.Fprintf(&b, "| %s | `%s` | `%s` | %s | %s | %d | %d | %s |\n",
			formatWhen(r), r.InputPath, r.OutputPath, r.Provider, r.Model,
			r.Chunks, r.CacheHits, tokens)
	}

	p, c, t := totals(runs)
	fmt.Fprintf(&b, "\n## Usage\n\n- Prompt: %d\n- Response: %d\n- Total: %d\n", p, c, t)
	return b.String(), nil
}
