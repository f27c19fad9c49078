package export

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/history"
)

// TableExporter renders runs as aligned columns for the terminal.
type TableExporter struct{}

func (e *TableExporter) Export(runs []history.Run) (string, error) {
	if len(runs) == 0 {
		return "No runs recorded yet.\n", nil
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tINPUT\tOUTPUT\tMODEL\tCHUNKS\tCACHED\tTOKENS")
	for _, r := range runs {
		tokens := "-"
		if r.Usage != nil {
			tokens = fmt.Sprintf("%d", r.Usage.TotalTokens)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s/%s\t%d\t%d\t%s\n",
			formatWhen(r), r.InputPath, r.OutputPath, r.Provider, r.Model,
			r.Chunks, r.CacheHits, tokens)
	}
	if err := tw.Flush(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func formatWhen(r history.Run) string {
	if r.CreatedAt.IsZero() {
		return "-"
	}
	return r.CreatedAt.Local().Format("2006-01-02 15:04")
}
