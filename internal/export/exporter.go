// Package export renders run history in formats other tools can read.
package export

import (
	"sort"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/history"
)

// Exporter renders runs to a string in a specific format.
type Exporter interface {
	Export(runs []history.Run) (string, error)
}

// registry maps format names to Exporter implementations.
var registry = map[string]Exporter{
	"table":    &TableExporter{},
	"markdown": &MarkdownExporter{},
	"json":     &JSONExporter{},
}

// Get returns the Exporter registered under name, and whether it was found.
func Get(name string) (Exporter, bool) {
	e, ok := registry[name]
	return e, ok
}

// ValidFormats returns the supported format names, sorted.
func ValidFormats() []string {
	formats := make([]string, 0, len(registry))
	for k := range registry {
		formats = append(formats, k)
	}
	sort.Strings(formats)
	return formats
}

// totals sums the usage of runs that reported any.
func totals(runs []history.Run) (prompt, completion, total int) {
	for _, r := range runs {
		if r.Usage == nil {
			continue
		}
		prompt += r.Usage.PromptTokens
		completion += r.Usage.CompletionTokens
		total += r.Usage.TotalTokens
	}
	return prompt, completion, total
}
