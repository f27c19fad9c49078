package translate

import (
	"fmt"
	"strings"
)

// DefaultSystemPrompt is used when no override is configured.
const DefaultSystemPrompt = "You shall translate the following markdown to Italian, preserving the existing formatting and avoiding any other output."

// BuildSystemPrompt appends a "do not translate" clause listing ignore to
// base. An empty base falls back to DefaultSystemPrompt.
func BuildSystemPrompt(base string, ignore []string) string {
	if base == "" {
		base = DefaultSystemPrompt
	}
	list := QuoteTerms(ignore)
	if list == "" {
		return base
	}
	return fmt.Sprintf("%s Do not translate %s.", base, list)
}

// QuoteTerms renders terms as `"a", "b"`, skipping blank entries.
func QuoteTerms(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		quoted = append(quoted, fmt.Sprintf("%q", t))
	}
	return strings.Join(quoted, ", ")
}
