// Package mdcheck compares the Markdown structure of a document and its
// translation. A translation should change prose only.
package mdcheck

import (
	"fmt"
	"maps"
	"slices"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Structure counts the structural elements of a Markdown document.
type Structure struct {
	Headings   map[int]int // heading level -> count
	CodeBlocks int
	CodeLangs  []string // fenced block info strings, in order
	Lists      int
	ListItems  int
	Links      int
	Images     int
	Quotes     int
	Rules      int
}

// Analyze parses source and counts its structure.
func Analyze(source []byte) Structure {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	s := Structure{Headings: make(map[int]int)}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			s.Headings[node.Level]++
		case *ast.FencedCodeBlock:
			s.CodeBlocks++
			s.CodeLangs = append(s.CodeLangs, string(node.Language(source)))
		case *ast.CodeBlock:
			s.CodeBlocks++
		case *ast.List:
			s.Lists++
		case *ast.ListItem:
			s.ListItems++
		case *ast.Link, *ast.AutoLink:
			s.Links++
		case *ast.Image:
			s.Images++
		case *ast.Blockquote:
			s.Quotes++
		case *ast.ThematicBreak:
			s.Rules++
		}
		return ast.WalkContinue, nil
	})
	return s
}

// Compare returns one message per structural difference between source
// and translated. An empty result means the structure was preserved.
func Compare(source, translated []byte) []string {
	want, got := Analyze(source), Analyze(translated)

	var diffs []string
	levels := slices.Sorted(maps.Keys(mergeKeys(want.Headings, got.Headings)))
	for _, level := range levels {
		if w, g := want.Headings[level], got.Headings[level]; w != g {
			diffs = append(diffs, fmt.Sprintf("h%d headings: source %d, translation %d", level, w, g))
		}
	}

	counts := []struct {
		name string
		w, g int
	}{
		{"code blocks", want.CodeBlocks, got.CodeBlocks},
		{"lists", want.Lists, got.Lists},
		{"list items", want.ListItems, got.ListItems},
		{"links", want.Links, got.Links},
		{"images", want.Images, got.Images},
		{"blockquotes", want.Quotes, got.Quotes},
		{"thematic breaks", want.Rules, got.Rules},
	}
	for _, c := range counts {
		if c.w != c.g {
			diffs = append(diffs, fmt.Sprintf("%s: source %d, translation %d", c.name, c.w, c.g))
		}
	}

	if want.CodeBlocks == got.CodeBlocks && !slices.Equal(want.CodeLangs, got.CodeLangs) {
		diffs = append(diffs, fmt.Sprintf("code block languages: source %q, translation %q", want.CodeLangs, got.CodeLangs))
	}
	return diffs
}

func mergeKeys(a, b map[int]int) map[int]struct{} {
	out := make(map[int]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}
