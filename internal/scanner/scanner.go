// Package scanner finds Markdown documents to translate.
package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TranslatedSuffix marks output files: README.md -> README.translated.md.
const TranslatedSuffix = ".translated"

// Document is a Markdown file found by Scan.
type Document struct {
	Path    string // as passed to the filesystem
	Rel     string // relative to the scan root, slash separated
	Size    int64
	ModTime time.Time
}

// ScanResult holds the output of a directory scan.
type ScanResult struct {
	Documents []Document
	Errors    []error
}

// ScanOptions controls scanner behaviour.
type ScanOptions struct {
	Root         string
	ExcludeGlobs []string
	// IncludeTranslated keeps *.translated.md files in the result.
	IncludeTranslated bool
}

// Scan walks Root and collects Markdown documents, sorted by relative path.
// It never reads file contents.
func Scan(opts ScanOptions) ScanResult {
	root := opts.Root
	ignore := NewIgnoreMatcher(root)
	exclude := NewIgnoreLines(opts.ExcludeGlobs...)

	var result ScanResult
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, err)
			return nil // Skip unreadable entries.
		}

		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if HardIgnore(d.Name()) || ignore.Match(rel+"/") || exclude.Match(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !IsMarkdown(d.Name()) {
			return nil
		}
		if !opts.IncludeTranslated && IsTranslated(d.Name()) {
			return nil
		}
		if ignore.Match(rel) || exclude.Match(rel) {
			return nil
		}

		doc := Document{Path: path, Rel: rel}
		if info, err := d.Info(); err == nil {
			doc.Size = info.Size()
			doc.ModTime = info.ModTime()
		}
		result.Documents = append(result.Documents, doc)
		return nil
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("walk %s: %w", root, err))
	}

	sort.Slice(result.Documents, func(i, j int) bool {
		return result.Documents[i].Rel < result.Documents[j].Rel
	})
	return result
}

// OutputPath derives the translation path for input:
// docs/guide.md -> docs/guide.translated.md, notes -> notes.translated.
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	return base + TranslatedSuffix + ext
}
