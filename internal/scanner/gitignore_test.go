package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHardIgnore(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"node_modules", true},
		{"vendor", true},
		{".git", true},
		{"dist", true},
		{"__pycache__", true},
		{"docs", false},
		{"guide", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HardIgnore(tt.name)
			if got != tt.want {
				t.Errorf("HardIgnore(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsMarkdown(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"README.md", true},
		{"notes.markdown", true},
		{"UPPER.MD", true},
		{"page.mkd", true},
		{"main.go", false},
		{"readme.txt", false},
		{"md", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMarkdown(tt.name); got != tt.want {
				t.Errorf("IsMarkdown(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsTranslated(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"README.translated.md", true},
		{"docs/guide.translated.markdown", true},
		{"input.translated", true},
		{"README.md", false},
		{"translated.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTranslated(tt.name); got != tt.want {
				t.Errorf("IsTranslated(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIgnoreMatcher_NoGitignore(t *testing.T) {
	m := NewIgnoreMatcher(filepath.Join(t.TempDir(), "missing"))
	if m.Match("anything.md") {
		t.Error("expected no-op matcher to accept all files")
	}
}

func TestIgnoreMatcher_WithGitignore(t *testing.T) {
	dir := t.TempDir()
	gitignoreContent := "drafts/\nCHANGELOG.md\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignoreContent), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewIgnoreMatcher(dir)
	if !m.Match("CHANGELOG.md") {
		t.Error("expected CHANGELOG.md to be ignored")
	}
	if !m.Match("drafts/idea.md") {
		t.Error("expected drafts/ dir to be ignored")
	}
	if m.Match("README.md") {
		t.Error("expected README.md to NOT be ignored")
	}
}

func TestIgnoreLines(t *testing.T) {
	m := NewIgnoreLines("*.draft.md")
	if !m.Match("post.draft.md") {
		t.Error("expected pattern to match")
	}
	if m.Match("post.md") {
		t.Error("expected post.md to pass")
	}
	if NewIgnoreLines().Match("anything") {
		t.Error("empty matcher should accept everything")
	}
}
