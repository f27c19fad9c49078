package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func rels(res ScanResult) []string {
	var out []string
	for _, d := range res.Documents {
		out = append(out, d.Rel)
	}
	return out
}

func TestScan_FindsMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "# Hi\n")
	writeFile(t, filepath.Join(dir, "docs", "guide.md"), "# Guide\n")
	writeFile(t, filepath.Join(dir, "docs", "api.markdown"), "# API\n")
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")

	result := Scan(ScanOptions{Root: dir})
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	got := rels(result)
	want := []string{"README.md", "docs/api.markdown", "docs/guide.md"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("documents[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
	if result.Documents[0].Size != int64(len("# Hi\n")) {
		t.Errorf("size: got %d", result.Documents[0].Size)
	}
}

func TestScan_SkipsHardIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "x")
	writeFile(t, filepath.Join(dir, "node_modules", "pkg", "README.md"), "x")

	for _, rel := range rels(Scan(ScanOptions{Root: dir})) {
		if rel != "README.md" {
			t.Errorf("should not have scanned %s", rel)
		}
	}
}

func TestScan_SkipsTranslated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "x")
	writeFile(t, filepath.Join(dir, "README.translated.md"), "x")

	if got := rels(Scan(ScanOptions{Root: dir})); len(got) != 1 {
		t.Errorf("expected only README.md, got %v", got)
	}
	if got := rels(Scan(ScanOptions{Root: dir, IncludeTranslated: true})); len(got) != 2 {
		t.Errorf("expected both files, got %v", got)
	}
}

func TestScan_HonoursGitignoreAndExcludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".gitignore"), "drafts/\n")
	writeFile(t, filepath.Join(dir, "README.md"), "x")
	writeFile(t, filepath.Join(dir, "CHANGELOG.md"), "x")
	writeFile(t, filepath.Join(dir, "drafts", "idea.md"), "x")

	got := rels(Scan(ScanOptions{Root: dir, ExcludeGlobs: []string{"CHANGELOG.md"}}))
	if len(got) != 1 || got[0] != "README.md" {
		t.Errorf("got %v, want [README.md]", got)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"input.md", "input.translated.md"},
		{"docs/guide.markdown", "docs/guide.translated.markdown"},
		{"notes", "notes.translated"},
		{"./input.md", "./input.translated.md"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.in); got != tt.want {
			t.Errorf("OutputPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
