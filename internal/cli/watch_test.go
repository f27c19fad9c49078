package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/scanner"
)

func TestShouldIgnoreEvent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("drafts/\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ignore := scanner.NewIgnoreMatcher(dir)

	tests := []struct {
		rel  string
		want bool
	}{
		{"README.md", false},
		{filepath.Join("docs", "guide.md"), false},
		{filepath.Join("node_modules", "pkg", "README.md"), true},
		{filepath.Join(".git", "HEAD"), true},
		{filepath.Join("vendor", "lib", "README.md"), true},
		{filepath.Join("drafts", "idea.md"), true},
	}

	for _, tt := range tests {
		got := shouldIgnoreEvent(tt.rel, ignore)
		if got != tt.want {
			t.Errorf("shouldIgnoreEvent(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestAddWatchDirs_SkipsIgnored(t *testing.T) {
	dir := t.TempDir()

	// Create a normal dir and hard-ignored dirs.
	os.MkdirAll(filepath.Join(dir, "docs"), 0o755)
	os.MkdirAll(filepath.Join(dir, "node_modules", "pkg"), 0o755)
	os.MkdirAll(filepath.Join(dir, ".git", "objects"), 0o755)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer watcher.Close()

	ignore := scanner.NewIgnoreMatcher(dir)
	if err := addWatchDirs(watcher, dir, ignore); err != nil {
		t.Fatalf("addWatchDirs: %v", err)
	}

	watched := make(map[string]bool)
	for _, p := range watcher.WatchList() {
		rel, _ := filepath.Rel(dir, p)
		watched[rel] = true
	}

	if !watched["."] {
		t.Error("root directory should be watched")
	}
	if !watched["docs"] {
		t.Error("docs/ should be watched")
	}
	if watched["node_modules"] || watched[filepath.Join("node_modules", "pkg")] {
		t.Error("node_modules should not be watched")
	}
	if watched[".git"] || watched[filepath.Join(".git", "objects")] {
		t.Error(".git should not be watched")
	}
}
