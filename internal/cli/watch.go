package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/scanner"
)

func newWatchCmd() *cobra.Command {
	var debounceMs int

	cmd := &cobra.Command{
		Use:   "watch [file|dir]",
		Short: "Re-translate documents whenever they change",
		Long: `Start a long-running watcher that re-translates a document each time it is
saved. Given a directory, every Markdown file below it is watched.

Changes are debounced so that rapid saves are translated once.

Press Ctrl-C to stop.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := DefaultInput
			if len(args) == 1 {
				target = args[0]
			}
			info, err := os.Stat(target)
			if err != nil {
				return err
			}

			a, err := openApp(flags, online)
			if err != nil {
				return err
			}
			defer a.Close()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()

			// A single file is watched through its directory: editors often
			// replace files on save, which drops a direct watch.
			root, single := target, ""
			if !info.IsDir() {
				root, single = filepath.Dir(target), filepath.Clean(target)
			}
			ignore := scanner.NewIgnoreMatcher(root)
			if single != "" {
				err = watcher.Add(root)
			} else {
				err = addWatchDirs(watcher, root, ignore)
			}
			if err != nil {
				return fmt.Errorf("add watch directories: %w", err)
			}

			debounce := time.Duration(debounceMs) * time.Millisecond
			a.log.Info("watching for changes; press Ctrl-C to stop", "path", target, "debounce", debounce)

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			pending := make(map[string]bool)
			timer := time.NewTimer(debounce)
			timer.Stop() // Don't fire immediately.

			for {
				select {
				case <-ctx.Done():
					a.log.Info("stopping watcher")
					return nil

				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
						continue
					}

					if single != "" {
						if filepath.Clean(event.Name) != single {
							continue
						}
					} else {
						rel, err := filepath.Rel(root, event.Name)
						if err != nil || rel == "." || shouldIgnoreEvent(rel, ignore) {
							continue
						}
						// Start watching new directories.
						if event.Has(fsnotify.Create) {
							if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
								if !scanner.HardIgnore(filepath.Base(event.Name)) {
									_ = watcher.Add(event.Name)
								}
								continue
							}
						}
						if !scanner.IsMarkdown(rel) || scanner.IsTranslated(rel) {
							continue
						}
					}

					pending[event.Name] = true
					timer.Reset(debounce)

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					a.log.Warn("watch error", "error", err)

				case <-timer.C:
					if len(pending) == 0 {
						continue
					}
					batch := make([]string, 0, len(pending))
					for path := range pending {
						batch = append(batch, path)
					}
					pending = make(map[string]bool)
					sort.Strings(batch)

					for _, path := range batch {
						out := scanner.OutputPath(path)
						if single != "" && outputPath != "" {
							out = outputPath
						}
						if _, err := a.translateFile(ctx, path, out, false); err != nil {
							a.log.Error("translation failed", "input", path, "error", err)
						}
					}
				}
			}
		},
	}

	cmd.Flags().IntVar(&debounceMs, "debounce", 500, "debounce interval in milliseconds")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file when watching a single file")

	return cmd
}

// addWatchDirs recursively adds directories to the watcher, skipping ignored ones.
func addWatchDirs(watcher *fsnotify.Watcher, root string, ignore *scanner.IgnoreMatcher) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if scanner.HardIgnore(d.Name()) {
			return filepath.SkipDir
		}
		rel, _ := filepath.Rel(root, path)
		if rel != "." && ignore.Match(filepath.ToSlash(rel)+"/") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// shouldIgnoreEvent checks whether a relative path should be ignored by the watcher.
func shouldIgnoreEvent(rel string, ignore *scanner.IgnoreMatcher) bool {
	parts := strings.Split(rel, string(filepath.Separator))
	for _, p := range parts {
		if scanner.HardIgnore(p) {
			return true
		}
	}
	return ignore.Match(filepath.ToSlash(rel))
}
