package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/scanner"
)

func newBatchCmd() *cobra.Command {
	var (
		excludes []string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Translate every Markdown file under a directory",
		Long: `Translate every Markdown file under dir, honouring .gitignore.

Each file is written next to its source as <name>.translated<ext>. Files whose
translation is newer than the source are skipped unless --force is given.
A failing file does not stop the batch; failures are reported at the end.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			if info, err := os.Stat(root); err != nil {
				return err
			} else if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", root)
			}

			a, err := openApp(flags, online)
			if err != nil {
				return err
			}
			defer a.Close()

			result := scanner.Scan(scanner.ScanOptions{Root: root, ExcludeGlobs: excludes})
			for _, err := range result.Errors {
				a.log.Warn("scan", "error", err)
			}

			docs := result.Documents
			if !force {
				docs = staleDocuments(docs)
			}
			if len(docs) == 0 {
				a.log.Info("nothing to translate", "dir", root, "found", len(result.Documents))
				return nil
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			bar := progressbar.NewOptions(len(docs),
				progressbar.OptionSetDescription("  Translating files"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			var failed []error
			for _, doc := range docs {
				if ctx.Err() != nil {
					failed = append(failed, ctx.Err())
					break
				}
				if _, err := a.translateFile(ctx, doc.Path, scanner.OutputPath(doc.Path), false); err != nil {
					a.log.Error("translation failed", "input", doc.Rel, "error", err)
					failed = append(failed, fmt.Errorf("%s: %w", doc.Rel, err))
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			if len(failed) > 0 {
				return fmt.Errorf("%d of %d files failed: %w", len(failed), len(docs), errors.Join(failed...))
			}
			a.log.Info("batch complete", "files", len(docs))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&excludes, "exclude", nil, "gitignore-style patterns to skip (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "re-translate files whose output is up to date")

	return cmd
}

// staleDocuments drops documents whose translation is newer than the source.
func staleDocuments(docs []scanner.Document) []scanner.Document {
	var out []scanner.Document
	for _, d := range docs {
		info, err := os.Stat(scanner.OutputPath(d.Path))
		if err == nil && !info.ModTime().Before(d.ModTime) {
			continue
		}
		out = append(out, d)
	}
	return out
}
