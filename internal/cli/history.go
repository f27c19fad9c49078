package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/db"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/export"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		format     string
		clearCache bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent translation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, ok := export.Get(format)
			if !ok {
				return fmt.Errorf("unknown format %q; valid formats: %s",
					format, strings.Join(export.ValidFormats(), ", "))
			}

			cfg, log, err := loadSettings(flags)
			if err != nil {
				return err
			}
			path, err := cfg.HistoryPath()
			if err != nil {
				return err
			}

			database, err := db.Open(path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer database.Close()
			store := history.NewStore(database)

			if clearCache {
				n, err := store.ClearCache()
				if err != nil {
					return err
				}
				log.Info("translation cache cleared", "entries", n)
				return nil
			}

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			out, err := exporter.Export(runs)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show (0 for all)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, markdown or json")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "delete every cached translation instead of listing runs")

	return cmd
}
