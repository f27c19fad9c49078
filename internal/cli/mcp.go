package cli

import (
	"github.com/spf13/cobra"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/mcp"
)

func newServeMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve translation tools over the Model Context Protocol (stdio)",
		Long: `Run an MCP server on stdin/stdout exposing translate_markdown,
estimate_tokens and check_structure.

Logs go to stderr so they never corrupt the protocol stream.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := flags
			// Runs are not files; there is nothing to record.
			f.noHistory = true

			a, err := openApp(f, online)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := mcp.NewServer(a.pipeline(), mcp.Options{
				Version:      version,
				SystemPrompt: a.systemPrompt,
				Model:        a.cfg.GPTModel,
			}, a.log)
			return srv.ServeStdio(cmd.Context())
		},
	}
}
