package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/mdcheck"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/translate"
)

func (s *Server) handleTranslate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown, err := req.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: markdown"), nil
	}
	model := req.GetString("model", s.opts.Model)
	if model == "" {
		return mcp.NewToolResultError("no model configured; pass the model parameter"), nil
	}
	sys := req.GetString("system_prompt", s.opts.SystemPrompt)

	res, err := s.pipeline.TranslateDocument(ctx, markdown, sys, model)
	if err != nil {
		s.log.Error("translation failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("translation failed: %v", err)), nil
	}
	s.log.Info("translated document", "chunks", res.Chunks, "model", model, "usage", usageLine(res.Usage))

	return mcp.NewToolResultText(res.Text), nil
}

func (s *Server) handleEstimate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown, err := req.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: markdown"), nil
	}

	sys := s.opts.SystemPrompt
	total := s.pipeline.RequestTokens(sys, markdown)

	var b strings.Builder
	fmt.Fprintf(&b, "request tokens: %d (limit %d)\n", total, s.pipeline.RequestLimit())
	if !s.pipeline.NeedsChunking(sys, markdown) {
		b.WriteString("chunks: 1 (single request)\n")
		return mcp.NewToolResultText(b.String()), nil
	}

	n := 0
	for range s.pipeline.Chunks(sys, markdown).All() {
		n++
	}
	fmt.Fprintf(&b, "chunks: %d\n", n)
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleCheck(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source"), nil
	}
	translated, err := req.RequireString("translated")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: translated"), nil
	}

	diffs := mdcheck.Compare([]byte(source), []byte(translated))
	if len(diffs) == 0 {
		return mcp.NewToolResultText("structure preserved"), nil
	}
	return mcp.NewToolResultText("structure differs:\n- " + strings.Join(diffs, "\n- ")), nil
}

// usageLine formats u the way the CLI reports it.
func usageLine(u *translate.Usage) string {
	if u == nil {
		return "no usage info received"
	}
	return fmt.Sprintf("prompt=%d response=%d total=%d", u.PromptTokens, u.CompletionTokens, u.TotalTokens)
}
