// Package mcp exposes translation as Model Context Protocol tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/logger"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/translate"
)

// Options configures a Server.
type Options struct {
	Name         string
	Version      string
	SystemPrompt string
	Model        string
}

// Server wires translation tools into an MCP server.
type Server struct {
	pipeline *translate.Pipeline
	opts     Options
	log      logger.Logger
	mcp      *server.MCPServer
}

// NewServer creates a Server and registers its tools.
func NewServer(pipeline *translate.Pipeline, opts Options, log logger.Logger) *Server {
	if opts.Name == "" {
		opts.Name = "gpt-md-translator"
	}
	s := &Server{
		pipeline: pipeline,
		opts:     opts,
		log:      log,
		mcp:      server.NewMCPServer(opts.Name, opts.Version, server.WithToolCapabilities(false), server.WithRecovery()),
	}

	s.mcp.AddTool(mcp.NewTool("translate_markdown",
		mcp.WithDescription("Translate a Markdown document, preserving its formatting. Large documents are split on paragraph breaks."),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("The Markdown source to translate")),
		mcp.WithString("model", mcp.Description("Model override; defaults to the configured model")),
		mcp.WithString("system_prompt", mcp.Description("System prompt override")),
	), s.handleTranslate)

	s.mcp.AddTool(mcp.NewTool("estimate_tokens",
		mcp.WithDescription("Count the tokens of a Markdown document and report how it would be chunked, without calling a model."),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("The Markdown source to measure")),
	), s.handleEstimate)

	s.mcp.AddTool(mcp.NewTool("check_structure",
		mcp.WithDescription("Compare the Markdown structure of a source document and its translation."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Original Markdown")),
		mcp.WithString("translated", mcp.Required(), mcp.Description("Translated Markdown")),
	), s.handleCheck)

	return s
}

// ServeStdio blocks serving requests on stdin/stdout.
func (s *Server) ServeStdio(_ context.Context) error {
	s.log.Info("mcp server listening on stdio", "name", s.opts.Name)
	return server.ServeStdio(s.mcp)
}
