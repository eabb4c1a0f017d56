// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/hierarchy"
	"github.com/starford/ansuz/internal/orchestrator"
	"github.com/starford/ansuz/internal/state"
	"github.com/starford/ansuz/internal/vault"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp   *server.MCPServer
	orch  *orchestrator.Orchestrator
	store state.Store
	vault vault.Provider
}

// New creates a new MCP server with all Ansuz tools registered.
func New(orch *orchestrator.Orchestrator, store state.Store, v vault.Provider) *Server {
	s := &Server{orch: orch, store: store, vault: v}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("tag_tree",
		mcp.WithDescription("Show the tag hierarchy from the most recent vault scan as an indented outline."),
	), s.tagTree)

	s.mcp.AddTool(mcp.NewTool("index_status",
		mcp.WithDescription("Report engine health and the most recent update cycles."),
	), s.indexStatus)

	s.mcp.AddTool(mcp.NewTool("trigger_update",
		mcp.WithDescription("Request an index update cycle. The request is debounced and dropped if a cycle is already running."),
	), s.triggerUpdate)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the raw text of a vault document, including any rendered index blocks."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. folder/note.md)")),
	), s.readDocument)

	// Resource: index block format.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://block-format", "Index Block Format",
			mcp.WithResourceDescription("The block grammar Ansuz writes into documents; edit outside these blocks only."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readBlockFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) tagTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	schema := s.orch.Snapshot()
	if schema == nil {
		return mcp.NewToolResultError("no scan completed yet"), nil
	}
	var b strings.Builder
	writeOutline(&b, schema.Root, 0)
	if b.Len() == 0 {
		return mcp.NewToolResultText("(empty vault)"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func writeOutline(b *strings.Builder, n *hierarchy.Node, depth int) {
	next := depth
	if n.Path != "" {
		fmt.Fprintf(b, "%s%s (%d docs, %d indexes)\n",
			strings.Repeat("  ", depth), n.Heading(), len(n.AllDocuments()), len(n.Index)+len(n.IndexPriority))
		next = depth + 1
	}
	for _, c := range n.Children {
		writeOutline(b, c, next)
	}
}

func (s *Server) indexStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.orch.Status()
	payload := map[string]any{"health": st}
	if s.store != nil {
		if cycles, err := s.store.RecentCycles(5); err == nil {
			payload["recent_cycles"] = cycles
		}
	}
	out, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) triggerUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.orch.TriggerUpdate()
	return mcp.NewToolResultText("update requested"), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.vault.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) readBlockFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://block-format",
			MIMEType: "text/markdown",
			Text:     BlockFormatContract,
		},
	}, nil
}
