// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Agenda search tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/agenda-search/internal/action"
	"github.com/starford/agenda-search/internal/models"
	"github.com/starford/agenda-search/internal/searchservice"
)

// Server wraps the MCP server with the search tools.
type Server struct {
	mcp *server.MCPServer
	svc *searchservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *searchservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"agenda-search",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search Agenda notes by title. Deleted notes are never returned."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Part of the note title")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("search_projects",
		mcp.WithDescription("Search Agenda projects by title, followed by the notes inside matching projects."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Part of the project title")),
		mcp.WithBoolean("project_only", mcp.Description("List projects only, for attaching a note")),
	), s.searchProjects)

	s.mcp.AddTool(mcp.NewTool("resolve_action",
		mcp.WithDescription("Turn an action identifier from a search result into the agenda:// URL that performs it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The arg field of a search result")),
	), s.resolveAction)

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

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.svc.Search(ctx, searchservice.Request{Query: query, Type: searchservice.TypeTitle})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return entriesResult(entries), nil
}

func (s *Server) searchProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.svc.Search(ctx, searchservice.Request{
		Query:       query,
		Type:        searchservice.TypeProject,
		ProjectOnly: req.GetBool("project_only", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return entriesResult(entries), nil
}

func (s *Server) resolveAction(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := action.Parse(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(a.URL()), nil
}

func entriesResult(entries []models.Entry) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out))
}
