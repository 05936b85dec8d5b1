// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes inkwell's vault pipelines for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/inkwell/internal/ingest"
	"github.com/starford/inkwell/internal/noteservice"
)

const noteFormatURI = "inkwell://note-format"

// Server wraps the MCP server with inkwell tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all inkwell tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"inkwell",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("ingest_drafts",
		mcp.WithDescription("Ingest drafts into canonical notes: extract title and topics, "+
			"move embedded attachments into the attachments directory and write the note. "+
			"Use dry_run to preview the plan without touching the vault."),
		mcp.WithString("draft", mcp.Description("Vault-relative draft path (empty ingests every draft)")),
		mcp.WithBoolean("dry_run", mcp.Description("Preview only")),
		mcp.WithBoolean("keep", mcp.Description("Keep the source draft after ingestion")),
	), s.ingestDrafts)

	s.mcp.AddTool(mcp.NewTool("find_references",
		mcp.WithDescription("Find every document line that references an attachment by exact name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Attachment file name, e.g. pic.png")),
	), s.findReferences)

	s.mcp.AddTool(mcp.NewTool("list_orphans",
		mcp.WithDescription("List attachments that no document references. Read-only."),
	), s.listOrphans)

	s.mcp.AddTool(mcp.NewTool("format_attachments",
		mcp.WithDescription("Rename attachments with unstructured names (screenshots, pastes, timestamps) "+
			"after the context of the documents that reference them, rewriting every reference."),
		mcp.WithBoolean("dry_run", mcp.Description("Preview only")),
	), s.formatAttachments)

	s.mcp.AddTool(mcp.NewTool("get_note_format",
		mcp.WithDescription("Returns the canonical inkwell note format. "+
			"Call this before writing drafts so they ingest cleanly."),
	), s.getNoteFormat)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource(noteFormatURI, "Note Format",
			mcp.WithResourceDescription("Canonical note format produced by draft ingestion."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) ingestDrafts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := ingest.Options{
		DryRun:     req.GetBool("dry_run", false),
		KeepSource: req.GetBool("keep", false),
	}
	report := s.svc.Ingest(ctx, req.GetString("draft", ""), opts)
	res := jsonResult(report)
	res.IsError = !report.OK()
	return res, nil
}

func (s *Server) findReferences(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := s.svc.References(ctx, name)
	if len(res.Refs) == 0 && len(res.Errors) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no references to %s", name)), nil
	}
	errs := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		errs = append(errs, e.Error())
	}
	return jsonResult(map[string]any{"references": res.Refs, "errors": errs}), nil
}

func (s *Server) listOrphans(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.svc.Orphans(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rep), nil
}

func (s *Server) formatAttachments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.svc.Format(ctx, req.GetBool("dry_run", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := jsonResult(rep)
	res.IsError = !rep.OK()
	return res, nil
}

func (s *Server) getNoteFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      noteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
