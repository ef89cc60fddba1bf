// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes mdlink documents for LLM integration via stdio transport.
// Edits made through it follow the same synchronization rules as edits
// from the rendering surface: no-op edits are dropped, real edits mark
// the host state changed and are written back to local link targets.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/arnvid/mdlink/internal/docstore"
	"github.com/arnvid/mdlink/internal/document"
	"github.com/arnvid/mdlink/internal/filestore"
	"github.com/arnvid/mdlink/internal/preview"
	"github.com/arnvid/mdlink/internal/session"
)

// Server wraps the MCP server with mdlink tools.
type Server struct {
	mcp    *server.MCPServer
	db     docstore.Store
	store  filestore.Store
	logger *slog.Logger
}

// New creates a new MCP server with all mdlink tools registered.
func New(db docstore.Store, store filestore.Store, logger *slog.Logger) *Server {
	s := &Server{db: db, store: store, logger: logger}

	s.mcp = server.NewMCPServer(
		"mdlink",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all Markdown documents with their link targets and dirty state."),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the current content of a document. Link documents reflect their external file."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id")),
		mcp.WithBoolean("rendered", mcp.Description("Return rendered HTML instead of raw Markdown")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("edit_document",
		mcp.WithDescription("Replace a document's Markdown content. For local link documents the "+
			"content is also written back to the external file; a read-only or failed write is "+
			"reported as a warning and the edit is kept in the document. Read the "+
			"mdlink://editing-contract resource for the full rules."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id")),
		mcp.WithString("text", mcp.Required(), mcp.Description("New Markdown content")),
	), s.editDocument)

	s.mcp.AddTool(mcp.NewTool("open_target",
		mcp.WithDescription("Point a document at a new external file or URL and mirror its content. "+
			"A missing file is valid and yields empty content."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id")),
		mcp.WithString("target", mcp.Required(), mcp.Description("File path or URL to link")),
	), s.openTarget)

	// Resource: editing contract.
	s.mcp.AddResource(
		mcp.NewResource("mdlink://editing-contract", "Link Document Editing Contract",
			mcp.WithResourceDescription("Rules governing link-document synchronization and write-back."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readEditingContract,
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

// headlessSurface satisfies the session's rendering-surface capability
// for MCP callers, which have no view to push scripts into.
type headlessSurface struct{}

func (headlessSurface) Exec(string) error { return nil }

// quietHost persists session state without broadcasting; MCP mode has no
// SSE listeners.
type quietHost struct {
	id     string
	db     docstore.Store
	logger *slog.Logger
}

func (h *quietHost) MarkChanged() {
	if err := h.db.MarkChanged(h.id); err != nil {
		h.logger.Warn("mcp: mark changed failed", slog.String("doc", h.id), slog.String("error", err.Error()))
	}
}

func (h *quietHost) SaveState(text, target string, linked bool) {
	if err := h.db.SaveState(h.id, text, target, linked); err != nil {
		h.logger.Warn("mcp: save state failed", slog.String("doc", h.id), slog.String("error", err.Error()))
	}
}

// captureNotifier collects the session's user-visible notices so they can
// be returned in the tool result.
type captureNotifier struct {
	notices []string
}

func (n *captureNotifier) Notify(kind, message string) {
	n.notices = append(n.notices, fmt.Sprintf("%s: %s", kind, message))
}

// sessionFor hydrates a short-lived session around a stored document.
// State survives through the host boundary, so per-call sessions are
// equivalent to long-lived ones.
func (s *Server) sessionFor(id string) (*session.Session, *captureNotifier, error) {
	row, err := s.db.Get(id)
	if err != nil {
		return nil, nil, err
	}
	var doc *document.Document
	if row.Linked {
		doc = document.NewLinked(row.Text, row.Target)
	} else {
		doc = document.New(row.Text)
	}
	binding, err := session.NewBinding(headlessSurface{}, s.logger)
	if err != nil {
		return nil, nil, err
	}
	notifier := &captureNotifier{}
	host := &quietHost{id: id, db: s.db, logger: s.logger}
	return session.New(doc, s.store, binding, host, notifier, s.logger), notifier, nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := s.db.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	type item struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Target string `json:"target,omitempty"`
		Linked bool   `json:"linked"`
		Dirty  bool   `json:"dirty"`
	}
	items := make([]item, len(rows))
	for i, r := range rows {
		items[i] = item{ID: r.ID, Name: r.Name, Target: r.Target, Linked: r.Linked, Dirty: r.Dirty}
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := s.db.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if req.GetBool("rendered", false) {
		return mcp.NewToolResultText(string(preview.Render(row.Text))), nil
	}
	return mcp.NewToolResultText(row.Text), nil
}

func (s *Server) editDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sess, notifier, err := s.sessionFor(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess.OnViewEdited(text)

	if len(notifier.notices) > 0 {
		return mcp.NewToolResultText("edit applied with warnings:\n" + strings.Join(notifier.notices, "\n")), nil
	}
	return mcp.NewToolResultText("edit applied"), nil
}

func (s *Server) openTarget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sess, _, err := s.sessionFor(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess.OpenTarget(target)
	return mcp.NewToolResultText(sess.Text()), nil
}

func (s *Server) readEditingContract(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "mdlink://editing-contract",
			MIMEType: "text/markdown",
			Text:     EditingContract,
		},
	}, nil
}
