package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arnvid/mdlink/internal/docstore"
	"github.com/arnvid/mdlink/internal/filestore"
	"github.com/arnvid/mdlink/internal/testutil"
)

func testServer(t *testing.T) (*Server, docstore.Store) {
	t.Helper()
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(db, filestore.NewOS(), logger)
	return srv, db
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "edit_document":
		result, err = srv.editDocument(ctx, req)
	case "open_target":
		result, err = srv.openTarget(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListDocuments(t *testing.T) {
	srv, db := testServer(t)
	if err := db.Create(docstore.Row{ID: "d1", Name: "First"}); err != nil {
		t.Fatal(err)
	}
	if err := db.Create(docstore.Row{ID: "d2", Name: "Second", Target: "/notes/s.md", Linked: true}); err != nil {
		t.Fatal(err)
	}

	out := resultText(callTool(t, srv, "list_documents", nil))
	if !strings.Contains(out, "First") || !strings.Contains(out, "Second") {
		t.Errorf("list output: %q", out)
	}
	if !strings.Contains(out, `"linked": true`) {
		t.Errorf("list output missing linked flag: %q", out)
	}
}

func TestReadDocument(t *testing.T) {
	srv, db := testServer(t)
	if err := db.Create(docstore.Row{ID: "d1", Text: "# Title\n\nbody"}); err != nil {
		t.Fatal(err)
	}

	raw := resultText(callTool(t, srv, "read_document", map[string]interface{}{"id": "d1"}))
	if raw != "# Title\n\nbody" {
		t.Errorf("raw = %q", raw)
	}

	rendered := resultText(callTool(t, srv, "read_document", map[string]interface{}{
		"id": "d1", "rendered": true,
	}))
	if !strings.Contains(rendered, "<h1") {
		t.Errorf("rendered = %q", rendered)
	}

	missing := callTool(t, srv, "read_document", map[string]interface{}{"id": "nope"})
	if !missing.IsError {
		t.Error("reading a missing document should be a tool error")
	}
}

func TestEditDocumentWritesBack(t *testing.T) {
	srv, db := testServer(t)
	target := testutil.TestTarget(t, "note.md", "v1")
	if err := db.Create(docstore.Row{ID: "d1", Text: "v1", Target: target, Linked: true}); err != nil {
		t.Fatal(err)
	}

	out := resultText(callTool(t, srv, "edit_document", map[string]interface{}{
		"id": "d1", "text": "v2 from tool",
	}))
	if out != "edit applied" {
		t.Errorf("result = %q", out)
	}

	onDisk, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(onDisk) != "v2 from tool" {
		t.Errorf("disk = %q", onDisk)
	}

	row, err := db.Get("d1")
	if err != nil {
		t.Fatal(err)
	}
	if row.Text != "v2 from tool" || !row.Dirty {
		t.Errorf("row = %+v", row)
	}
}

func TestEditDocumentNoOp(t *testing.T) {
	srv, db := testServer(t)
	if err := db.Create(docstore.Row{ID: "d1", Text: "same"}); err != nil {
		t.Fatal(err)
	}

	callTool(t, srv, "edit_document", map[string]interface{}{"id": "d1", "text": "same"})

	row, err := db.Get("d1")
	if err != nil {
		t.Fatal(err)
	}
	if row.Dirty {
		t.Error("unchanged text must not mark the document")
	}
}

func TestEditDocumentReadOnlyWarning(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file modes do not restrict root")
	}
	srv, db := testServer(t)
	target := testutil.TestTarget(t, "ro.md", "v1")
	if err := os.Chmod(target, 0o444); err != nil {
		t.Fatal(err)
	}
	if err := db.Create(docstore.Row{ID: "d1", Text: "v1", Target: target, Linked: true}); err != nil {
		t.Fatal(err)
	}

	out := resultText(callTool(t, srv, "edit_document", map[string]interface{}{
		"id": "d1", "text": "v2",
	}))
	if !strings.Contains(out, "warnings") || !strings.Contains(out, "read-only") {
		t.Errorf("result = %q, want a read-only warning", out)
	}

	onDisk, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(onDisk) != "v1" {
		t.Errorf("read-only file was written: %q", onDisk)
	}

	row, err := db.Get("d1")
	if err != nil {
		t.Fatal(err)
	}
	if row.Text != "v2" {
		t.Error("edit must be retained in the document despite the failed write")
	}
}

func TestOpenTargetMirrors(t *testing.T) {
	srv, db := testServer(t)
	target := testutil.TestTarget(t, "a.md", "mirrored content")
	if err := db.Create(docstore.Row{ID: "d1"}); err != nil {
		t.Fatal(err)
	}

	out := resultText(callTool(t, srv, "open_target", map[string]interface{}{
		"id": "d1", "target": target,
	}))
	if out != "mirrored content" {
		t.Errorf("result = %q", out)
	}

	row, err := db.Get("d1")
	if err != nil {
		t.Fatal(err)
	}
	if !row.Linked || row.Target != target || !row.Dirty {
		t.Errorf("row = %+v", row)
	}
}

func TestOpenTargetMissingFile(t *testing.T) {
	srv, db := testServer(t)
	if err := db.Create(docstore.Row{ID: "d1", Text: "stale"}); err != nil {
		t.Fatal(err)
	}

	out := callTool(t, srv, "open_target", map[string]interface{}{
		"id": "d1", "target": "/nonexistent/note.md",
	})
	if out.IsError {
		t.Error("a missing target file is a valid state, not an error")
	}
	if resultText(out) != "" {
		t.Errorf("result = %q, want empty content", resultText(out))
	}
}

func TestEditingContractResource(t *testing.T) {
	srv, _ := testServer(t)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "mdlink://editing-contract"
	contents, err := srv.readEditingContract(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents[0] is %T", contents[0])
	}
	if !strings.Contains(tc.Text, "read-only") {
		t.Errorf("contract missing read-only rule: %q", tc.Text)
	}
}
