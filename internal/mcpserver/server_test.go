package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/inkwell/internal/attachfmt"
	"github.com/starford/inkwell/internal/dates"
	"github.com/starford/inkwell/internal/ingest"
	"github.com/starford/inkwell/internal/noteservice"
	"github.com/starford/inkwell/internal/storage"
	"github.com/starford/inkwell/internal/template"
	"github.com/starford/inkwell/internal/testutil"
)

func testServer(t *testing.T, files map[string]string) (*Server, *storage.FS) {
	t.Helper()

	vaultDir, store := testutil.TestVault(t)
	testutil.WriteFiles(t, vaultDir, files)
	atts := storage.NewDiskAttachments(store, "Attachments")
	dirs := []string{"References", "Daily"}

	ing := ingest.NewService(ingest.Config{
		Drafts:     "Drafts",
		References: "References",
		Template:   template.Note,
		Extensions: []string{".md", ".txt"},
	}, store, atts, template.Builtin{}, dates.New(nil))
	svc := noteservice.NewService(store, atts, ing, attachfmt.New(store, atts, dirs, nil), dirs)
	return New(svc, "test"), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we test
	// through the tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "ingest_drafts":
		result, err = srv.ingestDrafts(ctx, req)
	case "find_references":
		result, err = srv.findReferences(ctx, req)
	case "list_orphans":
		result, err = srv.listOrphans(ctx, req)
	case "format_attachments":
		result, err = srv.formatAttachments(ctx, req)
	case "get_note_format":
		result, err = srv.getNoteFormat(ctx, req)
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

func TestIngestDrafts(t *testing.T) {
	srv, store := testServer(t, map[string]string{
		"Drafts/plan.md": "# 健身计划\n\n![img](pic.png)\n",
		"Drafts/pic.png": "PNG",
	})

	r := callTool(t, srv, "ingest_drafts", map[string]interface{}{"dry_run": true})
	if r.IsError || !strings.Contains(resultText(r), `"state": "previewed"`) {
		t.Fatalf("dry run = %s", resultText(r))
	}
	if store.Exists("References/健身计划.md") {
		t.Fatal("dry run wrote the note")
	}

	r = callTool(t, srv, "ingest_drafts", map[string]interface{}{"draft": "Drafts/plan.md"})
	if r.IsError || !strings.Contains(resultText(r), `"output": "References/健身计划.md"`) {
		t.Fatalf("ingest = %s", resultText(r))
	}
	if !store.Exists("Attachments/健身计划-pic.png") {
		t.Error("attachment not moved")
	}
}

func TestIngestDrafts_FailureFlagged(t *testing.T) {
	srv, _ := testServer(t, nil)
	r := callTool(t, srv, "ingest_drafts", map[string]interface{}{"draft": "Drafts/none.md"})
	if !r.IsError {
		t.Error("expected error result for missing draft")
	}
}

func TestFindReferences(t *testing.T) {
	srv, _ := testServer(t, map[string]string{
		"References/a.md": "one ![[pic.png]]\n",
	})

	r := callTool(t, srv, "find_references", map[string]interface{}{"name": "pic.png"})
	if text := resultText(r); !strings.Contains(text, `"document": "References/a.md"`) {
		t.Errorf("references = %s", text)
	}

	r = callTool(t, srv, "find_references", map[string]interface{}{"name": "none.png"})
	if text := resultText(r); text != "no references to none.png" {
		t.Errorf("references = %q", text)
	}

	r = callTool(t, srv, "find_references", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing name")
	}
}

func TestListOrphans(t *testing.T) {
	srv, _ := testServer(t, map[string]string{
		"Attachments/lone.png": "l",
		"Attachments/used.png": "u",
		"References/a.md":      "![[used.png]]",
	})
	text := resultText(callTool(t, srv, "list_orphans", map[string]interface{}{}))
	if !strings.Contains(text, "lone.png") || strings.Contains(text, "used.png") {
		t.Errorf("orphans = %s", text)
	}
}

func TestFormatAttachments(t *testing.T) {
	srv, store := testServer(t, map[string]string{
		"Attachments/IMG_1.jpg": "i",
		"References/架构.md":      "主题: 架构\n示意图 ![[IMG_1.jpg]]\n",
	})

	r := callTool(t, srv, "format_attachments", map[string]interface{}{"dry_run": true})
	if !strings.Contains(resultText(r), `"new_name": "架构-示意图.jpg"`) || !store.Exists("Attachments/IMG_1.jpg") {
		t.Fatalf("dry run = %s", resultText(r))
	}

	callTool(t, srv, "format_attachments", map[string]interface{}{})
	if !store.Exists("Attachments/架构-示意图.jpg") {
		t.Error("attachment not renamed")
	}
}

func TestGetNoteFormat(t *testing.T) {
	srv, _ := testServer(t, nil)
	text := resultText(callTool(t, srv, "get_note_format", map[string]interface{}{}))
	if !strings.Contains(text, "![[Backlinks]]") {
		t.Error("contract missing backlinks placeholder")
	}

	contents, err := srv.readNoteFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.URI != noteFormatURI {
		t.Errorf("resource contents = %+v", contents[0])
	}
}
