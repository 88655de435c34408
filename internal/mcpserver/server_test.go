package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/quire/internal/editor"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/lineindex"
	"github.com/starford/quire/internal/session"
	"github.com/starford/quire/internal/templates"
	"github.com/starford/quire/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := testutil.Logger()
	store, _ := testutil.TestStore(t)
	db := testutil.TestDB(t)
	ctrl := session.New(store,
		session.WithLogger(logger),
		session.WithListener(index.NewListener(db, logger)))
	return New(editor.New(ctrl, db, templates.Builtin()))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so the
	// handlers are called directly.
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"list_documents":        srv.listDocuments,
		"read_document":         srv.readDocument,
		"create_document":       srv.createDocument,
		"switch_document":       srv.switchDocument,
		"update_content":        srv.updateContent,
		"undo":                  srv.undo,
		"redo":                  srv.redo,
		"get_lines":             srv.getLines,
		"search_documents":      srv.searchDocuments,
		"get_document_contract": srv.getDocumentContract,
	}
	fn, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := fn(ctx, req)
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

func createdID(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	text := resultText(r)
	id, ok := strings.CutPrefix(text, "created: ")
	if !ok {
		t.Fatalf("create result = %q", text)
	}
	return id
}

func TestToolsRegistered(t *testing.T) {
	srv := testServer(t)
	resp := srv.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"list_documents", "read_document", "create_document", "switch_document",
		"update_content", "undo", "redo", "get_lines", "search_documents"} {
		if !strings.Contains(string(out), `"name":"`+name+`"`) {
			t.Errorf("tool %s not listed in %s", name, out)
		}
	}
}

func TestCreateAndReadDocument(t *testing.T) {
	srv := testServer(t)
	id := createdID(t, callTool(t, srv, "create_document", map[string]any{
		"title":   "Plan",
		"content": "<p>step one</p>",
	}))

	r := callTool(t, srv, "read_document", map[string]any{"id": id})
	var got struct {
		Document struct {
			Title     string `json:"title"`
			Content   string `json:"content"`
			WordCount int    `json:"wordCount"`
		} `json:"document"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Document.Title != "Plan" || got.Document.Content != "<p>step one</p>" || got.Document.WordCount != 2 {
		t.Errorf("document = %+v", got.Document)
	}

	// Without an id the current document is read.
	r = callTool(t, srv, "read_document", map[string]any{})
	if !strings.Contains(resultText(r), id) || !strings.Contains(resultText(r), "checksum") {
		t.Errorf("current read = %q", resultText(r))
	}
}

func TestReadDocumentMissing(t *testing.T) {
	srv := testServer(t)
	if r := callTool(t, srv, "read_document", map[string]any{"id": "nope"}); !r.IsError {
		t.Error("expected error for missing document")
	}
	if r := callTool(t, srv, "read_document", map[string]any{}); !r.IsError {
		t.Error("expected error with no current document")
	}
}

func TestCreateFromUnknownTemplate(t *testing.T) {
	srv := testServer(t)
	if r := callTool(t, srv, "create_document", map[string]any{"template": "nope"}); !r.IsError {
		t.Error("expected error for unknown template")
	}
}

func TestUpdateUndoRedo(t *testing.T) {
	srv := testServer(t)
	createdID(t, callTool(t, srv, "create_document", map[string]any{}))

	r := callTool(t, srv, "update_content", map[string]any{"content": "first draft"})
	var st stateSummary
	_ = json.Unmarshal([]byte(resultText(r)), &st)
	if st.Content != "first draft" || !st.CanUndo || st.WordCount != 2 {
		t.Errorf("after update = %+v", st)
	}

	r = callTool(t, srv, "update_content", map[string]any{"content": "x", "checksum": "stale"})
	if !r.IsError {
		t.Error("stale checksum should fail")
	}
	r = callTool(t, srv, "update_content", map[string]any{"content": "second", "checksum": st.Checksum})
	if r.IsError {
		t.Errorf("matching checksum failed: %s", resultText(r))
	}

	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "undo", nil))), &st)
	if st.Content != "first draft" {
		t.Errorf("after undo = %q", st.Content)
	}
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "redo", nil))), &st)
	if st.Content != "second" || st.CanRedo {
		t.Errorf("after redo = %+v", st)
	}
}

func TestSwitchAndList(t *testing.T) {
	srv := testServer(t)
	a := createdID(t, callTool(t, srv, "create_document", map[string]any{}))
	createdID(t, callTool(t, srv, "create_document", map[string]any{"template": "meeting-notes"}))

	r := callTool(t, srv, "switch_document", map[string]any{"id": a})
	if resultText(r) != "switched: "+a {
		t.Errorf("switch = %q", resultText(r))
	}
	if r := callTool(t, srv, "switch_document", map[string]any{"id": "nope"}); !r.IsError {
		t.Error("expected error for unknown id")
	}

	var list struct {
		Total int `json:"total"`
	}
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "list_documents", map[string]any{}))), &list)
	if list.Total != 2 {
		t.Errorf("total = %d", list.Total)
	}
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "list_documents", map[string]any{"category": "Work"}))), &list)
	if list.Total != 1 {
		t.Errorf("work total = %d", list.Total)
	}
}

func TestGetLines(t *testing.T) {
	srv := testServer(t)
	createdID(t, callTool(t, srv, "create_document", map[string]any{"content": "one\ntwo"}))

	var lines []lineindex.Line
	if err := json.Unmarshal([]byte(resultText(callTool(t, srv, "get_lines", nil))), &lines); err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[1].Content != "two" || lines[1].StartOffset != 4 {
		t.Errorf("lines = %+v", lines)
	}
}

func TestSearchDocuments(t *testing.T) {
	srv := testServer(t)
	id := createdID(t, callTool(t, srv, "create_document", map[string]any{"content": "<p>zanzibar trip</p>"}))

	r := callTool(t, srv, "search_documents", map[string]any{"query": "zanzibar"})
	if !strings.Contains(resultText(r), id) {
		t.Errorf("search = %q", resultText(r))
	}
	if r := callTool(t, srv, "search_documents", map[string]any{}); !r.IsError {
		t.Error("expected error without query")
	}
}

func TestDocumentContract(t *testing.T) {
	srv := testServer(t)
	if text := resultText(callTool(t, srv, "get_document_contract", nil)); !strings.Contains(text, "wordCount") {
		t.Errorf("contract = %q", text)
	}
}

func TestCreateDocumentStartsWithoutHistory(t *testing.T) {
	srv := testServer(t)
	id := createdID(t, callTool(t, srv, "create_document", map[string]any{
		"template": "meeting-notes",
		"title":    "Standup",
		"content":  "<p>notes</p>",
	}))

	st := srv.svc.State()
	if st.CurrentDocument == nil || st.CurrentDocument.ID != id {
		t.Fatalf("current = %+v", st.CurrentDocument)
	}
	if st.CanUndo || st.CanRedo || st.IsDirty {
		t.Errorf("canUndo = %v, canRedo = %v, dirty = %v", st.CanUndo, st.CanRedo, st.IsDirty)
	}
	doc := st.CurrentDocument
	if doc.Title != "Standup" || doc.Content != "<p>notes</p>" || doc.Category != "Work" {
		t.Errorf("document = %+v", doc)
	}

	// Undo has nothing to revert, so the content survives.
	callTool(t, srv, "undo", map[string]any{})
	if got := srv.svc.State().CurrentDocument.Content; got != "<p>notes</p>" {
		t.Errorf("content after undo = %q", got)
	}
}
