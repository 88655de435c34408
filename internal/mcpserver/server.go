// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Quire editing tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quire/internal/editor"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/templates"
)

// Server wraps the MCP server with Quire tools.
type Server struct {
	mcp *server.MCPServer
	svc *editor.Service
}

// New creates a new MCP server with all Quire tools registered.
func New(svc *editor.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Quire",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List documents, newest first. Returns ids, titles, categories and word counts."),
		mcp.WithString("category", mcp.Description("Only documents in this category")),
		mcp.WithBoolean("favorites", mcp.Description("Only favorite documents")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of documents (default 50)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a document including its full content. Without an id the current document is read."),
		mcp.WithString("id", mcp.Description("Document id")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new document and open it in the editor. "+
			"Content follows the document format contract (see get_document_contract)."),
		mcp.WithString("template", mcp.Description("Optional template name")),
		mcp.WithString("title", mcp.Description("Optional title")),
		mcp.WithString("content", mcp.Description("Optional initial content")),
	), s.createDocument)

	s.mcp.AddTool(mcp.NewTool("switch_document",
		mcp.WithDescription("Open another document in the editor."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id")),
	), s.switchDocument)

	s.mcp.AddTool(mcp.NewTool("update_content",
		mcp.WithDescription("Replace the content of the current document. The change is saved and can be undone."),
		mcp.WithString("content", mcp.Required(), mcp.Description("New content")),
		mcp.WithString("checksum", mcp.Description("Checksum of the content being replaced; the update fails if it changed")),
	), s.updateContent)

	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last content change of the current document."),
	), s.undo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone content change of the current document."),
	), s.redo)

	s.mcp.AddTool(mcp.NewTool("get_lines",
		mcp.WithDescription("Return the numbered plain-text lines of the current document with their character offsets."),
	), s.getLines)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through document titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the document format contract. "+
			"Call this before creating or updating documents."),
	), s.getDocumentContract)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Document Format Contract",
			mcp.WithResourceDescription("Content format and derived fields of Quire documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, total, err := s.svc.ListDocuments(index.ListFilter{
		Category:  req.GetString("category", ""),
		Favorites: req.GetBool("favorites", false),
		Limit:     req.GetInt("limit", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"documents": rows, "total": total})
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		st := s.svc.State()
		if st.CurrentDocument == nil {
			return mcp.NewToolResultError("no document is open"), nil
		}
		return jsonResult(map[string]any{"document": st.CurrentDocument, "checksum": st.Checksum})
	}
	doc, err := s.svc.GetDocument(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(map[string]any{"document": doc})
}

func (s *Server) createDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.svc.CreateDocumentWith(req.GetString("template", ""), templates.Template{
		Title:   req.GetString("title", ""),
		Content: req.GetString("content", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", doc.ID)), nil
}

func (s *Server) switchDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.Switch(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("switched: %s", id)), nil
}

func (s *Server) updateContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.svc.UpdateContent(content, req.GetString("checksum", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(summary(snap))
}

func (s *Server) undo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(summary(s.svc.Undo()))
}

func (s *Server) redo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(summary(s.svc.Redo()))
}

func (s *Server) getLines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Lines().Lines())
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getDocumentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}

// stateSummary is the compact session view returned after edits.
type stateSummary struct {
	ID        string `json:"id,omitempty"`
	Content   string `json:"content"`
	Checksum  string `json:"checksum,omitempty"`
	WordCount int    `json:"wordCount"`
	CharCount int    `json:"charCount"`
	IsDirty   bool   `json:"isDirty"`
	CanUndo   bool   `json:"canUndo"`
	CanRedo   bool   `json:"canRedo"`
}

func summary(snap editor.Snapshot) stateSummary {
	out := stateSummary{
		Checksum: snap.Checksum,
		IsDirty:  snap.IsDirty,
		CanUndo:  snap.CanUndo,
		CanRedo:  snap.CanRedo,
	}
	if d := snap.CurrentDocument; d != nil {
		out.ID = d.ID
		out.Content = d.Content
		out.WordCount = d.WordCount
		out.CharCount = d.CharCount
	}
	return out
}
