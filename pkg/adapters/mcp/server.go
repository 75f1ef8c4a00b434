package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/flowedit"
	"github.com/aretw0/flowedit/internal/logging"
	"github.com/aretw0/flowedit/pkg/analysis"
	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/form"
	"github.com/aretw0/flowedit/pkg/tree"
	"github.com/aretw0/flowedit/pkg/workspace"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"
)

// DocumentsURI is the resource listing the stored documents.
const DocumentsURI = "flowedit://documents"

// LoadArgs are the arguments of load_document.
type LoadArgs struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Format  string `json:"format,omitempty"`
}

// LoadResponse summarizes an imported document.
type LoadResponse struct {
	Name  string `json:"name" jsonschema_description:"Workspace name of the document"`
	Nodes int    `json:"nodes" jsonschema_description:"Number of nodes"`
	Start string `json:"start" jsonschema_description:"ID of the start node"`
	Clean bool   `json:"clean" jsonschema_description:"True when nothing is dangling, orphaned or unreachable"`
}

// NameArgs address a stored document.
type NameArgs struct {
	Name string `json:"name"`
}

// TreeResponse carries the projected trees and a Markdown rendering of them.
type TreeResponse struct {
	Tree     tree.Projection `json:"tree" jsonschema_description:"Main tree and orphan trees"`
	Markdown string          `json:"markdown" jsonschema_description:"Markdown outline of the trees"`
}

// AnalyzeResponse wraps the analysis report.
type AnalyzeResponse struct {
	Report analysis.Report `json:"report"`
	Clean  bool            `json:"clean"`
}

// SaveNodeArgs are the arguments of save_node.
type SaveNodeArgs struct {
	Name   string `json:"name"`
	Mode   string `json:"mode,omitempty"`
	ID     string `json:"id"`
	Kind   string `json:"kind,omitempty"`
	Values string `json:"values,omitempty"`
	// Next is nil when the caller leaves the successor alone.
	Next *string `json:"next,omitempty"`
}

// ExportArgs are the arguments of export_document.
type ExportArgs struct {
	Name   string `json:"name"`
	Format string `json:"format,omitempty"`
}

// ExportResponse holds the encoded document.
type ExportResponse struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}

// Server exposes the workspaces as an MCP server.
type Server struct {
	workspaces *workspace.Manager
	mcpServer  *server.MCPServer
	logger     *slog.Logger
	// maxBranches bounds get_tree and analyze. Zero disables it.
	maxBranches int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithExpansionLimit caps the tree branches get_tree and analyze may expand.
// Zero or less disables the cap.
func WithExpansionLimit(branches int) Option {
	return func(s *Server) {
		s.maxBranches = branches
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(workspaces *workspace.Manager, opts ...Option) *Server {
	s := &Server{
		workspaces:  workspaces,
		mcpServer:   server.NewMCPServer("flowedit-mcp", strings.TrimSpace(flowedit.Version)),
		logger:      logging.NewNop(),
		maxBranches: flowedit.DefaultExpansionLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{`*`},
		AllowedMethods: []string{`GET`, `POST`},
		AllowedHeaders: []string{`*`},
	})
	mux := http.NewServeMux()
	mux.Handle("/sse", c.Handler(sseServer.SSEHandler()))
	mux.Handle("/message", c.Handler(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

// treeSchema describes TreeResponse. Tree nodes nest, so the node shape is a
// shared definition instead of a reflected (and endlessly inlined) type.
var treeSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"tree": {
			"type": "object",
			"properties": {
				"main": {"anyOf": [{"$ref": "#/$defs/node"}, {"type": "null"}]},
				"orphans": {"type": ["array", "null"], "items": {"$ref": "#/$defs/node"}}
			}
		},
		"markdown": {"type": "string", "description": "Markdown outline of the trees"}
	},
	"required": ["tree", "markdown"],
	"$defs": {
		"node": {
			"type": "object",
			"properties": {
				"id": {"type": "string"},
				"kind": {"type": "string"},
				"header": {"type": "string"},
				"summary": {"type": "string"},
				"label": {"type": "string"},
				"status": {"type": "string", "enum": ["normal", "missing", "loop", "orphan"]},
				"class": {"type": "string"},
				"children": {"type": "array", "items": {"$ref": "#/$defs/node"}}
			},
			"required": ["id", "header", "summary", "status", "class"]
		}
	}
}`)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("load_document",
		mcp.WithDescription("Import a flow document into a named workspace, replacing what was there."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workspace name")),
		mcp.WithString("content", mcp.Required(), mcp.Description("The document text")),
		mcp.WithString("format", mcp.Description("json (default) or yaml"), mcp.Enum("json", "yaml")),
		mcp.WithOutputSchema[LoadResponse](),
	), mcp.NewStructuredToolHandler(s.handleLoad))

	s.mcpServer.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Project a document into its main tree and one tree per disconnected node."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workspace name")),
		mcp.WithRawOutputSchema(treeSchema),
	), mcp.NewStructuredToolHandler(s.handleTree))

	s.mcpServer.AddTool(mcp.NewTool("analyze",
		mcp.WithDescription("Report reachable, orphaned and unreachable nodes, dangling edges and loops."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workspace name")),
		mcp.WithOutputSchema[AnalyzeResponse](),
	), mcp.NewStructuredToolHandler(s.handleAnalyze))

	s.mcpServer.AddTool(mcp.NewTool("save_node",
		mcp.WithDescription("Create or edit a node. Config values are given as the text of form fields."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workspace name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID (cannot be changed on edit)")),
		mcp.WithString("mode", mcp.Description("create (default) or edit"), mcp.Enum("create", "edit")),
		mcp.WithString("kind", mcp.Description("Node kind: fixed, input, output, api, if-else or llm")),
		mcp.WithString("values", mcp.Description(`JSON object of field texts, e.g. {"message":"hi"}`)),
		mcp.WithString("next", mcp.Description("Successor node ID for non-branching kinds")),
		mcp.WithOutputSchema[form.Result](),
	), mcp.NewStructuredToolHandler(s.handleSaveNode))

	s.mcpServer.AddTool(mcp.NewTool("export_document",
		mcp.WithDescription("Serialize a document."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workspace name")),
		mcp.WithString("format", mcp.Description("json (default) or yaml"), mcp.Enum("json", "yaml")),
		mcp.WithOutputSchema[ExportResponse](),
	), mcp.NewStructuredToolHandler(s.handleExport))
}

func (s *Server) handleLoad(ctx context.Context, request mcp.CallToolRequest, args LoadArgs) (LoadResponse, error) {
	if args.Name == "" {
		return LoadResponse{}, errors.New("name is required")
	}
	format, err := document.ParseFormat(args.Format)
	if err != nil {
		return LoadResponse{}, err
	}

	ed, err := s.workspaces.Import(ctx, args.Name, strings.NewReader(args.Content), format)
	if err != nil {
		s.logger.Warn("MCP load_document: rejected", "name", args.Name, "err", err)
		return LoadResponse{}, fmt.Errorf("load failed: %w", err)
	}
	return LoadResponse{
		Name:  args.Name,
		Nodes: len(ed.Inspect()),
		Start: ed.StartNodeID(),
		Clean: ed.Clean(),
	}, nil
}

func (s *Server) handleTree(ctx context.Context, request mcp.CallToolRequest, args NameArgs) (TreeResponse, error) {
	var resp TreeResponse
	err := s.workspaces.View(ctx, args.Name, func(ctx context.Context, ed *flowedit.Editor) error {
		if err := ed.CheckExpansion(s.maxBranches); err != nil {
			return err
		}
		resp.Tree = ed.Tree(ctx)
		resp.Markdown = tree.Markdown(resp.Tree)
		return nil
	})
	if err != nil {
		return TreeResponse{}, fmt.Errorf("tree failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleAnalyze(ctx context.Context, request mcp.CallToolRequest, args NameArgs) (AnalyzeResponse, error) {
	var resp AnalyzeResponse
	err := s.workspaces.View(ctx, args.Name, func(ctx context.Context, ed *flowedit.Editor) error {
		if err := ed.CheckExpansion(s.maxBranches); err != nil {
			return err
		}
		resp.Report = ed.Analyze()
		resp.Clean = resp.Report.Clean()
		return nil
	})
	if err != nil {
		return AnalyzeResponse{}, fmt.Errorf("analyze failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleSaveNode(ctx context.Context, request mcp.CallToolRequest, args SaveNodeArgs) (form.Result, error) {
	var values map[string]string
	if args.Values != "" {
		if err := json.Unmarshal([]byte(args.Values), &values); err != nil {
			return form.Result{}, fmt.Errorf("values must be a JSON object of strings: %w", err)
		}
	}

	var res form.Result
	err := s.workspaces.Edit(ctx, args.Name, func(ctx context.Context, ed *flowedit.Editor) error {
		// Start from the form as shown so omitted fields keep their values.
		var draft form.Draft
		if args.Mode == string(form.ModeEdit) {
			f, err := ed.OpenNode(args.ID, domain.Kind(args.Kind))
			if err != nil {
				return err
			}
			draft = f.Draft()
		} else {
			draft = ed.NewNode(domain.Kind(args.Kind)).Draft()
			draft.ID = args.ID
		}
		for key, value := range values {
			draft.Values[key] = value
		}
		if args.Next != nil {
			draft.Next = *args.Next
		}

		var err error
		res, err = ed.SaveNode(ctx, draft)
		return err
	})
	if err != nil {
		s.logger.Debug("MCP save_node: rejected", "name", args.Name, "id", args.ID, "err", err)
		return form.Result{}, fmt.Errorf("save failed: %w", err)
	}
	return res, nil
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest, args ExportArgs) (ExportResponse, error) {
	format, err := document.ParseFormat(args.Format)
	if err != nil {
		return ExportResponse{}, err
	}
	var data []byte
	err = s.workspaces.View(ctx, args.Name, func(ctx context.Context, ed *flowedit.Editor) error {
		var err error
		data, err = document.Marshal(ed.Snapshot(), format)
		return err
	})
	if err != nil {
		return ExportResponse{}, fmt.Errorf("export failed: %w", err)
	}
	return ExportResponse{Format: string(format), Content: string(data)}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(DocumentsURI, "Stored flow documents",
		mcp.WithMIMEType("application/json"),
	), s.readDocuments)
}

func (s *Server) readDocuments(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	names, err := s.workspaces.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	jsonBytes, err := json.Marshal(names)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DocumentsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
