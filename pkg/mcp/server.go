package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/heefoo/treesitter-mcp/internal/analyzer"
	"github.com/heefoo/treesitter-mcp/internal/config"
	tserrors "github.com/heefoo/treesitter-mcp/internal/errors"
	"github.com/heefoo/treesitter-mcp/internal/parser"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "treesitter-mcp"
	serverVersion = "0.2.0"
)

type Server struct {
	engine *analyzer.Engine
	config *config.Config
	graph  GraphStore
	mcp    *server.MCPServer
}

// ServerConfig wires the server. Graph is optional; without it the graph
// tools are not registered.
type ServerConfig struct {
	Engine *analyzer.Engine
	Config *config.Config
	Graph  GraphStore
}

func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		engine: cfg.Engine,
		config: cfg.Config,
		graph:  cfg.Graph,
	}
	if s.config == nil {
		s.config = config.DefaultConfig()
	}
	if s.engine == nil {
		s.engine = analyzer.NewEngine(EngineOptions(s.config)...)
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	// Register tools
	s.registerTools(mcpServer)
	if s.graph != nil {
		s.registerGraphTools(mcpServer)
	}

	s.mcp = mcpServer
	return s
}

// EngineOptions maps the analysis section of the config onto engine options.
func EngineOptions(cfg *config.Config) []analyzer.Option {
	opts := []analyzer.Option{
		analyzer.WithWorkers(cfg.Analysis.Workers),
		analyzer.WithMaxASTDepth(cfg.Analysis.MaxASTDepth),
	}
	if cfg.Analysis.CacheEnabled {
		opts = append(opts, analyzer.WithCache(cfg.Analysis.CacheSize))
	}
	return opts
}

// Property schemas shared by several tools.
var (
	filePathProp = map[string]interface{}{
		"type":        "string",
		"description": "Path to the source file to analyze",
	}
	sourceProp = map[string]interface{}{
		"type":        "string",
		"description": "Optional source text analyzed instead of reading file_path",
	}
	languageProp = map[string]interface{}{
		"type":        "string",
		"description": "Optional language id overriding detection by file extension",
	}
	nameProp = map[string]interface{}{
		"type":        "string",
		"description": "Exact symbol name",
	}
	rowProp = map[string]interface{}{
		"type":        "integer",
		"description": "Zero based row",
	}
	columnProp = map[string]interface{}{
		"type":        "integer",
		"description": "Zero based byte column",
	}
)

func fileTool(name, description string, extra map[string]interface{}, required ...string) mcp.Tool {
	props := map[string]interface{}{
		"file_path": filePathProp,
		"source":    sourceProp,
		"language":  languageProp,
	}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   append([]string{"file_path"}, required...),
		},
	}
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(fileTool(
		"treesitter_analyze_file",
		"Analyze a source file. Returns JSON with functions, variables, parameters, dependencies and syntaxErrors.",
		nil,
	), s.handle(analyzer.OpAnalyzeFile))

	mcpServer.AddTool(fileTool(
		"treesitter_get_call_graph",
		"Build the in-file call graph. Returns nodes (functions) and one edge per call site; edges are resolved when the callee is defined in the same file.",
		nil,
	), s.handle(analyzer.OpGetCallGraph))

	mcpServer.AddTool(fileTool(
		"treesitter_find_function",
		"Find function definitions by exact name. Returns definitions, or suggestions of similar names when none match.",
		map[string]interface{}{"name": nameProp},
		"name",
	), s.handle(analyzer.OpFindFunction))

	mcpServer.AddTool(fileTool(
		"treesitter_find_variable",
		"Find variable definitions by exact name. Returns definitions, or suggestions of similar names when none match.",
		map[string]interface{}{"name": nameProp},
		"name",
	), s.handle(analyzer.OpFindVariable))

	mcpServer.AddTool(mcp.Tool{
		Name:        "treesitter_get_supported_languages",
		Description: "List supported languages with their file extensions.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handle(analyzer.OpGetSupportedLanguages))

	mcpServer.AddTool(fileTool(
		"treesitter_get_ast",
		"Return the syntax tree as nested {kind, rawKind, startPosition, endPosition, name, text, children} nodes.",
		map[string]interface{}{
			"max_depth": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum depth of the AST to return. -1 for no limit",
				"default":     -1,
			},
		},
	), s.handle(analyzer.OpGetAST))

	mcpServer.AddTool(fileTool(
		"treesitter_run_query",
		"Run a tree-sitter S-expression query. Returns captures in match order.",
		map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Tree-sitter query, e.g. (function_definition name: (identifier) @name)",
			},
		},
		"query",
	), s.handle(analyzer.OpRunQuery))

	mcpServer.AddTool(fileTool(
		"treesitter_find_usage",
		"Find every definition and reference of a name in source order.",
		map[string]interface{}{"name": nameProp},
		"name",
	), s.handle(analyzer.OpFindUsage))

	mcpServer.AddTool(fileTool(
		"treesitter_get_dependencies",
		"List import and include entries as written in the file.",
		nil,
	), s.handle(analyzer.OpGetDependencies))

	mcpServer.AddTool(fileTool(
		"treesitter_node_at",
		"Return the deepest node containing a position.",
		map[string]interface{}{"row": rowProp, "column": columnProp},
		"row", "column",
	), s.handle(analyzer.OpNodeAt))

	mcpServer.AddTool(fileTool(
		"treesitter_node_for_range",
		"Return the smallest node containing a range.",
		map[string]interface{}{
			"start_row":    rowProp,
			"start_column": columnProp,
			"end_row":      rowProp,
			"end_column":   columnProp,
		},
		"start_row", "start_column", "end_row", "end_column",
	), s.handle(analyzer.OpNodeForRange))
}

// handle adapts one engine operation to an MCP tool handler.
func (s *Server) handle(op string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := buildRequest(op, request)
		log.Printf("tool call: %s(file_path=%s)", request.Params.Name, req.FilePath)

		start := time.Now()
		result, err := s.engine.Execute(ctx, req)
		if err != nil {
			log.Printf("Warning: %s failed after %v: %v", request.Params.Name, time.Since(start), err)
			return errorResult(err)
		}
		return jsonResult(result)
	}
}

func buildRequest(op string, request mcp.CallToolRequest) analyzer.Request {
	req := analyzer.Request{
		Operation: op,
		FilePath:  request.GetString("file_path", ""),
		Language:  request.GetString("language", ""),
		Name:      request.GetString("name", ""),
		Query:     request.GetString("query", ""),
	}
	if src, ok := request.GetArguments()["source"].(string); ok {
		req.Source = []byte(src)
	}
	if _, ok := request.GetArguments()["max_depth"]; ok {
		depth := request.GetInt("max_depth", -1)
		req.MaxDepth = &depth
	}
	switch op {
	case analyzer.OpNodeAt:
		req.Position = parser.Position{Row: request.GetInt("row", 0), Column: request.GetInt("column", 0)}
	case analyzer.OpNodeForRange:
		req.Position = parser.Position{Row: request.GetInt("start_row", 0), Column: request.GetInt("start_column", 0)}
		req.End = parser.Position{Row: request.GetInt("end_row", 0), Column: request.GetInt("end_column", 0)}
	}
	return req
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return errorResult(tserrors.Wrap(tserrors.KindInternal, "encode", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}

// errorResult encodes err as {"error": {"kind": ..., "message": ...}}.
func errorResult(err error) (*mcp.CallToolResult, error) {
	payload := map[string]*tserrors.Body{"error": tserrors.BodyOf(err)}
	jsonBytes, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return nil, fmt.Errorf("failed to encode error: %w", marshalErr)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
		IsError: true,
	}, nil
}

func (s *Server) ServeStdio(ctx context.Context) error {
	log.Println("Starting MCP server on stdio...")
	return server.ServeStdio(s.mcp)
}

// Handler mounts the SSE transport at /sse and /message, streamable HTTP at
// /mcp, and /health.
func (s *Server) Handler(baseURL string, srv *http.Server) http.Handler {
	mux := http.NewServeMux()
	sseHandler := server.NewSSEServer(s.mcp,
		server.WithBaseURL(baseURL),
		server.WithUseFullURLForMessageEndpoint(true),
		server.WithHTTPServer(srv),
	)
	streamable := server.NewStreamableHTTPServer(
		s.mcp,
		server.WithEndpointPath("/mcp"),
		server.WithStreamableHTTPServer(srv),
	)

	mux.Handle("/sse", sseHandler.SSEHandler())
	mux.Handle("/message", sseHandler.MessageHandler())
	mux.Handle("/mcp", streamable)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "ok",
		"languages": parser.SupportedLanguages(),
	}
	if cache := s.engine.Cache(); cache != nil {
		status["cache"] = cache.Stats()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

func (s *Server) ServeHTTP(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("Starting MCP server on http://localhost%s\n", addr)

	srv := &http.Server{Addr: addr}
	srv.Handler = s.Handler(fmt.Sprintf("http://127.0.0.1:%d", port), srv)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
