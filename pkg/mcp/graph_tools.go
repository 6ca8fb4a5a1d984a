package mcp

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/heefoo/treesitter-mcp/internal/graph"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphStore is the read side of the published call-graph store.
type GraphStore interface {
	FindByName(ctx context.Context, name string) ([]graph.CodeNode, error)
	GetNodesByFile(ctx context.Context, filePath string) ([]graph.CodeNode, error)
	Callers(ctx context.Context, nodeID string) ([]graph.CodeEdge, error)
	Callees(ctx context.Context, nodeID string) ([]graph.CodeEdge, error)
}

func stringTool(name, description, param, paramDesc string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				param: map[string]interface{}{
					"type":        "string",
					"description": paramDesc,
				},
			},
			Required: []string{param},
		},
	}
}

func (s *Server) registerGraphTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(stringTool(
		"treesitter_graph_find",
		"Search functions published by the watch daemon whose name contains the given text.",
		"name", "Part of a function name",
	), s.graphFind)

	mcpServer.AddTool(stringTool(
		"treesitter_graph_file",
		"List the functions published for one file.",
		"file_path", "Path of the source file as it was watched",
	), s.graphFile)

	mcpServer.AddTool(stringTool(
		"treesitter_graph_callers",
		"List call edges into a function node (file::name) or an unresolved external::name.",
		"node_id", "Node id, e.g. src/main.c::add",
	), s.graphCallers)

	mcpServer.AddTool(stringTool(
		"treesitter_graph_callees",
		"List call edges out of a function node (file::name).",
		"node_id", "Node id, e.g. src/main.c::main",
	), s.graphCallees)
}

func requiredArg(request mcp.CallToolRequest, key string) (string, error) {
	v, err := request.RequireString(key)
	if err != nil {
		return "", err
	}
	if v = strings.TrimSpace(v); v == "" {
		return "", fmt.Errorf("%s parameter cannot be empty", key)
	}
	return v, nil
}

func (s *Server) graphFind(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requiredArg(request, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nodes, err := s.graph.FindByName(ctx, name)
	if err != nil {
		log.Printf("Warning: graph search for %q failed: %v", name, err)
		return mcp.NewToolResultError(fmt.Sprintf("search error: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"name":    name,
		"count":   len(nodes),
		"results": nonNil(nodes),
	})
}

func (s *Server) graphFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := requiredArg(request, "file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nodes, err := s.graph.GetNodesByFile(ctx, path)
	if err != nil {
		log.Printf("Warning: graph lookup for %s failed: %v", path, err)
		return mcp.NewToolResultError(fmt.Sprintf("query error: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"file_path": path,
		"count":     len(nodes),
		"functions": nonNil(nodes),
	})
}

func (s *Server) graphCallers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.graphEdges(ctx, request, "callers", s.graph.Callers)
}

func (s *Server) graphCallees(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.graphEdges(ctx, request, "callees", s.graph.Callees)
}

func (s *Server) graphEdges(ctx context.Context, request mcp.CallToolRequest, key string,
	lookup func(context.Context, string) ([]graph.CodeEdge, error)) (*mcp.CallToolResult, error) {
	id, err := requiredArg(request, "node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	edges, err := lookup(ctx, id)
	if err != nil {
		log.Printf("Warning: graph %s for %s failed: %v", key, id, err)
		return mcp.NewToolResultError(fmt.Sprintf("query error: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"node_id": id,
		"count":   len(edges),
		key:       nonNil(edges),
	})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
