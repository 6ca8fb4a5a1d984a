package graph

import (
	"github.com/heefoo/treesitter-mcp/internal/analyzer"
)

// FromCallGraph turns one file's call graph into storable nodes and edges.
// Call sites between the same pair of functions collapse into one edge
// whose weight is the number of sites. Line numbers are one based.
func FromCallGraph(filePath, language string, g analyzer.CallGraph) ([]*CodeNode, []*CodeEdge) {
	nodes := make([]*CodeNode, 0, len(g.Nodes))
	seen := make(map[string]bool, len(g.Nodes))
	for _, fn := range g.Nodes {
		id := NodeID(filePath, fn.Name)
		if seen[id] {
			continue
		}
		seen[id] = true
		nodes = append(nodes, &CodeNode{
			ID:        id,
			Name:      fn.Name,
			Language:  language,
			FilePath:  filePath,
			StartLine: fn.Location.Start.Row + 1,
			EndLine:   fn.Location.End.Row + 1,
			Signature: fn.Signature,
		})
	}

	edges := make([]*CodeEdge, 0, len(g.Edges))
	byID := make(map[string]*CodeEdge, len(g.Edges))
	for _, e := range g.Edges {
		from := NodeID(filePath, e.Caller.Name)
		to := ExternalID(e.Callee)
		if e.Resolved {
			to = NodeID(filePath, e.Callee)
		}
		id := FormatEdgeID(from, to, EdgeTypeCalls)
		if edge, ok := byID[id]; ok {
			edge.Weight++
			continue
		}
		edge := &CodeEdge{
			ID:       id,
			FromID:   from,
			ToID:     to,
			EdgeType: EdgeTypeCalls,
			FilePath: filePath,
			Resolved: e.Resolved,
			Weight:   1,
		}
		byID[id] = edge
		edges = append(edges, edge)
	}
	return nodes, edges
}
