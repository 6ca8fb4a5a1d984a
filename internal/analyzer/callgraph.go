package analyzer

import (
	tserrors "github.com/heefoo/treesitter-mcp/internal/errors"
	"github.com/heefoo/treesitter-mcp/internal/parser"
)

// BuildCallGraph links every function to each call inside its range,
// nested and anonymous functions included. A call inside a nested named
// function is an edge of that function and of every function enclosing it.
// Calls at top level have no caller and are dropped.
func BuildCallGraph(doc *parser.Document) (CallGraph, error) {
	table := doc.Table()
	if !table.Calls.Defined() || !table.Functions.Defined() {
		return CallGraph{}, tserrors.New(tserrors.KindUnsupportedForLanguage, "call graph",
			"language %s has no function or call mapping", doc.Language).WithPath(doc.Path)
	}

	x := buildIndex(doc)
	defined := x.functionNames()
	graph := CallGraph{
		Nodes: x.symbols.Functions,
		Edges: []CallGraphEdge{},
	}

	// Group call sites by caller, keeping source order within each.
	perCaller := make([][]callSite, len(x.symbols.Functions))
	for _, cs := range x.calls {
		for _, owner := range cs.owners {
			perCaller[owner] = append(perCaller[owner], cs)
		}
	}

	for i, sites := range perCaller {
		for _, cs := range sites {
			edge, ok := x.callEdge(cs)
			if !ok {
				continue
			}
			edge.Caller = x.symbols.Functions[i]
			if target, found := defined[edge.Callee]; found {
				loc := target.Location
				edge.Resolved = true
				edge.CalleeLocation = &loc
			}
			graph.Edges = append(graph.Edges, edge)
		}
	}
	return graph, nil
}

// callEdge extracts the callee of one call site. The callee is the
// rightmost name of the called expression; when the expression has no
// plain name its collapsed text is used and the edge stays unresolved.
func (x *index) callEdge(cs callSite) (CallGraphEdge, bool) {
	rule := &x.table.Calls
	selected := parser.Selected(rule, cs.node)
	if len(selected) == 0 {
		return CallGraphEdge{}, false
	}
	edge := CallGraphEdge{
		CalleeText: parser.CollapseWhitespace(x.doc.Text(selected[0])),
		CallSite:   x.doc.RangeOf(cs.node),
	}
	if names := x.table.Names(rule, cs.node); len(names) > 0 {
		edge.Callee = x.doc.Text(names[len(names)-1].Name)
	} else {
		edge.Callee = edge.CalleeText
	}
	return edge, true
}
