package analyzer

import (
	"github.com/heefoo/treesitter-mcp/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// BuildAST serializes the tree, named and anonymous nodes alike. Nodes at
// maxDepth are emitted without children; a negative maxDepth means no limit.
// Nodes without emitted children carry their source text.
func BuildAST(doc *parser.Document, maxDepth int) ASTNode {
	return buildAST(doc, doc.Root(), 0, maxDepth)
}

func buildAST(doc *parser.Document, n *sitter.Node, depth, maxDepth int) ASTNode {
	r := doc.RangeOf(n)
	node := ASTNode{
		Kind:          string(doc.Table().RoleOfNode(n)),
		RawKind:       n.Type(),
		StartPosition: r.Start,
		EndPosition:   r.End,
		Name:          nodeName(doc, n),
		Children:      []ASTNode{},
	}

	count := int(n.ChildCount())
	if maxDepth < 0 || depth < maxDepth {
		for i := 0; i < count; i++ {
			node.Children = append(node.Children, buildAST(doc, n.Child(i), depth+1, maxDepth))
		}
	} else if count > 0 {
		node.Truncated = true
	}
	if len(node.Children) == 0 {
		node.Text = doc.Text(n)
	}
	return node
}

// CountNodes counts the nodes of a serialized tree.
func CountNodes(n ASTNode) int {
	total := 1
	for _, c := range n.Children {
		total += CountNodes(c)
	}
	return total
}

// syntaxErrors lists ERROR and missing nodes in source order.
func syntaxErrors(doc *parser.Document) []SyntaxError {
	out := []SyntaxError{}
	root := doc.Root()
	if !root.HasError() {
		return out
	}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.IsMissing() {
			out = append(out, SyntaxError{RawKind: n.Type(), Missing: true, Location: doc.RangeOf(n)})
			return
		}
		if n.Type() == "ERROR" {
			out = append(out, SyntaxError{RawKind: n.Type(), Location: doc.RangeOf(n)})
		}
		if !n.HasError() {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}
