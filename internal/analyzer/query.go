package analyzer

import (
	tserrors "github.com/heefoo/treesitter-mcp/internal/errors"
	"github.com/heefoo/treesitter-mcp/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// RunQuery compiles pattern against the document's grammar and returns the
// captures in match order. Predicates such as #eq? and #match? are applied.
func RunQuery(doc *parser.Document, pattern string) ([]QueryCapture, error) {
	q, err := sitter.NewQuery([]byte(pattern), doc.Grammar())
	if err != nil {
		return nil, tserrors.Wrap(tserrors.KindQuerySyntax, "query", err).WithPath(doc.Path)
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, doc.Root())

	captures := []QueryCapture{}
	for {
		match, found := cursor.NextMatch()
		if !found {
			break
		}
		match = cursor.FilterPredicates(match, doc.Source)
		for _, capture := range match.Captures {
			captures = append(captures, QueryCapture{
				CaptureName: q.CaptureNameForId(capture.Index),
				Pattern:     int(match.PatternIndex),
				Node:        viewOf(doc, capture.Node, true),
			})
		}
	}
	return captures, nil
}

// NodeAt returns the deepest node containing the position. Positions outside
// the document yield the root.
func NodeAt(doc *parser.Document, pos parser.Position) NodeView {
	root := doc.Root()
	offset, ok := doc.Offset(pos.Row, pos.Column)
	if !ok {
		return viewOf(doc, root, false)
	}

	n := root
	for {
		next := childContaining(n, uint32(offset), uint32(offset))
		if next == nil {
			break
		}
		n = next
	}
	return viewOf(doc, n, true)
}

// NodeForRange returns the smallest node covering [start, end]. An inverted
// range is read with its ends swapped.
func NodeForRange(doc *parser.Document, start, end parser.Position) (NodeView, error) {
	from, okStart := doc.Offset(start.Row, start.Column)
	to, okEnd := doc.Offset(end.Row, end.Column)
	if !okStart || !okEnd {
		return NodeView{}, tserrors.New(tserrors.KindRangeNotFound, "node for range",
			"range %d:%d-%d:%d is outside the document", start.Row, start.Column, end.Row, end.Column).WithPath(doc.Path)
	}
	if from > to {
		from, to = to, from
	}

	n := doc.Root()
	for {
		next := childContaining(n, uint32(from), uint32(to))
		if next == nil {
			break
		}
		n = next
	}
	return viewOf(doc, n, true), nil
}

// childContaining returns the first child of n covering [from, to]. A point
// at a child's end only counts when the range is not empty.
func childContaining(n *sitter.Node, from, to uint32) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.StartByte() > from {
			return nil
		}
		if to < c.EndByte() || (from < to && to == c.EndByte()) {
			return c
		}
	}
	return nil
}

func viewOf(doc *parser.Document, n *sitter.Node, withText bool) NodeView {
	r := doc.RangeOf(n)
	v := NodeView{
		Kind:          string(doc.Table().RoleOfNode(n)),
		RawKind:       n.Type(),
		StartPosition: r.Start,
		EndPosition:   r.End,
		Name:          nodeName(doc, n),
	}
	if withText {
		v.Text = doc.Text(n)
	}
	return v
}

// nodeName returns the first name a role node declares or calls.
func nodeName(doc *parser.Document, n *sitter.Node) string {
	table := doc.Table()
	rule := table.RuleFor(table.RoleOfNode(n))
	if rule == nil {
		return ""
	}
	if names := table.Names(rule, n); len(names) > 0 {
		return doc.Text(names[0].Name)
	}
	return ""
}
