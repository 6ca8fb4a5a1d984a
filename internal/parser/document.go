package parser

import (
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Position is a zero based location; column and offset count bytes.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Range is a half open span of source.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether r fully covers other.
func (r Range) Contains(other Range) bool {
	return r.Start.Offset <= other.Start.Offset && other.End.Offset <= r.End.Offset
}

// Document is one parsed source file. It exclusively owns the tree; nodes
// obtained from it must not be used after Close.
type Document struct {
	Path     string
	Language Language
	Source   []byte

	grammar    *Grammar
	tree       *sitter.Tree
	lineStarts []int
	closeOnce  sync.Once
}

func newDocument(path string, g *Grammar, source []byte, tree *sitter.Tree) *Document {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Document{
		Path:       path,
		Language:   g.Language,
		Source:     source,
		grammar:    g,
		tree:       tree,
		lineStarts: starts,
	}
}

// Root returns the root node of the syntax tree.
func (d *Document) Root() *sitter.Node {
	return d.tree.RootNode()
}

// Table returns the mapping table active for the document's language.
func (d *Document) Table() *Table {
	return d.grammar.Table
}

// Grammar returns the tree-sitter language the document was parsed with.
func (d *Document) Grammar() *sitter.Language {
	return d.grammar.lang
}

// Close releases the tree. Safe to call more than once.
func (d *Document) Close() {
	d.closeOnce.Do(func() {
		if d.tree != nil {
			d.tree.Close()
		}
	})
}

// Text returns the source text covered by n.
func (d *Document) Text(n *sitter.Node) string {
	return NodeText(n, d.Source)
}

// RangeOf converts a node's span into a Range.
func (d *Document) RangeOf(n *sitter.Node) Range {
	sp, ep := n.StartPoint(), n.EndPoint()
	return Range{
		Start: Position{Row: int(sp.Row), Column: int(sp.Column), Offset: int(n.StartByte())},
		End:   Position{Row: int(ep.Row), Column: int(ep.Column), Offset: int(n.EndByte())},
	}
}

// Offset converts a row and column into a byte offset. ok is false when the
// position lies outside the document.
func (d *Document) Offset(row, column int) (offset int, ok bool) {
	if row < 0 || column < 0 || row >= len(d.lineStarts) {
		return 0, false
	}
	lineEnd := len(d.Source)
	if row+1 < len(d.lineStarts) {
		lineEnd = d.lineStarts[row+1] - 1
	}
	offset = d.lineStarts[row] + column
	if offset > lineEnd {
		return 0, false
	}
	return offset, true
}

// NodeText returns the source text covered by n.
func NodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(source) || start > end {
		return ""
	}
	return string(source[start:end])
}

// CollapseWhitespace replaces each run of whitespace with a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
