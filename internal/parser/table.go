package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Role is the language independent meaning of a grammar node kind.
type Role string

const (
	RoleNone       Role = ""
	RoleFunction   Role = "function-definition"
	RoleVariable   Role = "variable-definition"
	RoleParameter  Role = "parameter"
	RoleCall       Role = "call-expression"
	RoleImport     Role = "import"
	RoleScope      Role = "scope"
	RoleIdentifier Role = "identifier"
)

// Child selectors usable in Rule.Names and Rule.Descend besides field names.
const (
	FirstNamed = "^"
	AllNamed   = "*"
)

// maxDescent bounds how deep name resolution follows wrapper nodes.
const maxDescent = 8

// Rule tells the engine which grammar kinds carry a role and how to find the
// name inside such a node.
type Rule struct {
	Kinds []string

	// Names are child selectors tried in order; the first one that selects
	// anything is used.
	Names []string

	// Multi collects every child carrying the selected field instead of only
	// the first one (e.g. `int a, b;`).
	Multi bool

	// Container marks list nodes whose children are individual declarations;
	// each selected child becomes the symbol's location.
	Container bool

	// Descend maps wrapper kinds met on the way to the name to the selector
	// that leads further down.
	Descend map[string]string

	// Stop kinds abort name resolution for their subtree.
	Stop []string

	// NameKinds overrides Table.Identifiers as the accepted name kinds.
	NameKinds []string

	// Body is the field holding a definition body; the signature ends there.
	Body string

	// Type is the field holding a syntactically visible declared type.
	Type string

	// Trim is a cutset removed from both ends of extracted import paths.
	Trim string

	// Parents name an otherwise anonymous node after the declaration that
	// holds it: parent kind mapped to the selector of the name
	// (e.g. `const f = () => {}`).
	Parents map[string]string
}

// Defined reports whether the rule maps any grammar kinds.
func (r *Rule) Defined() bool {
	return len(r.Kinds) > 0
}

// Table is the per-language mapping from grammar node kinds to roles. It is
// pure data: every algorithm in the analyzer is written against it.
type Table struct {
	Language Language

	Functions  Rule
	Variables  Rule
	Parameters Rule
	Calls      Rule
	Imports    Rule

	// Identifiers are the kinds that may name or reference a symbol.
	Identifiers []string

	// Scopes are block boundaries in addition to function definitions.
	Scopes []string

	// Loaders are callee names whose string argument is a dependency, as
	// with CommonJS require.
	Loaders []string

	roles  map[string]Role
	scopes map[string]bool
}

// compile builds the lookup maps. Called once at registration, before the
// table is shared between goroutines.
func (t *Table) compile() {
	t.roles = make(map[string]Role)
	t.scopes = make(map[string]bool)

	// Earlier assignments win when a kind appears under several roles.
	assign := func(role Role, kinds []string) {
		for _, k := range kinds {
			if _, ok := t.roles[k]; !ok {
				t.roles[k] = role
			}
		}
	}
	assign(RoleFunction, t.Functions.Kinds)
	assign(RoleVariable, t.Variables.Kinds)
	assign(RoleParameter, t.Parameters.Kinds)
	assign(RoleImport, t.Imports.Kinds)
	assign(RoleCall, t.Calls.Kinds)
	assign(RoleScope, t.Scopes)
	assign(RoleIdentifier, t.Identifiers)

	for _, k := range t.Functions.Kinds {
		t.scopes[k] = true
	}
	for _, k := range t.Scopes {
		t.scopes[k] = true
	}
}

// RoleOf returns the role of a raw grammar kind. Unmapped kinds, including
// tree-sitter's ERROR nodes, have no role.
func (t *Table) RoleOf(rawKind string) Role {
	if rawKind == "ERROR" {
		return RoleNone
	}
	return t.roles[rawKind]
}

// RoleOfNode returns the role of a node. Anonymous nodes (keywords and
// punctuation) have no role even when they share a mapped kind name.
func (t *Table) RoleOfNode(n *sitter.Node) Role {
	if n == nil || !n.IsNamed() {
		return RoleNone
	}
	return t.RoleOf(n.Type())
}

// IsScope reports whether the kind opens a lexical boundary.
func (t *Table) IsScope(rawKind string) bool {
	return t.scopes[rawKind]
}

// IsIdentifier reports whether the kind can reference a symbol by name.
func (t *Table) IsIdentifier(rawKind string) bool {
	return contains(t.Identifiers, rawKind)
}

// RuleFor returns the extraction rule for a definition-like role.
func (t *Table) RuleFor(role Role) *Rule {
	switch role {
	case RoleFunction:
		return &t.Functions
	case RoleVariable:
		return &t.Variables
	case RoleParameter:
		return &t.Parameters
	case RoleCall:
		return &t.Calls
	case RoleImport:
		return &t.Imports
	}
	return nil
}

// NameMatch is one name found inside a role node. Anchor is the node the
// name belongs to: the role node itself, or the list element for containers.
type NameMatch struct {
	Name   *sitter.Node
	Anchor *sitter.Node
}

// Selected returns the children chosen by the first of the rule's name
// selectors that selects anything.
func Selected(rule *Rule, node *sitter.Node) []*sitter.Node {
	if rule == nil || node == nil {
		return nil
	}
	for _, sel := range rule.Names {
		if children := selectChildren(node, sel, rule.Multi); len(children) > 0 {
			return children
		}
	}
	return nil
}

// Names resolves the name nodes of a role node according to its rule.
func (t *Table) Names(rule *Rule, node *sitter.Node) []NameMatch {
	if rule == nil {
		return nil
	}
	nameKinds := rule.NameKinds
	if len(nameKinds) == 0 {
		nameKinds = t.Identifiers
	}

	var out []NameMatch
	for _, c := range Selected(rule, node) {
		anchor := node
		if rule.Container {
			anchor = c
		}
		for _, n := range descend(rule, nameKinds, c, 0) {
			out = append(out, NameMatch{Name: n, Anchor: anchor})
		}
	}
	if len(out) == 0 && len(rule.Parents) > 0 {
		out = parentNames(rule, nameKinds, node)
	}
	return out
}

// parentNames resolves the name of an anonymous node from its parent. The
// parent becomes the anchor.
func parentNames(rule *Rule, nameKinds []string, node *sitter.Node) []NameMatch {
	parent := node.Parent()
	if parent == nil {
		return nil
	}
	sel, ok := rule.Parents[parent.Type()]
	if !ok {
		return nil
	}
	var out []NameMatch
	for _, c := range selectChildren(parent, sel, false) {
		for _, n := range descend(rule, nameKinds, c, 0) {
			out = append(out, NameMatch{Name: n, Anchor: parent})
		}
	}
	return out
}

func descend(rule *Rule, nameKinds []string, n *sitter.Node, depth int) []*sitter.Node {
	if n == nil || depth > maxDescent {
		return nil
	}
	kind := n.Type()
	if contains(rule.Stop, kind) {
		return nil
	}
	if contains(nameKinds, kind) {
		return []*sitter.Node{n}
	}
	sel, ok := rule.Descend[kind]
	if !ok {
		return nil
	}
	var out []*sitter.Node
	for _, c := range selectChildren(n, sel, true) {
		out = append(out, descend(rule, nameKinds, c, depth+1)...)
	}
	return out
}

// selectChildren applies a selector to the direct children of n.
func selectChildren(n *sitter.Node, sel string, multi bool) []*sitter.Node {
	switch sel {
	case FirstNamed:
		if n.NamedChildCount() == 0 {
			return nil
		}
		return []*sitter.Node{n.NamedChild(0)}
	case AllNamed:
		count := int(n.NamedChildCount())
		out := make([]*sitter.Node, 0, count)
		for i := 0; i < count; i++ {
			out = append(out, n.NamedChild(i))
		}
		return out
	}

	if !multi {
		if c := n.ChildByFieldName(sel); c != nil {
			return []*sitter.Node{c}
		}
		return nil
	}

	var out []*sitter.Node
	cursor := sitter.NewTreeCursor(n)
	defer cursor.Close()
	if !cursor.GoToFirstChild() {
		return nil
	}
	for {
		if cursor.CurrentFieldName() == sel {
			out = append(out, cursor.CurrentNode())
		}
		if !cursor.GoToNextSibling() {
			break
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Signature renders the header of a definition: its text up to the body,
// whitespace collapsed and trailing block openers removed.
func Signature(rule *Rule, node *sitter.Node, source []byte) string {
	end := node.EndByte()
	if rule.Body != "" {
		if body := node.ChildByFieldName(rule.Body); body != nil {
			end = body.StartByte()
		}
	}
	text := CollapseWhitespace(string(source[node.StartByte():end]))
	return strings.TrimSpace(strings.TrimRight(text, " {:"))
}

// DeclaredType returns the text of the rule's type field, if the node has one.
func DeclaredType(rule *Rule, node *sitter.Node, source []byte) string {
	if rule.Type == "" || node == nil {
		return ""
	}
	typ := node.ChildByFieldName(rule.Type)
	if typ == nil {
		return ""
	}
	text := CollapseWhitespace(NodeText(typ, source))
	return strings.TrimSpace(strings.TrimPrefix(text, ":"))
}
