package analyzer

import (
	"slices"
	"strings"

	"github.com/heefoo/treesitter-mcp/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// nodeKey identifies a node within one tree.
type nodeKey struct {
	start, end uint32
	kind       string
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), kind: n.Type()}
}

// callSite is a call node attributed to every named function whose range
// holds it.
type callSite struct {
	owners []int // indexes into Symbols.Functions, outermost first
	node   *sitter.Node
}

// defRef locates a symbol in one of the Symbols lists.
type defRef struct {
	kind SymbolKind
	i    int
}

// index is everything one traversal of a document yields.
type index struct {
	doc     *parser.Document
	table   *parser.Table
	symbols Symbols

	// definition name nodes mapped to their symbols
	defs map[nodeKey]defRef

	// function nodes mapped to the scope name they open
	scopes map[nodeKey]string

	calls []callSite
}

// ExtractSymbols walks the document once and returns its functions,
// variables, parameters and dependencies in source order.
func ExtractSymbols(doc *parser.Document) Symbols {
	return buildIndex(doc).symbols
}

func buildIndex(doc *parser.Document) *index {
	x := &index{
		doc:    doc,
		table:  doc.Table(),
		defs:   make(map[nodeKey]defRef),
		scopes: make(map[nodeKey]string),
		symbols: Symbols{
			Functions:    []Symbol{},
			Variables:    []Symbol{},
			Parameters:   []Symbol{},
			Dependencies: []Dependency{},
		},
	}
	x.walk(doc.Root(), "", nil)
	return x
}

// symbol resolves a definition reference.
func (x *index) symbol(ref defRef) *Symbol {
	switch ref.kind {
	case SymbolFunction:
		return &x.symbols.Functions[ref.i]
	case SymbolVariable:
		return &x.symbols.Variables[ref.i]
	default:
		return &x.symbols.Parameters[ref.i]
	}
}

func (x *index) walk(n *sitter.Node, scope string, owners []int) {
	switch x.table.RoleOfNode(n) {
	case parser.RoleFunction:
		if fn := x.addDefinitions(SymbolFunction, &x.table.Functions, n, scope); fn >= 0 {
			scope = x.symbols.Functions[fn].Name
			owners = append(owners[:len(owners):len(owners)], fn)
			x.scopes[keyOf(n)] = scope
		}
	case parser.RoleVariable:
		x.addDefinitions(SymbolVariable, &x.table.Variables, n, scope)
	case parser.RoleParameter:
		x.addDefinitions(SymbolParameter, &x.table.Parameters, n, scope)
	case parser.RoleImport:
		x.addDependencies(n)
	case parser.RoleCall:
		x.calls = append(x.calls, callSite{owners: owners, node: n})
		x.addLoad(n)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		x.walk(n.Child(i), scope, owners)
	}
}

// addDefinitions records one symbol per name found in n. It returns the
// index of the first function added, or -1.
func (x *index) addDefinitions(kind SymbolKind, rule *parser.Rule, n *sitter.Node, scope string) int {
	first := -1
	for _, m := range x.table.Names(rule, n) {
		sym := Symbol{
			Name:         x.doc.Text(m.Name),
			Kind:         kind,
			Location:     x.doc.RangeOf(m.Anchor),
			NameLocation: x.doc.RangeOf(m.Name),
			DeclaredType: parser.DeclaredType(rule, m.Anchor, x.doc.Source),
			RawKind:      m.Anchor.Type(),
			Scope:        scope,
		}
		ref := defRef{kind: kind}
		switch kind {
		case SymbolFunction:
			sym.Signature = parser.Signature(rule, n, x.doc.Source)
			ref.i = len(x.symbols.Functions)
			if first < 0 {
				first = ref.i
			}
			x.symbols.Functions = append(x.symbols.Functions, sym)
		case SymbolVariable:
			ref.i = len(x.symbols.Variables)
			x.symbols.Variables = append(x.symbols.Variables, sym)
		case SymbolParameter:
			ref.i = len(x.symbols.Parameters)
			x.symbols.Parameters = append(x.symbols.Parameters, sym)
		}
		// The first role to claim a name node keeps it, except that a
		// function named by its declaration takes the name from the variable.
		key := keyOf(m.Name)
		if _, ok := x.defs[key]; !ok || (kind == SymbolFunction && m.Anchor != n) {
			x.defs[key] = ref
		}
	}
	return first
}

func (x *index) addDependencies(n *sitter.Node) {
	rule := &x.table.Imports
	for _, m := range x.table.Names(rule, n) {
		path := strings.TrimSpace(strings.Trim(x.doc.Text(m.Name), rule.Trim))
		if path == "" {
			continue
		}
		x.symbols.Dependencies = append(x.symbols.Dependencies, Dependency{
			Path:     path,
			Location: x.doc.RangeOf(m.Name),
			RawKind:  n.Type(),
		})
	}
}

// addLoad records the string argument of a loader call such as
// `require("x")` as a dependency.
func (x *index) addLoad(n *sitter.Node) {
	if len(x.table.Loaders) == 0 {
		return
	}
	names := x.table.Names(&x.table.Calls, n)
	if len(names) == 0 || !slices.Contains(x.table.Loaders, x.doc.Text(names[len(names)-1].Name)) {
		return
	}
	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	arg := args.NamedChild(0)
	if !slices.Contains(x.table.Imports.NameKinds, arg.Type()) {
		return
	}
	path := strings.TrimSpace(strings.Trim(x.doc.Text(arg), x.table.Imports.Trim))
	if path == "" {
		return
	}
	x.symbols.Dependencies = append(x.symbols.Dependencies, Dependency{
		Path:     path,
		Location: x.doc.RangeOf(arg),
		RawKind:  n.Type(),
	})
}

// functionNames maps each function name to its first definition.
func (x *index) functionNames() map[string]*Symbol {
	names := make(map[string]*Symbol, len(x.symbols.Functions))
	for i := range x.symbols.Functions {
		fn := &x.symbols.Functions[i]
		if _, ok := names[fn.Name]; !ok {
			names[fn.Name] = fn
		}
	}
	return names
}

// allNames returns every distinct symbol name of the given kinds.
func (x *index) allNames(kinds ...SymbolKind) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(list []Symbol) {
		for _, s := range list {
			if !seen[s.Name] {
				seen[s.Name] = true
				out = append(out, s.Name)
			}
		}
	}
	for _, k := range kinds {
		switch k {
		case SymbolFunction:
			add(x.symbols.Functions)
		case SymbolVariable:
			add(x.symbols.Variables)
		case SymbolParameter:
			add(x.symbols.Parameters)
		}
	}
	return out
}
