package analyzer

import (
	"sort"

	"github.com/hbollon/go-edlib"
	"github.com/heefoo/treesitter-mcp/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

const (
	maxSuggestions      = 5
	suggestionThreshold = 0.7
)

// FindUsage returns every definition and reference of name in source order.
// Records carry the enclosing function as scope, but references are matched
// textually: a name shadowed in another scope is still reported.
func FindUsage(doc *parser.Document, name string) []UsageRecord {
	return buildIndex(doc).usages(name)
}

// FindFunction returns the function definitions named name.
func FindFunction(doc *parser.Document, name string) DefinitionResult {
	return buildIndex(doc).definitions(name, SymbolFunction)
}

// FindVariable returns the variable definitions named name.
func FindVariable(doc *parser.Document, name string) DefinitionResult {
	return buildIndex(doc).definitions(name, SymbolVariable)
}

func (x *index) usages(name string) []UsageRecord {
	out := []UsageRecord{}
	if name == "" {
		return out
	}

	var walk func(n *sitter.Node, scope string)
	walk = func(n *sitter.Node, scope string) {
		if int(n.EndByte()-n.StartByte()) == len(name) {
			key := keyOf(n)
			if ref, ok := x.defs[key]; ok {
				if sym := x.symbol(ref); sym.Name == name {
					out = append(out, UsageRecord{
						Name:       name,
						Kind:       UsageDefinition,
						SymbolKind: sym.Kind,
						Location:   sym.NameLocation,
						RawKind:    key.kind,
						Scope:      sym.Scope,
					})
				}
			} else if x.table.IsIdentifier(key.kind) && x.doc.Text(n) == name {
				out = append(out, UsageRecord{
					Name:     name,
					Kind:     UsageReference,
					Location: x.doc.RangeOf(n),
					RawKind:  key.kind,
					Scope:    scope,
				})
			}
		}

		if x.table.IsScope(n.Type()) {
			if s, ok := x.scopes[keyOf(n)]; ok {
				scope = s
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), scope)
		}
	}
	walk(x.doc.Root(), "")
	return out
}

func (x *index) definitions(name string, kind SymbolKind) DefinitionResult {
	res := DefinitionResult{Name: name, Definitions: []UsageRecord{}}
	for _, u := range x.usages(name) {
		if u.Kind == UsageDefinition && u.SymbolKind == kind {
			res.Definitions = append(res.Definitions, u)
		}
	}
	if len(res.Definitions) == 0 {
		res.Suggestions = suggest(name, x.allNames(kind))
	}
	return res
}

// suggest ranks candidates by Jaro-Winkler similarity to name.
func suggest(name string, candidates []string) []string {
	type scored struct {
		name  string
		score float32
	}
	var hits []scored
	for _, c := range candidates {
		score, err := edlib.StringsSimilarity(name, c, edlib.JaroWinkler)
		if err != nil || score < suggestionThreshold {
			continue
		}
		hits = append(hits, scored{c, score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	var out []string
	for i := 0; i < len(hits) && i < maxSuggestions; i++ {
		out = append(out, hits[i].name)
	}
	return out
}
