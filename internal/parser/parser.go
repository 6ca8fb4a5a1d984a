// Package parser owns the grammar registry, the per-language node-kind
// mapping tables and parsed documents.
package parser

import (
	"context"
	"sync"
	"unicode/utf8"

	tserrors "github.com/heefoo/treesitter-mcp/internal/errors"
	sitter "github.com/smacker/go-tree-sitter"
)

// Parser turns source text of one language into Documents. It is safe for
// concurrent use; each parse borrows a tree-sitter parser from a pool.
type Parser struct {
	grammar *Grammar
	pool    sync.Pool
}

func newParser(g *Grammar) *Parser {
	p := &Parser{grammar: g}
	p.pool.New = func() any {
		sp := sitter.NewParser()
		sp.SetLanguage(g.lang)
		return sp
	}
	return p
}

// GetParser returns the process wide parser for a language, initializing
// the grammar on first use.
func GetParser(lang Language) (*Parser, error) {
	g, err := Lookup(lang)
	if err != nil {
		return nil, err
	}
	g.init()
	return g.parser, nil
}

// Parse builds a Document from source. The caller must Close it.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*Document, error) {
	if !utf8.Valid(source) {
		return nil, tserrors.New(tserrors.KindParseFailure, "parse", "source is not valid UTF-8").WithPath(path)
	}

	sp := p.pool.Get().(*sitter.Parser)
	tree, err := sp.ParseCtx(ctx, nil, source)
	// A cancelled parse leaves the parser mid-state.
	sp.Reset()
	p.pool.Put(sp)
	if err != nil {
		return nil, tserrors.Wrap(tserrors.KindParseFailure, "parse", err).WithPath(path)
	}
	if tree == nil {
		return nil, tserrors.New(tserrors.KindParseFailure, "parse", "parser produced no tree").WithPath(path)
	}

	return newDocument(path, p.grammar, source, tree), nil
}
