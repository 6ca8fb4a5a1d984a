package analyzer

import (
	"context"
	"fmt"
	"os"
	"strings"

	tserrors "github.com/heefoo/treesitter-mcp/internal/errors"
	"github.com/heefoo/treesitter-mcp/internal/parser"
)

// Operation names accepted by Engine.Execute.
const (
	OpAnalyzeFile           = "analyze_file"
	OpGetAST                = "get_ast"
	OpRunQuery              = "run_query"
	OpFindUsage             = "find_usage"
	OpFindFunction          = "find_function"
	OpFindVariable          = "find_variable"
	OpGetDependencies       = "get_dependencies"
	OpGetCallGraph          = "get_call_graph"
	OpNodeAt                = "node_at"
	OpNodeForRange          = "node_for_range"
	OpGetSupportedLanguages = "get_supported_languages"
)

// Operations lists every operation in dispatch order.
var Operations = []string{
	OpAnalyzeFile,
	OpGetAST,
	OpRunQuery,
	OpFindUsage,
	OpFindFunction,
	OpFindVariable,
	OpGetDependencies,
	OpGetCallGraph,
	OpNodeAt,
	OpNodeForRange,
	OpGetSupportedLanguages,
}

// Request is one analysis call. Source, when set, is analyzed instead of
// reading FilePath; FilePath still names the document and picks the
// language unless Language is given.
type Request struct {
	Operation string
	FilePath  string
	Source    []byte
	Language  string
	Name      string
	Query     string
	MaxDepth  *int
	Position  parser.Position
	End       parser.Position
}

// LanguageInfo describes one registered grammar.
type LanguageInfo struct {
	Language   parser.Language `json:"language"`
	Extensions []string        `json:"extensions"`
	CallGraph  bool            `json:"callGraph"`
}

// Engine dispatches requests to the analysis components.
type Engine struct {
	cache       *Cache
	workers     int
	maxASTDepth int
}

// Option configures the engine
type Option func(*Engine)

// WithCache enables the result cache with room for size entries.
func WithCache(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.cache = NewCache(size)
		}
	}
}

// WithWorkers bounds the parallelism of AnalyzeFiles.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithMaxASTDepth sets the depth used by get_ast when a request gives none.
func WithMaxASTDepth(depth int) Option {
	return func(e *Engine) {
		e.maxASTDepth = depth
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		workers:     4,
		maxASTDepth: -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache returns the result cache, or nil when caching is disabled.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Execute runs one operation. Failures are *errors.Error values.
func (e *Engine) Execute(ctx context.Context, req Request) (any, error) {
	if req.Operation == OpGetSupportedLanguages {
		return SupportedLanguages(), nil
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	lang, err := resolveLanguage(req)
	if err != nil {
		return nil, err
	}
	source := req.Source
	if source == nil {
		source, err = os.ReadFile(req.FilePath)
		if err != nil {
			return nil, tserrors.Wrap(tserrors.KindIO, "read", err).WithPath(req.FilePath)
		}
	}

	var key string
	var hash uint64
	if e.cache != nil {
		key = cacheKey(req, lang)
		hash = ContentHash(source)
		if result, ok := e.cache.Get(key, hash); ok {
			return result, nil
		}
	}

	p, err := parser.GetParser(lang)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(ctx, req.FilePath, source)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	result, err := e.dispatch(doc, req)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Put(req.FilePath, key, hash, result)
	}
	return result, nil
}

func (e *Engine) dispatch(doc *parser.Document, req Request) (any, error) {
	switch req.Operation {
	case OpAnalyzeFile:
		return Analyze(doc), nil
	case OpGetAST:
		depth := e.maxASTDepth
		if req.MaxDepth != nil {
			depth = *req.MaxDepth
		}
		return BuildAST(doc, depth), nil
	case OpRunQuery:
		return RunQuery(doc, req.Query)
	case OpFindUsage:
		return FindUsage(doc, req.Name), nil
	case OpFindFunction:
		return FindFunction(doc, req.Name), nil
	case OpFindVariable:
		return FindVariable(doc, req.Name), nil
	case OpGetDependencies:
		return ExtractSymbols(doc).Dependencies, nil
	case OpGetCallGraph:
		return BuildCallGraph(doc)
	case OpNodeAt:
		return NodeAt(doc, req.Position), nil
	case OpNodeForRange:
		return NodeForRange(doc, req.Position, req.End)
	}
	return nil, tserrors.New(tserrors.KindInvalidRequest, "dispatch", "unknown operation %q", req.Operation)
}

// Analyze is the default per-file extraction.
func Analyze(doc *parser.Document) FileAnalysis {
	symbols := ExtractSymbols(doc)
	return FileAnalysis{
		FilePath:     doc.Path,
		Language:     doc.Language,
		Functions:    symbols.Functions,
		Variables:    symbols.Variables,
		Parameters:   symbols.Parameters,
		Dependencies: symbols.Dependencies,
		SyntaxErrors: syntaxErrors(doc),
	}
}

// SupportedLanguages describes every registered grammar.
func SupportedLanguages() []LanguageInfo {
	langs := parser.SupportedLanguages()
	out := make([]LanguageInfo, 0, len(langs))
	for _, lang := range langs {
		g, err := parser.Lookup(lang)
		if err != nil {
			continue
		}
		out = append(out, LanguageInfo{
			Language:   lang,
			Extensions: g.Extensions,
			CallGraph:  g.Table.Calls.Defined() && g.Table.Functions.Defined(),
		})
	}
	return out
}

func validate(req Request) error {
	known := false
	for _, op := range Operations {
		if op == req.Operation {
			known = true
			break
		}
	}
	if !known {
		return tserrors.New(tserrors.KindInvalidRequest, "validate", "unknown operation %q", req.Operation)
	}
	if req.FilePath == "" {
		return tserrors.New(tserrors.KindInvalidRequest, "validate", "file path is required")
	}
	switch req.Operation {
	case OpFindUsage, OpFindFunction, OpFindVariable:
		if req.Name == "" {
			return tserrors.New(tserrors.KindInvalidRequest, "validate", "%s requires a name", req.Operation)
		}
	case OpRunQuery:
		if strings.TrimSpace(req.Query) == "" {
			return tserrors.New(tserrors.KindInvalidRequest, "validate", "run_query requires a query")
		}
	}
	return nil
}

func resolveLanguage(req Request) (parser.Language, error) {
	if req.Language != "" {
		return parser.ParseLanguage(req.Language)
	}
	return parser.DetectLanguage(req.FilePath)
}

// cacheKey starts with the path so entries can be invalidated per file.
func cacheKey(req Request, lang parser.Language) string {
	depth := "-"
	if req.MaxDepth != nil {
		depth = fmt.Sprint(*req.MaxDepth)
	}
	return strings.Join([]string{
		req.FilePath,
		string(lang),
		req.Operation,
		req.Name,
		req.Query,
		depth,
		fmt.Sprintf("%d:%d", req.Position.Row, req.Position.Column),
		fmt.Sprintf("%d:%d", req.End.Row, req.End.Column),
	}, "\x00")
}
