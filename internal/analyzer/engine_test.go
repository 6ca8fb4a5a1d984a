package analyzer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	tserrors "github.com/heefoo/treesitter-mcp/internal/errors"
	"github.com/heefoo/treesitter-mcp/internal/parser"
	"github.com/heefoo/treesitter-mcp/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExecuteOperations(t *testing.T) {
	path := writeFile(t, t.TempDir(), "math.c", cAddMain)
	e := NewEngine()
	ctx := context.Background()

	res, err := e.Execute(ctx, Request{Operation: OpAnalyzeFile, FilePath: path})
	require.NoError(t, err)
	analysis := res.(FileAnalysis)
	assert.Equal(t, parser.LangC, analysis.Language)
	assert.Equal(t, []string{"add", "main"}, names(analysis.Functions))

	res, err = e.Execute(ctx, Request{Operation: OpFindFunction, FilePath: path, Name: "add"})
	require.NoError(t, err)
	assert.Len(t, res.(DefinitionResult).Definitions, 1)

	res, err = e.Execute(ctx, Request{Operation: OpGetCallGraph, FilePath: path})
	require.NoError(t, err)
	assert.Len(t, res.(CallGraph).Edges, 1)

	res, err = e.Execute(ctx, Request{Operation: OpFindUsage, FilePath: path, Name: "add"})
	require.NoError(t, err)
	assert.Len(t, res.([]UsageRecord), 2)

	depth := 1
	res, err = e.Execute(ctx, Request{Operation: OpGetAST, FilePath: path, MaxDepth: &depth})
	require.NoError(t, err)
	assert.Equal(t, 3, CountNodes(res.(ASTNode)))

	res, err = e.Execute(ctx, Request{Operation: OpNodeAt, FilePath: path, Position: parser.Position{Row: 0, Column: 5}})
	require.NoError(t, err)
	assert.Equal(t, "add", res.(NodeView).Text)

	res, err = e.Execute(ctx, Request{Operation: OpGetSupportedLanguages})
	require.NoError(t, err)
	langs := res.([]LanguageInfo)
	require.Len(t, langs, len(parser.SupportedLanguages()))
	for _, l := range langs {
		if l.Language == parser.LangTOML {
			assert.False(t, l.CallGraph)
			assert.Equal(t, []string{".toml"}, l.Extensions)
		}
	}
}

func TestExecuteInlineSourceAndLanguageOverride(t *testing.T) {
	e := NewEngine()

	res, err := e.Execute(context.Background(), Request{
		Operation: OpRunQuery,
		FilePath:  "snippet.txt",
		Source:    []byte("total = price * qty\n"),
		Language:  "py",
		Query:     "(identifier) @id",
	})
	require.NoError(t, err)
	assert.Len(t, res.([]QueryCapture), 3)
}

func TestExecuteErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", "x = 1\n")
	e := NewEngine()
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
		kind tserrors.Kind
	}{
		{"unknown operation", Request{Operation: "explode", FilePath: path}, tserrors.KindInvalidRequest},
		{"missing path", Request{Operation: OpAnalyzeFile}, tserrors.KindInvalidRequest},
		{"missing name", Request{Operation: OpFindUsage, FilePath: path}, tserrors.KindInvalidRequest},
		{"missing query", Request{Operation: OpRunQuery, FilePath: path, Query: "  "}, tserrors.KindInvalidRequest},
		{"unknown extension", Request{Operation: OpAnalyzeFile, FilePath: filepath.Join(dir, "notes.txt")}, tserrors.KindUnknownExtension},
		{"unsupported language", Request{Operation: OpAnalyzeFile, FilePath: path, Language: "cobol"}, tserrors.KindUnsupportedLanguage},
		{"missing file", Request{Operation: OpAnalyzeFile, FilePath: filepath.Join(dir, "gone.py")}, tserrors.KindIO},
		{"bad query", Request{Operation: OpRunQuery, FilePath: path, Query: "(nope @x)"}, tserrors.KindQuerySyntax},
		{"call graph for toml", Request{Operation: OpGetCallGraph, FilePath: "a.toml", Source: []byte("a = 1\n")}, tserrors.KindUnsupportedForLanguage},
		{"invalid utf8", Request{Operation: OpAnalyzeFile, FilePath: "b.py", Source: []byte{0xff}}, tserrors.KindParseFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Execute(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, tserrors.KindOf(err))
		})
	}
}

func TestExecuteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	for lang, src := range samples {
		ext := map[parser.Language]string{
			parser.LangC: ".c", parser.LangCPP: ".cpp", parser.LangGo: ".go",
			parser.LangPython: ".py", parser.LangJavaScript: ".js", parser.LangTypeScript: ".ts",
			parser.LangJava: ".java", parser.LangRust: ".rs", parser.LangTOML: ".toml",
		}[lang]
		path := writeFile(t, dir, "sample"+ext, src)

		for _, op := range []string{OpAnalyzeFile, OpGetAST} {
			first, err := NewEngine().Execute(context.Background(), Request{Operation: op, FilePath: path})
			require.NoError(t, err)
			second, err := NewEngine().Execute(context.Background(), Request{Operation: op, FilePath: path})
			require.NoError(t, err)

			a, err := json.Marshal(first)
			require.NoError(t, err)
			b, err := json.Marshal(second)
			require.NoError(t, err)
			assert.Equal(t, string(a), string(b), "%s %s", lang, op)
		}
	}
}

func TestExecuteUsesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", "x = 1\n")
	e := NewEngine(WithCache(16))
	ctx := context.Background()
	req := Request{Operation: OpAnalyzeFile, FilePath: path}

	_, err := e.Execute(ctx, req)
	require.NoError(t, err)
	_, err = e.Execute(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e.Cache().Stats().Hits)

	// changed content is never served from the cache
	writeFile(t, dir, "a.py", "y = 2\n")
	res, err := e.Execute(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, names(res.(FileAnalysis).Variables))
	assert.Equal(t, uint64(1), e.Cache().Stats().Hits)
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(2)
	c.Put("a.py", "a.py\x00one", 1, "r1")
	c.Put("a.py", "a.py\x00two", 1, "r2")

	got, ok := c.Get("a.py\x00one", 1)
	require.True(t, ok)
	assert.Equal(t, "r1", got)

	_, ok = c.Get("a.py\x00one", 2)
	assert.False(t, ok)
	_, ok = c.Get("a.py\x00one", 1)
	assert.False(t, ok, "hash mismatch evicts")

	c.Put("b.py", "b.py\x00one", 1, "r3")
	c.Invalidate("a.py")
	_, ok = c.Get("a.py\x00two", 1)
	assert.False(t, ok)
	_, ok = c.Get("b.py\x00one", 1)
	assert.True(t, ok)
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestExecuteAllKeepsOrderAndIsolatesErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.go", "package x\nfunc F() {}\n")
	bad := filepath.Join(dir, "missing.rs")
	other := writeFile(t, dir, "other.py", "def g():\n    pass\n")

	e := NewEngine(WithWorkers(2))
	results := e.AnalyzeFiles(context.Background(), []string{good, bad, other})
	require.Len(t, results, 3)

	assert.Equal(t, good, results[0].FilePath)
	assert.Nil(t, results[0].Error)
	assert.Equal(t, []string{"F"}, names(results[0].Result.(FileAnalysis).Functions))

	require.NotNil(t, results[1].Error)
	assert.Equal(t, tserrors.KindIO, results[1].Error.Kind)
	assert.Nil(t, results[1].Result)

	assert.Nil(t, results[2].Error)
}

func TestCollectFilesHonoursFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\nfunc main() {}\n")
	writeFile(t, dir, "vendor/dep.go", "package dep\n")
	writeFile(t, dir, "gen/api.gen.go", "package gen\n")
	writeFile(t, dir, "README.md", "# readme\n")
	writeFile(t, dir, ".gitignore", "*.gen.go\n")

	files, err := CollectFiles(dir, util.NewFilter(dir, []string{"vendor"}, true))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "main.go")}, files)

	files, err = CollectFiles(dir, util.NewFilter(dir, nil, false))
	require.NoError(t, err)
	assert.Len(t, files, 3)
}
