package parser

import (
	"context"
	"sort"
	"sync"
	"testing"

	tserrors "github.com/heefoo/treesitter-mcp/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, lang Language, src string) *Document {
	t.Helper()
	p, err := GetParser(lang)
	require.NoError(t, err)
	doc, err := p.Parse(context.Background(), "test", []byte(src))
	require.NoError(t, err)
	t.Cleanup(doc.Close)
	return doc
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"main.c", LangC},
		{"util.h", LangCPP},
		{"util.HPP", LangCPP},
		{"widget.cc", LangCPP},
		{"server.go", LangGo},
		{"script.py", LangPython},
		{"app.mjs", LangJavaScript},
		{"app.ts", LangTypeScript},
		{"lib.rs", LangRust},
		{"Main.java", LangJava},
		{"Cargo.toml", LangTOML},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectLanguage(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectLanguageUnknownExtension(t *testing.T) {
	_, err := DetectLanguage("notes.txt")
	require.Error(t, err)
	assert.True(t, tserrors.IsKind(err, tserrors.KindUnknownExtension))

	_, err = DetectLanguage("Makefile")
	assert.True(t, tserrors.IsKind(err, tserrors.KindUnknownExtension))
	assert.False(t, IsSupportedFile("Makefile"))
}

func TestParseLanguage(t *testing.T) {
	lang, err := ParseLanguage("C++")
	require.NoError(t, err)
	assert.Equal(t, LangCPP, lang)

	lang, err = ParseLanguage(" Python ")
	require.NoError(t, err)
	assert.Equal(t, LangPython, lang)

	_, err = ParseLanguage("pyhton")
	require.Error(t, err)
	assert.True(t, tserrors.IsKind(err, tserrors.KindUnsupportedLanguage))
	assert.Contains(t, err.Error(), `did you mean "python"`)

	_, err = ParseLanguage("cobol")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestSupportedLanguagesSorted(t *testing.T) {
	langs := SupportedLanguages()
	require.Len(t, langs, 9)
	assert.True(t, sort.SliceIsSorted(langs, func(i, j int) bool { return langs[i] < langs[j] }))
	assert.Contains(t, langs, LangTOML)
}

func TestRoleOf(t *testing.T) {
	assert.Equal(t, RoleFunction, RoleOf(LangC, "function_definition"))
	assert.Equal(t, RoleCall, RoleOf(LangPython, "call"))
	assert.Equal(t, RoleImport, RoleOf(LangGo, "import_spec"))
	assert.Equal(t, RoleScope, RoleOf(LangRust, "closure_expression"))
	assert.Equal(t, RoleIdentifier, RoleOf(LangJava, "identifier"))
	assert.Equal(t, RoleNone, RoleOf(LangC, "ERROR"))
	assert.Equal(t, RoleNone, RoleOf(LangC, "no_such_kind"))
	assert.Equal(t, RoleNone, RoleOf("cobol", "identifier"))
}

func TestParseRejectsInvalidUTF8(t *testing.T) {
	p, err := GetParser(LangC)
	require.NoError(t, err)
	_, err = p.Parse(context.Background(), "bad.c", []byte{0xff, 0xfe, 'x'})
	require.Error(t, err)
	assert.True(t, tserrors.IsKind(err, tserrors.KindParseFailure))
}

func TestGetParserConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := GetParser(LangGo)
			if !assert.NoError(t, err) {
				return
			}
			doc, err := p.Parse(context.Background(), "x.go", []byte("package x\nfunc f() {}\n"))
			if assert.NoError(t, err) {
				assert.Equal(t, "source_file", doc.Root().Type())
				doc.Close()
			}
		}()
	}
	wg.Wait()
}

func TestDocumentPositions(t *testing.T) {
	doc := parse(t, LangPython, "x = 1\nyy = x\n")

	off, ok := doc.Offset(1, 3)
	require.True(t, ok)
	assert.Equal(t, 9, off)

	_, ok = doc.Offset(0, 6)
	assert.False(t, ok)
	_, ok = doc.Offset(5, 0)
	assert.False(t, ok)

	// the empty last line still addresses the end of the source
	off, ok = doc.Offset(2, 0)
	require.True(t, ok)
	assert.Equal(t, 13, off)
}

func TestNamesMultiDeclarator(t *testing.T) {
	doc := parse(t, LangC, "int a, *b = 0, c[2];\nint proto(int x);\n")
	table := doc.Table()
	root := doc.Root()

	decl := root.NamedChild(0)
	require.Equal(t, "declaration", decl.Type())
	var names []string
	for _, m := range table.Names(&table.Variables, decl) {
		names = append(names, doc.Text(m.Name))
		assert.Equal(t, decl, m.Anchor)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	proto := root.NamedChild(1)
	require.Equal(t, "declaration", proto.Type())
	assert.Empty(t, table.Names(&table.Variables, proto))
}

func TestNamesContainerAnchors(t *testing.T) {
	doc := parse(t, LangPython, "def f(a, b=1, *rest, c: int = 2):\n    pass\n")
	table := doc.Table()
	fn := doc.Root().NamedChild(0)
	params := fn.ChildByFieldName("parameters")
	require.NotNil(t, params)

	var names []string
	for _, m := range table.Names(&table.Parameters, params) {
		names = append(names, doc.Text(m.Name))
		assert.NotEqual(t, params, m.Anchor)
	}
	assert.Equal(t, []string{"a", "b", "rest", "c"}, names)
}

func TestNamesFromParentDeclaration(t *testing.T) {
	doc := parse(t, LangJavaScript, "const twice = (x) => x * 2;\n[1].map((v) => v);\n")
	table := doc.Table()
	root := doc.Root()

	decl := root.NamedChild(0).NamedChild(0)
	require.Equal(t, "variable_declarator", decl.Type())
	arrow := decl.ChildByFieldName("value")
	require.NotNil(t, arrow)
	require.Equal(t, RoleFunction, table.RoleOfNode(arrow))

	names := table.Names(&table.Functions, arrow)
	require.Len(t, names, 1)
	assert.Equal(t, "twice", doc.Text(names[0].Name))
	assert.Equal(t, "variable_declarator", names[0].Anchor.Type())
	assert.Equal(t, "(x) =>", Signature(&table.Functions, arrow, doc.Source))

	// a callback argument has no declaration to borrow a name from
	call := root.NamedChild(1).NamedChild(0)
	require.Equal(t, "call_expression", call.Type())
	callback := call.ChildByFieldName("arguments").NamedChild(0)
	require.Equal(t, "arrow_function", callback.Type())
	assert.Empty(t, table.Names(&table.Functions, callback))
}

func TestRoleOfNodeIgnoresKeywords(t *testing.T) {
	doc := parse(t, LangPython, "g = lambda x: x\n")
	table := doc.Table()

	lambda := doc.Root().NamedChild(0).NamedChild(0).ChildByFieldName("right")
	require.NotNil(t, lambda)
	require.Equal(t, "lambda", lambda.Type())
	assert.Equal(t, RoleScope, table.RoleOfNode(lambda))

	keyword := lambda.Child(0)
	require.False(t, keyword.IsNamed())
	require.Equal(t, "lambda", keyword.Type())
	assert.Equal(t, RoleNone, table.RoleOfNode(keyword))
}

func TestSignatureAndType(t *testing.T) {
	doc := parse(t, LangC, "static int\nadd(int a,\n    int b) {\n  return a + b;\n}\n")
	fn := doc.Root().NamedChild(0)
	table := doc.Table()
	assert.Equal(t, "static int add(int a, int b)", Signature(&table.Functions, fn, doc.Source))
	assert.Equal(t, "int", DeclaredType(&table.Functions, fn, doc.Source))

	py := parse(t, LangPython, "def f(x) -> int:\n    return x\n")
	pfn := py.Root().NamedChild(0)
	ptable := py.Table()
	assert.Equal(t, "def f(x) -> int", Signature(&ptable.Functions, pfn, py.Source))
	assert.Equal(t, "int", DeclaredType(&ptable.Functions, pfn, py.Source))
}

func TestCloseIsIdempotent(t *testing.T) {
	p, err := GetParser(LangTOML)
	require.NoError(t, err)
	doc, err := p.Parse(context.Background(), "a.toml", []byte("a = 1\n"))
	require.NoError(t, err)
	doc.Close()
	doc.Close()
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("  a\n\tb   c \n"))
	assert.Equal(t, "", CollapseWhitespace(" \n "))
}
