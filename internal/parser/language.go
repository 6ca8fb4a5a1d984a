package parser

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hbollon/go-edlib"
	tserrors "github.com/heefoo/treesitter-mcp/internal/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

type Language string

const (
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangTOML       Language = "toml"
)

// Grammar bundles a tree-sitter language with its mapping table.
type Grammar struct {
	Language   Language
	Extensions []string
	Table      *Table

	load   func() *sitter.Language
	once   sync.Once
	lang   *sitter.Language
	parser *Parser
}

func (g *Grammar) init() {
	g.once.Do(func() {
		g.lang = g.load()
		g.parser = newParser(g)
	})
}

// registry is filled during package init and never written afterwards.
var (
	registry   = map[Language]*Grammar{}
	extensions = map[string]Language{}
	aliases    = map[string]Language{
		"c++":    LangCPP,
		"cxx":    LangCPP,
		"golang": LangGo,
		"py":     LangPython,
		"js":     LangJavaScript,
		"ts":     LangTypeScript,
		"rs":     LangRust,
	}
)

func register(table *Table, load func() *sitter.Language, exts ...string) {
	table.compile()
	g := &Grammar{
		Language:   table.Language,
		Extensions: exts,
		Table:      table,
		load:       load,
	}
	registry[table.Language] = g
	for _, ext := range exts {
		extensions[ext] = table.Language
	}
}

func init() {
	register(cTable, c.GetLanguage, ".c")
	// Headers are ambiguous between C and C++; C++ is the superset.
	register(cppTable, cpp.GetLanguage, ".cpp", ".cc", ".cxx", ".c++", ".h", ".hpp", ".hh", ".hxx")
	register(goTable, golang.GetLanguage, ".go")
	register(pythonTable, python.GetLanguage, ".py", ".pyi")
	register(javascriptTable, javascript.GetLanguage, ".js", ".mjs", ".cjs", ".jsx")
	register(typescriptTable, typescript.GetLanguage, ".ts", ".mts", ".cts")
	register(rustTable, rust.GetLanguage, ".rs")
	register(javaTable, java.GetLanguage, ".java")
	register(tomlTable, toml.GetLanguage, ".toml")
}

// DetectLanguage maps a file path to a language by its extension.
func DetectLanguage(path string) (Language, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensions[ext]; ok {
		return lang, nil
	}
	if ext == "" {
		return "", tserrors.New(tserrors.KindUnknownExtension, "detect language", "file has no extension").WithPath(path)
	}
	return "", tserrors.New(tserrors.KindUnknownExtension, "detect language", "no language registered for extension %q", ext).WithPath(path)
}

// IsSupportedFile returns true if the file extension is supported
func IsSupportedFile(path string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ParseLanguage normalizes a user supplied language identifier.
func ParseLanguage(id string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	if _, ok := registry[Language(key)]; ok {
		return Language(key), nil
	}
	if lang, ok := aliases[key]; ok {
		return lang, nil
	}
	msg := "language %q is not supported"
	if s := suggestLanguage(key); s != "" {
		return "", tserrors.New(tserrors.KindUnsupportedLanguage, "lookup", msg+" (did you mean %q?)", id, s)
	}
	return "", tserrors.New(tserrors.KindUnsupportedLanguage, "lookup", msg, id)
}

// Lookup returns the registered grammar for a language.
func Lookup(lang Language) (*Grammar, error) {
	resolved, err := ParseLanguage(string(lang))
	if err != nil {
		return nil, err
	}
	return registry[resolved], nil
}

// RoleOf returns the role of a raw kind in the given language.
func RoleOf(lang Language, rawKind string) Role {
	g, err := Lookup(lang)
	if err != nil {
		return RoleNone
	}
	return g.Table.RoleOf(rawKind)
}

// SupportedLanguages lists the registered language ids in sorted order.
func SupportedLanguages() []Language {
	langs := make([]Language, 0, len(registry))
	for lang := range registry {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// suggestLanguage returns the closest registered id within edit distance 2.
func suggestLanguage(id string) string {
	best, bestDist := "", 3
	for _, lang := range SupportedLanguages() {
		if d := edlib.LevenshteinDistance(id, string(lang)); d < bestDist {
			best, bestDist = string(lang), d
		}
	}
	return best
}
