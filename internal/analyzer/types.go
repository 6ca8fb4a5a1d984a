// Package analyzer implements the language independent analysis engine:
// symbol extraction, usage resolution, call graphs, queries and AST views.
// Every algorithm here is written against parser.Table; nothing in this
// package knows a grammar's node kinds.
package analyzer

import (
	"github.com/heefoo/treesitter-mcp/internal/parser"
)

type SymbolKind string

const (
	SymbolFunction  SymbolKind = "function"
	SymbolVariable  SymbolKind = "variable"
	SymbolParameter SymbolKind = "parameter"
)

type UsageKind string

const (
	UsageDefinition UsageKind = "definition"
	UsageReference  UsageKind = "reference"
)

// Symbol is a named definition found in a document.
type Symbol struct {
	Name         string       `json:"name"`
	Kind         SymbolKind   `json:"kind"`
	Location     parser.Range `json:"location"`
	NameLocation parser.Range `json:"nameLocation"`
	Signature    string       `json:"signature,omitempty"`
	DeclaredType string       `json:"declaredType,omitempty"`
	RawKind      string       `json:"rawKind"`
	Scope        string       `json:"scope,omitempty"` // enclosing function
}

// Dependency is one import or include entry. Paths are never resolved.
type Dependency struct {
	Path     string       `json:"path"`
	Location parser.Range `json:"location"`
	RawKind  string       `json:"rawKind"`
}

// Symbols is the result of symbol extraction, each list in source order.
type Symbols struct {
	Functions    []Symbol     `json:"functions"`
	Variables    []Symbol     `json:"variables"`
	Parameters   []Symbol     `json:"parameters"`
	Dependencies []Dependency `json:"dependencies"`
}

// UsageRecord is one occurrence of a name.
type UsageRecord struct {
	Name       string       `json:"name"`
	Kind       UsageKind    `json:"kind"`
	SymbolKind SymbolKind   `json:"symbolKind,omitempty"`
	Location   parser.Range `json:"location"`
	RawKind    string       `json:"rawKind"`
	Scope      string       `json:"scope,omitempty"`
}

// CallGraphEdge links a function to one call site inside it.
type CallGraphEdge struct {
	Caller         Symbol        `json:"caller"`
	Callee         string        `json:"callee"`
	CalleeText     string        `json:"calleeText"`
	Resolved       bool          `json:"resolved"`
	CalleeLocation *parser.Range `json:"calleeLocation,omitempty"`
	CallSite       parser.Range  `json:"callSite"`
}

type CallGraph struct {
	Nodes []Symbol        `json:"nodes"`
	Edges []CallGraphEdge `json:"edges"`
}

// NodeView is a detached description of a syntax node.
type NodeView struct {
	Kind          string          `json:"kind"`
	RawKind       string          `json:"rawKind"`
	StartPosition parser.Position `json:"startPosition"`
	EndPosition   parser.Position `json:"endPosition"`
	Name          string          `json:"name,omitempty"`
	Text          string          `json:"text,omitempty"`
}

// QueryCapture is one captured node, in the order the query cursor
// produced it.
type QueryCapture struct {
	CaptureName string   `json:"captureName"`
	Pattern     int      `json:"pattern"`
	Node        NodeView `json:"node"`
}

// ASTNode is the serialized form of a syntax tree node.
type ASTNode struct {
	Kind          string          `json:"kind"`
	RawKind       string          `json:"rawKind"`
	StartPosition parser.Position `json:"startPosition"`
	EndPosition   parser.Position `json:"endPosition"`
	Name          string          `json:"name,omitempty"`
	Text          string          `json:"text,omitempty"`
	Truncated     bool            `json:"truncated,omitempty"`
	Children      []ASTNode       `json:"children"`
}

// SyntaxError marks a region the parser had to recover from.
type SyntaxError struct {
	RawKind  string       `json:"rawKind"`
	Missing  bool         `json:"missing,omitempty"`
	Location parser.Range `json:"location"`
}

// FileAnalysis is the default per-file result.
type FileAnalysis struct {
	FilePath     string          `json:"filePath"`
	Language     parser.Language `json:"language"`
	Functions    []Symbol        `json:"functions"`
	Variables    []Symbol        `json:"variables"`
	Parameters   []Symbol        `json:"parameters"`
	Dependencies []Dependency    `json:"dependencies"`
	SyntaxErrors []SyntaxError   `json:"syntaxErrors"`
}

// DefinitionResult answers find_function and find_variable. Suggestions are
// only filled when nothing matched.
type DefinitionResult struct {
	Name        string        `json:"name"`
	Definitions []UsageRecord `json:"definitions"`
	Suggestions []string      `json:"suggestions,omitempty"`
}
