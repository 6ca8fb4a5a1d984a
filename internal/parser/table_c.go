package parser

var cDeclarators = map[string]string{
	"function_declarator":      "declarator",
	"pointer_declarator":       "declarator",
	"array_declarator":         "declarator",
	"init_declarator":          "declarator",
	"parenthesized_declarator": AllNamed,
}

var cTable = &Table{
	Language: LangC,
	Functions: Rule{
		Kinds:   []string{"function_definition"},
		Names:   []string{"declarator"},
		Descend: cDeclarators,
		Body:    "body",
		Type:    "type",
	},
	Variables: Rule{
		Kinds:   []string{"declaration"},
		Names:   []string{"declarator"},
		Multi:   true,
		Descend: cDeclarators,
		// A declaration through a function declarator is a prototype.
		Stop: []string{"function_declarator"},
		Type: "type",
	},
	Parameters: Rule{
		Kinds:   []string{"parameter_declaration"},
		Names:   []string{"declarator"},
		Descend: cDeclarators,
		Type:    "type",
	},
	Calls: Rule{
		Kinds: []string{"call_expression"},
		Names: []string{"function"},
		Descend: map[string]string{
			"field_expression":         "field",
			"parenthesized_expression": AllNamed,
			"pointer_expression":       "argument",
		},
	},
	Imports: Rule{
		Kinds:     []string{"preproc_include"},
		Names:     []string{"path"},
		NameKinds: []string{"string_literal", "system_lib_string", "identifier"},
		Trim:      `"<> `,
	},
	Identifiers: []string{"identifier", "field_identifier"},
	Scopes:      []string{"compound_statement"},
}
