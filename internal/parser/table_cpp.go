package parser

var cppDeclarators = map[string]string{
	"function_declarator":      "declarator",
	"pointer_declarator":       "declarator",
	"array_declarator":         "declarator",
	"init_declarator":          "declarator",
	"reference_declarator":     AllNamed,
	"parenthesized_declarator": AllNamed,
	"qualified_identifier":     "name",
	"variadic_declarator":      AllNamed,
}

var cppTable = &Table{
	Language: LangCPP,
	Functions: Rule{
		Kinds:     []string{"function_definition"},
		Names:     []string{"declarator"},
		Descend:   cppDeclarators,
		NameKinds: []string{"identifier", "field_identifier", "destructor_name", "operator_name"},
		Body:      "body",
		Type:      "type",
	},
	Variables: Rule{
		Kinds:   []string{"declaration"},
		Names:   []string{"declarator"},
		Multi:   true,
		Descend: cppDeclarators,
		Stop:    []string{"function_declarator"},
		Type:    "type",
	},
	Parameters: Rule{
		Kinds: []string{
			"parameter_declaration",
			"optional_parameter_declaration",
			"variadic_parameter_declaration",
		},
		Names:   []string{"declarator"},
		Descend: cppDeclarators,
		Type:    "type",
	},
	Calls: Rule{
		Kinds: []string{"call_expression"},
		Names: []string{"function"},
		Descend: map[string]string{
			"field_expression":         "field",
			"qualified_identifier":     "name",
			"template_function":        "name",
			"template_method":          "name",
			"parenthesized_expression": AllNamed,
			"pointer_expression":       "argument",
		},
		NameKinds: []string{"identifier", "field_identifier", "destructor_name"},
	},
	Imports: Rule{
		Kinds:     []string{"preproc_include"},
		Names:     []string{"path"},
		NameKinds: []string{"string_literal", "system_lib_string", "identifier"},
		Trim:      `"<> `,
	},
	Identifiers: []string{"identifier", "field_identifier"},
	Scopes:      []string{"compound_statement", "lambda_expression"},
}
