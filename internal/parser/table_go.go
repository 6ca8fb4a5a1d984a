package parser

var goTable = &Table{
	Language: LangGo,
	Functions: Rule{
		Kinds: []string{"function_declaration", "method_declaration"},
		Names: []string{"name"},
		Body:  "body",
		Type:  "result",
	},
	Variables: Rule{
		Kinds: []string{"var_spec", "const_spec", "short_var_declaration", "range_clause"},
		Names: []string{"name", "left"},
		Multi: true,
		Descend: map[string]string{
			"expression_list": AllNamed,
		},
		Type: "type",
	},
	Parameters: Rule{
		Kinds: []string{"parameter_declaration", "variadic_parameter_declaration"},
		Names: []string{"name"},
		Multi: true,
		Type:  "type",
	},
	Calls: Rule{
		Kinds: []string{"call_expression"},
		Names: []string{"function"},
		Descend: map[string]string{
			"selector_expression":      "field",
			"parenthesized_expression": AllNamed,
			"generic_type":             "type",
		},
	},
	Imports: Rule{
		Kinds:     []string{"import_spec"},
		Names:     []string{"path"},
		NameKinds: []string{"interpreted_string_literal", "raw_string_literal"},
		Trim:      "\"`",
	},
	Identifiers: []string{"identifier", "field_identifier"},
	Scopes:      []string{"block", "func_literal"},
}
