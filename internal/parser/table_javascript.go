package parser

var jsFunctions = Rule{
	Kinds: []string{
		"function_declaration",
		"generator_function_declaration",
		"function_expression",
		"arrow_function",
		"method_definition",
	},
	Names:     []string{"name"},
	NameKinds: []string{"identifier", "property_identifier", "private_property_identifier"},
	Body:      "body",
	Parents:   map[string]string{"variable_declarator": "name"},
}

var jsParameters = Rule{
	Kinds:     []string{"formal_parameters"},
	Names:     []string{AllNamed},
	Container: true,
	Descend: map[string]string{
		"assignment_pattern": "left",
		"rest_pattern":       AllNamed,
		"required_parameter": "pattern",
		"optional_parameter": "pattern",
	},
	Type: "type",
}

var jsCalls = Rule{
	Kinds: []string{"call_expression", "new_expression"},
	Names: []string{"function", "constructor"},
	Descend: map[string]string{
		"member_expression":        "property",
		"parenthesized_expression": AllNamed,
	},
	NameKinds: []string{"identifier", "property_identifier", "private_property_identifier"},
}

var jsImports = Rule{
	Kinds:     []string{"import_statement", "export_statement"},
	Names:     []string{"source"},
	NameKinds: []string{"string"},
	Trim:      "\"'`",
}

var javascriptTable = &Table{
	Language:  LangJavaScript,
	Functions: jsFunctions,
	Variables: Rule{
		Kinds: []string{"variable_declarator"},
		Names: []string{"name"},
	},
	Parameters:  jsParameters,
	Calls:       jsCalls,
	Imports:     jsImports,
	Identifiers: []string{"identifier", "property_identifier", "shorthand_property_identifier"},
	Scopes:      []string{"statement_block", "class_body"},
	Loaders:     []string{"require"},
}

// TypeScript shares the JavaScript taxonomy and adds annotations.
var typescriptTable = &Table{
	Language:  LangTypeScript,
	Functions: jsFunctions,
	Variables: Rule{
		Kinds: []string{"variable_declarator"},
		Names: []string{"name"},
		Type:  "type",
	},
	Parameters:  jsParameters,
	Calls:       jsCalls,
	Imports:     jsImports,
	Identifiers: []string{"identifier", "property_identifier", "shorthand_property_identifier"},
	Scopes:      []string{"statement_block", "class_body"},
	Loaders:     []string{"require"},
}
