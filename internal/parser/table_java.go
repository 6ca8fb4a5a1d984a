package parser

var javaTable = &Table{
	Language: LangJava,
	Functions: Rule{
		Kinds: []string{"method_declaration", "constructor_declaration"},
		Names: []string{"name"},
		Body:  "body",
		Type:  "type",
	},
	Variables: Rule{
		Kinds: []string{"local_variable_declaration", "field_declaration"},
		Names: []string{"declarator"},
		Multi: true,
		Descend: map[string]string{
			"variable_declarator": "name",
		},
		Type: "type",
	},
	Parameters: Rule{
		Kinds: []string{"formal_parameter", "spread_parameter", "catch_formal_parameter"},
		Names: []string{"name", AllNamed},
		Descend: map[string]string{
			"variable_declarator": "name",
		},
		Type: "type",
	},
	Calls: Rule{
		Kinds:     []string{"method_invocation", "object_creation_expression"},
		Names:     []string{"name", "type"},
		Descend:   map[string]string{"generic_type": FirstNamed},
		NameKinds: []string{"identifier", "type_identifier"},
	},
	Imports: Rule{
		Kinds:     []string{"import_declaration"},
		Names:     []string{FirstNamed},
		NameKinds: []string{"scoped_identifier", "identifier"},
	},
	Identifiers: []string{"identifier"},
	Scopes:      []string{"block", "lambda_expression", "class_body"},
}
