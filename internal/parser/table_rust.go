package parser

var rustPatterns = map[string]string{
	"tuple_pattern": AllNamed,
	"ref_pattern":   AllNamed,
	"mut_pattern":   AllNamed,
}

var rustTable = &Table{
	Language: LangRust,
	Functions: Rule{
		Kinds: []string{"function_item"},
		Names: []string{"name"},
		Body:  "body",
		Type:  "return_type",
	},
	Variables: Rule{
		Kinds:   []string{"let_declaration", "const_item", "static_item"},
		Names:   []string{"pattern", "name"},
		Descend: rustPatterns,
		Type:    "type",
	},
	Parameters: Rule{
		Kinds:   []string{"parameter", "closure_parameters"},
		Names:   []string{"pattern", AllNamed},
		Descend: rustPatterns,
		Type:    "type",
	},
	Calls: Rule{
		Kinds: []string{"call_expression", "macro_invocation"},
		Names: []string{"function", "macro"},
		Descend: map[string]string{
			"field_expression":  "field",
			"scoped_identifier": "name",
			"generic_function":  "function",
		},
	},
	Imports: Rule{
		Kinds: []string{"use_declaration"},
		Names: []string{"argument"},
		Descend: map[string]string{
			"use_as_clause": "path",
		},
		NameKinds: []string{"scoped_identifier", "identifier", "scoped_use_list", "use_wildcard", "use_list", "crate", "self"},
	},
	Identifiers: []string{"identifier", "field_identifier"},
	Scopes:      []string{"block", "closure_expression"},
}
