package parser

var pythonTable = &Table{
	Language: LangPython,
	Functions: Rule{
		Kinds: []string{"function_definition"},
		Names: []string{"name"},
		Body:  "body",
		Type:  "return_type",
	},
	Variables: Rule{
		Kinds: []string{"assignment"},
		Names: []string{"left"},
		Descend: map[string]string{
			"pattern_list":  AllNamed,
			"tuple_pattern": AllNamed,
			"list_pattern":  AllNamed,
		},
		Type: "type",
	},
	Parameters: Rule{
		Kinds:     []string{"parameters", "lambda_parameters"},
		Names:     []string{AllNamed},
		Container: true,
		Descend: map[string]string{
			"default_parameter":        "name",
			"typed_default_parameter":  "name",
			"typed_parameter":          FirstNamed,
			"list_splat_pattern":       FirstNamed,
			"dictionary_splat_pattern": FirstNamed,
		},
		Type: "type",
	},
	Calls: Rule{
		Kinds: []string{"call"},
		Names: []string{"function"},
		Descend: map[string]string{
			"attribute": "attribute",
		},
	},
	Imports: Rule{
		Kinds: []string{"import_statement", "import_from_statement"},
		// from-imports list their module once; plain imports may list several.
		Names: []string{"module_name", "name"},
		Multi: true,
		Descend: map[string]string{
			"aliased_import": "name",
		},
		NameKinds: []string{"dotted_name", "relative_import"},
	},
	Identifiers: []string{"identifier"},
	Scopes:      []string{"lambda", "class_definition"},
}
