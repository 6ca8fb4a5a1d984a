package parser

// TOML has keys but nothing callable, so call graphs are unavailable.
var tomlTable = &Table{
	Language: LangTOML,
	Variables: Rule{
		Kinds:     []string{"pair"},
		Names:     []string{FirstNamed},
		NameKinds: []string{"bare_key", "quoted_key", "dotted_key"},
	},
	Identifiers: []string{"bare_key", "quoted_key", "dotted_key"},
	Scopes:      []string{"table", "table_array_element"},
}
