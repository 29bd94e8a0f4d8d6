package gbnf

// ruleDef is a catalog entry: the RHS of a fixed production plus the names
// of any other catalog rules it references, which addPrimitive installs
// transitively.
type ruleDef struct {
	rhs  string
	deps []string
}

// spaceRule is installed into every rule table up front; GBNF's "space"
// nonterminal absorbs the single optional separator whitespace the
// original grammar family emits after every value.
const spaceRule = `" "?`

var upTo15Digits = buildRepetition("[0-9]", 0, 15, "", false)

func buildUUIDRule() string {
	seg := func(n int) string { return buildRepetition("hex", n, n, "", false) }
	return `"\"" ` + seg(8) + ` "-" ` + seg(4) + ` "-" ` + seg(4) + ` "-" ` + seg(4) + ` "-" ` + seg(12) + ` "\"" space`
}

// primitiveCatalog is the fixed catalog of JSON-primitive productions
// (component B), keyed by name, with each entry's direct dependencies.
var primitiveCatalog = map[string]ruleDef{
	"boolean":       {`("true" | "false") space`, nil},
	"decimal-part":  {"[0-9] " + upTo15Digits, nil},
	"integral-part": {"[0-9] | [1-9] " + upTo15Digits, nil},
	"number":        {`("-"? integral-part) ("." decimal-part)? ([eE] [-+]? integral-part)? space`, []string{"integral-part", "decimal-part"}},
	"integer":       {`("-"? integral-part) space`, []string{"integral-part"}},
	"value":         {"object | array | string | number | boolean | null", []string{"object", "array", "string", "number", "boolean", "null"}},
	"object":        {`"{" space ( string ":" space value ("," space string ":" space value)* )? "}" space`, []string{"string", "value"}},
	"array":         {`"[" space ( value ("," space value)* )? "]" space`, []string{"value"}},
	"hex":           {`[0-9a-fA-F]`, nil},
	"uuid":          {buildUUIDRule(), []string{"hex"}},
	"char":          {`[^"\\] | "\\" (["\\/bfnrt] | "u" [0-9a-fA-F] [0-9a-fA-F] [0-9a-fA-F] [0-9a-fA-F])`, nil},
	"string":        {`"\"" char* "\"" space`, []string{"char"}},
	"null":          {`"null" space`, nil},
}

// formatCatalog is the fixed catalog of string-format productions
// (component B), keyed by catalog name ("<format>-string" variants wrap
// their bare counterpart in quotes).
var formatCatalog = map[string]ruleDef{
	"date":             {`[0-9] [0-9] [0-9] [0-9] "-" ( "0" [1-9] | "1" [0-2] ) "-" ( "0" [1-9] | [1-2] [0-9] | "3" [0-1] )`, nil},
	"time":             {`([01] [0-9] | "2" [0-3]) ":" [0-5] [0-9] ":" [0-5] [0-9] ( "." [0-9] [0-9] [0-9] )? ( "Z" | ( "+" | "-" ) ( [01] [0-9] | "2" [0-3] ) ":" [0-5] [0-9] )`, nil},
	"date-time":        {`date "T" time`, []string{"date", "time"}},
	"date-string":      {`"\"" date "\"" space`, []string{"date"}},
	"time-string":      {`"\"" time "\"" space`, []string{"time"}},
	"date-time-string": {`"\"" date-time "\"" space`, []string{"date-time"}},
}

// reservedNames mirrors the original implementation's is_reserved_name: a
// user-supplied rule name colliding with one of these is suffixed with "-"
// at visit time, before dispatch, separate from addRule's own
// RHS-collision handling over in the rule table.
var reservedNames = buildReservedNames()

func buildReservedNames() map[string]bool {
	names := map[string]bool{"root": true}
	for k := range primitiveCatalog {
		names[k] = true
	}
	for k := range formatCatalog {
		names[k] = true
	}
	return names
}

func catalogLookup(name string) (ruleDef, bool) {
	if def, ok := primitiveCatalog[name]; ok {
		return def, true
	}
	def, ok := formatCatalog[name]
	return def, ok
}
