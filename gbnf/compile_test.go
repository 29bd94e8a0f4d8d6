package gbnf

import (
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemagram/schemagram/jsonvalue"
	"github.com/schemagram/schemagram/logutil"
)

var ruleLinePattern = regexp.MustCompile(`^([A-Za-z0-9-]+) ::= .+$`)

func mustCompile(t *testing.T, schema string) (string, *Diagnostics) {
	t.Helper()
	grammar, diags, err := Compile([]byte(schema))
	require.NoError(t, err)
	return grammar, diags
}

func ruleNames(t *testing.T, grammar string) map[string]bool {
	t.Helper()
	names := make(map[string]bool)
	for _, line := range strings.Split(strings.TrimRight(grammar, "\n"), "\n") {
		if line == "" {
			continue
		}
		m := ruleLinePattern.FindStringSubmatch(line)
		require.NotNil(t, m, "malformed rule line: %q", line)
		names[m[1]] = true
	}
	return names
}

func TestCompileEmptySchemaFallsBackToObject(t *testing.T) {
	grammar, _ := mustCompile(t, `{}`)
	assert.Contains(t, grammar, "root ::= object")
}

func TestCompileScalarTypeString(t *testing.T) {
	grammar, _ := mustCompile(t, `{"type":"string"}`)
	assert.Contains(t, grammar, `root ::= "\"" char* "\"" space`)
}

func TestCompileEnumScenario(t *testing.T) {
	grammar, _ := mustCompile(t, `{"enum":["a",1,null]}`)
	assert.Contains(t, grammar, `root ::= "\"a\"" | "1" | "null"`)
}

func TestCompileConstWithHTMLSensitiveCharactersIsNotEscaped(t *testing.T) {
	grammar, _ := mustCompile(t, `{"const": "a<b&c>d"}`)
	assert.Contains(t, grammar, `root ::= "\"a<b&c>d\""`)
	assert.NotContains(t, grammar, `\u003c`)
	assert.NotContains(t, grammar, `\u0026`)
	assert.NotContains(t, grammar, `\u003e`)
}

func TestCompileRequiredAndOptionalProperties(t *testing.T) {
	grammar, _ := mustCompile(t, `{
		"type": "object",
		"properties": {"a": {"type": "string"}, "b": {"type": "string"}},
		"required": ["a"]
	}`)
	lines := strings.Split(grammar, "\n")
	require.NotEmpty(t, lines)
	var root string
	for _, line := range lines {
		if strings.HasPrefix(line, "root ::= ") {
			root = line
		}
	}
	assert.True(t, strings.HasPrefix(root, `root ::= "{" space a-kv`), "root = %q", root)
	assert.Contains(t, grammar, "a-kv ::=")
	assert.Contains(t, grammar, "b-kv ::=")
}

func TestCompileAdditionalPropertiesFalseEmitsNoAdditionalKv(t *testing.T) {
	grammar, _ := mustCompile(t, `{
		"type": "object",
		"properties": {"a": {"type": "string"}},
		"additionalProperties": false
	}`)
	assert.NotContains(t, grammar, "additional-kv")
}

func TestCompileUnanchoredPatternIsInvalid(t *testing.T) {
	_, diags, err := Compile([]byte(`{"type":"string","pattern":"abc"}`))
	require.Error(t, err)
	require.Len(t, diags.Errors, 1)
	assert.Equal(t, KindInvalidPattern, diags.Errors[0].Kind)
}

func TestCompileCyclicRefDoesNotInfinitelyRecurse(t *testing.T) {
	schema := `{
		"$ref": "#/$defs/node",
		"$defs": {
			"node": {
				"type": "object",
				"properties": {
					"value": {"type": "integer"},
					"next": {"$ref": "#/$defs/node"}
				}
			}
		}
	}`
	grammar, diags := mustCompile(t, schema)
	assert.Empty(t, diags.Errors)
	assert.Contains(t, grammar, "node ::=")
}

func TestCompileUUIDFormatMatchesGeneratedUUID(t *testing.T) {
	grammar, _ := mustCompile(t, `{"type":"string","format":"uuid"}`)
	assert.Contains(t, grammar, "root ::= "+buildUUIDRule())
	assert.Contains(t, grammar, "hex ::=")

	id := uuid.New().String()
	assert.Regexp(t, `^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`, id)
	var segs []string
	for _, part := range strings.Split(id, "-") {
		segs = append(segs, strings.TrimSuffix(strings.Repeat("hex ", len(part)), " "))
	}
	assert.Contains(t, grammar, `"\"" `+strings.Join(segs, ` "-" `)+` "\"" space`)
}

func TestCompileEveryReferencedRuleIsDefined(t *testing.T) {
	grammar, _ := mustCompile(t, `{
		"type": "object",
		"properties": {
			"id": {"type": "string", "format": "uuid"},
			"tags": {"type": "array", "items": {"type": "string"}},
			"status": {"enum": ["ok", "error"]}
		},
		"required": ["id"]
	}`)
	names := ruleNames(t, grammar)
	for _, want := range []string{"root", "id-kv", "tags-kv", "status-kv", "uuid", "hex", "string", "char"} {
		assert.True(t, names[want], "missing rule %q in:\n%s", want, grammar)
	}
	// Skip quoted terminals and character classes; every other word in a
	// right-hand side is a rule reference.
	tokenPattern := regexp.MustCompile(`"(?:[^"\\]|\\.)*"|\[(?:[^\]\\]|\\.)*\]|[A-Za-z][A-Za-z0-9-]*`)
	for _, line := range strings.Split(strings.TrimRight(grammar, "\n"), "\n") {
		_, rhs, _ := strings.Cut(line, " ::= ")
		for _, tok := range tokenPattern.FindAllString(rhs, -1) {
			if tok[0] != '"' && tok[0] != '[' {
				assert.True(t, names[tok], "rule %q referenced but not defined in:\n%s", tok, grammar)
			}
		}
	}
}

func TestCompileObjectValueCatalogCycleTerminates(t *testing.T) {
	grammar, diags := mustCompile(t, `{}`)
	assert.Empty(t, diags.Errors)
	names := ruleNames(t, grammar)
	for _, want := range []string{"object", "value", "array", "string", "number", "boolean", "null"} {
		assert.True(t, names[want], "missing rule %q in:\n%s", want, grammar)
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	schema := `{"type":"object","properties":{"a":{"type":"string"},"b":{"type":"integer"}},"required":["a"]}`
	g1, _ := mustCompile(t, schema)
	g2, _ := mustCompile(t, schema)
	assert.Equal(t, g1, g2)
}

func TestCompileFetchFailurePropagatesAsError(t *testing.T) {
	conv := NewConverter(Options{
		Fetch: func(uri string) (jsonvalue.Value, error) {
			return nil, assertError("boom")
		},
	})
	_, _, err := conv.CompileBytes([]byte(`{"$ref": "https://example.com/remote.json#/foo"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCompileWithCustomLogger(t *testing.T) {
	var buf strings.Builder
	logger := logutil.NewLogger(&buf, slog.LevelWarn)
	conv := NewConverter(Options{Logger: logger})
	_, _, err := conv.CompileBytes([]byte(`{"type":"string","pattern":"^(?=foo)$"}`))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Unsupported pattern syntax")
}

type assertError string

func (e assertError) Error() string { return string(e) }
