package gbnf

import (
	"fmt"
	"log/slog"

	"github.com/emirpasic/gods/v2/sets/linkedhashset"

	"github.com/schemagram/schemagram/envconfig"
	"github.com/schemagram/schemagram/jsonvalue"
)

// Options configures an advanced Converter.
type Options struct {
	// Fetch retrieves the document at a remote $ref's base URI. The zero
	// value uses a no-op fetcher that returns an empty object for every
	// remote document, matching Compile's default.
	Fetch Fetcher
	// Dotall makes "." inside a regex pattern match any character,
	// including line terminators. Defaults to envconfig.Dotall() when a
	// Converter is built with NewConverter(Options{}).
	Dotall bool
	// Logger receives warnings accumulated during compilation. Defaults
	// to slog.Default().
	Logger *slog.Logger
}

// Converter holds all state for a single schema-to-grammar conversion. It
// is single-use: build a new one (via NewConverter or Compile) per call.
type Converter struct {
	opts        Options
	fetch       Fetcher
	logger      *slog.Logger
	rules       *ruleTable
	refs        *refIndex
	inProgress  *linkedhashset.Set[string]
	diagnostics *Diagnostics
}

// NewConverter constructs a Converter with opts. A zero Options uses the
// no-op fetcher, envconfig's GBNF_DOTALL default, and slog.Default().
// Use this constructor (rather than Compile) to pick up GBNF_DOTALL.
func NewConverter(opts Options) *Converter {
	if !opts.Dotall {
		opts.Dotall = envconfig.Dotall()
	}
	return newConverter(opts)
}

// newConverter builds a Converter from opts exactly as given, with no
// environment-variable seeding — the zero-config Compile entry point
// goes through this so GBNF_DOTALL never changes its behavior.
func newConverter(opts Options) *Converter {
	fetch := opts.Fetch
	if fetch == nil {
		fetch = noopFetcher
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Converter{
		opts:        opts,
		fetch:       fetch,
		logger:      logger,
		rules:       newRuleTable(),
		refs:        newRefIndex(),
		inProgress:  linkedhashset.New[string](),
		diagnostics: &Diagnostics{},
	}
	c.rules.add("space", spaceRule)
	return c
}

// addRule installs rhs under name in the rule table (component E),
// returning the name it was actually installed under.
func (c *Converter) addRule(name, rhs string) string {
	return c.rules.add(name, rhs)
}

// addPrimitive installs a built-in catalog entry (component B): every
// name def transitively depends on is installed first, under that
// dependency's own catalog name, before name itself is added — spec.md
// §4.2's "declared dependencies". A dependency already present in the
// rule table is left alone. That alone isn't enough to terminate the
// object/value catalog cycle (object depends on value, value depends on
// object: neither is in the rule table yet while the other is still
// being installed), so installPrimitive also tracks the catalog names
// currently mid-install for this call and skips a dep that's one of
// them.
func (c *Converter) addPrimitive(name string, def ruleDef) string {
	return c.installPrimitive(name, def, linkedhashset.New[string]())
}

func (c *Converter) installPrimitive(name string, def ruleDef, installing *linkedhashset.Set[string]) string {
	installing.Add(name)
	for _, dep := range def.deps {
		if installing.Contains(dep) {
			continue
		}
		if _, ok := c.rules.get(dep); ok {
			continue
		}
		if depDef, ok := catalogLookup(dep); ok {
			c.installPrimitive(dep, depDef, installing)
		}
	}
	return c.addRule(name, def.rhs)
}

// Convert resolves refs in schema (under base URI url) and compiles it
// into GBNF grammar text (component A-G, tied together). The returned
// Diagnostics is always populated, even on error.
func (c *Converter) Convert(schema jsonvalue.Value, url string) (grammar string, diags *Diagnostics, err error) {
	defer func() {
		if r := recover(); r != nil {
			fa, ok := r.(fetchAbort)
			if !ok {
				panic(r)
			}
			err = fa.err
			diags = c.diagnostics
		}
	}()

	c.resolveRefs(schema, url)
	c.visit(schema, "")

	if len(c.diagnostics.Errors) > 0 {
		return "", c.diagnostics, &CompileError{Errors: c.diagnostics.Errors}
	}
	return c.rules.format(), c.diagnostics, nil
}

// CompileBytes parses schema as JSON and converts it, using "" as the base
// URL for local ref resolution.
func (c *Converter) CompileBytes(schema []byte) (string, *Diagnostics, error) {
	v, err := jsonvalue.Decode(schema)
	if err != nil {
		return "", c.diagnostics, fmt.Errorf("gbnf: parsing schema: %w", err)
	}
	return c.Convert(v, "")
}

// Compile converts a JSON Schema document into GBNF grammar text, using a
// no-op remote-ref fetcher, slog.Default(), and Dotall pinned to false
// regardless of the GBNF_DOTALL environment variable. This is the
// primary entry point; use NewConverter directly for a real Fetcher, to
// pick up GBNF_DOTALL, or to override Logger.
func Compile(schema []byte) (string, *Diagnostics, error) {
	return newConverter(Options{}).CompileBytes(schema)
}
