package gbnf

import (
	"fmt"
	"strings"

	"github.com/schemagram/schemagram/jsonvalue"
)

// Fetcher retrieves the JSON document located at uri. It is the sole
// collaborator responsible for blocking, timeouts, retries, and caching
// across calls (spec.md §5); within a single compilation it is called at
// most once per distinct base URI, and a returned error aborts the whole
// compilation rather than being buffered as a Diagnostic.
type Fetcher func(uri string) (jsonvalue.Value, error)

// noopFetcher backs Compile's zero-config entry point: every remote
// document is fetched as an empty object, so a remote $ref with a
// JSON-pointer fragment into it fails to resolve.
func noopFetcher(string) (jsonvalue.Value, error) {
	return jsonvalue.NewObject(), nil
}

// refIndex maps an absolute reference URI (a base document URI, or a base
// URI plus JSON-pointer fragment) to its resolved sub-schema.
type refIndex struct {
	values map[string]jsonvalue.Value
}

func newRefIndex() *refIndex {
	return &refIndex{values: make(map[string]jsonvalue.Value)}
}

func (r *refIndex) get(uri string) (jsonvalue.Value, bool) {
	v, ok := r.values[uri]
	return v, ok
}

func (r *refIndex) set(uri string, v jsonvalue.Value) { r.values[uri] = v }

// resolveRefs walks schema (component D), fetching remote $ref targets and
// rewriting local "#/..." pointers into absolute form in place, populating
// c.refs as it goes. It never dereferences a $ref inline into the tree; it
// only indexes the target so later visit() calls can look it up.
func (c *Converter) resolveRefs(schema jsonvalue.Value, url string) {
	switch n := schema.(type) {
	case []jsonvalue.Value:
		for _, x := range n {
			c.resolveRefs(x, url)
		}
	case *jsonvalue.Object:
		if refVal, ok := n.Get("$ref"); ok {
			ref, _ := jsonvalue.AsString(refVal)
			c.indexRef(schema, n, ref, url)
			return
		}
		n.Each(func(_ string, v jsonvalue.Value) {
			c.resolveRefs(v, url)
		})
	}
}

// indexRef resolves a single "$ref" member found on node (within root,
// under base url) and stores the result in c.refs.
func (c *Converter) indexRef(root jsonvalue.Value, node *jsonvalue.Object, ref, url string) {
	if _, ok := c.refs.get(ref); ok {
		return
	}

	var target jsonvalue.Value
	switch {
	case strings.HasPrefix(ref, "https://"):
		base, frag, hasFrag := strings.Cut(ref, "#")
		if _, ok := c.refs.get(base); !ok {
			fetched := c.fetchOrAbort(ref)
			c.resolveRefs(fetched, base)
			c.refs.set(base, fetched)
		}
		if !hasFrag || frag == "" {
			return
		}
		target, _ = c.refs.get(base)

	case strings.HasPrefix(ref, "#/"):
		target = root
		ref = url + ref
		node.Set("$ref", ref)

	default:
		c.addError(KindUnsupportedRef, fmt.Sprintf("Unsupported ref: %s", ref))
		return
	}

	hashIdx := strings.IndexByte(ref, '#')
	pointer := ref[hashIdx+1:]
	for _, sel := range strings.Split(pointer, "/")[1:] {
		obj, ok := jsonvalue.AsObject(target)
		if !ok {
			c.addError(KindUnresolvedRef, fmt.Sprintf("Error resolving ref %s: %s not in %s", ref, sel, jsonvalue.Dump(target)))
			return
		}
		v, ok := obj.Get(sel)
		if !ok {
			c.addError(KindUnresolvedRef, fmt.Sprintf("Error resolving ref %s: %s not in %s", ref, sel, jsonvalue.Dump(target)))
			return
		}
		target = v
	}
	c.refs.set(ref, target)
}

// fetchOrAbort calls the converter's Fetcher and panics with a fetchAbort
// on failure, unwinding the whole compilation immediately.
func (c *Converter) fetchOrAbort(uri string) jsonvalue.Value {
	v, err := c.fetch(uri)
	if err != nil {
		panic(fetchAbort{fmt.Errorf("gbnf: fetching %s: %w", uri, err)})
	}
	return v
}

// resolveRef implements component F's "$ref" dispatch branch: it returns
// the bare rule name that a "$ref" schema should alias, visiting the
// referenced sub-schema (exactly once, guarding against cycles with
// c.inProgress) the first time that name is needed.
func (c *Converter) resolveRef(ref string) string {
	refName := ref
	if idx := strings.LastIndexByte(ref, '/'); idx >= 0 {
		refName = ref[idx+1:]
	}
	if _, inTable := c.rules.get(refName); !inTable && !c.inProgress.Contains(ref) {
		c.inProgress.Add(ref)
		target, _ := c.refs.get(ref)
		refName = c.visit(target, refName)
		c.inProgress.Remove(ref)
	}
	return refName
}
