package gbnf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/schemagram/schemagram/jsonvalue"
)

var uuidFormatPattern = regexp.MustCompile(`^uuid[1-5]?$`)

// visit dispatches on schema's shape (component F) and returns the name of
// the rule it produced, in the priority order of spec.md §4.6.
func (c *Converter) visit(schema jsonvalue.Value, name string) string {
	var ruleName string
	switch {
	case reservedNames[name]:
		ruleName = name + "-"
	case name == "":
		ruleName = "root"
	default:
		ruleName = name
	}

	obj, _ := jsonvalue.AsObject(schema)
	typeVal, _ := objGet(obj, "type")
	typeStr, typeIsString := jsonvalue.AsString(typeVal)
	format, _ := jsonvalue.AsString(objGetOr(obj, "format", ""))

	switch {
	case objHas(obj, "$ref"):
		ref, _ := jsonvalue.AsString(objGetOr(obj, "$ref", ""))
		return c.addRule(ruleName, c.resolveRef(ref))

	case objHas(obj, "oneOf"):
		alts, _ := jsonvalue.AsArray(objGetOr(obj, "oneOf", nil))
		return c.addRule(ruleName, c.generateUnionRule(name, alts))

	case objHas(obj, "anyOf"):
		alts, _ := jsonvalue.AsArray(objGetOr(obj, "anyOf", nil))
		return c.addRule(ruleName, c.generateUnionRule(name, alts))

	case isTypeArray(typeVal):
		types, _ := jsonvalue.AsArray(typeVal)
		alts := make([]jsonvalue.Value, len(types))
		for i, t := range types {
			o := jsonvalue.NewObject()
			o.Set("type", t)
			alts[i] = jsonvalue.Value(o)
		}
		return c.addRule(ruleName, c.generateUnionRule(name, alts))

	case objHas(obj, "const"):
		v, _ := objGet(obj, "const")
		return c.addRule(ruleName, c.formatConstant(v))

	case objHas(obj, "enum"):
		vals, _ := jsonvalue.AsArray(objGetOr(obj, "enum", nil))
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = c.formatConstant(v)
		}
		return c.addRule(ruleName, strings.Join(parts, " | "))

	case (!typeIsString || typeStr == "object") &&
		(objHas(obj, "properties") || (objHas(obj, "additionalProperties") && !additionalPropertiesIsExactlyTrue(obj))):
		required := stringSet(objGetOr(obj, "required", nil))
		var props []propPair
		if propsObj, ok := jsonvalue.AsObject(objGetOr(obj, "properties", nil)); ok {
			propsObj.Each(func(k string, v jsonvalue.Value) {
				props = append(props, propPair{k, v})
			})
		}
		additional, _ := objGet(obj, "additionalProperties")
		return c.addRule(ruleName, c.buildObjectRule(props, required, name, additional))

	case (!typeIsString || typeStr == "object") && objHas(obj, "allOf"):
		return c.addRule(ruleName, c.visitAllOf(obj, name))

	case (!typeIsString || typeStr == "array") && (objHas(obj, "items") || objHas(obj, "prefixItems")):
		return c.addRule(ruleName, c.visitArray(obj, name))

	case (!typeIsString || typeStr == "string") && objHas(obj, "pattern"):
		pattern, _ := jsonvalue.AsString(objGetOr(obj, "pattern", ""))
		return c.visitPattern(pattern, ruleName)

	case (!typeIsString || typeStr == "string") && uuidFormatPattern.MatchString(format):
		return c.addPrimitive(rootOr(ruleName, "uuid"), primitiveCatalog["uuid"])

	case (!typeIsString || typeStr == "string") && formatCatalogHas(format+"-string"):
		primName := format + "-string"
		return c.addRule(ruleName, c.addPrimitive(primName, formatCatalog[primName]))

	case typeStr == "string" && (objHas(obj, "minLength") || objHas(obj, "maxLength")):
		charRule := c.addPrimitive("char", primitiveCatalog["char"])
		minLen := intOr(obj, "minLength", 0)
		maxLen := intOrUnbounded(obj, "maxLength")
		return c.addRule(ruleName, `"\"" `+buildRepetition(charRule, minLen, maxLen, "", false)+` "\"" space`)

	case obj == nil || obj.Len() == 0 || typeStr == "object":
		return c.addRule(ruleName, c.addPrimitive("object", primitiveCatalog["object"]))

	default:
		if !typeIsString {
			c.addError(KindUnrecognizedSchema, fmt.Sprintf("Unrecognized schema: %s", jsonvalue.Dump(schema)))
			return ""
		}
		def, ok := primitiveCatalog[typeStr]
		if !ok {
			c.addError(KindUnrecognizedSchema, fmt.Sprintf("Unrecognized schema: %s", jsonvalue.Dump(schema)))
			return ""
		}
		return c.addPrimitive(rootOr(ruleName, typeStr), def)
	}
}

func additionalPropertiesIsExactlyTrue(obj *jsonvalue.Object) bool {
	v, ok := objGet(obj, "additionalProperties")
	if !ok {
		return false
	}
	b, ok := jsonvalue.AsBool(v)
	return ok && b
}

func formatCatalogHas(name string) bool {
	_, ok := formatCatalog[name]
	return ok
}

// generateUnionRule visits each alternative under a name derived from the
// parent's own name (or "alternative-<i>" at the root), joining the
// results with " | ".
func (c *Converter) generateUnionRule(name string, alts []jsonvalue.Value) string {
	parts := make([]string, len(alts))
	for i, alt := range alts {
		var key string
		if name == "" {
			key = fmt.Sprintf("alternative-%d", i)
		} else {
			key = fmt.Sprintf("%s-%d", name, i)
		}
		parts[i] = c.visit(alt, key)
	}
	return strings.Join(parts, " | ")
}

// formatConstant renders a single JSON value as a GBNF literal matching
// exactly its canonical JSON serialization.
func (c *Converter) formatConstant(v jsonvalue.Value) string {
	return formatLiteral(jsonvalue.Dump(v))
}

// visitAllOf merges the members of an "allOf" schema into a single object
// rule. Direct members contribute required properties; members nested
// inside a further "anyOf" contribute optional properties (the asymmetry
// preserved from the original implementation, see DESIGN.md).
func (c *Converter) visitAllOf(obj *jsonvalue.Object, name string) string {
	required := make(map[string]bool)
	var props []propPair

	var addComponent func(comp jsonvalue.Value, isRequired bool)
	addComponent = func(comp jsonvalue.Value, isRequired bool) {
		co, ok := jsonvalue.AsObject(comp)
		if !ok {
			return
		}
		if refVal, ok := co.Get("$ref"); ok {
			ref, _ := jsonvalue.AsString(refVal)
			target, _ := c.refs.get(ref)
			addComponent(target, isRequired)
			return
		}
		if propsObj, ok := jsonvalue.AsObject(objGetOr(co, "properties", nil)); ok {
			propsObj.Each(func(k string, v jsonvalue.Value) {
				props = append(props, propPair{k, v})
				if isRequired {
					required[k] = true
				}
			})
		}
	}

	members, _ := jsonvalue.AsArray(objGetOr(obj, "allOf", nil))
	for _, m := range members {
		if mo, ok := jsonvalue.AsObject(m); ok {
			if anyOfMembers, ok := jsonvalue.AsArray(objGetOr(mo, "anyOf", nil)); ok {
				for _, alt := range anyOfMembers {
					addComponent(alt, false)
				}
				continue
			}
		}
		addComponent(m, true)
	}

	return c.buildObjectRule(props, required, name, nil)
}

// visitArray handles "items"/"prefixItems" (component F rule 8): a tuple
// (items given as an array) or a homogeneous list bounded by
// minItems/maxItems.
func (c *Converter) visitArray(obj *jsonvalue.Object, name string) string {
	itemsVal, hasItems := objGet(obj, "items")
	if !hasItems {
		itemsVal, _ = objGet(obj, "prefixItems")
	}

	if tuple, ok := jsonvalue.AsArray(itemsVal); ok {
		parts := make([]string, len(tuple))
		for i, item := range tuple {
			var key string
			if name == "" {
				key = fmt.Sprintf("tuple-%d", i)
			} else {
				key = fmt.Sprintf("%s-tuple-%d", name, i)
			}
			parts[i] = c.visit(item, key)
		}
		return `"[" space ` + strings.Join(parts, ` "," space `) + ` "]" space`
	}

	itemKey := "item"
	if name != "" {
		itemKey = name + "-item"
	}
	itemRule := c.visit(itemsVal, itemKey)
	minItems := intOr(obj, "minItems", 0)
	maxItems := intOrUnbounded(obj, "maxItems")
	return `"[" space ` + buildRepetition(itemRule, minItems, maxItems, `"," space`, false) + ` "]" space`
}
