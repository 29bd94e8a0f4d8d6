package gbnf

import (
	"strings"

	"github.com/schemagram/schemagram/jsonvalue"
)

// propPair is one declared property, in schema declaration order.
type propPair struct {
	name   string
	schema jsonvalue.Value
}

// buildObjectRule implements the object-rule builder (component G): it
// emits required properties first, then a left-factored chain covering
// every subset of the optional properties (including a trailing
// "additionalProperties" catch-all, if allowed) without enumerating every
// permutation of which optional properties are present.
func (c *Converter) buildObjectRule(properties []propPair, required map[string]bool, name string, additionalProperties jsonvalue.Value) string {
	prefix := func(suffix string) string {
		if name == "" {
			return suffix
		}
		return name + "-" + suffix
	}

	var requiredProps, optionalProps []string
	kvRuleNames := make(map[string]string)

	for _, p := range properties {
		propRuleName := c.visit(p.schema, prefix(p.name))
		kv := c.addRule(prefix(p.name+"-kv"), formatLiteral(jsonvalue.Dump(p.name))+` space ":" space `+propRuleName)
		kvRuleNames[p.name] = kv
		if required[p.name] {
			requiredProps = append(requiredProps, p.name)
		} else {
			optionalProps = append(optionalProps, p.name)
		}
	}

	if additionalPropertiesAllowed(additionalProperties) {
		var valueSchema jsonvalue.Value
		if valueObj, ok := jsonvalue.AsObject(additionalProperties); ok {
			valueSchema = valueObj
		} else {
			valueSchema = jsonvalue.NewObject()
		}
		valueRule := c.visit(valueSchema, prefix("additional-value"))
		stringRule := c.addPrimitive("string", primitiveCatalog["string"])
		kv := c.addRule(prefix("additional-kv"), stringRule+` ":" space `+valueRule)
		kvRuleNames["*"] = kv
		optionalProps = append(optionalProps, "*")
	}

	var b strings.Builder
	b.WriteString(`"{" space `)
	for i, p := range requiredProps {
		if i > 0 {
			b.WriteString(` "," space `)
		}
		b.WriteString(kvRuleNames[p])
	}

	if len(optionalProps) > 0 {
		hasRequired := len(requiredProps) > 0

		var getRecursiveRefs func(ks []string, firstIsOptional bool) string
		getRecursiveRefs = func(ks []string, firstIsOptional bool) string {
			if len(ks) == 0 {
				return ""
			}
			k := ks[0]
			kv := kvRuleNames[k]

			var res string
			switch {
			case k == "*":
				res = c.addRule(prefix("additional-kvs"), kv+` ( "," space `+kv+` )*`)
			case firstIsOptional:
				res = `( "," space ` + kv + ` )?`
			default:
				res = kv
			}
			if len(ks) > 1 {
				res += " " + c.addRule(prefix(k+"-rest"), getRecursiveRefs(ks[1:], true))
			}
			return res
		}

		var alts []string
		for i := range optionalProps {
			alts = append(alts, getRecursiveRefs(optionalProps[i:], false))
		}

		b.WriteString(" (")
		if hasRequired {
			b.WriteString(` "," space ( `)
		}
		b.WriteString(strings.Join(alts, " | "))
		if hasRequired {
			b.WriteString(" )")
		}
		b.WriteString(" )?")
	}

	b.WriteString(` "}" space`)
	return b.String()
}
