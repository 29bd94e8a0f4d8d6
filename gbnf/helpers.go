package gbnf

import "github.com/schemagram/schemagram/jsonvalue"

func objGet(obj *jsonvalue.Object, key string) (jsonvalue.Value, bool) {
	if obj == nil {
		return nil, false
	}
	return obj.Get(key)
}

func objHas(obj *jsonvalue.Object, key string) bool {
	_, ok := objGet(obj, key)
	return ok
}

func objGetOr(obj *jsonvalue.Object, key string, fallback jsonvalue.Value) jsonvalue.Value {
	if v, ok := objGet(obj, key); ok {
		return v
	}
	return fallback
}

func isTypeArray(v jsonvalue.Value) bool {
	_, ok := jsonvalue.AsArray(v)
	return ok
}

// rootOr returns "root" unchanged, or fallback for any other rule name.
// Several catalog-backed branches of the visitor alias the target
// primitive's own name except at the document root, where "root" must be
// preserved as the public entry rule.
func rootOr(ruleName, fallback string) string {
	if ruleName == "root" {
		return "root"
	}
	return fallback
}

func additionalPropertiesAllowed(v jsonvalue.Value) bool {
	if v == nil {
		return false
	}
	if b, ok := jsonvalue.AsBool(v); ok {
		return b
	}
	_, isObj := jsonvalue.AsObject(v)
	return isObj
}

func intOr(obj *jsonvalue.Object, key string, def int) int {
	v, ok := objGet(obj, key)
	if !ok {
		return def
	}
	n, ok := jsonvalue.AsNumber(v)
	if !ok {
		return def
	}
	return int(n)
}

func intOrUnbounded(obj *jsonvalue.Object, key string) int {
	v, ok := objGet(obj, key)
	if !ok {
		return unbounded
	}
	n, ok := jsonvalue.AsNumber(v)
	if !ok {
		return unbounded
	}
	return int(n)
}

func stringSet(v jsonvalue.Value) map[string]bool {
	arr, _ := jsonvalue.AsArray(v)
	set := make(map[string]bool, len(arr))
	for _, item := range arr {
		if s, ok := jsonvalue.AsString(item); ok {
			set[s] = true
		}
	}
	return set
}
