// Package jsonvalue decodes JSON into a generic tree that remembers the
// declaration order of object members.
//
// encoding/json's map[string]any throws that order away, which is fine for
// most consumers but not for a JSON Schema compiler: §4.7 of the grammar
// compiler builds its object rule by walking "properties" in schema
// declaration order, and the resulting grammar differs if that order is
// lost.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/emirpasic/gods/v2/maps/linkedhashmap"
)

// Value is a decoded JSON value. It holds one of: nil (JSON null), bool,
// json.Number, string, []Value, or *Object.
type Value any

// Object is a JSON object whose members are kept in declaration order.
type Object struct {
	m *linkedhashmap.Map[string, Value]
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{m: linkedhashmap.New[string, Value]()}
}

// Set assigns key to v, appending key if it is new and overwriting the
// value in place (without changing position) otherwise.
func (o *Object) Set(key string, v Value) { o.m.Put(key, v) }

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (Value, bool) { return o.m.Get(key) }

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.m.Get(key)
	return ok
}

// Keys returns the member names in declaration order.
func (o *Object) Keys() []string { return o.m.Keys() }

// Len returns the number of members.
func (o *Object) Len() int { return o.m.Size() }

// Each calls f for every member, in declaration order.
func (o *Object) Each(f func(key string, v Value)) {
	for _, k := range o.m.Keys() {
		v, _ := o.m.Get(k)
		f(k, v)
	}
}

// MarshalJSON re-serializes the object with members in declaration order.
// Keys and values go through marshalNoEscape rather than json.Marshal: the
// latter HTML-escapes '<', '>', '&', U+2028 and U+2029, and that escaping
// would survive even Dump's own SetEscapeHTML(false) once it's baked into
// these bytes, since compact() only escapes unescaped bytes, it never
// unescapes already-escaped ones.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		v, _ := o.m.Get(k)
		vb, err := marshalNoEscape(v)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalNoEscape is json.Marshal without escaping '<', '>' and '&'; U+2028
// and U+2029 still come out escaped (Dump undoes those).
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses data as a single JSON value, preserving object member
// order throughout the tree.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("jsonvalue: unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	if tok == nil {
		return nil, nil
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("jsonvalue: unexpected delimiter %q", t)
		}
	case json.Number:
		return Value(t), nil
	case string:
		return Value(t), nil
	case bool:
		return Value(t), nil
	default:
		return nil, fmt.Errorf("jsonvalue: unexpected token %v of type %T", tok, tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	obj := NewObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("jsonvalue: object key %v is not a string", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	var arr []Value
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, err
	}
	return arr, nil
}

// Dump renders v back to JSON text, best-effort. Used both for diagnostic
// messages and, via formatConstant, to build the literal text of a GBNF
// terminal, so it must round-trip exactly: json.Marshal HTML-escapes '<',
// '>', '&', U+2028 and U+2029. SetEscapeHTML(false) turns off the first
// three; the escapes of U+2028 and U+2029 that the encoder still writes
// are turned back into the raw characters here.
func Dump(v Value) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	var b strings.Builder
	for i := 0; i < len(out); i++ {
		switch {
		case strings.HasPrefix(out[i:], `\u202`) && i+5 < len(out) && (out[i+5] == '8' || out[i+5] == '9'):
			b.WriteRune(rune(0x2020 + int(out[i+5]-'0')))
			i += 5
		case out[i] == '\\' && i+1 < len(out):
			b.WriteString(out[i : i+2])
			i++
		default:
			b.WriteByte(out[i])
		}
	}
	return b.String()
}

// AsObject returns v as an *Object, if it is one.
func AsObject(v Value) (*Object, bool) {
	o, ok := v.(*Object)
	return o, ok
}

// AsArray returns v as a []Value, if it is one.
func AsArray(v Value) ([]Value, bool) {
	a, ok := v.([]Value)
	return a, ok
}

// AsString returns v as a string, if it is one.
func AsString(v Value) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsBool returns v as a bool, if it is one.
func AsBool(v Value) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// AsNumber returns v's float64 value, if it is a JSON number.
func AsNumber(v Value) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsNull reports whether v is JSON null (a nil Value).
func IsNull(v Value) bool { return v == nil }
