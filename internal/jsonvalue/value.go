// Package jsonvalue provides an order-preserving in-memory representation of
// JSON values, adapted from the DWScript JSON connector's value model for use
// as the backing store of the engine's JSON.parse / JSON.stringify globals.
package jsonvalue

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the JSON value variant held by a Value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindObject
	KindArray
	KindString
	KindNumber
	KindBoolean
)

// String returns a human-readable form of the kind.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "Undefined"
	case KindNull:
		return "Null"
	case KindObject:
		return "Object"
	case KindArray:
		return "Array"
	case KindString:
		return "String"
	case KindNumber:
		return "Number"
	case KindBoolean:
		return "Boolean"
	default:
		return "Unknown"
	}
}

// Value represents a JSON value in memory. It intentionally avoids
// interface{} payloads so callers get compile-time safety when walking the
// tree, mirroring the teacher package's discipline.
type Value struct {
	kind Kind

	objEntries map[string]*Value
	objKeys    []string // preserves insertion order

	arrElems []*Value

	str  string
	num  float64
	bool bool
}

func (v *Value) Kind() Kind {
	if v == nil {
		return KindUndefined
	}
	return v.kind
}

func NewUndefined() *Value { return &Value{kind: KindUndefined} }
func NewNull() *Value      { return &Value{kind: KindNull} }
func NewBoolean(b bool) *Value { return &Value{kind: KindBoolean, bool: b} }
func NewNumber(n float64) *Value { return &Value{kind: KindNumber, num: n} }
func NewString(s string) *Value  { return &Value{kind: KindString, str: s} }

func NewArray() *Value {
	return &Value{kind: KindArray, arrElems: make([]*Value, 0)}
}

func NewObject() *Value {
	return &Value{
		kind:       KindObject,
		objEntries: make(map[string]*Value),
		objKeys:    make([]string, 0),
	}
}

func (v *Value) ObjectGet(key string) *Value {
	if v == nil || v.kind != KindObject {
		return nil
	}
	return v.objEntries[key]
}

// ObjectSet associates key with child, appending to objKeys on first insert
// so enumeration order matches insertion order, as JS requires.
func (v *Value) ObjectSet(key string, child *Value) {
	if v == nil || v.kind != KindObject {
		return
	}
	if _, exists := v.objEntries[key]; !exists {
		v.objKeys = append(v.objKeys, key)
	}
	v.objEntries[key] = child
}

func (v *Value) ObjectDelete(key string) bool {
	if v == nil || v.kind != KindObject {
		return false
	}
	if _, exists := v.objEntries[key]; !exists {
		return false
	}
	delete(v.objEntries, key)
	for i, k := range v.objKeys {
		if k == key {
			v.objKeys = append(v.objKeys[:i], v.objKeys[i+1:]...)
			break
		}
	}
	return true
}

func (v *Value) ObjectKeys() []string {
	if v == nil || v.kind != KindObject {
		return nil
	}
	keys := make([]string, len(v.objKeys))
	copy(keys, v.objKeys)
	return keys
}

func (v *Value) ArrayLen() int {
	if v == nil || v.kind != KindArray {
		return 0
	}
	return len(v.arrElems)
}

func (v *Value) ArrayGet(index int) *Value {
	if v == nil || v.kind != KindArray || index < 0 || index >= len(v.arrElems) {
		return nil
	}
	return v.arrElems[index]
}

func (v *Value) ArrayAppend(child *Value) {
	if v == nil || v.kind != KindArray {
		return
	}
	v.arrElems = append(v.arrElems, child)
}

func (v *Value) ArrayElements() []*Value {
	if v == nil || v.kind != KindArray {
		return nil
	}
	out := make([]*Value, len(v.arrElems))
	copy(out, v.arrElems)
	return out
}

func (v *Value) BoolValue() bool {
	if v == nil || v.kind != KindBoolean {
		return false
	}
	return v.bool
}

func (v *Value) StringValue() string {
	if v == nil || v.kind != KindString {
		return ""
	}
	return v.str
}

func (v *Value) NumberValue() float64 {
	if v == nil || v.kind != KindNumber {
		return 0.0
	}
	return v.num
}

// Parse decodes JSON text into a Value tree, preserving object key order
// using json.Decoder's token stream rather than unmarshaling into a map
// (which would lose order).
func Parse(text string) (*Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("jsonvalue: expected string key, got %v", keyTok)
				}
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.ObjectSet(key, child)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := NewArray()
			for dec.More() {
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.ArrayAppend(child)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("jsonvalue: unexpected delimiter %v", t)
	case nil:
		return NewNull(), nil
	case bool:
		return NewBoolean(t), nil
	case string:
		return NewString(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return nil, err
		}
		return NewNumber(f), nil
	default:
		return nil, fmt.Errorf("jsonvalue: unsupported token %T", tok)
	}
}

// Stringify renders the value as JSON text. indent, when non-empty, is
// applied per nesting level (mirroring JSON.stringify's third argument).
func Stringify(v *Value, indent string) string {
	var sb strings.Builder
	writeValue(&sb, v, indent, "")
	return sb.String()
}

func writeValue(sb *strings.Builder, v *Value, indent, prefix string) {
	switch v.Kind() {
	case KindUndefined:
		sb.WriteString("null")
	case KindNull:
		sb.WriteString("null")
	case KindBoolean:
		if v.BoolValue() {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNumber:
		sb.WriteString(formatNumber(v.NumberValue()))
	case KindString:
		b, _ := json.Marshal(v.StringValue())
		sb.Write(b)
	case KindArray:
		writeArray(sb, v, indent, prefix)
	case KindObject:
		writeObject(sb, v, indent, prefix)
	}
}

func writeArray(sb *strings.Builder, v *Value, indent, prefix string) {
	elems := v.ArrayElements()
	if len(elems) == 0 {
		sb.WriteString("[]")
		return
	}
	childPrefix := prefix + indent
	sb.WriteString("[")
	for i, elem := range elems {
		if i > 0 {
			sb.WriteString(",")
		}
		if indent != "" {
			sb.WriteString("\n" + childPrefix)
		}
		if elem == nil {
			sb.WriteString("null")
		} else {
			writeValue(sb, elem, indent, childPrefix)
		}
	}
	if indent != "" {
		sb.WriteString("\n" + prefix)
	}
	sb.WriteString("]")
}

func writeObject(sb *strings.Builder, v *Value, indent, prefix string) {
	keys := v.ObjectKeys()
	if len(keys) == 0 {
		sb.WriteString("{}")
		return
	}
	childPrefix := prefix + indent
	sb.WriteString("{")
	for i, key := range keys {
		if i > 0 {
			sb.WriteString(",")
		}
		if indent != "" {
			sb.WriteString("\n" + childPrefix)
		}
		kb, _ := json.Marshal(key)
		sb.Write(kb)
		sb.WriteString(":")
		if indent != "" {
			sb.WriteString(" ")
		}
		writeValue(sb, v.ObjectGet(key), indent, childPrefix)
	}
	if indent != "" {
		sb.WriteString("\n" + prefix)
	}
	sb.WriteString("}")
}

// ToGoValue unwraps a Value tree into plain Go types (map[string]interface{},
// []interface{}, string, float64, bool, nil) — the shape sjson.Set and
// similar reflection-driven encoders expect in place of a typed tree.
func ToGoValue(v *Value) interface{} {
	switch v.Kind() {
	case KindNull, KindUndefined:
		return nil
	case KindBoolean:
		return v.BoolValue()
	case KindNumber:
		return v.NumberValue()
	case KindString:
		return v.StringValue()
	case KindArray:
		elems := v.ArrayElements()
		out := make([]interface{}, len(elems))
		for i, e := range elems {
			out[i] = ToGoValue(e)
		}
		return out
	case KindObject:
		out := make(map[string]interface{})
		for _, k := range v.ObjectKeys() {
			out[k] = ToGoValue(v.ObjectGet(k))
		}
		return out
	}
	return nil
}

// FromGoValue builds a Value tree from the plain Go shape a generic decoder
// (YAML, reflection-based JSON) produces, the inverse of ToGoValue. Map
// keys are sorted for deterministic iteration since Go map order is
// unspecified and the decoder that produced it carries no ordering.
func FromGoValue(v interface{}) *Value {
	switch val := v.(type) {
	case nil:
		return NewNull()
	case bool:
		return NewBoolean(val)
	case string:
		return NewString(val)
	case float64:
		return NewNumber(val)
	case int:
		return NewNumber(float64(val))
	case int64:
		return NewNumber(float64(val))
	case []interface{}:
		out := NewArray()
		for _, e := range val {
			out.ArrayAppend(FromGoValue(e))
		}
		return out
	case map[string]interface{}:
		out := NewObject()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.ObjectSet(k, FromGoValue(val[k]))
		}
		return out
	case map[interface{}]interface{}:
		converted := make(map[string]interface{}, len(val))
		for k, e := range val {
			converted[fmt.Sprint(k)] = e
		}
		return FromGoValue(converted)
	default:
		return NewString(fmt.Sprint(val))
	}
}

// formatNumber renders a float64 per ECMA-262's Number::toString: integral
// values print without a trailing ".0", non-finite values have no JSON form.
func formatNumber(f float64) string {
	if f == float64(int64(f)) && f < 1e21 && f > -1e21 {
		return strconv.FormatInt(int64(f), 10)
	}
	if a := math.Abs(f); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	return strings.Replace(strings.Replace(s, "e-0", "e-", 1), "e+0", "e+", 1)
}
