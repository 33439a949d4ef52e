package baseapi

import (
	"fmt"
	"reflect"
	"strings"
)

// Field is one key/value pair destined for a query string or a payload.
type Field struct {
	Key   string
	Value any
}

// Params is an ordered list of fields. Order is observable on the wire:
// query serialization walks the list front to back.
type Params []Field

// Param formats one parameter for a query string. It returns "name=value&"
// when value is truthy and "" otherwise: zero numbers, empty strings, false,
// nil, and empty containers are silently dropped. A caller that needs a
// literal zero on the wire must pass it as a non-empty string.
func Param(name string, value any) string {
	if isZeroValue(value) {
		return ""
	}
	return name + "=" + formatValue(value) + "&"
}

// Encode renders the list as a query string fragment: every field through
// Param, concatenated in order. No percent-encoding is applied and the
// trailing "&" is kept; the servers this layer targets tolerate both.
func (p Params) Encode() string {
	var b strings.Builder
	for _, f := range p {
		b.WriteString(Param(f.Key, f.Value))
	}
	return b.String()
}

// Payload converts the list into a request body map. Unlike Encode, nothing
// is dropped here: falsy values stay in payloads. Later fields win on
// duplicate keys.
func (p Params) Payload() Payload {
	out := make(Payload, len(p))
	for _, f := range p {
		out[f.Key] = f.Value
	}
	return out
}

// encodeAll renders every field unconditionally. This is the serialization
// used for auth parameters; the truthiness drop applies only to caller
// query parameters.
func (p Params) encodeAll() string {
	var b strings.Builder
	for _, f := range p {
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(formatValue(f.Value))
		b.WriteByte('&')
	}
	return b.String()
}

// formatValue stringifies a parameter value for the wire.
func formatValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

// isZeroValue implements the truthiness rule behind Param: nil, zero
// numbers, empty strings, false, and empty containers are all falsy.
func isZeroValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil() || isZeroValue(rv.Elem().Interface())
	default:
		return rv.IsZero()
	}
}
