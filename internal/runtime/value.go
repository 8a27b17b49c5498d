// Package runtime implements the value model, environments, object model
// and tree-walking evaluator for Rylang.
package runtime

import (
	"strconv"
	"strings"
)

// Value is the interface for all runtime values. The concrete kinds are:
// nil, number (float64), bool, string, list, map (an environment),
// callable (function, builtin or class) and instance.
type Value interface {
	TypeName() string
	String() string
}

// ---- Primitive values ----

// NumberVal represents a numeric value (IEEE-754 double).
type NumberVal float64

func (v NumberVal) TypeName() string { return "number" }
func (v NumberVal) String() string   { return FormatNumber(float64(v)) }

// StringVal represents a string value.
type StringVal string

func (v StringVal) TypeName() string { return "string" }
func (v StringVal) String() string   { return string(v) }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) TypeName() string { return "bool" }
func (v BoolVal) String() string {
	if v {
		return "true"
	}
	return "false"
}

// NullVal represents null.
type NullVal struct{}

func (v NullVal) TypeName() string { return "null" }
func (v NullVal) String() string   { return "nil" }

// ---- List value ----

// ListVal represents a mutable, shared, ordered sequence of values.
// Lists are always handled as *ListVal so aliases observe mutation.
type ListVal struct {
	Elements []Value
}

func (v *ListVal) TypeName() string { return "list" }
func (v *ListVal) String() string   { return "[list]" }

// ---- Helpers ----

// FormatNumber renders a number the way diagnostics and concatenation
// show it: no trailing zeros, no decimal point for integral values.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IsTruthy reports the truthiness of a value: everything is truthy
// except nil and the boolean false.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case NullVal:
		return false
	case BoolVal:
		return bool(val)
	default:
		return true
	}
}

// ValuesEqual implements structural equality: nil=nil, same-tag
// comparison for scalars, recursive element-wise comparison for lists,
// identity for maps, callables and instances.
func ValuesEqual(a, b Value) bool {
	if _, ok := a.(NullVal); ok {
		_, ok := b.(NullVal)
		return ok
	}
	if _, ok := b.(NullVal); ok {
		return false
	}

	switch av := a.(type) {
	case BoolVal:
		bv, ok := b.(BoolVal)
		return ok && av == bv
	case NumberVal:
		bv, ok := b.(NumberVal)
		return ok && av == bv
	case StringVal:
		bv, ok := b.(StringVal)
		return ok && av == bv
	case *ListVal:
		bv, ok := b.(*ListVal)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !ValuesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	default:
		// Maps, callables and instances compare by identity.
		return a == b
	}
}

// ToNumber attempts numeric coercion: numbers convert directly, strings
// convert when their trimmed content parses fully as a double.
func ToNumber(v Value) (float64, bool) {
	switch val := v.(type) {
	case NumberVal:
		return float64(val), true
	case StringVal:
		s := strings.TrimSpace(string(val))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
