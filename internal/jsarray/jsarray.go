// Package jsarray reads positional data out of decoded JSON arrays without
// panicking. Every accessor reports ok=false when the path is missing, null,
// or holds a value of the wrong kind.
package jsarray

import "math"

// Value wraps one node of a decoded JSON tree.
type Value struct {
	v any
}

func Of(v any) Value {
	return Value{v: v}
}

// Raw returns the wrapped node.
func (v Value) Raw() any {
	return v.v
}

func (v Value) IsNull() bool {
	return v.v == nil
}

// List returns the node as an array.
func (v Value) List() ([]any, bool) {
	l, ok := v.v.([]any)
	return l, ok
}

func (v Value) IsList() bool {
	_, ok := v.v.([]any)
	return ok
}

// Len is the array length, or 0 for anything that is not an array.
func (v Value) Len() int {
	l, _ := v.v.([]any)
	return len(l)
}

// At follows a path of indices. Any step that is out of range or lands on a
// non-array yields a null Value.
func (v Value) At(path ...int) Value {
	cur := v.v
	for _, i := range path {
		l, ok := cur.([]any)
		if !ok || i < 0 || i >= len(l) {
			return Value{}
		}
		cur = l[i]
	}
	return Value{v: cur}
}

// Each calls fn for every element when the node is an array.
func (v Value) Each(fn func(i int, elem Value)) {
	l, _ := v.v.([]any)
	for i, e := range l {
		fn(i, Value{v: e})
	}
}

func (v Value) String() (string, bool) {
	s, ok := v.v.(string)
	return s, ok
}

// StringOr returns the string or def.
func (v Value) StringOr(def string) string {
	if s, ok := v.v.(string); ok {
		return s
	}
	return def
}

// Number accepts the numeric forms JSON decoders produce: float64 by default,
// json.Number (or anything with a Float64 method) when numbers are
// preserved, and plain ints from hand-built trees.
func (v Value) Number() (float64, bool) {
	switch n := v.v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Int returns the number only when it is integral.
func (v Value) Int() (int, bool) {
	f, ok := v.Number()
	if !ok || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func (v Value) Bool() (bool, bool) {
	b, ok := v.v.(bool)
	return b, ok
}
