package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Value is a node of a configuration tree.
//
// A Value is exactly one of:
//   - Scalar: a leaf (nil, bool, string, int64, uint64 or float64)
//   - Sequence: an ordered list of values
//   - Mapping: string keys to values
//
// The interface is sealed; switches over Value only need to handle these
// three cases.
type Value interface {
	// ToAny converts the value back into plain Go data
	// (map[string]any, []any, or the scalar itself).
	ToAny() any

	isValue()
}

// Scalar is a leaf value. V holds nil, bool, string, int64, uint64 or float64.
type Scalar struct {
	V any
}

// Sequence is an ordered list of values.
type Sequence []Value

// Mapping maps string keys to values. A nil Mapping is a valid empty mapping.
type Mapping map[string]Value

func (Scalar) isValue()   {}
func (Sequence) isValue() {}
func (Mapping) isValue()  {}

// ToAny returns the scalar's underlying value.
func (s Scalar) ToAny() any { return s.V }

// ToAny returns the sequence as a []any.
func (s Sequence) ToAny() any {
	out := make([]any, len(s))
	for i, v := range s {
		if v != nil {
			out[i] = v.ToAny()
		}
	}
	return out
}

// ToAny returns the mapping as a map[string]any.
func (m Mapping) ToAny() any { return m.ToMap() }

// ToMap returns the mapping as a map[string]any. It never returns nil.
func (m Mapping) ToMap() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v == nil {
			out[k] = nil
			continue
		}
		out[k] = v.ToAny()
	}
	return out
}

// Keys returns the mapping's keys in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns a short description, used in error messages and logs.
func (s Scalar) String() string { return fmt.Sprintf("%v", s.V) }

// FromAny converts untyped data into a Value.
//
// Accepted inputs are the shapes produced by YAML and JSON decoders and by
// Go literals:
//   - nil, bool, string and every integer and float kind become a Scalar
//     (signed integers normalize to int64, unsigned to uint64, floats to float64)
//   - slices and arrays become a Sequence
//   - maps with string keys become a Mapping
//   - a Value is accepted as-is and deep-copied
//
// Any other kind, or a map or slice that contains itself, yields a
// *MalformedInputError.
func FromAny(v any) (Value, error) {
	c := newConverter()
	return c.convert(reflect.ValueOf(v), "")
}

// MappingFrom converts a map[string]any into a Mapping. A nil map yields an
// empty Mapping.
func MappingFrom(m map[string]any) (Mapping, error) {
	if m == nil {
		return Mapping{}, nil
	}
	v, err := FromAny(m)
	if err != nil {
		return nil, err
	}
	return v.(Mapping), nil
}

// MustMapping is like MappingFrom but panics on malformed input.
// Intended for static fragments built from literals.
func MustMapping(m map[string]any) Mapping {
	out, err := MappingFrom(m)
	if err != nil {
		panic(err)
	}
	return out
}

type refKey struct {
	ptr uintptr
	len int
}

// converter tracks the maps and slices on the current descent path so that
// self-referencing input is rejected instead of recursing forever.
type converter struct {
	onPath map[refKey]bool
}

func newConverter() *converter {
	return &converter{onPath: make(map[refKey]bool)}
}

var valueType = reflect.TypeOf((*Value)(nil)).Elem()

func (c *converter) convert(rv reflect.Value, path string) (Value, error) {
	if !rv.IsValid() {
		return Scalar{}, nil
	}

	if rv.Type().Implements(valueType) && rv.Kind() != reflect.Interface {
		if v, ok := rv.Interface().(Value); ok {
			return c.fromValue(v, path)
		}
	}

	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return Scalar{}, nil
		}
		if rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Struct {
			return nil, malformed(path, "unsupported value of type "+rv.Type().String())
		}
		return c.convert(rv.Elem(), path)

	case reflect.Bool:
		return Scalar{V: rv.Bool()}, nil
	case reflect.String:
		return Scalar{V: rv.String()}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Scalar{V: rv.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Scalar{V: rv.Uint()}, nil
	case reflect.Float32, reflect.Float64:
		return Scalar{V: rv.Float()}, nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, malformed(path, "mapping key must be a string, got "+rv.Type().Key().String())
		}
		if rv.IsNil() {
			return Mapping{}, nil
		}
		key := refKey{ptr: rv.Pointer(), len: -1}
		if c.onPath[key] {
			return nil, malformed(path, "cyclic reference")
		}
		c.onPath[key] = true
		defer delete(c.onPath, key)

		out := make(Mapping, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			child, err := c.convert(iter.Value(), joinKey(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = child
		}
		return out, nil

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return Sequence{}, nil
			}
			if rv.Len() > 0 {
				key := refKey{ptr: rv.Pointer(), len: rv.Len()}
				if c.onPath[key] {
					return nil, malformed(path, "cyclic reference")
				}
				c.onPath[key] = true
				defer delete(c.onPath, key)
			}
		}
		out := make(Sequence, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			child, err := c.convert(rv.Index(i), joinIndex(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = child
		}
		return out, nil
	}

	return nil, malformed(path, "unsupported value of type "+rv.Type().String())
}

// fromValue deep-copies an existing Value, validating it on the way.
func (c *converter) fromValue(v Value, path string) (Value, error) {
	switch t := v.(type) {
	case Scalar:
		return c.scalar(t, path)
	case Sequence:
		if len(t) == 0 {
			return Sequence{}, nil
		}
		key := refKey{ptr: reflect.ValueOf(t).Pointer(), len: len(t)}
		if c.onPath[key] {
			return nil, malformed(path, "cyclic reference")
		}
		c.onPath[key] = true
		defer delete(c.onPath, key)

		out := make(Sequence, len(t))
		for i, elem := range t {
			if elem == nil {
				return nil, malformed(joinIndex(path, i), "nil value")
			}
			child, err := c.fromValue(elem, joinIndex(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = child
		}
		return out, nil
	case Mapping:
		if t == nil {
			return Mapping{}, nil
		}
		key := refKey{ptr: reflect.ValueOf(t).Pointer(), len: -1}
		if c.onPath[key] {
			return nil, malformed(path, "cyclic reference")
		}
		c.onPath[key] = true
		defer delete(c.onPath, key)

		out := make(Mapping, len(t))
		for k, elem := range t {
			if elem == nil {
				return nil, malformed(joinKey(path, k), "nil value")
			}
			child, err := c.fromValue(elem, joinKey(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = child
		}
		return out, nil
	}
	return nil, malformed(path, fmt.Sprintf("unsupported value of type %T", v))
}

// scalar re-normalizes a Scalar whose V may have been set by hand.
func (c *converter) scalar(s Scalar, path string) (Value, error) {
	switch s.V.(type) {
	case nil, bool, string, int64, uint64, float64:
		return s, nil
	}
	v, err := c.convert(reflect.ValueOf(s.V), path)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(Scalar); !ok {
		return nil, malformed(path, fmt.Sprintf("scalar holds non-scalar %T", s.V))
	}
	return v, nil
}

// normalScalar returns s with V in its normalized form, so Scalar{V: 1}
// and Scalar{V: int64(1)} compare equal. Scalars that cannot be normalized
// are returned unchanged.
func normalScalar(s Scalar) Scalar {
	v, err := newConverter().scalar(s, "")
	if err != nil {
		return s
	}
	return v.(Scalar)
}

// Equal reports whether a and b are structurally equal. Scalars are
// compared after normalization.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Scalar:
		y, ok := b.(Scalar)
		return ok && reflect.DeepEqual(normalScalar(x).V, normalScalar(y).V)
	case Sequence:
		y, ok := b.(Sequence)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Mapping:
		y, ok := b.(Mapping)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	}
	return false
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func joinIndex(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
