package structdiff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
)

// Value is a sealed interface over the shapes the diff engine
// understands. Only Null, String, Int, Float, Bool, Array, and Object
// implement it.
type Value interface {
	value()
}

// Null represents a JSON null.
type Null struct{}

func (Null) value() {}

// String represents a string scalar.
type String string

func (String) value() {}

// Int represents an integer scalar. JSON numbers without a fractional
// part decode to Int so that 5 and 5 compare equal regardless of
// source representation.
type Int int64

func (Int) value() {}

// Float represents a non-integer numeric scalar.
type Float float64

func (Float) value() {}

// Bool represents a boolean scalar.
type Bool bool

func (Bool) value() {}

// Array represents an ordered sequence of values.
type Array []Value

func (Array) value() {}

// Object represents a map of string keys to values. Use SortedKeys for
// deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// SortedKeys returns the object's keys in sorted order.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromJSON decodes JSON bytes into a Value tree.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return fromDecoded(raw)
}

// FromAny projects an arbitrary Go value (struct, map, slice, scalar)
// into a Value tree via its JSON form. Struct field tags therefore
// determine key names and optional-field omission, matching the on-disk
// artifacts byte for byte.
func FromAny(v any) (Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("project value: %w", err)
	}
	return FromJSON(data)
}

func fromDecoded(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Int(n), nil
		}
		if f, err := val.Float64(); err == nil {
			return Float(f), nil
		}
		// Out-of-range integers keep their textual form.
		if _, ok := new(big.Int).SetString(string(val), 10); ok {
			return String(string(val)), nil
		}
		return nil, fmt.Errorf("unparseable number: %s", val)
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			ev, err := fromDecoded(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = ev
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			ev, err := fromDecoded(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = ev
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// Equal reports deep structural equality of two values.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			ov, present := bv[k]
			if !present || !Equal(v, ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// format renders a value for use inside a difference descriptor.
// Scalars render directly; composites render as compact JSON.
func format(v Value) string {
	switch val := v.(type) {
	case Null:
		return "null"
	case String:
		return fmt.Sprintf("%q", string(val))
	case Int:
		return fmt.Sprintf("%d", int64(val))
	case Float:
		return fmt.Sprintf("%v", float64(val))
	case Bool:
		return fmt.Sprintf("%v", bool(val))
	case Array:
		return formatJSON(val)
	case Object:
		return formatJSON(val)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatJSON(v Value) string {
	data, err := json.Marshal(toAny(v))
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func toAny(v Value) any {
	switch val := v.(type) {
	case Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = toAny(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = toAny(elem)
		}
		return out
	default:
		return nil
	}
}
