package lazyref

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// Args carries the loader call arguments bound to a slot: an ordered
// positional sequence plus named values. The zero value is valid and means
// the loader is called with no arguments.
//
// Args is the durable half of a slot, so it round-trips through JSON.
// Decoding keeps numbers as [json.Number]; the typed accessors [Pos] and
// [Name] absorb the re-typing that JSON round trips introduce.
type Args struct {
	Positional []any          `json:"positional,omitempty"`
	Named      map[string]any `json:"named,omitempty"`
}

// PosArgs returns Args holding the given positional values.
func PosArgs(values ...any) Args {
	if len(values) == 0 {
		return Args{}
	}
	return Args{Positional: values}
}

// NamedArgs returns Args holding the given named values.
func NamedArgs(named map[string]any) Args {
	if len(named) == 0 {
		return Args{}
	}
	return Args{Named: named}
}

// IsZero reports whether no arguments are bound.
func (a Args) IsZero() bool {
	return len(a.Positional) == 0 && len(a.Named) == 0
}

// Clone returns a shallow copy: fresh containers, shared argument values.
func (a Args) Clone() Args {
	return Args{
		Positional: slices.Clone(a.Positional),
		Named:      maps.Clone(a.Named),
	}
}

// UnmarshalJSON decodes with [json.Number] so integers keep their exact
// value across a round trip.
func (a *Args) UnmarshalJSON(data []byte) error {
	type plain Args
	var p plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return err
	}
	*a = Args(p)
	return nil
}

// Pos returns the positional argument at index i converted to T.
func Pos[T any](a Args, i int) (T, error) {
	if i < 0 || i >= len(a.Positional) {
		var zero T
		return zero, fmt.Errorf("positional argument %d: %w", i, ErrArgNotFound)
	}
	return convertArg[T](a.Positional[i], fmt.Sprintf("positional argument %d", i))
}

// Name returns the named argument key converted to T.
func Name[T any](a Args, key string) (T, error) {
	v, ok := a.Named[key]
	if !ok {
		var zero T
		return zero, fmt.Errorf("named argument %q: %w", key, ErrArgNotFound)
	}
	return convertArg[T](v, fmt.Sprintf("named argument %q", key))
}

// convertArg absorbs the type erasure of JSON round trips: numbers come
// back as json.Number and need re-typing before use.
func convertArg[T any](v any, what string) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}

	var zero T
	target := reflect.TypeFor[T]()

	if v == nil {
		switch target.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return zero, nil
		default:
			return zero, fmt.Errorf("%s is nil: %w", what, ErrArgType)
		}
	}

	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			v = i
		} else if f, err := n.Float64(); err == nil {
			v = f
		}
	}

	rv := reflect.ValueOf(v)
	if numericKind(rv.Kind()) && numericKind(target.Kind()) && rv.Type().ConvertibleTo(target) {
		return rv.Convert(target).Interface().(T), nil
	}

	return zero, fmt.Errorf("%s: %w: have %T, want %s", what, ErrArgType, v, target)
}

func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
