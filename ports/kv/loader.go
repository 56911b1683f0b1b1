package kv

import (
	"context"

	"github.com/codewandler/lazyref-go/core/lazyref"
)

// KeyFunc derives the store key for an owner from the owner itself and
// the arguments bound to its slot.
type KeyFunc[O any] func(owner *O, args lazyref.Args) (string, error)

// Key returns a KeyFunc that reads the key from the first positional
// argument.
func Key[O any]() KeyFunc[O] {
	return func(_ *O, args lazyref.Args) (string, error) {
		return lazyref.Pos[string](args, 0)
	}
}

// LoaderOf adapts a Store into a lazyref loader: the attribute's value is
// fetched from the store under the derived key and decoded from JSON.
// A missing key surfaces as [ErrNotFound] so callers can distinguish
// absence from transport failures.
func LoaderOf[O any, V any](store Store, key KeyFunc[O]) lazyref.Loader[O, V] {
	return func(ctx context.Context, owner *O, args lazyref.Args) (*V, error) {
		k, err := key(owner, args)
		if err != nil {
			return nil, err
		}
		v, err := Get[V](ctx, store, k)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
}
