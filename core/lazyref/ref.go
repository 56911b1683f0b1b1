package lazyref

import "github.com/codewandler/lazyref-go/core/weakref"

// Ref bundles an optional weak handle with loader arguments. Writing a
// Ref to an attribute installs the handle when present and replaces the
// bound arguments wholesale, so a single write can wire an existing value
// and rebind what a later reload would receive.
type Ref[V any] struct {
	Handle weakref.Handle[V]
	Args   Args
}

// NewRef bundles v and positional arguments. A nil v yields an args-only
// bundle: writing it binds arguments without installing a handle.
func NewRef[V any](v *V, pos ...any) Ref[V] {
	r := Ref[V]{Args: PosArgs(pos...)}
	if v != nil {
		r.Handle = weakref.Must(v)
	}
	return r
}
