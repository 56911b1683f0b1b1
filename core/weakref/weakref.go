// Package weakref provides a typed, non-owning reference to a heap value.
//
// A [Handle] never keeps its referent alive: once no strong pointer to the
// value remains, the garbage collector reclaims it and the handle observes
// as dead. [Handle.TryStrong] is the single authority for upgrading a weak
// handle back to a strong pointer; the upgrade is atomic with the liveness
// check, so a caller can never observe "alive" and then lose the value
// before using it.
//
//	h := weakref.Must(v)
//	if v, ok := h.TryStrong(); ok {
//	    // v is a strong pointer and stays alive while in use
//	}
//
// Handles are comparable. Two handles created from the same pointer compare
// equal, even after the referent has been reclaimed.
package weakref

import (
	"errors"
	"weak"
)

// ErrNilReferent is returned when creating a handle from a nil pointer.
// Nil is the one value that cannot be weakly referenced: a handle to nil
// would be indistinguishable from a dead handle.
var ErrNilReferent = errors.New("nil referent")

// Handle is a weak reference to a value of type T.
// The zero Handle is absent: it was never attached to a referent and
// always reports dead.
type Handle[T any] struct {
	p weak.Pointer[T]
}

// New returns a handle to v. It fails with [ErrNilReferent] if v is nil.
func New[T any](v *T) (Handle[T], error) {
	if v == nil {
		return Handle[T]{}, ErrNilReferent
	}
	return Handle[T]{p: weak.Make(v)}, nil
}

// Must is like [New] but panics on a nil referent.
func Must[T any](v *T) Handle[T] {
	h, err := New(v)
	if err != nil {
		panic(err)
	}
	return h
}

// TryStrong attempts to upgrade the handle to a strong pointer.
// It returns (nil, false) if the handle is zero or the referent has been
// reclaimed. On success the returned pointer keeps the value alive for as
// long as the caller holds it.
func (h Handle[T]) TryStrong() (*T, bool) {
	v := h.p.Value()
	return v, v != nil
}

// Alive reports whether the referent has not been reclaimed.
// Prefer [Handle.TryStrong] when the value is actually needed: between
// Alive and a later upgrade the referent may be reclaimed.
func (h Handle[T]) Alive() bool {
	return h.p.Value() != nil
}

// IsZero reports whether the handle was never attached to a referent.
// A zero handle differs from a dead one only in provenance; both fail to
// upgrade.
func (h Handle[T]) IsZero() bool {
	return h == Handle[T]{}
}
