package lazyref

import "errors"

var (
	// ErrNilOwner reports a nil owner passed to an attribute operation.
	ErrNilOwner = errors.New("nil owner")

	// ErrNilValue reports an attempt to cache a nil value. Nil cannot be
	// weakly referenced, so it is never installed; see [Slot.SetLive].
	ErrNilValue = errors.New("nil value cannot be weakly referenced")

	// ErrArgNotFound reports a positional index or name with no bound
	// argument.
	ErrArgNotFound = errors.New("argument not found")

	// ErrArgType reports a bound argument that cannot be converted to the
	// requested type.
	ErrArgType = errors.New("argument has wrong type")
)
