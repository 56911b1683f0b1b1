package lazyref

import (
	"github.com/codewandler/lazyref-go/internal/codec"
	"github.com/codewandler/lazyref-go/internal/reflector"
)

// State captures the durable half of an owner's attribute slots: the
// bound arguments per attribute name. Weak handles are never part of it.
type State map[string]Args

// SnapshotState captures the bound arguments of every declared attribute
// of owner's type. Attributes whose slot was never created for this owner
// are omitted.
func SnapshotState[O any](owner *O) (State, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}
	views := viewsOf(reflector.TypeInfoFor[O]().Type)
	s := make(State, len(views))
	for _, v := range views {
		if args, ok := v.snapshotArgs(owner); ok {
			s[v.Name()] = args
		}
	}
	return s, nil
}

// RestoreState rebinds captured arguments onto owner. Every restored slot
// has an absent weak handle, so the first read after a restore always
// invokes the loader. Names in state with no matching declaration on
// owner's type are ignored; declared attributes missing from state are
// left untouched.
func RestoreState[O any](owner *O, state State) error {
	if owner == nil {
		return ErrNilOwner
	}
	for _, v := range viewsOf(reflector.TypeInfoFor[O]().Type) {
		if args, ok := state[v.Name()]; ok {
			v.restoreArgs(owner, args)
		}
	}
	return nil
}

// stateCodec keeps encoded snapshots inspectable by hand.
var stateCodec codec.Codec = codec.JSONCodec{}

// EncodeState serializes a snapshot.
func EncodeState(s State) ([]byte, error) {
	return stateCodec.Marshal(s)
}

// DecodeState deserializes a snapshot produced by [EncodeState].
func DecodeState(data []byte) (State, error) {
	var s State
	if err := stateCodec.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s, nil
}
