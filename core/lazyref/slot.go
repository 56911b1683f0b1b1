package lazyref

import (
	"encoding/json"
	"sync"

	"github.com/codewandler/lazyref-go/core/weakref"
)

// SlotState describes the liveness of a slot's weak handle.
type SlotState int8

const (
	// SlotEmpty means no handle was ever installed, or it was cleared.
	SlotEmpty SlotState = iota
	// SlotLive means the handle upgrades to a live value.
	SlotLive
	// SlotDead means a handle was installed but its referent has been
	// reclaimed. Behaviorally equivalent to SlotEmpty: the next read
	// through the owning attribute loads again.
	SlotDead
)

func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotLive:
		return "live"
	case SlotDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Slot is the per-owner record behind one attribute: the loader arguments
// bound to the owner plus a weak handle to the last produced value. The
// handle never keeps the value alive, and it is never serialized; JSON
// round trips carry the arguments only.
//
// Slots are usually managed by an [Attr], either in its internal side
// table or, with [WithSlot], as a declared field on the owner. A Slot must
// not be copied after first use.
type Slot[V any] struct {
	mu   sync.Mutex
	args Args
	ref  weakref.Handle[V]
	held bool // a handle was installed and not cleared
}

// Args returns the currently bound loader arguments.
func (s *Slot[V]) Args() Args {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.args.Clone()
}

// SetArgs replaces the bound arguments wholesale. The weak handle is not
// touched: a live cached value stays cached until its referent is
// reclaimed, and only then does the rebinding take effect.
func (s *Slot[V]) SetArgs(args Args) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.args = args.Clone()
}

// TryLive attempts to upgrade the stored handle to a strong pointer. It is
// the sole liveness authority: a true result hands the caller a strong
// pointer, so the value cannot be reclaimed between check and use.
func (s *Slot[V]) TryLive() (*V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ref.TryStrong()
}

// SetLive installs a weak handle derived from v, replacing any previous
// handle. Returns [ErrNilValue] for nil v; the slot is left unchanged.
func (s *Slot[V]) SetLive(v *V) error {
	h, err := weakref.New(v)
	if err != nil {
		return ErrNilValue
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ref = h
	s.held = true
	return nil
}

// SetHandle installs an existing weak handle without touching the bound
// arguments. A zero handle clears the slot back to empty.
func (s *Slot[V]) SetHandle(h weakref.Handle[V]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ref = h
	s.held = !h.IsZero()
}

// Clear drops the weak handle; bound arguments are kept. The next read
// through the owning attribute loads again.
func (s *Slot[V]) Clear() {
	s.SetHandle(weakref.Handle[V]{})
}

// State reports the slot's liveness. The live-to-dead transition is
// observed lazily: there is no notification when the referent is
// reclaimed.
func (s *Slot[V]) State() SlotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.held:
		return SlotEmpty
	case s.ref.Alive():
		return SlotLive
	default:
		return SlotDead
	}
}

// MarshalJSON emits the bound arguments only; the weak handle is a
// transient runtime relationship and never durable.
func (s *Slot[V]) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	args := s.args
	s.mu.Unlock()
	return json.Marshal(args)
}

// UnmarshalJSON restores the bound arguments and leaves the handle
// absent, so the first read after a restore always loads.
func (s *Slot[V]) UnmarshalJSON(data []byte) error {
	var args Args
	if err := json.Unmarshal(data, &args); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.args = args
	s.ref = weakref.Handle[V]{}
	s.held = false
	return nil
}
