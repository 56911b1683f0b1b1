package lazyref

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/codewandler/lazyref-go/core/ds"
	"github.com/codewandler/lazyref-go/core/sf"
	"github.com/codewandler/lazyref-go/core/weakref"
	"github.com/codewandler/lazyref-go/internal/reflector"
)

// Loader produces the value of an attribute on a cache miss. It receives
// the owner and the arguments currently bound to the owner's slot. A
// loader must not assume any prior slot state; it may run multiple times
// over an owner's lifetime. Returning (nil, nil) declines to produce a
// value: the caller of Read receives nil and nothing is cached.
type Loader[O any, V any] func(ctx context.Context, owner *O, args Args) (*V, error)

// Attr declares a lazily-loaded, weakly-cached attribute on owner type O
// with value type V. It is a stateless policy object: one per declared
// attribute, shared by all owners of the type, immutable after [New]. The
// per-owner state lives in [Slot]s, kept in an internal weak-keyed side
// table by default or on a declared owner field with [WithSlot].
type Attr[O any, V any] struct {
	name    string
	doc     string
	loader  Loader[O, V]
	slots   *ds.WeakKeyMap[O, *Slot[V]]
	slotOf  func(*O) *Slot[V]
	log     *slog.Logger
	metrics AttrMetrics
	flight  *sf.Singleflight[V]
}

// New declares an attribute for owner type O producing values of type V.
// The attribute name derives from the loader's function name unless
// overridden with [WithName]. Two attributes with the same name on the
// same owner type are a misconfiguration; New panics on the duplicate
// declaration.
func New[O any, V any](loader Loader[O, V], opts ...AttrOption) *Attr[O, V] {
	if loader == nil {
		panic("lazyref: nil loader")
	}

	c := attrOptions{}
	for _, opt := range opts {
		opt.applyToAttr(&c)
	}

	name := c.name
	if name == "" {
		name = reflector.FuncName(loader)
	}
	if name == "" {
		panic("lazyref: attribute name is empty, use WithName")
	}

	log := c.log
	if log == nil {
		log = slog.Default()
	}
	m := c.metrics
	if m == nil {
		m = NopAttrMetrics()
	}

	a := &Attr[O, V]{
		name:    name,
		doc:     c.doc,
		loader:  loader,
		log:     log.With(slog.String("attr", name)),
		metrics: m,
	}
	if c.singleflight {
		a.flight = sf.New[V]()
	}
	if c.slotAccessor != nil {
		fn, ok := c.slotAccessor.(func(*O) *Slot[V])
		if !ok {
			panic(fmt.Sprintf(
				"lazyref: WithSlot accessor for %q has type %T, want func(*O) *Slot[V] matching the attribute",
				name, c.slotAccessor,
			))
		}
		a.slotOf = fn
	} else {
		var slots *ds.WeakKeyMap[O, *Slot[V]]
		slots = ds.NewWeakKeyMap[O, *Slot[V]](ds.WithOnRelease(func(*Slot[V]) {
			m.SlotsTracked(name, slots.Len())
		}))
		a.slots = slots
	}

	register(reflector.TypeInfoFor[O]().Type, a)
	return a
}

// Name returns the attribute name.
func (a *Attr[O, V]) Name() string { return a.name }

// Doc returns the documentation text attached with [WithDoc].
func (a *Attr[O, V]) Doc() string { return a.doc }

func (a *Attr[O, V]) String() string {
	return fmt.Sprintf("%s.%s", reflector.TypeInfoFor[O]().Name, a.name)
}

// Read returns the attribute's value for owner: the cached value while
// its weak handle is live, otherwise the result of invoking the loader
// with the bound arguments. The returned pointer is the caller's strong
// reference; the cache itself never keeps the value alive.
//
// A cache hit has no side effects. On a miss the loader runs outside any
// lock; racing misses on the same slot may each invoke it unless the
// attribute was declared [WithSingleflight]. A loader error propagates
// with the slot left in its prior state. A nil loader result is returned
// as-is and never cached, so the next read loads again.
func (a *Attr[O, V]) Read(ctx context.Context, owner *O) (*V, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}
	s := a.slot(owner)
	if v, ok := s.TryLive(); ok {
		a.metrics.CacheHit(a.name)
		return v, nil
	}
	a.metrics.CacheMiss(a.name)

	if a.flight != nil {
		return a.flight.Do(flightKey(s), func() (*V, error) {
			return a.load(ctx, owner, s)
		})
	}
	return a.load(ctx, owner, s)
}

func (a *Attr[O, V]) load(ctx context.Context, owner *O, s *Slot[V]) (*V, error) {
	a.log.Debug("loading")
	timer := a.metrics.LoadDuration(a.name)
	v, err := a.loader(ctx, owner, s.Args())
	timer.ObserveDuration()
	if err != nil {
		a.metrics.LoadFailure(a.name)
		return nil, fmt.Errorf("failed to load %q: %w", a.name, err)
	}
	if v == nil {
		a.log.Debug("loader returned nil, nothing cached")
		return nil, nil
	}
	if err := s.SetLive(v); err != nil {
		return nil, err
	}
	a.log.Debug("loaded")
	return v, nil
}

// Write updates the owner's slot without invoking the loader. The value
// routes by type:
//   - weakref.Handle[V]: installed directly, bound arguments untouched.
//     This wires a reciprocal edge to an already-live value.
//   - [Ref]: installs the bundle's handle when present and replaces the
//     bound arguments wholesale.
//   - [Args]: replaces the bound arguments.
//   - anything else, nil included: becomes the sole positional argument.
//
// Writing arguments does not evict a live cached value: the next Read
// still returns it until the referent is reclaimed, and only the first
// read after that uses the new arguments. [Attr.Invalidate] forces the
// next read to load.
func (a *Attr[O, V]) Write(owner *O, value any) error {
	if owner == nil {
		return ErrNilOwner
	}
	s := a.slot(owner)
	switch v := value.(type) {
	case weakref.Handle[V]:
		s.SetHandle(v)
	case Ref[V]:
		if !v.Handle.IsZero() {
			s.SetHandle(v.Handle)
		}
		s.SetArgs(v.Args)
	case Args:
		s.SetArgs(v)
	default:
		s.SetArgs(PosArgs(value))
	}
	return nil
}

// Bind binds positional loader arguments for owner. Sugar for Write with
// [PosArgs].
func (a *Attr[O, V]) Bind(owner *O, pos ...any) error {
	return a.Write(owner, PosArgs(pos...))
}

// BindArgs binds a complete argument set for owner.
func (a *Attr[O, V]) BindArgs(owner *O, args Args) error {
	return a.Write(owner, args)
}

// Adopt installs v as the owner's cached value without invoking the
// loader. The cache holds it weakly, exactly like a loaded value. Returns
// [ErrNilValue] for nil v.
func (a *Attr[O, V]) Adopt(owner *O, v *V) error {
	if owner == nil {
		return ErrNilOwner
	}
	return a.slot(owner).SetLive(v)
}

// AdoptHandle installs an existing weak handle as the owner's cached
// value; bound arguments are untouched.
func (a *Attr[O, V]) AdoptHandle(owner *O, h weakref.Handle[V]) error {
	if owner == nil {
		return ErrNilOwner
	}
	a.slot(owner).SetHandle(h)
	return nil
}

// Peek returns the cached value if it is still live, without ever
// invoking the loader or creating a slot.
func (a *Attr[O, V]) Peek(owner *O) (*V, bool) {
	if owner == nil {
		return nil, false
	}
	if a.slotOf != nil {
		return a.slotOf(owner).TryLive()
	}
	s, ok := a.slots.Get(owner)
	if !ok {
		return nil, false
	}
	return s.TryLive()
}

// Invalidate drops the owner's cached handle; bound arguments are kept.
// The next Read invokes the loader. Nothing happens for owners that never
// created a slot.
func (a *Attr[O, V]) Invalidate(owner *O) {
	if owner == nil {
		return
	}
	var s *Slot[V]
	if a.slotOf != nil {
		s = a.slotOf(owner)
	} else if got, ok := a.slots.Get(owner); ok {
		s = got
	}
	if s == nil {
		return
	}
	s.Clear()
	if a.flight != nil {
		a.flight.Forget(flightKey(s))
	}
}

// slot locates or creates the owner's slot.
func (a *Attr[O, V]) slot(owner *O) *Slot[V] {
	if a.slotOf != nil {
		return a.slotOf(owner)
	}
	created := false
	s := a.slots.Ensure(owner, func() *Slot[V] {
		created = true
		return &Slot[V]{}
	})
	if created {
		a.metrics.SlotsTracked(a.name, a.slots.Len())
	}
	return s
}

// flightKey identifies a slot for load deduplication. The slot outlives
// any in-flight load that references it, so the address cannot be reused
// while a flight for it exists.
func flightKey[V any](s *Slot[V]) string {
	return fmt.Sprintf("%p", s)
}

func (a *Attr[O, V]) snapshotArgs(owner any) (Args, bool) {
	o, ok := owner.(*O)
	if !ok || o == nil {
		return Args{}, false
	}
	if a.slotOf != nil {
		return a.slotOf(o).Args(), true
	}
	s, ok := a.slots.Get(o)
	if !ok {
		return Args{}, false
	}
	return s.Args(), true
}

func (a *Attr[O, V]) restoreArgs(owner any, args Args) bool {
	o, ok := owner.(*O)
	if !ok || o == nil {
		return false
	}
	s := a.slot(o)
	s.SetArgs(args)
	s.Clear()
	return true
}

// attrView is the type-erased face an Attr shows to state snapshots.
type attrView interface {
	Name() string
	snapshotArgs(owner any) (Args, bool)
	restoreArgs(owner any, args Args) bool
}

// attrRegistry records every declared attribute per owner type, backing
// duplicate-name detection at declaration time and state snapshots.
var attrRegistry = struct {
	mu      sync.Mutex
	byOwner map[reflect.Type]*ownerAttrs
}{byOwner: make(map[reflect.Type]*ownerAttrs)}

type ownerAttrs struct {
	names *ds.StringSet
	views []attrView
}

func register(ownerType reflect.Type, v attrView) {
	attrRegistry.mu.Lock()
	defer attrRegistry.mu.Unlock()

	oa := attrRegistry.byOwner[ownerType]
	if oa == nil {
		oa = &ownerAttrs{names: ds.NewStringSet()}
		attrRegistry.byOwner[ownerType] = oa
	}
	if oa.names.Contains(v.Name()) {
		panic(fmt.Sprintf("lazyref: attribute %q already declared on %s", v.Name(), ownerType))
	}
	oa.names.Add(v.Name())
	oa.views = append(oa.views, v)
}

func viewsOf(ownerType reflect.Type) []attrView {
	attrRegistry.mu.Lock()
	defer attrRegistry.mu.Unlock()

	oa := attrRegistry.byOwner[ownerType]
	if oa == nil {
		return nil
	}
	return slices.Clone(oa.views)
}
