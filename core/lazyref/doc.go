// Package lazyref provides lazily-loaded attributes cached through weak
// references.
//
// An [Attr] declares a named attribute on an owner type. The first read
// invokes a loader to produce the value and keeps only a weak handle to
// the result: while any other code holds the value, repeated reads return
// the identical instance without loading; once nothing keeps it alive,
// the runtime reclaims it and the next read loads it again. Per-owner
// loader arguments can be bound independently of reading, and only those
// arguments survive serialization, never the transient handle. This makes
// lazily-materialized, weakly-connected object graphs possible without
// leaking memory, including infinite chains of generated nodes.
//
// # Declaring
//
// Attributes are declared once, typically as package-level variables:
//
//	func loadNextLevel(ctx context.Context, l *Level, args lazyref.Args) (*Level, error) {
//	    id, err := lazyref.Pos[int](args, 0)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewLevel(id), nil
//	}
//
//	var nextLevel = lazyref.New[Level, Level](loadNextLevel)
//
// # Reading and binding
//
// Arguments bind independently of loading; constructors usually bind and
// the first read loads:
//
//	l := NewLevel(1)
//	_ = nextLevel.Bind(l, 2)
//
//	next, err := nextLevel.Read(ctx, l)  // loads Level 2
//	same, err := nextLevel.Read(ctx, l)  // identical instance while next is held
//
// Rebinding while a value is live does not evict it: the next read still
// returns the cached value, and the new arguments only apply once the
// value has been reclaimed. [Attr.Invalidate] drops the handle explicitly.
//
// # Weak edges
//
// [Attr.Adopt] and [Attr.AdoptHandle] install values directly, letting
// loaded values point at each other without keeping each other alive and
// without extra loads:
//
//	_ = prevLevel.Adopt(next, l)  // next.prev resolves to l, held weakly
//
// # Slot storage
//
// Per-owner state lives in a [Slot]. By default slots sit in a weak-keyed
// side table inside the attribute, so owner types need no extra fields
// and owners are never kept alive by their slots. With [WithSlot] the
// slot is a declared field on the owner instead.
//
// # Serialization
//
// Slots serialize their bound arguments only; a restored slot always has
// an absent handle, so the first read after a restore loads. Declared
// slot fields round-trip with the owner's own JSON; side-table slots are
// captured per owner with [SnapshotState] and [RestoreState].
package lazyref
