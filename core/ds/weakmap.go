package ds

import (
	"runtime"
	"sync"
	"weak"
)

// WeakKeyMap associates a value with the identity of a heap object without
// keeping that object alive. Entries are keyed by pointer identity, not by
// value equality: two distinct objects with equal contents get distinct
// entries.
//
// When a key becomes unreachable the runtime reclaims it and the map drops
// the entry on its own, some time after the next garbage collection cycle.
// An optional release hook observes the orphaned value.
//
// A value must not strongly reference its own key. The map holds values
// strongly, so such a value would keep the key reachable and the entry
// would never be released.
//
// All methods are safe for concurrent use.
type WeakKeyMap[K any, V any] struct {
	mu        sync.Mutex
	entries   map[weak.Pointer[K]]wkEntry[V]
	onRelease func(V)
}

type wkEntry[V any] struct {
	value   V
	cleanup runtime.Cleanup
}

// WeakKeyMapOption configures a [WeakKeyMap].
type WeakKeyMapOption[V any] func(*weakKeyMapOpts[V])

type weakKeyMapOpts[V any] struct {
	onRelease func(V)
}

// WithOnRelease installs a hook that runs once for every entry dropped
// because its key was reclaimed. The hook runs on the runtime's cleanup
// goroutine and must not block; entries removed via [WeakKeyMap.Delete] do
// not trigger it.
func WithOnRelease[V any](fn func(V)) WeakKeyMapOption[V] {
	return func(o *weakKeyMapOpts[V]) {
		o.onRelease = fn
	}
}

// NewWeakKeyMap creates an empty map.
func NewWeakKeyMap[K any, V any](opts ...WeakKeyMapOption[V]) *WeakKeyMap[K, V] {
	var o weakKeyMapOpts[V]
	for _, opt := range opts {
		opt(&o)
	}
	return &WeakKeyMap[K, V]{
		entries:   make(map[weak.Pointer[K]]wkEntry[V]),
		onRelease: o.onRelease,
	}
}

// Ensure returns the value stored for key, creating it with create on first
// use. The create callback runs under the map lock and must not call back
// into the map. Panics if key is nil.
func (m *WeakKeyMap[K, V]) Ensure(key *K, create func() V) V {
	if key == nil {
		panic("ds: nil key")
	}
	wp := weak.Make(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[wp]; ok {
		return e.value
	}

	v := create()
	// The cleanup arg is the weak key itself, never the strong pointer:
	// a strong capture would prevent reclamation of the key.
	c := runtime.AddCleanup(key, m.release, wp)
	m.entries[wp] = wkEntry[V]{value: v, cleanup: c}
	return v
}

// Get returns the value stored for key, if any. Panics if key is nil.
func (m *WeakKeyMap[K, V]) Get(key *K) (V, bool) {
	if key == nil {
		panic("ds: nil key")
	}
	wp := weak.Make(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[wp]
	return e.value, ok
}

// Delete removes the entry for key, if any. The release hook does not run
// for deleted entries. Panics if key is nil.
func (m *WeakKeyMap[K, V]) Delete(key *K) {
	if key == nil {
		panic("ds: nil key")
	}
	wp := weak.Make(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[wp]; ok {
		e.cleanup.Stop()
		delete(m.entries, wp)
	}
}

// Len returns the number of live entries. Entries whose keys have been
// reclaimed but not yet cleaned up still count.
func (m *WeakKeyMap[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *WeakKeyMap[K, V]) release(wp weak.Pointer[K]) {
	m.mu.Lock()
	e, ok := m.entries[wp]
	if ok {
		delete(m.entries, wp)
	}
	m.mu.Unlock()

	if ok && m.onRelease != nil {
		m.onRelease(e.value)
	}
}
