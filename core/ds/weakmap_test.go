package ds

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type owner struct {
	name string
}

func TestWeakKeyMap_Ensure(t *testing.T) {
	m := NewWeakKeyMap[owner, int]()

	a := &owner{name: "a"}
	calls := 0
	create := func() int { calls++; return calls }

	require.Equal(t, 1, m.Ensure(a, create))
	require.Equal(t, 1, m.Ensure(a, create), "second Ensure must not create again")
	require.Equal(t, 1, calls)
	require.Equal(t, 1, m.Len())

	runtime.KeepAlive(a)
}

func TestWeakKeyMap_IdentityNotEquality(t *testing.T) {
	m := NewWeakKeyMap[owner, string]()

	a := &owner{name: "same"}
	b := &owner{name: "same"}

	m.Ensure(a, func() string { return "for-a" })
	m.Ensure(b, func() string { return "for-b" })

	va, ok := m.Get(a)
	require.True(t, ok)
	require.Equal(t, "for-a", va)

	vb, ok := m.Get(b)
	require.True(t, ok)
	require.Equal(t, "for-b", vb)

	require.Equal(t, 2, m.Len())

	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestWeakKeyMap_GetMiss(t *testing.T) {
	m := NewWeakKeyMap[owner, int]()

	v, ok := m.Get(&owner{name: "never-seen"})
	require.False(t, ok)
	require.Zero(t, v)
}

func TestWeakKeyMap_Delete(t *testing.T) {
	released := atomic.Int32{}
	m := NewWeakKeyMap[owner, int](WithOnRelease(func(int) {
		released.Add(1)
	}))

	a := &owner{name: "a"}
	m.Ensure(a, func() int { return 7 })
	m.Delete(a)

	_, ok := m.Get(a)
	require.False(t, ok)
	require.Equal(t, 0, m.Len())

	// Deleting again is a no-op and the hook never fires for manual removal.
	m.Delete(a)
	require.Equal(t, int32(0), released.Load())

	runtime.KeepAlive(a)
}

func TestWeakKeyMap_NilKeyPanics(t *testing.T) {
	m := NewWeakKeyMap[owner, int]()
	require.Panics(t, func() { m.Ensure(nil, func() int { return 0 }) })
	require.Panics(t, func() { m.Get(nil) })
	require.Panics(t, func() { m.Delete(nil) })
}

func TestWeakKeyMap_EntryDropsWithKey(t *testing.T) {
	m := NewWeakKeyMap[owner, int]()

	seed := func() {
		o := &owner{name: "short-lived"}
		m.Ensure(o, func() int { return 1 })
	}
	seed()
	require.Equal(t, 1, m.Len())

	require.Eventually(t, func() bool {
		runtime.GC()
		return m.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWeakKeyMap_OnRelease(t *testing.T) {
	got := make(chan string, 1)
	m := NewWeakKeyMap[owner, string](WithOnRelease(func(v string) {
		got <- v
	}))

	seed := func() {
		o := &owner{name: "short-lived"}
		m.Ensure(o, func() string { return "orphan" })
	}
	seed()

	require.Eventually(t, func() bool {
		runtime.GC()
		select {
		case v := <-got:
			require.Equal(t, "orphan", v)
			return true
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWeakKeyMap_LiveKeyKeepsEntry(t *testing.T) {
	m := NewWeakKeyMap[owner, int]()

	a := &owner{name: "held"}
	m.Ensure(a, func() int { return 1 })

	runtime.GC()
	runtime.GC()

	v, ok := m.Get(a)
	require.True(t, ok)
	require.Equal(t, 1, v)

	runtime.KeepAlive(a)
}
