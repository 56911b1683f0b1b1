package kv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Memory(t *testing.T) {
	type Foo struct {
		Name string
		Age  int
	}
	s := NewMemStore()

	_, err := Get[Foo](t.Context(), s, "foobar")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, Put[Foo](t.Context(), s, "p1", Foo{Name: "P1", Age: 10}, PutOptions{}))
	require.NoError(t, Put[Foo](t.Context(), s, "p2", Foo{Name: "P2", Age: 20}, PutOptions{}))

	loaded, err := Get[Foo](t.Context(), s, "p1")
	require.NoError(t, err)
	require.Equal(t, Foo{Name: "P1", Age: 10}, loaded)

	require.NoError(t, s.Delete(t.Context(), "p1"))
	_, err = Get[Foo](t.Context(), s, "p1")
	require.ErrorIs(t, err, ErrNotFound)
}

func Test_Memory_Revisions(t *testing.T) {
	s := NewMemStore()

	require.NoError(t, s.Put(t.Context(), "k", Entry{Data: []byte("a")}, PutOptions{}))
	e, err := s.Get(t.Context(), "k")
	require.NoError(t, err)
	require.Equal(t, uint64(1), e.Revision)

	require.NoError(t, s.Put(t.Context(), "k", Entry{Data: []byte("b")}, PutOptions{}))
	e, err = s.Get(t.Context(), "k")
	require.NoError(t, err)
	require.Equal(t, uint64(2), e.Revision)
	require.Equal(t, []byte("b"), e.Data)

	// revisions survive delete and recreate
	require.NoError(t, s.Delete(t.Context(), "k"))
	require.NoError(t, s.Put(t.Context(), "k", Entry{Data: []byte("c")}, PutOptions{}))
	e, err = s.Get(t.Context(), "k")
	require.NoError(t, err)
	require.Equal(t, uint64(3), e.Revision)
}

func Test_Memory_TTL(t *testing.T) {
	s := NewMemStore()

	require.NoError(t, s.Put(t.Context(), "gone", Entry{Data: []byte("x")}, PutOptions{TTL: 10 * time.Millisecond}))
	require.NoError(t, s.Put(t.Context(), "kept", Entry{Data: []byte("y")}, PutOptions{}))

	_, err := s.Get(t.Context(), "gone")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = s.Get(t.Context(), "gone")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(t.Context(), "kept")
	require.NoError(t, err)
}
