package integration

import (
	"context"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	natsadapter "github.com/codewandler/lazyref-go/adapters/nats"
	"github.com/codewandler/lazyref-go/core/lazyref"
	"github.com/codewandler/lazyref-go/ports/kv"
)

type (
	article struct {
		slug string
	}
	content struct {
		Title string
		Body  string
	}
)

func TestIntegration(t *testing.T) {
	connect := natsadapter.NewTestContainer(t)
	store, err := natsadapter.NewStore(natsadapter.StoreConfig{
		Bucket:  "articles",
		Connect: connect,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := t.Context()
	require.NoError(t, kv.Put(ctx, store, "go-weak", content{
		Title: "Weak pointers",
		Body:  "values live exactly as long as someone holds them",
	}, kv.PutOptions{}))

	var loads atomic.Int32
	fetch := kv.LoaderOf[article, content](store, kv.Key[article]())
	attr := lazyref.New[article, content](func(ctx context.Context, o *article, args lazyref.Args) (*content, error) {
		loads.Add(1)
		return fetch(ctx, o, args)
	}, lazyref.WithName("content"), lazyref.WithSingleflight())

	a := &article{slug: "go-weak"}
	require.NoError(t, attr.Bind(a, a.slug))

	// first read fetches, the second is served from the live handle
	func() {
		c, err := attr.Read(ctx, a)
		require.NoError(t, err)
		require.Equal(t, "Weak pointers", c.Title)

		c2, err := attr.Read(ctx, a)
		require.NoError(t, err)
		require.Same(t, c, c2)
		require.Equal(t, int32(1), loads.Load())
	}()

	// once the value is reclaimed the next read goes back to the store
	runtime.GC()
	c3, err := attr.Read(ctx, a)
	require.NoError(t, err)
	require.Equal(t, "Weak pointers", c3.Title)
	require.Equal(t, int32(2), loads.Load())

	// a store update becomes visible after an explicit invalidation
	require.NoError(t, kv.Put(ctx, store, "go-weak", content{
		Title: "Weak pointers, revised",
		Body:  "now with cleanups",
	}, kv.PutOptions{}))
	attr.Invalidate(a)

	c4, err := attr.Read(ctx, a)
	require.NoError(t, err)
	require.Equal(t, "Weak pointers, revised", c4.Title)
	require.Equal(t, int32(3), loads.Load())

	// only the bound key travels through a state snapshot; a restored
	// owner re-fetches on first read
	state, err := lazyref.SnapshotState(a)
	require.NoError(t, err)
	data, err := lazyref.EncodeState(state)
	require.NoError(t, err)

	restored, err := lazyref.DecodeState(data)
	require.NoError(t, err)
	fresh := &article{slug: "go-weak"}
	require.NoError(t, lazyref.RestoreState(fresh, restored))

	c5, err := attr.Read(ctx, fresh)
	require.NoError(t, err)
	require.Equal(t, "Weak pointers, revised", c5.Title)
	require.Equal(t, int32(4), loads.Load())

	// a key with no stored record surfaces the store's absence error
	missing := &article{slug: "never-written"}
	require.NoError(t, attr.Bind(missing, missing.slug))
	_, err = attr.Read(ctx, missing)
	require.ErrorIs(t, err, kv.ErrNotFound)

	runtime.KeepAlive(a)
	runtime.KeepAlive(fresh)
	runtime.KeepAlive(c4)
	runtime.KeepAlive(c5)
}
