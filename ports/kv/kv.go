package kv

import (
	"context"
	"errors"
	"time"

	"github.com/codewandler/lazyref-go/internal/codec"
)

var (
	ErrNotFound = errors.New("not found")
)

// Entry is a stored value. Revision is assigned by the store on write and
// is zero for stores that do not version entries; Put ignores it.
type Entry struct {
	Data     []byte
	Revision uint64
}

// PutOptions carries per-write options. TTL is advisory: stores that
// cannot expire individual entries apply their bucket-level retention
// instead.
type PutOptions struct {
	TTL time.Duration
}

type Store interface {
	Put(ctx context.Context, key string, entry Entry, opts PutOptions) error
	Get(ctx context.Context, key string) (entry Entry, err error)
	Delete(ctx context.Context, key string) error
}

var valueCodec codec.Codec = codec.CompactJSONCodec{}

func Put[T any](ctx context.Context, store Store, key string, v T, opts PutOptions) error {
	data, err := valueCodec.Marshal(v)
	if err != nil {
		return err
	}
	return store.Put(ctx, key, Entry{Data: data}, opts)
}

func Get[T any](ctx context.Context, store Store, key string) (out T, err error) {
	entry, err := store.Get(ctx, key)
	if err != nil {
		return
	}
	err = valueCodec.Unmarshal(entry.Data, &out)
	if err != nil {
		return
	}
	return
}
