package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/codewandler/lazyref-go/ports/kv"
)

type StoreConfig struct {
	Connect Connector    // Connect is used to create the underlying NATS connection. If nil, ConnectDefault() is used.
	Log     *slog.Logger // Log for diagnostics (optional)
	Bucket  string       // Bucket is the jetstream key-value bucket backing the store

	// TTL is the bucket-level retention. Per-entry TTLs from PutOptions
	// are not supported by jetstream buckets and map to this instead.
	TTL time.Duration

	// MaxBytes is the maximum total size of the bucket (default 1MiB).
	MaxBytes int64
}

// Store is a jetstream key-value backed kv.Store.
type Store struct {
	kv      jetstream.KeyValue
	log     *slog.Logger
	bucket  string
	release closeFunc
}

func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}

	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}

	nc, release, err := doConnect()
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		release()
		return nil, err
	}

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With(
		slog.String("store", "nats_kv"),
		slog.String("bucket", cfg.Bucket),
	)

	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = 1024 * 1024
	}

	log.Debug("ensuring bucket")

	ctx, cancel := context.WithTimeout(context.Background(), 10*natsgo.DefaultTimeout)
	defer cancel()

	bucket, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:   cfg.Bucket,
		Storage:  jetstream.FileStorage,
		MaxBytes: maxBytes,
		TTL:      cfg.TTL,
	})
	if err != nil {
		release()
		return nil, fmt.Errorf("failed to ensure bucket %q: %w", cfg.Bucket, err)
	}

	return &Store{
		kv:      bucket,
		log:     log,
		bucket:  cfg.Bucket,
		release: release,
	}, nil
}

// Close releases the underlying connection lease.
func (s *Store) Close() error {
	s.release()
	s.log.Debug("closed store")
	return nil
}

func (s *Store) Put(ctx context.Context, key string, entry kv.Entry, _ kv.PutOptions) error {
	rev, err := s.kv.Put(ctx, key, entry.Data)
	if err != nil {
		return fmt.Errorf("failed to put %q: %w", key, err)
	}
	s.log.Debug("put", slog.String("key", key), slog.Uint64("revision", rev))
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (kv.Entry, error) {
	e, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return kv.Entry{}, kv.ErrNotFound
		}
		return kv.Entry{}, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return kv.Entry{Data: e.Value(), Revision: e.Revision()}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

var _ kv.Store = (*Store)(nil)
