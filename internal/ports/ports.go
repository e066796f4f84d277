package ports

import (
	"context"
	"time"
)

// KV is one key/value pair returned by a Scan.
type KV struct {
	Key   []byte
	Value []byte
}

// Store is a durable mapping from structured keys to serialized records over
// a sorted keyspace. Implementations guarantee atomicity per operation, not
// across operations; multi-key sequencing is the caller's responsibility.
//
// Get returns (nil, nil) when the key is absent.
// Scan returns all pairs whose key starts with prefix, in ascending key order.
type Store interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Put(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error
	Scan(ctx context.Context, prefix []byte) ([]KV, error)
	Close() error
}

// Clock supplies the current time. Injected so the engine's timestamps are
// testable.
type Clock interface {
	Now() time.Time
}

// IDSource supplies unique identifiers for new records.
type IDSource interface {
	NewID() string
}
