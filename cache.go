package quarry

import (
	"context"
	"strconv"
	"time"
)

// Cache stores serialized fetch results. Implementations may be backed
// by memory, Redis or any other key-value store.
type Cache interface {
	// Get retrieves a value. A missing key yields nil, nil.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a single key.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes everything.
	Clear(ctx context.Context) error
}

// CacheKey identifies a cached store fetch.
type CacheKey struct {
	Entity string // Entity type being fetched
	Op     string // Store operation (fetch_by_id, fetch_by_parent, fetch_all)
	ID     int64  // Entity or parent id, 0 for fetch_all
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return k.Entity + ":" + k.Op + ":" + strconv.FormatInt(k.ID, 10)
}
