package store

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/quarrydev/quarry"
	"github.com/quarrydev/quarry/querylanguage"
	"github.com/quarrydev/quarry/schema"
)

// CachedStore layers a quarry.Cache over another Store. Only the keyed
// fetches (ByID, ByParent) are cached; All and Edges results depend on
// free-form conditions and whole tables, and always hit the backend.
//
// The engine is read-only over an ingested snapshot, so entries never
// need invalidation beyond their TTL; re-ingestion is expected to bump
// the cache namespace or clear it.
type CachedStore struct {
	backend Store
	cache   quarry.Cache
	ttl     time.Duration
	log     *slog.Logger
}

// CachedOption configures the CachedStore.
type CachedOption func(*CachedStore)

// WithTTL sets the expiry of cached entries. Zero means no expiry.
func WithTTL(ttl time.Duration) CachedOption {
	return func(c *CachedStore) {
		c.ttl = ttl
	}
}

// WithCacheLogger sets the logger cache faults are reported to.
func WithCacheLogger(log *slog.Logger) CachedOption {
	return func(c *CachedStore) {
		c.log = log
	}
}

// NewCached wraps a Store with a cache.
func NewCached(backend Store, cache quarry.Cache, opts ...CachedOption) *CachedStore {
	c := &CachedStore{backend: backend, cache: cache, log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// entityRecord is the msgpack shape one entity is cached as.
type entityRecord struct {
	Type   string         `msgpack:"type"`
	ID     int64          `msgpack:"id"`
	Fields map[string]any `msgpack:"fields"`
}

func encodeEntities(entities []*schema.Entity) ([]byte, error) {
	records := make([]entityRecord, len(entities))
	for i, e := range entities {
		records[i] = entityRecord{Type: string(e.Type), ID: e.ID, Fields: e.Fields}
	}
	return msgpack.Marshal(records)
}

func decodeEntities(data []byte) ([]*schema.Entity, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	// Field maps decode through interface values; loose decoding keeps
	// integers int64 so cached entities compare equal to fetched ones.
	dec.UseLooseInterfaceDecoding(true)
	var records []entityRecord
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	entities := make([]*schema.Entity, len(records))
	for i, r := range records {
		entities[i] = &schema.Entity{Type: schema.EntityType(r.Type), ID: r.ID, Fields: r.Fields}
	}
	return entities, nil
}

// ByID implements Store.
func (c *CachedStore) ByID(ctx context.Context, t schema.EntityType, id int64) (*schema.Entity, error) {
	key := quarry.CacheKey{Entity: string(t), Op: "fetch_by_id", ID: id}.String()
	if cached, ok := c.lookup(ctx, key); ok {
		if len(cached) == 0 {
			return nil, nil
		}
		return cached[0], nil
	}
	e, err := c.backend.ByID(ctx, t, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		c.save(ctx, key, nil)
		return nil, nil
	}
	c.save(ctx, key, []*schema.Entity{e})
	return e, nil
}

// ByParent implements Store.
func (c *CachedStore) ByParent(ctx context.Context, rel schema.Relation, parentID int64) ([]*schema.Entity, error) {
	key := quarry.CacheKey{
		Entity: string(rel.Parent) + "." + rel.Role,
		Op:     "fetch_by_parent",
		ID:     parentID,
	}.String()
	if cached, ok := c.lookup(ctx, key); ok {
		return cached, nil
	}
	entities, err := c.backend.ByParent(ctx, rel, parentID)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, entities)
	return entities, nil
}

// All implements Store, delegating to the backend.
func (c *CachedStore) All(ctx context.Context, t schema.EntityType, conditions []querylanguage.Condition) ([]*schema.Entity, error) {
	return c.backend.All(ctx, t, conditions)
}

// Edges implements Store, delegating to the backend.
func (c *CachedStore) Edges(ctx context.Context, edge schema.Edge) ([]EdgePair, error) {
	return c.backend.Edges(ctx, edge)
}

// Invalidate clears every cached entry, typically after re-ingestion.
func (c *CachedStore) Invalidate(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// lookup reads and decodes one cache entry. Cache faults are logged
// and treated as misses; the cache must never fail a query.
func (c *CachedStore) lookup(ctx context.Context, key string) ([]*schema.Entity, bool) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.WarnContext(ctx, "cache get failed", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	if data == nil {
		return nil, false
	}
	entities, err := decodeEntities(data)
	if err != nil {
		c.log.WarnContext(ctx, "cache entry corrupt", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return entities, true
}

func (c *CachedStore) save(ctx context.Context, key string, entities []*schema.Entity) {
	data, err := encodeEntities(entities)
	if err != nil {
		c.log.WarnContext(ctx, "cache encode failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.log.WarnContext(ctx, "cache set failed", slog.String("key", key), slog.Any("error", err))
	}
}

var _ Store = (*CachedStore)(nil)
