package store

import (
	"context"

	"github.com/quarrydev/quarry/querylanguage"
	"github.com/quarrydev/quarry/schema"
)

// Store is the read-only contract the engine fetches the code graph
// through. Implementations must return entities in ascending id order
// and report a missing entity as (nil, nil).
type Store interface {
	// ByID fetches one entity by primary key. Returns (nil, nil) when
	// no entity with the id exists.
	ByID(ctx context.Context, t schema.EntityType, id int64) (*schema.Entity, error)

	// ByParent fetches the child entities of rel for the given parent
	// id. Dangling references yield an empty slice, not an error.
	ByParent(ctx context.Context, rel schema.Relation, parentID int64) ([]*schema.Entity, error)

	// All fetches every entity of the type satisfying the conditions.
	// An empty condition list fetches the whole type.
	All(ctx context.Context, t schema.EntityType, conditions []querylanguage.Condition) ([]*schema.Entity, error)

	// Edges fetches a dependency edge set as deduplicated
	// (source, target) pairs.
	Edges(ctx context.Context, edge schema.Edge) ([]EdgePair, error)
}

// EdgePair is one (source, target) row of a dependency edge set.
type EdgePair struct {
	Source int64
	Target int64
}

// dedupe drops repeated (source, target) pairs while preserving order.
// Edge sets are unique by contract but traversal must not double-count
// if an ingester violated it.
func dedupe(pairs []EdgePair) []EdgePair {
	seen := make(map[EdgePair]struct{}, len(pairs))
	out := make([]EdgePair, 0, len(pairs))
	for _, p := range pairs {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
