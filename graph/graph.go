package graph

import (
	"context"
	"sort"

	"github.com/quarrydev/quarry/schema"
	"github.com/quarrydev/quarry/store"
)

// adjacency loads an edge set into a source-to-targets map, neighbor
// lists sorted ascending for deterministic expansion order.
func adjacency(ctx context.Context, s store.Store, edge schema.Edge) (map[int64][]int64, error) {
	pairs, err := s.Edges(ctx, edge)
	if err != nil {
		return nil, err
	}
	adj := make(map[int64][]int64)
	for _, p := range pairs {
		adj[p.Source] = append(adj[p.Source], p.Target)
	}
	for id := range adj {
		sort.Slice(adj[id], func(i, j int) bool { return adj[id][i] < adj[id][j] })
	}
	return adj, nil
}

// moduleNames loads the id-to-name map of every module.
func moduleNames(ctx context.Context, s store.Store) (map[int64]string, error) {
	modules, err := s.All(ctx, schema.Module, nil)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(modules))
	for _, m := range modules {
		names[m.ID] = m.String("name")
	}
	return names, nil
}

// cancelled is the cooperative cancellation check traversal loops run
// each step.
func cancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
