package graph

import (
	"context"
	"sort"
	"strings"

	"github.com/quarrydev/quarry/querylanguage"
	"github.com/quarrydev/quarry/schema"
	"github.com/quarrydev/quarry/store"
)

// TypeSubgraph returns the ids of every type reachable from the named
// root type over the type dependency edge set, the root included,
// ascending by id. The root is addressed by type name and owning
// module name; moduleFilter, when non-empty, keeps only reachable
// types whose module name contains it. An unresolvable root yields an
// empty result.
func TypeSubgraph(ctx context.Context, s store.Store, typeName, moduleName, moduleFilter string) ([]int64, error) {
	roots, err := findTypes(ctx, s, typeName, moduleName)
	if err != nil || len(roots) == 0 {
		return nil, err
	}
	adj, err := adjacency(ctx, s, schema.TypeDependency)
	if err != nil {
		return nil, err
	}

	reachable := make(map[int64]struct{})
	for _, root := range roots {
		visited := map[int64]struct{}{root.ID: {}}
		queue := []int64{root.ID}
		for len(queue) > 0 {
			if err := cancelled(ctx); err != nil {
				return nil, err
			}
			cur := queue[0]
			queue = queue[1:]
			reachable[cur] = struct{}{}
			for _, next := range adj[cur] {
				if _, ok := visited[next]; ok {
					continue
				}
				visited[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}

	ids := make([]int64, 0, len(reachable))
	for id := range reachable {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if moduleFilter == "" {
		return ids, nil
	}
	return filterByModule(ctx, s, ids, moduleFilter)
}

// findTypes resolves types by name within the named module.
func findTypes(ctx context.Context, s store.Store, typeName, moduleName string) ([]*schema.Entity, error) {
	conditions := []querylanguage.Condition{
		{Field: "type_name", Operator: querylanguage.EQ, Value: typeName},
	}
	if moduleName != "" {
		mods, err := s.All(ctx, schema.Module, []querylanguage.Condition{
			{Field: "name", Operator: querylanguage.EQ, Value: moduleName},
		})
		if err != nil || len(mods) == 0 {
			return nil, err
		}
		conditions = append(conditions, querylanguage.Condition{
			Field: "module_id", Operator: querylanguage.EQ, Value: mods[0].ID,
		})
	}
	return s.All(ctx, schema.TypeDef, conditions)
}

// filterByModule keeps the type ids whose module name contains the
// filter substring.
func filterByModule(ctx context.Context, s store.Store, ids []int64, filter string) ([]int64, error) {
	modules, err := moduleNames(ctx, s)
	if err != nil {
		return nil, err
	}
	kept := make([]int64, 0, len(ids))
	for _, id := range ids {
		typ, err := s.ByID(ctx, schema.TypeDef, id)
		if err != nil {
			return nil, err
		}
		if typ == nil {
			continue
		}
		if strings.Contains(modules[typ.Int("module_id")], filter) {
			kept = append(kept, id)
		}
	}
	return kept, nil
}
