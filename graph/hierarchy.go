package graph

import (
	"context"
	"sort"

	"github.com/quarrydev/quarry/querylanguage"
	"github.com/quarrydev/quarry/schema"
	"github.com/quarrydev/quarry/store"
)

// DefaultMaxDepth bounds call hierarchy expansion when no depth is
// given.
const DefaultMaxDepth = 3

// HierarchyNode is one visited function of a call hierarchy listing.
type HierarchyNode struct {
	Depth  int    `json:"depth"`
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Module string `json:"module"`
}

// HierarchyOptions configures CallHierarchy.
type HierarchyOptions struct {
	// MaxDepth bounds the expansion. Zero expands nothing beyond the
	// root; a negative value selects DefaultMaxDepth.
	MaxDepth int

	// Flatten requests the acyclic view: each function appears once,
	// at its shallowest depth, instead of once per distinct path depth.
	Flatten bool
}

// CallHierarchy expands the callee tree of a named function breadth
// first over the call edge set, up to the configured depth. A function
// already on the current path is not re-expanded, so cyclic call
// graphs terminate; the same function may still appear at several
// depths through different ancestors. The listing is ordered by depth,
// then module name, then function name. An unresolvable root yields an
// empty listing.
func CallHierarchy(ctx context.Context, s store.Store, name, module string, opts HierarchyOptions) ([]HierarchyNode, error) {
	maxDepth := opts.MaxDepth
	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}
	root, err := findFunction(ctx, s, name, module)
	if err != nil || root == nil {
		return nil, err
	}
	adj, err := adjacency(ctx, s, schema.FunctionDependency)
	if err != nil {
		return nil, err
	}
	modules, err := moduleNames(ctx, s)
	if err != nil {
		return nil, err
	}

	functions := map[int64]*schema.Entity{root.ID: root}
	lookup := func(id int64) (*schema.Entity, error) {
		if fn, ok := functions[id]; ok {
			return fn, nil
		}
		fn, err := s.ByID(ctx, schema.Function, id)
		if err != nil {
			return nil, err
		}
		functions[id] = fn
		return fn, nil
	}

	type item struct {
		id    int64
		depth int
		path  map[int64]struct{}
	}
	type visit struct {
		id    int64
		depth int
	}

	nodes := []HierarchyNode{{
		Depth:  0,
		ID:     root.ID,
		Name:   root.String("name"),
		Module: modules[root.Int("module_id")],
	}}
	seen := map[visit]struct{}{{id: root.ID, depth: 0}: {}}
	flat := map[int64]struct{}{root.ID: {}}
	queue := []item{{id: root.ID, depth: 0, path: map[int64]struct{}{root.ID: {}}}}

	for len(queue) > 0 {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}
		cur := queue[0]
		queue = queue[1:]
		if cur.depth == maxDepth {
			continue
		}
		for _, next := range adj[cur.id] {
			if _, onPath := cur.path[next]; onPath {
				continue
			}
			depth := cur.depth + 1
			if opts.Flatten {
				if _, ok := flat[next]; ok {
					continue
				}
			}
			fn, err := lookup(next)
			if err != nil {
				return nil, err
			}
			if fn == nil {
				// Dangling edge target.
				continue
			}
			// Cycles are tracked per path. A node repeated at a depth is
			// emitted once, but each path still expands so descendants
			// reachable only through the later path are found.
			emit := true
			if opts.Flatten {
				flat[next] = struct{}{}
			} else {
				v := visit{id: next, depth: depth}
				if _, ok := seen[v]; ok {
					emit = false
				} else {
					seen[v] = struct{}{}
				}
			}
			if emit {
				nodes = append(nodes, HierarchyNode{
					Depth:  depth,
					ID:     next,
					Name:   fn.String("name"),
					Module: modules[fn.Int("module_id")],
				})
			}
			path := make(map[int64]struct{}, len(cur.path)+1)
			for id := range cur.path {
				path[id] = struct{}{}
			}
			path[next] = struct{}{}
			queue = append(queue, item{id: next, depth: depth, path: path})
		}
	}

	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return nodes, nil
}

// findFunction resolves a function by name, and module name when one
// is given. Ambiguity resolves to the lowest id.
func findFunction(ctx context.Context, s store.Store, name, module string) (*schema.Entity, error) {
	conditions := []querylanguage.Condition{
		{Field: "name", Operator: querylanguage.EQ, Value: name},
	}
	if module != "" {
		mods, err := s.All(ctx, schema.Module, []querylanguage.Condition{
			{Field: "name", Operator: querylanguage.EQ, Value: module},
		})
		if err != nil || len(mods) == 0 {
			return nil, err
		}
		conditions = append(conditions, querylanguage.Condition{
			Field: "module_id", Operator: querylanguage.EQ, Value: mods[0].ID,
		})
	}
	functions, err := s.All(ctx, schema.Function, conditions)
	if err != nil || len(functions) == 0 {
		return nil, err
	}
	return functions[0], nil
}
