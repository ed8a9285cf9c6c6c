package store

import (
	"context"
	"sort"

	"github.com/quarrydev/quarry/querylanguage"
	"github.com/quarrydev/quarry/schema"
)

// MemStore holds a code graph snapshot in memory. It backs tests and
// small one-shot analyses; entities and edges are added up front and
// never mutated afterwards, matching the engine's read-only contract.
type MemStore struct {
	entities map[schema.EntityType]map[int64]*schema.Entity
	ids      map[schema.EntityType][]int64
	edges    map[string][]EdgePair
}

// NewMem returns an empty in-memory store.
func NewMem() *MemStore {
	return &MemStore{
		entities: make(map[schema.EntityType]map[int64]*schema.Entity),
		ids:      make(map[schema.EntityType][]int64),
		edges:    make(map[string][]EdgePair),
	}
}

// Add inserts entities into the snapshot. It is not safe for use
// concurrently with reads.
func (m *MemStore) Add(entities ...*schema.Entity) *MemStore {
	for _, e := range entities {
		byID, ok := m.entities[e.Type]
		if !ok {
			byID = make(map[int64]*schema.Entity)
			m.entities[e.Type] = byID
		}
		if _, exists := byID[e.ID]; !exists {
			m.ids[e.Type] = append(m.ids[e.Type], e.ID)
		}
		byID[e.ID] = e
	}
	for t := range m.ids {
		sort.Slice(m.ids[t], func(i, j int) bool { return m.ids[t][i] < m.ids[t][j] })
	}
	return m
}

// AddEdge inserts one dependency edge pair.
func (m *MemStore) AddEdge(edge schema.Edge, source, target int64) *MemStore {
	m.edges[edge.Name] = append(m.edges[edge.Name], EdgePair{Source: source, Target: target})
	return m
}

// ByID implements Store.
func (m *MemStore) ByID(_ context.Context, t schema.EntityType, id int64) (*schema.Entity, error) {
	e, ok := m.entities[t][id]
	if !ok {
		return nil, nil
	}
	return e, nil
}

// ByParent implements Store.
func (m *MemStore) ByParent(ctx context.Context, rel schema.Relation, parentID int64) ([]*schema.Entity, error) {
	switch rel.Kind {
	case schema.Inverse:
		parent, ok := m.entities[rel.Parent][parentID]
		if !ok || parent.IsNull(rel.ForeignKey) {
			return nil, nil
		}
		child, ok := m.entities[rel.Child][parent.Int(rel.ForeignKey)]
		if !ok {
			return nil, nil
		}
		return []*schema.Entity{child}, nil
	case schema.Dependency:
		var out []*schema.Entity
		for _, p := range dedupe(m.edges[rel.Edge.Name]) {
			from, to := p.Source, p.Target
			if rel.Reversed {
				from, to = to, from
			}
			if from != parentID {
				continue
			}
			if e, ok := m.entities[rel.Child][to]; ok {
				out = append(out, e)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	default:
		var out []*schema.Entity
		for _, id := range m.ids[rel.Child] {
			e := m.entities[rel.Child][id]
			if e.Int(rel.ForeignKey) == parentID && !e.IsNull(rel.ForeignKey) {
				out = append(out, e)
			}
		}
		return out, nil
	}
}

// All implements Store.
func (m *MemStore) All(_ context.Context, t schema.EntityType, conditions []querylanguage.Condition) ([]*schema.Entity, error) {
	var out []*schema.Entity
	for _, id := range m.ids[t] {
		e := m.entities[t][id]
		ok, err := querylanguage.MatchAll(e, conditions)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// Edges implements Store.
func (m *MemStore) Edges(_ context.Context, edge schema.Edge) ([]EdgePair, error) {
	return dedupe(m.edges[edge.Name]), nil
}

var _ Store = (*MemStore)(nil)
