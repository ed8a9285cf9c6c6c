package query

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quarrydev/quarry"
	"github.com/quarrydev/quarry/querylanguage"
	"github.com/quarrydev/quarry/schema"
	"github.com/quarrydev/quarry/store"
)

// Interpreter executes query descriptors and pattern matches against a
// store. It holds no per-query state; one Interpreter serves concurrent
// callers.
type Interpreter struct {
	store store.Store
	log   *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger used for query diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(in *Interpreter) {
		in.log = log
	}
}

// New returns an Interpreter reading from s.
func New(s store.Store, opts ...Option) *Interpreter {
	in := &Interpreter{store: s, log: slog.Default()}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Execute returns the entities of the descriptor's type, in ascending
// id order, that satisfy every condition and are anchored by every
// join. Joins are conjunctive; descriptors wanting disjunction issue
// one Execute per branch and union the results.
func (in *Interpreter) Execute(ctx context.Context, d *querylanguage.Descriptor) ([]*schema.Entity, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	qid := uuid.NewString()
	start := time.Now()
	in.log.DebugContext(ctx, "executing query",
		slog.String("query_id", qid),
		slog.String("descriptor", d.String()),
	)
	typ := schema.EntityType(d.Type)
	entities, err := in.store.All(ctx, typ, d.Conditions)
	if err != nil {
		return nil, err
	}
	entities, err = in.restrict(ctx, typ, entities, d.Joins)
	if err != nil {
		return nil, err
	}
	in.log.DebugContext(ctx, "query done",
		slog.String("query_id", qid),
		slog.Int("results", len(entities)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return entities, nil
}

// restrict intersects entities with the anchor set of each join,
// innermost joins resolved first.
func (in *Interpreter) restrict(ctx context.Context, typ schema.EntityType, entities []*schema.Entity, joins []querylanguage.Descriptor) ([]*schema.Entity, error) {
	for i := range joins {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		join := &joins[i]
		rel, ok := schema.ResolveRelation(typ, join.Type)
		if !ok {
			return nil, quarry.NewUnknownRelationError(string(typ), join.Type)
		}
		children, err := in.store.All(ctx, rel.Child, join.Conditions)
		if err != nil {
			return nil, err
		}
		children, err = in.restrict(ctx, rel.Child, children, join.Joins)
		if err != nil {
			return nil, err
		}
		anchored, err := in.anchors(ctx, rel, children)
		if err != nil {
			return nil, err
		}
		kept := make([]*schema.Entity, 0, len(entities))
		for _, e := range entities {
			if anchored(e) {
				kept = append(kept, e)
			}
		}
		entities = kept
	}
	return entities, nil
}

// anchors builds the membership test admitting a candidate parent into
// one join's anchor set, given the join's satisfying child entities.
func (in *Interpreter) anchors(ctx context.Context, rel schema.Relation, children []*schema.Entity) (func(*schema.Entity) bool, error) {
	switch rel.Kind {
	case schema.Inverse:
		// The candidate row carries the child's id.
		ids := idSet(children)
		return func(e *schema.Entity) bool {
			if e.IsNull(rel.ForeignKey) {
				return false
			}
			_, ok := ids[e.Int(rel.ForeignKey)]
			return ok
		}, nil
	case schema.Dependency:
		pairs, err := in.store.Edges(ctx, rel.Edge)
		if err != nil {
			return nil, err
		}
		ids := idSet(children)
		parents := make(map[int64]struct{}, len(pairs))
		for _, p := range pairs {
			parent, child := p.Source, p.Target
			if rel.Reversed {
				parent, child = child, parent
			}
			if _, ok := ids[child]; ok {
				parents[parent] = struct{}{}
			}
		}
		return func(e *schema.Entity) bool {
			_, ok := parents[e.ID]
			return ok
		}, nil
	default:
		// The child row carries the candidate's id.
		parents := make(map[int64]struct{}, len(children))
		for _, c := range children {
			if !c.IsNull(rel.ForeignKey) {
				parents[c.Int(rel.ForeignKey)] = struct{}{}
			}
		}
		return func(e *schema.Entity) bool {
			_, ok := parents[e.ID]
			return ok
		}, nil
	}
}

func idSet(entities []*schema.Entity) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(entities))
	for _, e := range entities {
		ids[e.ID] = struct{}{}
	}
	return ids
}
