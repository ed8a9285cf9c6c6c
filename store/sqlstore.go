package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/quarrydev/quarry"
	"github.com/quarrydev/quarry/dialect"
	dsql "github.com/quarrydev/quarry/dialect/sql"
	"github.com/quarrydev/quarry/querylanguage"
	"github.com/quarrydev/quarry/schema"
)

// SQLStore reads the code graph from a relational database through a
// dialect.Driver.
type SQLStore struct {
	drv dialect.Driver
	log *slog.Logger
}

// SQLOption configures the SQLStore.
type SQLOption func(*SQLStore)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(log *slog.Logger) SQLOption {
	return func(s *SQLStore) {
		s.log = log
	}
}

// NewSQL returns a Store reading through the given driver.
func NewSQL(drv dialect.Driver, opts ...SQLOption) *SQLStore {
	s := &SQLStore{drv: drv, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the underlying driver.
func (s *SQLStore) Close() error {
	return s.drv.Close()
}

// ByID implements Store.
func (s *SQLStore) ByID(ctx context.Context, t schema.EntityType, id int64) (*schema.Entity, error) {
	if !t.Valid() {
		return nil, quarry.NewUnknownRelationError("", string(t))
	}
	query, args := dsql.Select().
		From(t.Table()).
		Where(dsql.EQ("id", id)).
		Dialect(s.drv.Dialect()).
		Query()
	entities, err := s.fetch(ctx, "fetch_by_id", t, query, args)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, nil
	}
	return entities[0], nil
}

// ByParent implements Store.
func (s *SQLStore) ByParent(ctx context.Context, rel schema.Relation, parentID int64) ([]*schema.Entity, error) {
	switch rel.Kind {
	case schema.Inverse:
		// The foreign key lives on the parent row; follow it.
		parent, err := s.ByID(ctx, rel.Parent, parentID)
		if err != nil || parent == nil {
			return nil, err
		}
		if parent.IsNull(rel.ForeignKey) {
			return nil, nil
		}
		child, err := s.ByID(ctx, rel.Child, parent.Int(rel.ForeignKey))
		if err != nil || child == nil {
			return nil, err
		}
		return []*schema.Entity{child}, nil
	case schema.Dependency:
		ids, err := s.neighborIDs(ctx, rel.Edge, rel.Reversed, parentID)
		if err != nil || len(ids) == 0 {
			return nil, err
		}
		vs := make([]any, len(ids))
		for i, id := range ids {
			vs[i] = id
		}
		query, args := dsql.Select().
			From(rel.Child.Table()).
			Where(dsql.In("id", vs...)).
			OrderBy("id").
			Dialect(s.drv.Dialect()).
			Query()
		return s.fetch(ctx, "fetch_by_parent", rel.Child, query, args)
	default:
		query, args := dsql.Select().
			From(rel.Child.Table()).
			Where(dsql.EQ(rel.ForeignKey, parentID)).
			OrderBy("id").
			Dialect(s.drv.Dialect()).
			Query()
		return s.fetch(ctx, "fetch_by_parent", rel.Child, query, args)
	}
}

// All implements Store. Conditions whose operator translates to SQL are
// pushed down; the rest are evaluated client-side.
func (s *SQLStore) All(ctx context.Context, t schema.EntityType, conditions []querylanguage.Condition) ([]*schema.Entity, error) {
	if !t.Valid() {
		return nil, quarry.NewUnknownRelationError("", string(t))
	}
	sel := dsql.Select().From(t.Table()).OrderBy("id").Dialect(s.drv.Dialect())
	var residual []querylanguage.Condition
	for _, c := range conditions {
		if pred, ok := pushDown(s.drv.Dialect(), t, c); ok {
			sel.Where(pred)
		} else {
			residual = append(residual, c)
		}
	}
	query, args := sel.Query()
	entities, err := s.fetch(ctx, "fetch_all", t, query, args)
	if err != nil {
		return nil, err
	}
	if len(residual) == 0 {
		return entities, nil
	}
	filtered := entities[:0]
	for _, e := range entities {
		ok, err := querylanguage.MatchAll(e, residual)
		if err != nil {
			return nil, err
		}
		if ok {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Edges implements Store.
func (s *SQLStore) Edges(ctx context.Context, edge schema.Edge) ([]EdgePair, error) {
	query, args := dsql.Select(edge.SourceColumn, edge.TargetColumn).
		From(edge.Name).
		OrderBy(edge.SourceColumn, edge.TargetColumn).
		Dialect(s.drv.Dialect()).
		Query()
	rows := &dsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, quarry.NewStoreUnavailableError("fetch_edges", err)
	}
	defer rows.Close()
	var pairs []EdgePair
	for rows.Next() {
		var p EdgePair
		if err := rows.Scan(&p.Source, &p.Target); err != nil {
			return nil, quarry.NewStoreUnavailableError("fetch_edges", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, quarry.NewStoreUnavailableError("fetch_edges", err)
	}
	return dedupe(pairs), nil
}

// neighborIDs returns the ids adjacent to nodeID in the edge set,
// walking source-to-target, or target-to-source when reversed.
func (s *SQLStore) neighborIDs(ctx context.Context, edge schema.Edge, reversed bool, nodeID int64) ([]int64, error) {
	from, to := edge.SourceColumn, edge.TargetColumn
	if reversed {
		from, to = to, from
	}
	query, args := dsql.Select(to).
		From(edge.Name).
		Where(dsql.EQ(from, nodeID)).
		OrderBy(to).
		Dialect(s.drv.Dialect()).
		Query()
	rows := &dsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, quarry.NewStoreUnavailableError("fetch_edges", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, quarry.NewStoreUnavailableError("fetch_edges", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, quarry.NewStoreUnavailableError("fetch_edges", err)
	}
	return ids, nil
}

// fetch runs one SELECT and scans the result set into entities.
func (s *SQLStore) fetch(ctx context.Context, op string, t schema.EntityType, query string, args []any) ([]*schema.Entity, error) {
	rows := &dsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, quarry.NewStoreUnavailableError(op, err)
	}
	defer rows.Close()
	entities, err := scanEntities(rows, t)
	if err != nil {
		return nil, quarry.NewStoreUnavailableError(op, err)
	}
	s.log.DebugContext(ctx, "store fetch",
		slog.String("op", op),
		slog.String("entity", string(t)),
		slog.Int("rows", len(entities)),
	)
	return entities, nil
}

// scanEntities decodes every row of the result set into an Entity,
// mapping column values through the field catalog. Columns not in the
// catalog are ignored.
func scanEntities(rows *dsql.Rows, t schema.EntityType) ([]*schema.Entity, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	kinds := make([]schema.Kind, len(columns))
	known := make([]bool, len(columns))
	for i, col := range columns {
		kinds[i], known[i] = schema.LookupField(t, col)
	}
	var entities []*schema.Entity
	for rows.Next() {
		dest := make([]any, len(columns))
		for i := range dest {
			if !known[i] {
				dest[i] = new(sql.RawBytes)
				continue
			}
			switch kinds[i] {
			case schema.KindInt:
				dest[i] = new(sql.NullInt64)
			case schema.KindBool:
				dest[i] = new(sql.NullBool)
			default:
				dest[i] = new(sql.NullString)
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		e := &schema.Entity{Type: t, Fields: make(map[string]any, len(columns))}
		for i, col := range columns {
			if !known[i] {
				continue
			}
			switch v := dest[i].(type) {
			case *sql.NullInt64:
				if !v.Valid {
					e.Fields[col] = nil
				} else if col == schema.FieldID {
					e.ID = v.Int64
				} else {
					e.Fields[col] = v.Int64
				}
			case *sql.NullBool:
				if v.Valid {
					e.Fields[col] = v.Bool
				} else {
					e.Fields[col] = nil
				}
			case *sql.NullString:
				switch {
				case !v.Valid:
					e.Fields[col] = nil
				case kinds[i] == schema.KindJSON:
					var payload any
					if err := json.Unmarshal([]byte(v.String), &payload); err != nil {
						// Malformed payloads degrade to raw text.
						e.Fields[col] = v.String
					} else {
						e.Fields[col] = payload
					}
				default:
					e.Fields[col] = v.String
				}
			}
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// pushDown translates one condition into a SQL predicate, when the
// operator, value shape and dialect allow it. JSON payload fields are
// always filtered client-side. The case-sensitive pattern operators
// only push down on Postgres: sqlite's LIKE folds ASCII case and MySQL
// follows the column collation, so elsewhere they stay in the residual
// to keep the store in agreement with the evaluator.
func pushDown(dialectName string, t schema.EntityType, c querylanguage.Condition) (dsql.Predicate, bool) {
	kind, ok := schema.LookupField(t, c.Field)
	if !ok || kind == schema.KindJSON {
		return nil, false
	}
	op := c.Operator
	if op == "" {
		op = querylanguage.EQ
	}
	switch op {
	case querylanguage.EQ:
		return dsql.EQ(c.Field, c.Value), true
	case querylanguage.NE:
		return dsql.NEQ(c.Field, c.Value), true
	case querylanguage.GT:
		return dsql.GT(c.Field, c.Value), true
	case querylanguage.LT:
		return dsql.LT(c.Field, c.Value), true
	case querylanguage.GE:
		return dsql.GTE(c.Field, c.Value), true
	case querylanguage.LE:
		return dsql.LTE(c.Field, c.Value), true
	case querylanguage.Like:
		if pattern, ok := c.Value.(string); ok && dialectName == dialect.Postgres {
			return dsql.Like(c.Field, pattern), true
		}
	case querylanguage.ILike:
		if pattern, ok := c.Value.(string); ok {
			return dsql.ILike(c.Field, pattern), true
		}
	case querylanguage.In:
		if list, ok := c.Value.([]any); ok {
			return dsql.In(c.Field, list...), true
		}
	case querylanguage.NotIn:
		if list, ok := c.Value.([]any); ok {
			return dsql.NotIn(c.Field, list...), true
		}
	case querylanguage.Contains:
		if sub, ok := c.Value.(string); ok && dialectName == dialect.Postgres {
			return dsql.Contains(c.Field, sub), true
		}
	case querylanguage.StartsWith:
		if prefix, ok := c.Value.(string); ok && dialectName == dialect.Postgres {
			return dsql.HasPrefix(c.Field, prefix), true
		}
	case querylanguage.EndsWith:
		if suffix, ok := c.Value.(string); ok && dialectName == dialect.Postgres {
			return dsql.HasSuffix(c.Field, suffix), true
		}
	case querylanguage.Between:
		if pair, ok := c.Value.([]any); ok && len(pair) == 2 {
			return dsql.Between(c.Field, pair[0], pair[1]), true
		}
	case querylanguage.IsNull:
		if wantNull, ok := c.Value.(bool); ok {
			if wantNull {
				return dsql.IsNull(c.Field), true
			}
			return dsql.NotNull(c.Field), true
		}
	}
	return nil, false
}

var _ Store = (*SQLStore)(nil)
