package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry/dialect"
	"github.com/quarrydev/quarry/querylanguage"
	"github.com/quarrydev/quarry/schema"
	"github.com/quarrydev/quarry/store"
)

// openSQLite seeds a real sqlite database file and opens a store over
// it. The driver is registered by this package's blank import.
func openSQLite(t *testing.T) *store.SQLStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.db")

	db, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	stmts := []string{
		`CREATE TABLE "module" (id INTEGER PRIMARY KEY, name TEXT, path TEXT)`,
		`CREATE TABLE "function" (
			id INTEGER PRIMARY KEY,
			name TEXT,
			raw_string TEXT,
			module_id INTEGER,
			line_number_start INTEGER,
			line_number_end INTEGER,
			input_types TEXT
		)`,
		`CREATE TABLE "function_dependency" (caller_id INTEGER, callee_id INTEGER)`,
		`INSERT INTO "module" VALUES (1, 'app', 'src/app.rs'), (2, 'config', 'src/config.rs')`,
		`INSERT INTO "function" VALUES
			(10, 'main', 'fn main() { run() }', 1, 1, 12, '["Args"]'),
			(11, 'parse_config', 'fn parse_config() -> Config { decode(read_file(PATH)) }', 2, 1, 8, NULL),
			(12, 'read_file', 'fn read_file(path: &Path) -> String { fs::read(path) }', 2, 10, 14, '["Path"]')`,
		`INSERT INTO "function_dependency" VALUES (10, 11), (11, 12)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	s, err := store.Open(dialect.SQLite, "file:"+path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteIntegration(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	t.Run("by_id", func(t *testing.T) {
		e, err := s.ByID(ctx, schema.Function, 11)
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Equal(t, int64(11), e.ID)
		assert.Equal(t, "parse_config", e.String("name"))
		assert.Equal(t, int64(2), e.Int("module_id"))
		assert.True(t, e.IsNull("input_types"))
	})

	t.Run("by_id_absent", func(t *testing.T) {
		e, err := s.ByID(ctx, schema.Function, 99)
		require.NoError(t, err)
		assert.Nil(t, e)
	})

	t.Run("json_payload_decoded", func(t *testing.T) {
		e, err := s.ByID(ctx, schema.Function, 10)
		require.NoError(t, err)
		require.NotNil(t, e)
		v, ok := e.Field("input_types")
		require.True(t, ok)
		assert.Equal(t, []any{"Args"}, v)
	})

	t.Run("all_with_prefix_condition", func(t *testing.T) {
		out, err := s.All(ctx, schema.Function, []querylanguage.Condition{
			{Field: "name", Operator: querylanguage.StartsWith, Value: "parse"},
		})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, int64(11), out[0].ID)
	})

	t.Run("like_is_case_sensitive", func(t *testing.T) {
		// sqlite folds case in its own LIKE, so the pattern operators
		// stay client-side there and must agree with the evaluator.
		out, err := s.All(ctx, schema.Function, []querylanguage.Condition{
			{Field: "name", Operator: querylanguage.Like, Value: "MAIN%"},
		})
		require.NoError(t, err)
		assert.Empty(t, out)

		out, err = s.All(ctx, schema.Function, []querylanguage.Condition{
			{Field: "name", Operator: querylanguage.Like, Value: "main%"},
		})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, int64(10), out[0].ID)
	})

	t.Run("all_ordered_by_id", func(t *testing.T) {
		out, err := s.All(ctx, schema.Function, nil)
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, []int64{10, 11, 12}, []int64{out[0].ID, out[1].ID, out[2].ID})
	})

	t.Run("by_parent_containment", func(t *testing.T) {
		rel, ok := schema.ResolveRelation(schema.Module, "function")
		require.True(t, ok)
		out, err := s.ByParent(ctx, rel, 2)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "parse_config", out[0].String("name"))
		assert.Equal(t, "read_file", out[1].String("name"))
	})

	t.Run("by_parent_inverse", func(t *testing.T) {
		rel, ok := schema.ResolveRelation(schema.Function, "module")
		require.True(t, ok)
		out, err := s.ByParent(ctx, rel, 11)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "config", out[0].String("name"))
	})

	t.Run("by_parent_callers", func(t *testing.T) {
		rel, ok := schema.ResolveRelation(schema.Function, "calling_function")
		require.True(t, ok)
		out, err := s.ByParent(ctx, rel, 11)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "main", out[0].String("name"))
	})

	t.Run("edges", func(t *testing.T) {
		pairs, err := s.Edges(ctx, schema.FunctionDependency)
		require.NoError(t, err)
		assert.Equal(t, []store.EdgePair{{Source: 10, Target: 11}, {Source: 11, Target: 12}}, pairs)
	})
}
