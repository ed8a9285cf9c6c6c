package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry"
	"github.com/quarrydev/quarry/querylanguage"
	"github.com/quarrydev/quarry/schema"
	"github.com/quarrydev/quarry/store"
)

func module(id int64, name string) *schema.Entity {
	return &schema.Entity{Type: schema.Module, ID: id, Fields: map[string]any{
		"name": name,
		"path": "src/" + name + ".rs",
	}}
}

func function(id, moduleID int64, name, moduleName string) *schema.Entity {
	return &schema.Entity{Type: schema.Function, ID: id, Fields: map[string]any{
		"name":              name,
		"module_name":       moduleName,
		"module_id":         moduleID,
		"line_number_start": int64(1),
		"line_number_end":   int64(10),
		"raw_string":        nil,
	}}
}

// fixture builds the small graph the store tests share: two modules,
// three functions, and a call edge main -> parseConfig -> readFile.
func fixture() *store.MemStore {
	return store.NewMem().
		Add(
			module(1, "app"),
			module(2, "config"),
			function(10, 1, "main", "app"),
			function(11, 2, "parseConfig", "config"),
			function(12, 2, "readFile", "config"),
		).
		AddEdge(schema.FunctionDependency, 10, 11).
		AddEdge(schema.FunctionDependency, 11, 12)
}

func TestMemStoreByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := fixture()

	e, err := s.ByID(ctx, schema.Module, 2)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "config", e.String("name"))

	// Absent entities are (nil, nil), not an error.
	e, err = s.ByID(ctx, schema.Module, 99)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestMemStoreAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := fixture()

	t.Run("no_conditions_returns_everything", func(t *testing.T) {
		all, err := s.All(ctx, schema.Function, nil)
		require.NoError(t, err)
		require.Len(t, all, 3)
		// Ascending id order.
		assert.Equal(t, int64(10), all[0].ID)
		assert.Equal(t, int64(11), all[1].ID)
		assert.Equal(t, int64(12), all[2].ID)
	})

	t.Run("filtered", func(t *testing.T) {
		got, err := s.All(ctx, schema.Function, []querylanguage.Condition{
			{Field: "module_name", Operator: querylanguage.EQ, Value: "config"},
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "parseConfig", got[0].String("name"))
	})

	t.Run("bad_condition_surfaces", func(t *testing.T) {
		_, err := s.All(ctx, schema.Function, []querylanguage.Condition{
			{Field: "arity", Operator: querylanguage.EQ, Value: 1},
		})
		assert.True(t, quarry.IsUnknownField(err))
	})
}

func TestMemStoreByParent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := fixture()

	t.Run("containment", func(t *testing.T) {
		rel, ok := schema.ResolveRelation(schema.Module, "function")
		require.True(t, ok)
		fns, err := s.ByParent(ctx, rel, 2)
		require.NoError(t, err)
		require.Len(t, fns, 2)
		assert.Equal(t, "parseConfig", fns[0].String("name"))
		assert.Equal(t, "readFile", fns[1].String("name"))
	})

	t.Run("inverse", func(t *testing.T) {
		rel, ok := schema.ResolveRelation(schema.Function, "module")
		require.True(t, ok)
		mods, err := s.ByParent(ctx, rel, 11)
		require.NoError(t, err)
		require.Len(t, mods, 1)
		assert.Equal(t, "config", mods[0].String("name"))
	})

	t.Run("reversed_dependency", func(t *testing.T) {
		rel, ok := schema.ResolveRelation(schema.Function, "calling_function")
		require.True(t, ok)
		callers, err := s.ByParent(ctx, rel, 11)
		require.NoError(t, err)
		require.Len(t, callers, 1)
		assert.Equal(t, "main", callers[0].String("name"))
	})

	t.Run("dangling_parent_is_empty", func(t *testing.T) {
		rel, _ := schema.ResolveRelation(schema.Module, "function")
		fns, err := s.ByParent(ctx, rel, 99)
		require.NoError(t, err)
		assert.Empty(t, fns)
	})
}

func TestMemStoreEdges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := fixture().
		// A duplicated pair must not be reported twice.
		AddEdge(schema.FunctionDependency, 10, 11)

	pairs, err := s.Edges(ctx, schema.FunctionDependency)
	require.NoError(t, err)
	assert.Equal(t, []store.EdgePair{{Source: 10, Target: 11}, {Source: 11, Target: 12}}, pairs)

	empty, err := s.Edges(ctx, schema.TypeDependency)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
