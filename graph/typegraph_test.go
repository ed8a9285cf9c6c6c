package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry/graph"
)

func TestTypeSubgraph(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := fixture()

	t.Run("reachable_set", func(t *testing.T) {
		ids, err := graph.TypeSubgraph(ctx, s, "Config", "config", "")
		require.NoError(t, err)
		assert.Equal(t, []int64{40, 41, 42}, ids)
	})

	t.Run("module_filter", func(t *testing.T) {
		ids, err := graph.TypeSubgraph(ctx, s, "Config", "config", "util")
		require.NoError(t, err)
		assert.Equal(t, []int64{41, 42}, ids)
	})

	t.Run("cyclic_edges_terminate", func(t *testing.T) {
		ids, err := graph.TypeSubgraph(ctx, s, "PathBuf", "util", "")
		require.NoError(t, err)
		assert.Equal(t, []int64{41, 42}, ids)
	})

	t.Run("unknown_root_is_empty", func(t *testing.T) {
		ids, err := graph.TypeSubgraph(ctx, s, "Nope", "config", "")
		require.NoError(t, err)
		assert.Empty(t, ids)

		ids, err = graph.TypeSubgraph(ctx, s, "Config", "nope", "")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}
