package analysis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry/analysis"
)

func TestDuplicatePatterns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := fixture()

	patterns, err := analysis.DuplicatePatterns(ctx, s, analysis.DuplicateOptions{})
	require.NoError(t, err)
	// Every five-line window of the shared ten-line body is duplicated.
	require.Len(t, patterns, 6)
	for _, p := range patterns {
		assert.Greater(t, len(p.Snippet), analysis.DefaultMinSnippetLength)
		require.Len(t, p.Functions, 2)
		assert.Equal(t, int64(10), p.Functions[0].ID)
		assert.Equal(t, int64(11), p.Functions[1].ID)
	}

	t.Run("min_length_excludes_boilerplate", func(t *testing.T) {
		patterns, err := analysis.DuplicatePatterns(ctx, s, analysis.DuplicateOptions{MinLength: 10000})
		require.NoError(t, err)
		assert.Empty(t, patterns)
	})

	t.Run("min_matches_raises_the_owner_bound", func(t *testing.T) {
		// The shared body has exactly two owners, so no pattern survives
		// a three-owner requirement.
		patterns, err := analysis.DuplicatePatterns(ctx, s, analysis.DuplicateOptions{MinMatches: 3})
		require.NoError(t, err)
		assert.Empty(t, patterns)

		// A third owner of the same body makes the bound reachable, and
		// every reported pattern carries at least three owners.
		wider := fixture().Add(function(14, 2, "processRefunds", processBody, 1, 10))
		patterns, err = analysis.DuplicatePatterns(ctx, wider, analysis.DuplicateOptions{MinMatches: 3})
		require.NoError(t, err)
		require.Len(t, patterns, 6)
		for _, p := range patterns {
			require.GreaterOrEqual(t, len(p.Functions), 3)
			assert.Equal(t, int64(14), p.Functions[2].ID)
		}
	})

	t.Run("wider_window", func(t *testing.T) {
		patterns, err := analysis.DuplicatePatterns(ctx, s, analysis.DuplicateOptions{WindowSize: 10})
		require.NoError(t, err)
		// One ten-line window, shared by both owners.
		require.Len(t, patterns, 1)
		assert.Len(t, patterns[0].Functions, 2)
	})
}
