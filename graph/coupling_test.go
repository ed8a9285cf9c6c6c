package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry/graph"
)

func TestCrossModuleDependencies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	deps, err := graph.CrossModuleDependencies(ctx, fixture())
	require.NoError(t, err)
	want := []graph.ModuleDependency{
		{
			CallerModule: graph.ModuleRef{ID: 1, Name: "app"},
			CalleeModule: graph.ModuleRef{ID: 2, Name: "config"},
			CallCount:    2,
		},
		{
			CallerModule: graph.ModuleRef{ID: 2, Name: "config"},
			CalleeModule: graph.ModuleRef{ID: 3, Name: "util"},
			CallCount:    1,
			Cyclic:       true,
		},
		{
			CallerModule: graph.ModuleRef{ID: 3, Name: "util"},
			CalleeModule: graph.ModuleRef{ID: 2, Name: "config"},
			CallCount:    1,
			Cyclic:       true,
		},
	}
	assert.Equal(t, want, deps)
}

func TestModuleCoupling(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	report, err := graph.ModuleCoupling(ctx, fixture())
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalCrossModuleCalls)
	assert.Equal(t, 3, report.ModuleCount)
	assert.Equal(t, 3, report.DependencyCount)

	require.Len(t, report.Modules, 3)
	// Highest coupling first.
	assert.Equal(t, graph.ModuleMetrics{ID: 2, Name: "config", Incoming: 3, Outgoing: 1, Total: 4}, report.Modules[0])
	assert.Equal(t, graph.ModuleMetrics{ID: 1, Name: "app", Incoming: 0, Outgoing: 2, Total: 2}, report.Modules[1])
	assert.Equal(t, graph.ModuleMetrics{ID: 3, Name: "util", Incoming: 1, Outgoing: 1, Total: 2}, report.Modules[2])

	// Afferent and efferent totals both account for every cross-module
	// call exactly once.
	incoming, outgoing := 0, 0
	for _, m := range report.Modules {
		incoming += m.Incoming
		outgoing += m.Outgoing
	}
	assert.Equal(t, report.TotalCrossModuleCalls, incoming)
	assert.Equal(t, report.TotalCrossModuleCalls, outgoing)
}
