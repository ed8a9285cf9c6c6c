package graph

import (
	"context"
	"sort"

	"github.com/quarrydev/quarry/schema"
	"github.com/quarrydev/quarry/store"
)

// ModuleRef identifies one module in a coupling report.
type ModuleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ModuleDependency is one aggregated cross-module call direction.
// Cyclic marks pairs whose reverse direction also carries calls; this
// flags direct two-module cycles only, not longer dependency rings.
type ModuleDependency struct {
	CallerModule ModuleRef `json:"caller_module"`
	CalleeModule ModuleRef `json:"callee_module"`
	CallCount    int       `json:"call_count"`
	Cyclic       bool      `json:"cyclic"`
}

// ModuleMetrics totals one module's cross-module call traffic.
// Incoming is the afferent count, Outgoing the efferent.
type ModuleMetrics struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Incoming int    `json:"incoming"`
	Outgoing int    `json:"outgoing"`
	Total    int    `json:"total"`
}

// CouplingReport aggregates the call edge set by module pair.
type CouplingReport struct {
	Modules               []ModuleMetrics    `json:"module_metrics"`
	Dependencies          []ModuleDependency `json:"dependencies"`
	TotalCrossModuleCalls int                `json:"total_cross_module_calls"`
	ModuleCount           int                `json:"module_count"`
	DependencyCount       int                `json:"dependency_count"`
}

// CrossModuleDependencies aggregates call edges by (caller module,
// callee module), excluding calls within one module, ordered by caller
// then callee module id.
func CrossModuleDependencies(ctx context.Context, s store.Store) ([]ModuleDependency, error) {
	modules, err := moduleNames(ctx, s)
	if err != nil {
		return nil, err
	}
	owner, err := functionModules(ctx, s)
	if err != nil {
		return nil, err
	}
	pairs, err := s.Edges(ctx, schema.FunctionDependency)
	if err != nil {
		return nil, err
	}

	type modulePair struct{ caller, callee int64 }
	counts := make(map[modulePair]int)
	for _, p := range pairs {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}
		callerMod, ok := owner[p.Source]
		if !ok {
			continue
		}
		calleeMod, ok := owner[p.Target]
		if !ok || callerMod == calleeMod {
			continue
		}
		counts[modulePair{callerMod, calleeMod}]++
	}

	deps := make([]ModuleDependency, 0, len(counts))
	for mp, count := range counts {
		_, reverse := counts[modulePair{mp.callee, mp.caller}]
		deps = append(deps, ModuleDependency{
			CallerModule: ModuleRef{ID: mp.caller, Name: modules[mp.caller]},
			CalleeModule: ModuleRef{ID: mp.callee, Name: modules[mp.callee]},
			CallCount:    count,
			Cyclic:       reverse,
		})
	}
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].CallerModule.ID != deps[j].CallerModule.ID {
			return deps[i].CallerModule.ID < deps[j].CallerModule.ID
		}
		return deps[i].CalleeModule.ID < deps[j].CalleeModule.ID
	})
	return deps, nil
}

// ModuleCoupling derives per-module afferent and efferent totals from
// the cross-module dependency aggregate. Modules are ordered by total
// coupling descending, id ascending on ties.
func ModuleCoupling(ctx context.Context, s store.Store) (*CouplingReport, error) {
	deps, err := CrossModuleDependencies(ctx, s)
	if err != nil {
		return nil, err
	}
	modules, err := s.All(ctx, schema.Module, nil)
	if err != nil {
		return nil, err
	}

	metrics := make(map[int64]*ModuleMetrics, len(modules))
	for _, m := range modules {
		metrics[m.ID] = &ModuleMetrics{ID: m.ID, Name: m.String("name")}
	}
	total := 0
	for _, dep := range deps {
		total += dep.CallCount
		if m, ok := metrics[dep.CallerModule.ID]; ok {
			m.Outgoing += dep.CallCount
			m.Total += dep.CallCount
		}
		if m, ok := metrics[dep.CalleeModule.ID]; ok {
			m.Incoming += dep.CallCount
			m.Total += dep.CallCount
		}
	}

	report := &CouplingReport{
		Dependencies:          deps,
		TotalCrossModuleCalls: total,
		ModuleCount:           len(modules),
		DependencyCount:       len(deps),
	}
	for _, m := range metrics {
		report.Modules = append(report.Modules, *m)
	}
	sort.Slice(report.Modules, func(i, j int) bool {
		if report.Modules[i].Total != report.Modules[j].Total {
			return report.Modules[i].Total > report.Modules[j].Total
		}
		return report.Modules[i].ID < report.Modules[j].ID
	})
	return report, nil
}

// functionModules maps every function id to its owning module id.
func functionModules(ctx context.Context, s store.Store) (map[int64]int64, error) {
	functions, err := s.All(ctx, schema.Function, nil)
	if err != nil {
		return nil, err
	}
	owner := make(map[int64]int64, len(functions))
	for _, fn := range functions {
		if fn.IsNull("module_id") {
			continue
		}
		owner[fn.ID] = fn.Int("module_id")
	}
	return owner, nil
}
