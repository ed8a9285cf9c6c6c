package analysis

import (
	"context"
	"strings"

	"github.com/quarrydev/quarry/querylanguage"
	"github.com/quarrydev/quarry/schema"
	"github.com/quarrydev/quarry/store"
)

// Tunable defaults.
const (
	DefaultWindowSize          = 5
	DefaultSimilarityThreshold = 0.7
	DefaultMinSnippetLength    = 50
	DefaultComplexityThreshold = 15
)

// FunctionRef identifies one function in an analysis report.
type FunctionRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Module string `json:"module,omitempty"`
}

// cancelled is the cooperative cancellation check long loops run each
// step.
func cancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// fetchFunctions loads every function carrying raw source text,
// ascending by id.
func fetchFunctions(ctx context.Context, s store.Store) ([]*schema.Entity, error) {
	return s.All(ctx, schema.Function, []querylanguage.Condition{
		{Field: "raw_string", Operator: querylanguage.IsNull, Value: false},
	})
}

// moduleNames loads the id-to-name map of every module.
func moduleNames(ctx context.Context, s store.Store) (map[int64]string, error) {
	modules, err := s.All(ctx, schema.Module, nil)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(modules))
	for _, m := range modules {
		names[m.ID] = m.String("name")
	}
	return names, nil
}

func ref(fn *schema.Entity, modules map[int64]string) FunctionRef {
	return FunctionRef{
		ID:     fn.ID,
		Name:   fn.String("name"),
		Module: modules[fn.Int("module_id")],
	}
}

// lines splits raw source text into trimmed lines, dropping leading and
// trailing blank runs.
func lines(text string) []string {
	split := strings.Split(strings.TrimSpace(text), "\n")
	out := make([]string, 0, len(split))
	for _, l := range split {
		out = append(out, strings.TrimSpace(l))
	}
	return out
}
