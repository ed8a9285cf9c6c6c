package analysis

import (
	"context"
	"sort"
	"strings"

	"github.com/quarrydev/quarry/schema"
	"github.com/quarrydev/quarry/store"
)

// branchKeywords are the decision-point markers counted for the
// optional branch-density term.
var branchKeywords = []string{"if ", "else", "match ", "for ", "while ", "loop", "=>", "&&", "||"}

// ComplexityMetrics breaks down one function's complexity score. The
// line span is the baseline; branch points, callees, and nested
// functions are reported alongside it.
type ComplexityMetrics struct {
	LineSpan        int `json:"line_span"`
	BranchPoints    int `json:"branch_points"`
	DependencyCount int `json:"dependency_count"`
	NestedFunctions int `json:"nested_functions"`
	Score           int `json:"total_complexity"`
}

// ComplexFunction is one function at or above the complexity
// threshold.
type ComplexFunction struct {
	Function FunctionRef       `json:"function"`
	Metrics  ComplexityMetrics `json:"metrics"`
}

// ComplexityOptions configures ComplexFunctions.
type ComplexityOptions struct {
	// Threshold is the minimum score reported; non-positive selects
	// DefaultComplexityThreshold.
	Threshold int

	// BranchWeight scales the branch-keyword density term added to the
	// line-span baseline. Zero leaves the score at the bare line span.
	BranchWeight float64
}

// ComplexFunctions scores every function by its line span, plus an
// optional branch-density term, and reports those at or above the
// threshold, descending by score with ascending id on ties. Functions
// without recorded line numbers fall back to counting their raw text
// lines.
func ComplexFunctions(ctx context.Context, s store.Store, opts ComplexityOptions) ([]ComplexFunction, error) {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultComplexityThreshold
	}

	functions, err := fetchFunctions(ctx, s)
	if err != nil {
		return nil, err
	}
	modules, err := moduleNames(ctx, s)
	if err != nil {
		return nil, err
	}
	callees, err := calleeCounts(ctx, s)
	if err != nil {
		return nil, err
	}
	nested, err := nestedCounts(ctx, s)
	if err != nil {
		return nil, err
	}

	var out []ComplexFunction
	for _, fn := range functions {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}
		raw := fn.String("raw_string")
		span := int(fn.Int("line_number_end") - fn.Int("line_number_start"))
		if span <= 0 {
			span = len(lines(raw))
		}
		branches := 0
		for _, kw := range branchKeywords {
			branches += strings.Count(raw, kw)
		}
		score := span + int(opts.BranchWeight*float64(branches))
		if score < threshold {
			continue
		}
		out = append(out, ComplexFunction{
			Function: ref(fn, modules),
			Metrics: ComplexityMetrics{
				LineSpan:        span,
				BranchPoints:    branches,
				DependencyCount: callees[fn.ID],
				NestedFunctions: nested[fn.ID],
				Score:           score,
			},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Metrics.Score != out[j].Metrics.Score {
			return out[i].Metrics.Score > out[j].Metrics.Score
		}
		return out[i].Function.ID < out[j].Function.ID
	})
	return out, nil
}

// calleeCounts maps each function id to its outgoing call edge count.
func calleeCounts(ctx context.Context, s store.Store) (map[int64]int, error) {
	pairs, err := s.Edges(ctx, schema.FunctionDependency)
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int, len(pairs))
	for _, p := range pairs {
		counts[p.Source]++
	}
	return counts, nil
}

// nestedCounts maps each function id to its nested function count.
func nestedCounts(ctx context.Context, s store.Store) (map[int64]int, error) {
	nested, err := s.All(ctx, schema.WhereFunction, nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int)
	for _, wf := range nested {
		if wf.IsNull("parent_function_id") {
			continue
		}
		counts[wf.Int("parent_function_id")]++
	}
	return counts, nil
}
