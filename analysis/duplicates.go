package analysis

import (
	"context"
	"sort"

	"github.com/quarrydev/quarry/store"
)

// DuplicateOptions configures DuplicatePatterns.
type DuplicateOptions struct {
	// WindowSize is the snippet size in lines; non-positive selects
	// DefaultWindowSize.
	WindowSize int

	// MinLength excludes snippets of this many characters or fewer;
	// non-positive selects DefaultMinSnippetLength. Filters out
	// trivial boilerplate.
	MinLength int

	// MinMatches is the least number of distinct owning functions a
	// snippet needs to be reported; non-positive selects 2.
	MinMatches int
}

// DuplicatePattern is one snippet shared by two or more functions.
type DuplicatePattern struct {
	Snippet   string        `json:"snippet"`
	Functions []FunctionRef `json:"functions"`
}

// DuplicatePatterns slides a fixed-size window over every function
// body and reports the snippets owned by at least MinMatches distinct
// functions, ordered by owner count descending, snippet text ascending
// on ties. Owners are listed ascending by id.
func DuplicatePatterns(ctx context.Context, s store.Store, opts DuplicateOptions) ([]DuplicatePattern, error) {
	window := opts.WindowSize
	if window <= 0 {
		window = DefaultWindowSize
	}
	minLength := opts.MinLength
	if minLength <= 0 {
		minLength = DefaultMinSnippetLength
	}
	minMatches := opts.MinMatches
	if minMatches <= 0 {
		minMatches = 2
	}

	functions, err := fetchFunctions(ctx, s)
	if err != nil {
		return nil, err
	}
	modules, err := moduleNames(ctx, s)
	if err != nil {
		return nil, err
	}

	owners := make(map[string][]int64)
	refs := make(map[int64]FunctionRef, len(functions))
	for _, fn := range functions {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}
		refs[fn.ID] = ref(fn, modules)
		for snippet := range windows(fn.String("raw_string"), window) {
			if len(snippet) <= minLength {
				continue
			}
			owners[snippet] = append(owners[snippet], fn.ID)
		}
	}

	var patterns []DuplicatePattern
	for snippet, ids := range owners {
		if len(ids) < minMatches {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		p := DuplicatePattern{Snippet: snippet, Functions: make([]FunctionRef, 0, len(ids))}
		for _, id := range ids {
			p.Functions = append(p.Functions, refs[id])
		}
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i].Functions) != len(patterns[j].Functions) {
			return len(patterns[i].Functions) > len(patterns[j].Functions)
		}
		return patterns[i].Snippet < patterns[j].Snippet
	})
	return patterns, nil
}
