package analysis

import (
	"context"
	"sort"
	"strings"

	"github.com/quarrydev/quarry/schema"
	"github.com/quarrydev/quarry/store"
)

// Similarity scores the textual overlap of two function bodies: each
// body is cut into overlapping window-line snippets and the score is
// the Jaccard ratio of the two snippet sets. The score is symmetric
// and ranges 0 to 1; identical bodies score 1. A non-positive window
// selects DefaultWindowSize. Bodies shorter than the window compare as
// single whole-body snippets, so short identical functions still score
// 1.
func Similarity(a, b string, window int) float64 {
	if window <= 0 {
		window = DefaultWindowSize
	}
	return overlap(windows(a, window), windows(b, window))
}

func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for w := range a {
		if _, ok := b[w]; ok {
			common++
		}
	}
	return float64(common) / float64(len(a)+len(b)-common)
}

// windows returns the distinct overlapping snippets of size lines.
func windows(text string, size int) map[string]struct{} {
	ls := lines(text)
	if len(ls) == 1 && ls[0] == "" {
		return nil
	}
	out := make(map[string]struct{})
	if len(ls) < size {
		out[strings.Join(ls, "\n")] = struct{}{}
		return out
	}
	for i := 0; i+size <= len(ls); i++ {
		out[strings.Join(ls[i:i+size], "\n")] = struct{}{}
	}
	return out
}

// SimilarityOptions configures SimilarTo.
type SimilarityOptions struct {
	// Threshold is the minimum score reported; non-positive selects
	// DefaultSimilarityThreshold.
	Threshold float64

	// WindowSize is the snippet size in lines; non-positive selects
	// DefaultWindowSize.
	WindowSize int
}

// SimilarFunction is one scored match of SimilarTo.
type SimilarFunction struct {
	Function FunctionRef `json:"function"`
	Score    float64     `json:"similarity_score"`
}

// SimilarTo scores every other function against the reference function
// and reports those at or above the threshold, descending by score
// with ascending id on ties. An unresolvable reference yields an empty
// report.
func SimilarTo(ctx context.Context, s store.Store, functionID int64, opts SimilarityOptions) ([]SimilarFunction, error) {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	window := opts.WindowSize
	if window <= 0 {
		window = DefaultWindowSize
	}
	reference, err := s.ByID(ctx, schema.Function, functionID)
	if err != nil || reference == nil {
		return nil, err
	}
	refWindows := windows(reference.String("raw_string"), window)

	functions, err := fetchFunctions(ctx, s)
	if err != nil {
		return nil, err
	}
	modules, err := moduleNames(ctx, s)
	if err != nil {
		return nil, err
	}

	var matches []SimilarFunction
	for _, fn := range functions {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}
		if fn.ID == functionID {
			continue
		}
		score := overlap(refWindows, windows(fn.String("raw_string"), window))
		if score >= threshold {
			matches = append(matches, SimilarFunction{Function: ref(fn, modules), Score: score})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Function.ID < matches[j].Function.ID
	})
	return matches, nil
}
