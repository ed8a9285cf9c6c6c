package analysis

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/quarrydev/quarry/store"
)

// Group is one cluster of mutually similar functions. Similarity is
// the mean score of each member against the cluster representative,
// 1 for a singleton.
type Group struct {
	Functions  []FunctionRef `json:"functions"`
	Similarity float64       `json:"similarity"`
}

// GroupSimilar partitions the function population into similarity
// clusters: functions are visited in ascending id order and each joins
// the first cluster whose representative, its lowest-id member, scores
// at or above the threshold, or starts its own. Greedy and
// order-dependent, so the ascending-id visit order is part of the
// contract. A non-positive threshold selects
// DefaultSimilarityThreshold.
func GroupSimilar(ctx context.Context, s store.Store, threshold float64) ([]Group, error) {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	functions, err := fetchFunctions(ctx, s)
	if err != nil {
		return nil, err
	}
	modules, err := moduleNames(ctx, s)
	if err != nil {
		return nil, err
	}

	// Window sets are the expensive part of the O(n^2) comparison
	// work; build them in parallel before the sequential greedy pass.
	sets := make([]map[string]struct{}, len(functions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, fn := range functions {
		i, fn := i, fn
		g.Go(func() error {
			if err := cancelled(gctx); err != nil {
				return err
			}
			sets[i] = windows(fn.String("raw_string"), DefaultWindowSize)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	type cluster struct {
		representative int
		members        []int
		scores         float64
	}
	var clusters []*cluster
	for i := range functions {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}
		assigned := false
		for _, c := range clusters {
			score := overlap(sets[c.representative], sets[i])
			if score >= threshold {
				c.members = append(c.members, i)
				c.scores += score
				assigned = true
				break
			}
		}
		if !assigned {
			clusters = append(clusters, &cluster{representative: i, members: []int{i}, scores: 1})
		}
	}

	groups := make([]Group, 0, len(clusters))
	for _, c := range clusters {
		group := Group{
			Functions:  make([]FunctionRef, 0, len(c.members)),
			Similarity: c.scores / float64(len(c.members)),
		}
		for _, i := range c.members {
			group.Functions = append(group.Functions, ref(functions[i], modules))
		}
		groups = append(groups, group)
	}
	return groups, nil
}
