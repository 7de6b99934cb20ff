package stats

import (
	"sort"

	"github.com/verte-zerg/sperling/internal/model"
)

// WeakestExperiments returns up to top experiment names ordered by lowest
// accuracy. A non-positive top returns all of them.
func WeakestExperiments(aggs []model.ExperimentAggregate, top int) []string {
	if len(aggs) == 0 {
		return nil
	}
	candidates := make([]model.ExperimentAggregate, len(aggs))
	copy(candidates, aggs)
	sort.Slice(candidates, func(i, j int) bool {
		ai := accuracy(candidates[i])
		aj := accuracy(candidates[j])
		if ai == aj {
			return candidates[i].Experiment < candidates[j].Experiment
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for i := 0; i < top; i++ {
		out = append(out, candidates[i].Experiment)
	}
	return out
}

func accuracy(agg model.ExperimentAggregate) float64 {
	if agg.Cells == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(agg.Cells)
}
