package core

import (
	"sort"

	"github.com/annopredict/annopredict/schema"
)

// RankResults sorts algorithm results by the chosen metric in descending order.
// Ties keep their registration order. The input slice is not modified.
func RankResults(results []schema.AlgorithmResult, key schema.MetricKey) []schema.AlgorithmResult {
	ranked := make([]schema.AlgorithmResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Metrics.Metric(key) > ranked[j].Metrics.Metric(key)
	})
	return ranked
}
