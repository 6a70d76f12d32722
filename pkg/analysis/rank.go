package analysis

import (
	"fmt"
	"slices"
	"strings"
)

// Metric is a criterion used to rank resolvers.
type Metric string

const (
	// MetricLatency ranks resolvers by the average latency, lowest first.
	MetricLatency Metric = "latency"
	// MetricSuccess ranks resolvers by the success rate, highest first, ties are broken by latency.
	MetricSuccess Metric = "success"
	// MetricReliability ranks resolvers by the success rate and then by the latency standard deviation.
	MetricReliability Metric = "reliability"
)

// Metrics lists all supported ranking metrics.
var Metrics = []Metric{MetricLatency, MetricSuccess, MetricReliability}

// ParseMetric parses the ranking metric name.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Metrics, m) {
		return "", fmt.Errorf("unknown metric '%s'", s)
	}
	return m, nil
}

// Rank returns a copy of resolver statistics sorted by the metric, the best resolver first.
// Resolvers tied on the metric are ordered by name.
func Rank(resolvers []ResolverStats, by Metric) []ResolverStats {
	ranked := slices.Clone(resolvers)
	slices.SortStableFunc(ranked, func(a, b ResolverStats) int {
		switch by {
		case MetricSuccess:
			if c := compareRate(a, b); c != 0 {
				return c
			}
		case MetricReliability:
			if c := compareRate(a, b); c != 0 {
				return c
			}
			if a.StdDevLatency.Less(b.StdDevLatency) {
				return -1
			}
			if b.StdDevLatency.Less(a.StdDevLatency) {
				return 1
			}
		}
		return compareByLatency(a.GroupStats, b.GroupStats, a.ResolverName, b.ResolverName)
	})
	return ranked
}

func compareRate(a, b ResolverStats) int {
	switch {
	case a.SuccessRate > b.SuccessRate:
		return -1
	case a.SuccessRate < b.SuccessRate:
		return 1
	default:
		return 0
	}
}
