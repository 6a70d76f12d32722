// Package analysis computes statistics of benchmark results.
package analysis

import (
	"slices"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
	"gonum.org/v1/gonum/stat"
)

// Analyzer computes aggregated statistics over a fixed set of query results.
// It holds its own copy of the results, all its methods are pure and can be called concurrently.
type Analyzer struct {
	results []dnsbench.QueryResult
}

// New creates Analyzer over a copy of the results.
func New(results []dnsbench.QueryResult) *Analyzer {
	return &Analyzer{results: slices.Clone(results)}
}

// Results returns a copy of the analyzed results.
func (a *Analyzer) Results() []dnsbench.QueryResult {
	return slices.Clone(a.results)
}

// Overall summarizes all results.
func (a *Analyzer) Overall() OverallStats {
	g := summarize(a.results)
	o := OverallStats{
		TotalQueries:         g.TotalQueries,
		SuccessfulQueries:    g.SuccessfulQueries,
		CacheHits:            g.CacheHits,
		OverallSuccessRate:   g.SuccessRate,
		OverallAvgLatency:    g.AvgLatency,
		OverallMedianLatency: g.MedianLatency,
	}

	var slowest Latency
	for _, r := range a.Resolvers() {
		if !r.AvgLatency.Valid {
			continue
		}
		if o.FastestResolver == "" {
			o.FastestResolver = r.ResolverName
		}
		// resolvers are sorted by latency and name, so the first of the slowest ones wins
		if !slowest.Valid || slowest.Less(r.AvgLatency) {
			slowest = r.AvgLatency
			o.SlowestResolver = r.ResolverName
		}
	}
	return o
}

// Resolvers returns statistics of each resolver sorted by average latency, resolvers without successful
// queries are last, ties are ordered by the resolver name.
func (a *Analyzer) Resolvers() []ResolverStats {
	groups, order := group(a.results, func(r dnsbench.QueryResult) string { return r.ResolverName })
	res := make([]ResolverStats, 0, len(order))
	for _, name := range order {
		rs := groups[name]
		res = append(res, ResolverStats{ResolverName: name, ResolverIP: rs[0].ResolverIP, GroupStats: summarize(rs)})
	}
	slices.SortStableFunc(res, func(a, b ResolverStats) int {
		return compareByLatency(a.GroupStats, b.GroupStats, a.ResolverName, b.ResolverName)
	})
	return res
}

// Domains returns statistics of each domain across all resolvers sorted by the domain name.
func (a *Analyzer) Domains() []DomainStats {
	groups, order := group(a.results, func(r dnsbench.QueryResult) string { return r.Domain })
	slices.Sort(order)
	res := make([]DomainStats, 0, len(order))
	for _, d := range order {
		res = append(res, DomainStats{Domain: d, GroupStats: summarize(groups[d])})
	}
	return res
}

// RecordTypes returns statistics of each record type across all resolvers sorted by the record type.
func (a *Analyzer) RecordTypes() []RecordTypeStats {
	groups, order := group(a.results, func(r dnsbench.QueryResult) string { return r.RecordType })
	slices.Sort(order)
	res := make([]RecordTypeStats, 0, len(order))
	for _, t := range order {
		res = append(res, RecordTypeStats{RecordType: t, GroupStats: summarize(groups[t])})
	}
	return res
}

// Errors counts occurrences of each distinct error message, the most frequent first.
func (a *Analyzer) Errors() []ErrorStats {
	counts := make(map[string]int)
	for _, r := range a.results {
		if r.ErrorMessage == "" {
			continue
		}
		counts[r.ErrorMessage]++
	}
	res := make([]ErrorStats, 0, len(counts))
	for msg, c := range counts {
		res = append(res, ErrorStats{ErrorMessage: msg, Count: c})
	}
	slices.SortFunc(res, func(a, b ErrorStats) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.ErrorMessage, b.ErrorMessage)
	})
	return res
}

// ErrorKinds counts results with each non-success status, statuses without any result are omitted.
func (a *Analyzer) ErrorKinds() []StatusStats {
	counts := make(map[dnsbench.QueryStatus]int)
	for _, r := range a.results {
		if !r.Success() {
			counts[r.Status]++
		}
	}
	var res []StatusStats
	for _, s := range dnsbench.Statuses {
		if c := counts[s]; c > 0 {
			res = append(res, StatusStats{Status: string(s), Count: c})
		}
	}
	return res
}

func group(results []dnsbench.QueryResult, key func(dnsbench.QueryResult) string) (map[string][]dnsbench.QueryResult, []string) {
	groups := make(map[string][]dnsbench.QueryResult)
	var order []string
	for _, r := range results {
		k := key(r)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}
	return groups, order
}

func summarize(results []dnsbench.QueryResult) GroupStats {
	var g GroupStats
	var latencies stats.Float64Data
	for _, r := range results {
		g.TotalQueries++
		if r.CacheHit {
			g.CacheHits++
		}
		if r.Success() {
			g.SuccessfulQueries++
			latencies = append(latencies, r.LatencyMs)
		}
	}
	g.FailedQueries = g.TotalQueries - g.SuccessfulQueries
	g.SuccessRate = percent(g.SuccessfulQueries, g.TotalQueries)

	g.AvgLatency = latencyOf(stats.Mean(latencies))
	g.MedianLatency = latencyOf(stats.Median(latencies))
	g.MinLatency = latencyOf(stats.Min(latencies))
	g.MaxLatency = latencyOf(stats.Max(latencies))
	g.P95Latency = latencyOf(stats.PercentileNearestRank(latencies, 95))
	g.P99Latency = latencyOf(stats.PercentileNearestRank(latencies, 99))
	if len(latencies) > 0 {
		_, std := stat.PopMeanStdDev(latencies, nil)
		g.StdDevLatency = Ms(std)
	}
	return g
}

func latencyOf(v float64, err error) Latency {
	if err != nil {
		return NoData
	}
	return Ms(v)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func compareByLatency(a, b GroupStats, aName, bName string) int {
	switch {
	case a.AvgLatency.Less(b.AvgLatency):
		return -1
	case b.AvgLatency.Less(a.AvgLatency):
		return 1
	default:
		return strings.Compare(aName, bName)
	}
}
