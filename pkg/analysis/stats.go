package analysis

// GroupStats summarizes the results of a group of queries, latencies are computed only from successful queries.
type GroupStats struct {
	TotalQueries      int     `json:"total_queries"`
	SuccessfulQueries int     `json:"successful_queries"`
	FailedQueries     int     `json:"failed_queries"`
	CacheHits         int     `json:"cache_hits"`
	SuccessRate       float64 `json:"success_rate"`
	AvgLatency        Latency `json:"avg_latency"`
	MedianLatency     Latency `json:"median_latency"`
	MinLatency        Latency `json:"min_latency"`
	MaxLatency        Latency `json:"max_latency"`
	StdDevLatency     Latency `json:"std_dev_latency"`
	P95Latency        Latency `json:"p95_latency"`
	P99Latency        Latency `json:"p99_latency"`
}

// FailureRate is the percentage of queries which were not successful.
func (g GroupStats) FailureRate() float64 {
	if g.TotalQueries == 0 {
		return 0
	}
	return 100 - g.SuccessRate
}

// ResolverStats are statistics of a single resolver.
type ResolverStats struct {
	ResolverName string `json:"resolver_name"`
	ResolverIP   string `json:"resolver_ip"`
	GroupStats
}

// DomainStats are statistics of a single domain across all resolvers.
type DomainStats struct {
	Domain string `json:"domain"`
	GroupStats
}

// RecordTypeStats are statistics of a single record type across all resolvers.
type RecordTypeStats struct {
	RecordType string `json:"record_type"`
	GroupStats
}

// ErrorStats is a number of occurrences of a single error message.
type ErrorStats struct {
	ErrorMessage string `json:"error_message"`
	Count        int    `json:"count"`
}

// StatusStats is a number of results with a single status.
type StatusStats struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// OverallStats summarize the whole benchmark.
type OverallStats struct {
	TotalQueries         int     `json:"total_queries"`
	SuccessfulQueries    int     `json:"successful_queries"`
	CacheHits            int     `json:"cache_hits"`
	OverallSuccessRate   float64 `json:"overall_success_rate"`
	OverallAvgLatency    Latency `json:"overall_avg_latency"`
	OverallMedianLatency Latency `json:"overall_median_latency"`
	FastestResolver      string  `json:"fastest_resolver,omitempty"`
	SlowestResolver      string  `json:"slowest_resolver,omitempty"`
}
