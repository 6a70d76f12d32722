package dnsbench

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dnsRequestsDurationMetrics = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "resolverbench",
		Name:      "dns_requests_duration_seconds",
		Help:      "DNS request duration in seconds",
	}, []string{"resolver", "type"})

	dnsResponseTotalMetrics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resolverbench",
		Name:      "dns_response_total",
		Help:      "The total number of DNS query results",
	}, []string{"resolver", "status"})

	errorsTotalMetrics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resolverbench",
		Name:      "errors_total",
		Help:      "The total number of failed query attempts",
	}, []string{"resolver"})

	cacheHitsTotalMetrics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resolverbench",
		Name:      "cache_hits_total",
		Help:      "The total number of results reused from earlier iterations",
	}, []string{"resolver"})
)

func observeAttempt(res QueryResult) {
	if res.Success() {
		dnsRequestsDurationMetrics.WithLabelValues(res.ResolverName, res.RecordType).Observe(res.Latency().Seconds())
		return
	}
	errorsTotalMetrics.WithLabelValues(res.ResolverName).Inc()
}

func observeResult(res QueryResult) {
	dnsResponseTotalMetrics.WithLabelValues(res.ResolverName, string(res.Status)).Inc()
	if res.CacheHit {
		cacheHitsTotalMetrics.WithLabelValues(res.ResolverName).Inc()
	}
}
