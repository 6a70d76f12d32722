package dnsbench

import (
	"time"
)

// QueryStatus is the outcome classification of a single query.
type QueryStatus string

const (
	// StatusSuccess the resolver returned at least one record of the requested type.
	StatusSuccess QueryStatus = "SUCCESS"
	// StatusTimeout the query did not complete within the per-query timeout.
	StatusTimeout QueryStatus = "TIMEOUT"
	// StatusNXDomain the resolver answered that the domain does not exist.
	StatusNXDomain QueryStatus = "NXDOMAIN"
	// StatusServFail the resolver failed to resolve the domain (SERVFAIL rcode).
	StatusServFail QueryStatus = "SERVFAIL"
	// StatusRefused the resolver refused to answer (REFUSED rcode).
	StatusRefused QueryStatus = "REFUSED"
	// StatusNoAnswer the domain exists, but has no records of the requested type.
	StatusNoAnswer QueryStatus = "NOANSWER"
	// StatusError any other failure, like I/O errors or unexpected response codes.
	StatusError QueryStatus = "ERROR"
)

// Statuses lists all the query statuses in the order they are reported.
var Statuses = []QueryStatus{
	StatusSuccess, StatusTimeout, StatusNXDomain, StatusServFail, StatusRefused, StatusNoAnswer, StatusError,
}

// Resolver is a DNS server subject to the benchmark.
type Resolver struct {
	// Name is a human-readable name of the resolver, like Cloudflare.
	Name string `json:"name" yaml:"name"`
	// IP is an address of the resolver. It can be plain IP address, IP:port, DoH URL (https://1.1.1.1/dns-query)
	// or DoQ address (quic://dns.adguard-dns.com).
	IP string `json:"ip" yaml:"ip"`
}

// QueryResult is a record of a single completed query task.
type QueryResult struct {
	ResolverIP   string      `json:"resolver_ip"`
	ResolverName string      `json:"resolver_name"`
	Domain       string      `json:"domain"`
	RecordType   string      `json:"record_type"`
	StartTime    time.Time   `json:"start_time"`
	EndTime      time.Time   `json:"end_time"`
	LatencyMs    float64     `json:"latency_ms"`
	Status       QueryStatus `json:"status"`
	Answers      []string    `json:"answers"`
	TTL          *uint32     `json:"ttl,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CacheHit     bool        `json:"cache_hit"`
	Iteration    int         `json:"iteration"`
	QueryID      string      `json:"query_id"`
}

// Success reports whether the query was successful.
func (r QueryResult) Success() bool {
	return r.Status == StatusSuccess
}

// Latency returns latency of the query as time.Duration.
func (r QueryResult) Latency() time.Duration {
	return time.Duration(r.LatencyMs * float64(time.Millisecond))
}

func millis(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
