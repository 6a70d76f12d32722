package reporter

import (
	"encoding/json"
	"io"

	"github.com/tantalor93/resolverbench/pkg/analysis"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
)

// Bundle is the complete JSON export of the benchmark.
type Bundle struct {
	Overall         analysis.OverallStats      `json:"overall"`
	ResolverStats   []analysis.ResolverStats   `json:"resolver_stats"`
	RawResults      []dnsbench.QueryResult     `json:"raw_results"`
	DomainStats     []analysis.DomainStats     `json:"domain_stats"`
	RecordTypeStats []analysis.RecordTypeStats `json:"record_type_stats"`
	ErrorStats      map[string]int             `json:"error_stats"`
}

// NewBundle collects all statistics of the analyzer.
func NewBundle(a *analysis.Analyzer) Bundle {
	b := Bundle{
		Overall:         a.Overall(),
		ResolverStats:   a.Resolvers(),
		RawResults:      a.Results(),
		DomainStats:     a.Domains(),
		RecordTypeStats: a.RecordTypes(),
		ErrorStats:      make(map[string]int),
	}
	for _, e := range a.Errors() {
		b.ErrorStats[e.ErrorMessage] = e.Count
	}
	// empty collections are exported as [] instead of null
	if b.ResolverStats == nil {
		b.ResolverStats = []analysis.ResolverStats{}
	}
	if b.RawResults == nil {
		b.RawResults = []dnsbench.QueryResult{}
	}
	if b.DomainStats == nil {
		b.DomainStats = []analysis.DomainStats{}
	}
	if b.RecordTypeStats == nil {
		b.RecordTypeStats = []analysis.RecordTypeStats{}
	}
	return b
}

// ExportJSON writes the JSON bundle of the benchmark.
func ExportJSON(w io.Writer, a *analysis.Analyzer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewBundle(a))
}
