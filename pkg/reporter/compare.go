package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/tantalor93/resolverbench/pkg/analysis"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
	"github.com/tantalor93/resolverbench/pkg/printutils"
)

// ComparisonEntry are compared statistics of a single resolver.
type ComparisonEntry struct {
	Resolver      string           `json:"resolver"`
	IP            string           `json:"ip"`
	AvgLatency    analysis.Latency `json:"avg_latency_ms"`
	MedianLatency analysis.Latency `json:"median_latency_ms"`
	MinLatency    analysis.Latency `json:"min_latency_ms"`
	MaxLatency    analysis.Latency `json:"max_latency_ms"`
	StdDev        analysis.Latency `json:"std_dev_ms"`
	SuccessRate   float64          `json:"success_rate"`
	TotalQueries  int              `json:"total_queries"`
}

// Comparison is a side by side comparison of benchmarked resolvers.
type Comparison struct {
	Entries      []ComparisonEntry `json:"comparison"`
	Fastest      string            `json:"fastest,omitempty"`
	MostReliable string            `json:"most_reliable,omitempty"`
}

// Compare builds the comparison of the resolvers in the order of their average latency.
func Compare(a *analysis.Analyzer) Comparison {
	stats := a.Resolvers()
	c := Comparison{Entries: make([]ComparisonEntry, 0, len(stats))}
	for _, r := range stats {
		c.Entries = append(c.Entries, ComparisonEntry{
			Resolver:      r.ResolverName,
			IP:            r.ResolverIP,
			AvgLatency:    r.AvgLatency,
			MedianLatency: r.MedianLatency,
			MinLatency:    r.MinLatency,
			MaxLatency:    r.MaxLatency,
			StdDev:        r.StdDevLatency,
			SuccessRate:   r.SuccessRate,
			TotalQueries:  r.TotalQueries,
		})
	}
	c.Fastest = a.Overall().FastestResolver
	if reliable := analysis.Rank(stats, analysis.MetricReliability); len(reliable) > 0 {
		c.MostReliable = reliable[0].ResolverName
	}
	return c
}

// PrintComparison prints the comparison table, with details the per-domain breakdown of each resolver is printed as well.
func PrintComparison(w io.Writer, a *analysis.Analyzer, details bool) {
	c := Compare(a)

	printutils.NeutralFprintf(w, "\n%s\n", printutils.BoldSprint("=== RESOLVER COMPARISON ==="))
	rows := make([][]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		rows = append(rows, []string{
			e.Resolver,
			e.IP,
			e.AvgLatency.String(),
			e.MedianLatency.String(),
			e.MinLatency.String(),
			e.MaxLatency.String(),
			e.StdDev.String(),
			fmt.Sprintf("%.1f", e.SuccessRate),
			fmt.Sprint(e.TotalQueries),
		})
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Resolver", "IP", "Avg (ms)", "Median (ms)", "Min (ms)", "Max (ms)", "Std dev (ms)", "Success (%)", "Queries"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()

	if c.Fastest != "" {
		printutils.SuccessFprintf(w, "Fastest: %s\n", c.Fastest)
	}
	if c.MostReliable != "" {
		printutils.SuccessFprintf(w, "Most Reliable: %s\n", c.MostReliable)
	}

	if !details {
		return
	}
	results := a.Results()
	for _, d := range a.Domains() {
		printutils.NeutralFprintf(w, "\n%s\n", printutils.BoldSprint(d.Domain+":"))
		perDomain := analysis.New(filterResults(results, func(r dnsbench.QueryResult) bool { return r.Domain == d.Domain }))
		rows := make([][]string, 0)
		for _, r := range perDomain.Resolvers() {
			rows = append(rows, groupRow(r.ResolverName, r.GroupStats))
		}
		printGroups(w, "Resolver", rows)
	}
}

// ExportComparison writes the comparison as JSON into the file.
func ExportComparison(path string, a *analysis.Analyzer) error {
	c := Compare(a)
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	})
}

func filterResults(results []dnsbench.QueryResult, keep func(dnsbench.QueryResult) bool) []dnsbench.QueryResult {
	var filtered []dnsbench.QueryResult
	for _, r := range results {
		if keep(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
