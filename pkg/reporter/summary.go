package reporter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/tantalor93/resolverbench/pkg/analysis"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
	"github.com/tantalor93/resolverbench/pkg/printutils"
)

// SummaryOptions select the optional parts of the printed summary.
type SummaryOptions struct {
	DomainStats     bool
	RecordTypeStats bool
	ErrorBreakdown  bool
	// Distribution prints histogram of latencies of successful queries.
	Distribution bool
	// Duration is the wall time of the benchmark, used to compute the throughput.
	Duration time.Duration
}

// PrintSummary prints the formatted statistics of the benchmark.
func PrintSummary(w io.Writer, a *analysis.Analyzer, opts SummaryOptions) {
	overall := a.Overall()

	printutils.NeutralFprintf(w, "\n%s\n", printutils.BoldSprint("=== BENCHMARK SUMMARY ==="))
	printutils.NeutralFprintf(w, "Total queries:\t\t%s\n", printutils.HighlightSprint(overall.TotalQueries))
	successFprintf := printutils.SuccessFprintf
	if overall.SuccessfulQueries < overall.TotalQueries {
		successFprintf = printutils.WarnFprintf
	}
	successFprintf(w, "Successful queries:\t%d (%.1f%%)\n", overall.SuccessfulQueries, overall.OverallSuccessRate)
	if overall.CacheHits > 0 {
		printutils.NeutralFprintf(w, "Cache hits:\t\t%s\n", printutils.HighlightSprint(overall.CacheHits))
	}
	printutils.NeutralFprintf(w, "Average latency:\t%s\n", printutils.HighlightSprint(msString(overall.OverallAvgLatency)))
	printutils.NeutralFprintf(w, "Median latency:\t\t%s\n", printutils.HighlightSprint(msString(overall.OverallMedianLatency)))
	if overall.FastestResolver != "" {
		printutils.SuccessFprintf(w, "Fastest resolver:\t%s\n", overall.FastestResolver)
		printutils.NeutralFprintf(w, "Slowest resolver:\t%s\n", overall.SlowestResolver)
	}
	if opts.Duration > 0 {
		printutils.NeutralFprintf(w, "Time taken for tests:\t%s\n", printutils.HighlightSprint(roundDuration(opts.Duration)))
		printutils.NeutralFprintf(w, "Questions per second:\t%s\n",
			printutils.HighlightSprintf("%0.1f", float64(overall.TotalQueries)/opts.Duration.Seconds()))
	}

	printutils.NeutralFprintf(w, "\n%s\n", printutils.BoldSprint("Resolver performance:"))
	printResolvers(w, a.Resolvers())

	if opts.DomainStats {
		printutils.NeutralFprintf(w, "\n%s\n", printutils.BoldSprint("Per-domain statistics:"))
		stats := a.Domains()
		rows := make([][]string, 0, len(stats))
		for _, d := range stats {
			rows = append(rows, groupRow(d.Domain, d.GroupStats))
		}
		printGroups(w, "Domain", rows)
	}

	if opts.RecordTypeStats {
		printutils.NeutralFprintf(w, "\n%s\n", printutils.BoldSprint("Per-record-type statistics:"))
		stats := a.RecordTypes()
		rows := make([][]string, 0, len(stats))
		for _, rt := range stats {
			rows = append(rows, groupRow(rt.RecordType, rt.GroupStats))
		}
		printGroups(w, "Record type", rows)
	}

	if opts.ErrorBreakdown {
		printErrors(w, a)
	}

	if opts.Distribution {
		hist := latencyHistogram(a.Results())
		if tc := hist.TotalCount(); tc > 1 {
			printutils.NeutralFprintf(w, "\nDNS distribution, %s datapoints\n", printutils.HighlightSprint(tc))
			printBars(w, hist.Distribution())
		}
	}
}

func printResolvers(w io.Writer, stats []analysis.ResolverStats) {
	rows := make([][]string, 0, len(stats))
	for i, r := range stats {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.ResolverName,
			r.ResolverIP,
			r.AvgLatency.String(),
			r.MedianLatency.String(),
			r.P95Latency.String(),
			fmt.Sprintf("%.1f", r.SuccessRate),
			fmt.Sprintf("%d/%d", r.SuccessfulQueries, r.TotalQueries),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Resolver", "IP", "Avg (ms)", "Median (ms)", "P95 (ms)", "Success (%)", "Queries"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func groupRow(key string, g analysis.GroupStats) []string {
	return []string{
		key,
		g.AvgLatency.String(),
		g.MinLatency.String(),
		g.MaxLatency.String(),
		fmt.Sprintf("%.1f", g.SuccessRate),
		fmt.Sprintf("%d/%d", g.SuccessfulQueries, g.TotalQueries),
	}
}

func printGroups(w io.Writer, key string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{key, "Avg (ms)", "Min (ms)", "Max (ms)", "Success (%)", "Queries"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func printErrors(w io.Writer, a *analysis.Analyzer) {
	kinds := a.ErrorKinds()
	if len(kinds) == 0 {
		printutils.SuccessFprintf(w, "\nNo errors\n")
		return
	}

	total := 0
	for _, k := range kinds {
		total += k.Count
	}
	printutils.ErrFprintf(w, "\nTotal errors: %d\n", total)
	for _, k := range kinds {
		printFn := printutils.ErrFprintf
		if k.Status == string(dnsbench.StatusNXDomain) || k.Status == string(dnsbench.StatusNoAnswer) {
			printFn = printutils.NeutralFprintf
		}
		printFn(w, "\t%s:\t%d\n", k.Status, k.Count)
	}

	errs := a.Errors()
	printutils.ErrFprintf(w, "Top errors:\n")
	for i, e := range errs {
		if i == 10 {
			printutils.NeutralFprintf(w, "\t... %d more\n", len(errs)-i)
			break
		}
		printutils.ErrFprintf(w, "\t%s\t%d (%.2f%%)\n", e.ErrorMessage, e.Count, float64(e.Count)/float64(total)*100)
	}
}

func msString(l analysis.Latency) string {
	if !l.Valid {
		return l.String()
	}
	return l.String() + " ms"
}
