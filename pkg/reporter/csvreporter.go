package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tantalor93/resolverbench/pkg/analysis"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
)

var (
	rawHeader = []string{
		"timestamp", "resolver_name", "resolver_ip", "domain", "record_type", "latency_ms", "status",
		"answers_count", "ttl", "error_message", "cache_hit", "iteration", "query_id",
	}
	groupHeader = []string{
		"total_queries", "successful_queries", "failed_queries", "cache_hits", "success_rate",
		"avg_latency_ms", "median_latency_ms", "min_latency_ms", "max_latency_ms", "std_dev_latency_ms",
		"p95_latency_ms", "p99_latency_ms",
	}
)

// ExportRawCSV writes one row per query result.
func ExportRawCSV(w io.Writer, results []dnsbench.QueryResult) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		ttl := ""
		if r.TTL != nil {
			ttl = strconv.FormatUint(uint64(*r.TTL), 10)
		}
		rows = append(rows, []string{
			r.StartTime.Format(time.RFC3339Nano),
			r.ResolverName,
			r.ResolverIP,
			r.Domain,
			r.RecordType,
			strconv.FormatFloat(r.LatencyMs, 'f', 3, 64),
			string(r.Status),
			strconv.Itoa(len(r.Answers)),
			ttl,
			r.ErrorMessage,
			strconv.FormatBool(r.CacheHit),
			strconv.Itoa(r.Iteration),
			r.QueryID,
		})
	}
	return writeCSV(w, rawHeader, rows)
}

// ExportSummaryCSV writes one row per resolver.
func ExportSummaryCSV(w io.Writer, stats []analysis.ResolverStats) error {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, append([]string{s.ResolverName, s.ResolverIP}, groupCells(s.GroupStats)...))
	}
	return writeCSV(w, append([]string{"resolver_name", "resolver_ip"}, groupHeader...), rows)
}

// ExportDomainsCSV writes one row per domain.
func ExportDomainsCSV(w io.Writer, stats []analysis.DomainStats) error {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, append([]string{s.Domain}, groupCells(s.GroupStats)...))
	}
	return writeCSV(w, append([]string{"domain"}, groupHeader...), rows)
}

// ExportRecordTypesCSV writes one row per record type.
func ExportRecordTypesCSV(w io.Writer, stats []analysis.RecordTypeStats) error {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, append([]string{s.RecordType}, groupCells(s.GroupStats)...))
	}
	return writeCSV(w, append([]string{"record_type"}, groupHeader...), rows)
}

// ExportErrorsCSV writes one row per distinct error message.
func ExportErrorsCSV(w io.Writer, stats []analysis.ErrorStats) error {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{s.ErrorMessage, strconv.Itoa(s.Count)})
	}
	return writeCSV(w, []string{"error_message", "count"}, rows)
}

// ExportOptions select the optional sections of CSV and Excel exports, raw results and resolver summary are always exported.
type ExportOptions struct {
	DomainStats     bool
	RecordTypeStats bool
	ErrorBreakdown  bool
}

// ExportCSVFiles writes CSV files named <prefix>_raw.csv, <prefix>_summary.csv and optionally
// <prefix>_domains.csv, <prefix>_record_types.csv and <prefix>_errors.csv into the directory.
// Paths of written files are returned.
func ExportCSVFiles(dir, prefix string, a *analysis.Analyzer, opts ExportOptions) ([]string, error) {
	type export struct {
		suffix string
		write  func(io.Writer) error
	}
	exports := []export{
		{suffix: "raw", write: func(w io.Writer) error { return ExportRawCSV(w, a.Results()) }},
		{suffix: "summary", write: func(w io.Writer) error { return ExportSummaryCSV(w, a.Resolvers()) }},
	}
	if opts.DomainStats {
		exports = append(exports, export{suffix: "domains", write: func(w io.Writer) error { return ExportDomainsCSV(w, a.Domains()) }})
	}
	if opts.RecordTypeStats {
		exports = append(exports, export{suffix: "record_types", write: func(w io.Writer) error { return ExportRecordTypesCSV(w, a.RecordTypes()) }})
	}
	if opts.ErrorBreakdown {
		exports = append(exports, export{suffix: "errors", write: func(w io.Writer) error { return ExportErrorsCSV(w, a.Errors()) }})
	}

	files := make([]string, 0, len(exports))
	for _, e := range exports {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, e.suffix))
		if err := writeFile(path, e.write); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

func groupCells(g analysis.GroupStats) []string {
	return []string{
		strconv.Itoa(g.TotalQueries),
		strconv.Itoa(g.SuccessfulQueries),
		strconv.Itoa(g.FailedQueries),
		strconv.Itoa(g.CacheHits),
		strconv.FormatFloat(g.SuccessRate, 'f', 2, 64),
		g.AvgLatency.CSV(),
		g.MedianLatency.CSV(),
		g.MinLatency.CSV(),
		g.MaxLatency.CSV(),
		g.StdDevLatency.CSV(),
		g.P95Latency.CSV(),
		g.P99Latency.CSV(),
	}
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// writeFile creates the file and writes its content using write.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("failed to write file '%s': %w", path, err)
	}
	return nil
}
