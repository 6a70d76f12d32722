package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tantalor93/resolverbench/pkg/analysis"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
	"github.com/xuri/excelize/v2"
)

var benchStart = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testResult(resolver, ip, domain string, status dnsbench.QueryStatus, latency float64, offset time.Duration) dnsbench.QueryResult {
	start := benchStart.Add(offset)
	r := dnsbench.QueryResult{
		ResolverName: resolver,
		ResolverIP:   ip,
		Domain:       domain,
		RecordType:   "A",
		StartTime:    start,
		EndTime:      start.Add(time.Duration(latency * float64(time.Millisecond))),
		LatencyMs:    latency,
		Status:       status,
		Answers:      []string{},
		QueryID:      "00000000-0000-4000-8000-000000000000",
	}
	if status == dnsbench.StatusSuccess {
		ttl := uint32(300)
		r.Answers = []string{"93.184.216.34"}
		r.TTL = &ttl
	} else {
		r.ErrorMessage = string(status)
	}
	return r
}

func testAnalyzer() *analysis.Analyzer {
	return analysis.New([]dnsbench.QueryResult{
		testResult("Cloudflare", "1.1.1.1", "example.com", dnsbench.StatusSuccess, 10, 0),
		testResult("Cloudflare", "1.1.1.1", "example.org", dnsbench.StatusSuccess, 12, time.Second),
		testResult("Google", "8.8.8.8", "example.com", dnsbench.StatusSuccess, 20, time.Second),
		testResult("Google", "8.8.8.8", "example.org", dnsbench.StatusTimeout, 5000, 2*time.Second),
		testResult("Quad9", "9.9.9.9", "example.com", dnsbench.StatusServFail, 30, 2*time.Second),
		testResult("Quad9", "9.9.9.9", "example.org", dnsbench.StatusNXDomain, 25, 3*time.Second),
	})
}

func TestPrintSummary(t *testing.T) {
	buf := bytes.Buffer{}

	PrintSummary(&buf, testAnalyzer(), SummaryOptions{
		DomainStats:     true,
		RecordTypeStats: true,
		ErrorBreakdown:  true,
		Distribution:    true,
		Duration:        2 * time.Second,
	})

	out := buf.String()
	assert.Contains(t, out, "=== BENCHMARK SUMMARY ===")
	assert.Contains(t, out, "Total queries:\t\t6")
	assert.Contains(t, out, "Successful queries:\t3 (50.0%)")
	assert.Contains(t, out, "Fastest resolver:\tCloudflare")
	assert.Contains(t, out, "Slowest resolver:\tGoogle")
	assert.Contains(t, out, "Questions per second:\t3.0")
	assert.Contains(t, out, "Per-domain statistics:")
	assert.Contains(t, out, "Per-record-type statistics:")
	assert.Contains(t, out, "Total errors: 3")
	assert.Contains(t, out, "TIMEOUT:\t1")
	assert.Contains(t, out, "DNS distribution, 3 datapoints")
	assert.Contains(t, out, "N/A")
}

func TestPrintSummary_NoResults(t *testing.T) {
	buf := bytes.Buffer{}

	PrintSummary(&buf, analysis.New(nil), SummaryOptions{ErrorBreakdown: true, Distribution: true})

	out := buf.String()
	assert.Contains(t, out, "Total queries:\t\t0")
	assert.Contains(t, out, "Average latency:\tN/A")
	assert.Contains(t, out, "No errors")
	assert.NotContains(t, out, "Fastest resolver")
}

func TestExportJSON(t *testing.T) {
	buf := bytes.Buffer{}

	require.NoError(t, ExportJSON(&buf, testAnalyzer()))

	var bundle map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &bundle))
	for _, key := range []string{"overall", "resolver_stats", "raw_results", "domain_stats", "record_type_stats", "error_stats"} {
		assert.Contains(t, bundle, key)
	}

	var resolvers []map[string]any
	require.NoError(t, json.Unmarshal(bundle["resolver_stats"], &resolvers))
	require.Len(t, resolvers, 3)
	assert.Equal(t, "Cloudflare", resolvers[0]["resolver_name"])
	assert.Equal(t, 11.0, resolvers[0]["avg_latency"])
	assert.Equal(t, "Quad9", resolvers[2]["resolver_name"])
	assert.Nil(t, resolvers[2]["avg_latency"])

	var errs map[string]int
	require.NoError(t, json.Unmarshal(bundle["error_stats"], &errs))
	assert.Equal(t, map[string]int{"TIMEOUT": 1, "SERVFAIL": 1, "NXDOMAIN": 1}, errs)
}

func TestExportJSON_Empty(t *testing.T) {
	buf := bytes.Buffer{}

	require.NoError(t, ExportJSON(&buf, analysis.New(nil)))

	assert.Contains(t, buf.String(), `"raw_results": []`)
	assert.Contains(t, buf.String(), `"resolver_stats": []`)
	assert.Contains(t, buf.String(), `"overall_avg_latency": null`)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportCSVFiles(t *testing.T) {
	dir := t.TempDir()

	files, err := ExportCSVFiles(dir, "bench", testAnalyzer(), ExportOptions{DomainStats: true, RecordTypeStats: true, ErrorBreakdown: true})

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "bench_raw.csv"),
		filepath.Join(dir, "bench_summary.csv"),
		filepath.Join(dir, "bench_domains.csv"),
		filepath.Join(dir, "bench_record_types.csv"),
		filepath.Join(dir, "bench_errors.csv"),
	}, files)

	raw := readCSV(t, files[0])
	require.Len(t, raw, 7)
	assert.Equal(t, rawHeader, raw[0])
	assert.Equal(t, []string{"Cloudflare", "1.1.1.1", "example.com", "A", "10.000", "SUCCESS", "1", "300", ""}, raw[1][1:10])
	assert.Equal(t, []string{"TIMEOUT", "0", "", "TIMEOUT"}, raw[4][6:10])

	summary := readCSV(t, files[1])
	require.Len(t, summary, 4)
	assert.Equal(t, []string{"resolver_name", "resolver_ip", "total_queries"}, summary[0][:3])
	assert.Equal(t, []string{"Quad9", "9.9.9.9", "2", "0", "2", "0", "0.00", ""}, summary[3][:8])

	domains := readCSV(t, files[2])
	assert.Equal(t, "domain", domains[0][0])
	assert.Len(t, domains, 3)

	types := readCSV(t, files[3])
	assert.Equal(t, "record_type", types[0][0])
	assert.Len(t, types, 2)

	errs := readCSV(t, files[4])
	assert.Equal(t, []string{"error_message", "count"}, errs[0])
	assert.Len(t, errs, 4)
}

func TestExportCSVFiles_Minimal(t *testing.T) {
	dir := t.TempDir()

	files, err := ExportCSVFiles(dir, "bench", testAnalyzer(), ExportOptions{})

	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.NoFileExists(t, filepath.Join(dir, "bench_errors.csv"))
}

func TestExportCSVFiles_MissingDir(t *testing.T) {
	_, err := ExportCSVFiles(filepath.Join(t.TempDir(), "missing"), "bench", testAnalyzer(), ExportOptions{})

	require.Error(t, err)
}

func TestTop(t *testing.T) {
	stats := testAnalyzer().Resolvers()

	tests := []struct {
		name  string
		by    analysis.Metric
		limit int
		want  []string
	}{
		{name: "latency", by: analysis.MetricLatency, limit: 0, want: []string{"Cloudflare", "Google", "Quad9"}},
		{name: "latency limited", by: analysis.MetricLatency, limit: 2, want: []string{"Cloudflare", "Google"}},
		{name: "success", by: analysis.MetricSuccess, limit: 5, want: []string{"Cloudflare", "Google", "Quad9"}},
		{name: "reliability", by: analysis.MetricReliability, limit: 1, want: []string{"Cloudflare"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := Top(stats, tt.by, tt.limit)

			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.Name
				assert.Equal(t, i+1, e.Rank)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestPrintTop(t *testing.T) {
	buf := bytes.Buffer{}

	PrintTop(&buf, Top(testAnalyzer().Resolvers(), analysis.MetricLatency, 2), analysis.MetricLatency)

	assert.Contains(t, buf.String(), "Top 2 resolvers by latency:")
	assert.Contains(t, buf.String(), "Cloudflare")
	assert.NotContains(t, buf.String(), "Quad9")
}

func TestExportTop(t *testing.T) {
	entries := Top(testAnalyzer().Resolvers(), analysis.MetricLatency, 3)
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "top.json")
		require.NoError(t, ExportTop(path, entries, analysis.MetricLatency))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var out struct {
			Metric       string           `json:"metric"`
			TopResolvers []map[string]any `json:"top_resolvers"`
		}
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, "latency", out.Metric)
		require.Len(t, out.TopResolvers, 3)
		assert.Equal(t, 1.0, out.TopResolvers[0]["rank"])
		assert.Equal(t, "Cloudflare", out.TopResolvers[0]["name"])
		assert.Nil(t, out.TopResolvers[2]["avg_latency_ms"])
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "top.csv")
		require.NoError(t, ExportTop(path, entries, analysis.MetricLatency))

		records := readCSV(t, path)
		require.Len(t, records, 4)
		assert.Equal(t, []string{"Rank", "Resolver"}, records[0][:2])
		assert.Equal(t, []string{"1", "Cloudflare", "1.1.1.1", "11.000"}, records[1][:4])
		assert.Equal(t, "", records[3][3])
	})

	t.Run("txt", func(t *testing.T) {
		path := filepath.Join(dir, "top.txt")
		require.NoError(t, ExportTop(path, entries, analysis.MetricLatency))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Top 3 resolvers by latency")
	})

	t.Run("unsupported", func(t *testing.T) {
		require.Error(t, ExportTop(filepath.Join(dir, "top.xml"), entries, analysis.MetricLatency))
	})
}

func TestCompare(t *testing.T) {
	c := Compare(testAnalyzer())

	require.Len(t, c.Entries, 3)
	assert.Equal(t, "Cloudflare", c.Entries[0].Resolver)
	assert.Equal(t, analysis.Ms(11), c.Entries[0].AvgLatency)
	assert.Equal(t, "Cloudflare", c.Fastest)
	assert.Equal(t, "Cloudflare", c.MostReliable)
}

func TestPrintComparison(t *testing.T) {
	buf := bytes.Buffer{}

	PrintComparison(&buf, testAnalyzer(), true)

	out := buf.String()
	assert.Contains(t, out, "=== RESOLVER COMPARISON ===")
	assert.Contains(t, out, "Fastest: Cloudflare")
	assert.Contains(t, out, "Most Reliable: Cloudflare")
	assert.Contains(t, out, "example.com:")
	assert.Contains(t, out, "example.org:")
}

func TestExportComparison(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comparison.json")

	require.NoError(t, ExportComparison(path, testAnalyzer()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out struct {
		Comparison []map[string]any `json:"comparison"`
		Fastest    string           `json:"fastest"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Comparison, 3)
	assert.Equal(t, "Cloudflare", out.Comparison[0]["resolver"])
	assert.Equal(t, "Cloudflare", out.Fastest)
}

func TestPlot(t *testing.T) {
	dir := t.TempDir()

	graphs, err := Plot(dir, "png", testAnalyzer(), benchStart)

	require.NoError(t, err)
	for _, name := range []string{
		"latency-barchart", "successrate-barchart", "latency-boxplot", "latency-histogram",
		"status-barchart", "throughput-lineplot", "latency-lineplot", "errorrate-lineplot",
	} {
		assert.FileExists(t, filepath.Join(graphs, name+".png"))
	}
}

func TestPlot_OnlyFailures(t *testing.T) {
	dir := t.TempDir()
	a := analysis.New([]dnsbench.QueryResult{
		testResult("Quad9", "9.9.9.9", "example.com", dnsbench.StatusServFail, 30, 0),
	})

	graphs, err := Plot(dir, "svg", a, benchStart)

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(graphs, "errorrate-lineplot.svg"))
	assert.FileExists(t, filepath.Join(graphs, "status-barchart.svg"))
	assert.NoFileExists(t, filepath.Join(graphs, "latency-histogram.svg"))
	assert.NoFileExists(t, filepath.Join(graphs, "latency-boxplot.svg"))
}

func TestPlot_InvalidArguments(t *testing.T) {
	dir := t.TempDir()

	_, err := Plot(dir, "gif", testAnalyzer(), benchStart)
	require.Error(t, err)

	_, err = Plot(filepath.Join(dir, "missing"), "png", testAnalyzer(), benchStart)
	require.Error(t, err)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = Plot(file, "png", testAnalyzer(), benchStart)
	require.Error(t, err)
}

func TestExportPDF(t *testing.T) {
	buf := bytes.Buffer{}

	require.NoError(t, ExportPDF(&buf, testAnalyzer(), benchStart))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExportExcel(t *testing.T) {
	buf := bytes.Buffer{}

	require.NoError(t, ExportExcel(&buf, testAnalyzer(), benchStart, ExportOptions{DomainStats: true, RecordTypeStats: true, ErrorBreakdown: true}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SummarySheet, RawResultsSheet, DomainsSheet, RecordTypesSheet, ErrorsSheet, ChartsSheet}, f.GetSheetList())

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 14)
	assert.Equal(t, []string{"Total queries", "6"}, summary[1])
	assert.Equal(t, []string{"Fastest resolver", "Cloudflare"}, summary[7])
	assert.Equal(t, []string{"Resolver", "IP", "Total"}, summary[10][:3])
	assert.Equal(t, []string{"Cloudflare", "1.1.1.1"}, summary[11][:2])
	assert.Equal(t, []string{"Quad9", "9.9.9.9"}, summary[13][:2])

	raw, err := f.GetRows(RawResultsSheet)
	require.NoError(t, err)
	require.Len(t, raw, 7)
	assert.Equal(t, rawHeader, raw[0])
	assert.Equal(t, []string{"Cloudflare", "1.1.1.1", "example.com", "A"}, raw[1][1:5])

	domains, err := f.GetRows(DomainsSheet)
	require.NoError(t, err)
	assert.Len(t, domains, 3)

	errs, err := f.GetRows(ErrorsSheet)
	require.NoError(t, err)
	assert.Len(t, errs, 4)

	pics, err := f.GetPictures(ChartsSheet, "A1")
	require.NoError(t, err)
	require.Len(t, pics, 1)
	assert.Equal(t, ".png", pics[0].Extension)
}

func TestExportExcel_Minimal(t *testing.T) {
	buf := bytes.Buffer{}

	require.NoError(t, ExportExcel(&buf, testAnalyzer(), benchStart, ExportOptions{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SummarySheet, RawResultsSheet, ChartsSheet}, f.GetSheetList())
}

func Test_numBins(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{n: 1, want: 1},
		{n: 16, want: 4},
		{n: 400, want: 14},
	}
	for _, tt := range tests {
		values := make([]float64, tt.n)
		for i := range values {
			values[i] = float64(i)
		}
		assert.Equal(t, tt.want, numBins(values))
	}
}

func Test_roundDuration(t *testing.T) {
	tests := []struct {
		dur  time.Duration
		want time.Duration
	}{
		{dur: 500 * time.Nanosecond, want: 500 * time.Nanosecond},
		{dur: 1234 * time.Nanosecond, want: 1230 * time.Nanosecond},
		{dur: 1234567 * time.Nanosecond, want: 1230 * time.Microsecond},
		{dur: 1234567890 * time.Nanosecond, want: 1230 * time.Millisecond},
		{dur: 61 * time.Second, want: 60 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.dur.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, roundDuration(tt.dur))
		})
	}
}
