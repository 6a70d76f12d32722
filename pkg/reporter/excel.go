package reporter

import (
	"fmt"
	"io"
	"time"

	"github.com/tantalor93/resolverbench/pkg/analysis"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
	"github.com/xuri/excelize/v2"
)

// names of the workbook sheets
const (
	SummarySheet     = "Summary"
	RawResultsSheet  = "Raw Results"
	DomainsSheet     = "Domain Stats"
	RecordTypesSheet = "Record Type Stats"
	ErrorsSheet      = "Error Breakdown"
	ChartsSheet      = "Charts"
)

const (
	excelChartSizeIn = 5
	// rows occupied by a chart of excelChartSizeIn inches at the default row height
	excelChartRows = 25
)

var groupTitles = []string{
	"Total", "Successful", "Failed", "Cache hits", "Success (%)",
	"Avg (ms)", "Median (ms)", "Min (ms)", "Max (ms)", "Std dev (ms)", "P95 (ms)", "P99 (ms)",
}

// ExportExcel writes an XLSX workbook with the summary, raw results and the charts of the benchmark,
// sheets with domain, record type and error statistics are added according to opts.
func ExportExcel(w io.Writer, a *analysis.Analyzer, benchStart time.Time, opts ExportOptions) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F1"}},
	})
	if err != nil {
		return fmt.Errorf("unable to export Excel: %w", err)
	}
	x := workbook{f: f, header: header}

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("unable to export Excel: %w", err)
	}
	if err := x.summary(a, benchStart); err != nil {
		return fmt.Errorf("unable to export Excel: %w", err)
	}
	if err := x.raw(a.Results()); err != nil {
		return fmt.Errorf("unable to export Excel: %w", err)
	}

	if opts.DomainStats {
		rows := make([][]any, 0)
		for _, s := range a.Domains() {
			rows = append(rows, append([]any{s.Domain}, groupValues(s.GroupStats)...))
		}
		if err := x.table(DomainsSheet, append([]string{"Domain"}, groupTitles...), rows); err != nil {
			return fmt.Errorf("unable to export Excel: %w", err)
		}
	}
	if opts.RecordTypeStats {
		rows := make([][]any, 0)
		for _, s := range a.RecordTypes() {
			rows = append(rows, append([]any{s.RecordType}, groupValues(s.GroupStats)...))
		}
		if err := x.table(RecordTypesSheet, append([]string{"Record type"}, groupTitles...), rows); err != nil {
			return fmt.Errorf("unable to export Excel: %w", err)
		}
	}
	if opts.ErrorBreakdown {
		rows := make([][]any, 0)
		for _, s := range a.Errors() {
			rows = append(rows, []any{s.ErrorMessage, s.Count})
		}
		if err := x.table(ErrorsSheet, []string{"Error", "Count"}, rows); err != nil {
			return fmt.Errorf("unable to export Excel: %w", err)
		}
	}

	if err := x.charts(a, benchStart); err != nil {
		return fmt.Errorf("unable to export Excel: %w", err)
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("unable to export Excel: %w", err)
	}
	return nil
}

type workbook struct {
	f      *excelize.File
	header int
}

func (x workbook) summary(a *analysis.Analyzer, benchStart time.Time) error {
	overall := a.Overall()
	rows := [][]any{
		{"Benchmark started", benchStart.Format(time.RFC3339)},
		{"Total queries", overall.TotalQueries},
		{"Successful queries", overall.SuccessfulQueries},
		{"Cache hits", overall.CacheHits},
		{"Success rate (%)", overall.OverallSuccessRate},
		{"Average latency (ms)", latencyValue(overall.OverallAvgLatency)},
		{"Median latency (ms)", latencyValue(overall.OverallMedianLatency)},
		{"Fastest resolver", overall.FastestResolver},
		{"Slowest resolver", overall.SlowestResolver},
	}
	for i, row := range rows {
		if err := x.row(SummarySheet, 1, i+1, row); err != nil {
			return err
		}
	}
	if err := x.f.SetColWidth(SummarySheet, "A", "A", 22); err != nil {
		return err
	}

	// resolver table below the overall statistics
	start := len(rows) + 2
	titles := append([]string{"Resolver", "IP"}, groupTitles...)
	if err := x.headerRow(SummarySheet, start, titles); err != nil {
		return err
	}
	for i, s := range a.Resolvers() {
		row := append([]any{s.ResolverName, s.ResolverIP}, groupValues(s.GroupStats)...)
		if err := x.row(SummarySheet, 1, start+i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func (x workbook) raw(results []dnsbench.QueryResult) error {
	rows := make([][]any, 0, len(results))
	for _, r := range results {
		var ttl any
		if r.TTL != nil {
			ttl = *r.TTL
		}
		rows = append(rows, []any{
			r.StartTime.Format(time.RFC3339Nano),
			r.ResolverName,
			r.ResolverIP,
			r.Domain,
			r.RecordType,
			r.LatencyMs,
			string(r.Status),
			len(r.Answers),
			ttl,
			r.ErrorMessage,
			r.CacheHit,
			r.Iteration,
			r.QueryID,
		})
	}
	return x.table(RawResultsSheet, rawHeader, rows)
}

func (x workbook) table(sheet string, titles []string, rows [][]any) error {
	if _, err := x.f.NewSheet(sheet); err != nil {
		return err
	}
	if err := x.headerRow(sheet, 1, titles); err != nil {
		return err
	}
	for i, row := range rows {
		if err := x.row(sheet, 1, i+2, row); err != nil {
			return err
		}
	}
	last, err := excelize.ColumnNumberToName(len(titles))
	if err != nil {
		return err
	}
	return x.f.SetColWidth(sheet, "A", last, 16)
}

func (x workbook) headerRow(sheet string, row int, titles []string) error {
	values := make([]any, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	if err := x.row(sheet, 1, row, values); err != nil {
		return err
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(titles), row)
	if err != nil {
		return err
	}
	return x.f.SetCellStyle(sheet, first, last, x.header)
}

func (x workbook) row(sheet string, col, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return x.f.SetSheetRow(sheet, cell, &values)
}

// charts places the PNG charts of the benchmark below each other on their own sheet.
func (x workbook) charts(a *analysis.Analyzer, benchStart time.Time) error {
	charts, err := buildCharts(a, benchStart)
	if err != nil {
		return err
	}
	if len(charts) == 0 {
		return nil
	}
	if _, err := x.f.NewSheet(ChartsSheet); err != nil {
		return err
	}
	for i, c := range charts {
		img, err := c.png(excelChartSizeIn)
		if err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(1, i*excelChartRows+1)
		if err != nil {
			return err
		}
		if err := x.f.AddPictureFromBytes(ChartsSheet, cell, &excelize.Picture{
			Extension: ".png",
			File:      img,
			Format:    &excelize.GraphicOptions{AltText: c.name},
		}); err != nil {
			return fmt.Errorf("unable to add chart '%s': %w", c.name, err)
		}
	}
	return nil
}

func groupValues(g analysis.GroupStats) []any {
	return []any{
		g.TotalQueries,
		g.SuccessfulQueries,
		g.FailedQueries,
		g.CacheHits,
		g.SuccessRate,
		latencyValue(g.AvgLatency),
		latencyValue(g.MedianLatency),
		latencyValue(g.MinLatency),
		latencyValue(g.MaxLatency),
		latencyValue(g.StdDevLatency),
		latencyValue(g.P95Latency),
		latencyValue(g.P99Latency),
	}
}

// latencyValue leaves the cell empty when there is no latency.
func latencyValue(l analysis.Latency) any {
	if !l.Valid {
		return nil
	}
	return l.Value
}
