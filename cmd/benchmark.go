package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/tantalor93/resolverbench/pkg/analysis"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
	"github.com/tantalor93/resolverbench/pkg/printutils"
	"github.com/tantalor93/resolverbench/pkg/reporter"
)

const (
	jsonFormat  = "json"
	csvFormat   = "csv"
	excelFormat = "excel"
	pdfFormat   = "pdf"
	plotFormat  = "plot"
)

var exportFormats = []string{jsonFormat, csvFormat, excelFormat, pdfFormat, plotFormat}

type benchmarkCommand struct {
	opts runOptions

	formats    []string
	formatList string
	outputDir  string
	plotFormat string

	domainStats     bool
	recordTypeStats bool
	errorBreakdown  bool
	distribution    bool

	quiet  bool
	silent bool
}

func newBenchmarkCommand(app *kingpin.Application) (*kingpin.CmdClause, command) {
	c := &benchmarkCommand{}
	cmd := app.Command("benchmark", "Benchmark DNS resolvers against a set of domains.").Default()

	c.opts.registerConfig(cmd)
	c.opts.registerResolvers(cmd)
	c.opts.registerQueries(cmd)

	cmd.Flag("format", "Export results in the format into the output directory. Repeatable flag. Supported formats: json, csv, excel, pdf, plot.").
		Short('f').EnumsVar(&c.formats, exportFormats...)

	cmd.Flag("formats", "Comma separated list of export formats, like csv,excel,pdf. Unknown formats are skipped with a warning.").
		PlaceHolder("csv,excel").StringVar(&c.formatList)

	cmd.Flag("output", "Directory where the exported results are written.").
		Short('o').Default(".").PlaceHolder("/path/to/folder").StringVar(&c.outputDir)

	cmd.Flag("plotf", "Format of graphs. Supported formats: png, jpg, svg, pdf.").
		Default("png").EnumVar(&c.plotFormat, reporter.PlotFormats...)

	cmd.Flag("domain-stats", "Print and export per-domain statistics.").
		Default("false").BoolVar(&c.domainStats)

	cmd.Flag("record-type-stats", "Print and export per-record-type statistics.").
		Default("false").BoolVar(&c.recordTypeStats)

	cmd.Flag("error-breakdown", "Print and export the breakdown of errors.").
		Default("false").BoolVar(&c.errorBreakdown)

	cmd.Flag("distribution", "Display distribution histogram of latencies.").
		Default("false").BoolVar(&c.distribution)

	cmd.Flag("quiet", "Disable the progress bar.").
		Short('q').Default("false").BoolVar(&c.quiet)

	cmd.Flag("silent", "Disable stdout.").Default("false").BoolVar(&c.silent)

	return cmd, c
}

func (c *benchmarkCommand) run(ctx context.Context, out, errOut io.Writer) error {
	b, err := c.opts.benchmark(nil)
	if err != nil {
		return err
	}
	if err := checkFileLimit(b.MaxConcurrent, errOut); err != nil {
		return err
	}
	if c.silent {
		out = io.Discard
		c.quiet = true
	}
	b.Writer = out
	c.formats = mergeFormats(c.formats, c.formatList, errOut)

	start := time.Now()
	results, err := runBenchmark(ctx, b, errOut, c.quiet)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	a := analysis.New(results)

	reporter.PrintSummary(out, a, reporter.SummaryOptions{
		DomainStats:     c.domainStats,
		RecordTypeStats: c.recordTypeStats,
		ErrorBreakdown:  c.errorBreakdown,
		Distribution:    c.distribution,
		Duration:        duration,
	})

	files, err := c.export(a, start)
	for _, f := range files {
		printutils.NeutralFprintf(out, "Results exported to %s\n", printutils.HighlightSprint(f))
	}
	return err
}

func (c *benchmarkCommand) export(a *analysis.Analyzer, benchStart time.Time) ([]string, error) {
	if len(c.formats) == 0 {
		return nil, nil
	}
	prefix := "dns_benchmark_" + benchStart.Format("20060102_150405")
	sections := reporter.ExportOptions{
		DomainStats:     c.domainStats,
		RecordTypeStats: c.recordTypeStats,
		ErrorBreakdown:  c.errorBreakdown,
	}

	var files []string
	if slices.Contains(c.formats, jsonFormat) {
		path := filepath.Join(c.outputDir, prefix+".json")
		if err := writeFile(path, func(w io.Writer) error { return reporter.ExportJSON(w, a) }); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	if slices.Contains(c.formats, csvFormat) {
		written, err := reporter.ExportCSVFiles(c.outputDir, prefix, a, sections)
		files = append(files, written...)
		if err != nil {
			return files, err
		}
	}
	if slices.Contains(c.formats, excelFormat) {
		path := filepath.Join(c.outputDir, prefix+".xlsx")
		if err := writeFile(path, func(w io.Writer) error { return reporter.ExportExcel(w, a, benchStart, sections) }); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	if slices.Contains(c.formats, pdfFormat) {
		path := filepath.Join(c.outputDir, prefix+".pdf")
		if err := writeFile(path, func(w io.Writer) error { return reporter.ExportPDF(w, a, benchStart) }); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	if slices.Contains(c.formats, plotFormat) {
		dir, err := reporter.Plot(c.outputDir, c.plotFormat, a, benchStart)
		if err != nil {
			return files, err
		}
		files = append(files, dir)
	}
	return files, nil
}

// mergeFormats adds the comma separated formats to the formats given by the repeatable flag.
func mergeFormats(formats []string, list string, errOut io.Writer) []string {
	merged := slices.Clone(formats)
	for _, f := range strings.Split(list, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		switch {
		case f == "":
		case !slices.Contains(exportFormats, f):
			printutils.WarnFprintf(errOut, "Invalid format '%s', supported formats: %s\n", f, strings.Join(exportFormats, ", "))
		case !slices.Contains(merged, f):
			merged = append(merged, f)
		}
	}
	return merged
}

// runBenchmark executes the benchmark with the progress bar written into errOut unless quiet.
func runBenchmark(ctx context.Context, b dnsbench.Benchmark, errOut io.Writer, quiet bool) ([]dnsbench.QueryResult, error) {
	if !quiet {
		bar := progressbar.NewOptions(b.Tasks(),
			progressbar.OptionSetWriter(errOut),
			progressbar.OptionSetDescription("Querying"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		b.Progress = func(dnsbench.QueryResult) {
			_ = bar.Add(1)
		}
		defer func() {
			_ = bar.Finish()
		}()
	}

	results, err := b.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("there was an error while starting benchmark: %w", err)
	}
	return results, nil
}
