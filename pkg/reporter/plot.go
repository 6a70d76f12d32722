package reporter

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/tantalor93/resolverbench/pkg/analysis"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotFormats lists the supported image formats of charts.
var PlotFormats = []string{"png", "jpg", "svg", "pdf"}

var barColors = append([]color.Color{
	color.RGBA{R: 122, G: 195, B: 106, A: 255},
	color.RGBA{R: 241, G: 90, B: 96, A: 255},
	color.RGBA{R: 90, G: 155, B: 212, A: 255},
	color.RGBA{R: 250, G: 167, B: 91, A: 255},
	color.RGBA{R: 158, G: 103, B: 171, A: 255},
	color.RGBA{R: 206, G: 112, B: 88, A: 255},
	color.RGBA{R: 215, G: 127, B: 180, A: 255},
}, plotutil.DarkColors...)

type chart struct {
	name string
	plot *plot.Plot
}

// png renders the chart as a square PNG image with the side of sizeIn inches.
func (c chart) png(sizeIn float64) ([]byte, error) {
	wt, err := c.plot.WriterTo(vg.Length(sizeIn)*vg.Inch, vg.Length(sizeIn)*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("unable to render chart '%s': %w", c.name, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("unable to render chart '%s': %w", c.name, err)
	}
	return buf.Bytes(), nil
}

// Plot saves charts of the benchmark into a new graphs-<timestamp> subdirectory of dir in the given format.
// The path of the created subdirectory is returned.
func Plot(dir, format string, a *analysis.Analyzer, benchStart time.Time) (string, error) {
	if !slices.Contains(PlotFormats, format) {
		return "", fmt.Errorf("unsupported plot format '%s'", format)
	}
	if err := directoryExists(dir); err != nil {
		return "", fmt.Errorf("unable to plot results: %w", err)
	}

	charts, err := buildCharts(a, benchStart)
	if err != nil {
		return "", fmt.Errorf("unable to plot results: %w", err)
	}

	graphs := filepath.Join(dir, "graphs-"+time.Now().Format(time.RFC3339))
	if err := os.Mkdir(graphs, os.ModePerm); err != nil {
		return "", fmt.Errorf("unable to plot results: %w", err)
	}
	for _, c := range charts {
		if err := c.plot.Save(6*vg.Inch, 6*vg.Inch, filepath.Join(graphs, c.name+"."+format)); err != nil {
			return graphs, fmt.Errorf("failed to save plot '%s': %w", c.name, err)
		}
	}
	return graphs, nil
}

func directoryExists(dir string) error {
	stat, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' path does not point to an existing directory", dir)
		}
		return err
	} else if !stat.IsDir() {
		return fmt.Errorf("'%s' is not a path to a directory", dir)
	}
	return nil
}

func buildCharts(a *analysis.Analyzer, benchStart time.Time) ([]chart, error) {
	results := a.Results()
	resolvers := a.Resolvers()

	builders := []struct {
		name  string
		build func() (*plot.Plot, error)
	}{
		{name: "latency-barchart", build: func() (*plot.Plot, error) { return plotAvgLatency(resolvers) }},
		{name: "successrate-barchart", build: func() (*plot.Plot, error) { return plotSuccessRate(resolvers) }},
		{name: "latency-boxplot", build: func() (*plot.Plot, error) { return plotBoxPlotLatency(resolvers, results) }},
		{name: "latency-histogram", build: func() (*plot.Plot, error) { return plotHistogramLatency(results) }},
		{name: "status-barchart", build: func() (*plot.Plot, error) { return plotStatuses(a.ErrorKinds(), a.Overall().SuccessfulQueries) }},
		{name: "throughput-lineplot", build: func() (*plot.Plot, error) { return plotLineThroughput(benchStart, results) }},
		{name: "latency-lineplot", build: func() (*plot.Plot, error) { return plotLineLatencies(benchStart, results) }},
		{name: "errorrate-lineplot", build: func() (*plot.Plot, error) { return plotErrorRate(benchStart, results) }},
	}

	var charts []chart
	for _, b := range builders {
		p, err := b.build()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.name, err)
		}
		if p != nil {
			charts = append(charts, chart{name: b.name, plot: p})
		}
	}
	return charts, nil
}

func successLatencies(results []dnsbench.QueryResult) plotter.Values {
	var values plotter.Values
	for _, r := range results {
		if r.Success() {
			values = append(values, r.LatencyMs)
		}
	}
	return values
}

func resolverNames(resolvers []analysis.ResolverStats) []string {
	names := make([]string, len(resolvers))
	for i, r := range resolvers {
		names[i] = r.ResolverName
	}
	return names
}

func plotAvgLatency(resolvers []analysis.ResolverStats) (*plot.Plot, error) {
	if len(resolvers) == 0 {
		// nothing to plot
		return nil, nil
	}
	values := make(plotter.Values, len(resolvers))
	for i, r := range resolvers {
		if r.AvgLatency.Valid {
			values[i] = r.AvgLatency.Value
		}
	}

	p := plot.New()
	p.Title.Text = "Average latency per resolver"
	p.NominalX(resolverNames(resolvers)...)
	p.Y.Label.Text = "Latency (ms)"
	p.Y.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}

	bar, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, err
	}
	bar.Color = barColors[2]
	p.Add(bar)
	return p, nil
}

func plotSuccessRate(resolvers []analysis.ResolverStats) (*plot.Plot, error) {
	if len(resolvers) == 0 {
		// nothing to plot
		return nil, nil
	}
	values := make(plotter.Values, len(resolvers))
	for i, r := range resolvers {
		values[i] = r.SuccessRate
	}

	p := plot.New()
	p.Title.Text = "Success rate per resolver"
	p.NominalX(resolverNames(resolvers)...)
	p.Y.Label.Text = "Success rate (%)"
	p.Y.Min = 0
	p.Y.Max = 100
	p.Y.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}

	bar, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, err
	}
	bar.Color = barColors[0]
	p.Add(bar)
	return p, nil
}

func plotHistogramLatency(results []dnsbench.QueryResult) (*plot.Plot, error) {
	values := successLatencies(results)
	if len(values) == 0 {
		// nothing to plot
		return nil, nil
	}
	p := plot.New()
	p.Title.Text = "Latencies distribution"

	hist, err := plotter.NewHist(values, numBins(values))
	if err != nil {
		return nil, err
	}
	p.X.Label.Text = "Latencies (ms)"
	p.X.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}
	p.Y.Label.Text = "Number of queries"
	p.Y.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}
	hist.FillColor = color.RGBA{R: 175, G: 238, B: 238, A: 255}
	p.Add(hist)
	return p, nil
}

// numBins calculates number of bins for histogram.
func numBins(values plotter.Values) int {
	n := float64(len(values))

	// small dataset
	if n < 100 {
		sqrt := math.Sqrt(n)
		return int(math.Max(1, math.Min(15, sqrt)))
	}

	// medium dataset - use Rice's rule
	if n < 1000 {
		rice := 2 * math.Cbrt(n)
		return int(math.Min(30, rice))
	}

	// large dataset - use Doane's rule
	skewness := stat.Skew(values, nil)

	// standard error of skewness
	sigmaG := math.Sqrt(6 * (n - 2) / ((n + 1) * (n + 3)))
	doane := 1 + math.Log2(n) + math.Log2(1+math.Abs(skewness)/sigmaG)
	return int(math.Min(50, doane))
}

func plotBoxPlotLatency(resolvers []analysis.ResolverStats, results []dnsbench.QueryResult) (*plot.Plot, error) {
	perResolver := make(map[string]plotter.Values)
	for _, r := range results {
		if r.Success() {
			perResolver[r.ResolverName] = append(perResolver[r.ResolverName], r.LatencyMs)
		}
	}
	if len(perResolver) == 0 {
		// nothing to plot
		return nil, nil
	}

	p := plot.New()
	p.Title.Text = "Latencies distribution"
	p.Y.Label.Text = "Latencies (ms)"
	p.Y.Tick.Marker = hplot.Ticks{N: 3, Format: "%.0f"}

	var names []string
	for _, r := range resolvers {
		values, ok := perResolver[r.ResolverName]
		if !ok {
			continue
		}
		boxplot, err := plotter.NewBoxPlot(vg.Length(40), float64(len(names)), values)
		if err != nil {
			return nil, err
		}
		boxplot.FillColor = color.RGBA{R: 127, G: 188, B: 165, A: 255}
		p.Add(boxplot)
		names = append(names, r.ResolverName)
	}
	p.NominalX(names...)
	return p, nil
}

func plotStatuses(kinds []analysis.StatusStats, successes int) (*plot.Plot, error) {
	counts := kinds
	if successes > 0 {
		counts = append([]analysis.StatusStats{{Status: string(dnsbench.StatusSuccess), Count: successes}}, kinds...)
	}
	if len(counts) == 0 {
		// nothing to plot
		return nil, nil
	}

	p := plot.New()
	p.Title.Text = "Query status distribution"
	p.NominalX("Query statuses")

	width := vg.Points(40)

	off := -vg.Length(len(counts)/2) * width
	for i, c := range counts {
		bar, err := plotter.NewBarChart(plotter.Values{float64(c.Count)}, width)
		if err != nil {
			return nil, err
		}
		p.Legend.Add(c.Status, bar)
		bar.Color = barColors[i%len(barColors)]
		bar.Offset = off
		p.Add(bar)
		off += width
	}

	p.Y.Label.Text = "Number of queries"
	p.Y.Tick.Marker = hplot.Ticks{N: 3, Format: "%.0f"}
	p.Legend.Top = true
	return p, nil
}

// perSecond groups values of the results by the second of the benchmark the query started in.
func perSecond(benchStart time.Time, results []dnsbench.QueryResult, include func(dnsbench.QueryResult) bool) map[int64][]float64 {
	m := make(map[int64][]float64)
	for _, r := range results {
		if !include(r) {
			continue
		}
		offset := r.StartTime.Unix() - benchStart.Unix()
		m[offset] = append(m[offset], r.LatencyMs)
	}
	return m
}

func sortedXYs(m map[int64][]float64, y func([]float64) float64) plotter.XYs {
	values := make(plotter.XYs, 0, len(m))
	for k, v := range m {
		values = append(values, plotter.XY{X: float64(k), Y: y(v)})
	}
	slices.SortFunc(values, func(a, b plotter.XY) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		default:
			return 0
		}
	})
	return values
}

func count(v []float64) float64 {
	return float64(len(v))
}

func plotLineThroughput(benchStart time.Time, results []dnsbench.QueryResult) (*plot.Plot, error) {
	m := perSecond(benchStart, results, func(r dnsbench.QueryResult) bool { return !r.CacheHit })
	if len(m) == 0 {
		// nothing to plot
		return nil, nil
	}
	values := sortedXYs(m, count)

	p := plot.New()
	p.Title.Text = "Throughput per second"
	p.X.Label.Text = "Time of test (s)"
	p.X.Tick.Marker = hplot.Ticks{N: 3, Format: "%.0f"}
	p.Y.Label.Text = "Number of queries (per sec)"
	p.Y.Tick.Marker = hplot.Ticks{N: 3, Format: "%.0f"}

	l, err := plotter.NewLine(values)
	if err != nil {
		return nil, err
	}
	l.Width = vg.Points(0.5)
	l.FillColor = color.RGBA{R: 175, G: 238, B: 238, A: 255}
	p.Add(l)

	scatter, err := plotter.NewScatter(values)
	if err != nil {
		return nil, err
	}
	scatter.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	return p, nil
}

func percentile(percent float64) func([]float64) float64 {
	return func(v []float64) float64 {
		res, err := stats.PercentileNearestRank(v, percent)
		if err != nil {
			return 0
		}
		return res
	}
}

func plotLineLatencies(benchStart time.Time, results []dnsbench.QueryResult) (*plot.Plot, error) {
	m := perSecond(benchStart, results, func(r dnsbench.QueryResult) bool { return r.Success() && !r.CacheHit })
	if len(m) == 0 {
		// nothing to plot
		return nil, nil
	}

	p := plot.New()
	p.Title.Text = "Response latencies"
	p.X.Label.Text = "Time of test (s)"
	p.Y.Label.Text = "Latency (ms)"

	for i, pct := range []float64{99, 95, 90, 50} {
		if err := plotLine(p, sortedXYs(m, percentile(pct)), plotutil.DarkColors[i], plotutil.SoftColors[i], fmt.Sprintf("p%.0f", pct)); err != nil {
			return nil, err
		}
	}

	p.Legend.Top = true
	return p, nil
}

func plotErrorRate(benchStart time.Time, results []dnsbench.QueryResult) (*plot.Plot, error) {
	m := perSecond(benchStart, results, func(r dnsbench.QueryResult) bool { return !r.Success() })
	if len(m) == 0 {
		// nothing to plot
		return nil, nil
	}
	values := sortedXYs(m, count)

	p := plot.New()
	p.Title.Text = "Error rate over time"
	p.X.Label.Text = "Time of test (s)"
	p.X.Tick.Marker = hplot.Ticks{N: 3, Format: "%.0f"}
	p.Y.Label.Text = "Number of errors (per sec)"
	p.Y.Tick.Marker = hplot.Ticks{N: 3, Format: "%.0f"}

	l, err := plotter.NewLine(values)
	if err != nil {
		return nil, err
	}
	l.Width = vg.Points(0.5)
	p.Add(l)

	scatter, err := plotter.NewScatter(values)
	if err != nil {
		return nil, err
	}
	scatter.Color = color.RGBA{R: 238, G: 46, B: 47, A: 255}
	scatter.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	return p, nil
}

func plotLine(p *plot.Plot, values plotter.XYs, color color.Color, fill color.Color, name string) error {
	l, err := plotter.NewLine(values)
	if err != nil {
		return err
	}
	l.Color = color
	l.FillColor = fill
	p.Add(l)
	p.Legend.Add(name, l)
	scatter, err := plotter.NewScatter(values)
	if err != nil {
		return err
	}
	scatter.Color = color
	scatter.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	return nil
}
