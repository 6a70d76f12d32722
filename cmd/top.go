package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/tantalor93/resolverbench/pkg/analysis"
	"github.com/tantalor93/resolverbench/pkg/catalog"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
	"github.com/tantalor93/resolverbench/pkg/printutils"
	"github.com/tantalor93/resolverbench/pkg/reporter"
)

type topCommand struct {
	opts runOptions

	metric string
	limit  int
	output string
	quiet  bool
}

func newTopCommand(app *kingpin.Application) (*kingpin.CmdClause, command) {
	c := &topCommand{}
	cmd := app.Command("top", "Rank resolvers and show the best of them. All built-in resolvers are ranked unless specified otherwise.")

	c.opts.registerResolvers(cmd)
	c.opts.registerQueries(cmd)

	metrics := make([]string, len(analysis.Metrics))
	for i, m := range analysis.Metrics {
		metrics[i] = string(m)
	}
	cmd.Flag("metric", "Ranking metric. Supported values: "+strings.Join(metrics, ", ")+".").
		Short('m').Default(string(analysis.MetricLatency)).EnumVar(&c.metric, metrics...)

	cmd.Flag("limit", "Number of resolvers to show.").
		Default("10").IntVar(&c.limit)

	cmd.Flag("output", "Export the ranking into the file, format is selected by the extension: .json, .csv or .txt.").
		Short('o').PlaceHolder("/path/to/top.json").StringVar(&c.output)

	cmd.Flag("quiet", "Disable the progress bar.").
		Short('q').Default("false").BoolVar(&c.quiet)

	return cmd, c
}

func (c *topCommand) run(ctx context.Context, out, errOut io.Writer) error {
	metric, err := analysis.ParseMetric(c.metric)
	if err != nil {
		return err
	}

	var resolvers []dnsbench.Resolver
	if c.opts.resolversFile == "" && len(c.opts.resolverNames) == 0 {
		for _, r := range catalog.ResolversByCategory(c.opts.category) {
			resolvers = append(resolvers, r.Resolver())
		}
	}
	b, err := c.opts.benchmark(resolvers)
	if err != nil {
		return err
	}
	if err := checkFileLimit(b.MaxConcurrent, errOut); err != nil {
		return err
	}
	b.Writer = out

	results, err := runBenchmark(ctx, b, errOut, c.quiet)
	if err != nil {
		return err
	}

	entries := reporter.Top(analysis.New(results).Resolvers(), metric, c.limit)
	reporter.PrintTop(out, entries, metric)

	if c.output != "" {
		if err := reporter.ExportTop(c.output, entries, metric); err != nil {
			return err
		}
		printutils.NeutralFprintf(out, "Ranking exported to %s\n", printutils.HighlightSprint(c.output))
	}
	return nil
}
