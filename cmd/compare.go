package cmd

import (
	"context"
	"io"

	"github.com/alecthomas/kingpin/v2"
	"github.com/tantalor93/resolverbench/pkg/analysis"
	"github.com/tantalor93/resolverbench/pkg/printutils"
	"github.com/tantalor93/resolverbench/pkg/reporter"
)

type compareCommand struct {
	opts runOptions

	resolvers []string
	details   bool
	output    string
	quiet     bool
}

func newCompareCommand(app *kingpin.Application) (*kingpin.CmdClause, command) {
	c := &compareCommand{}
	cmd := app.Command("compare", "Compare specific resolvers side by side.")

	c.opts.registerQueries(cmd)

	cmd.Flag("show-details", "Show per-domain breakdown of each resolver.").
		Default("false").BoolVar(&c.details)

	cmd.Flag("output", "Export the comparison as JSON into the file.").
		Short('o').PlaceHolder("/path/to/comparison.json").StringVar(&c.output)

	cmd.Flag("quiet", "Disable the progress bar.").
		Short('q').Default("false").BoolVar(&c.quiet)

	cmd.Arg("resolvers", "Resolvers to compare, names of built-in resolvers or name=address pairs, like 'local=127.0.0.1:53'.").
		Required().StringsVar(&c.resolvers)

	return cmd, c
}

func (c *compareCommand) run(ctx context.Context, out, errOut io.Writer) error {
	resolvers, err := parseResolvers(c.resolvers)
	if err != nil {
		return err
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

	a := analysis.New(results)
	reporter.PrintComparison(out, a, c.details)

	if c.output != "" {
		if err := reporter.ExportComparison(c.output, a); err != nil {
			return err
		}
		printutils.NeutralFprintf(out, "Comparison exported to %s\n", printutils.HighlightSprint(c.output))
	}
	return nil
}
