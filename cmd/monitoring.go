package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/tantalor93/resolverbench/pkg/monitor"
	"github.com/tantalor93/resolverbench/pkg/printutils"
)

type monitoringCommand struct {
	opts runOptions

	interval time.Duration
	duration time.Duration

	latencyThreshold        float64
	latencyThresholdSet     bool
	failureRateThreshold    float64
	failureRateThresholdSet bool

	logFile string
}

func newMonitoringCommand(app *kingpin.Application) (*kingpin.CmdClause, command) {
	c := &monitoringCommand{}
	cmd := app.Command("monitoring", "Continuously benchmark DNS resolvers and alert when they degrade.")

	c.opts.registerConfig(cmd)
	c.opts.registerResolvers(cmd)
	c.opts.registerQueries(cmd)

	cmd.Flag("interval", "Pause between monitoring cycles.").
		Default(monitor.DefaultInterval.String()).DurationVar(&c.interval)

	cmd.Flag("duration", "Total time of monitoring, no new cycle is started after it elapses. Runs until interrupted when not specified.").
		PlaceHolder("1h").DurationVar(&c.duration)

	cmd.Flag("alert-latency", "Alert when the average latency of a resolver in milliseconds exceeds the threshold.").
		IsSetByUser(&c.latencyThresholdSet).Float64Var(&c.latencyThreshold)

	cmd.Flag("alert-failure-rate", "Alert when the percentage of failed queries of a resolver exceeds the threshold.").
		IsSetByUser(&c.failureRateThresholdSet).Float64Var(&c.failureRateThreshold)

	cmd.Flag("output", "File where the structured log of the monitoring is written.").
		Short('o').PlaceHolder("/path/to/monitoring.log").StringVar(&c.logFile)

	return cmd, c
}

func (c *monitoringCommand) run(ctx context.Context, out, errOut io.Writer) error {
	b, err := c.opts.benchmark(nil)
	if err != nil {
		return err
	}
	if err := checkFileLimit(b.MaxConcurrent, errOut); err != nil {
		return err
	}
	b.Silent = true

	m := &monitor.Monitor{
		Benchmark: b,
		Interval:  c.interval,
		Duration:  c.duration,
	}
	if c.latencyThresholdSet {
		m.LatencyThreshold = &c.latencyThreshold
	}
	if c.failureRateThresholdSet {
		m.FailureRateThreshold = &c.failureRateThreshold
	}
	if c.logFile != "" {
		f, err := os.Create(c.logFile)
		if err != nil {
			return fmt.Errorf("failed to create monitoring log '%s': %w", c.logFile, err)
		}
		defer f.Close()
		m.Sink = f
	}

	printutils.NeutralFprintf(out, "Monitoring %s resolvers every %s, press Ctrl+C to stop\n",
		printutils.HighlightSprint(len(b.Resolvers)), printutils.HighlightSprint(m.Interval))

	err = m.Run(ctx, func(cycle monitor.Cycle) {
		printCycle(out, cycle)
	})
	printutils.NeutralFprintf(out, "Monitoring ended after %s cycles\n", printutils.HighlightSprint(m.Cycles()))
	if err != nil {
		return fmt.Errorf("there was an error while monitoring: %w", err)
	}
	return nil
}

func printCycle(out io.Writer, cycle monitor.Cycle) {
	printutils.NeutralFprintf(out, "\n[%s]\n", cycle.Timestamp.Format(time.DateTime))

	rows := make([][]string, 0, len(cycle.Resolvers))
	for _, r := range cycle.Resolvers {
		rows = append(rows, []string{
			r.ResolverName,
			r.AvgLatency.String(),
			fmt.Sprintf("%.1f", r.SuccessRate),
		})
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Resolver", "Avg (ms)", "Success (%)"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()

	for _, a := range cycle.Alerts {
		printutils.WarnFprintf(out, "⚠️  %s\n", a.String())
	}
}
