package cmd

import (
	"context"
	"io"

	"github.com/alecthomas/kingpin/v2"
	"github.com/tantalor93/resolverbench/pkg/catalog"
	"github.com/tantalor93/resolverbench/pkg/printutils"
)

type generateConfigCommand struct {
	category string
	output   string
}

func newGenerateConfigCommand(app *kingpin.Application) (*kingpin.CmdClause, command) {
	c := &generateConfigCommand{}
	cmd := app.Command("generate-config", "Generate YAML configuration of a benchmark, usable with --config flag.")

	cmd.Flag("category", "Benchmark built-in resolvers of the category, default resolvers are used when not specified.").
		StringVar(&c.category)
	cmd.Flag("output", "File where the configuration is written, stdout when not specified.").
		Short('o').PlaceHolder("/path/to/config.yaml").StringVar(&c.output)

	return cmd, c
}

func (c *generateConfigCommand) run(_ context.Context, out, _ io.Writer) error {
	cfg, err := catalog.GenerateConfig(c.category)
	if err != nil {
		return err
	}
	if c.output == "" {
		return catalog.WriteConfig(out, cfg)
	}
	if err := writeFile(c.output, func(w io.Writer) error { return catalog.WriteConfig(w, cfg) }); err != nil {
		return err
	}
	printutils.NeutralFprintf(out, "Configuration written to %s\n", printutils.HighlightSprint(c.output))
	return nil
}
