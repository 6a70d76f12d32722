package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/tantalor93/resolverbench/pkg/catalog"
	"github.com/tantalor93/resolverbench/pkg/printutils"
)

const tableFormat = "table"

var listFormats = []string{tableFormat, csvFormat, jsonFormat}

type listDefaultsCommand struct{}

func newListDefaultsCommand(app *kingpin.Application) (*kingpin.CmdClause, command) {
	cmd := app.Command("list-defaults", "List resolvers and domains benchmarked when none are specified.")
	return cmd, listDefaultsCommand{}
}

func (listDefaultsCommand) run(_ context.Context, out, _ io.Writer) error {
	printutils.NeutralFprintf(out, "%s\n", printutils.BoldSprint("Default resolvers:"))
	for _, r := range catalog.DefaultResolvers() {
		printutils.NeutralFprintf(out, "\t%s\t%s\n", r.Name, r.IP)
	}
	printutils.NeutralFprintf(out, "\n%s\n", printutils.BoldSprint("Default domains:"))
	for _, d := range catalog.SampleDomains() {
		printutils.NeutralFprintf(out, "\t%s\n", d)
	}
	return nil
}

type listResolversCommand struct {
	category string
	format   string
	details  bool
}

func newListResolversCommand(app *kingpin.Application) (*kingpin.CmdClause, command) {
	c := &listResolversCommand{}
	cmd := app.Command("list-resolvers", "List built-in resolvers.")

	cmd.Flag("category", "Show only resolvers of the category.").StringVar(&c.category)
	cmd.Flag("format", "Output format. Supported values: table, csv, json.").
		Default(tableFormat).EnumVar(&c.format, listFormats...)
	cmd.Flag("details", "Show provider, country and description of resolvers.").
		Default("false").BoolVar(&c.details)

	return cmd, c
}

func (c *listResolversCommand) run(_ context.Context, out, _ io.Writer) error {
	resolvers := catalog.ResolversByCategory(c.category)
	if len(resolvers) == 0 {
		return fmt.Errorf("unknown resolver category '%s', use one of %s",
			c.category, strings.Join(catalog.Categories().Resolvers, ", "))
	}

	if c.format == jsonFormat {
		return writeJSON(out, resolvers)
	}

	header := []string{"Name", "IP", "IPv6", "Category"}
	if c.details {
		header = append(header, "Provider", "Type", "Country", "Description")
	}
	rows := make([][]string, 0, len(resolvers))
	for _, r := range resolvers {
		row := []string{r.Name, r.IP, r.IPv6, r.Category}
		if c.details {
			row = append(row, r.Provider, r.Type, r.Country, r.Description)
		}
		rows = append(rows, row)
	}
	return writeRows(out, c.format, header, rows)
}

type listDomainsCommand struct {
	category string
	count    int
	format   string
}

func newListDomainsCommand(app *kingpin.Application) (*kingpin.CmdClause, command) {
	c := &listDomainsCommand{}
	cmd := app.Command("list-domains", "List built-in domains.")

	cmd.Flag("category", "Show only domains of the category.").StringVar(&c.category)
	cmd.Flag("count", "Maximum number of listed domains, 0 lists all of them.").
		Default("0").IntVar(&c.count)
	cmd.Flag("format", "Output format. Supported values: table, csv, json.").
		Default(tableFormat).EnumVar(&c.format, listFormats...)

	return cmd, c
}

func (c *listDomainsCommand) run(_ context.Context, out, _ io.Writer) error {
	domains := catalog.DomainsByCategory(c.category)
	if len(domains) == 0 {
		return fmt.Errorf("unknown domain category '%s', use one of %s",
			c.category, strings.Join(catalog.Categories().Domains, ", "))
	}
	if c.count > 0 && len(domains) > c.count {
		domains = domains[:c.count]
	}

	if c.format == jsonFormat {
		return writeJSON(out, domains)
	}

	rows := make([][]string, 0, len(domains))
	for _, d := range domains {
		rows = append(rows, []string{d.Domain, d.Category, d.Country, d.Description})
	}
	return writeRows(out, c.format, []string{"Domain", "Category", "Country", "Description"}, rows)
}

type listCategoriesCommand struct{}

func newListCategoriesCommand(app *kingpin.Application) (*kingpin.CmdClause, command) {
	cmd := app.Command("list-categories", "List categories of built-in resolvers and domains.")
	return cmd, listCategoriesCommand{}
}

func (listCategoriesCommand) run(_ context.Context, out, _ io.Writer) error {
	categories := catalog.Categories()
	printutils.NeutralFprintf(out, "%s\n", printutils.BoldSprint("Resolver categories:"))
	for _, c := range categories.Resolvers {
		printutils.NeutralFprintf(out, "\t%s\t%d resolvers\n", c, len(catalog.ResolversByCategory(c)))
	}
	printutils.NeutralFprintf(out, "\n%s\n", printutils.BoldSprint("Domain categories:"))
	for _, c := range categories.Domains {
		printutils.NeutralFprintf(out, "\t%s\t%d domains\n", c, len(catalog.DomainsByCategory(c)))
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRows(out io.Writer, format string, header []string, rows [][]string) error {
	if format == csvFormat {
		w := csv.NewWriter(out)
		if err := w.Write(header); err != nil {
			return err
		}
		if err := w.WriteAll(rows); err != nil {
			return err
		}
		return w.Error()
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
	return nil
}
