package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/tantalor93/resolverbench/pkg/analysis"
	"github.com/tantalor93/resolverbench/pkg/printutils"
)

// TopEntry is a single position of the resolver ranking.
type TopEntry struct {
	Rank         int              `json:"rank"`
	Name         string           `json:"name"`
	IP           string           `json:"ip"`
	AvgLatency   analysis.Latency `json:"avg_latency_ms"`
	StdDev       analysis.Latency `json:"std_dev_ms"`
	SuccessRate  float64          `json:"success_rate"`
	TotalQueries int              `json:"total_queries"`
}

// Top ranks the resolvers by the metric and returns at most limit best of them, limit <= 0 means no limit.
func Top(stats []analysis.ResolverStats, by analysis.Metric, limit int) []TopEntry {
	ranked := analysis.Rank(stats, by)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	entries := make([]TopEntry, 0, len(ranked))
	for i, r := range ranked {
		entries = append(entries, TopEntry{
			Rank:         i + 1,
			Name:         r.ResolverName,
			IP:           r.ResolverIP,
			AvgLatency:   r.AvgLatency,
			StdDev:       r.StdDevLatency,
			SuccessRate:  r.SuccessRate,
			TotalQueries: r.TotalQueries,
		})
	}
	return entries
}

var topHeader = []string{"Rank", "Resolver", "IP", "Avg (ms)", "Std dev (ms)", "Success (%)", "Queries"}

func topRows(entries []TopEntry, latency func(analysis.Latency) string) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Rank),
			e.Name,
			e.IP,
			latency(e.AvgLatency),
			latency(e.StdDev),
			fmt.Sprintf("%.1f", e.SuccessRate),
			strconv.Itoa(e.TotalQueries),
		})
	}
	return rows
}

// PrintTop prints the ranking as a table.
func PrintTop(w io.Writer, entries []TopEntry, by analysis.Metric) {
	printutils.NeutralFprintf(w, "\n%s\n", printutils.BoldSprint(fmt.Sprintf("Top %d resolvers by %s:", len(entries), by)))
	table := tablewriter.NewWriter(w)
	table.SetHeader(topHeader)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(topRows(entries, analysis.Latency.String))
	table.Render()
}

// ExportTop writes the ranking into the file, the format is selected by the file extension (.json, .csv or .txt).
func ExportTop(path string, entries []TopEntry, by analysis.Metric) error {
	var write func(io.Writer) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		write = func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Metric       analysis.Metric `json:"metric"`
				TopResolvers []TopEntry      `json:"top_resolvers"`
			}{Metric: by, TopResolvers: entries})
		}
	case ".csv":
		write = func(w io.Writer) error {
			return writeCSV(w, topHeader, topRows(entries, analysis.Latency.CSV))
		}
	case ".txt":
		write = func(w io.Writer) error {
			if _, err := fmt.Fprintf(w, "Top %d resolvers by %s\n\n", len(entries), by); err != nil {
				return err
			}
			table := tablewriter.NewWriter(w)
			table.SetHeader(topHeader)
			table.SetAutoWrapText(false)
			table.AppendBulk(topRows(entries, analysis.Latency.String))
			table.Render()
			return nil
		}
	default:
		return fmt.Errorf("unsupported export format '%s', use .json, .csv or .txt", ext)
	}
	return writeFile(path, write)
}
