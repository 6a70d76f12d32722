package reporter

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/tantalor93/resolverbench/pkg/analysis"
)

const (
	pdfLineHeight  = 6.0
	pdfChartWidth  = 170.0
	pdfChartSizeIn = 6
)

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{title: "#", width: 10, align: "C"},
	{title: "Resolver", width: 45, align: "L"},
	{title: "IP", width: 45, align: "L"},
	{title: "Avg (ms)", width: 22, align: "R"},
	{title: "P95 (ms)", width: 22, align: "R"},
	{title: "Success (%)", width: 26, align: "R"},
}

// ExportPDF writes a PDF report with the overall summary, the resolver table and the charts of the benchmark.
func ExportPDF(w io.Writer, a *analysis.Analyzer, benchStart time.Time) error {
	charts, err := buildCharts(a, benchStart)
	if err != nil {
		return fmt.Errorf("unable to export PDF: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("DNS resolver benchmark report", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "DNS Resolver Benchmark Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, pdfLineHeight, "Benchmark started "+benchStart.Format(time.RFC1123), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	overall := a.Overall()
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		fmt.Sprintf("Total queries: %d", overall.TotalQueries),
		fmt.Sprintf("Successful queries: %d (%.1f%%)", overall.SuccessfulQueries, overall.OverallSuccessRate),
		fmt.Sprintf("Average latency: %s", msString(overall.OverallAvgLatency)),
		fmt.Sprintf("Median latency: %s", msString(overall.OverallMedianLatency)),
	}
	if overall.FastestResolver != "" {
		lines = append(lines,
			fmt.Sprintf("Fastest resolver: %s", overall.FastestResolver),
			fmt.Sprintf("Slowest resolver: %s", overall.SlowestResolver))
	}
	for _, l := range lines {
		pdf.CellFormat(0, pdfLineHeight, tr(l), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Resolver performance", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(220, 230, 241)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, pdfLineHeight+1, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for i, r := range a.Resolvers() {
		cells := []string{
			fmt.Sprint(i + 1),
			r.ResolverName,
			r.ResolverIP,
			r.AvgLatency.String(),
			r.P95Latency.String(),
			fmt.Sprintf("%.1f", r.SuccessRate),
		}
		for j, c := range pdfColumns {
			pdf.CellFormat(c.width, pdfLineHeight, tr(cells[j]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	for _, c := range charts {
		img, err := c.png(pdfChartSizeIn)
		if err != nil {
			return err
		}

		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(c.name, opts, bytes.NewReader(img))
		pdf.AddPage()
		left, _, _, _ := pdf.GetMargins()
		pageWidth, _ := pdf.GetPageSize()
		pdf.ImageOptions(c.name, left+(pageWidth-2*left-pdfChartWidth)/2, -1, pdfChartWidth, 0, true, opts, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("unable to export PDF: %w", err)
	}
	return nil
}
