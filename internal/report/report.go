// Package report renders analysis output as plain-text, markdown and
// HTML tables.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"aline/domain/causal"
	"aline/internal/balance"
)

// Table is a titled grid of formatted cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// EffectTable renders the estimate as the three-column result table:
// odds ratio, lower bound, upper bound.
func EffectTable(est causal.Estimate) Table {
	level := fmt.Sprintf("%g%%", est.Effect.Confidence*100)
	return Table{
		Title:   "Marginal effect of " + est.Effect.Term,
		Headers: []string{"OR", level + " lower", level + " upper"},
		Rows: [][]string{{
			fmt.Sprintf("%.6f", est.Effect.OddsRatio),
			fmt.Sprintf("%.6f", est.Effect.Lower),
			fmt.Sprintf("%.6f", est.Effect.Upper),
		}},
	}
}

// BalanceTable renders covariate balance diagnostics.
func BalanceTable(rows []balance.CovariateBalance) Table {
	t := Table{
		Title:   "Covariate balance (standardized mean differences)",
		Headers: []string{"covariate", "exposed mean", "unexposed mean", "SMD", "weighted SMD"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Key,
			fmt.Sprintf("%.4f", r.ExposedMean),
			fmt.Sprintf("%.4f", r.UnexposedMean),
			fmt.Sprintf("%.4f", r.UnweightedSMD),
			fmt.Sprintf("%.4f", r.WeightedSMD),
		})
	}
	return t
}

// RenderText renders a table with aligned columns for terminal output.
func RenderText(t Table) string {
	widths := make([]int, len(t.Headers))
	for j, h := range t.Headers {
		widths[j] = len(h)
	}
	for _, row := range t.Rows {
		for j, cell := range row {
			if len(cell) > widths[j] {
				widths[j] = len(cell)
			}
		}
	}

	var b strings.Builder
	b.WriteString(t.Title + "\n")
	writeRow := func(cells []string) {
		for j, cell := range cells {
			if j > 0 {
				b.WriteString("  ")
			}
			b.WriteString(fmt.Sprintf("%-*s", widths[j], cell))
		}
		b.WriteString("\n")
	}
	writeRow(t.Headers)
	for j, w := range widths {
		if j > 0 {
			b.WriteString("  ")
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteString("\n")
	for _, row := range t.Rows {
		writeRow(row)
	}
	return b.String()
}

// RenderMarkdown renders a table as a GFM pipe table.
func RenderMarkdown(t Table) string {
	var b strings.Builder
	b.WriteString("## " + t.Title + "\n\n")
	b.WriteString("| " + strings.Join(t.Headers, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(t.Headers)) + "\n")
	for _, row := range t.Rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return b.String()
}

// RenderHTML renders tables as a standalone HTML document.
func RenderHTML(tables ...Table) []byte {
	var md strings.Builder
	for _, t := range tables {
		md.WriteString(RenderMarkdown(t))
		md.WriteString("\n")
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Analysis report",
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(md.String()), p, renderer)
}
