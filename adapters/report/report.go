// Package report renders comparison verdicts and run summaries for humans:
// markdown for terminals and commit artifacts, HTML for dashboards.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gonum.org/v1/gonum/stat"

	"github.com/Breezyryu/batter/domain/compare"
	"github.com/Breezyryu/batter/domain/cycle"
)

// RenderVerdictMarkdown produces the comparison report in markdown.
func RenderVerdictMarkdown(v *compare.Verdict) string {
	var b strings.Builder
	b.WriteString("# Comparison Report\n\n")

	status := "FAILED"
	if v.Passed {
		status = "PASSED"
	}
	fmt.Fprintf(&b, "**Result: %s** - %s\n\n", status, v.Message)

	b.WriteString("## Capacity\n\n")
	fmt.Fprintf(&b, "| Reference | Candidate | Match |\n|---|---|---|\n| %.1f mAh | %.1f mAh | %v |\n\n",
		v.CapacityRef, v.CapacityCand, v.CapacityMatch)

	b.WriteString("## Table comparison\n\n")
	fmt.Fprintf(&b, "- Total rows: %d\n", v.TotalRows)
	fmt.Fprintf(&b, "- Exact matches: %d\n", v.ExactMatches)
	fmt.Fprintf(&b, "- Within tolerance: %d\n", v.WithinTolerance)
	fmt.Fprintf(&b, "- Max deviation: %.6f\n", v.MaxDeviation)
	fmt.Fprintf(&b, "- Mean absolute error: %.6f\n\n", v.MeanAbsError)

	b.WriteString("## Column deviations\n\n")
	b.WriteString("| Column | MAE | Max | Match |\n|---|---|---|---|\n")
	keys := make([]string, 0, len(v.PerColumn))
	for k := range v.PerColumn {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := v.PerColumn[k]
		fmt.Fprintf(&b, "| %s | %.6f | %.6f | %.1f%% |\n", k, s.MAE, s.MaxDev, s.MatchFraction*100)
	}
	b.WriteString("\n")

	if len(v.MismatchedRows) > 0 {
		show := v.MismatchedRows
		if len(show) > 10 {
			show = show[:10]
		}
		fmt.Fprintf(&b, "Mismatched rows (first %d): %v\n", len(show), show)
	}
	return b.String()
}

// RenderVerdictHTML renders the markdown report to standalone HTML.
func RenderVerdictHTML(v *compare.Verdict) string {
	md := RenderVerdictMarkdown(v)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}

// RunSummary aggregates a run's headline statistics for log lines and
// report footers.
type RunSummary struct {
	Cycles         int
	MeanDchgNorm   float64
	StdDevDchgNorm float64
	MeanEfficiency float64
	CapacityMAh    float64
	RetentionAtEnd float64
}

// Summarize computes headline statistics over a cycle table, skipping
// undefined values the way the metrics pipeline emits them.
func Summarize(capacity float64, rows []cycle.CycleRow) RunSummary {
	var dchg, eff []float64
	for _, r := range rows {
		if !math.IsNaN(r.DchgNorm) {
			dchg = append(dchg, r.DchgNorm)
		}
		if !math.IsNaN(r.Eff) {
			eff = append(eff, r.Eff)
		}
	}

	s := RunSummary{Cycles: len(rows), CapacityMAh: capacity}
	if len(dchg) > 0 {
		s.MeanDchgNorm = stat.Mean(dchg, nil)
		s.StdDevDchgNorm = stat.StdDev(dchg, nil)
		s.RetentionAtEnd = dchg[len(dchg)-1] / dchg[0]
	}
	if len(eff) > 0 {
		s.MeanEfficiency = stat.Mean(eff, nil)
	}
	return s
}

// RenderRunMarkdown produces a short per-run summary in markdown.
func RenderRunMarkdown(result *cycle.RunResult) string {
	s := Summarize(result.Capacity, result.Rows)
	var b strings.Builder
	b.WriteString("# Cycle Analysis\n\n")
	fmt.Fprintf(&b, "- Run: %s\n", result.RunID)
	fmt.Fprintf(&b, "- Reference capacity: %.1f mAh\n", s.CapacityMAh)
	fmt.Fprintf(&b, "- Cycles: %d\n", s.Cycles)
	fmt.Fprintf(&b, "- Mean discharge capacity: %.4f (normalized, sd %.4f)\n", s.MeanDchgNorm, s.StdDevDchgNorm)
	fmt.Fprintf(&b, "- Mean efficiency: %.2f%%\n", s.MeanEfficiency*100)
	fmt.Fprintf(&b, "- Capacity retention: %.2f%%\n", s.RetentionAtEnd*100)
	return b.String()
}
