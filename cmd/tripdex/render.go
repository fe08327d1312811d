package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/kailas-cloud/tripdex/internal/catalog"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/domain/search/result"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	resultStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderWeights(w facet.Weights) string {
	return mutedStyle.Render("weights: " + w.String())
}

func renderResults(query string, w facet.Weights, results []result.Result) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Top %d for %q", len(results), query)))
	b.WriteString("\n")
	b.WriteString(renderWeights(w))
	b.WriteString("\n")
	if len(results) == 0 {
		b.WriteString(warnStyle.Render("no destinations match the filters"))
		b.WriteString("\n")
		return b.String()
	}
	for i := range results {
		b.WriteString(resultStyle.Render(renderResult(&results[i])))
		b.WriteString("\n")
	}
	return b.String()
}

func renderResult(r *result.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s  %s\n", r.Rank(), headerStyle.Render(r.Name()), scoreStyle.Render(fmt.Sprintf("%.3f", r.Score())))

	parts := make([]string, 0, facet.Count)
	for _, f := range facet.All {
		parts = append(parts, fmt.Sprintf("%s %.3f", f, r.FacetScore(f)))
	}
	b.WriteString(mutedStyle.Render(strings.Join(parts, " | ")))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(r.LocationLabel()))
	b.WriteString("\n\n")
	b.WriteString(r.Explanation())
	if m := r.MatchingAspects(); len(m) > 0 {
		b.WriteString("\n\n")
		b.WriteString(headerStyle.Render("Matches: "))
		b.WriteString(strings.Join(m, ", "))
	}
	return b.String()
}

func renderBuildReport(r *catalog.BuildReport) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Index built"))
	b.WriteString(mutedStyle.Render(" " + r.ID))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  destinations: %s (dimension %d)\n", humanize.Comma(int64(r.Indexed)), r.Dimension)
	fmt.Fprintf(&b, "  geocoded:     %s\n", humanize.Comma(int64(r.Geocoded)))
	fmt.Fprintf(&b, "  written:      %s in %s\n", humanize.Bytes(uint64(r.BytesWritten)), r.Duration.Round(time.Millisecond))
	if n := r.SkippedCount(); n > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  skipped %s: %v", humanize.Comma(int64(n)), r.Skipped)))
		b.WriteString("\n")
	}
	if n := r.MissCount(); n > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  without coordinates: %s", humanize.Comma(int64(n)))))
		b.WriteString("\n")
	}
	return b.String()
}
