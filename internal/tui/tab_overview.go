package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/opdusage/internal/cli"
	"github.com/theirongolddev/opdusage/internal/model"
	"github.com/theirongolddev/opdusage/internal/tui/components"
	"github.com/theirongolddev/opdusage/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	res := a.result
	s := res.Summary
	var b strings.Builder

	if res.Empty() {
		warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		b.WriteString(components.ContentCard("No matching records",
			warn.Render("The current filter selects nothing. Press f to change it or F to reset."), cw))
		b.WriteString("\n")
	}

	// Row 1: the five headline figures
	exhaustedNote := ""
	if s.OPDAssigned > 0 {
		exhaustedNote = cli.FormatPercent(s.OPDExhausted/s.OPDAssigned) + " of assigned"
	}
	usedNote := ""
	if s.OPDExhausted > 0 {
		usedNote = cli.FormatPercent(s.InOPDUsed/s.OPDExhausted) + " of exhausted"
	}
	reimbNote := ""
	if s.OPDExhausted > 0 {
		reimbNote = cli.FormatPercent(s.ReimbursementsUsed/s.OPDExhausted) + " of exhausted"
	}
	metrics := []components.Metric{
		{Label: "OPD Assigned", Value: cli.FormatAmountGrouped(s.OPDAssigned)},
		{Label: "OPD Exhausted", Value: cli.FormatAmountGrouped(s.OPDExhausted), Note: exhaustedNote},
		{Label: "Total Customers", Value: cli.FormatNumber(int64(s.TotalCustomers)), Note: "distinct ages"},
		{Label: "OPD @MRP", Value: cli.FormatAmountGrouped(s.InOPDUsed), Note: usedNote},
		{Label: "Reimbursements", Value: cli.FormatAmountGrouped(s.ReimbursementsUsed), Note: reimbNote},
	}
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(metrics[:3], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(metrics[3:], cw))
	} else {
		b.WriteString(components.MetricCardRow(metrics, cw))
	}
	b.WriteString("\n")

	// Row 2: slab histogram
	values, labels, colors := slabSeries(res.Slabs)
	chartH := 10
	if a.isCompactLayout() {
		chartH = 7
	}
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Age groups by usage slab (%d groups, %s records)",
			len(res.Groups), cli.FormatNumber(int64(res.Matched))),
		components.BarChart(values, labels, colors, components.CardInnerWidth(cw), chartH),
		cw,
	))

	return b.String()
}

// slabSeries turns slab counts into chart values with short axis labels.
func slabSeries(slabs []model.SlabCount) ([]float64, []string, []lipgloss.Color) {
	t := theme.Active
	values := make([]float64, len(slabs))
	labels := make([]string, len(slabs))
	colors := make([]lipgloss.Color, len(slabs))
	for i, sl := range slabs {
		values[i] = float64(sl.Count)
		labels[i] = shortSlabLabel(sl)
		colors[i] = t.SlabColor(i, len(slabs))
	}
	return values, labels, colors
}

// shortSlabLabel names a slab by its upper edge in percent.
func shortSlabLabel(sl model.SlabCount) string {
	switch {
	case math.IsInf(sl.Upper, 1):
		return fmt.Sprintf(">%.0f", sl.Lower*100)
	case sl.Upper <= 0:
		return "0"
	default:
		return fmt.Sprintf("%.0f", sl.Upper*100)
	}
}
