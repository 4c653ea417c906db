package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/opdusage/internal/cli"
	"github.com/theirongolddev/opdusage/internal/tui/components"
	"github.com/theirongolddev/opdusage/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// renderAgesTab lists one row per age group, scrolled by ageOffset.
func (a App) renderAgesTab(cw, h int) string {
	t := theme.Active
	groups := a.result.Groups

	innerW := components.CardInnerWidth(cw)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	if len(groups) == 0 {
		return components.ContentCard("Age groups", mutedStyle.Render("No age groups for the current filter."), cw)
	}

	const ageW, membersW, amountW = 4, 8, 14
	compact := a.isCompactLayout()
	fixed := ageW + membersW + 2*amountW + 3
	if !compact {
		fixed += 2*amountW + 2
	}
	barW := max(6, innerW-fixed-10)

	var header string
	if compact {
		header = fmt.Sprintf("%*s %*s %*s %*s  %s",
			ageW, "Age", membersW, "Members", amountW, "Used", amountW, "Limit", "Usage")
	} else {
		header = fmt.Sprintf("%*s %*s %*s %*s %*s %*s  %s",
			ageW, "Age", membersW, "Members", amountW, "MRP", amountW, "Refund",
			amountW, "Used", amountW, "Limit", "Usage")
	}

	// card border + title + header + rule
	visible := max(1, h-5)
	start := min(a.ageOffset, max(0, len(groups)-visible))
	end := min(len(groups), start+visible)

	var body strings.Builder
	body.WriteString(headerStyle.Render(truncStr(header, innerW)))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	for _, g := range groups[start:end] {
		body.WriteString("\n")
		var cols string
		if compact {
			cols = fmt.Sprintf("%*d %*s %*s %*s",
				ageW, g.Age,
				membersW, cli.FormatNumber(int64(g.Members)),
				amountW, cli.FormatAmountGrouped(g.TotalOPDUsed),
				amountW, cli.FormatAmountGrouped(g.OPDLimit))
		} else {
			cols = fmt.Sprintf("%*d %*s %*s %*s %*s %*s",
				ageW, g.Age,
				membersW, cli.FormatNumber(int64(g.Members)),
				amountW, cli.FormatAmountGrouped(g.OPDMRPAmount),
				amountW, cli.FormatAmountGrouped(g.RefundAmount),
				amountW, cli.FormatAmountGrouped(g.TotalOPDUsed),
				amountW, cli.FormatAmountGrouped(g.OPDLimit))
		}
		body.WriteString(rowStyle.Render(cols))
		body.WriteString(spaceStyle.Render("  "))
		body.WriteString(components.RatioBar("", g.UsageRatio(), 0, barW))
	}

	title := "Age groups"
	if len(groups) > visible {
		title += " (" + strconv.Itoa(start+1) + "-" + strconv.Itoa(end) + " of " + strconv.Itoa(len(groups)) + ", j/k to scroll)"
	}
	return components.ContentCard(title, body.String(), cw)
}
