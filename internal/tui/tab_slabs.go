package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/opdusage/internal/cli"
	"github.com/theirongolddev/opdusage/internal/tui/components"
	"github.com/theirongolddev/opdusage/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderSlabsTab(cw int) string {
	t := theme.Active
	slabs := a.result.Slabs

	innerW := components.CardInnerWidth(cw)
	const labelW, countW, shareW = 9, 8, 7
	barMax := max(1, innerW-labelW-countW-shareW-3)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	total, peak := 0, 0
	for _, sl := range slabs {
		total += sl.Count
		peak = max(peak, sl.Count)
	}

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %*s %*s", labelW, "Slab", countW, "Groups", shareW, "Share")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	for i, sl := range slabs {
		share := 0.0
		if total > 0 {
			share = float64(sl.Count) / float64(total)
		}
		barLen := 0
		if peak > 0 {
			barLen = sl.Count * barMax / peak
		}
		barStyle := lipgloss.NewStyle().Foreground(t.SlabColor(i, len(slabs))).Background(t.Surface)

		body.WriteString(rowStyle.Render(fmt.Sprintf("%-*s %*s %*s",
			labelW, sl.Label,
			countW, cli.FormatNumber(int64(sl.Count)),
			shareW, cli.FormatPercent(share))))
		body.WriteString(spaceStyle.Render(" "))
		body.WriteString(barStyle.Render(strings.Repeat("█", barLen)))
		body.WriteString("\n")
	}

	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %*s", labelW, "Total", countW, cli.FormatNumber(int64(total)))))

	return components.ContentCard("Usage slabs (used / limit per age group)", body.String(), cw)
}
