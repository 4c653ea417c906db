package components

import (
	"fmt"

	"github.com/theirongolddev/opdusage/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForRatio returns green/yellow/orange/red for a used/limit ratio.
func ColorForRatio(ratio float64) lipgloss.Color {
	t := theme.Active
	switch {
	case ratio > 1:
		return t.Red
	case ratio > 0.8:
		return t.Orange
	case ratio > 0.5:
		return t.Yellow
	default:
		return t.Green
	}
}

// RatioBar renders a labelled bar for a used/limit ratio. The bar is capped
// at full width but the printed percentage is not, so overuse stays visible.
func RatioBar(label string, ratio float64, labelW, barWidth int) string {
	t := theme.Active

	filled := max(0, min(ratio, 1))
	color := ColorForRatio(ratio)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(filled) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%5.1f%%", ratio*100))
}
