package components

import (
	"strings"

	"github.com/theirongolddev/opdusage/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left and
// info (source, record count, cache state) on the right.
func RenderStatusBar(width int, info string) string {
	t := theme.Active

	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	infoStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	padStyle := lipgloss.NewStyle().Background(t.Surface)

	var left strings.Builder
	left.WriteString(padStyle.Render(" "))
	for i, h := range []struct{ key, desc string }{
		{"f", "ilter"}, {"r", "eload"}, {"?", "help"}, {"q", "uit"},
	} {
		if i > 0 {
			left.WriteString(padStyle.Render("  "))
		}
		left.WriteString(keyStyle.Render("[" + h.key + "]"))
		left.WriteString(hintStyle.Render(h.desc))
	}

	right := ""
	if info != "" {
		right = infoStyle.Render(info + " ")
	}

	padding := width - lipgloss.Width(left.String()) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return left.String() + padStyle.Render(strings.Repeat(" ", padding)) + right
}
