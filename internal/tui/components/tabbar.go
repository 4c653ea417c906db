package components

import (
	"strings"
	"unicode/utf8"

	"github.com/theirongolddev/opdusage/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs. Each shortcut is the first letter of
// the tab name, lower-cased.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o'},
	{Name: "Slabs", Key: 's'},
	{Name: "Ages", Key: 'a'},
	{Name: "Data", Key: 'd'},
}

// TabVisualWidth returns the rendered width of tab. Inactive tabs carry
// brackets around their shortcut letter.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active {
		w += 2
	}
	return w
}

// RenderTabBar renders a single-row tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	padStyle := lipgloss.NewStyle().Background(t.Surface)

	var parts []string
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tab.Name))
			continue
		}
		_, size := utf8.DecodeRuneInString(tab.Name)
		parts = append(parts, padStyle.Render(" ")+
			dimStyle.Render("[")+keyStyle.Render(tab.Name[:size])+dimStyle.Render("]")+
			inactiveStyle.Render(tab.Name[size:])+
			padStyle.Render(" "))
	}

	row := strings.Join(parts, padStyle.Render(" "))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
