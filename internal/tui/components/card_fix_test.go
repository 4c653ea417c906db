package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/opdusage/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	require.Less(t, shortLines, tallLines, "short card should be shorter than tall card")

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	require.Len(t, lines, tallLines)

	// Padding under the short card must still carry background styling.
	for i := shortLines; i < len(lines); i++ {
		assert.Contains(t, lines[i], "\x1b[", "line %d has no ANSI codes", i)
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "A", 30)
	tallCard := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20)

	joined := CardRow([]string{tallCard, shortCard})
	for i, line := range strings.Split(joined, "\n") {
		assert.Equal(t, 50, lipgloss.Width(line), "line %d", i)
	}
}

func TestMetricCardRowSumsToWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "OPD Assigned", Value: "120"},
		{Label: "OPD Exhausted", Value: "8", Note: "6.7%"},
		{Label: "Customers", Value: "40"},
	}, 91)

	for _, line := range strings.Split(row, "\n") {
		assert.Equal(t, 91, lipgloss.Width(line))
	}
	assert.Contains(t, row, "OPD Exhausted")
}

func TestLayoutRow(t *testing.T) {
	assert.Equal(t, []int{34, 33, 33}, LayoutRow(100, 3))
	assert.Nil(t, LayoutRow(100, 0))
}
