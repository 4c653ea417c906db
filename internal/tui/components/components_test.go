package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/opdusage/internal/tui/theme"
)

func TestTabBarLayoutMatchesTabVisualWidth(t *testing.T) {
	for active := range Tabs {
		var parts []string
		for i, tab := range Tabs {
			var part string
			if i == active {
				part = " " + tab.Name + " "
			} else {
				part = " [" + tab.Name[:1] + "]" + tab.Name[1:] + " "
			}
			assert.Equal(t, TabVisualWidth(tab, i == active), len(part))
			parts = append(parts, part)
		}

		bar := stripANSI(RenderTabBar(active, 200))
		assert.True(t, strings.HasPrefix(bar, strings.Join(parts, " ")), "active=%d: %q", active, bar)
		assert.Equal(t, 200, lipgloss.Width(bar))
	}
}

func TestTabIdxByKey(t *testing.T) {
	assert.Equal(t, 1, TabIdxByKey('s'))
	assert.Equal(t, -1, TabIdxByKey('z'))
}

func TestBarChartHeightAndLabels(t *testing.T) {
	theme.SetActive("flexoki-dark")
	out := BarChart([]float64{0, 3, 7, 1}, []string{"a", "b", "c", "d"}, nil, 40, 8)

	lines := strings.Split(out, "\n")
	// chart rows + x-axis + labels
	assert.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, stripANSI(lines[len(lines)-1]), "a")
	assert.Contains(t, stripANSI(lines[len(lines)-2]), "└")
}

func TestBarChartNarrowFallsBackToSparkline(t *testing.T) {
	out := BarChart([]float64{1, 2}, nil, nil, 10, 8)
	assert.NotContains(t, out, "\n")
}

func TestChartTickStep(t *testing.T) {
	assert.Equal(t, 1.0, chartTickStep(3))
	assert.Equal(t, 2.0, chartTickStep(12))
	assert.Equal(t, 10.0, chartTickStep(50))
}

func TestColorForRatio(t *testing.T) {
	th := theme.Active
	assert.Equal(t, th.Green, ColorForRatio(0.2))
	assert.Equal(t, th.Yellow, ColorForRatio(0.6))
	assert.Equal(t, th.Orange, ColorForRatio(0.95))
	assert.Equal(t, th.Red, ColorForRatio(1.4))
}

func TestRatioBarShowsUncappedPercent(t *testing.T) {
	out := stripANSI(RatioBar("30", 1.25, 4, 10))
	assert.Contains(t, out, "125.0%")
	assert.True(t, strings.HasPrefix(out, "30  "))
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
