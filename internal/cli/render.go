package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/opdusage/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const titleWidth = 55

// Table is a titled grid for terminal output. The first column is left-aligned,
// the rest hold figures and are right-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string // optional totals row, drawn bold
}

type palette struct {
	title  lipgloss.Style
	header lipgloss.Style
	value  lipgloss.Style
	total  lipgloss.Style
	muted  lipgloss.Style
	amount lipgloss.Style
	bar    lipgloss.Style
	warn   lipgloss.Style
	border lipgloss.Style
}

// styles follows the active theme so CLI output matches the dashboard.
func styles() palette {
	t := theme.Active
	return palette{
		title:  lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary),
		header: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		value:  lipgloss.NewStyle().Foreground(t.TextPrimary),
		total:  lipgloss.NewStyle().Bold(true).Foreground(t.AccentBright),
		muted:  lipgloss.NewStyle().Foreground(t.TextMuted),
		amount: lipgloss.NewStyle().Foreground(t.Green),
		bar:    lipgloss.NewStyle().Foreground(t.Accent),
		warn:   lipgloss.NewStyle().Foreground(t.Orange),
		border: lipgloss.NewStyle().Foreground(t.TextDim),
	}
}

// RenderTitle renders a centered title in a rounded box.
func RenderTitle(title string) string {
	p := styles()
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Active.Border).
		Width(titleWidth).
		Align(lipgloss.Center).
		Padding(0, 1)
	return box.Render(p.title.Render(title))
}

// RenderTable renders t with a rounded border and a header rule.
func RenderTable(t Table) string {
	if len(t.Headers) == 0 && len(t.Rows) == 0 {
		return ""
	}
	p := styles()

	rows := make([][]string, 0, len(t.Rows)+1)
	rows = append(rows, t.Rows...)
	if len(t.Footer) > 0 {
		footer := make([]string, len(t.Footer))
		for i, c := range t.Footer {
			footer[i] = p.total.Render(c)
		}
		rows = append(rows, footer)
	}

	grid := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.border).
		Headers(t.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := p.value
			if row == table.HeaderRow {
				s = p.header
			}
			s = s.Padding(0, 1)
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(p.header.Render(t.Title))
		b.WriteString("\n")
	}
	b.WriteString(grid.Render())
	b.WriteString("\n")
	return b.String()
}

// RenderSparkline maps values onto eighth-block glyphs, scaled to the largest value.
func RenderSparkline(values []float64) string {
	const glyphs = "▁▂▃▄▅▆▇█"
	levels := []rune(glyphs)

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		return strings.Repeat(string(levels[0]), len(values))
	}

	var b strings.Builder
	for _, v := range values {
		i := int(v / peak * float64(len(levels)-1))
		b.WriteRune(levels[min(max(i, 0), len(levels)-1)])
	}
	return b.String()
}

// RenderHorizontalBar renders one labelled bar scaled against maxValue.
// The label column is padded to labelWidth.
func RenderHorizontalBar(label string, value, maxValue float64, labelWidth, maxWidth int) string {
	p := styles()
	barLen := 0
	if maxValue > 0 {
		barLen = int(value / maxValue * float64(maxWidth))
	}
	if barLen < 0 {
		barLen = 0
	}
	if value > 0 && barLen == 0 {
		barLen = 1
	}
	return fmt.Sprintf("  %-*s %s %s",
		labelWidth, label,
		p.bar.Render(strings.Repeat("█", barLen)),
		p.muted.Render(strconv.FormatFloat(value, 'f', -1, 64)),
	)
}

// RenderMetric renders a "label  value" line for summary output.
func RenderMetric(label, value string) string {
	p := styles()
	return fmt.Sprintf("  %s %s", p.muted.Render(fmt.Sprintf("%-16s", label)), p.amount.Render(value))
}

// RenderWarning renders a highlighted notice line.
func RenderWarning(msg string) string {
	return "  " + styles().warn.Render(msg)
}
