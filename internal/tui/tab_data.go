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

func (a App) renderDataTab(cw int) string {
	t := theme.Active
	s := a.session
	if s == nil {
		return ""
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	row := func(b *strings.Builder, label, value string, style lipgloss.Style) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", label)))
		b.WriteString(style.Render(value))
		b.WriteString("\n")
	}

	var src strings.Builder
	row(&src, "Source", s.Source, valueStyle)
	row(&src, "Session", s.ID, valueStyle)
	row(&src, "Loaded", s.LoadedAt.Format("2006-01-02 15:04:05"), valueStyle)
	row(&src, "From cache", strconv.FormatBool(s.Stats.FromCache), valueStyle)
	row(&src, "Rows read", cli.FormatNumber(int64(s.Stats.TotalRows)), valueStyle)
	row(&src, "Records kept", cli.FormatNumber(int64(s.Stats.Records)), valueStyle)

	errStyle := valueStyle
	if s.Stats.ParseErrors > 0 {
		errStyle = warnStyle
	}
	row(&src, "Parse errors", cli.FormatNumber(int64(s.Stats.ParseErrors)), errStyle)
	row(&src, "Zero/null limit", cli.FormatNumber(int64(s.Stats.DroppedZeroLimit)), valueStyle)

	innerW := components.CardInnerWidth(cw)
	var dims strings.Builder
	d := s.Dimensions()
	years := make([]string, len(d.PolicyStartYears))
	for i, y := range d.PolicyStartYears {
		years[i] = strconv.Itoa(y)
	}
	observed := [][]string{d.RenewalTypes, years, d.PlanTypes, d.FamilyStructures, d.AgeBands}
	for i, c := range filterCoverage(a.filter, d) {
		row(&dims, c.name, c.String()+" selected", valueStyle)
		dims.WriteString(labelStyle.Render(strings.Repeat(" ", 18)))
		dims.WriteString(labelStyle.Render(truncStr(strings.Join(observed[i], ", "), max(10, innerW-18))))
		dims.WriteString("\n")
	}

	srcCard := components.ContentCard("Source", src.String(), cw)
	dimCard := components.ContentCard("Filter dimensions", dims.String(), cw)
	return srcCard + "\n" + dimCard
}
