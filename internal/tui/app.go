// Package tui provides the interactive Bubble Tea dashboard for opdusage.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/theirongolddev/opdusage/internal/cli"
	"github.com/theirongolddev/opdusage/internal/model"
	"github.com/theirongolddev/opdusage/internal/pipeline"
	"github.com/theirongolddev/opdusage/internal/source"
	"github.com/theirongolddev/opdusage/internal/tui/components"
	"github.com/theirongolddev/opdusage/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Options configures the dashboard.
type Options struct {
	Location  string
	Source    source.Options
	UseCache  bool
	Selection pipeline.Selection // initial filter; unset dimensions select all
	NeedSetup bool               // run the first-run form before loading

	// SkipFilterForm goes straight to the dashboard instead of opening
	// the filter form once the data is loaded.
	SkipFilterForm bool
}

// DataLoadedMsg is sent when the initial load finishes.
type DataLoadedMsg struct {
	Session  *pipeline.Session
	Err      error
	LoadTime time.Duration
}

// RefreshDataMsg is sent when a reload triggered by the user finishes.
type RefreshDataMsg struct {
	Session  *pipeline.Session
	Err      error
	LoadTime time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	session  *pipeline.Session
	loaded   bool
	loadErr  error
	loadTime time.Duration

	// Current analysis
	filter       model.Filter
	customFilter bool
	result       pipeline.Result
	notice       string

	// UI state
	width      int
	height     int
	activeTab  int
	showHelp   bool
	ageOffset  int
	refreshing bool

	// Filter form (huh), opened with f
	filterForm *huh.Form
	filterVals filterValues

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabSlabs
	tabAges
	tabData
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		opts:    opts,
		spinner: sp,
	}
	if opts.NeedSetup {
		a.setupVals = defaultSetupValues(opts.Location)
		a.setupForm = newSetupForm(&a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.setupForm != nil {
		return tea.Batch(tea.EnableMouseCellMotion, a.setupForm.Init())
	}
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts),
		a.spinner.Tick,
	)
}

func (a *App) recompute() {
	if a.session == nil {
		return
	}
	a.result = pipeline.Compute(a.session, a.filter)
	if a.ageOffset >= len(a.result.Groups) {
		a.ageOffset = max(0, len(a.result.Groups)-1)
	}
}

// applySession installs a freshly loaded session. A filter built in the form
// is kept across reloads; otherwise the initial selection is re-resolved.
func (a *App) applySession(s *pipeline.Session) {
	if a.session != nil && a.session != s {
		a.session.Close()
	}
	a.session = s

	if !a.customFilter {
		f, err := pipeline.ResolveFilter(s.Dimensions(), a.opts.Selection)
		if err != nil {
			a.notice = err.Error()
			f = s.SelectAll()
		}
		a.filter = f
	}
	a.recompute()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.filterForm != nil {
			a.filterForm = a.filterForm.WithWidth(a.contentWidth()).WithHeight(max(minContentHeight, msg.Height-4))
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil || a.filterForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabAges && a.ageOffset > 0 {
				a.ageOffset--
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabAges && a.ageOffset < len(a.result.Groups)-1 {
				a.ageOffset++
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.filterForm != nil {
			return a.updateFilterForm(msg)
		}
		if !a.loaded {
			return a, nil
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "f":
			return a.openFilterForm()
		case "F":
			if a.session != nil {
				a.filter = a.session.SelectAll()
				a.customFilter = false
				a.opts.Selection = pipeline.Selection{}
				a.notice = ""
				a.recompute()
			}
			return a, nil
		case "r":
			if !a.refreshing {
				a.refreshing = true
				return a, refreshDataCmd(a.opts)
			}
			return a, nil
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			return a, nil
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		}

		if a.activeTab == tabAges {
			switch key {
			case "j", "down":
				if a.ageOffset < len(a.result.Groups)-1 {
					a.ageOffset++
				}
				return a, nil
			case "k", "up":
				if a.ageOffset > 0 {
					a.ageOffset--
				}
				return a, nil
			case "g":
				a.ageOffset = 0
				return a, nil
			case "G":
				a.ageOffset = max(0, len(a.result.Groups)-1)
				return a, nil
			}
		}

		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.loadErr = msg.Err
		if msg.Session == nil {
			return a, nil
		}
		a.applySession(msg.Session)
		if a.opts.SkipFilterForm {
			return a, nil
		}
		return a.openFilterForm()

	case RefreshDataMsg:
		a.refreshing = false
		if msg.Err != nil {
			if a.session == nil {
				a.loadErr = msg.Err
			} else {
				a.notice = "reload failed: " + msg.Err.Error()
			}
			return a, nil
		}
		a.loadErr = nil
		a.loadTime = msg.LoadTime
		a.applySession(msg.Session)
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages (cursor blinks etc.) to an open form.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.filterForm != nil {
		return a.updateFilterForm(msg)
	}
	return a, nil
}

// openFilterForm shows the filter form preloaded with the active filter.
func (a App) openFilterForm() (tea.Model, tea.Cmd) {
	if a.session == nil {
		return a, nil
	}
	a.filterVals = valuesFromFilter(a.filter)
	a.filterForm = newFilterForm(a.session.Dimensions(), &a.filterVals).
		WithWidth(a.contentWidth()).
		WithHeight(max(minContentHeight, a.height-4))
	return a, a.filterForm.Init()
}

func (a App) updateFilterForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.filterForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.filterForm = f
	}

	switch a.filterForm.State {
	case huh.StateCompleted:
		a.filterForm = nil
		if !a.filterVals.Analyze {
			return a, nil
		}
		a.filter = a.filterVals.filter()
		a.customFilter = true
		a.notice = ""
		a.recompute()
		return a, nil
	case huh.StateAborted:
		a.filterForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.setupVals.save(); err != nil {
			a.notice = "could not save config: " + err.Error()
		}
		theme.SetActive(a.setupVals.Theme)
		a.opts.Location = a.setupVals.DataFile
		a.opts.UseCache = a.setupVals.UseCache
		if r, _ := utf8.DecodeRuneInString(a.setupVals.Delimiter); r != utf8.RuneError {
			a.opts.Source.Delimiter = r
		}
		a.setupForm = nil
		return a, tea.Batch(loadDataCmd(a.opts), a.spinner.Tick)
	case huh.StateAborted:
		a.setupForm = nil
		return a, tea.Batch(loadDataCmd(a.opts), a.spinner.Tick)
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.loadErr != nil {
		return a.viewLoadError()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  opdusage needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ opdusage"))
	b.WriteString(subtitleStyle.Render(" · OPD Benefit Usage"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Reading " + displayLocation(a.opts.Location) + "..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoadError() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Red).
		Background(t.Surface).
		Padding(1, 3).
		Width(min(a.width-4, 90))
	titleStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Could not load " + displayLocation(a.opts.Location)))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render(a.loadErr.Error()))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Fix the input and press r to retry, or q to quit."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	type binding struct{ key, desc string }
	sections := []struct {
		name     string
		bindings []binding
	}{
		{"Navigation", []binding{
			{"o s a d", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k g G", "Scroll age table"},
		}},
		{"Actions", []binding{
			{"f", "Edit filters"},
			{"F", "Reset filters"},
			{"r", "Reload data"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.name))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderFilterPill(w)
	statusBar := components.RenderStatusBar(w, a.statusInfo())

	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	var content string
	if a.filterForm != nil {
		content = components.ContentCard("Filters (enter to apply, esc to cancel)", a.filterForm.View(), cw)
	} else {
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabSlabs:
			content = a.renderSlabsTab(cw)
		case tabAges:
			content = a.renderAgesTab(cw, contentH)
		case tabData:
			content = a.renderDataTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderFilterPill summarises the active filter as selected/observed per dimension.
func (a App) renderFilterPill(w int) string {
	t := theme.Active
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	var b strings.Builder
	b.WriteString(dimStyle.Render(" "))
	if a.session != nil {
		for i, c := range filterCoverage(a.filter, a.session.Dimensions()) {
			if i > 0 {
				b.WriteString(dimStyle.Render(" │ "))
			}
			b.WriteString(dimStyle.Render(c.short + " "))
			b.WriteString(accentStyle.Render(c.String()))
		}
	}
	if a.notice != "" {
		b.WriteString(dimStyle.Render("  "))
		b.WriteString(warnStyle.Render(a.notice))
	}

	return lipgloss.NewStyle().Background(t.Surface).Width(w).MaxHeight(1).Render(b.String())
}

func (a App) statusInfo() string {
	if a.session == nil {
		return ""
	}
	parts := []string{
		displayLocation(a.session.Source),
		cli.FormatNumber(int64(a.session.Len())) + " records",
	}
	if a.session.Stats.FromCache {
		parts = append(parts, "cached")
	}
	if a.refreshing {
		parts = append(parts, "reloading")
	} else {
		parts = append(parts, fmt.Sprintf("%.1fs", a.loadTime.Seconds()))
	}
	return strings.Join(parts, " · ")
}

// ─── Commands ───────────────────────────────────────────────────

func openSession(opts Options) (*pipeline.Session, error) {
	return pipeline.OpenSession(context.Background(), opts.Location, opts.Source, opts.UseCache)
}

// loadDataCmd loads the session in the background and reports DataLoadedMsg.
func loadDataCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		s, err := openSession(opts)
		return DataLoadedMsg{Session: s, Err: err, LoadTime: time.Since(start)}
	}
}

// refreshDataCmd reloads the session without the loading screen.
func refreshDataCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		s, err := openSession(opts)
		return RefreshDataMsg{Session: s, Err: err, LoadTime: time.Since(start)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func displayLocation(loc string) string {
	if source.IsRemote(loc) {
		return loc
	}
	return filepath.Base(loc)
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the same width rules as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // one-column separator
	}
	return -1
}
