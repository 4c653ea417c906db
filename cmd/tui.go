package cmd

import (
	"fmt"
	"io"

	"github.com/theirongolddev/opdusage/internal/config"
	"github.com/theirongolddev/opdusage/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Log lines would tear the alt screen.
	log.SetOutput(io.Discard)

	sel := selection(cmd)
	app := tui.NewApp(tui.Options{
		Location:       cfg.General.DataFile,
		Source:         sourceOptions(),
		UseCache:       cfg.General.UseCache,
		Selection:      sel,
		NeedSetup:      flagConfig == "" && flagData == "" && !config.Exists(),
		SkipFilterForm: hasSelection(sel),
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
