package cmd

import (
	"fmt"

	"github.com/theirongolddev/opdusage/internal/config"
	"github.com/theirongolddev/opdusage/internal/tui"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:         "setup",
	Short:       "Interactive first-time setup wizard",
	Annotations: map[string]string{skipConfigCheck: "true"},
	RunE:        runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	saved, err := tui.RunSetup()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Printf("  Data file: %s\n", saved.General.DataFile)
	fmt.Printf("  Theme:     %s\n", saved.Appearance.Theme)
	fmt.Println()
	fmt.Println("  Run `opdusage` for a summary or `opdusage tui` for the dashboard.")
	return nil
}
