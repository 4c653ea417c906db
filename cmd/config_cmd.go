package cmd

import (
	"fmt"

	"github.com/theirongolddev/opdusage/internal/config"
	"github.com/theirongolddev/opdusage/internal/pipeline"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	path := flagConfig
	if path == "" {
		path = config.Path()
	}

	fmt.Printf("  Config file: %s\n", path)
	if config.Exists() || flagConfig != "" {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Env prefix:  %s_\n", config.EnvPrefix)
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data file: %s\n", cfg.General.DataFile)
	fmt.Printf("    Delimiter: %q\n", cfg.General.Delimiter)
	if cfg.General.Sheet != "" {
		fmt.Printf("    Sheet:     %s\n", cfg.General.Sheet)
	}
	fmt.Printf("    Use cache: %v\n", cfg.General.UseCache)
	if cfg.General.UseCache {
		fmt.Printf("    Cache:     %s\n", pipeline.CachePath())
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Addr: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  Run `opdusage setup` to reconfigure.")
	return nil
}
