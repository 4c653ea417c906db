package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/opdusage/internal/cli"

	"github.com/spf13/cobra"
)

var agesFormat string

var agesCmd = &cobra.Command{
	Use:   "ages",
	Short: "Per-age aggregates of OPD usage and limits",
	RunE:  runAges,
}

func init() {
	agesCmd.Flags().StringVarP(&agesFormat, "format", "f", "table", "Output format: table, csv or json")
	rootCmd.AddCommand(agesCmd)
}

func runAges(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(agesFormat, "table", "csv", "json"); err != nil {
		return err
	}

	s, res, err := analyze(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	switch agesFormat {
	case "csv":
		return cli.WriteAgesCSV(os.Stdout, res.Groups)
	case "json":
		return cli.WriteJSON(os.Stdout, res.Groups)
	}

	if len(res.Groups) == 0 {
		fmt.Println()
		fmt.Println(cli.RenderWarning("No age groups for the current filter."))
		return nil
	}

	fmt.Println()
	t := cli.AgeTable(res.Groups)
	t.Title = fmt.Sprintf("Age Groups (%d)", len(res.Groups))
	fmt.Print(cli.RenderTable(t))
	return nil
}
