package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/opdusage/internal/cli"
	"github.com/theirongolddev/opdusage/internal/pipeline"

	"github.com/spf13/cobra"
)

var slabsFormat string

var slabsCmd = &cobra.Command{
	Use:   "slabs",
	Short: "Count of age groups per OPD usage slab",
	RunE:  runSlabs,
}

func init() {
	slabsCmd.Flags().StringVarP(&slabsFormat, "format", "f", "table", "Output format: table, csv or json")
	rootCmd.AddCommand(slabsCmd)
}

func runSlabs(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(slabsFormat, "table", "csv", "json"); err != nil {
		return err
	}

	s, res, err := analyze(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	switch slabsFormat {
	case "csv":
		return cli.WriteSlabsCSV(os.Stdout, res.Slabs)
	case "json":
		return cli.WriteJSON(os.Stdout, res.Slabs)
	}

	fmt.Println()
	if errors.Is(res.Err(), pipeline.ErrEmptyResult) {
		fmt.Println(cli.RenderWarning(pipeline.ErrEmptyResult.Error()))
		fmt.Println()
	}
	t := cli.SlabTable(res.Slabs)
	t.Title = "Usage Slabs"
	fmt.Print(cli.RenderTable(t))
	return nil
}
