package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/theirongolddev/opdusage/internal/cli"
	"github.com/theirongolddev/opdusage/internal/pipeline"

	"github.com/spf13/cobra"
)

var dimsJSON bool

var dimsCmd = &cobra.Command{
	Use:   "dims",
	Short: "List the observed values of each filter dimension",
	RunE:  runDims,
}

func init() {
	dimsCmd.Flags().BoolVar(&dimsJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(dimsCmd)
}

func runDims(cmd *cobra.Command, _ []string) error {
	s, err := loadSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	d := s.Dimensions()
	if dimsJSON {
		return cli.WriteJSON(os.Stdout, d)
	}

	years := make([]string, len(d.PolicyStartYears))
	for i, y := range d.PolicyStartYears {
		years[i] = strconv.Itoa(y)
	}

	rows := [][]string{
		{pipeline.DimRenewalType, "--renewal", strconv.Itoa(len(d.RenewalTypes)), strings.Join(d.RenewalTypes, ", ")},
		{pipeline.DimPolicyStartYear, "--year", strconv.Itoa(len(years)), strings.Join(years, ", ")},
		{pipeline.DimPlanType, "--plan", strconv.Itoa(len(d.PlanTypes)), strings.Join(d.PlanTypes, ", ")},
		{pipeline.DimFamilyStructure, "--family", strconv.Itoa(len(d.FamilyStructures)), strings.Join(d.FamilyStructures, ", ")},
		{pipeline.DimAgeBand, "--age-band", strconv.Itoa(len(d.AgeBands)), strings.Join(d.AgeBands, ", ")},
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Filter Dimensions",
		Headers: []string{"Dimension", "Flag", "Count", "Values"},
		Rows:    rows,
	}))
	return nil
}
