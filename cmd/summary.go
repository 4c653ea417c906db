package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/opdusage/internal/cli"
	"github.com/theirongolddev/opdusage/internal/model"
	"github.com/theirongolddev/opdusage/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryFormat string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Headline figures and the slab distribution",
}

func init() {
	// Assigned here rather than in the literal: runSummary refers to
	// summaryCmd, which would otherwise be an initialization cycle.
	summaryCmd.RunE = runSummary
	summaryCmd.Flags().StringVarP(&summaryFormat, "format", "f", "table", "Output format: table or json")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	format := summaryFormat
	if cmd != summaryCmd {
		format = "table"
	}
	if err := checkFormat(format, "table", "json"); err != nil {
		return err
	}

	s, res, err := analyze(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if format == "json" {
		return cli.WriteJSON(os.Stdout, res)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("OPD USAGE  " + s.Source))
	fmt.Println()
	if line := describeFilter(cmd); line != "" {
		fmt.Println(cli.RenderMetric("Filter", line))
		fmt.Println()
	}
	if errors.Is(res.Err(), pipeline.ErrEmptyResult) {
		fmt.Println(cli.RenderWarning(pipeline.ErrEmptyResult.Error()))
		fmt.Println()
	}

	fmt.Print(cli.RenderTable(cli.SummaryTable(res.Summary)))
	fmt.Println()
	fmt.Println(cli.RenderMetric("Records matched", cli.FormatNumber(int64(res.Matched))))
	fmt.Println(cli.RenderMetric("Age groups", cli.FormatNumber(int64(len(res.Groups)))))
	fmt.Println()

	printSlabBars(res.Slabs)
	return nil
}

// printSlabBars draws one horizontal bar per slab plus a sparkline of the
// whole distribution.
func printSlabBars(slabs []model.SlabCount) {
	labelW := 0
	maxCount := 0.0
	values := make([]float64, len(slabs))
	for i, sl := range slabs {
		labelW = max(labelW, len(sl.Label))
		values[i] = float64(sl.Count)
		maxCount = max(maxCount, values[i])
	}

	fmt.Println("  Age groups by usage slab  " + cli.RenderSparkline(values))
	fmt.Println()
	for i, sl := range slabs {
		fmt.Println(cli.RenderHorizontalBar(sl.Label, values[i], maxCount, labelW, 40))
	}
	fmt.Println()
}

// describeFilter renders the flag selection as "plan=Gold,Silver year=2024".
func describeFilter(cmd *cobra.Command) string {
	sel := selection(cmd)
	var parts []string
	add := func(name string, vals []string) {
		if vals == nil {
			return
		}
		if len(vals) == 0 {
			parts = append(parts, name+"=(none)")
			return
		}
		parts = append(parts, name+"="+strings.Join(vals, ","))
	}
	add("renewal", sel.RenewalTypes)
	add("year", sel.PolicyStartYears)
	add("plan", sel.PlanTypes)
	add("family", sel.FamilyStructures)
	add("age-band", sel.AgeBands)
	return strings.Join(parts, " ")
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want %s)", format, strings.Join(allowed, ", "))
}
