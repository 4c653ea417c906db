package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/opdusage/internal/chart"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	chartOutput string
	chartWidth  int
	chartHeight int
	chartTitle  string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the slab distribution as a PNG bar chart",
	RunE:  runChart,
}

func init() {
	def := chart.DefaultOptions()
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "slabs.png", "Output file (- for stdout)")
	chartCmd.Flags().IntVar(&chartWidth, "width", def.Width, "Image width in pixels")
	chartCmd.Flags().IntVar(&chartHeight, "height", def.Height, "Image height in pixels")
	chartCmd.Flags().StringVar(&chartTitle, "title", def.Title, "Chart title")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, _ []string) error {
	if chartWidth < 100 || chartHeight < 100 {
		return fmt.Errorf("chart must be at least 100x100 pixels, got %dx%d", chartWidth, chartHeight)
	}

	s, res, err := analyze(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := chart.DefaultOptions()
	opts.Width = chartWidth
	opts.Height = chartHeight
	opts.Title = chartTitle

	if chartOutput == "-" {
		return chart.RenderSlabs(os.Stdout, res.Slabs, opts)
	}

	f, err := os.Create(chartOutput)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	if err := chart.RenderSlabs(f, res.Slabs, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing chart file: %w", err)
	}

	log.WithFields(log.Fields{
		"file":    chartOutput,
		"matched": res.Matched,
	}).Info("chart written")
	return nil
}
