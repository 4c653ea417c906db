// Package chart renders the usage slab distribution as a PNG bar chart.
package chart

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/theirongolddev/opdusage/internal/model"
)

// Options controls the rendered image.
type Options struct {
	Width  int
	Height int
	Title  string
	Color  string // bar fill as hex, without '#'
}

// DefaultOptions matches the dashboard accent color.
func DefaultOptions() Options {
	return Options{
		Width:  1024,
		Height: 512,
		Title:  "OPD usage by slab",
		Color:  "3AA99F",
	}
}

// RenderSlabs draws one bar per slab, labelled by slab name, as PNG.
func RenderSlabs(w io.Writer, slabs []model.SlabCount, opts Options) error {
	if len(slabs) == 0 {
		return fmt.Errorf("no slabs to render")
	}
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Color == "" {
		opts.Color = def.Color
	}

	fill := drawing.ColorFromHex(opts.Color)
	maxCount := 0
	bars := make([]chart.Value, len(slabs))
	for i, s := range slabs {
		bars[i] = chart.Value{
			Label: s.Label,
			Value: float64(s.Count),
			Style: chart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 1},
		}
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}

	// Zero-height ranges are rejected by the renderer, so keep at least 1.
	top := maxCount
	if top < 1 {
		top = 1
	}

	bw := barWidth(opts.Width, len(bars))
	graph := chart.BarChart{
		Title:      opts.Title,
		TitleStyle: chart.Style{FontSize: 14},
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   bw,
		BarSpacing: bw / 2,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(top)},
			Ticks: countTicks(top),
		},
		Bars: bars,
	}
	if opts.Title == "" {
		graph.TitleStyle = chart.Hidden()
	}

	return graph.Render(chart.PNG, w)
}

func barWidth(width, n int) int {
	w := (width - 120) / (n + n/2 + 1)
	if w < 8 {
		return 8
	}
	return w
}

// countTicks returns whole-number ticks from 0 to top, at most ~10 of them.
func countTicks(top int) []chart.Tick {
	step := 1
	for top/step > 10 {
		step *= 2
	}
	var ticks []chart.Tick
	for v := 0; v <= top; v += step {
		ticks = append(ticks, chart.Tick{Value: float64(v), Label: fmt.Sprintf("%d", v)})
	}
	if last := ticks[len(ticks)-1].Value; int(last) != top {
		ticks = append(ticks, chart.Tick{Value: float64(top), Label: fmt.Sprintf("%d", top)})
	}
	return ticks
}
