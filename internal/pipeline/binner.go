package pipeline

import (
	"math"

	"github.com/theirongolddev/opdusage/internal/model"
)

// SlabBounds are the right-closed bin edges over the usage ratio.
var SlabBounds = []float64{math.Inf(-1), 0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1, math.Inf(1)}

// SlabLabels name each interval (SlabBounds[i], SlabBounds[i+1]].
var SlabLabels = []string{
	"<0%", "1-10%", "11-20%", "21-30%", "31-40%", "41-50%",
	"51-60%", "61-70%", "71-80%", "81-90%", "91-100%", ">100%",
}

// SlabIndex returns the slab for ratio, or -1 for NaN.
// A ratio of exactly 0 lands in the first slab.
func SlabIndex(ratio float64) int {
	if math.IsNaN(ratio) {
		return -1
	}
	for i := 0; i < len(SlabLabels); i++ {
		if ratio <= SlabBounds[i+1] {
			return i
		}
	}
	return len(SlabLabels) - 1
}

// Bin counts age groups per usage slab. The result always has one entry per
// slab in declared order, including empty slabs.
func Bin(groups []model.AgeGroup) []model.SlabCount {
	slabs := EmptySlabs()
	for _, g := range groups {
		if i := SlabIndex(g.UsageRatio()); i >= 0 {
			slabs[i].Count++
		}
	}
	return slabs
}

// EmptySlabs returns every slab with a zero count.
func EmptySlabs() []model.SlabCount {
	slabs := make([]model.SlabCount, len(SlabLabels))
	for i, label := range SlabLabels {
		slabs[i] = model.SlabCount{
			Label: label,
			Lower: SlabBounds[i],
			Upper: SlabBounds[i+1],
		}
	}
	return slabs
}
