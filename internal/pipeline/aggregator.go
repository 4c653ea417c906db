// Package pipeline cleans the loaded table and turns a filter selection into
// per-age aggregates, summary figures and usage slabs.
package pipeline

import (
	"sort"

	"github.com/theirongolddev/opdusage/internal/model"
)

// Aggregate groups records by age, ascending, and computes the summary.
func Aggregate(records []model.Record) ([]model.AgeGroup, model.Summary) {
	byAge := make(map[int]*model.AgeGroup)
	for _, r := range records {
		g, ok := byAge[r.Age]
		if !ok {
			g = &model.AgeGroup{Age: r.Age}
			byAge[r.Age] = g
		}
		g.Members++
		g.TotalOPDUsed += r.TotalOPDUsed
		g.OPDLimit += r.OPDLimit
		g.OPDMRPAmount += r.OPDMRPAmount
		g.RefundAmount += r.RefundAmount
	}

	groups := make([]model.AgeGroup, 0, len(byAge))
	for _, g := range byAge {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Age < groups[j].Age
	})

	return groups, Summarize(groups)
}

// Summarize sums the grouped rows. TotalCustomers is the number of groups,
// which is the number of distinct ages in the selection.
func Summarize(groups []model.AgeGroup) model.Summary {
	var s model.Summary
	for _, g := range groups {
		s.OPDAssigned += g.OPDLimit
		s.OPDExhausted += g.TotalOPDUsed
		s.InOPDUsed += g.OPDMRPAmount
		s.ReimbursementsUsed += g.RefundAmount
	}
	s.TotalCustomers = len(groups)
	return s
}
