package pipeline

import (
	"errors"

	"github.com/theirongolddev/opdusage/internal/model"
)

// ErrEmptyResult is returned by Result.Err when the filter matched no records.
// The result is still valid and carries all-zero slabs.
var ErrEmptyResult = errors.New("no records match the current filter")

// Result is the full output of one analysis request.
type Result struct {
	Filter  model.Filter      `json:"filter"`
	Matched int               `json:"matched"`
	Groups  []model.AgeGroup  `json:"groups"`
	Summary model.Summary     `json:"summary"`
	Slabs   []model.SlabCount `json:"slabs"`
}

// Compute runs filter, aggregate and bin over the session's table.
// It has no side effects and may be called concurrently.
func Compute(s *Session, f model.Filter) Result {
	filtered := ApplyFilter(s.records, f)
	groups, summary := Aggregate(filtered)
	if groups == nil {
		groups = []model.AgeGroup{}
	}
	return Result{
		Filter:  f,
		Matched: len(filtered),
		Groups:  groups,
		Summary: summary,
		Slabs:   Bin(groups),
	}
}

// Err returns ErrEmptyResult when nothing matched.
func (r Result) Err() error {
	if r.Matched == 0 {
		return ErrEmptyResult
	}
	return nil
}

// Empty reports whether nothing matched.
func (r Result) Empty() bool {
	return r.Matched == 0
}
