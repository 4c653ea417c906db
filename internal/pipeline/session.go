package pipeline

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/opdusage/internal/model"
)

// Session is the loaded table for one run of the tool. It is built once and
// never mutated, so concurrent Compute calls are safe.
type Session struct {
	ID         string
	Source     string
	LoadedAt   time.Time
	Stats      LoadStats
	records    []model.Record
	dimensions model.Dimensions
}

// LoadStats are the counters reported when the session was loaded.
type LoadStats struct {
	TotalRows        int  `json:"total_rows"`
	Records          int  `json:"records"`
	ParseErrors      int  `json:"parse_errors"`
	DroppedZeroLimit int  `json:"dropped_zero_limit"`
	FromCache        bool `json:"from_cache"`
}

// NewSession wraps a load result. The records are copied.
func NewSession(location string, lr *LoadResult) *Session {
	records := append([]model.Record(nil), lr.Records...)
	return &Session{
		ID:       uuid.NewString(),
		Source:   location,
		LoadedAt: time.Now(),
		Stats: LoadStats{
			TotalRows:        lr.TotalRows,
			Records:          len(records),
			ParseErrors:      lr.ParseErrors,
			DroppedZeroLimit: lr.DroppedZeroLimit,
		},
		records:    records,
		dimensions: DistinctDimensions(records),
	}
}

// Records returns a copy of the cleaned table.
func (s *Session) Records() []model.Record {
	return append([]model.Record(nil), s.records...)
}

// Len returns the number of cleaned records.
func (s *Session) Len() int {
	return len(s.records)
}

// Dimensions returns the distinct values available for filtering.
func (s *Session) Dimensions() model.Dimensions {
	d := s.dimensions
	return model.Dimensions{
		RenewalTypes:     append([]string(nil), d.RenewalTypes...),
		PolicyStartYears: append([]int(nil), d.PolicyStartYears...),
		PlanTypes:        append([]string(nil), d.PlanTypes...),
		FamilyStructures: append([]string(nil), d.FamilyStructures...),
		AgeBands:         append([]string(nil), d.AgeBands...),
	}
}

// SelectAll returns a filter with every observed value selected.
func (s *Session) SelectAll() model.Filter {
	return model.AllOf(s.dimensions)
}

// Close drops the table. The session must not be used afterwards.
func (s *Session) Close() {
	s.records = nil
	s.dimensions = model.Dimensions{}
}

// DistinctDimensions collects observed values per dimension. Categorical values
// keep first-appearance order and years are sorted ascending.
func DistinctDimensions(records []model.Record) model.Dimensions {
	var d model.Dimensions
	seenRenewal := make(map[string]struct{})
	seenYear := make(map[int]struct{})
	seenPlan := make(map[string]struct{})
	seenFamily := make(map[string]struct{})
	seenBand := make(map[string]struct{})

	for _, r := range records {
		d.RenewalTypes = appendUnique(d.RenewalTypes, seenRenewal, r.RenewalType)
		d.PlanTypes = appendUnique(d.PlanTypes, seenPlan, r.PlanType)
		d.FamilyStructures = appendUnique(d.FamilyStructures, seenFamily, r.FamilyStructure)
		d.AgeBands = appendUnique(d.AgeBands, seenBand, r.AgeBand)
		if _, ok := seenYear[r.PolicyStartYear]; !ok {
			seenYear[r.PolicyStartYear] = struct{}{}
			d.PolicyStartYears = append(d.PolicyStartYears, r.PolicyStartYear)
		}
	}
	sort.Ints(d.PolicyStartYears)
	return d
}

func appendUnique(list []string, seen map[string]struct{}, v string) []string {
	if _, ok := seen[v]; ok {
		return list
	}
	seen[v] = struct{}{}
	return append(list, v)
}
