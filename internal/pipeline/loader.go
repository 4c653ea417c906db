package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/opdusage/internal/model"
	"github.com/theirongolddev/opdusage/internal/source"
)

// LoadResult holds the cleaned table and the counters from loading it.
type LoadResult struct {
	Records          []model.Record
	TotalRows        int
	ParseErrors      int
	DroppedZeroLimit int
	RowErrors        []source.RowError
}

// Load reads location and cleans every row.
func Load(ctx context.Context, location string, opts source.Options) (*LoadResult, error) {
	tbl, err := source.Open(ctx, location, opts)
	if err != nil {
		return nil, err
	}
	return FromTable(tbl), nil
}

// FromTable cleans an already-read table.
func FromTable(tbl *source.Table) *LoadResult {
	records, dropped := Clean(tbl.Rows)
	return &LoadResult{
		Records:          records,
		TotalRows:        tbl.TotalRows,
		ParseErrors:      tbl.ParseErrors,
		DroppedZeroLimit: dropped,
		RowErrors:        tbl.Errors,
	}
}

// Clean coerces missing amounts to zero, derives the usage columns and drops
// rows whose limit is zero or missing. Row order is preserved.
func Clean(raw []model.RawRecord) (records []model.Record, dropped int) {
	records = make([]model.Record, 0, len(raw))
	for _, r := range raw {
		limit := valueOrZero(r.OPDLimit)
		if limit == 0 {
			dropped++
			continue
		}

		rec := model.Record{
			RenewalType:     r.RenewalType,
			PolicyStartYear: r.PolicyStartYear,
			PlanType:        r.PlanType,
			FamilyStructure: r.FamilyStructure,
			AgeBand:         r.AgeBand,
			Age:             r.Age,
			OPDMRPAmount:    valueOrZero(r.OPDMRPAmount),
			RefundAmount:    valueOrZero(r.RefundAmount),
			OPDLimit:        limit,
		}
		rec.TotalOPDUsed = rec.OPDMRPAmount + rec.RefundAmount
		rec.OPDUsagePercent = UsagePercent(rec.TotalOPDUsed, rec.OPDLimit)
		records = append(records, rec)
	}
	return records, dropped
}

// UsagePercent returns used/limit as a percentage rounded to one decimal,
// or 0 when nothing was used.
func UsagePercent(used, limit float64) float64 {
	if used <= 0 || limit == 0 {
		return 0
	}
	return Round1(used / limit * 100)
}

// Round1 rounds to one decimal place, halves to even.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).RoundBank(1).InexactFloat64()
}

func valueOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func (r *LoadResult) String() string {
	return fmt.Sprintf("%d rows, %d kept, %d parse errors, %d zero-limit",
		r.TotalRows, len(r.Records), r.ParseErrors, r.DroppedZeroLimit)
}
