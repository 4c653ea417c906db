package pipeline

import "github.com/theirongolddev/opdusage/internal/model"

// ApplyFilter returns the records allowed by f, in input order.
// An empty set on any dimension yields no records.
func ApplyFilter(records []model.Record, f model.Filter) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if f.Allows(r) {
			out = append(out, r)
		}
	}
	return out
}
