package cli

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/theirongolddev/opdusage/internal/model"
)

// SlabTable builds the "OPD Slab / Count" table.
func SlabTable(slabs []model.SlabCount) Table {
	rows := make([][]string, 0, len(slabs))
	total := 0
	for _, s := range slabs {
		rows = append(rows, []string{s.Label, FormatNumber(int64(s.Count))})
		total += s.Count
	}
	return Table{
		Headers: []string{"OPD Slab", "Count"},
		Rows:    rows,
		Footer:  []string{"Total", FormatNumber(int64(total))},
	}
}

// AgeTable builds the per-age aggregate table.
func AgeTable(groups []model.AgeGroup) Table {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			strconv.Itoa(g.Age),
			FormatNumber(int64(g.Members)),
			FormatAmountGrouped(g.TotalOPDUsed),
			FormatAmountGrouped(g.OPDLimit),
			FormatAmountGrouped(g.OPDMRPAmount),
			FormatAmountGrouped(g.RefundAmount),
			FormatRatio(g.TotalOPDUsed, g.OPDLimit),
		})
	}
	return Table{
		Headers: []string{"Age", "Members", "Total OPD Used", "OPD Limit", "OPD @MRP", "Reimbursed", "Used"},
		Rows:    rows,
	}
}

// SummaryTable builds the five headline figures.
func SummaryTable(s model.Summary) Table {
	return Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"OPD Assigned", FormatAmount(s.OPDAssigned)},
			{"OPD Exhausted", FormatAmount(s.OPDExhausted)},
			{"OPD @MRP", FormatAmount(s.InOPDUsed)},
			{"Reimbursements", FormatAmount(s.ReimbursementsUsed)},
		},
		Footer: []string{"Total Customers", strconv.Itoa(s.TotalCustomers)},
	}
}

// WriteSlabsCSV writes slab counts with an "OPD Slab,Count" header.
func WriteSlabsCSV(w io.Writer, slabs []model.SlabCount) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"OPD Slab", "Count"}); err != nil {
		return err
	}
	for _, s := range slabs {
		if err := cw.Write([]string{s.Label, strconv.Itoa(s.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAgesCSV writes the per-age aggregates.
func WriteAgesCSV(w io.Writer, groups []model.AgeGroup) error {
	cw := csv.NewWriter(w)
	header := []string{"Age", "Members", "Total OPD Used", "Sum of OPD Limit", "Sum of Total OPD MRP", "Sum of Refund_Amount"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, g := range groups {
		rec := []string{
			strconv.Itoa(g.Age),
			strconv.Itoa(g.Members),
			FormatAmount(g.TotalOPDUsed),
			FormatAmount(g.OPDLimit),
			FormatAmount(g.OPDMRPAmount),
			FormatAmount(g.RefundAmount),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
