// Package source reads the raw OPD usage table from CSV, XLSX or S3.
package source

import (
	"fmt"
	"strings"
)

// Column headers, matched exactly.
const (
	ColRenewalType     = "ren_type"
	ColPolicyStartYear = "Sum of Policy start Year"
	ColPlanType        = "Plan Type"
	ColFamilyStructure = "Family Structure"
	ColAgeBand         = "Age Band"
	ColAge             = "Age"
	ColOPDMRPAmount    = "Sum of Total OPD MRP"
	ColRefundAmount    = "Sum of Refund_Amount"
	ColOPDLimit        = "Sum of OPD Limit"
)

// RequiredColumns lists every header the loader needs, in schema order.
var RequiredColumns = []string{
	ColRenewalType,
	ColPolicyStartYear,
	ColPlanType,
	ColFamilyStructure,
	ColAgeBand,
	ColAge,
	ColOPDMRPAmount,
	ColRefundAmount,
	ColOPDLimit,
}

// SchemaError reports required columns absent from the input header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("input is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// columnIndex maps each required header to its position.
type columnIndex map[string]int

// resolveColumns finds every required column in header. Extra columns are ignored;
// for duplicated names the first occurrence wins.
func resolveColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(RequiredColumns))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return idx, nil
}

// cell returns the value of col in row, or "" when the row is short.
func (c columnIndex) cell(row []string, col string) string {
	i := c[col]
	if i < len(row) {
		return row[i]
	}
	return ""
}
