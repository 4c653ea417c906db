package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/opdusage/internal/model"
)

// naTokens are the cell values treated as missing, same set pandas uses by default.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsNA reports whether s is a missing-value token.
func IsNA(s string) bool {
	if _, ok := naTokens[s]; ok {
		return true
	}
	_, ok := naTokens[strings.TrimSpace(s)]
	return ok
}

// ParseAmount parses a nullable numeric cell. A nil result means the cell was missing.
func ParseAmount(s string) (*float64, error) {
	if IsNA(s) {
		return nil, nil
	}
	v, err := parseNumber(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseWhole parses an integer cell. Integral floats such as "30.0" are accepted,
// which is how spreadsheet exports usually write them.
func ParseWhole(s string) (int, error) {
	if IsNA(s) {
		return 0, fmt.Errorf("missing value")
	}
	v, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, fmt.Errorf("%q out of range", s)
	}
	return int(v), nil
}

func parseNumber(s string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", s, err)
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}

// parseRow converts one data row into a RawRecord.
func parseRow(cols columnIndex, row []string) (model.RawRecord, error) {
	var rec model.RawRecord
	var err error

	rec.RenewalType = cols.cell(row, ColRenewalType)
	rec.PlanType = cols.cell(row, ColPlanType)
	rec.FamilyStructure = cols.cell(row, ColFamilyStructure)
	rec.AgeBand = cols.cell(row, ColAgeBand)

	if rec.PolicyStartYear, err = ParseWhole(cols.cell(row, ColPolicyStartYear)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColPolicyStartYear, err)
	}
	if rec.Age, err = ParseWhole(cols.cell(row, ColAge)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColAge, err)
	}
	if rec.OPDMRPAmount, err = ParseAmount(cols.cell(row, ColOPDMRPAmount)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColOPDMRPAmount, err)
	}
	if rec.RefundAmount, err = ParseAmount(cols.cell(row, ColRefundAmount)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColRefundAmount, err)
	}
	if rec.OPDLimit, err = ParseAmount(cols.cell(row, ColOPDLimit)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColOPDLimit, err)
	}
	return rec, nil
}

// decode turns a header plus data rows into a Table. Rows that fail to parse are
// skipped and counted; fully blank rows are ignored without counting.
func decode(header []string, rows [][]string) (*Table, error) {
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	t := &Table{Rows: make([]model.RawRecord, 0, len(rows))}
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		t.TotalRows++
		rec, err := parseRow(cols, row)
		if err != nil {
			t.ParseErrors++
			if len(t.Errors) < maxRowErrors {
				t.Errors = append(t.Errors, RowError{Line: i + 2, Err: err})
			}
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
