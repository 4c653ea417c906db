package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/theirongolddev/opdusage/internal/model"
)

// Dimension names as shown to users.
const (
	DimRenewalType     = "renewal type"
	DimPolicyStartYear = "policy start year"
	DimPlanType        = "plan type"
	DimFamilyStructure = "family structure"
	DimAgeBand         = "age band"
)

// UnknownValueError reports a filter value that does not occur in the data.
type UnknownValueError struct {
	Dimension  string
	Value      string
	Suggestion string
}

func (e *UnknownValueError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown %s %q (did you mean %q?)", e.Dimension, e.Value, e.Suggestion)
	}
	return fmt.Sprintf("unknown %s %q", e.Dimension, e.Value)
}

// Selection is a filter as typed by a user. A nil slice means the dimension was
// not specified and selects every observed value; a non-nil empty slice selects none.
type Selection struct {
	RenewalTypes     []string `json:"renewal_types"`
	PolicyStartYears []string `json:"policy_start_years"`
	PlanTypes        []string `json:"plan_types"`
	FamilyStructures []string `json:"family_structures"`
	AgeBands         []string `json:"age_bands"`
}

// ResolveFilter checks a selection against the observed values.
func ResolveFilter(d model.Dimensions, sel Selection) (model.Filter, error) {
	var (
		f   model.Filter
		err error
	)
	if f.RenewalTypes, err = resolveStrings(DimRenewalType, d.RenewalTypes, sel.RenewalTypes); err != nil {
		return f, err
	}
	if f.PolicyStartYears, err = resolveYears(d.PolicyStartYears, sel.PolicyStartYears); err != nil {
		return f, err
	}
	if f.PlanTypes, err = resolveStrings(DimPlanType, d.PlanTypes, sel.PlanTypes); err != nil {
		return f, err
	}
	if f.FamilyStructures, err = resolveStrings(DimFamilyStructure, d.FamilyStructures, sel.FamilyStructures); err != nil {
		return f, err
	}
	if f.AgeBands, err = resolveStrings(DimAgeBand, d.AgeBands, sel.AgeBands); err != nil {
		return f, err
	}
	return f, nil
}

func resolveStrings(dim string, observed, wanted []string) ([]string, error) {
	if wanted == nil {
		return append([]string(nil), observed...), nil
	}
	out := make([]string, 0, len(wanted))
	for _, v := range wanted {
		if !contains(observed, v) {
			return nil, &UnknownValueError{Dimension: dim, Value: v, Suggestion: Suggest(v, observed)}
		}
		out = append(out, v)
	}
	return out, nil
}

func resolveYears(observed []int, wanted []string) ([]int, error) {
	if wanted == nil {
		return append([]int(nil), observed...), nil
	}
	names := make([]string, len(observed))
	for i, y := range observed {
		names[i] = strconv.Itoa(y)
	}

	out := make([]int, 0, len(wanted))
	for _, v := range wanted {
		y, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || !contains(names, strconv.Itoa(y)) {
			return nil, &UnknownValueError{Dimension: DimPolicyStartYear, Value: v, Suggestion: Suggest(v, names)}
		}
		out = append(out, y)
	}
	return out, nil
}

// Suggest returns the observed value that best matches v, or "" if none does.
func Suggest(v string, observed []string) string {
	if v == "" {
		return ""
	}
	for _, o := range observed {
		if strings.EqualFold(o, v) {
			return o
		}
	}
	matches := fuzzy.Find(v, observed)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
