package tui

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/opdusage/internal/model"
	"github.com/theirongolddev/opdusage/internal/pipeline"

	"github.com/charmbracelet/huh"
)

// filterValues backs the filter form. Years are kept as strings because
// huh options are string-valued here.
type filterValues struct {
	RenewalTypes     []string
	PolicyStartYears []string
	PlanTypes        []string
	FamilyStructures []string
	AgeBands         []string
	Analyze          bool
}

func valuesFromFilter(f model.Filter) filterValues {
	years := make([]string, len(f.PolicyStartYears))
	for i, y := range f.PolicyStartYears {
		years[i] = strconv.Itoa(y)
	}
	return filterValues{
		RenewalTypes:     append([]string{}, f.RenewalTypes...),
		PolicyStartYears: years,
		PlanTypes:        append([]string{}, f.PlanTypes...),
		FamilyStructures: append([]string{}, f.FamilyStructures...),
		AgeBands:         append([]string{}, f.AgeBands...),
		Analyze:          true,
	}
}

// filter converts the form state back. An unticked dimension is an empty
// set, which matches nothing.
func (v filterValues) filter() model.Filter {
	years := make([]int, 0, len(v.PolicyStartYears))
	for _, s := range v.PolicyStartYears {
		if y, err := strconv.Atoi(s); err == nil {
			years = append(years, y)
		}
	}
	return model.Filter{
		RenewalTypes:     append([]string{}, v.RenewalTypes...),
		PolicyStartYears: years,
		PlanTypes:        append([]string{}, v.PlanTypes...),
		FamilyStructures: append([]string{}, v.FamilyStructures...),
		AgeBands:         append([]string{}, v.AgeBands...),
	}
}

func newFilterForm(d model.Dimensions, vals *filterValues) *huh.Form {
	years := make([]string, len(d.PolicyStartYears))
	for i, y := range d.PolicyStartYears {
		years[i] = strconv.Itoa(y)
	}

	field := func(title string, options []string, value *[]string) huh.Field {
		return huh.NewMultiSelect[string]().
			Title(title).
			Description(fmt.Sprintf("%d values · x toggles, ctrl+a all", len(options))).
			Options(huh.NewOptions(options...)...).
			Filterable(true).
			Value(value)
	}

	return huh.NewForm(
		huh.NewGroup(
			field("Renewal type", d.RenewalTypes, &vals.RenewalTypes),
			field("Policy start year", years, &vals.PolicyStartYears),
			field("Plan type", d.PlanTypes, &vals.PlanTypes),
		),
		huh.NewGroup(
			field("Family structure", d.FamilyStructures, &vals.FamilyStructures),
			field("Age band", d.AgeBands, &vals.AgeBands),
			huh.NewConfirm().
				Title("Run the analysis with this selection?").
				Affirmative("Analyze").
				Negative("Cancel").
				Value(&vals.Analyze),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(true)
}

// coverage is how much of one dimension the filter selects.
type coverage struct {
	name     string
	short    string
	selected int
	total    int
}

func (c coverage) String() string {
	switch {
	case c.selected == 0:
		return "none"
	case c.selected >= c.total:
		return "all"
	default:
		return fmt.Sprintf("%d/%d", c.selected, c.total)
	}
}

func filterCoverage(f model.Filter, d model.Dimensions) []coverage {
	return []coverage{
		{pipeline.DimRenewalType, "renewal", countIn(f.RenewalTypes, d.RenewalTypes), len(d.RenewalTypes)},
		{pipeline.DimPolicyStartYear, "year", countYearsIn(f.PolicyStartYears, d.PolicyStartYears), len(d.PolicyStartYears)},
		{pipeline.DimPlanType, "plan", countIn(f.PlanTypes, d.PlanTypes), len(d.PlanTypes)},
		{pipeline.DimFamilyStructure, "family", countIn(f.FamilyStructures, d.FamilyStructures), len(d.FamilyStructures)},
		{pipeline.DimAgeBand, "band", countIn(f.AgeBands, d.AgeBands), len(d.AgeBands)},
	}
}

func countIn(selected, observed []string) int {
	seen := make(map[string]struct{}, len(observed))
	for _, v := range observed {
		seen[v] = struct{}{}
	}
	n := 0
	for _, v := range selected {
		if _, ok := seen[v]; ok {
			n++
			delete(seen, v)
		}
	}
	return n
}

func countYearsIn(selected, observed []int) int {
	seen := make(map[int]struct{}, len(observed))
	for _, v := range observed {
		seen[v] = struct{}{}
	}
	n := 0
	for _, v := range selected {
		if _, ok := seen[v]; ok {
			n++
			delete(seen, v)
		}
	}
	return n
}
