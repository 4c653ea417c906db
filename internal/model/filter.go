package model

// Dimensions lists the distinct observed values of each filter dimension.
// Categorical values keep first-appearance order; years are ascending.
type Dimensions struct {
	RenewalTypes     []string `json:"renewal_types"`
	PolicyStartYears []int    `json:"policy_start_years"`
	PlanTypes        []string `json:"plan_types"`
	FamilyStructures []string `json:"family_structures"`
	AgeBands         []string `json:"age_bands"`
}

// Filter holds the allowed values for each dimension.
// A record passes only if every one of its five fields is allowed.
type Filter struct {
	RenewalTypes     []string `json:"renewal_types"`
	PolicyStartYears []int    `json:"policy_start_years"`
	PlanTypes        []string `json:"plan_types"`
	FamilyStructures []string `json:"family_structures"`
	AgeBands         []string `json:"age_bands"`
}

// AllOf returns a filter that selects every observed value.
func AllOf(d Dimensions) Filter {
	return Filter{
		RenewalTypes:     append([]string(nil), d.RenewalTypes...),
		PolicyStartYears: append([]int(nil), d.PolicyStartYears...),
		PlanTypes:        append([]string(nil), d.PlanTypes...),
		FamilyStructures: append([]string(nil), d.FamilyStructures...),
		AgeBands:         append([]string(nil), d.AgeBands...),
	}
}

// Allows reports whether r passes the filter.
func (f Filter) Allows(r Record) bool {
	return containsString(f.RenewalTypes, r.RenewalType) &&
		containsInt(f.PolicyStartYears, r.PolicyStartYear) &&
		containsString(f.PlanTypes, r.PlanType) &&
		containsString(f.FamilyStructures, r.FamilyStructure) &&
		containsString(f.AgeBands, r.AgeBand)
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
