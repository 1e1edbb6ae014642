package model

// FilterKind selects one of the five candidate-selection policies.
type FilterKind int

const (
	// FilterAll returns every institution in a stable order.
	FilterAll FilterKind = iota + 1
	// FilterByRegion matches institutions in one state, ordered by admission
	// rate ascending.
	FilterByRegion
	// FilterByField matches institutions offering a named program, ordered by
	// admission rate ascending.
	FilterByField
	// FilterCombined intersects every preference constraint that is set.
	FilterCombined
	// FilterHighAdmission matches institutions with admission rate above 0.5,
	// ordered by admission rate descending.
	FilterHighAdmission
)

// FilterSpec is a tagged selection predicate over institutions. It is built
// by the recommendation engine and compiled into a parameterized query by the
// repository layer, so no ad-hoc SQL is assembled outside it.
type FilterSpec struct {
	Kind       FilterKind
	Region     *string
	Field      *string
	DegreeType *string
	MinROI     *float64
}

// AllInstitutions selects every institution.
func AllInstitutions() FilterSpec {
	return FilterSpec{Kind: FilterAll}
}

// ByRegion selects institutions whose state equals region.
func ByRegion(region string) FilterSpec {
	return FilterSpec{Kind: FilterByRegion, Region: &region}
}

// ByField selects institutions offering a program with the given name.
func ByField(field string) FilterSpec {
	return FilterSpec{Kind: FilterByField, Field: &field}
}

// CombinedPreferences intersects whichever preference constraints are set.
// A preference with no constraints set selects every institution.
func CombinedPreferences(pref *UserPreference) FilterSpec {
	spec := FilterSpec{Kind: FilterCombined}
	if pref == nil {
		return spec
	}
	spec.Region = pref.PreferredRegion
	spec.Field = pref.PreferredField
	spec.DegreeType = pref.PreferredDegreeType
	spec.MinROI = pref.MinROI
	return spec
}

// HighAdmission selects institutions with admission rate above 0.5.
func HighAdmission() FilterSpec {
	return FilterSpec{Kind: FilterHighAdmission}
}
