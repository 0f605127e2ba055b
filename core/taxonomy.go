package core

// Taxonomy names used throughout the retrieval layer.
const (
	TaxonomyJurisdiction = "jurisdiction"
	TaxonomyPracticeArea = "practice_area"
)

// Content-aspect space names. Aspects identify the embedding spaces the
// similarity backend scores against; level names identify taxonomy fields.
const (
	AspectSummary = "discovery_summary"
	AspectBody    = "deep_dive_content"
	AspectRecency = "recency"
)

// Taxonomy is a fixed-depth hierarchy of classification levels.
// Level names double as weight keys in a WeightVector, so they must be
// unique across all taxonomies used together in one request.
type Taxonomy struct {
	Name   string
	Levels []string
}

// MaxDepth returns the number of levels in the taxonomy.
func (t Taxonomy) MaxDepth() int {
	return len(t.Levels)
}

// LevelName returns the name of the given zero-based level, or "" when the
// index is out of range.
func (t Taxonomy) LevelName(level int) string {
	if level < 0 || level >= len(t.Levels) {
		return ""
	}
	return t.Levels[level]
}

// JurisdictionTaxonomy returns the standard three-level jurisdiction
// hierarchy: country, state, city.
func JurisdictionTaxonomy() Taxonomy {
	return Taxonomy{
		Name:   TaxonomyJurisdiction,
		Levels: []string{"country", "state", "city"},
	}
}

// PracticeAreaTaxonomy returns the standard three-level practice-area
// hierarchy: primary, secondary, specific.
func PracticeAreaTaxonomy() Taxonomy {
	return Taxonomy{
		Name:   TaxonomyPracticeArea,
		Levels: []string{"primary_area", "secondary_area", "specific_area"},
	}
}

// TaxonomyByName resolves one of the standard taxonomies by name.
func TaxonomyByName(name string) (Taxonomy, bool) {
	switch name {
	case TaxonomyJurisdiction:
		return JurisdictionTaxonomy(), true
	case TaxonomyPracticeArea:
		return PracticeAreaTaxonomy(), true
	default:
		return Taxonomy{}, false
	}
}

// DefaultJurisdictionAliases maps common abbreviations and variant spellings
// to canonical jurisdiction segments. The table is lookup data injected into
// parsing, not logic; deployments extend or replace it wholesale.
func DefaultJurisdictionAliases() map[string]string {
	return map[string]string{
		"us":  "united_states",
		"usa": "united_states",
		"al":  "alabama",
		"ak":  "alaska",
		"az":  "arizona",
		"ar":  "arkansas",
		"ca":  "california",
		"co":  "colorado",
		"ct":  "connecticut",
		"de":  "delaware",
		"fl":  "florida",
		"ga":  "georgia",
		"hi":  "hawaii",
		"id":  "idaho",
		"il":  "illinois",
		"in":  "indiana",
		"ia":  "iowa",
		"ks":  "kansas",
		"ky":  "kentucky",
		"la":  "louisiana",
		"me":  "maine",
		"md":  "maryland",
		"ma":  "massachusetts",
		"mi":  "michigan",
		"mn":  "minnesota",
		"ms":  "mississippi",
		"mo":  "missouri",
		"mt":  "montana",
		"ne":  "nebraska",
		"nv":  "nevada",
		"nh":  "new_hampshire",
		"nj":  "new_jersey",
		"nm":  "new_mexico",
		"ny":  "new_york",
		"nc":  "north_carolina",
		"nd":  "north_dakota",
		"oh":  "ohio",
		"ok":  "oklahoma",
		"or":  "oregon",
		"pa":  "pennsylvania",
		"ri":  "rhode_island",
		"sc":  "south_carolina",
		"sd":  "south_dakota",
		"tn":  "tennessee",
		"tx":  "texas",
		"ut":  "utah",
		"vt":  "vermont",
		"va":  "virginia",
		"wa":  "washington",
		"wv":  "west_virginia",
		"wi":  "wisconsin",
		"wy":  "wyoming",
		"dc":  "district_of_columbia",
	}
}

// DefaultPracticeAreaAliases maps common practice-area shorthands to
// canonical segments.
func DefaultPracticeAreaAliases() map[string]string {
	return map[string]string{
		"ip":         "intellectual_property",
		"pi":         "personal_injury",
		"med_mal":    "medical_malpractice",
		"crim":       "criminal",
		"fam":        "family",
		"employment": "labor_and_employment",
	}
}
