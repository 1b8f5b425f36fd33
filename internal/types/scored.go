package types

// ScoredProgram is a ClassifiedProgram with a per-request fit score.
// Scored programs are transient: produced for one ranking request and
// never cached.
type ScoredProgram struct {
	ClassifiedProgram

	// FitScore is the numeric fit against the request criteria. Always
	// positive; programs failing every soft criterion keep a baseline
	// score (hard exclusion happens in the coarse filter).
	FitScore float64 `json:"fit_score"`
	// RegionMatch is true when the program is region-specific and covers
	// the caller's region exactly.
	RegionMatch bool `json:"region_match"`
	// MatchedMeasures lists the criteria measures the program also funds.
	MatchedMeasures []string `json:"matched_measures,omitempty"`
	// ParsedFundingRate is the funding rate normalized to a 0-100 scale.
	ParsedFundingRate float64 `json:"parsed_funding_rate"`
	// Notes is a brief human-readable explanation of the score.
	Notes string `json:"notes,omitempty"`
}
