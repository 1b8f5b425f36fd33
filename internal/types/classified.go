package types

import "time"

// ProgramOrigin identifies the level of government (or private body) that
// issues a program.
type ProgramOrigin string

// Program origin constants.
const (
	OriginFederal   ProgramOrigin = "federal"
	OriginState     ProgramOrigin = "state"
	OriginMunicipal ProgramOrigin = "municipal"
	OriginPrivate   ProgramOrigin = "private"
)

// Relevance tier bounds. Tier 1 is the most relevant; tier 4 is excluded
// from ranking by the coarse filter.
const (
	TierHighest  = 1
	TierExcluded = 4
)

// ClassifiedProgram is a RawProgram annotated with derived classification
// fields. Classification is a pure function of the raw record and the
// rule version; only ClassifiedAt differs between runs.
type ClassifiedProgram struct {
	RawProgram

	// RelevanceTier is always in 1..4 (1 highest, 4 excluded).
	RelevanceTier int `json:"relevance_tier"`
	// IsRegionSpecific is true when the region set is non-empty and
	// excludes the wildcard.
	IsRegionSpecific bool `json:"is_region_specific"`
	// HasDomainFundingHistory is true when the program has previously
	// funded measures in its own category domain.
	HasDomainFundingHistory bool `json:"has_domain_funding_history"`
	// Origin is the issuing level derived from source and regions.
	Origin ProgramOrigin `json:"origin"`
	// ImplementationLevel mirrors Origin (programs are implemented at the
	// level that issues them).
	ImplementationLevel ProgramOrigin `json:"implementation_level"`
	// SuccessRate is the historical approval rate in percent, nil when unknown.
	SuccessRate *float64 `json:"success_rate,omitempty"`
	// ClassifiedAt records when the classification was computed.
	ClassifiedAt time.Time `json:"classified_at"`
}

// TierDistribution counts programs per relevance tier.
type TierDistribution map[int]int

// Total returns the sum of all tier counts.
func (d TierDistribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}
