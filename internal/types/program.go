// Package types provides type definitions for structured data used throughout the foerder-scout system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// RegionWildcard marks a program as applicable in every region.
const RegionWildcard = "all"

// RawProgram is a funding program record as delivered by the catalog source.
// Records are immutable once loaded; catalog updates replace them wholesale.
type RawProgram struct {
	// Name is the unique key of the program within the catalog.
	Name string `json:"name" validate:"required"`
	// Regions holds region codes (German state codes such as "BY" or "NW"),
	// or the wildcard "all" for nationwide programs.
	Regions []string `json:"regions" validate:"required,min=1"`
	// Category is the program category, e.g. "energieeffizienz".
	Category string `json:"category" validate:"required"`
	// FundingRate is the raw funding rate string, one of: a percentage
	// ("75%"), a range ("60-90%"), an upper bound ("bis 80%"), an absolute
	// amount ("10.000 EUR") or the marker "variabel".
	FundingRate string `json:"funding_rate" validate:"required"`
	// Measures lists the measure tags the program funds.
	Measures []string `json:"measures,omitempty"`
	// Description is free text from the source.
	Description string `json:"description,omitempty"`
	// Source names the issuing body (e.g. "KfW", "BAFA", "L-Bank").
	Source string `json:"source,omitempty"`
}

// IsNationwide reports whether the region set contains the wildcard.
func (p *RawProgram) IsNationwide() bool {
	for _, r := range p.Regions {
		if r == RegionWildcard {
			return true
		}
	}
	return false
}

// CoversRegion reports whether the program applies in the given region,
// either through the wildcard or an exact region code match.
func (p *RawProgram) CoversRegion(region string) bool {
	for _, r := range p.Regions {
		if r == RegionWildcard || r == region {
			return true
		}
	}
	return false
}
