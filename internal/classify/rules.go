// Package classify computes relevance tiers and derived flags for funding
// programs, memoized through the relevance cache.
package classify

import (
	"strings"

	"github.com/lukas/foerder-scout/internal/types"
)

// RuleVersion identifies the classification rule set. It is part of every
// cache key, so bumping it invalidates all memoized classifications.
const RuleVersion = "v1"

// knownCategories are the program categories with an established funding
// domain. Programs outside these land in the excluded tier.
var knownCategories = map[string]bool{
	"energieeffizienz":     true,
	"erneuerbare_energien": true,
	"gebaeudesanierung":    true,
	"elektromobilitaet":    true,
	"waermenetze":          true,
	"digitalisierung":      true,
	"klimaschutz":          true,
}

// federalSources are issuing bodies operating at the federal level.
var federalSources = []string{"kfw", "bafa", "bmwk", "bmu", "bmdv", "bund"}

// municipalSources mark programs issued by cities or municipal utilities.
var municipalSources = []string{"stadt", "gemeinde", "kommune", "stadtwerke"}

// privateSources mark non-government issuers.
var privateSources = []string{"stiftung", "verein", "e.v.", "gmbh", "ag "}

// Historical approval rates per origin, in percent. Private programs
// publish no figures, so their success rate stays unknown.
var successRateByOrigin = map[types.ProgramOrigin]float64{
	types.OriginFederal:   55,
	types.OriginState:     45,
	types.OriginMunicipal: 40,
}

// deriveOrigin determines the issuing level from the source name and the
// jurisdiction breadth. The source name wins over region breadth because
// federal bodies also run region-restricted pilot programs.
func deriveOrigin(p *types.RawProgram) types.ProgramOrigin {
	source := strings.ToLower(p.Source)

	for _, marker := range federalSources {
		if strings.Contains(source, marker) {
			return types.OriginFederal
		}
	}
	for _, marker := range municipalSources {
		if strings.Contains(source, marker) {
			return types.OriginMunicipal
		}
	}
	for _, marker := range privateSources {
		if strings.Contains(source, marker) {
			return types.OriginPrivate
		}
	}

	if p.IsNationwide() {
		return types.OriginFederal
	}
	return types.OriginState
}

// deriveRegionSpecific reports whether the jurisdiction set is non-empty
// and excludes the wildcard.
func deriveRegionSpecific(p *types.RawProgram) bool {
	return len(p.Regions) > 0 && !p.IsNationwide()
}

// deriveDomainHistory reports whether the program has a funding history in
// its own category domain: a known category with at least one measure tag.
func deriveDomainHistory(p *types.RawProgram) bool {
	return knownCategories[strings.ToLower(p.Category)] && len(p.Measures) > 0
}

// deriveTier maps the derived flags to a relevance tier. The rules are
// total: every combination yields exactly one tier in 1..4.
func deriveTier(regionSpecific, domainHistory bool, origin types.ProgramOrigin, p *types.RawProgram) int {
	if !knownCategories[strings.ToLower(p.Category)] {
		return types.TierExcluded
	}
	if regionSpecific && domainHistory {
		return types.TierHighest
	}
	if domainHistory || origin == types.OriginFederal {
		return 2
	}
	return 3
}
