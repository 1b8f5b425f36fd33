package ranking

import (
	"sort"

	"github.com/lukas/foerder-scout/internal/types"
)

// SortAndLimit orders scored programs deterministically and truncates to
// maxResults. The input is never mutated; a new slice is returned.
// Comparator key order:
//  1. region-specific programs before nationwide ones
//  2. among region-specific, those covering regionCode first
//  3. relevance tier ascending
//  4. parsed funding rate descending
//
// Full ties keep the original catalog order. Truncation happens only
// after the full ordering.
func SortAndLimit(scored []types.ScoredProgram, regionCode string, maxResults int) []types.ScoredProgram {
	ordered := make([]types.ScoredProgram, len(scored))
	copy(ordered, scored)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := &ordered[i], &ordered[j]

		if a.IsRegionSpecific != b.IsRegionSpecific {
			return a.IsRegionSpecific
		}

		if a.IsRegionSpecific && regionCode != "" {
			aMatches := a.CoversRegion(regionCode)
			bMatches := b.CoversRegion(regionCode)
			if aMatches != bMatches {
				return aMatches
			}
		}

		if a.RelevanceTier != b.RelevanceTier {
			return a.RelevanceTier < b.RelevanceTier
		}

		return a.ParsedFundingRate > b.ParsedFundingRate
	})

	if maxResults >= 0 && len(ordered) > maxResults {
		ordered = ordered[:maxResults]
	}
	return ordered
}
