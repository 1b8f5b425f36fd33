package ranking

import (
	"strings"

	"github.com/lukas/foerder-scout/internal/types"
)

// PreFilterResult carries the coarse filter's survivors and the count of
// programs it eliminated.
type PreFilterResult struct {
	Programs      []types.ClassifiedProgram `json:"programs"`
	ExcludedCount int                       `json:"excluded_count"`
}

// PreFilter cheaply eliminates programs that cannot possibly match the
// criteria: excluded-tier programs, programs whose jurisdictions cover
// neither the wildcard nor the caller's region, and hard category
// mismatches. Soft attributes (measures, budget) are deliberately left to
// the scored filter, so no program a correct scorer would accept is
// dropped here.
func PreFilter(criteria *types.ProjectCriteria, classified []types.ClassifiedProgram) PreFilterResult {
	result := PreFilterResult{Programs: make([]types.ClassifiedProgram, 0, len(classified))}

	for _, p := range classified {
		if p.RelevanceTier == types.TierExcluded {
			result.ExcludedCount++
			continue
		}
		if criteria.Region != "" && !p.CoversRegion(criteria.Region) {
			result.ExcludedCount++
			continue
		}
		if criteria.Category != "" && !strings.EqualFold(p.Category, criteria.Category) {
			result.ExcludedCount++
			continue
		}
		result.Programs = append(result.Programs, p)
	}

	return result
}
