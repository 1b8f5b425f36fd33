package ranking

import (
	"testing"

	"github.com/lukas/foerder-scout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifiedFixture(name string, tier int, regions []string, category string, measures ...string) types.ClassifiedProgram {
	return types.ClassifiedProgram{
		RawProgram: types.RawProgram{
			Name:        name,
			Regions:     regions,
			Category:    category,
			FundingRate: "50%",
			Measures:    measures,
		},
		RelevanceTier:    tier,
		IsRegionSpecific: len(regions) > 0 && regions[0] != types.RegionWildcard,
	}
}

func TestPreFilter_DropsExcludedTier(t *testing.T) {
	criteria := &types.ProjectCriteria{Region: "BY", Category: "energieeffizienz"}
	classified := []types.ClassifiedProgram{
		classifiedFixture("keep", 1, []string{"BY"}, "energieeffizienz"),
		classifiedFixture("excluded-tier", types.TierExcluded, []string{"BY"}, "energieeffizienz"),
	}

	result := PreFilter(criteria, classified)
	require.Len(t, result.Programs, 1)
	assert.Equal(t, "keep", result.Programs[0].Name)
	assert.Equal(t, 1, result.ExcludedCount)
}

func TestPreFilter_DropsRegionAndCategoryMismatches(t *testing.T) {
	criteria := &types.ProjectCriteria{Region: "BY", Category: "energieeffizienz"}
	classified := []types.ClassifiedProgram{
		classifiedFixture("region-match", 2, []string{"BY", "BW"}, "energieeffizienz"),
		classifiedFixture("nationwide", 2, []string{types.RegionWildcard}, "energieeffizienz"),
		classifiedFixture("wrong-region", 2, []string{"NW"}, "energieeffizienz"),
		classifiedFixture("wrong-category", 2, []string{"BY"}, "digitalisierung"),
	}

	result := PreFilter(criteria, classified)
	require.Len(t, result.Programs, 2)
	assert.Equal(t, "region-match", result.Programs[0].Name)
	assert.Equal(t, "nationwide", result.Programs[1].Name)
	assert.Equal(t, 2, result.ExcludedCount)
}

func TestPreFilter_PermissiveOnSoftAttributes(t *testing.T) {
	// Measures and budget are scored, not pre-filtered: a program funding
	// none of the requested measures must survive.
	budget := 50000.0
	criteria := &types.ProjectCriteria{
		Region:   "BY",
		Category: "energieeffizienz",
		Measures: []string{"daemmung"},
		Budget:   &budget,
	}
	classified := []types.ClassifiedProgram{
		classifiedFixture("no-measure-overlap", 3, []string{"BY"}, "energieeffizienz", "heizung"),
	}

	result := PreFilter(criteria, classified)
	assert.Len(t, result.Programs, 1)
	assert.Zero(t, result.ExcludedCount)
}

func TestPreFilter_SupersetOfScoredAcceptance(t *testing.T) {
	// Everything the scored filter would score must survive the coarse
	// pass: Score never drops a program, so the survivors of PreFilter are
	// exactly the scorable set.
	criteria := &types.ProjectCriteria{Region: "BY", Category: "energieeffizienz", Measures: []string{"daemmung"}}
	classified := []types.ClassifiedProgram{
		classifiedFixture("a", 1, []string{"BY"}, "energieeffizienz", "daemmung"),
		classifiedFixture("b", 2, []string{types.RegionWildcard}, "energieeffizienz"),
		classifiedFixture("c", 3, []string{"BY"}, "energieeffizienz", "heizung"),
	}

	survivors := PreFilter(criteria, classified)
	scored := Score(survivors.Programs, criteria)
	assert.Len(t, scored, len(survivors.Programs))
}

func TestPreFilter_EmptyCriteriaDegradesGracefully(t *testing.T) {
	// Missing region and category never raise; the pass keeps everything
	// except the excluded tier.
	criteria := &types.ProjectCriteria{}
	classified := []types.ClassifiedProgram{
		classifiedFixture("a", 1, []string{"BY"}, "energieeffizienz"),
		classifiedFixture("b", types.TierExcluded, []string{"NW"}, "digitalisierung"),
	}

	result := PreFilter(criteria, classified)
	assert.Len(t, result.Programs, 1)
	assert.Equal(t, 1, result.ExcludedCount)
}
