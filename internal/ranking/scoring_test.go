package ranking

import (
	"testing"

	"github.com/lukas/foerder-scout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_AlwaysPositive(t *testing.T) {
	criteria := &types.ProjectCriteria{Region: "BY", Category: "energieeffizienz", Measures: []string{"daemmung"}}
	// Worst case: tier 3, no region match, no overlap, unparseable rate.
	p := classifiedFixture("worst", 3, []string{types.RegionWildcard}, "energieeffizienz")
	p.FundingRate = "auf Anfrage"

	scored := Score([]types.ClassifiedProgram{p}, criteria)
	require.Len(t, scored, 1)
	assert.Positive(t, scored[0].FitScore)
	assert.Equal(t, "Baseline eligibility only", scored[0].Notes)
}

func TestScore_TierOrdering(t *testing.T) {
	criteria := &types.ProjectCriteria{Category: "energieeffizienz"}
	tier1 := classifiedFixture("t1", 1, []string{types.RegionWildcard}, "energieeffizienz")
	tier3 := classifiedFixture("t3", 3, []string{types.RegionWildcard}, "energieeffizienz")

	scored := Score([]types.ClassifiedProgram{tier1, tier3}, criteria)
	assert.Greater(t, scored[0].FitScore, scored[1].FitScore)
}

func TestScore_RegionMatchBonus(t *testing.T) {
	criteria := &types.ProjectCriteria{Region: "BY", Category: "energieeffizienz"}
	matching := classifiedFixture("match", 2, []string{"BY"}, "energieeffizienz")
	nationwide := classifiedFixture("wide", 2, []string{types.RegionWildcard}, "energieeffizienz")

	scored := Score([]types.ClassifiedProgram{matching, nationwide}, criteria)
	assert.True(t, scored[0].RegionMatch)
	assert.False(t, scored[1].RegionMatch)
	assert.Greater(t, scored[0].FitScore, scored[1].FitScore)
}

func TestScore_MeasureOverlapProportional(t *testing.T) {
	criteria := &types.ProjectCriteria{Category: "energieeffizienz", Measures: []string{"daemmung", "fenster"}}
	full := classifiedFixture("full", 2, []string{types.RegionWildcard}, "energieeffizienz", "daemmung", "fenster")
	half := classifiedFixture("half", 2, []string{types.RegionWildcard}, "energieeffizienz", "daemmung")
	none := classifiedFixture("none", 2, []string{types.RegionWildcard}, "energieeffizienz", "heizung")

	scored := Score([]types.ClassifiedProgram{full, half, none}, criteria)
	assert.Greater(t, scored[0].FitScore, scored[1].FitScore)
	assert.Greater(t, scored[1].FitScore, scored[2].FitScore)
	assert.ElementsMatch(t, []string{"daemmung", "fenster"}, scored[0].MatchedMeasures)
	assert.ElementsMatch(t, []string{"daemmung"}, scored[1].MatchedMeasures)
	assert.Empty(t, scored[2].MatchedMeasures)
}

func TestScore_HistoryBonusRequiresCategoryMatch(t *testing.T) {
	criteria := &types.ProjectCriteria{Category: "energieeffizienz"}

	withHistory := classifiedFixture("hist", 2, []string{types.RegionWildcard}, "energieeffizienz")
	withHistory.HasDomainFundingHistory = true
	without := classifiedFixture("none", 2, []string{types.RegionWildcard}, "energieeffizienz")

	scored := Score([]types.ClassifiedProgram{withHistory, without}, criteria)
	assert.Greater(t, scored[0].FitScore, scored[1].FitScore)
}

func TestScore_FundingRateContribution(t *testing.T) {
	criteria := &types.ProjectCriteria{Category: "energieeffizienz"}
	high := classifiedFixture("high", 2, []string{types.RegionWildcard}, "energieeffizienz")
	high.FundingRate = "90%"
	low := classifiedFixture("low", 2, []string{types.RegionWildcard}, "energieeffizienz")
	low.FundingRate = "10%"

	scored := Score([]types.ClassifiedProgram{high, low}, criteria)
	assert.Greater(t, scored[0].FitScore, scored[1].FitScore)
	assert.InDelta(t, 90, scored[0].ParsedFundingRate, 1e-9)
	assert.InDelta(t, 10, scored[1].ParsedFundingRate, 1e-9)
}

func TestScore_InputNotMutated(t *testing.T) {
	criteria := &types.ProjectCriteria{Category: "energieeffizienz"}
	programs := []types.ClassifiedProgram{
		classifiedFixture("a", 2, []string{"BY"}, "energieeffizienz"),
	}
	before := programs[0]

	_ = Score(programs, criteria)
	assert.Equal(t, before, programs[0])
}
