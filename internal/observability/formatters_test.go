package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lukas/foerder-scout/internal/cache"
	"github.com/lukas/foerder-scout/internal/pipeline"
	"github.com/lukas/foerder-scout/internal/types"
)

func TestPrintCriteria(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	budget := 250000.0
	criteria := &types.ProjectCriteria{
		Region:   "BY",
		Category: "energieeffizienz",
		Measures: []string{"daemmung", "fenster"},
		Budget:   &budget,
	}

	p.PrintCriteria(criteria)
	output := buf.String()

	assert.Contains(t, output, "PROJECT CRITERIA")
	assert.Contains(t, output, "BY")
	assert.Contains(t, output, "energieeffizienz")
	assert.Contains(t, output, "daemmung")
	assert.Contains(t, output, "250000 EUR")
}

func TestPrintCriteria_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCriteria(nil)

	assert.Empty(t, buf.String())
}

func TestPrintShortlist(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &pipeline.RankResult{
		ExcludedCount: 1,
		Programs: []types.ScoredProgram{
			{
				ClassifiedProgram: types.ClassifiedProgram{
					RawProgram:    types.RawProgram{Name: "KfW Effizienzhaus Bonus BY"},
					RelevanceTier: 1,
				},
				FitScore:          78.5,
				ParsedFundingRate: 45,
				MatchedMeasures:   []string{"daemmung"},
			},
		},
	}

	p.PrintShortlist(result)
	output := buf.String()

	assert.Contains(t, output, "RANKED SHORTLIST")
	assert.Contains(t, output, "KfW Effizienzhaus Bonus BY")
	assert.Contains(t, output, "78.5")
	assert.Contains(t, output, "daemmung")
}

func TestPrintShortlist_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintShortlist(&pipeline.RankResult{})

	assert.Empty(t, buf.String())
}

func TestPrintCacheHealth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := &pipeline.HealthReport{
		Status: pipeline.HealthWarning,
		CacheStats: cache.Stats{
			Size:        9,
			Capacity:    10,
			TotalHits:   40,
			TotalMisses: 60,
			HitRate:     0.4,
		},
		TierStats:       types.TierDistribution{1: 2, 3: 7},
		Recommendations: []string{"cache near capacity: eviction pressure will reduce the hit rate"},
	}

	p.PrintCacheHealth(report)
	output := buf.String()

	assert.Contains(t, output, "CACHE HEALTH")
	assert.Contains(t, output, "WARNING")
	assert.Contains(t, output, "9 / 10")
	assert.Contains(t, output, "Tier 1: 2")
	assert.Contains(t, output, "near capacity")
}

func TestPrintNarrative(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	results := []types.NarrativeResult{
		{
			Program: types.ScoredProgram{
				ClassifiedProgram: types.ClassifiedProgram{
					RawProgram: types.RawProgram{Name: "BAFA Heizungsoptimierung"},
				},
			},
			Assessment: types.Assessment{
				FitScore:    85,
				Eligibility: types.EligibilityEligible,
				Reasons:     []string{"Regionale Passung"},
			},
		},
	}

	p.PrintNarrative(results)
	output := buf.String()

	assert.Contains(t, output, "NARRATIVE ASSESSMENT")
	assert.Contains(t, output, "BAFA Heizungsoptimierung")
	assert.Contains(t, output, "eligible")
	assert.Contains(t, output, "Regionale Passung")
}
