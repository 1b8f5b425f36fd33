package ranking

import (
	"fmt"
	"strings"

	"github.com/lukas/foerder-scout/internal/types"
)

// Score weights. Policy constants, not architecture: tuned empirically,
// tests assert ordering properties rather than exact values.
const (
	regionMatchBonus  = 20.0
	measureBonusMax   = 15.0
	historyBonus      = 10.0
	fundingRateWeight = 0.15
)

// Base score per relevance tier. Every tier keeps a positive baseline, so
// a program failing all soft criteria still carries a non-zero score.
var tierBaseScore = map[int]float64{
	1: 40,
	2: 30,
	3: 20,
	4: 10,
}

// Score computes a fit score for every surviving program against the full
// criteria. One ScoredProgram per input, always with a positive score;
// exclusion already happened in the coarse filter.
func Score(programs []types.ClassifiedProgram, criteria *types.ProjectCriteria) []types.ScoredProgram {
	scored := make([]types.ScoredProgram, 0, len(programs))
	for i := range programs {
		scored = append(scored, scoreOne(&programs[i], criteria))
	}
	return scored
}

func scoreOne(p *types.ClassifiedProgram, criteria *types.ProjectCriteria) types.ScoredProgram {
	fit := tierBaseScore[p.RelevanceTier]

	regionMatch := p.IsRegionSpecific && criteria.Region != "" && p.CoversRegion(criteria.Region)
	if regionMatch {
		fit += regionMatchBonus
	}

	overlap, matched := computeMeasureOverlap(p, criteria)
	fit += measureBonusMax * overlap

	if p.HasDomainFundingHistory && strings.EqualFold(p.Category, criteria.Category) {
		fit += historyBonus
	}

	parsedRate := ParseFundingRate(p.FundingRate)
	fit += parsedRate * fundingRateWeight

	return types.ScoredProgram{
		ClassifiedProgram: *p,
		FitScore:          fit,
		RegionMatch:       regionMatch,
		MatchedMeasures:   matched,
		ParsedFundingRate: parsedRate,
		Notes:             scoreNotes(regionMatch, overlap, matched, parsedRate),
	}
}

// computeMeasureOverlap returns the fraction of requested measures the
// program funds, plus the matched measure names. No requested measures
// means no bonus and no penalty.
func computeMeasureOverlap(p *types.ClassifiedProgram, criteria *types.ProjectCriteria) (float64, []string) {
	if len(criteria.Measures) == 0 {
		return 0, nil
	}

	funded := make(map[string]bool, len(p.Measures))
	for _, m := range p.Measures {
		funded[strings.ToLower(m)] = true
	}

	var matched []string
	for _, m := range criteria.Measures {
		if funded[strings.ToLower(m)] {
			matched = append(matched, m)
		}
	}

	return float64(len(matched)) / float64(len(criteria.Measures)), matched
}

// scoreNotes creates a brief explanation of the score composition.
func scoreNotes(regionMatch bool, overlap float64, matched []string, parsedRate float64) string {
	var parts []string

	if regionMatch {
		parts = append(parts, "Exact region match")
	}

	switch {
	case overlap >= 0.7:
		parts = append(parts, fmt.Sprintf("Strong measure overlap (%s)", strings.Join(matched, ", ")))
	case overlap > 0:
		parts = append(parts, fmt.Sprintf("Partial measure overlap (%s)", strings.Join(matched, ", ")))
	}

	if parsedRate >= 60 {
		parts = append(parts, "High funding rate")
	} else if parsedRate > 0 {
		parts = append(parts, fmt.Sprintf("Funding rate %.0f%%", parsedRate))
	}

	if len(parts) == 0 {
		return "Baseline eligibility only"
	}
	return strings.Join(parts, ". ")
}
