package types

// Eligibility classes returned by the narrative service.
const (
	EligibilityEligible    = "eligible"
	EligibilityConditional = "conditional"
	EligibilityIneligible  = "ineligible"
)

// Assessment is one narrative judgement for a shortlist entry, keyed by
// the entry's zero-based index in the ranked shortlist.
type Assessment struct {
	Index       int      `json:"index"`
	FitScore    float64  `json:"fit_score"`
	Eligibility string   `json:"eligibility"`
	Reasons     []string `json:"reasons,omitempty"`
	Risks       []string `json:"risks,omitempty"`
	NextSteps   []string `json:"next_steps,omitempty"`
}

// NarrativeResult pairs a shortlist entry with its assessment.
type NarrativeResult struct {
	Program    ScoredProgram `json:"program"`
	Assessment Assessment    `json:"assessment"`
}
