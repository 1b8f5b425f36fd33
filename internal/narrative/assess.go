package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lukas/foerder-scout/internal/llm"
	"github.com/lukas/foerder-scout/internal/prompts"
	"github.com/lukas/foerder-scout/internal/types"
)

// DefaultMinFit is the assessment fit score below which entries are
// dropped from the response.
const DefaultMinFit = 40.0

// ParseError marks a narrative response that could not be read as the
// expected structured format. Fatal for the request; never retried.
type ParseError struct {
	Message string
	Content string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("narrative parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("narrative parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Service calls the narrative collaborator and maps its index-keyed
// response back onto the shortlist.
type Service struct {
	client llm.Client
	policy RetryPolicy
	minFit float64
}

// NewService creates a narrative service. minFit <= 0 selects DefaultMinFit.
func NewService(client llm.Client, policy RetryPolicy, minFit float64) *Service {
	if minFit <= 0 {
		minFit = DefaultMinFit
	}
	return &Service{client: client, policy: policy, minFit: minFit}
}

// assessmentsResponse is the expected JSON shape from the service.
type assessmentsResponse struct {
	Assessments []types.Assessment `json:"assessments"`
}

// AssessShortlist generates assessments for a ranked shortlist. Transient
// provider failures are retried per the policy; an unparseable response
// is a fatal ParseError. Assessments whose index does not map back to the
// shortlist are dropped, as are entries below the minimum fit score.
func (s *Service) AssessShortlist(ctx context.Context, criteria *types.ProjectCriteria, shortlist []types.ScoredProgram) ([]types.NarrativeResult, error) {
	if len(shortlist) == 0 {
		return nil, nil
	}

	prompt := buildShortlistPrompt(criteria, shortlist)

	var raw string
	err := s.policy.Do(ctx, func() error {
		var genErr error
		raw, genErr = s.client.GenerateJSON(ctx, prompt)
		return genErr
	})
	if err != nil {
		return nil, fmt.Errorf("narrative generation failed: %w", err)
	}

	var response assessmentsResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &response); err != nil {
		return nil, &ParseError{Message: "response is not valid assessment JSON", Content: raw, Cause: err}
	}

	results := make([]types.NarrativeResult, 0, len(response.Assessments))
	for _, a := range response.Assessments {
		if a.Index < 0 || a.Index >= len(shortlist) {
			continue
		}
		if a.FitScore < s.minFit {
			continue
		}
		if a.FitScore > 100 {
			a.FitScore = 100
		}
		results = append(results, types.NarrativeResult{
			Program:    shortlist[a.Index],
			Assessment: a,
		})
	}
	return results, nil
}

// buildShortlistPrompt renders the shortlist with authoritative indices.
func buildShortlistPrompt(criteria *types.ProjectCriteria, shortlist []types.ScoredProgram) string {
	var lines []string
	for i, p := range shortlist {
		region := strings.Join(p.Regions, ",")
		lines = append(lines, fmt.Sprintf(
			"%d. %s | Regionen: %s | Kategorie: %s | Förderquote: %s | Tier: %d | Score: %.1f",
			i, p.Name, region, p.Category, p.FundingRate, p.RelevanceTier, p.FitScore))
	}

	budget := "nicht angegeben"
	if criteria.Budget != nil {
		budget = fmt.Sprintf("%.0f EUR", *criteria.Budget)
	}
	measures := strings.Join(criteria.Measures, ", ")
	if measures == "" {
		measures = "nicht angegeben"
	}

	template := prompts.MustGet("narrative.json", "assess-shortlist")
	return prompts.Format(template, map[string]string{
		"Region":    criteria.Region,
		"Category":  criteria.Category,
		"Measures":  measures,
		"Budget":    budget,
		"Shortlist": strings.Join(lines, "\n"),
	})
}
