// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/lukas/foerder-scout/internal/pipeline"
	"github.com/lukas/foerder-scout/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCriteria outputs a human-readable summary of the project criteria.
func (p *Printer) PrintCriteria(criteria *types.ProjectCriteria) {
	if criteria == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Region:   %s\n", orDash(criteria.Region)))
	sb.WriteString(fmt.Sprintf("Category: %s\n", orDash(criteria.Category)))
	if len(criteria.Measures) > 0 {
		sb.WriteString(fmt.Sprintf("Measures: %s\n", strings.Join(criteria.Measures, ", ")))
	}
	if criteria.Budget != nil {
		sb.WriteString(fmt.Sprintf("Budget:   %.0f EUR\n", *criteria.Budget))
	}
	if criteria.Urgency != "" {
		sb.WriteString(fmt.Sprintf("Urgency:  %s\n", criteria.Urgency))
	}

	p.printBox("PROJECT CRITERIA", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintShortlist outputs the top ranked programs with scores and tiers.
func (p *Printer) PrintShortlist(result *pipeline.RankResult) {
	if result == nil || len(result.Programs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Programs ranked: %d (excluded: %d)\n\n",
		len(result.Programs), result.ExcludedCount))

	count := min(len(result.Programs), maxItemsToShow)
	for i := 0; i < count; i++ {
		program := result.Programs[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, program.Name))
		sb.WriteString(fmt.Sprintf("    Score: %.1f  Tier: %d  Rate: %.0f%%\n",
			program.FitScore, program.RelevanceTier, program.ParsedFundingRate))
		if len(program.MatchedMeasures) > 0 {
			measures := strings.Join(program.MatchedMeasures, ", ")
			if len(measures) > 40 {
				measures = measures[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Measures: %s\n", measures))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(result.Programs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more\n", len(result.Programs)-maxItemsToShow))
	}

	p.printBox("RANKED SHORTLIST", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCacheHealth outputs the cache health report.
func (p *Printer) PrintCacheHealth(report *pipeline.HealthReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:   %s\n", strings.ToUpper(report.Status)))
	sb.WriteString(fmt.Sprintf("Entries:  %d / %d\n", report.CacheStats.Size, report.CacheStats.Capacity))
	sb.WriteString(fmt.Sprintf("Hit rate: %.1f%% (%d hits, %d misses)\n",
		report.CacheStats.HitRate*100, report.CacheStats.TotalHits, report.CacheStats.TotalMisses))
	sb.WriteString(fmt.Sprintf("Evicted:  %d\n", report.CacheStats.Evictions))

	if report.TierStats.Total() > 0 {
		sb.WriteString("\nTiers:\n")
		for tier := types.TierHighest; tier <= types.TierExcluded; tier++ {
			if n := report.TierStats[tier]; n > 0 {
				sb.WriteString(fmt.Sprintf("  Tier %d: %d programs\n", tier, n))
			}
		}
	}

	if len(report.Recommendations) > 0 {
		sb.WriteString("\n")
		for _, rec := range report.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
	}

	p.printBox("CACHE HEALTH", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintNarrative outputs narrative assessments for the shortlist.
func (p *Printer) PrintNarrative(results []types.NarrativeResult) {
	if len(results) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := results[i]
		sb.WriteString(fmt.Sprintf("%s\n", r.Program.Name))
		sb.WriteString(fmt.Sprintf("    Fit: %.0f  %s\n", r.Assessment.FitScore, r.Assessment.Eligibility))
		for _, reason := range r.Assessment.Reasons {
			if len(reason) > 46 {
				reason = reason[:43] + "..."
			}
			sb.WriteString(fmt.Sprintf("    - %s\n", reason))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("NARRATIVE ASSESSMENT", strings.TrimSuffix(sb.String(), "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
