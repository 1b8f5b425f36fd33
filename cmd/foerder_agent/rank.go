package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lukas/foerder-scout/internal/llm"
	"github.com/lukas/foerder-scout/internal/narrative"
	"github.com/lukas/foerder-scout/internal/observability"
	"github.com/lukas/foerder-scout/internal/pipeline"
	"github.com/lukas/foerder-scout/internal/schemas"
	"github.com/lukas/foerder-scout/internal/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank funding programs against project criteria",
	Long:  "Classifies the catalog, filters and scores programs against the given project criteria, and writes a ranked shortlist JSON. With --narrative, the shortlist is additionally assessed by the Gemini collaborator.",
	RunE:  runRank,
}

var (
	rankCatalog    string
	rankCriteria   string
	rankOutput     string
	rankConfig     string
	rankMaxResults int
	rankNarrative  bool
	rankVerbose    bool
)

func init() {
	rankCmd.Flags().StringVarP(&rankCatalog, "catalog", "c", "", "Path to program catalog JSON file")
	rankCmd.Flags().StringVarP(&rankCriteria, "criteria", "p", "", "Path to project criteria JSON file (required)")
	rankCmd.Flags().StringVarP(&rankOutput, "out", "o", "", "Path to output shortlist JSON file (required)")
	rankCmd.Flags().StringVar(&rankConfig, "config", "", "Path to config JSON file")
	rankCmd.Flags().IntVarP(&rankMaxResults, "max-results", "n", 0, "Maximum shortlist size (default 15)")
	rankCmd.Flags().BoolVar(&rankNarrative, "narrative", false, "Assess the shortlist with the narrative collaborator")
	rankCmd.Flags().BoolVarP(&rankVerbose, "verbose", "v", false, "Print detailed progress information")

	if err := rankCmd.MarkFlagRequired("criteria"); err != nil {
		panic(fmt.Sprintf("failed to mark criteria flag as required: %v", err))
	}
	if err := rankCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(rankCmd)
}

// rankArtifact is the JSON artifact written by the rank command.
type rankArtifact struct {
	pipeline.RankResult
	Narrative []types.NarrativeResult `json:"narrative,omitempty"`
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(rankConfig)
	if err != nil {
		return err
	}

	// 1. Load project criteria
	criteriaContent, err := os.ReadFile(rankCriteria)
	if err != nil {
		return fmt.Errorf("failed to read criteria file %s: %w", rankCriteria, err)
	}

	var criteria types.ProjectCriteria
	if err := json.Unmarshal(criteriaContent, &criteria); err != nil {
		return fmt.Errorf("failed to unmarshal criteria JSON: %w", err)
	}

	// 2. Build the pipeline engine, with the narrative service when asked for
	opts := pipeline.Options{}
	if rankNarrative {
		svc, closeClient, err := buildNarrativeService(ctx, cfg.APIKey, cfg.NarrativeMinFit)
		if err != nil {
			return err
		}
		defer closeClient()
		opts.Narrative = svc
	}

	rt, err := buildRuntime(ctx, cfg, rankCatalog, opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	printer := observability.NewPrinter(os.Stderr)
	if rankVerbose || cfg.Verbose {
		printer.PrintCriteria(&criteria)
	}

	// 3. Rank
	artifact := rankArtifact{}
	if rankNarrative {
		result, assessments, err := rt.engine.RankWithNarrative(ctx, &criteria, rankMaxResults)
		if err != nil {
			return fmt.Errorf("failed to rank with narrative: %w", err)
		}
		artifact.RankResult = result
		artifact.Narrative = assessments
	} else {
		artifact.RankResult = rt.engine.Rank(&criteria, rankMaxResults)
	}

	if rankVerbose || cfg.Verbose {
		printer.PrintShortlist(&artifact.RankResult)
		printer.PrintNarrative(artifact.Narrative)
	}

	// 4. Write output artifact
	jsonOutput, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal shortlist to JSON: %w", err)
	}

	outputDir := filepath.Dir(rankOutput)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	if err := os.WriteFile(rankOutput, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write shortlist to output file %s: %w", rankOutput, err)
	}

	// 5. Validate output against schema (optional - non-fatal)
	validateArtifact("schemas/shortlist.schema.json", rankOutput)

	// 6. Archive the run when a database is configured (non-fatal)
	if rt.store != nil {
		id, err := rt.store.SaveRankArtifact(ctx, artifact.RequestID, &criteria, artifact)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to archive ranking run: %v\n", err)
		} else {
			fmt.Fprintf(os.Stdout, "Archived ranking run %s as artifact %s\n", artifact.RequestID, id)
		}
	}

	fmt.Fprintf(os.Stdout, "Successfully ranked %d programs to %s\n", len(artifact.Programs), rankOutput)
	return nil
}

// buildNarrativeService wires the Gemini client behind the narrative
// retry policy. The returned closer releases the client.
func buildNarrativeService(ctx context.Context, apiKey string, minFit float64) (*narrative.Service, func(), error) {
	if apiKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable is required for --narrative")
	}

	client, err := llm.NewGeminiClient(ctx, nil, apiKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	svc := narrative.NewService(client, narrative.DefaultRetryPolicy(), minFit)
	return svc, func() { _ = client.Close() }, nil
}

// validateArtifact checks an output file against a repo schema when the
// schema can be found. Validation failures warn, they never fail the
// command.
func validateArtifact(schemaRelPath, jsonPath string) {
	schemaPath := schemas.ResolveSchemaPath(schemaRelPath)
	if schemaPath == "" {
		return
	}
	if err := schemas.ValidateJSON(schemaPath, jsonPath); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: Output validation failed: %v\n", err)
	}
}
