package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lukas/foerder-scout/internal/pipeline"
	"github.com/lukas/foerder-scout/internal/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the program catalog into relevance tiers",
	Long:  "Annotates every catalog program with its relevance tier, origin and derived flags, and writes the classified catalog JSON together with the tier distribution.",
	RunE:  runClassify,
}

var (
	classifyCatalog string
	classifyOutput  string
	classifyConfig  string
)

func init() {
	classifyCmd.Flags().StringVarP(&classifyCatalog, "catalog", "c", "", "Path to program catalog JSON file")
	classifyCmd.Flags().StringVarP(&classifyOutput, "out", "o", "", "Path to output classified catalog JSON file (required)")
	classifyCmd.Flags().StringVar(&classifyConfig, "config", "", "Path to config JSON file")

	if err := classifyCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(classifyCmd)
}

// classifyArtifact is the JSON artifact written by the classify command.
type classifyArtifact struct {
	Programs         []types.ClassifiedProgram `json:"programs"`
	TierDistribution types.TierDistribution    `json:"tier_distribution"`
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(classifyConfig)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(ctx, cfg, classifyCatalog, pipeline.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	classified := rt.engine.Classify()
	artifact := classifyArtifact{
		Programs:         classified,
		TierDistribution: make(types.TierDistribution),
	}
	for _, p := range classified {
		artifact.TierDistribution[p.RelevanceTier]++
	}

	jsonOutput, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal classified catalog to JSON: %w", err)
	}

	outputDir := filepath.Dir(classifyOutput)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	if err := os.WriteFile(classifyOutput, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write classified catalog to output file %s: %w", classifyOutput, err)
	}

	fmt.Fprintf(os.Stdout, "Successfully classified %d programs to %s\n", len(classified), classifyOutput)
	return nil
}
