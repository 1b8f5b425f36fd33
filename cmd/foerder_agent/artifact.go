package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lukas/foerder-scout/internal/db"
)

var artifactCmd = &cobra.Command{
	Use:   "artifact",
	Short: "Show an archived ranking run",
	Long:  "Retrieves a ranking run archived by the rank command from Postgres, by artifact ID. Requires DATABASE_URL.",
	RunE:  runArtifact,
}

var (
	artifactConfig string
	artifactID     string
)

func init() {
	artifactCmd.Flags().StringVar(&artifactConfig, "config", "", "Path to config JSON file")
	artifactCmd.Flags().StringVar(&artifactID, "id", "", "Artifact ID to retrieve (required)")

	if err := artifactCmd.MarkFlagRequired("id"); err != nil {
		panic(fmt.Sprintf("failed to mark id flag as required: %v", err))
	}

	rootCmd.AddCommand(artifactCmd)
}

func runArtifact(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	id, err := uuid.Parse(artifactID)
	if err != nil {
		return fmt.Errorf("invalid artifact ID %s: %w", artifactID, err)
	}

	cfg, err := resolveConfig(artifactConfig)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the artifact command")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	artifact, err := database.GetRankArtifact(ctx, id)
	if err != nil {
		return err
	}
	if artifact == nil {
		return fmt.Errorf("artifact not found: %s", artifactID)
	}
	return printJSON(artifact)
}
