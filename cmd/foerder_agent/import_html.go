package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lukas/foerder-scout/internal/catalog"
	"github.com/lukas/foerder-scout/internal/db"
)

var importHTMLCmd = &cobra.Command{
	Use:   "import-html",
	Short: "Import programs from a funding-database HTML listing",
	Long:  "Extracts program records from a saved HTML listing page (one table row per program), validates them, and writes a catalog JSON file. With --to-db, valid records are also upserted into Postgres.",
	RunE:  runImportHTML,
}

var (
	importHTMLInput  string
	importHTMLOutput string
	importHTMLToDB   bool
)

func init() {
	importHTMLCmd.Flags().StringVarP(&importHTMLInput, "in", "i", "", "Path to input HTML file (required)")
	importHTMLCmd.Flags().StringVarP(&importHTMLOutput, "out", "o", "", "Path to output catalog JSON file (required)")
	importHTMLCmd.Flags().BoolVar(&importHTMLToDB, "to-db", false, "Also upsert imported programs into Postgres (requires DATABASE_URL)")

	if err := importHTMLCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	if err := importHTMLCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(importHTMLCmd)
}

func runImportHTML(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	f, err := os.Open(importHTMLInput)
	if err != nil {
		return fmt.Errorf("failed to open HTML file %s: %w", importHTMLInput, err)
	}
	defer f.Close()

	result, err := catalog.ImportHTML(f)
	if err != nil {
		return fmt.Errorf("failed to import HTML listing: %w", err)
	}
	for _, q := range result.Quarantined {
		fmt.Fprintf(os.Stderr, "Warning: quarantined listing row %d (%s): %s\n", q.Index, q.Name, q.Reason)
	}

	jsonOutput, err := json.MarshalIndent(result.Programs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog to JSON: %w", err)
	}

	outputDir := filepath.Dir(importHTMLOutput)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	if err := os.WriteFile(importHTMLOutput, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write catalog to output file %s: %w", importHTMLOutput, err)
	}

	// Validate output against schema (optional - non-fatal)
	validateArtifact("schemas/catalog.schema.json", importHTMLOutput)

	if importHTMLToDB {
		if err := upsertPrograms(ctx, result); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stdout, "Successfully imported %d programs to %s (%d quarantined)\n",
		len(result.Programs), importHTMLOutput, len(result.Quarantined))
	return nil
}

func upsertPrograms(ctx context.Context, result *catalog.LoadResult) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required for --to-db")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	for _, p := range result.Programs {
		if err := database.UpsertProgram(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
