package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lukas/foerder-scout/internal/db"
)

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "Inspect or prune the program catalog in Postgres",
	Long:  "Lists stored programs with optional region and category filters, shows a single program by name, or deletes one. Requires DATABASE_URL.",
	RunE:  runPrograms,
}

var (
	programsConfig   string
	programsRegion   string
	programsCategory string
	programsLimit    int
	programsName     string
	programsDelete   string
)

func init() {
	programsCmd.Flags().StringVar(&programsConfig, "config", "", "Path to config JSON file")
	programsCmd.Flags().StringVar(&programsRegion, "region", "", "Only list programs covering this region code")
	programsCmd.Flags().StringVar(&programsCategory, "category", "", "Only list programs in this category")
	programsCmd.Flags().IntVar(&programsLimit, "limit", 0, "Maximum number of programs to list (default 50)")
	programsCmd.Flags().StringVar(&programsName, "name", "", "Show a single program by name")
	programsCmd.Flags().StringVar(&programsDelete, "delete", "", "Delete a program by name")
	rootCmd.AddCommand(programsCmd)
}

func runPrograms(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(programsConfig)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the programs command")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	switch {
	case programsDelete != "":
		if err := database.DeleteProgram(ctx, programsDelete); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Deleted program %s\n", programsDelete)
		return nil

	case programsName != "":
		program, err := database.GetProgram(ctx, programsName)
		if err != nil {
			return err
		}
		if program == nil {
			return fmt.Errorf("program not found: %s", programsName)
		}
		return printJSON(program)

	default:
		programs, err := database.ListPrograms(ctx, db.ProgramFilters{
			Region:   programsRegion,
			Category: programsCategory,
			Limit:    programsLimit,
		})
		if err != nil {
			return err
		}
		return printJSON(programs)
	}
}

// printJSON writes an indented JSON rendering of v to stdout.
func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(output))
	return nil
}
