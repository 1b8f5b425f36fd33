// Package main provides the entry point for the funding program finder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "foerder_agent",
	Short: "Funding program finder",
	Long:  "foerder_agent classifies and ranks German funding programs (Förderprogramme) against project criteria, with optional narrative eligibility assessment via Gemini.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
