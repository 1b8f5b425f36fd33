package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lukas/foerder-scout/internal/classify"
	"github.com/lukas/foerder-scout/internal/observability"
	"github.com/lukas/foerder-scout/internal/pipeline"
)

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run cache maintenance and report cache health",
	Long:  "Runs the selected cache maintenance actions (expired-entry sweep, memory compaction, consistency validation) and prints the resulting cache health report.",
	RunE:  runMaintain,
}

var (
	maintainCatalog     string
	maintainConfig      string
	maintainClean       bool
	maintainOptimize    bool
	maintainConsistency bool
)

func init() {
	maintainCmd.Flags().StringVarP(&maintainCatalog, "catalog", "c", "", "Path to program catalog JSON file")
	maintainCmd.Flags().StringVar(&maintainConfig, "config", "", "Path to config JSON file")
	maintainCmd.Flags().BoolVar(&maintainClean, "clean-expired", true, "Remove expired cache entries")
	maintainCmd.Flags().BoolVar(&maintainOptimize, "optimize-memory", true, "Compact the cache index")
	maintainCmd.Flags().BoolVar(&maintainConsistency, "validate-consistency", true, "Verify tier counts against the catalog")
	rootCmd.AddCommand(maintainCmd)
}

func runMaintain(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(maintainConfig)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(ctx, cfg, maintainCatalog, pipeline.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	result := rt.engine.Maintenance(classify.MaintenanceOptions{
		CleanExpired:        maintainClean,
		OptimizeMemory:      maintainOptimize,
		ValidateConsistency: maintainConsistency,
	})

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal maintenance result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(output))

	report := rt.engine.CacheHealth()
	observability.NewPrinter(os.Stderr).PrintCacheHealth(&report)

	if !result.Success {
		return fmt.Errorf("maintenance reported failure: %s", result.ConsistencyError)
	}
	return nil
}
