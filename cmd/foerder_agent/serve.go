package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lukas/foerder-scout/internal/pipeline"
	"github.com/lukas/foerder-scout/internal/server"
)

var (
	serveAddr    string
	serveCatalog string
	serveConfig  string
	serveWarm    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for classification, ranking, catalog updates and cache maintenance.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default :8080)")
	serveCmd.Flags().StringVarP(&serveCatalog, "catalog", "c", "", "Path to program catalog JSON file")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to config JSON file")
	serveCmd.Flags().BoolVar(&serveWarm, "warm", true, "Warm the classification cache before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(serveConfig)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(ctx, cfg, serveCatalog, pipeline.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	if serveWarm {
		if err := rt.engine.Warm(ctx); err != nil {
			return fmt.Errorf("failed to warm classification cache: %w", err)
		}
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	srv := server.New(rt.engine, server.Config{Addr: addr})
	return srv.Start()
}
