package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lukas/foerder-scout/internal/catalog"
	"github.com/lukas/foerder-scout/internal/config"
	"github.com/lukas/foerder-scout/internal/db"
	"github.com/lukas/foerder-scout/internal/pipeline"
	"github.com/lukas/foerder-scout/internal/types"
)

// resolveConfig merges an optional config file with environment defaults.
func resolveConfig(configPath string) (config.Config, error) {
	fileCfg := config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		fileCfg = *loaded
	}

	env := config.Config{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
	return fileCfg.MergeWithDefaults(env), nil
}

// runtime bundles the pipeline engine with the optional database handle
// behind it. The handle stays open for the runtime's lifetime so catalog
// updates are upserted through it and ranking runs can be archived.
type runtime struct {
	engine *pipeline.Engine
	store  *db.DB
}

// Close releases the database handle, when one was opened.
func (rt *runtime) Close() {
	if rt.store != nil {
		rt.store.Close()
	}
}

// loadPrograms reads the catalog from a file, or from Postgres when no
// file is given and a store is available.
func loadPrograms(ctx context.Context, catalogPath string, store *db.DB) ([]types.RawProgram, error) {
	if catalogPath != "" {
		result, err := catalog.LoadFile(catalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		for _, q := range result.Quarantined {
			fmt.Fprintf(os.Stderr, "Warning: quarantined catalog record %d (%s): %s\n", q.Index, q.Name, q.Reason)
		}
		return result.Programs, nil
	}

	if store != nil {
		return store.LoadPrograms(ctx)
	}

	return nil, fmt.Errorf("no catalog source: pass --catalog or set DATABASE_URL")
}

// buildRuntime constructs the pipeline engine from resolved configuration.
func buildRuntime(ctx context.Context, cfg config.Config, catalogPath string, opts pipeline.Options) (*runtime, error) {
	if catalogPath == "" {
		catalogPath = cfg.Catalog
	}

	var store *db.DB
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = database
		opts.Store = store
	}

	programs, err := loadPrograms(ctx, catalogPath, store)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	if opts.CacheCapacity == 0 {
		opts.CacheCapacity = cfg.CacheCapacity
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = cfg.CacheTTLDuration()
	}
	if opts.MaxResults == 0 {
		opts.MaxResults = cfg.MaxResults
	}

	engine, err := pipeline.New(programs, opts)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return &runtime{engine: engine, store: store}, nil
}
