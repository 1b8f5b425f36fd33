// Package db provides PostgreSQL persistence for the program catalog and
// ranking artifacts.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lukas/foerder-scout/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// LoadPrograms retrieves the full program catalog in insertion order.
func (db *DB) LoadPrograms(ctx context.Context) ([]types.RawProgram, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT name, regions, category, funding_rate, measures, COALESCE(description, ''), COALESCE(source, '')
		 FROM programs ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load programs: %w", err)
	}
	defer rows.Close()

	var programs []types.RawProgram
	for rows.Next() {
		var p types.RawProgram
		if err := rows.Scan(&p.Name, &p.Regions, &p.Category, &p.FundingRate, &p.Measures, &p.Description, &p.Source); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, p)
	}
	return programs, nil
}

// GetProgram retrieves one program by name. Returns nil when absent.
func (db *DB) GetProgram(ctx context.Context, name string) (*types.RawProgram, error) {
	var p types.RawProgram
	err := db.pool.QueryRow(ctx,
		`SELECT name, regions, category, funding_rate, measures, COALESCE(description, ''), COALESCE(source, '')
		 FROM programs WHERE name = $1`,
		name,
	).Scan(&p.Name, &p.Regions, &p.Category, &p.FundingRate, &p.Measures, &p.Description, &p.Source)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get program %s: %w", name, err)
	}
	return &p, nil
}

// UpsertProgram inserts or replaces a program record keyed by name.
func (db *DB) UpsertProgram(ctx context.Context, p types.RawProgram) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO programs (name, regions, category, funding_rate, measures, description, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (name) DO UPDATE SET
		   regions = $2, category = $3, funding_rate = $4, measures = $5,
		   description = $6, source = $7, updated_at = NOW()`,
		p.Name, p.Regions, p.Category, p.FundingRate, p.Measures, p.Description, p.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert program %s: %w", p.Name, err)
	}
	return nil
}

// DeleteProgram removes a program by name.
func (db *DB) DeleteProgram(ctx context.Context, name string) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM programs WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete program %s: %w", name, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("program not found: %s", name)
	}
	return nil
}

// ProgramFilters holds optional filters for listing programs
type ProgramFilters struct {
	Region   string
	Category string
	Limit    int
}

// ListPrograms retrieves programs with optional region and category
// filters. A region filter also matches wildcard-coverage programs.
func (db *DB) ListPrograms(ctx context.Context, filters ProgramFilters) ([]types.RawProgram, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT name, regions, category, funding_rate, measures, COALESCE(description, ''), COALESCE(source, '')
		FROM programs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Region != "" {
		query += fmt.Sprintf(" AND ($%d = ANY(regions) OR $%d = ANY(regions))", argNum, argNum+1)
		args = append(args, filters.Region, types.RegionWildcard)
		argNum += 2
	}
	if filters.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argNum)
		args = append(args, filters.Category)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	defer rows.Close()

	var programs []types.RawProgram
	for rows.Next() {
		var p types.RawProgram
		if err := rows.Scan(&p.Name, &p.Regions, &p.Category, &p.FundingRate, &p.Measures, &p.Description, &p.Source); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, p)
	}
	return programs, nil
}

// SaveRankArtifact stores one ranking run's JSON output for later review
// and returns its ID.
func (db *DB) SaveRankArtifact(ctx context.Context, requestID string, criteria, result any) (uuid.UUID, error) {
	criteriaJSON, err := json.Marshal(criteria)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal criteria: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal rank result: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO rank_artifacts (request_id, criteria, result)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		requestID, criteriaJSON, resultJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save rank artifact: %w", err)
	}
	return id, nil
}

// RankArtifact is a stored ranking run.
type RankArtifact struct {
	ID        uuid.UUID `json:"id"`
	RequestID string    `json:"request_id"`
	Criteria  any       `json:"criteria,omitempty"`
	Result    any       `json:"result,omitempty"`
}

// GetRankArtifact retrieves a stored ranking run by ID. Returns nil when
// absent.
func (db *DB) GetRankArtifact(ctx context.Context, id uuid.UUID) (*RankArtifact, error) {
	var artifact RankArtifact
	var criteriaBytes, resultBytes []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, request_id, criteria, result FROM rank_artifacts WHERE id = $1`,
		id,
	).Scan(&artifact.ID, &artifact.RequestID, &criteriaBytes, &resultBytes)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rank artifact: %w", err)
	}

	if len(criteriaBytes) > 0 {
		var criteria any
		if err := json.Unmarshal(criteriaBytes, &criteria); err == nil {
			artifact.Criteria = criteria
		}
	}
	if len(resultBytes) > 0 {
		var result any
		if err := json.Unmarshal(resultBytes, &result); err == nil {
			artifact.Result = result
		}
	}
	return &artifact, nil
}
