// Package catalog loads and validates the raw program catalog. The
// catalog is an immutable ordered sequence: loaded once at startup,
// replaced only through explicit update calls.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/lukas/foerder-scout/internal/types"
)

var validate = validator.New()

// QuarantinedRecord is a catalog record rejected at the load boundary,
// kept with its rejection reason instead of propagating downstream.
type QuarantinedRecord struct {
	Index  int    `json:"index"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// LoadResult holds the accepted catalog and the quarantined records.
type LoadResult struct {
	Programs    []types.RawProgram  `json:"programs"`
	Quarantined []QuarantinedRecord `json:"quarantined,omitempty"`
}

// LoadFile reads a catalog JSON file: either a bare array of programs or
// an object with a "programs" field. Malformed records are quarantined,
// not fatal; an unreadable or unparseable file is.
func LoadFile(path string) (*LoadResult, error) {
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return Load(data)
}

// Load parses catalog JSON and validates each record.
func Load(data []byte) (*LoadResult, error) {
	var programs []types.RawProgram
	if err := json.Unmarshal(data, &programs); err != nil {
		var wrapped struct {
			Programs []types.RawProgram `json:"programs"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
		}
		programs = wrapped.Programs
	}
	return Validate(programs), nil
}

// Validate checks every record's required shape (name, jurisdictions,
// category, funding rate) and deduplicates by name. Rejected records are
// quarantined with a reason; the accepted sequence keeps its input order.
func Validate(programs []types.RawProgram) *LoadResult {
	result := &LoadResult{Programs: make([]types.RawProgram, 0, len(programs))}
	seen := make(map[string]bool, len(programs))

	for i, p := range programs {
		if err := validate.Struct(p); err != nil {
			result.Quarantined = append(result.Quarantined, QuarantinedRecord{
				Index:  i,
				Name:   p.Name,
				Reason: fmt.Sprintf("invalid record: %v", err),
			})
			continue
		}
		if seen[p.Name] {
			result.Quarantined = append(result.Quarantined, QuarantinedRecord{
				Index:  i,
				Name:   p.Name,
				Reason: "duplicate program name",
			})
			continue
		}
		seen[p.Name] = true
		result.Programs = append(result.Programs, p)
	}

	return result
}

// ValidateProgram checks a single record, for the update entrypoint.
func ValidateProgram(p *types.RawProgram) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid program record: %w", err)
	}
	return nil
}
