package server

import (
	"encoding/json"
	"net/http"

	"github.com/lukas/foerder-scout/internal/classify"
	"github.com/lukas/foerder-scout/internal/pipeline"
	"github.com/lukas/foerder-scout/internal/types"
)

// rankRequest is the body for POST /rank.
type rankRequest struct {
	Criteria   types.ProjectCriteria `json:"criteria"`
	MaxResults int                   `json:"max_results,omitempty"`
}

// handleRank runs one ranking request against the current catalog.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result := s.engine.Rank(&req.Criteria, req.MaxResults)
	s.jsonResponse(w, http.StatusOK, result)
}

// handleClassify returns the tier-annotated catalog.
func (s *Server) handleClassify(w http.ResponseWriter, _ *http.Request) {
	classified := s.engine.Classify()

	distribution := make(types.TierDistribution)
	for _, p := range classified {
		distribution[p.RelevanceTier]++
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"programs":          classified,
		"tier_distribution": distribution,
	})
}

// handleCacheHealth returns the cache health report.
func (s *Server) handleCacheHealth(w http.ResponseWriter, _ *http.Request) {
	report := s.engine.CacheHealth()

	status := http.StatusOK
	if report.Status == pipeline.HealthCritical {
		status = http.StatusServiceUnavailable
	}
	s.jsonResponse(w, status, report)
}

// handleMaintenance runs cache maintenance. An empty body selects every
// action.
func (s *Server) handleMaintenance(w http.ResponseWriter, r *http.Request) {
	opts := classify.MaintenanceOptions{
		CleanExpired:        true,
		OptimizeMemory:      true,
		ValidateConsistency: true,
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	result := s.engine.Maintenance(opts)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusConflict
	}
	s.jsonResponse(w, status, result)
}

// handleListPrograms returns the raw catalog.
func (s *Server) handleListPrograms(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"programs": s.engine.Catalog(),
	})
}

// handleUpdateProgram replaces or creates a catalog program. The path
// name is authoritative; a mismatched body name is rejected.
func (s *Server) handleUpdateProgram(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		s.errorResponse(w, http.StatusBadRequest, "program name is required")
		return
	}

	var program types.RawProgram
	if err := json.NewDecoder(r.Body).Decode(&program); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if program.Name == "" {
		program.Name = name
	}
	if program.Name != name {
		s.errorResponse(w, http.StatusBadRequest, "body name does not match path name")
		return
	}

	result := s.engine.UpdateProgram(r.Context(), program)
	if !result.Success {
		s.errorResponse(w, http.StatusBadRequest, result.Error)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	s.jsonResponse(w, status, result)
}
