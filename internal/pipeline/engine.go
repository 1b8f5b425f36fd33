// Package pipeline provides the high-level orchestration for the
// classification-cache-filter-sort pipeline.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lukas/foerder-scout/internal/cache"
	"github.com/lukas/foerder-scout/internal/catalog"
	"github.com/lukas/foerder-scout/internal/classify"
	"github.com/lukas/foerder-scout/internal/narrative"
	"github.com/lukas/foerder-scout/internal/ranking"
	"github.com/lukas/foerder-scout/internal/types"
)

// DefaultMaxResults caps ranking output when the caller supplies no limit.
const DefaultMaxResults = 15

// Store persists catalog mutations. *db.DB satisfies it.
type Store interface {
	UpsertProgram(ctx context.Context, p types.RawProgram) error
}

// Options holds configuration for constructing an Engine.
type Options struct {
	CacheCapacity int
	CacheTTL      time.Duration
	MaxResults    int
	// Narrative is optional; without it RankWithNarrative is unavailable.
	Narrative *narrative.Service
	// Store is optional; when set, program updates are persisted before
	// the in-memory catalog is touched.
	Store Store
}

// Engine is the process-wide pipeline context: catalog, classifier and
// cache, constructed once and passed to every call site. There is no
// ambient singleton. The catalog is replaced copy-on-write, so concurrent
// ranking requests always see an immutable snapshot.
type Engine struct {
	mu      sync.RWMutex
	catalog []types.RawProgram

	classifier *classify.Classifier
	relCache   *cache.Cache
	narrative  *narrative.Service
	store      Store
	maxResults int
}

// New constructs the engine. Cache capacity and TTL are required
// configuration; programs are assumed to be pre-validated by the catalog
// loader.
func New(programs []types.RawProgram, opts Options) (*Engine, error) {
	relCache, err := cache.New(opts.CacheCapacity, opts.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create relevance cache: %w", err)
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	snapshot := make([]types.RawProgram, len(programs))
	copy(snapshot, programs)

	return &Engine{
		catalog:    snapshot,
		classifier: classify.New(relCache),
		relCache:   relCache,
		narrative:  opts.Narrative,
		store:      opts.Store,
		maxResults: maxResults,
	}, nil
}

// Catalog returns the current catalog snapshot.
func (e *Engine) Catalog() []types.RawProgram {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog
}

// Classify returns the full tier-annotated catalog in catalog order.
func (e *Engine) Classify() []types.ClassifiedProgram {
	return e.classifier.Classify(e.Catalog())
}

// Warm populates the classification cache ahead of the first request.
func (e *Engine) Warm(ctx context.Context) error {
	return e.classifier.Warm(ctx, e.Catalog(), 4)
}

// RankResult is the outcome of one ranking request.
type RankResult struct {
	RequestID     string                `json:"request_id"`
	Programs      []types.ScoredProgram `json:"programs"`
	ExcludedCount int                   `json:"excluded_count"`
	TotalPrograms int                   `json:"total_programs"`
	DurationMS    int64                 `json:"duration_ms"`
}

// Rank runs the classify → coarse filter → scored filter → sort pipeline
// for one request. Malformed criteria never fail the request; they
// degrade to an empty or best-effort result. maxResults <= 0 selects the
// engine default.
func (e *Engine) Rank(criteria *types.ProjectCriteria, maxResults int) RankResult {
	start := time.Now()
	result := RankResult{RequestID: uuid.NewString()}

	if criteria == nil {
		criteria = &types.ProjectCriteria{}
	}
	if maxResults <= 0 {
		maxResults = e.maxResults
	}

	snapshot := e.Catalog()
	result.TotalPrograms = len(snapshot)

	classified := e.classifier.Classify(snapshot)
	filtered := ranking.PreFilter(criteria, classified)
	result.ExcludedCount = filtered.ExcludedCount

	scored := ranking.Score(filtered.Programs, criteria)
	result.Programs = ranking.SortAndLimit(scored, criteria.Region, maxResults)
	result.DurationMS = time.Since(start).Milliseconds()
	return result
}

// RankWithNarrative ranks and then asks the narrative collaborator to
// assess the shortlist. Narrative failures propagate; the ranking itself
// never fails.
func (e *Engine) RankWithNarrative(ctx context.Context, criteria *types.ProjectCriteria, maxResults int) (RankResult, []types.NarrativeResult, error) {
	result := e.Rank(criteria, maxResults)
	if e.narrative == nil {
		return result, nil, fmt.Errorf("narrative service not configured")
	}

	assessments, err := e.narrative.AssessShortlist(ctx, criteria, result.Programs)
	if err != nil {
		return result, nil, fmt.Errorf("narrative assessment failed: %w", err)
	}
	return result, assessments, nil
}

// CacheInvalidation reports the cache side of a program update.
type CacheInvalidation struct {
	Success bool `json:"success"`
	Removed bool `json:"removed"`
}

// UpdateResult reports a program update.
type UpdateResult struct {
	Success           bool              `json:"success"`
	Created           bool              `json:"created"`
	Error             string            `json:"error,omitempty"`
	CacheInvalidation CacheInvalidation `json:"cache_invalidation"`
}

// UpdateProgram replaces a raw program (or appends a new one), then
// invalidates its cached classification so the next run recomputes it.
// This is the only mutation surface; it is serialized against concurrent
// updates, and ranking requests in flight keep their snapshot. The
// invalidation retires the program's cache key inside the critical
// section, so a classification of the old record that is still in flight
// cannot re-cache the stale result under a live key. With a store
// configured the update is persisted first; a store failure leaves the
// in-memory catalog untouched.
func (e *Engine) UpdateProgram(ctx context.Context, program types.RawProgram) UpdateResult {
	if err := catalog.ValidateProgram(&program); err != nil {
		return UpdateResult{Success: false, Error: err.Error()}
	}

	if e.store != nil {
		if err := e.store.UpsertProgram(ctx, program); err != nil {
			return UpdateResult{Success: false, Error: fmt.Sprintf("failed to persist program: %v", err)}
		}
	}

	e.mu.Lock()
	updated := make([]types.RawProgram, len(e.catalog))
	copy(updated, e.catalog)

	found := false
	for i := range updated {
		if updated[i].Name == program.Name {
			updated[i] = program
			found = true
			break
		}
	}
	if !found {
		updated = append(updated, program)
	}
	e.catalog = updated
	removed := e.classifier.Invalidate(program.Name)
	e.mu.Unlock()

	return UpdateResult{
		Success: true,
		Created: !found,
		CacheInvalidation: CacheInvalidation{
			Success: true,
			Removed: removed,
		},
	}
}

// Cache health statuses.
const (
	HealthHealthy  = "healthy"
	HealthWarning  = "warning"
	HealthCritical = "critical"
)

// Health-state thresholds. Hit-rate checks only kick in once the cache
// has seen enough lookups to be meaningful.
const (
	healthMinLookups = 100
	warnHitRate      = 0.5
	criticalHitRate  = 0.2
	warnFillRatio    = 0.9
)

// HealthReport summarizes cache and classification health.
type HealthReport struct {
	Status          string                 `json:"status"`
	CacheStats      cache.Stats            `json:"cache_stats"`
	TierStats       types.TierDistribution `json:"tier_stats"`
	Recommendations []string               `json:"recommendations"`
}

// CacheHealth inspects cache counters and the tier distribution and
// derives a status with operator recommendations.
func (e *Engine) CacheHealth() HealthReport {
	snapshot := e.Catalog()
	stats := e.classifier.Stats(snapshot)

	report := HealthReport{
		Status:          HealthHealthy,
		CacheStats:      stats.CacheStats,
		TierStats:       stats.TierDistribution,
		Recommendations: []string{},
	}

	cs := stats.CacheStats
	if cs.Lookups() >= healthMinLookups {
		switch {
		case cs.HitRate < criticalHitRate:
			report.Status = HealthCritical
			report.Recommendations = append(report.Recommendations, "hit rate critically low: check TTL and capacity against catalog size")
		case cs.HitRate < warnHitRate:
			report.Status = HealthWarning
			report.Recommendations = append(report.Recommendations, "hit rate below 50%: consider warming the cache or raising the TTL")
		}
	}

	if cs.Capacity > 0 && float64(cs.Size) >= warnFillRatio*float64(cs.Capacity) {
		if report.Status == HealthHealthy {
			report.Status = HealthWarning
		}
		report.Recommendations = append(report.Recommendations, "cache near capacity: eviction pressure will reduce the hit rate")
	}

	if stats.TierDistribution.Total() != len(snapshot) {
		report.Status = HealthCritical
		report.Recommendations = append(report.Recommendations, "tier counts diverge from catalog size: run maintenance with consistency validation")
	}

	if len(report.Recommendations) == 0 {
		report.Recommendations = append(report.Recommendations, "no action needed")
	}
	return report
}

// Maintenance runs cache maintenance against the current catalog.
func (e *Engine) Maintenance(opts classify.MaintenanceOptions) classify.MaintenanceResult {
	result := e.classifier.PerformMaintenance(e.Catalog(), opts)
	if !result.Success {
		log.Printf("[pipeline] maintenance reported failure: %s", result.ConsistencyError)
	}
	return result
}
