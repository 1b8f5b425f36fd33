package classify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lukas/foerder-scout/internal/cache"
	"github.com/lukas/foerder-scout/internal/types"
)

// Classifier annotates raw programs with relevance tiers, memoizing
// results in the relevance cache. Classification is pure apart from the
// cache write: re-classifying an unchanged program yields an identical
// result except for the timestamp.
type Classifier struct {
	cache       *cache.Cache
	ruleVersion string

	// mu guards the generation counters. Invalidation bumps a program's
	// generation, so a classification computed against the old record
	// stores under a retired key instead of resurrecting the stale entry.
	mu          sync.Mutex
	epoch       uint64
	generations map[string]uint64

	// now is swappable for tests.
	now func() time.Time
}

// New creates a classifier backed by the given cache. A nil cache is
// tolerated: every classification is then computed fresh.
func New(c *cache.Cache) *Classifier {
	return &Classifier{
		cache:       c,
		ruleVersion: RuleVersion,
		generations: make(map[string]uint64),
		now:         time.Now,
	}
}

// CacheKey returns the cache key for a program name under the current
// rule version and invalidation generation.
func (cl *Classifier) CacheKey(name string) string {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.keyLocked(name)
}

func (cl *Classifier) keyLocked(name string) string {
	return fmt.Sprintf("%s/%d.%d/%s", cl.ruleVersion, cl.epoch, cl.generations[name], name)
}

// Classify annotates every catalog program, in catalog order. Cached
// classifications are reused; misses are computed and stored.
func (cl *Classifier) Classify(catalog []types.RawProgram) []types.ClassifiedProgram {
	classified := make([]types.ClassifiedProgram, 0, len(catalog))
	for i := range catalog {
		classified = append(classified, cl.classifyCached(&catalog[i]))
	}
	return classified
}

// classifyCached returns the memoized classification for p, computing and
// storing it on a miss.
func (cl *Classifier) classifyCached(p *types.RawProgram) types.ClassifiedProgram {
	if cl.cache == nil {
		return cl.ClassifyProgram(p)
	}

	key := cl.CacheKey(p.Name)
	if cached, ok := cl.cache.Get(key); ok {
		return cached
	}

	result := cl.ClassifyProgram(p)
	cl.cache.Set(key, result)
	return result
}

// ClassifyProgram computes the classification for a single program from
// its static attributes. Pure: no cache access, no side effects.
func (cl *Classifier) ClassifyProgram(p *types.RawProgram) types.ClassifiedProgram {
	origin := deriveOrigin(p)
	regionSpecific := deriveRegionSpecific(p)
	domainHistory := deriveDomainHistory(p)

	result := types.ClassifiedProgram{
		RawProgram:              *p,
		RelevanceTier:           deriveTier(regionSpecific, domainHistory, origin, p),
		IsRegionSpecific:        regionSpecific,
		HasDomainFundingHistory: domainHistory,
		Origin:                  origin,
		ImplementationLevel:     origin,
		ClassifiedAt:            cl.now(),
	}
	if rate, ok := successRateByOrigin[origin]; ok {
		r := rate
		result.SuccessRate = &r
	}
	return result
}

// Invalidate retires the cached classification for a program so the next
// classification recomputes it. The raw program itself is never touched.
// An in-flight miss that was computed before the call still writes its
// result, but under the retired key, where no later lookup finds it.
// Returns true when a cache entry was removed.
func (cl *Classifier) Invalidate(name string) bool {
	if cl.cache == nil {
		return false
	}
	cl.mu.Lock()
	stale := cl.keyLocked(name)
	cl.generations[name]++
	cl.mu.Unlock()
	return cl.cache.Invalidate(stale)
}

// InvalidateAll retires every cached classification for the current rule
// version and returns the number of entries removed.
func (cl *Classifier) InvalidateAll() int {
	if cl.cache == nil {
		return 0
	}
	cl.mu.Lock()
	cl.epoch++
	cl.mu.Unlock()
	return cl.cache.InvalidatePrefix(cl.ruleVersion + "/")
}

// Warm classifies the whole catalog with bounded parallelism, populating
// the cache ahead of the first ranking request. The per-request pipeline
// stays synchronous; only the warm-up fans out.
func (cl *Classifier) Warm(ctx context.Context, catalog []types.RawProgram, parallelism int) error {
	if parallelism < 1 {
		parallelism = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := range catalog {
		p := &catalog[i]
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			cl.classifyCached(p)
			return nil
		})
	}
	return g.Wait()
}

// StatsResult reports the tier distribution of a classification run and
// the cache health counters backing it.
type StatsResult struct {
	TierDistribution types.TierDistribution `json:"tier_distribution"`
	CacheStats       cache.Stats            `json:"cache_stats"`
}

// Stats classifies the catalog and returns tier distribution and cache
// counters.
func (cl *Classifier) Stats(catalog []types.RawProgram) StatsResult {
	distribution := make(types.TierDistribution)
	for _, p := range cl.Classify(catalog) {
		distribution[p.RelevanceTier]++
	}

	result := StatsResult{TierDistribution: distribution}
	if cl.cache != nil {
		result.CacheStats = cl.cache.Stats()
	}
	return result
}

// MaintenanceOptions selects which maintenance actions to run.
type MaintenanceOptions struct {
	CleanExpired        bool `json:"clean_expired"`
	OptimizeMemory      bool `json:"optimize_memory"`
	ValidateConsistency bool `json:"validate_consistency"`
}

// MaintenanceResult reports what maintenance did. A consistency failure is
// reported here as a structured result, never raised.
type MaintenanceResult struct {
	Success          bool     `json:"success"`
	Actions          []string `json:"actions"`
	ConsistencyError string   `json:"consistency_error,omitempty"`
}

// PerformMaintenance runs the selected maintenance actions against the
// catalog: expired-entry sweep, memory compaction and a tier-count
// consistency check (the per-tier counts must sum to the catalog size).
func (cl *Classifier) PerformMaintenance(catalog []types.RawProgram, opts MaintenanceOptions) MaintenanceResult {
	result := MaintenanceResult{Success: true, Actions: []string{}}

	if opts.CleanExpired && cl.cache != nil {
		removed := cl.cache.CleanExpired()
		result.Actions = append(result.Actions, fmt.Sprintf("removed %d expired cache entries", removed))
	}

	if opts.OptimizeMemory && cl.cache != nil {
		cl.cache.Compact()
		result.Actions = append(result.Actions, "compacted cache index")
	}

	if opts.ValidateConsistency {
		distribution := make(types.TierDistribution)
		for _, p := range cl.Classify(catalog) {
			if p.RelevanceTier < types.TierHighest || p.RelevanceTier > types.TierExcluded {
				result.Success = false
				result.ConsistencyError = fmt.Sprintf("program %q has tier %d outside 1..4", p.Name, p.RelevanceTier)
				log.Printf("[classify] consistency check failed: %s", result.ConsistencyError)
				return result
			}
			distribution[p.RelevanceTier]++
		}

		if total := distribution.Total(); total != len(catalog) {
			result.Success = false
			result.ConsistencyError = fmt.Sprintf("tier counts sum to %d, catalog has %d programs", total, len(catalog))
			log.Printf("[classify] consistency check failed: %s", result.ConsistencyError)
			return result
		}
		result.Actions = append(result.Actions, fmt.Sprintf("verified tier counts for %d programs", len(catalog)))
	}

	return result
}
