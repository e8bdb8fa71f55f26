package dedup

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"recipe-keeper/internal/infrastructure/cache"
	"recipe-keeper/internal/infrastructure/config"
	"recipe-keeper/internal/pkg/common"
)

// RecipeStore is the persistence collaborator. FetchEligibleRecipes must
// already exclude soft-deleted records and filter to the given user when one
// is supplied; the engine does no filtering of its own.
type RecipeStore interface {
	FetchEligibleRecipes(ctx context.Context, userID string) ([]common.Recipe, error)
	ResolveRecipesByIDs(ctx context.Context, ids []string) ([]common.Recipe, error)
	SoftDelete(ctx context.Context, id string) (*common.Recipe, error)
}

// Service is the duplicate detection engine. It owns no data: every input is
// passed in and every output is freshly allocated, so concurrent calls are
// safe.
type Service struct {
	store    RecipeStore
	cache    *cache.Manager
	defaults *config.DedupConfig
}

// NewService creates a new duplicate detection service. cacheManager may be
// nil when caching is disabled; defaults may be nil to use the compiled-in
// thresholds.
func NewService(store RecipeStore, cacheManager *cache.Manager, defaults *config.DedupConfig) *Service {
	return &Service{
		store:    store,
		cache:    cacheManager,
		defaults: defaults,
	}
}

// DetectionDefaults returns the baseline detection options, with the
// configured result threshold applied. Per-request options start from this.
func (s *Service) DetectionDefaults() DetectionOptions {
	opts := DefaultDetectionOptions()
	if s.defaults != nil {
		opts.SimilarityThreshold = s.defaults.SimilarityThreshold
	}
	return opts
}

// ScanDefaults returns the baseline scan options, with the configured scan
// threshold and pool limit applied.
func (s *Service) ScanDefaults() ScanOptions {
	opts := DefaultScanOptions()
	if s.defaults != nil {
		opts.SimilarityThreshold = s.defaults.ScanThreshold
		if s.defaults.ScanLimit > 0 {
			opts.Limit = s.defaults.ScanLimit
		}
	}
	return opts
}

// DetectDuplicates runs the enabled detectors for a candidate recipe against
// the caller's eligible pool and returns the ranked, deduplicated result.
func (s *Service) DetectDuplicates(ctx context.Context, candidate common.CandidateRecipe, userID string, opts DetectionOptions) (*DuplicateDetectionResult, error) {
	pool, err := s.store.FetchEligibleRecipes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch eligible recipes: %w", err)
	}

	result := detectAgainstPool(candidate, pool, opts)

	common.LogDebug("duplicate detection completed",
		zap.Int("pool_size", len(pool)),
		zap.Int("total_duplicates", result.TotalDuplicates),
		zap.Float64("highest_score", result.HighestSimilarityScore),
	)

	return result, nil
}

// detectAgainstPool is the in-memory detection pipeline shared by single
// detection and the full scan. Detector order is fixed and load-bearing: when
// several detectors match the same recipe, the first one to claim it decides
// the reported match type.
func detectAgainstPool(candidate common.CandidateRecipe, pool []common.Recipe, opts DetectionOptions) *DuplicateDetectionResult {
	eligible := make([]common.Recipe, 0, len(pool))
	for _, existing := range pool {
		if existing.DeletedAt != nil {
			continue
		}
		eligible = append(eligible, existing)
	}

	var matches []DuplicateRecipe
	if opts.CheckExactTitle {
		matches = append(matches, detectExactTitle(candidate, eligible)...)
	}
	if opts.CheckFuzzyTitle {
		matches = append(matches, detectFuzzyTitle(candidate, eligible)...)
	}
	if opts.CheckIngredientSimilarity {
		matches = append(matches, detectIngredientSimilarity(candidate, eligible)...)
	}
	if opts.CheckSourceURL {
		matches = append(matches, detectSourceURL(candidate, eligible)...)
	}
	if opts.CheckContentFingerprint {
		matches = append(matches, detectContentFingerprint(candidate, eligible)...)
	}

	// One entry per existing recipe, first detector wins.
	seen := make(map[string]struct{}, len(matches))
	unique := make([]DuplicateRecipe, 0, len(matches))
	for _, match := range matches {
		if _, ok := seen[match.Recipe.ID]; ok {
			continue
		}
		seen[match.Recipe.ID] = struct{}{}
		if match.SimilarityScore < opts.SimilarityThreshold {
			continue
		}
		unique = append(unique, match)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].SimilarityScore > unique[j].SimilarityScore
	})

	result := &DuplicateDetectionResult{
		Duplicates:      unique,
		HasDuplicates:   len(unique) > 0,
		TotalDuplicates: len(unique),
	}
	if len(unique) > 0 {
		result.HighestSimilarityScore = unique[0].SimilarityScore
	}
	return result
}

// GetDuplicateStats returns the cheap title-only duplicate estimate for a
// user's collection. Results are cached briefly since the scan over titles is
// read-heavy and tolerant of slight staleness.
func (s *Service) GetDuplicateStats(ctx context.Context, userID string) (*DuplicateStats, error) {
	cacheKey := "dedup:stats:" + userID

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var stats DuplicateStats
			if err := common.ParseJSON(cached, &stats); err == nil {
				common.LogCacheHit("duplicate_stats", cacheKey)
				return &stats, nil
			}
		}
		common.LogCacheMiss("duplicate_stats", cacheKey)
	}

	pool, err := s.store.FetchEligibleRecipes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch eligible recipes: %w", err)
	}

	titleCounts := make(map[string]int, len(pool))
	for _, recipe := range pool {
		titleCounts[NormalizeText(recipe.Title)]++
	}

	potential := 0
	for _, count := range titleCounts {
		potential += count - 1
	}

	stats := &DuplicateStats{
		TotalRecipes:        len(pool),
		PotentialDuplicates: potential,
	}
	if stats.TotalRecipes > 0 {
		stats.DuplicatePercentage = float64(potential) / float64(stats.TotalRecipes) * 100
	}

	if s.cache != nil {
		if encoded, err := common.ToJSON(stats); err == nil {
			if err := s.cache.Set(ctx, cacheKey, encoded); err != nil {
				common.LogWarn("failed to cache duplicate stats", zap.Error(err))
			}
		}
	}

	return stats, nil
}
