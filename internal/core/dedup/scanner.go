package dedup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipe-keeper/internal/pkg/common"
)

// FindAllDuplicates scans a user's collection for duplicate groups. The pool
// is fetched once and capped at opts.Limit; every following comparison runs
// in memory, so the scan issues no further storage calls. Each recipe joins
// at most one group: the first seed to claim it wins and grouped recipes are
// excluded from later seeds. Worst case is O(n²) detector invocations over
// the capped pool.
//
// Grouping is deliberately one hop from each seed, not a transitive closure;
// changing that would change observable results.
func (s *Service) FindAllDuplicates(ctx context.Context, userID string, opts ScanOptions) ([]DuplicateGroup, error) {
	pool, err := s.store.FetchEligibleRecipes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch eligible recipes: %w", err)
	}
	if opts.Limit > 0 && len(pool) > opts.Limit {
		pool = pool[:opts.Limit]
	}

	detectOpts := DefaultDetectionOptions()
	detectOpts.SimilarityThreshold = opts.SimilarityThreshold

	processed := make(map[string]struct{}, len(pool))
	var groups []DuplicateGroup

	for _, seed := range pool {
		if _, ok := processed[seed.ID]; ok {
			continue
		}

		remaining := make([]common.Recipe, 0, len(pool))
		for _, other := range pool {
			if other.ID == seed.ID {
				continue
			}
			if _, ok := processed[other.ID]; ok {
				continue
			}
			remaining = append(remaining, other)
		}

		result := detectAgainstPool(seed.CandidateRecipe, remaining, detectOpts)
		if !result.HasDuplicates {
			continue
		}

		group := DuplicateGroup{
			Recipes: make([]common.Recipe, 0, result.TotalDuplicates+1),
			// Duplicates is sorted descending, so the first entry is both
			// the highest score and the first match.
			SimilarityScore: result.Duplicates[0].SimilarityScore,
			MatchType:       result.Duplicates[0].MatchType,
		}
		group.Recipes = append(group.Recipes, seed)
		processed[seed.ID] = struct{}{}
		for _, match := range result.Duplicates {
			group.Recipes = append(group.Recipes, match.Recipe)
			processed[match.Recipe.ID] = struct{}{}
		}

		groups = append(groups, group)
	}

	common.LogInfo("duplicate scan completed",
		zap.Int("pool_size", len(pool)),
		zap.Int("groups", len(groups)),
		zap.Float64("threshold", opts.SimilarityThreshold),
	)

	return groups, nil
}

// MergeDuplicateRecipes collapses a duplicate group into one surviving
// recipe. Every resolved recipe except the kept one is soft-deleted through
// the persistence collaborator. Ids that fail to resolve are skipped with a
// warning rather than failing the merge.
func (s *Service) MergeDuplicateRecipes(ctx context.Context, recipeIDs []string, keepRecipeID string) (*MergeResult, error) {
	keepListed := false
	for _, id := range recipeIDs {
		if id == keepRecipeID {
			keepListed = true
			break
		}
	}
	if !keepListed {
		return nil, common.NewValidationError("keep recipe id must be included in the recipe id list")
	}

	resolved, err := s.store.ResolveRecipesByIDs(ctx, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipes: %w", err)
	}

	resolvedByID := make(map[string]common.Recipe, len(resolved))
	for _, recipe := range resolved {
		resolvedByID[recipe.ID] = recipe
	}

	kept, ok := resolvedByID[keepRecipeID]
	if !ok {
		return nil, common.NewNotFoundError("recipe to keep not found")
	}

	for _, id := range recipeIDs {
		if _, ok := resolvedByID[id]; !ok {
			common.LogWarn("skipping unresolved recipe during merge",
				zap.String("recipe_id", id),
				zap.String("keep_recipe_id", keepRecipeID),
			)
		}
	}

	deleted := make([]common.Recipe, 0, len(resolved)-1)
	for _, id := range recipeIDs {
		if id == keepRecipeID {
			continue
		}
		recipe, ok := resolvedByID[id]
		if !ok {
			continue
		}
		if _, err := s.store.SoftDelete(ctx, recipe.ID); err != nil {
			return nil, fmt.Errorf("failed to delete recipe %s: %w", recipe.ID, err)
		}
		deleted = append(deleted, recipe)
	}

	common.LogInfo("duplicate recipes merged",
		zap.String("kept_recipe_id", kept.ID),
		zap.Int("deleted_count", len(deleted)),
	)

	return &MergeResult{
		KeptRecipe:     kept,
		DeletedRecipes: deleted,
	}, nil
}
