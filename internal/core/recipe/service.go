package recipe

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"recipe-keeper/internal/pkg/common"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Store is the persistence surface the recipe service needs.
type Store interface {
	CreateRecipe(ctx context.Context, userID string, candidate common.CandidateRecipe) (*common.Recipe, error)
	GetRecipe(ctx context.Context, id string) (*common.Recipe, error)
	ListRecipes(ctx context.Context, userID string, limit, offset int) ([]common.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, candidate common.CandidateRecipe) (*common.Recipe, error)
	SoftDelete(ctx context.Context, id string) (*common.Recipe, error)
}

// Service handles recipe CRUD on top of the store.
type Service struct {
	store Store
}

// NewService creates a new recipe service.
func NewService(store Store) *Service {
	return &Service{
		store: store,
	}
}

// Create validates and persists a new recipe.
func (s *Service) Create(ctx context.Context, userID string, candidate common.CandidateRecipe) (*common.Recipe, error) {
	if err := validateCandidate(&candidate); err != nil {
		return nil, err
	}

	recipe, err := s.store.CreateRecipe(ctx, userID, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	common.LogInfo("recipe created",
		zap.String("recipe_id", recipe.ID),
		zap.String("title", recipe.Title),
	)

	return recipe, nil
}

// Get returns a recipe by id.
func (s *Service) Get(ctx context.Context, id string) (*common.Recipe, error) {
	return s.store.GetRecipe(ctx, id)
}

// List returns non-deleted recipes with limit/offset paging.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]common.Recipe, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListRecipes(ctx, userID, limit, offset)
}

// Update validates and replaces the content of an existing recipe.
func (s *Service) Update(ctx context.Context, id string, candidate common.CandidateRecipe) (*common.Recipe, error) {
	if err := validateCandidate(&candidate); err != nil {
		return nil, err
	}

	recipe, err := s.store.UpdateRecipe(ctx, id, candidate)
	if err != nil {
		return nil, err
	}

	common.LogInfo("recipe updated",
		zap.String("recipe_id", recipe.ID),
	)

	return recipe, nil
}

// Delete soft-deletes a recipe.
func (s *Service) Delete(ctx context.Context, id string) (*common.Recipe, error) {
	recipe, err := s.store.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}

	common.LogInfo("recipe deleted",
		zap.String("recipe_id", recipe.ID),
	)

	return recipe, nil
}

// validateCandidate checks the fields callers must supply and fills in the
// ordering the store expects.
func validateCandidate(candidate *common.CandidateRecipe) error {
	if strings.TrimSpace(candidate.Title) == "" {
		return common.NewValidationError("recipe title is required")
	}

	for i, ing := range candidate.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return common.NewValidationError(fmt.Sprintf("ingredient %d has no name", i+1))
		}
		if ing.Quantity != nil && *ing.Quantity <= 0 {
			return common.NewValidationError(fmt.Sprintf("ingredient %d quantity must be positive", i+1))
		}
	}

	for i := range candidate.Instructions {
		if strings.TrimSpace(candidate.Instructions[i].Instruction) == "" {
			return common.NewValidationError(fmt.Sprintf("instruction %d has no text", i+1))
		}
		// Step numbers are authoritative by position.
		candidate.Instructions[i].Step = i + 1
	}

	if candidate.CookingTime != nil && *candidate.CookingTime <= 0 {
		return common.NewValidationError("cooking time must be positive")
	}
	if candidate.Servings != nil && *candidate.Servings <= 0 {
		return common.NewValidationError("servings must be positive")
	}

	return nil
}
