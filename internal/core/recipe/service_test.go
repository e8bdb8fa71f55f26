package recipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-keeper/internal/pkg/common"
)

// fakeStore records calls and returns canned recipes.
type fakeStore struct {
	created    *common.CandidateRecipe
	listLimit  int
	listOffset int
}

func (f *fakeStore) CreateRecipe(ctx context.Context, userID string, candidate common.CandidateRecipe) (*common.Recipe, error) {
	f.created = &candidate
	return &common.Recipe{ID: "new-id", UserID: userID, CandidateRecipe: candidate}, nil
}

func (f *fakeStore) GetRecipe(ctx context.Context, id string) (*common.Recipe, error) {
	return &common.Recipe{ID: id}, nil
}

func (f *fakeStore) ListRecipes(ctx context.Context, userID string, limit, offset int) ([]common.Recipe, error) {
	f.listLimit = limit
	f.listOffset = offset
	return nil, nil
}

func (f *fakeStore) UpdateRecipe(ctx context.Context, id string, candidate common.CandidateRecipe) (*common.Recipe, error) {
	return &common.Recipe{ID: id, CandidateRecipe: candidate}, nil
}

func (f *fakeStore) SoftDelete(ctx context.Context, id string) (*common.Recipe, error) {
	return &common.Recipe{ID: id}, nil
}

func TestCreateValid(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	recipe, err := svc.Create(context.Background(), "user-1", common.CandidateRecipe{
		Title:       "Chocolate Chip Cookies",
		Ingredients: []common.Ingredient{{Name: "flour"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", recipe.ID)
	assert.Equal(t, "user-1", recipe.UserID)
	require.NotNil(t, store.created)
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	svc := NewService(&fakeStore{})

	_, err := svc.Create(context.Background(), "", common.CandidateRecipe{Title: "   "})
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
}

func TestCreateRejectsNamelessIngredient(t *testing.T) {
	svc := NewService(&fakeStore{})

	_, err := svc.Create(context.Background(), "", common.CandidateRecipe{
		Title:       "Cookies",
		Ingredients: []common.Ingredient{{Name: "flour"}, {Name: " "}},
	})
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
	assert.Contains(t, err.Error(), "ingredient 2")
}

func TestCreateRejectsNonPositiveValues(t *testing.T) {
	svc := NewService(&fakeStore{})

	zero := 0.0
	_, err := svc.Create(context.Background(), "", common.CandidateRecipe{
		Title:       "Cookies",
		Ingredients: []common.Ingredient{{Name: "flour", Quantity: &zero}},
	})
	assert.True(t, common.IsValidationError(err))

	badTime := -5
	_, err = svc.Create(context.Background(), "", common.CandidateRecipe{
		Title:       "Cookies",
		CookingTime: &badTime,
	})
	assert.True(t, common.IsValidationError(err))

	badServings := 0
	_, err = svc.Create(context.Background(), "", common.CandidateRecipe{
		Title:    "Cookies",
		Servings: &badServings,
	})
	assert.True(t, common.IsValidationError(err))
}

func TestCreateRenumbersSteps(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	_, err := svc.Create(context.Background(), "", common.CandidateRecipe{
		Title: "Cookies",
		Instructions: []common.Instruction{
			{Step: 7, Instruction: "Mix"},
			{Step: 3, Instruction: "Bake"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, store.created)
	assert.Equal(t, 1, store.created.Instructions[0].Step)
	assert.Equal(t, 2, store.created.Instructions[1].Step)
}

func TestCreateRejectsEmptyInstruction(t *testing.T) {
	svc := NewService(&fakeStore{})

	_, err := svc.Create(context.Background(), "", common.CandidateRecipe{
		Title:        "Cookies",
		Instructions: []common.Instruction{{Step: 1, Instruction: "  "}},
	})
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
}

func TestUpdateValidates(t *testing.T) {
	svc := NewService(&fakeStore{})

	_, err := svc.Update(context.Background(), "some-id", common.CandidateRecipe{Title: ""})
	assert.True(t, common.IsValidationError(err))

	updated, err := svc.Update(context.Background(), "some-id", common.CandidateRecipe{Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestListClampsPaging(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.List(ctx, "", 0, -3)
	require.NoError(t, err)
	assert.Equal(t, defaultListLimit, store.listLimit)
	assert.Equal(t, 0, store.listOffset)

	_, err = svc.List(ctx, "", 10_000, 5)
	require.NoError(t, err)
	assert.Equal(t, maxListLimit, store.listLimit)
	assert.Equal(t, 5, store.listOffset)
}
