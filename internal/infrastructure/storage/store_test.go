package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-keeper/internal/pkg/common"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleCandidate(title string) common.CandidateRecipe {
	quantity := 2.5
	cookingTime := 25
	servings := 12
	return common.CandidateRecipe{
		Title:       title,
		Description: "A weeknight favorite",
		Ingredients: []common.Ingredient{
			{Name: "flour", Quantity: &quantity, Unit: "cups"},
			{Name: "sugar"},
		},
		Instructions: []common.Instruction{
			{Step: 1, Instruction: "Mix the dry ingredients"},
			{Step: 2, Instruction: "Bake until golden"},
		},
		CookingTime:  &cookingTime,
		Servings:     &servings,
		Source:       "https://example.com/cookies",
		IsVegetarian: true,
	}
}

func TestCreateAndGetRecipe(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateRecipe(ctx, "user-1", sampleCandidate("Chocolate Chip Cookies"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "user-1", created.UserID)
	assert.Nil(t, created.DeletedAt)

	fetched, err := store.GetRecipe(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Chocolate Chip Cookies", fetched.Title)
	assert.Equal(t, "A weeknight favorite", fetched.Description)
	require.Len(t, fetched.Ingredients, 2)
	assert.Equal(t, "flour", fetched.Ingredients[0].Name)
	require.NotNil(t, fetched.Ingredients[0].Quantity)
	assert.Equal(t, 2.5, *fetched.Ingredients[0].Quantity)
	require.Len(t, fetched.Instructions, 2)
	assert.Equal(t, "Bake until golden", fetched.Instructions[1].Instruction)
	require.NotNil(t, fetched.CookingTime)
	assert.Equal(t, 25, *fetched.CookingTime)
	require.NotNil(t, fetched.Servings)
	assert.Equal(t, 12, *fetched.Servings)
	assert.True(t, fetched.IsVegetarian)
	assert.False(t, fetched.IsVegan)
	assert.Equal(t, created.CreatedAt.Unix(), fetched.CreatedAt.Unix())
}

func TestGetRecipeNotFound(t *testing.T) {
	store := newTestStore(t)

	recipe, err := store.GetRecipe(context.Background(), "no-such-id")
	assert.Nil(t, recipe)
	require.Error(t, err)
	assert.True(t, common.IsNotFoundError(err))
}

func TestCreateRecipeEmptyCollections(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateRecipe(ctx, "", common.CandidateRecipe{Title: "Bare Minimum"})
	require.NoError(t, err)

	fetched, err := store.GetRecipe(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.Ingredients)
	assert.Empty(t, fetched.Instructions)
	assert.Nil(t, fetched.CookingTime)
	assert.Nil(t, fetched.Servings)
}

func TestUpdateRecipe(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateRecipe(ctx, "user-1", sampleCandidate("Chocolate Chip Cookies"))
	require.NoError(t, err)

	updated, err := store.UpdateRecipe(ctx, created.ID, common.CandidateRecipe{
		Title:       "Double Chocolate Cookies",
		Ingredients: []common.Ingredient{{Name: "cocoa"}},
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Double Chocolate Cookies", updated.Title)

	fetched, err := store.GetRecipe(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Double Chocolate Cookies", fetched.Title)
	require.Len(t, fetched.Ingredients, 1)
	assert.Equal(t, "cocoa", fetched.Ingredients[0].Name)
	assert.Nil(t, fetched.CookingTime, "update replaces content wholesale")
}

func TestUpdateRecipeNotFound(t *testing.T) {
	store := newTestStore(t)

	recipe, err := store.UpdateRecipe(context.Background(), "no-such-id", common.CandidateRecipe{Title: "Nope"})
	assert.Nil(t, recipe)
	assert.True(t, common.IsNotFoundError(err))
}

func TestSoftDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateRecipe(ctx, "user-1", sampleCandidate("Chocolate Chip Cookies"))
	require.NoError(t, err)

	deleted, err := store.SoftDelete(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted.DeletedAt)

	_, err = store.GetRecipe(ctx, created.ID)
	assert.True(t, common.IsNotFoundError(err))

	// Deleting again is a not-found, not a no-op.
	_, err = store.SoftDelete(ctx, created.ID)
	assert.True(t, common.IsNotFoundError(err))
}

func TestFetchEligibleRecipesExcludesDeleted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	kept, err := store.CreateRecipe(ctx, "user-1", sampleCandidate("Keeper"))
	require.NoError(t, err)
	gone, err := store.CreateRecipe(ctx, "user-1", sampleCandidate("Goner"))
	require.NoError(t, err)

	_, err = store.SoftDelete(ctx, gone.ID)
	require.NoError(t, err)

	recipes, err := store.FetchEligibleRecipes(ctx, "")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, kept.ID, recipes[0].ID)
}

func TestFetchEligibleRecipesUserFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mine, err := store.CreateRecipe(ctx, "user-a", sampleCandidate("Mine"))
	require.NoError(t, err)
	_, err = store.CreateRecipe(ctx, "user-b", sampleCandidate("Theirs"))
	require.NoError(t, err)

	recipes, err := store.FetchEligibleRecipes(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, mine.ID, recipes[0].ID)

	all, err := store.FetchEligibleRecipes(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListRecipesPaging(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two", "Three"} {
		_, err := store.CreateRecipe(ctx, "user-1", sampleCandidate(title))
		require.NoError(t, err)
	}

	page, err := store.ListRecipes(ctx, "user-1", 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := store.ListRecipes(ctx, "user-1", 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestResolveRecipesByIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.CreateRecipe(ctx, "user-1", sampleCandidate("First"))
	require.NoError(t, err)
	second, err := store.CreateRecipe(ctx, "user-1", sampleCandidate("Second"))
	require.NoError(t, err)

	resolved, err := store.ResolveRecipesByIDs(ctx, []string{first.ID, second.ID, "ghost"})
	require.NoError(t, err)

	ids := make([]string, 0, len(resolved))
	for _, r := range resolved {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
}

func TestResolveRecipesByIDsEmpty(t *testing.T) {
	store := newTestStore(t)

	resolved, err := store.ResolveRecipesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestResolveRecipesByIDsSkipsDeleted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateRecipe(ctx, "user-1", sampleCandidate("Doomed"))
	require.NoError(t, err)
	_, err = store.SoftDelete(ctx, created.ID)
	require.NoError(t, err)

	resolved, err := store.ResolveRecipesByIDs(ctx, []string{created.ID})
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestMigrateIdempotent(t *testing.T) {
	store := newTestStore(t)

	// Open already ran the migrations; running them again must be a no-op.
	require.NoError(t, store.migrate())

	_, err := store.CreateRecipe(context.Background(), "user-1", sampleCandidate("Still Works"))
	assert.NoError(t, err)
}
