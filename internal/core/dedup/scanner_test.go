package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-keeper/internal/pkg/common"
)

func TestFindAllDuplicatesGroupsByTitle(t *testing.T) {
	store := &stubStore{recipes: []common.Recipe{
		storedRecipe("a", "Chocolate Chip Cookies", "flour"),
		storedRecipe("b", "chocolate chip cookies", "cocoa"),
		storedRecipe("c", "CHOCOLATE CHIP COOKIES!", "oats"),
		storedRecipe("d", "Beef Stew", "beef"),
	}}
	svc := NewService(store, nil, nil)

	groups, err := svc.FindAllDuplicates(context.Background(), "", DefaultScanOptions())
	require.NoError(t, err)

	require.Len(t, groups, 1)
	group := groups[0]
	assert.Equal(t, MatchExactTitle, group.MatchType)
	assert.Equal(t, 1.0, group.SimilarityScore)

	ids := make([]string, 0, len(group.Recipes))
	for _, r := range group.Recipes {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, "a", group.Recipes[0].ID, "seed leads the group")
}

func TestFindAllDuplicatesDistinctGroups(t *testing.T) {
	store := &stubStore{recipes: []common.Recipe{
		storedRecipe("a1", "Chocolate Chip Cookies", "flour"),
		storedRecipe("a2", "Chocolate Chip Cookies", "cocoa"),
		storedRecipe("b1", "Beef Stew", "beef"),
		storedRecipe("b2", "Beef Stew", "carrots"),
	}}
	svc := NewService(store, nil, nil)

	groups, err := svc.FindAllDuplicates(context.Background(), "", DefaultScanOptions())
	require.NoError(t, err)

	require.Len(t, groups, 2)

	// Every recipe lands in exactly one group.
	seen := make(map[string]int)
	for _, group := range groups {
		assert.GreaterOrEqual(t, len(group.Recipes), 2)
		for _, r := range group.Recipes {
			seen[r.ID]++
		}
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "recipe %s grouped more than once", id)
	}
	assert.Len(t, seen, 4)
}

func TestFindAllDuplicatesNoGroups(t *testing.T) {
	store := &stubStore{recipes: []common.Recipe{
		storedRecipe("a", "Chocolate Chip Cookies", "flour"),
		storedRecipe("b", "Beef Stew", "beef"),
	}}
	svc := NewService(store, nil, nil)

	groups, err := svc.FindAllDuplicates(context.Background(), "", DefaultScanOptions())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFindAllDuplicatesLimitCapsPool(t *testing.T) {
	store := &stubStore{recipes: []common.Recipe{
		storedRecipe("a", "Chocolate Chip Cookies", "flour"),
		storedRecipe("b", "Chocolate Chip Cookies", "cocoa"),
	}}
	svc := NewService(store, nil, nil)

	opts := DefaultScanOptions()
	opts.Limit = 1

	// With the pool capped at one recipe there is nothing to compare against.
	groups, err := svc.FindAllDuplicates(context.Background(), "", opts)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestMergeDuplicateRecipes(t *testing.T) {
	store := &stubStore{recipes: []common.Recipe{
		storedRecipe("keep", "Chocolate Chip Cookies", "flour"),
		storedRecipe("dup1", "Chocolate Chip Cookies", "flour"),
		storedRecipe("dup2", "Chocolate Chip Cookies", "flour"),
	}}
	svc := NewService(store, nil, nil)

	result, err := svc.MergeDuplicateRecipes(context.Background(), []string{"keep", "dup1", "dup2"}, "keep")
	require.NoError(t, err)

	assert.Equal(t, "keep", result.KeptRecipe.ID)
	require.Len(t, result.DeletedRecipes, 2)
	assert.Equal(t, "dup1", result.DeletedRecipes[0].ID)
	assert.Equal(t, "dup2", result.DeletedRecipes[1].ID)
	assert.Equal(t, []string{"dup1", "dup2"}, store.deleted)
}

func TestMergeDuplicateRecipesKeepNotListed(t *testing.T) {
	store := &stubStore{recipes: []common.Recipe{
		storedRecipe("dup1", "Chocolate Chip Cookies", "flour"),
		storedRecipe("other", "Chocolate Chip Cookies", "flour"),
	}}
	svc := NewService(store, nil, nil)

	result, err := svc.MergeDuplicateRecipes(context.Background(), []string{"dup1"}, "other")
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
	assert.Empty(t, store.deleted, "nothing may be deleted on validation failure")
}

func TestMergeDuplicateRecipesKeepUnresolvable(t *testing.T) {
	store := &stubStore{recipes: []common.Recipe{
		storedRecipe("dup1", "Chocolate Chip Cookies", "flour"),
	}}
	svc := NewService(store, nil, nil)

	result, err := svc.MergeDuplicateRecipes(context.Background(), []string{"ghost", "dup1"}, "ghost")
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, common.IsNotFoundError(err))
	assert.Empty(t, store.deleted)
}

func TestMergeDuplicateRecipesSkipsUnresolvedIDs(t *testing.T) {
	store := &stubStore{recipes: []common.Recipe{
		storedRecipe("keep", "Chocolate Chip Cookies", "flour"),
		storedRecipe("dup1", "Chocolate Chip Cookies", "flour"),
	}}
	svc := NewService(store, nil, nil)

	result, err := svc.MergeDuplicateRecipes(context.Background(), []string{"keep", "dup1", "ghost"}, "keep")
	require.NoError(t, err)

	require.Len(t, result.DeletedRecipes, 1)
	assert.Equal(t, "dup1", result.DeletedRecipes[0].ID)
	assert.Equal(t, []string{"dup1"}, store.deleted)
}

func TestMergeDuplicateRecipesSkipsAlreadyDeleted(t *testing.T) {
	gone := storedRecipe("gone", "Chocolate Chip Cookies", "flour")
	now := time.Now()
	gone.DeletedAt = &now

	store := &stubStore{recipes: []common.Recipe{
		storedRecipe("keep", "Chocolate Chip Cookies", "flour"),
		gone,
	}}
	svc := NewService(store, nil, nil)

	// Soft-deleted rows do not resolve, so they are skipped like unknown ids.
	result, err := svc.MergeDuplicateRecipes(context.Background(), []string{"keep", "gone"}, "keep")
	require.NoError(t, err)
	assert.Empty(t, result.DeletedRecipes)
	assert.Empty(t, store.deleted)
}
