package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Lasagna", "lasagna"},
		{"  Spaghetti   Carbonara ", "spaghetti-carbonara"},
		{"Mac & Cheese!!", "mac-cheese"},
		{"Crème brûlée", "crème-brûlée"},
		{"--", ""},
		{"Pasta 2.0", "pasta-2-0"},
	}

	for _, tt := range testCases {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestCreateRecipe(t *testing.T) {
	db := setupTestDB(t)
	service := NewRecipeService(db)
	ctx := context.Background()

	author := createUser(t, db, "chef", models.RoleUser)
	tomato := createIngredient(t, db, "tomato")
	grams := createUnit(t, db, "g")

	recipe, err := service.CreateRecipe(ctx, author.ID, RecipeInput{
		Title:       "Tomato Soup",
		Content:     "Simmer.",
		Ingredients: []RecipeIngredientInput{{IngredientID: tomato.ID, UnitID: grams.ID, Quantity: 150}},
	})
	require.NoError(t, err)
	assert.Equal(t, "tomato-soup", recipe.Slug)
	assert.Equal(t, author.ID, recipe.AuthorID)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "tomato", recipe.Ingredients[0].Ingredient.Name)

	var events []models.FeedItem
	require.NoError(t, db.Where("recipe_id = ?", recipe.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventNewRecipe, events[0].EventType)

	_, err = service.CreateRecipe(ctx, author.ID, RecipeInput{Title: "Tomato Soup"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateRecipeValidation(t *testing.T) {
	db := setupTestDB(t)
	service := NewRecipeService(db)
	ctx := context.Background()

	author := createUser(t, db, "chef", models.RoleUser)
	tomato := createIngredient(t, db, "tomato")
	grams := createUnit(t, db, "g")

	testCases := []struct {
		name     string
		input    RecipeInput
		expected error
	}{
		{name: "blank title", input: RecipeInput{Title: "   "}, expected: ErrValidation},
		{name: "title without letters", input: RecipeInput{Title: "!!!"}, expected: ErrValidation},
		{
			name: "zero quantity",
			input: RecipeInput{Title: "Soup", Ingredients: []RecipeIngredientInput{
				{IngredientID: tomato.ID, UnitID: grams.ID, Quantity: 0},
			}},
			expected: ErrValidation,
		},
		{
			name: "unknown ingredient",
			input: RecipeInput{Title: "Soup", Ingredients: []RecipeIngredientInput{
				{IngredientID: 99, UnitID: grams.ID, Quantity: 1},
			}},
			expected: ErrNotFound,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateRecipe(ctx, author.ID, tt.input)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestUpdateRecipe(t *testing.T) {
	db := setupTestDB(t)
	service := NewRecipeService(db)
	ctx := context.Background()

	author := createUser(t, db, "chef", models.RoleUser)
	stranger := createUser(t, db, "stranger", models.RoleUser)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	tomato := createIngredient(t, db, "tomato")
	basil := createIngredient(t, db, "basil")
	grams := createUnit(t, db, "g")

	recipe, err := service.CreateRecipe(ctx, author.ID, RecipeInput{
		Title:       "Pasta",
		Ingredients: []RecipeIngredientInput{{IngredientID: tomato.ID, UnitID: grams.ID, Quantity: 100}},
	})
	require.NoError(t, err)

	input := RecipeInput{
		Title:       "Pasta al Pomodoro",
		Ingredients: []RecipeIngredientInput{{IngredientID: basil.ID, UnitID: grams.ID, Quantity: 5}},
	}
	_, err = service.UpdateRecipe(ctx, stranger.ID, recipe.ID, input)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := service.UpdateRecipe(ctx, admin.ID, recipe.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "pasta-al-pomodoro", updated.Slug)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, basil.ID, updated.Ingredients[0].IngredientID)

	var events []models.FeedItem
	require.NoError(t, db.Where("recipe_id = ?", recipe.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventUpdateRecipe, events[0].EventType)
	assert.Equal(t, author.ID, events[0].UserID)
}

func TestDeleteRecipeRecomputesPlannedLists(t *testing.T) {
	f, _, planning := newAggregationFixture(t)
	ctx := context.Background()
	db := planning.(*planningService).db
	recipes := NewRecipeService(db)

	other := createUser(t, db, "other", models.RoleUser)
	otherList := createList(t, db, other, "Their week")
	_, err := planning.PlanRecipe(ctx, f.owner.ID, f.list.ID, PlannedRecipeInput{RecipeID: f.lasagna.ID, Guests: 2})
	require.NoError(t, err)
	_, err = planning.PlanRecipe(ctx, other.ID, otherList.ID, PlannedRecipeInput{RecipeID: f.lasagna.ID, Guests: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, recipes.DeleteRecipe(ctx, other.ID, f.lasagna.ID), ErrPermissionDenied)

	require.NoError(t, recipes.DeleteRecipe(ctx, f.owner.ID, f.lasagna.ID))

	assert.Empty(t, listItems(t, db, f.list.ID))
	assert.Empty(t, listItems(t, db, otherList.ID))

	var count int64
	require.NoError(t, db.Model(&models.PlannedRecipe{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = recipes.GetRecipe(ctx, f.lasagna.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScaledIngredients(t *testing.T) {
	db := setupTestDB(t)
	service := NewRecipeService(db)
	ctx := context.Background()

	author := createUser(t, db, "chef", models.RoleUser)
	flour := createIngredient(t, db, "flour")
	cups := createUnit(t, db, "cup")
	recipe := createRecipe(t, db, author, "Pancakes", line(flour, cups, 0.5))

	lines, err := service.ScaledIngredients(ctx, recipe.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"flour: 1.50 cup"}, lines)

	_, err = service.ScaledIngredients(ctx, recipe.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.ScaledIngredients(ctx, 404, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRecipesPagination(t *testing.T) {
	db := setupTestDB(t)
	service := NewRecipeService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice", models.RoleUser)
	bob := createUser(t, db, "bob", models.RoleUser)
	for i := 0; i < 30; i++ {
		createRecipe(t, db, alice, fmt.Sprintf("Alice dish %02d", i))
	}
	createRecipe(t, db, bob, "Bob's Chili")

	page, err := service.ListRecipes(ctx, RecipeFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(31), page.Total)
	assert.Len(t, page.Recipes, defaultPageSize)

	page, err = service.ListRecipes(ctx, RecipeFilter{AuthorID: alice.ID, Page: 2, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(30), page.Total)
	assert.Len(t, page.Recipes, 10)

	page, err = service.ListRecipes(ctx, RecipeFilter{Search: "chili", PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.PageSize)
	require.Len(t, page.Recipes, 1)
	assert.Equal(t, bob.ID, page.Recipes[0].AuthorID)
}

func TestListRecipesExactTitleFirst(t *testing.T) {
	db := setupTestDB(t)
	service := NewRecipeService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice", models.RoleUser)
	exact := createRecipe(t, db, alice, "Soup")
	require.NoError(t, db.Model(exact).Update("created_at", time.Now().Add(-time.Hour)).Error)
	createRecipe(t, db, alice, "Tomato Soup")
	createRecipe(t, db, alice, "Soup Dumplings")

	page, err := service.ListRecipes(ctx, RecipeFilter{Search: "SOUP"})
	require.NoError(t, err)
	require.Len(t, page.Recipes, 3)
	assert.Equal(t, exact.ID, page.Recipes[0].ID)
	assert.Equal(t, "Soup Dumplings", page.Recipes[1].Title)

	// Without a search the newest recipe leads
	page, err = service.ListRecipes(ctx, RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, page.Recipes, 3)
	assert.Equal(t, exact.ID, page.Recipes[2].ID)
}
