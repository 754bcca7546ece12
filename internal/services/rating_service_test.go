package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func reloadRecipe(t *testing.T, db *gorm.DB, id uint) models.Recipe {
	t.Helper()
	var recipe models.Recipe
	require.NoError(t, db.First(&recipe, id).Error)
	return recipe
}

func TestRatingMean(t *testing.T) {
	db := setupTestDB(t)
	service := NewRatingService(db)
	ctx := context.Background()

	author := createUser(t, db, "chef", models.RoleUser)
	recipe := createRecipe(t, db, author, "Risotto")

	for i, score := range []int{8, 10, 6} {
		rater := createUser(t, db, "rater"+string(rune('a'+i)), models.RoleUser)
		_, err := service.CreateRating(ctx, rater.ID, recipe.ID, RatingInput{Rating: intPtr(score)})
		require.NoError(t, err)
	}

	stored := reloadRecipe(t, db, recipe.ID)
	assert.InDelta(t, 8.0, stored.AverageRating, 1e-9)
	assert.Equal(t, 3, stored.RatingCount)
}

func TestDuplicateRatingRejected(t *testing.T) {
	db := setupTestDB(t)
	service := NewRatingService(db)
	ctx := context.Background()

	author := createUser(t, db, "chef", models.RoleUser)
	rater := createUser(t, db, "rater", models.RoleUser)
	recipe := createRecipe(t, db, author, "Risotto")

	_, err := service.CreateRating(ctx, rater.ID, recipe.ID, RatingInput{Rating: intPtr(7)})
	require.NoError(t, err)

	_, err = service.CreateRating(ctx, rater.ID, recipe.ID, RatingInput{Rating: intPtr(2)})
	assert.ErrorIs(t, err, ErrDuplicateRating)

	stored := reloadRecipe(t, db, recipe.ID)
	assert.Equal(t, 1, stored.RatingCount)
	assert.InDelta(t, 7.0, stored.AverageRating, 1e-9)
}

func TestCreateRatingValidation(t *testing.T) {
	db := setupTestDB(t)
	service := NewRatingService(db)
	ctx := context.Background()

	author := createUser(t, db, "chef", models.RoleUser)
	recipe := createRecipe(t, db, author, "Risotto")

	testCases := []struct {
		name     string
		recipeID uint
		rating   *int
		expected error
	}{
		{name: "missing rating", recipeID: recipe.ID, rating: nil, expected: ErrValidation},
		{name: "below range", recipeID: recipe.ID, rating: intPtr(-1), expected: ErrValidation},
		{name: "above range", recipeID: recipe.ID, rating: intPtr(11), expected: ErrValidation},
		{name: "unknown recipe", recipeID: 999, rating: intPtr(5), expected: ErrNotFound},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateRating(ctx, author.ID, tt.recipeID, RatingInput{Rating: tt.rating, Comment: "no score"})
			assert.ErrorIs(t, err, tt.expected)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.RecipeRating{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, 0, reloadRecipe(t, db, recipe.ID).RatingCount)
}

func TestUpdateAndDeleteRatingPermissions(t *testing.T) {
	db := setupTestDB(t)
	service := NewRatingService(db)
	ctx := context.Background()

	author := createUser(t, db, "chef", models.RoleUser)
	rater := createUser(t, db, "rater", models.RoleUser)
	stranger := createUser(t, db, "stranger", models.RoleUser)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	recipe := createRecipe(t, db, author, "Risotto")

	rating, err := service.CreateRating(ctx, rater.ID, recipe.ID, RatingInput{Rating: intPtr(4)})
	require.NoError(t, err)

	newScore := 9
	_, err = service.UpdateRating(ctx, stranger.ID, rating.ID, RatingUpdate{Rating: &newScore})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := service.UpdateRating(ctx, rater.ID, rating.ID, RatingUpdate{Rating: &newScore})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Rating)
	assert.InDelta(t, 9.0, reloadRecipe(t, db, recipe.ID).AverageRating, 1e-9)

	assert.ErrorIs(t, service.DeleteRating(ctx, stranger.ID, rating.ID), ErrPermissionDenied)
	require.NoError(t, service.DeleteRating(ctx, admin.ID, rating.ID))

	stored := reloadRecipe(t, db, recipe.ID)
	assert.Equal(t, 0, stored.RatingCount)
	assert.Equal(t, 0.0, stored.AverageRating)

	assert.ErrorIs(t, service.DeleteRating(ctx, rater.ID, rating.ID), ErrNotFound)
}

func TestRatingFeedEvents(t *testing.T) {
	db := setupTestDB(t)
	service := NewRatingService(db)
	ctx := context.Background()

	author := createUser(t, db, "chef", models.RoleUser)
	rater := createUser(t, db, "rater", models.RoleUser)
	recipe := createRecipe(t, db, author, "Risotto")

	rating, err := service.CreateRating(ctx, rater.ID, recipe.ID, RatingInput{Rating: intPtr(4), Comment: "ok"})
	require.NoError(t, err)

	var events []models.FeedItem
	require.NoError(t, db.Where("rating_id = ?", rating.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventNewRating, events[0].EventType)

	comment := "better second time"
	_, err = service.UpdateRating(ctx, rater.ID, rating.ID, RatingUpdate{Comment: &comment})
	require.NoError(t, err)

	require.NoError(t, db.Where("rating_id = ?", rating.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventUpdateRating, events[0].EventType)

	require.NoError(t, service.DeleteRating(ctx, rater.ID, rating.ID))
	var count int64
	require.NoError(t, db.Model(&models.FeedItem{}).Where("rating_id = ?", rating.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListRatingsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	service := NewRatingService(db)
	ctx := context.Background()

	author := createUser(t, db, "chef", models.RoleUser)
	first := createUser(t, db, "first", models.RoleUser)
	second := createUser(t, db, "second", models.RoleUser)
	recipe := createRecipe(t, db, author, "Risotto")

	_, err := service.CreateRating(ctx, first.ID, recipe.ID, RatingInput{Rating: intPtr(3)})
	require.NoError(t, err)
	_, err = service.CreateRating(ctx, second.ID, recipe.ID, RatingInput{Rating: intPtr(5)})
	require.NoError(t, err)

	ratings, err := service.ListRatings(ctx, recipe.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, second.ID, ratings[0].AuthorID)
	require.NotNil(t, ratings[0].Author)
	assert.Equal(t, "second", ratings[0].Author.Username)
}

func TestRecomputeRatingsRepairsAggregate(t *testing.T) {
	db := setupTestDB(t)
	service := NewRatingService(db)
	ctx := context.Background()

	author := createUser(t, db, "chef", models.RoleUser)
	recipe := createRecipe(t, db, author, "Risotto")
	require.NoError(t, db.Create(&models.RecipeRating{RecipeID: recipe.ID, AuthorID: author.ID, Rating: 5}).Error)

	require.NoError(t, service.RecomputeRatings(ctx, recipe.ID))
	stored := reloadRecipe(t, db, recipe.ID)
	assert.Equal(t, 1, stored.RatingCount)
	assert.InDelta(t, 5.0, stored.AverageRating, 1e-9)

	assert.ErrorIs(t, service.RecomputeRatings(ctx, 404), ErrNotFound)
}
