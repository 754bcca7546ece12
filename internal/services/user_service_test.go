package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()

	user, err := service.Register(ctx, "Cook@Example.com", "cook", "s3cret!", "Cook")
	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "s3cret!", user.Password)

	_, err = service.Register(ctx, "cook@example.com", "cook2", "s3cret!", "")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = service.Register(ctx, "short@example.com", "short", "123", "")
	assert.ErrorIs(t, err, ErrValidation)

	authenticated, err := service.Authenticate(ctx, "COOK@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)

	_, err = service.Authenticate(ctx, "cook@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = service.Authenticate(ctx, "nobody@example.com", "s3cret!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFollowRules(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice", models.RoleUser)
	bob := createUser(t, db, "bob", models.RoleUser)

	assert.ErrorIs(t, service.Follow(ctx, alice.ID, alice.ID), ErrValidation)
	assert.ErrorIs(t, service.Follow(ctx, alice.ID, 999), ErrNotFound)

	require.NoError(t, service.Follow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, service.Follow(ctx, alice.ID, bob.ID), ErrConflict)

	following, err := service.ListFollowing(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, bob.ID, following[0].ID)

	require.NoError(t, service.Unfollow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, service.Unfollow(ctx, alice.ID, bob.ID), ErrNotFound)
}

func TestFeedShowsFollowedUsersAndSelf(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db)
	recipes := NewRecipeService(db)
	feed := NewFeedService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice", models.RoleUser)
	bob := createUser(t, db, "bob", models.RoleUser)
	carol := createUser(t, db, "carol", models.RoleUser)

	require.NoError(t, users.Follow(ctx, alice.ID, bob.ID))

	_, err := recipes.CreateRecipe(ctx, alice.ID, RecipeInput{Title: "Alice Pie"})
	require.NoError(t, err)
	_, err = recipes.CreateRecipe(ctx, bob.ID, RecipeInput{Title: "Bob Stew"})
	require.NoError(t, err)
	_, err = recipes.CreateRecipe(ctx, carol.ID, RecipeInput{Title: "Carol Curry"})
	require.NoError(t, err)

	page, err := feed.Feed(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, bob.ID, page.Items[0].UserID)
	require.NotNil(t, page.Items[0].Recipe)
	assert.Equal(t, "Bob Stew", page.Items[0].Recipe.Title)
	assert.Equal(t, alice.ID, page.Items[1].UserID)

	page, err = feed.Feed(ctx, carol.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPageSize, page.PageSize)
}

func TestListFollowers(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice", models.RoleUser)
	bob := createUser(t, db, "bob", models.RoleUser)
	carol := createUser(t, db, "carol", models.RoleUser)

	require.NoError(t, service.Follow(ctx, carol.ID, alice.ID))
	require.NoError(t, service.Follow(ctx, bob.ID, alice.ID))
	require.NoError(t, service.Follow(ctx, alice.ID, bob.ID))

	followers, err := service.ListFollowers(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "bob", followers[0].Username)
	assert.Equal(t, "carol", followers[1].Username)

	followers, err = service.ListFollowers(ctx, carol.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestSearchUsers(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice", models.RoleUser)
	createUser(t, db, "alicia", models.RoleUser)
	bob := createUser(t, db, "bob", models.RoleUser)
	require.NoError(t, db.Model(bob).Update("name", "Bob Alison").Error)
	createUser(t, db, "carol", models.RoleUser)

	found, err := service.SearchUsers(ctx, alice.ID, "  ALI ")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "alicia", found[0].Username)
	assert.Equal(t, "bob", found[1].Username)

	_, err = service.SearchUsers(ctx, alice.ID, " ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetUserByID(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)

	alice := createUser(t, db, "alice", models.RoleUser)

	user, err := service.GetUserByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = service.GetUserByID(999)
	assert.ErrorIs(t, err, ErrNotFound)
}
