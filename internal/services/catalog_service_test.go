package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	service := NewCatalogService(db)
	ctx := context.Background()

	fdc := 170457
	_, err := service.CreateIngredient(ctx, "Tomato", &fdc)
	require.NoError(t, err)
	_, err = service.CreateIngredient(ctx, "Basil", nil)
	require.NoError(t, err)

	_, err = service.CreateIngredient(ctx, "Tomato", nil)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = service.CreateIngredient(ctx, " ", nil)
	assert.ErrorIs(t, err, ErrValidation)

	all, err := service.ListIngredients(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Basil", all[0].Name)

	found, err := service.ListIngredients(ctx, "tom")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, fdc, *found[0].FdcID)

	_, err = service.CreateUnit(ctx, "g")
	require.NoError(t, err)
	_, err = service.CreateUnit(ctx, "g")
	assert.ErrorIs(t, err, ErrConflict)

	units, err := service.ListUnits(ctx)
	require.NoError(t, err)
	assert.Len(t, units, 1)
}

func TestCatalogDeleteIsProtected(t *testing.T) {
	db := setupTestDB(t)
	service := NewCatalogService(db)
	ctx := context.Background()

	author := createUser(t, db, "chef", models.RoleUser)
	tomato := createIngredient(t, db, "tomato")
	salt := createIngredient(t, db, "salt")
	grams := createUnit(t, db, "g")
	pinch := createUnit(t, db, "pinch")
	createRecipe(t, db, author, "Salad", line(tomato, grams, 80))

	assert.ErrorIs(t, service.DeleteIngredient(ctx, tomato.ID), ErrConflict)
	assert.ErrorIs(t, service.DeleteUnit(ctx, grams.ID), ErrConflict)

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Where("id = ?", tomato.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, service.DeleteIngredient(ctx, salt.ID))
	require.NoError(t, service.DeleteUnit(ctx, pinch.ID))
	assert.ErrorIs(t, service.DeleteIngredient(ctx, salt.ID), ErrNotFound)
}

func TestCatalogDeleteProtectedByExtras(t *testing.T) {
	db := setupTestDB(t)
	service := NewCatalogService(db)

	owner := createUser(t, db, "owner", models.RoleUser)
	list := createList(t, db, owner, "Groceries")
	milk := createIngredient(t, db, "milk")
	litre := createUnit(t, db, "l")
	require.NoError(t, db.Create(&models.PlannedExtra{
		GroceryListID: list.ID, IngredientID: milk.ID, UnitID: litre.ID, Quantity: 1,
	}).Error)

	assert.ErrorIs(t, service.DeleteIngredient(context.Background(), milk.ID), ErrConflict)
}
