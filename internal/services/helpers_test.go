package services

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/database"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "services.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Email:    fmt.Sprintf("%s@example.com", username),
		Username: username,
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createIngredient(t *testing.T, db *gorm.DB, name string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

func createUnit(t *testing.T, db *gorm.DB, name string) *models.Unit {
	t.Helper()
	unit := &models.Unit{Name: name}
	require.NoError(t, db.Create(unit).Error)
	return unit
}

func createList(t *testing.T, db *gorm.DB, owner *models.User, name string) *models.GroceryList {
	t.Helper()
	list := &models.GroceryList{Name: name, UserID: owner.ID}
	require.NoError(t, db.Create(list).Error)
	return list
}

func createRecipe(t *testing.T, db *gorm.DB, author *models.User, title string, lines ...models.RecipeIngredient) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		Title:       title,
		Slug:        Slugify(title),
		AuthorID:    author.ID,
		Ingredients: lines,
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

func line(ingredient *models.Ingredient, unit *models.Unit, quantity float64) models.RecipeIngredient {
	return models.RecipeIngredient{IngredientID: ingredient.ID, UnitID: unit.ID, Quantity: quantity}
}

func listItems(t *testing.T, db *gorm.DB, listID uint) []models.GroceryListItem {
	t.Helper()
	var items []models.GroceryListItem
	require.NoError(t, db.Where("grocery_list_id = ?", listID).Order("ingredient_id, unit_id").Find(&items).Error)
	return items
}

func intPtr(v int) *int {
	return &v
}
