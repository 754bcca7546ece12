package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table of the application.
// Order matters for drivers that create foreign keys eagerly.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database handle is nil")
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Ingredient{},
		&models.Unit{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeRating{},
		&models.GroceryList{},
		&models.PlannedRecipe{},
		&models.PlannedExtra{},
		&models.GroceryListItem{},
		&models.FeedItem{},
		&models.FeedItemLike{},
		&models.FeedItemComment{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	)
}
