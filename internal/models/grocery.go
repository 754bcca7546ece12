package models

import (
	"time"

	"gorm.io/datatypes"
)

// GroceryList is a named container of planned recipes, extras and the
// grocery items derived from them. It belongs to exactly one user.
type GroceryList struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlannedRecipe schedules a recipe into a grocery list for a number of guests.
type PlannedRecipe struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	GroceryListID uint            `gorm:"not null;index" json:"grocery_list_id"`
	GroceryList   *GroceryList    `gorm:"foreignKey:GroceryListID;constraint:OnDelete:CASCADE" json:"-"`
	RecipeID      uint            `gorm:"not null;index" json:"recipe_id"`
	Recipe        *Recipe         `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"recipe,omitempty"`
	Guests        int             `gorm:"not null" json:"guests"`
	PlannedOn     *datatypes.Date `json:"planned_on,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PlannedExtra is a manually added ingredient line not tied to a recipe.
// Quantity is for the whole list, not per person.
type PlannedExtra struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	GroceryListID uint         `gorm:"not null;index" json:"grocery_list_id"`
	GroceryList   *GroceryList `gorm:"foreignKey:GroceryListID;constraint:OnDelete:CASCADE" json:"-"`
	IngredientID  uint         `gorm:"not null;index" json:"ingredient_id"`
	Ingredient    *Ingredient  `gorm:"foreignKey:IngredientID;constraint:OnDelete:RESTRICT" json:"ingredient,omitempty"`
	UnitID        uint         `gorm:"not null;index" json:"unit_id"`
	Unit          *Unit        `gorm:"foreignKey:UnitID;constraint:OnDelete:RESTRICT" json:"unit,omitempty"`
	Quantity      float64      `gorm:"not null" json:"quantity"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// GroceryListItem is a derived line of a grocery list, one per
// (list, ingredient, unit). Only IsChecked is user state; everything else is
// rewritten by the aggregation run.
type GroceryListItem struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	GroceryListID uint         `gorm:"not null;uniqueIndex:idx_item_list_ingredient_unit" json:"grocery_list_id"`
	GroceryList   *GroceryList `gorm:"foreignKey:GroceryListID;constraint:OnDelete:CASCADE" json:"-"`
	IngredientID  uint         `gorm:"not null;uniqueIndex:idx_item_list_ingredient_unit" json:"ingredient_id"`
	Ingredient    *Ingredient  `gorm:"foreignKey:IngredientID;constraint:OnDelete:RESTRICT" json:"ingredient,omitempty"`
	UnitID        uint         `gorm:"not null;uniqueIndex:idx_item_list_ingredient_unit" json:"unit_id"`
	Unit          *Unit        `gorm:"foreignKey:UnitID;constraint:OnDelete:RESTRICT" json:"unit,omitempty"`
	Quantity      float64      `gorm:"not null" json:"quantity"`
	FromRecipes   string       `gorm:"type:text" json:"from_recipes"`
	IsChecked     bool         `gorm:"not null;default:false" json:"is_checked"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
