package models

import (
	"time"
)

// Recipe is a user authored recipe. AverageRating and RatingCount are derived
// from the recipe's ratings and never written by clients.
type Recipe struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	Title         string             `gorm:"size:200;uniqueIndex;not null" json:"title"`
	Slug          string             `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	AuthorID      uint               `gorm:"not null;index" json:"author_id"`
	Author        *User              `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Content       string             `gorm:"type:text" json:"content"`
	ImageURL      string             `gorm:"size:255" json:"image_url,omitempty"`
	AverageRating float64            `gorm:"not null;default:0" json:"average_rating"`
	RatingCount   int                `gorm:"not null;default:0" json:"rating_count"`
	Ingredients   []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// RecipeIngredient is one ingredient line of a recipe. Quantity is the amount
// needed for a single person.
type RecipeIngredient struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	RecipeID     uint        `gorm:"not null;index" json:"recipe_id"`
	IngredientID uint        `gorm:"not null;index" json:"ingredient_id"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:RESTRICT" json:"ingredient,omitempty"`
	UnitID       uint        `gorm:"not null;index" json:"unit_id"`
	Unit         *Unit       `gorm:"foreignKey:UnitID;constraint:OnDelete:RESTRICT" json:"unit,omitempty"`
	Quantity     float64     `gorm:"not null" json:"quantity"`
}

// RecipeRating is one user's rating of a recipe. The (recipe, author) pair is
// unique at the storage level.
type RecipeRating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_rating_recipe_author" json:"recipe_id"`
	Recipe    *Recipe   `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_rating_recipe_author;index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Rating    int       `gorm:"not null;check:rating >= 0 AND rating <= 10" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
