package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeIngredientInput is one ingredient line of a recipe, per person
type RecipeIngredientInput struct {
	IngredientID uint    `json:"ingredient_id" binding:"required"`
	UnitID       uint    `json:"unit_id" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required"`
}

// RecipeInput carries the writable fields of a recipe
type RecipeInput struct {
	Title       string                  `json:"title" binding:"required"`
	Content     string                  `json:"content"`
	ImageURL    string                  `json:"image_url"`
	Ingredients []RecipeIngredientInput `json:"ingredients"`
}

// RecipeFilter narrows ListRecipes. Zero values mean no filter.
type RecipeFilter struct {
	AuthorID uint
	Search   string
	Page     int
	PageSize int
}

// RecipePage is one page of recipes
type RecipePage struct {
	Recipes  []models.Recipe `json:"recipes"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// RecipeService manages recipes and their ingredient lines
type RecipeService interface {
	// CreateRecipe stores a new recipe authored by authorID
	CreateRecipe(ctx context.Context, authorID uint, input RecipeInput) (*models.Recipe, error)
	// GetRecipe returns a recipe with its ingredient lines
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	// ListRecipes returns a page of recipes, newest first
	ListRecipes(ctx context.Context, filter RecipeFilter) (RecipePage, error)
	// UpdateRecipe replaces the recipe fields and ingredient lines
	UpdateRecipe(ctx context.Context, userID, id uint, input RecipeInput) (*models.Recipe, error)
	// DeleteRecipe removes a recipe, its plans and recomputes the affected lists
	DeleteRecipe(ctx context.Context, userID, id uint) error
	// ScaledIngredients renders the ingredient lines for a number of guests
	ScaledIngredients(ctx context.Context, id uint, guests int) ([]string, error)
}

type recipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new instance of RecipeService
func NewRecipeService(db *gorm.DB) RecipeService {
	return &recipeService{db: db}
}

func (s *recipeService) CreateRecipe(ctx context.Context, authorID uint, input RecipeInput) (*models.Recipe, error) {
	recipe, err := buildRecipe(input)
	if err != nil {
		return nil, err
	}
	recipe.AuthorID = authorID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCatalogRefs(tx, input.Ingredients); err != nil {
			return err
		}
		if err := tx.Create(recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict("a recipe titled %q already exists", recipe.Title)
			}
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return addFeedItem(tx, authorID, models.EventNewRecipe, &recipe.ID, nil)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"recipe_id": recipe.ID, "author_id": authorID}).Info("Recipe created")
	return s.GetRecipe(ctx, recipe.ID)
}

func (s *recipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	return loadRecipe(s.db.WithContext(ctx), id)
}

func (s *recipeService) ListRecipes(ctx context.Context, filter RecipeFilter) (RecipePage, error) {
	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	var total int64
	if err := filterRecipes(s.db.WithContext(ctx), filter).Count(&total).Error; err != nil {
		return RecipePage{}, fmt.Errorf("failed to count recipes: %w", err)
	}

	query := filterRecipes(s.db.WithContext(ctx), filter)
	if search := strings.TrimSpace(filter.Search); search != "" {
		// Exact title matches first
		query = query.Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN LOWER(title) = ? THEN 0 ELSE 1 END",
			Vars:               []interface{}{strings.ToLower(search)},
			WithoutParentheses: true,
		}})
	}

	var recipes []models.Recipe
	if err := query.
		Preload("Author").
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&recipes).Error; err != nil {
		return RecipePage{}, fmt.Errorf("failed to list recipes: %w", err)
	}

	return RecipePage{Recipes: recipes, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *recipeService) UpdateRecipe(ctx context.Context, userID, id uint, input RecipeInput) (*models.Recipe, error) {
	updated, err := buildRecipe(input)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := loadRecipe(tx, id)
		if err != nil {
			return err
		}
		actor, err := loadActor(tx, userID)
		if err != nil {
			return err
		}
		if !canModify(actor, recipe.AuthorID) {
			return permissionDenied("only the author can change recipe %d", id)
		}
		if err := checkCatalogRefs(tx, input.Ingredients); err != nil {
			return err
		}

		if err := tx.Model(&models.Recipe{ID: id}).Updates(map[string]interface{}{
			"title":     updated.Title,
			"slug":      updated.Slug,
			"content":   updated.Content,
			"image_url": updated.ImageURL,
		}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict("a recipe titled %q already exists", updated.Title)
			}
			return fmt.Errorf("failed to update recipe: %w", err)
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to replace recipe ingredients: %w", err)
		}
		for i := range updated.Ingredients {
			updated.Ingredients[i].RecipeID = id
		}
		if len(updated.Ingredients) > 0 {
			if err := tx.Create(&updated.Ingredients).Error; err != nil {
				return fmt.Errorf("failed to replace recipe ingredients: %w", err)
			}
		}

		if err := deleteFeedItems(tx, "recipe_id = ? AND event_type = ?", id, models.EventNewRecipe); err != nil {
			return err
		}
		return addFeedItem(tx, recipe.AuthorID, models.EventUpdateRecipe, &recipe.ID, nil)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"recipe_id": id, "user_id": userID}).Info("Recipe updated")
	return s.GetRecipe(ctx, id)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := loadRecipe(tx, id)
		if err != nil {
			return err
		}
		actor, err := loadActor(tx, userID)
		if err != nil {
			return err
		}
		if !canModify(actor, recipe.AuthorID) {
			return permissionDenied("only the author can delete recipe %d", id)
		}

		var listIDs []uint
		if err := tx.Model(&models.PlannedRecipe{}).
			Where("recipe_id = ?", id).
			Distinct().
			Pluck("grocery_list_id", &listIDs).Error; err != nil {
			return fmt.Errorf("failed to find planned recipes: %w", err)
		}

		// Children are removed explicitly so the result does not depend on
		// the driver enforcing foreign keys.
		if err := deleteFeedItems(tx, "recipe_id = ?", id); err != nil {
			return err
		}
		for _, child := range []interface{}{
			&models.PlannedRecipe{},
			&models.RecipeRating{},
			&models.RecipeIngredient{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete recipe dependents: %w", err)
			}
		}
		if err := tx.Delete(&models.Recipe{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}

		for _, listID := range listIDs {
			if _, err := recomputeList(tx, listID); err != nil {
				return err
			}
		}

		log.WithFields(log.Fields{
			"recipe_id":        id,
			"user_id":          userID,
			"recomputed_lists": len(listIDs),
		}).Info("Recipe deleted")
		return nil
	})
}

func (s *recipeService) ScaledIngredients(ctx context.Context, id uint, guests int) ([]string, error) {
	if guests <= 0 {
		return nil, validationError("guests must be a positive number")
	}

	recipe, err := loadRecipe(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(recipe.Ingredients))
	for _, ri := range recipe.Ingredients {
		if ri.Ingredient == nil || ri.Unit == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %.2f %s", ri.Ingredient.Name, ri.Quantity*float64(guests), ri.Unit.Name))
	}
	return lines, nil
}

func filterRecipes(db *gorm.DB, filter RecipeFilter) *gorm.DB {
	query := db.Model(&models.Recipe{})
	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	return query
}

func loadRecipe(tx *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := tx.
		Preload("Author").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Ingredients.Ingredient").
		Preload("Ingredients.Unit").
		First(&recipe, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe %d not found", id)
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

func buildRecipe(input RecipeInput) (*models.Recipe, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	slug := Slugify(title)
	if slug == "" {
		return nil, validationError("title must contain at least one letter or digit")
	}

	recipe := &models.Recipe{
		Title:    title,
		Slug:     slug,
		Content:  input.Content,
		ImageURL: strings.TrimSpace(input.ImageURL),
	}
	for i, line := range input.Ingredients {
		if line.Quantity <= 0 {
			return nil, validationError("ingredient line %d: quantity must be greater than zero", i+1)
		}
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
			IngredientID: line.IngredientID,
			UnitID:       line.UnitID,
			Quantity:     line.Quantity,
		})
	}
	return recipe, nil
}

func checkCatalogRefs(tx *gorm.DB, lines []RecipeIngredientInput) error {
	for _, line := range lines {
		if err := ensureIngredientAndUnit(tx, line.IngredientID, line.UnitID); err != nil {
			return err
		}
	}
	return nil
}

func ensureIngredientAndUnit(tx *gorm.DB, ingredientID, unitID uint) error {
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id = ?", ingredientID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check ingredient: %w", err)
	}
	if count == 0 {
		return notFound("ingredient %d not found", ingredientID)
	}
	if err := tx.Model(&models.Unit{}).Where("id = ?", unitID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check unit: %w", err)
	}
	if count == 0 {
		return notFound("unit %d not found", unitID)
	}
	return nil
}

// Slugify lower-cases s and collapses every run of characters that are not
// letters or digits into a single dash
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
