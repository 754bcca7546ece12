package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlannedRecipeInput schedules a recipe into a list
type PlannedRecipeInput struct {
	RecipeID  uint            `json:"recipe_id" binding:"required"`
	Guests    int             `json:"guests" binding:"required"`
	PlannedOn *datatypes.Date `json:"planned_on"`
}

// PlannedRecipeUpdate changes a planned recipe. Nil fields are kept.
// A GroceryListID different from the current one moves the row.
// ClearPlannedOn removes the date and cannot be combined with PlannedOn.
type PlannedRecipeUpdate struct {
	GroceryListID  *uint           `json:"grocery_list_id"`
	RecipeID       *uint           `json:"recipe_id"`
	Guests         *int            `json:"guests"`
	PlannedOn      *datatypes.Date `json:"planned_on"`
	ClearPlannedOn bool            `json:"clear_planned_on"`
}

// PlannedExtraInput adds a manual ingredient line to a list
type PlannedExtraInput struct {
	IngredientID uint    `json:"ingredient_id" binding:"required"`
	UnitID       uint    `json:"unit_id" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required"`
}

// PlannedExtraUpdate changes a planned extra. Nil fields are kept.
type PlannedExtraUpdate struct {
	GroceryListID *uint    `json:"grocery_list_id"`
	IngredientID  *uint    `json:"ingredient_id"`
	UnitID        *uint    `json:"unit_id"`
	Quantity      *float64 `json:"quantity"`
}

// PlanningService manages planned recipes and extras. Every successful
// mutation recomputes the affected grocery lists in the same transaction.
type PlanningService interface {
	PlanRecipe(ctx context.Context, userID, listID uint, input PlannedRecipeInput) (*models.PlannedRecipe, error)
	UpdatePlannedRecipe(ctx context.Context, userID, listID, plannedID uint, update PlannedRecipeUpdate) (*models.PlannedRecipe, error)
	DeletePlannedRecipe(ctx context.Context, userID, listID, plannedID uint) error
	ListPlannedRecipes(ctx context.Context, userID, listID uint) ([]models.PlannedRecipe, error)

	AddExtra(ctx context.Context, userID, listID uint, input PlannedExtraInput) (*models.PlannedExtra, error)
	UpdateExtra(ctx context.Context, userID, listID, extraID uint, update PlannedExtraUpdate) (*models.PlannedExtra, error)
	DeleteExtra(ctx context.Context, userID, listID, extraID uint) error
	ListExtras(ctx context.Context, userID, listID uint) ([]models.PlannedExtra, error)
}

type planningService struct {
	db *gorm.DB
}

// NewPlanningService creates a new instance of PlanningService
func NewPlanningService(db *gorm.DB) PlanningService {
	return &planningService{db: db}
}

func (s *planningService) PlanRecipe(ctx context.Context, userID, listID uint, input PlannedRecipeInput) (*models.PlannedRecipe, error) {
	if err := validateGuests(input.Guests); err != nil {
		return nil, err
	}

	planned := models.PlannedRecipe{
		GroceryListID: listID,
		RecipeID:      input.RecipeID,
		Guests:        input.Guests,
		PlannedOn:     input.PlannedOn,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedList(tx, listID, userID); err != nil {
			return err
		}
		if err := ensureRecipeExists(tx, input.RecipeID); err != nil {
			return err
		}
		if err := tx.Create(&planned).Error; err != nil {
			return fmt.Errorf("failed to plan recipe: %w", err)
		}
		return recomputeAll(tx, listID)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"grocery_list_id":   listID,
		"planned_recipe_id": planned.ID,
		"recipe_id":         planned.RecipeID,
		"guests":            planned.Guests,
	}).Info("Recipe planned")
	return s.loadPlannedRecipe(ctx, planned.ID)
}

func (s *planningService) UpdatePlannedRecipe(ctx context.Context, userID, listID, plannedID uint, update PlannedRecipeUpdate) (*models.PlannedRecipe, error) {
	if update.Guests != nil {
		if err := validateGuests(*update.Guests); err != nil {
			return nil, err
		}
	}
	if update.ClearPlannedOn && update.PlannedOn != nil {
		return nil, validationError("planned_on and clear_planned_on are mutually exclusive")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedList(tx, listID, userID); err != nil {
			return err
		}
		var planned models.PlannedRecipe
		if err := tx.Where("id = ? AND grocery_list_id = ?", plannedID, listID).First(&planned).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("planned recipe %d not found in grocery list %d", plannedID, listID)
			}
			return fmt.Errorf("failed to load planned recipe: %w", err)
		}

		changes := map[string]interface{}{}
		affected := []uint{listID}
		if update.GroceryListID != nil && *update.GroceryListID != listID {
			if _, err := loadOwnedList(tx, *update.GroceryListID, userID); err != nil {
				return err
			}
			changes["grocery_list_id"] = *update.GroceryListID
			affected = append(affected, *update.GroceryListID)
		}
		if update.RecipeID != nil {
			if err := ensureRecipeExists(tx, *update.RecipeID); err != nil {
				return err
			}
			changes["recipe_id"] = *update.RecipeID
		}
		if update.Guests != nil {
			changes["guests"] = *update.Guests
		}
		if update.PlannedOn != nil {
			changes["planned_on"] = *update.PlannedOn
		}
		if update.ClearPlannedOn {
			changes["planned_on"] = nil
		}
		if len(changes) == 0 {
			return nil
		}

		if err := tx.Model(&planned).Updates(changes).Error; err != nil {
			return fmt.Errorf("failed to update planned recipe: %w", err)
		}
		return recomputeAll(tx, affected...)
	})
	if err != nil {
		return nil, err
	}
	return s.loadPlannedRecipe(ctx, plannedID)
}

func (s *planningService) DeletePlannedRecipe(ctx context.Context, userID, listID, plannedID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedList(tx, listID, userID); err != nil {
			return err
		}
		result := tx.Where("id = ? AND grocery_list_id = ?", plannedID, listID).Delete(&models.PlannedRecipe{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete planned recipe: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("planned recipe %d not found in grocery list %d", plannedID, listID)
		}
		return recomputeAll(tx, listID)
	})
}

func (s *planningService) ListPlannedRecipes(ctx context.Context, userID, listID uint) ([]models.PlannedRecipe, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadOwnedList(db, listID, userID); err != nil {
		return nil, err
	}

	var planned []models.PlannedRecipe
	if err := db.Where("grocery_list_id = ?", listID).
		Preload("Recipe").
		Order("planned_on").
		Order("created_at").
		Order("id").
		Find(&planned).Error; err != nil {
		return nil, fmt.Errorf("failed to list planned recipes: %w", err)
	}
	return planned, nil
}

func (s *planningService) AddExtra(ctx context.Context, userID, listID uint, input PlannedExtraInput) (*models.PlannedExtra, error) {
	if err := validateQuantity(input.Quantity); err != nil {
		return nil, err
	}

	extra := models.PlannedExtra{
		GroceryListID: listID,
		IngredientID:  input.IngredientID,
		UnitID:        input.UnitID,
		Quantity:      input.Quantity,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedList(tx, listID, userID); err != nil {
			return err
		}
		if err := ensureIngredientAndUnit(tx, input.IngredientID, input.UnitID); err != nil {
			return err
		}
		if err := tx.Create(&extra).Error; err != nil {
			return fmt.Errorf("failed to add extra: %w", err)
		}
		return recomputeAll(tx, listID)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"grocery_list_id":  listID,
		"planned_extra_id": extra.ID,
		"ingredient_id":    extra.IngredientID,
	}).Info("Extra added")
	return s.loadExtra(ctx, extra.ID)
}

func (s *planningService) UpdateExtra(ctx context.Context, userID, listID, extraID uint, update PlannedExtraUpdate) (*models.PlannedExtra, error) {
	if update.Quantity != nil {
		if err := validateQuantity(*update.Quantity); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedList(tx, listID, userID); err != nil {
			return err
		}
		var extra models.PlannedExtra
		if err := tx.Where("id = ? AND grocery_list_id = ?", extraID, listID).First(&extra).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("extra %d not found in grocery list %d", extraID, listID)
			}
			return fmt.Errorf("failed to load extra: %w", err)
		}

		changes := map[string]interface{}{}
		affected := []uint{listID}
		if update.GroceryListID != nil && *update.GroceryListID != listID {
			if _, err := loadOwnedList(tx, *update.GroceryListID, userID); err != nil {
				return err
			}
			changes["grocery_list_id"] = *update.GroceryListID
			affected = append(affected, *update.GroceryListID)
		}

		ingredientID, unitID := extra.IngredientID, extra.UnitID
		if update.IngredientID != nil {
			ingredientID = *update.IngredientID
			changes["ingredient_id"] = ingredientID
		}
		if update.UnitID != nil {
			unitID = *update.UnitID
			changes["unit_id"] = unitID
		}
		if update.IngredientID != nil || update.UnitID != nil {
			if err := ensureIngredientAndUnit(tx, ingredientID, unitID); err != nil {
				return err
			}
		}
		if update.Quantity != nil {
			changes["quantity"] = *update.Quantity
		}
		if len(changes) == 0 {
			return nil
		}

		if err := tx.Model(&extra).Updates(changes).Error; err != nil {
			return fmt.Errorf("failed to update extra: %w", err)
		}
		return recomputeAll(tx, affected...)
	})
	if err != nil {
		return nil, err
	}
	return s.loadExtra(ctx, extraID)
}

func (s *planningService) DeleteExtra(ctx context.Context, userID, listID, extraID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedList(tx, listID, userID); err != nil {
			return err
		}
		result := tx.Where("id = ? AND grocery_list_id = ?", extraID, listID).Delete(&models.PlannedExtra{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete extra: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("extra %d not found in grocery list %d", extraID, listID)
		}
		return recomputeAll(tx, listID)
	})
}

func (s *planningService) ListExtras(ctx context.Context, userID, listID uint) ([]models.PlannedExtra, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadOwnedList(db, listID, userID); err != nil {
		return nil, err
	}

	var extras []models.PlannedExtra
	if err := db.Where("grocery_list_id = ?", listID).
		Preload("Ingredient").
		Preload("Unit").
		Order("id").
		Find(&extras).Error; err != nil {
		return nil, fmt.Errorf("failed to list extras: %w", err)
	}
	sort.SliceStable(extras, func(i, j int) bool {
		return ingredientName(extras[i].Ingredient) < ingredientName(extras[j].Ingredient)
	})
	return extras, nil
}

func (s *planningService) loadPlannedRecipe(ctx context.Context, id uint) (*models.PlannedRecipe, error) {
	var planned models.PlannedRecipe
	if err := s.db.WithContext(ctx).Preload("Recipe").First(&planned, id).Error; err != nil {
		return nil, fmt.Errorf("failed to load planned recipe: %w", err)
	}
	return &planned, nil
}

func (s *planningService) loadExtra(ctx context.Context, id uint) (*models.PlannedExtra, error) {
	var extra models.PlannedExtra
	if err := s.db.WithContext(ctx).Preload("Ingredient").Preload("Unit").First(&extra, id).Error; err != nil {
		return nil, fmt.Errorf("failed to load extra: %w", err)
	}
	return &extra, nil
}

func recomputeAll(tx *gorm.DB, listIDs ...uint) error {
	for _, id := range listIDs {
		if _, err := recomputeList(tx, id); err != nil {
			return err
		}
	}
	return nil
}

func ingredientName(ingredient *models.Ingredient) string {
	if ingredient == nil {
		return ""
	}
	return ingredient.Name
}

func validateGuests(guests int) error {
	if guests <= 0 {
		return validationError("guests must be a positive number")
	}
	return nil
}

func validateQuantity(quantity float64) error {
	if quantity <= 0 {
		return validationError("quantity must be greater than zero")
	}
	return nil
}
