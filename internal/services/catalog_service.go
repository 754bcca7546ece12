package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CatalogService manages the static ingredient and unit reference data
type CatalogService interface {
	// ListIngredients returns ingredients by name, optionally filtered by a name fragment
	ListIngredients(ctx context.Context, search string) ([]models.Ingredient, error)
	CreateIngredient(ctx context.Context, name string, fdcID *int) (*models.Ingredient, error)
	// DeleteIngredient fails with a conflict while the ingredient is referenced
	DeleteIngredient(ctx context.Context, id uint) error
	ListUnits(ctx context.Context) ([]models.Unit, error)
	CreateUnit(ctx context.Context, name string) (*models.Unit, error)
	// DeleteUnit fails with a conflict while the unit is referenced
	DeleteUnit(ctx context.Context, id uint) error
}

type catalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(db *gorm.DB) CatalogService {
	return &catalogService{db: db}
}

// tables holding ingredient_id and unit_id references
var catalogReferences = []interface{}{
	&models.RecipeIngredient{},
	&models.PlannedExtra{},
	&models.GroceryListItem{},
}

func (s *catalogService) ListIngredients(ctx context.Context, search string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name")
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *catalogService) CreateIngredient(ctx context.Context, name string, fdcID *int) (*models.Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}

	ingredient := models.Ingredient{Name: name, FdcID: fdcID}
	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("ingredient %q already exists", name)
		}
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}

	log.WithFields(log.Fields{"ingredient_id": ingredient.ID, "name": name}).Info("Ingredient created")
	return &ingredient, nil
}

func (s *catalogService) DeleteIngredient(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteProtected(tx, &models.Ingredient{}, "ingredient", "ingredient_id", id)
	})
}

func (s *catalogService) ListUnits(ctx context.Context) ([]models.Unit, error) {
	var units []models.Unit
	if err := s.db.WithContext(ctx).Order("name").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

func (s *catalogService) CreateUnit(ctx context.Context, name string) (*models.Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}

	unit := models.Unit{Name: name}
	if err := s.db.WithContext(ctx).Create(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("unit %q already exists", name)
		}
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}

	log.WithFields(log.Fields{"unit_id": unit.ID, "name": name}).Info("Unit created")
	return &unit, nil
}

func (s *catalogService) DeleteUnit(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteProtected(tx, &models.Unit{}, "unit", "unit_id", id)
	})
}

func deleteProtected(tx *gorm.DB, model interface{}, label, column string, id uint) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to load %s: %w", label, err)
	}
	if count == 0 {
		return notFound("%s %d not found", label, id)
	}

	for _, ref := range catalogReferences {
		if err := tx.Model(ref).Where(column+" = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check %s references: %w", label, err)
		}
		if count > 0 {
			return conflict("%s %d is still in use", label, id)
		}
	}

	if err := tx.Delete(model, id).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", label, err)
	}
	return nil
}
