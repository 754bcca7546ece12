package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"gorm.io/gorm"
)

// GroceryItemService exposes the derived items of a list. Items are only
// created and deleted by the aggregation run.
type GroceryItemService interface {
	// ListItems returns the current items of a list without recomputing them
	ListItems(ctx context.Context, userID, listID uint) ([]models.GroceryListItem, error)
	// SetItemChecked changes the checked flag, the only user writable field
	SetItemChecked(ctx context.Context, userID, listID, itemID uint, checked bool) (*models.GroceryListItem, error)
}

type groceryItemService struct {
	db *gorm.DB
}

// NewGroceryItemService creates a new instance of GroceryItemService
func NewGroceryItemService(db *gorm.DB) GroceryItemService {
	return &groceryItemService{db: db}
}

func (s *groceryItemService) ListItems(ctx context.Context, userID, listID uint) ([]models.GroceryListItem, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadOwnedList(db, listID, userID); err != nil {
		return nil, err
	}

	var items []models.GroceryListItem
	if err := db.Where("grocery_list_id = ?", listID).
		Preload("Ingredient").
		Preload("Unit").
		Order("id").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list grocery list items: %w", err)
	}
	return items, nil
}

func (s *groceryItemService) SetItemChecked(ctx context.Context, userID, listID, itemID uint, checked bool) (*models.GroceryListItem, error) {
	var item models.GroceryListItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedList(tx, listID, userID); err != nil {
			return err
		}
		if err := tx.Where("id = ? AND grocery_list_id = ?", itemID, listID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("item %d not found in grocery list %d", itemID, listID)
			}
			return fmt.Errorf("failed to load grocery list item: %w", err)
		}
		if err := tx.Model(&item).Update("is_checked", checked).Error; err != nil {
			return fmt.Errorf("failed to update grocery list item: %w", err)
		}
		return tx.Preload("Ingredient").Preload("Unit").First(&item, item.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}
