package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxListNameLength = 255

// GroceryListService manages the grocery lists of a user
type GroceryListService interface {
	CreateGroceryList(ctx context.Context, userID uint, name string) (*models.GroceryList, error)
	ListGroceryLists(ctx context.Context, userID uint) ([]models.GroceryList, error)
	GetGroceryList(ctx context.Context, userID, listID uint) (*models.GroceryList, error)
	RenameGroceryList(ctx context.Context, userID, listID uint, name string) (*models.GroceryList, error)
	// DeleteGroceryList removes the list with its planned rows and items
	DeleteGroceryList(ctx context.Context, userID, listID uint) error
}

type groceryListService struct {
	db *gorm.DB
}

// NewGroceryListService creates a new instance of GroceryListService
func NewGroceryListService(db *gorm.DB) GroceryListService {
	return &groceryListService{db: db}
}

func (s *groceryListService) CreateGroceryList(ctx context.Context, userID uint, name string) (*models.GroceryList, error) {
	name, err := validateListName(name)
	if err != nil {
		return nil, err
	}

	list := models.GroceryList{Name: name, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to create grocery list: %w", err)
	}

	log.WithFields(log.Fields{"grocery_list_id": list.ID, "user_id": userID}).Info("Grocery list created")
	return &list, nil
}

func (s *groceryListService) ListGroceryLists(ctx context.Context, userID uint) ([]models.GroceryList, error) {
	var lists []models.GroceryList
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("failed to list grocery lists: %w", err)
	}
	return lists, nil
}

func (s *groceryListService) GetGroceryList(ctx context.Context, userID, listID uint) (*models.GroceryList, error) {
	return loadOwnedList(s.db.WithContext(ctx), listID, userID)
}

func (s *groceryListService) RenameGroceryList(ctx context.Context, userID, listID uint, name string) (*models.GroceryList, error) {
	name, err := validateListName(name)
	if err != nil {
		return nil, err
	}

	var list *models.GroceryList
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if list, err = loadOwnedList(tx, listID, userID); err != nil {
			return err
		}
		if err := tx.Model(list).Update("name", name).Error; err != nil {
			return fmt.Errorf("failed to rename grocery list: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *groceryListService) DeleteGroceryList(ctx context.Context, userID, listID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := loadOwnedList(tx, listID, userID)
		if err != nil {
			return err
		}
		for _, child := range []interface{}{
			&models.GroceryListItem{},
			&models.PlannedExtra{},
			&models.PlannedRecipe{},
		} {
			if err := tx.Where("grocery_list_id = ?", list.ID).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete grocery list contents: %w", err)
			}
		}
		if err := tx.Delete(list).Error; err != nil {
			return fmt.Errorf("failed to delete grocery list: %w", err)
		}

		log.WithFields(log.Fields{"grocery_list_id": listID, "user_id": userID}).Info("Grocery list deleted")
		return nil
	})
}

func validateListName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationError("name is required")
	}
	if len(name) > maxListNameLength {
		return "", validationError("name must be at most %d characters", maxListNameLength)
	}
	return name, nil
}
