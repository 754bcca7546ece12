package services

import (
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"gorm.io/gorm"
)

// loadOwnedList fetches a grocery list and checks it belongs to userID.
// A missing list is NotFound, a list of another user is PermissionDenied.
func loadOwnedList(tx *gorm.DB, listID, userID uint) (*models.GroceryList, error) {
	var list models.GroceryList
	if err := tx.First(&list, listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("grocery list %d not found", listID)
		}
		return nil, fmt.Errorf("failed to load grocery list: %w", err)
	}
	if list.UserID != userID {
		return nil, permissionDenied("grocery list %d belongs to another user", listID)
	}
	return &list, nil
}

// canModify reports whether actor may change content authored by ownerID.
// Admins may change anything.
func canModify(actor *models.User, ownerID uint) bool {
	if actor == nil {
		return false
	}
	return actor.ID == ownerID || actor.IsAdmin()
}

func loadActor(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user %d not found", userID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}
