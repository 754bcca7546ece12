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

const (
	minRating = 0
	maxRating = 10
)

// RatingInput carries a new rating
type RatingInput struct {
	Rating  *int   `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// RatingUpdate carries the fields to change on a rating. Nil fields are kept.
type RatingUpdate struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// RatingService manages recipe ratings and keeps the recipe aggregates in sync
type RatingService interface {
	// CreateRating adds the rating of userID for a recipe
	CreateRating(ctx context.Context, userID, recipeID uint, input RatingInput) (*models.RecipeRating, error)
	// UpdateRating changes a rating, author or admin only
	UpdateRating(ctx context.Context, userID, ratingID uint, update RatingUpdate) (*models.RecipeRating, error)
	// DeleteRating removes a rating, author or admin only
	DeleteRating(ctx context.Context, userID, ratingID uint) error
	// ListRatings returns the ratings of a recipe, newest first
	ListRatings(ctx context.Context, recipeID uint) ([]models.RecipeRating, error)
	// RecomputeRatings refreshes the average and count stored on the recipe
	RecomputeRatings(ctx context.Context, recipeID uint) error
}

type ratingService struct {
	db *gorm.DB
}

// NewRatingService creates a new instance of RatingService
func NewRatingService(db *gorm.DB) RatingService {
	return &ratingService{db: db}
}

func (s *ratingService) CreateRating(ctx context.Context, userID, recipeID uint, input RatingInput) (*models.RecipeRating, error) {
	if input.Rating == nil {
		return nil, validationError("rating is required")
	}
	if err := validateRating(*input.Rating); err != nil {
		return nil, err
	}

	rating := models.RecipeRating{
		RecipeID: recipeID,
		AuthorID: userID,
		Rating:   *input.Rating,
		Comment:  strings.TrimSpace(input.Comment),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRecipeExists(tx, recipeID); err != nil {
			return err
		}
		// The unique index on (recipe_id, author_id) is the only duplicate check
		if err := tx.Create(&rating).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateRating
			}
			return fmt.Errorf("failed to create rating: %w", err)
		}
		if err := recomputeRatings(tx, recipeID); err != nil {
			return err
		}
		return addFeedItem(tx, userID, models.EventNewRating, &rating.RecipeID, &rating.ID)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"rating_id": rating.ID,
		"recipe_id": recipeID,
		"user_id":   userID,
	}).Info("Rating created")
	return &rating, nil
}

func (s *ratingService) UpdateRating(ctx context.Context, userID, ratingID uint, update RatingUpdate) (*models.RecipeRating, error) {
	if update.Rating != nil {
		if err := validateRating(*update.Rating); err != nil {
			return nil, err
		}
	}

	var rating *models.RecipeRating
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rating, err = loadModifiableRating(tx, userID, ratingID)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if update.Rating != nil {
			changes["rating"] = *update.Rating
			rating.Rating = *update.Rating
		}
		if update.Comment != nil {
			changes["comment"] = strings.TrimSpace(*update.Comment)
			rating.Comment = strings.TrimSpace(*update.Comment)
		}
		if len(changes) > 0 {
			if err := tx.Model(&models.RecipeRating{ID: rating.ID}).Updates(changes).Error; err != nil {
				return fmt.Errorf("failed to update rating: %w", err)
			}
		}

		if err := recomputeRatings(tx, rating.RecipeID); err != nil {
			return err
		}
		if err := deleteFeedItems(tx, "rating_id = ?", rating.ID); err != nil {
			return err
		}
		return addFeedItem(tx, rating.AuthorID, models.EventUpdateRating, &rating.RecipeID, &rating.ID)
	})
	if err != nil {
		return nil, err
	}
	return rating, nil
}

func (s *ratingService) DeleteRating(ctx context.Context, userID, ratingID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rating, err := loadModifiableRating(tx, userID, ratingID)
		if err != nil {
			return err
		}
		if err := deleteFeedItems(tx, "rating_id = ?", rating.ID); err != nil {
			return err
		}
		if err := tx.Delete(&models.RecipeRating{}, rating.ID).Error; err != nil {
			return fmt.Errorf("failed to delete rating: %w", err)
		}
		return recomputeRatings(tx, rating.RecipeID)
	})
}

func (s *ratingService) ListRatings(ctx context.Context, recipeID uint) ([]models.RecipeRating, error) {
	db := s.db.WithContext(ctx)
	if err := ensureRecipeExists(db, recipeID); err != nil {
		return nil, err
	}

	var ratings []models.RecipeRating
	if err := db.Where("recipe_id = ?", recipeID).
		Preload("Author").
		Order("created_at DESC").
		Order("id DESC").
		Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, nil
}

func (s *ratingService) RecomputeRatings(ctx context.Context, recipeID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRecipeExists(tx, recipeID); err != nil {
			return err
		}
		return recomputeRatings(tx, recipeID)
	})
}

type ratingAggregate struct {
	Count   int64
	Average float64
}

func recomputeRatings(tx *gorm.DB, recipeID uint) error {
	var agg ratingAggregate
	if err := tx.Model(&models.RecipeRating{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("recipe_id = ?", recipeID).
		Scan(&agg).Error; err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	if err := tx.Model(&models.Recipe{ID: recipeID}).UpdateColumns(map[string]interface{}{
		"average_rating": agg.Average,
		"rating_count":   agg.Count,
	}).Error; err != nil {
		return fmt.Errorf("failed to store rating aggregate: %w", err)
	}
	return nil
}

func loadModifiableRating(tx *gorm.DB, userID, ratingID uint) (*models.RecipeRating, error) {
	var rating models.RecipeRating
	if err := tx.First(&rating, ratingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("rating %d not found", ratingID)
		}
		return nil, fmt.Errorf("failed to load rating: %w", err)
	}
	actor, err := loadActor(tx, userID)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, rating.AuthorID) {
		return nil, permissionDenied("only the author can change rating %d", ratingID)
	}
	return &rating, nil
}

func ensureRecipeExists(tx *gorm.DB, recipeID uint) error {
	var count int64
	if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check recipe: %w", err)
	}
	if count == 0 {
		return notFound("recipe %d not found", recipeID)
	}
	return nil
}

func validateRating(rating int) error {
	if rating < minRating || rating > maxRating {
		return validationError("rating must be between %d and %d", minRating, maxRating)
	}
	return nil
}
