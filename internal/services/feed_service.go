package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100

	maxCommentLength = 2000
)

// FeedPage is one page of activity feed items
type FeedPage struct {
	Items    []models.FeedItem `json:"items"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// CommentInput is the body of a new or edited feed comment
type CommentInput struct {
	Content string `json:"content" binding:"required"`
}

// FeedService reads the activity feed of a user and manages the likes and
// comments left on feed items
type FeedService interface {
	// Feed returns items created by userID and the users they follow, newest first
	Feed(ctx context.Context, userID uint, page, pageSize int) (FeedPage, error)

	// Like reports whether a new like was stored. Liking twice is not an error.
	Like(ctx context.Context, userID, itemID uint) (bool, error)
	Unlike(ctx context.Context, userID, itemID uint) error

	ListComments(ctx context.Context, itemID uint) ([]models.FeedItemComment, error)
	AddComment(ctx context.Context, userID, itemID uint, input CommentInput) (*models.FeedItemComment, error)
	UpdateComment(ctx context.Context, userID, commentID uint, input CommentInput) (*models.FeedItemComment, error)
	DeleteComment(ctx context.Context, userID, commentID uint) error
}

type feedService struct {
	db *gorm.DB
}

// NewFeedService creates a new instance of FeedService
func NewFeedService(db *gorm.DB) FeedService {
	return &feedService{db: db}
}

func (s *feedService) Feed(ctx context.Context, userID uint, page, pageSize int) (FeedPage, error) {
	page, pageSize = normalizePage(page, pageSize)

	db := s.db.WithContext(ctx)
	followed := db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", userID)

	var items []models.FeedItem
	err := db.
		Where("user_id = ? OR user_id IN (?)", userID, followed).
		Preload("User").
		Preload("Recipe").
		Preload("Rating").
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return FeedPage{}, fmt.Errorf("failed to load feed: %w", err)
	}
	if err := annotateFeed(db, userID, items); err != nil {
		return FeedPage{}, err
	}

	return FeedPage{Items: items, Page: page, PageSize: pageSize}, nil
}

func (s *feedService) Like(ctx context.Context, userID, itemID uint) (bool, error) {
	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureFeedItemExists(tx, itemID); err != nil {
			return err
		}
		like := models.FeedItemLike{FeedItemID: itemID, UserID: userID}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
		if result.Error != nil {
			return fmt.Errorf("failed to like feed item: %w", result.Error)
		}
		created = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	if created {
		log.WithFields(log.Fields{"feed_item_id": itemID, "user_id": userID}).Info("Feed item liked")
	}
	return created, nil
}

func (s *feedService) Unlike(ctx context.Context, userID, itemID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureFeedItemExists(tx, itemID); err != nil {
			return err
		}
		result := tx.Where("feed_item_id = ? AND user_id = ?", itemID, userID).Delete(&models.FeedItemLike{})
		if result.Error != nil {
			return fmt.Errorf("failed to unlike feed item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("feed item %d is not liked", itemID)
		}
		return nil
	})
}

func (s *feedService) ListComments(ctx context.Context, itemID uint) ([]models.FeedItemComment, error) {
	db := s.db.WithContext(ctx)
	if err := ensureFeedItemExists(db, itemID); err != nil {
		return nil, err
	}

	var comments []models.FeedItemComment
	if err := db.Where("feed_item_id = ?", itemID).
		Preload("User").
		Order("created_at").
		Order("id").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *feedService) AddComment(ctx context.Context, userID, itemID uint, input CommentInput) (*models.FeedItemComment, error) {
	content, err := validateComment(input.Content)
	if err != nil {
		return nil, err
	}

	comment := models.FeedItemComment{FeedItemID: itemID, UserID: userID, Content: content}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureFeedItemExists(tx, itemID); err != nil {
			return err
		}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"comment_id":   comment.ID,
		"feed_item_id": itemID,
		"user_id":      userID,
	}).Info("Comment created")
	return s.loadComment(s.db.WithContext(ctx), comment.ID)
}

func (s *feedService) UpdateComment(ctx context.Context, userID, commentID uint, input CommentInput) (*models.FeedItemComment, error) {
	content, err := validateComment(input.Content)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comment, err := loadModifiableComment(tx, userID, commentID)
		if err != nil {
			return err
		}
		if err := tx.Model(comment).Update("content", content).Error; err != nil {
			return fmt.Errorf("failed to update comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadComment(s.db.WithContext(ctx), commentID)
}

func (s *feedService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comment, err := loadModifiableComment(tx, userID, commentID)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.FeedItemComment{}, comment.ID).Error; err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		return nil
	})
}

func (s *feedService) loadComment(db *gorm.DB, commentID uint) (*models.FeedItemComment, error) {
	var comment models.FeedItemComment
	if err := db.Preload("User").First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("comment %d not found", commentID)
		}
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	return &comment, nil
}

// loadModifiableComment returns the comment when userID wrote it or is an admin
func loadModifiableComment(tx *gorm.DB, userID, commentID uint) (*models.FeedItemComment, error) {
	var comment models.FeedItemComment
	if err := tx.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("comment %d not found", commentID)
		}
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	actor, err := loadActor(tx, userID)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, comment.UserID) {
		return nil, permissionDenied("only the author can change comment %d", commentID)
	}
	return &comment, nil
}

func validateComment(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", validationError("content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return "", validationError("content must be at most %d characters", maxCommentLength)
	}
	return content, nil
}

func ensureFeedItemExists(tx *gorm.DB, itemID uint) error {
	var count int64
	if err := tx.Model(&models.FeedItem{}).Where("id = ?", itemID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to load feed item: %w", err)
	}
	if count == 0 {
		return notFound("feed item %d not found", itemID)
	}
	return nil
}

type feedItemCount struct {
	FeedItemID uint
	Total      int64
}

// annotateFeed fills the like and comment counters of items as seen by viewerID
func annotateFeed(db *gorm.DB, viewerID uint, items []models.FeedItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uint, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}

	var likes, comments []feedItemCount
	if err := db.Model(&models.FeedItemLike{}).
		Select("feed_item_id, COUNT(*) AS total").
		Where("feed_item_id IN ?", ids).
		Group("feed_item_id").
		Scan(&likes).Error; err != nil {
		return fmt.Errorf("failed to count likes: %w", err)
	}
	if err := db.Model(&models.FeedItemComment{}).
		Select("feed_item_id, COUNT(*) AS total").
		Where("feed_item_id IN ?", ids).
		Group("feed_item_id").
		Scan(&comments).Error; err != nil {
		return fmt.Errorf("failed to count comments: %w", err)
	}
	var liked []uint
	if err := db.Model(&models.FeedItemLike{}).
		Where("feed_item_id IN ? AND user_id = ?", ids, viewerID).
		Pluck("feed_item_id", &liked).Error; err != nil {
		return fmt.Errorf("failed to load likes: %w", err)
	}

	likeCounts := make(map[uint]int64, len(likes))
	for _, c := range likes {
		likeCounts[c.FeedItemID] = c.Total
	}
	commentCounts := make(map[uint]int64, len(comments))
	for _, c := range comments {
		commentCounts[c.FeedItemID] = c.Total
	}
	likedByViewer := make(map[uint]bool, len(liked))
	for _, id := range liked {
		likedByViewer[id] = true
	}

	for i := range items {
		items[i].LikeCount = likeCounts[items[i].ID]
		items[i].CommentCount = commentCounts[items[i].ID]
		items[i].IsLikedByUser = likedByViewer[items[i].ID]
	}
	return nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func addFeedItem(tx *gorm.DB, userID uint, eventType string, recipeID, ratingID *uint) error {
	item := models.FeedItem{
		UserID:    userID,
		EventType: eventType,
		RecipeID:  recipeID,
		RatingID:  ratingID,
	}
	if err := tx.Create(&item).Error; err != nil {
		return fmt.Errorf("failed to create feed item: %w", err)
	}
	return nil
}

// deleteFeedItems removes the feed items matching the condition together with
// their likes and comments
func deleteFeedItems(tx *gorm.DB, query string, args ...interface{}) error {
	for _, child := range []interface{}{&models.FeedItemLike{}, &models.FeedItemComment{}} {
		matching := tx.Model(&models.FeedItem{}).Select("id").Where(query, args...)
		if err := tx.Where("feed_item_id IN (?)", matching).Delete(child).Error; err != nil {
			return fmt.Errorf("failed to delete feed reactions: %w", err)
		}
	}
	if err := tx.Where(query, args...).Delete(&models.FeedItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete feed items: %w", err)
	}
	return nil
}
