package models

import "time"

// Feed event types
const (
	EventNewRecipe    = "NR"
	EventUpdateRecipe = "UR"
	EventNewRating    = "RA"
	EventUpdateRating = "UA"
)

// FeedItem records an activity of a user that is shown to their followers.
type FeedItem struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	UserID    uint          `gorm:"not null;index" json:"user_id"`
	User      *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	EventType string        `gorm:"size:2;not null" json:"event_type"`
	RecipeID  *uint         `gorm:"index" json:"recipe_id,omitempty"`
	Recipe    *Recipe       `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"recipe,omitempty"`
	RatingID  *uint         `gorm:"index" json:"rating_id,omitempty"`
	Rating    *RecipeRating `gorm:"foreignKey:RatingID;constraint:OnDelete:CASCADE" json:"rating,omitempty"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`

	// Filled per viewer when the feed is read
	LikeCount     int64 `gorm:"-" json:"like_count"`
	CommentCount  int64 `gorm:"-" json:"comment_count"`
	IsLikedByUser bool  `gorm:"-" json:"is_liked_by_user"`
}

// FeedItemLike marks a feed item as liked by a user. A user likes an item at most once.
type FeedItemLike struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FeedItemID uint      `gorm:"not null;uniqueIndex:idx_like_item_user" json:"feed_item_id"`
	FeedItem   *FeedItem `gorm:"foreignKey:FeedItemID;constraint:OnDelete:CASCADE" json:"-"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_like_item_user;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedItemComment is a comment left on a feed item
type FeedItemComment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FeedItemID uint      `gorm:"not null;index" json:"feed_item_id"`
	FeedItem   *FeedItem `gorm:"foreignKey:FeedItemID;constraint:OnDelete:CASCADE" json:"-"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
