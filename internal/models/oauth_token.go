package models

import (
	"time"
)

// OAuthToken persists access tokens issued through the client credentials grant
type OAuthToken struct {
	ID           uint      `gorm:"primaryKey"`
	ClientID     string    `gorm:"not null;index"`
	UserID       *string   // owner of the client, nil when the client has no owner
	AccessToken  string    `gorm:"type:text;uniqueIndex;not null"`
	RefreshToken *string   `gorm:"type:text"`
	Scopes       string
	ExpiresAt    time.Time `gorm:"not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}
